package logs

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/grafana/loki-client-go/loki"
	promconfig "github.com/prometheus/common/config"
	slogloki "github.com/samber/slog-loki/v3"

	"github.com/coachbook/coachbook_backend/config"
)

const lokiPushPath = "/loki/api/v1/push"

// newLokiHandler ships records to Loki in batches. The returned func stops the
// client and flushes whatever is still buffered.
func newLokiHandler(cfg *config.Config, level slog.Level) (slog.Handler, func(), error) {
	lc := cfg.Logging.Output.Loki

	lokiCfg, err := loki.NewDefaultConfig(strings.TrimRight(lc.Endpoint, "/") + lokiPushPath)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid loki endpoint: %w", err)
	}
	lokiCfg.TenantID = lc.TenantID
	if lc.Username != "" {
		lokiCfg.Client.BasicAuth = &promconfig.BasicAuth{
			Username: lc.Username,
			Password: promconfig.Secret(lc.Password),
		}
	}

	client, err := loki.New(lokiCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create loki client: %w", err)
	}

	h := slogloki.Option{
		Level:  level,
		Client: client,
	}.NewLokiHandler()

	return h, client.Stop, nil
}
