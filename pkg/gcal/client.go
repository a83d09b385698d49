// Package gcal reads free/busy information from Google Calendar.
package gcal

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/coachbook/coachbook_backend/pkg/slotengine"
)

// SourcePrefix tags every interval this package produces.
const SourcePrefix = "google:"

type Config struct {
	// Endpoint overrides the API base URL, e.g. a fake server in tests.
	Endpoint string
	Timeout  time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

// FreeBusy returns the busy periods of calendarIDs within [from, to) using
// accessToken as a static bearer token.
//
// A calendar the API reports an error for (revoked sharing, not found, …)
// comes back as one malformed interval so every slot in the horizon is
// treated as taken rather than silently free.
func (c *Client) FreeBusy(ctx context.Context, accessToken string, calendarIDs []string, from, to time.Time) ([]slotengine.BusyInterval, error) {
	if len(calendarIDs) == 0 {
		return []slotengine.BusyInterval{}, nil
	}

	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	req := &calendar.FreeBusyRequest{
		TimeMin: from.UTC().Format(time.RFC3339),
		TimeMax: to.UTC().Format(time.RFC3339),
	}
	for _, id := range calendarIDs {
		req.Items = append(req.Items, &calendar.FreeBusyRequestItem{Id: id})
	}

	resp, err := svc.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("freebusy query: %w", err)
	}

	out := []slotengine.BusyInterval{}
	for _, id := range calendarIDs {
		source := SourcePrefix + id
		cal, ok := resp.Calendars[id]
		if !ok {
			out = append(out, unavailable(source, "missing from response"))
			continue
		}
		if len(cal.Errors) > 0 {
			out = append(out, unavailable(source, cal.Errors[0].Reason))
			continue
		}
		for _, p := range cal.Busy {
			if p == nil {
				continue
			}
			out = append(out, slotengine.BusyInterval{Start: p.Start, End: p.End, Source: source})
		}
	}
	return out, nil
}

func (c *Client) service(ctx context.Context, accessToken string) (*calendar.Service, error) {
	httpClient := oauth2.NewClient(
		context.WithValue(ctx, oauth2.HTTPClient, c.http),
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}),
	)
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if c.cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.cfg.Endpoint))
	}

	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}
	return svc, nil
}

// unavailable is an interval the engine cannot parse; it blocks every slot.
func unavailable(source, reason string) slotengine.BusyInterval {
	return slotengine.BusyInterval{Start: "unavailable: " + reason, End: "", Source: source}
}
