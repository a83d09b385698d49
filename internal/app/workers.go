package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/coachbook/coachbook_backend/internal/service/availability"
	"github.com/coachbook/coachbook_backend/pkg/constants"
)

// WorkerModule registers all NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc              fx.Lifecycle
	NC              *nats.Conn
	AvailabilitySvc availability.Service
}

func RegisterWorkers(p WorkerParams) {
	var subs []*nats.Subscription
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			subs, err = startInvalidationWorker(p.NC, p.AvailabilitySvc)
			return err
		},
		OnStop: func(ctx context.Context) error {
			for _, s := range subs {
				_ = s.Unsubscribe()
			}
			return nil
		},
	})
}

// ---------------------------------------------------------------------------
// invalidation_worker
// ---------------------------------------------------------------------------

// Invalidator is the slice of availability.Service the worker needs.
type Invalidator interface {
	Invalidate(ctx context.Context, coachID uuid.UUID) error
}

func startInvalidationWorker(nc *nats.Conn, svc Invalidator) ([]*nats.Subscription, error) {
	var subs []*nats.Subscription
	for _, subject := range []string{constants.SubjectCalendarChanged, constants.SubjectScheduleUpdated} {
		sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
			handleInvalidation(svc, msg.Subject)
		})
		if err != nil {
			slog.Error("invalidation_worker: subscribe failed", "subject", subject, "err", err)
			return subs, err
		}
		subs = append(subs, sub)
	}
	slog.Info("invalidation_worker: started")
	return subs, nil
}

// handleInvalidation drops cached availability for the coach named by the
// last token of subject, e.g. coachbook.calendar.changed.<coach-id>.
func handleInvalidation(svc Invalidator, subject string) {
	idx := strings.LastIndexByte(subject, '.')
	if idx < 0 {
		return
	}
	coachID, err := uuid.Parse(subject[idx+1:])
	if err != nil {
		slog.Warn("invalidation_worker: bad coach id", "subject", subject)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := svc.Invalidate(ctx, coachID); err != nil {
		slog.Warn("invalidation_worker: invalidate failed", "coach_id", coachID.String(), "err", err)
		return
	}
	slog.Debug("invalidation_worker: availability invalidated", "coach_id", coachID.String(), "subject", subject)
}
