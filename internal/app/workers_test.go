package app

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type recordingInvalidator struct {
	ids []uuid.UUID
	err error
}

func (r *recordingInvalidator) Invalidate(_ context.Context, coachID uuid.UUID) error {
	r.ids = append(r.ids, coachID)
	return r.err
}

func TestHandleInvalidation(t *testing.T) {
	coach := uuid.New()

	t.Run("coach id from last token", func(t *testing.T) {
		inv := &recordingInvalidator{}
		handleInvalidation(inv, "coachbook.calendar.changed."+coach.String())
		if len(inv.ids) != 1 || inv.ids[0] != coach {
			t.Fatalf("expected one invalidation for %s, got %v", coach, inv.ids)
		}
	})

	t.Run("ignores junk subjects", func(t *testing.T) {
		inv := &recordingInvalidator{}
		handleInvalidation(inv, "coachbook.schedule.updated.not-a-uuid")
		handleInvalidation(inv, "nodots")
		if len(inv.ids) != 0 {
			t.Fatalf("expected no invalidations, got %v", inv.ids)
		}
	})

	t.Run("errors are swallowed", func(t *testing.T) {
		inv := &recordingInvalidator{err: errors.New("redis down")}
		handleInvalidation(inv, "coachbook.schedule.updated."+coach.String())
		if len(inv.ids) != 1 {
			t.Fatalf("expected the call to be attempted, got %v", inv.ids)
		}
	})
}
