package songflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mixtape-hq/mixtape/pkg/suno"
)

// SeparateStems splits a finished clip into stems and polls the whole
// batch until every stem completes. The first stem to report an error
// aborts the batch immediately. onProgress, if non-nil, is invoked once
// per poll round with (complete, total) so callers can show partial
// progress; it is not called on the aborting round.
func (o *Orchestrator) SeparateStems(ctx context.Context, clipID string, onProgress func(complete, total int)) ([]suno.Clip, error) {
	stems, err := o.svc.SeparateStems(ctx, clipID)
	if err != nil {
		return nil, err
	}
	if len(stems) == 0 {
		return nil, errors.New("no stems returned")
	}
	slog.Info("stem separation requested", "clip", clipID, "stems", len(stems))

	ids := make([]string, len(stems))
	for i, s := range stems {
		ids[i] = s.ID
	}

	for {
		clips, err := o.svc.Clips(ctx, ids)
		if err != nil {
			return nil, err
		}
		complete := 0
		for _, c := range clips {
			if c.Status == suno.StatusError {
				msg := c.ErrorMessage()
				if msg == "" {
					msg = "stem separation failed"
				}
				return nil, errors.New(msg)
			}
			if c.Status == suno.StatusComplete {
				complete++
			}
		}
		if onProgress != nil {
			onProgress(complete, len(clips))
		}
		if complete == len(clips) {
			slog.Info("stem separation complete", "clip", clipID, "stems", len(clips))
			return clips, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(o.interval):
		}
	}
}
