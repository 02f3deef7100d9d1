package tasks

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mgrigorov/newsgrid/app/pipeline"
)

// RefreshTask runs one full fetch-normalize-dedup-store pass.
type RefreshTask struct {
	Task
	pipeline *pipeline.Pipeline
}

func NewRefreshTask(p *pipeline.Pipeline) *RefreshTask {
	return &RefreshTask{
		Task:     NewTask(TaskTypeRefresh),
		pipeline: p,
	}
}

func (t *RefreshTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result, err := t.pipeline.Run(ctx)
	if err != nil {
		if errors.Is(err, pipeline.ErrRefreshInProgress) {
			slog.Warn("Skipping scheduled refresh, previous run still in flight")
			return nil
		}
		return err
	}

	slog.Info("Task completed",
		"type", "Refresh",
		"duration", t.GetDuration(),
		"fetched", result.Fetched,
		"added", result.Added,
		"skipped", result.Skipped)

	return nil
}
