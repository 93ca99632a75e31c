package workers

import (
	"context"
	"time"

	"itrackerAPI/internal/achievement"
	"itrackerAPI/internal/logger"
)

// EarnedSource hands out earned achievements that have not been pushed yet.
// A row it returns is never returned again.
type EarnedSource interface {
	ClaimUnpushed(ctx context.Context) ([]achievement.UserAchievement, error)
}

// AchievementSink receives each newly earned achievement once.
type AchievementSink interface {
	DispatchAchievement(ctx context.Context, ua achievement.UserAchievement)
}

// AchievementWatcher polls for newly earned achievements and forwards them to
// the sink. The source tracks what was handed out, so every row is forwarded
// at most once across restarts and instances.
type AchievementWatcher struct {
	source   EarnedSource
	sink     AchievementSink
	interval time.Duration
}

func NewAchievementWatcher(source EarnedSource, sink AchievementSink, interval time.Duration) *AchievementWatcher {
	return &AchievementWatcher{
		source:   source,
		sink:     sink,
		interval: interval,
	}
}

// Run polls until ctx is cancelled.
func (w *AchievementWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("Achievement watcher started", "interval", w.interval)
	for {
		select {
		case <-ticker.C:
			w.Poll(ctx)
		case <-ctx.Done():
			logger.Info("Achievement watcher stopped")
			return
		}
	}
}

// Poll runs one check and returns how many achievements were forwarded.
func (w *AchievementWatcher) Poll(ctx context.Context) int {
	pollCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := w.source.ClaimUnpushed(pollCtx)
	if err != nil {
		// Nothing was claimed, so the next tick sees the same rows.
		logger.Error("Failed to poll new achievements", "error", err)
		return 0
	}

	for _, ua := range rows {
		w.sink.DispatchAchievement(ctx, ua)
	}

	if len(rows) > 0 {
		logger.Debug("Forwarded new achievements", "count", len(rows))
	}
	return len(rows)
}
