package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"itrackerAPI/internal/achievement"
	"itrackerAPI/internal/logger"
	"itrackerAPI/internal/metrics"
	"itrackerAPI/internal/notification"
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, p notification.Push) error
}

// DeviceTokenSource looks up where a user's pushes go.
type DeviceTokenSource interface {
	GetDeviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error)
}

// NotificationDispatcher delivers pushes through a fixed pool of workers.
type NotificationDispatcher struct {
	tokens       DeviceTokenSource
	pushProvider PushNotificationProvider
	workers      int
	jobQueue     chan *DispatchJob
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

type DispatchJob struct {
	Push notification.Push
}

func NewNotificationDispatcher(tokens DeviceTokenSource, workers int) *NotificationDispatcher {
	if workers <= 0 {
		workers = 5
	}

	dispatcher := &NotificationDispatcher{
		tokens:   tokens,
		workers:  workers,
		jobQueue: make(chan *DispatchJob, 100),
		stopChan: make(chan struct{}),
	}

	dispatcher.startWorkers()
	return dispatcher
}

// SetPushProvider injects the FCM provider from main.
func (d *NotificationDispatcher) SetPushProvider(provider PushNotificationProvider) {
	d.pushProvider = provider
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

func (d *NotificationDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.jobQueue:
			d.processJob(job)
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) processJob(job *DispatchJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	p := job.Push

	if d.pushProvider == nil {
		logger.Debug("Skipping push: no provider", "user_id", p.UserID)
		metrics.PushNotifications.WithLabelValues("skipped").Inc()
		return
	}

	tokens, err := d.tokens.GetDeviceTokens(ctx, p.UserID)
	if err != nil {
		logger.Error("Failed to load device tokens", "user_id", p.UserID, "error", err)
		metrics.PushNotifications.WithLabelValues("failed").Inc()
		return
	}
	if len(tokens) == 0 {
		metrics.PushNotifications.WithLabelValues("skipped").Inc()
		return
	}

	if err := d.pushProvider.SendPush(ctx, tokens, p); err != nil {
		logger.Warn("Push failed", "user_id", p.UserID, "error", err)
		metrics.PushNotifications.WithLabelValues("failed").Inc()
		return
	}
	metrics.PushNotifications.WithLabelValues("sent").Inc()
}

// Dispatch queues p, giving up after five seconds when the queue stays full.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, p notification.Push) {
	select {
	case d.jobQueue <- &DispatchJob{Push: p}:
		logger.Debug("Push queued", "user_id", p.UserID, "type", p.Type)
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		logger.Warn("Failed to queue push: queue full", "user_id", p.UserID)
	}
}

// DispatchAchievement announces a newly earned achievement to its owner.
func (d *NotificationDispatcher) DispatchAchievement(ctx context.Context, ua achievement.UserAchievement) {
	d.Dispatch(ctx, notification.ForAchievement(ua))
}

// Stop waits for in-flight jobs. Queued jobs not yet picked up are dropped.
func (d *NotificationDispatcher) Stop() {
	d.stopOnce.Do(func() {
		logger.Info("Stopping notification dispatcher...")
		close(d.stopChan)
		d.wg.Wait()
		logger.Info("Notification dispatcher stopped")
	})
}

// LogPushProvider stands in for FCM when no credentials are configured.
type LogPushProvider struct{}

func (LogPushProvider) SendPush(ctx context.Context, tokens []notification.DeviceToken, p notification.Push) error {
	logger.Info("PUSH (log only)", "devices", len(tokens), "title", p.Title, "body", p.Body)
	return nil
}
