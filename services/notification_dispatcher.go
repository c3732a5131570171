package services

import (
	"context"
	"sync"
	"time"

	"gamifiedFitnessAPI/internal/metrics"
	"gamifiedFitnessAPI/internal/notification"

	"github.com/sirupsen/logrus"
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}

// NotificationDispatcher sends pushes from a bounded queue on a fixed pool of
// workers.
type NotificationDispatcher struct {
	pushProvider PushNotificationProvider
	workers      int
	jobQueue     chan *DispatchJob
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
	queueTimeout time.Duration
	mu           sync.RWMutex
}

type DispatchJob struct {
	Notification *notification.Notification
	Tokens       []string
}

func NewNotificationDispatcher(workers int) *NotificationDispatcher {
	if workers < 1 {
		workers = 1
	}
	d := &NotificationDispatcher{
		workers:      workers,
		jobQueue:     make(chan *DispatchJob, 100),
		stopChan:     make(chan struct{}),
		queueTimeout: 5 * time.Second,
	}
	d.startWorkers()
	return d
}

// SetPushProvider injects the real FCM provider from main.go.
func (d *NotificationDispatcher) SetPushProvider(provider PushNotificationProvider) {
	d.mu.Lock()
	d.pushProvider = provider
	d.mu.Unlock()
}

func (d *NotificationDispatcher) provider() PushNotificationProvider {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.pushProvider
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
}

func (d *NotificationDispatcher) worker(id int) {
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

	n := job.Notification
	log := logrus.WithFields(logrus.Fields{"user": n.UserID, "kind": n.Kind, "notification": n.ID})

	provider := d.provider()
	if provider == nil || len(job.Tokens) == 0 {
		log.Debugf("Skipping push: tokens=%d providerSet=%v", len(job.Tokens), provider != nil)
		metrics.NotificationsSent.WithLabelValues(string(n.Kind), "skipped").Inc()
		return
	}

	if err := provider.SendPush(ctx, job.Tokens, n.Title, n.Body, n.Data); err != nil {
		log.WithError(err).Warn("Push failed")
		metrics.NotificationsSent.WithLabelValues(string(n.Kind), "failed").Inc()
		return
	}
	metrics.NotificationsSent.WithLabelValues(string(n.Kind), "sent").Inc()
}

// Dispatch queues a notification, giving up when the queue stays full past the
// queue timeout or the dispatcher is stopping.
func (d *NotificationDispatcher) Dispatch(n *notification.Notification, tokens []string) bool {
	select {
	case <-d.stopChan:
		return false
	default:
	}

	job := &DispatchJob{Notification: n, Tokens: tokens}

	timer := time.NewTimer(d.queueTimeout)
	defer timer.Stop()

	select {
	case d.jobQueue <- job:
		return true
	case <-d.stopChan:
		return false
	case <-timer.C:
		logrus.WithField("notification", n.ID).Warn("Failed to queue notification: queue full")
		return false
	}
}

// Stop waits for in-flight jobs. Queued jobs not yet picked up are dropped.
func (d *NotificationDispatcher) Stop() {
	d.stopOnce.Do(func() {
		logrus.Info("Stopping notification dispatcher...")
		close(d.stopChan)
		d.wg.Wait()
		logrus.Info("Notification dispatcher stopped")
	})
}
