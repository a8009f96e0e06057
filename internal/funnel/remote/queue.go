// Package remote copies signed-in users' answer sets to a shared record so a
// funnel can be resumed from another device.
//
// The copy is advisory. Jobs run on a bounded background queue; a full queue
// drops the job and failures are logged, never retried and never reported
// back to the funnel.
package remote

import (
	"context"
	"sync"
	"time"

	"provider-funnel/internal/common/logger"
	"provider-funnel/internal/common/metrics"
	"provider-funnel/internal/models"
)

// Persister writes one user's answers for a category.
type Persister interface {
	Persist(ctx context.Context, userID, category string, answers models.AnswerSet) error
}

// Job is one queued remote write. Answers is owned by the job.
type Job struct {
	UserID   string
	Category string
	Answers  models.AnswerSet
	QueuedAt time.Time
}

// QueueOptions sizes the queue.
type QueueOptions struct {
	Size    int
	Workers int
	Timeout time.Duration
}

// Queue runs Persister calls in the background.
type Queue struct {
	persister Persister
	logger    logger.Logger
	timeout   time.Duration
	workers   int

	mu     sync.RWMutex
	jobs   chan Job
	closed bool
	wg     sync.WaitGroup
}

func NewQueue(p Persister, log logger.Logger, opts QueueOptions) *Queue {
	if opts.Size <= 0 {
		opts.Size = 100
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	return &Queue{
		persister: p,
		logger:    log.WithFields(map[string]interface{}{"component": "remote-sync"}),
		timeout:   opts.Timeout,
		workers:   opts.Workers,
		jobs:      make(chan Job, opts.Size),
	}
}

// Start launches the workers. They exit once Stop has drained the queue.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for job := range q.jobs {
				q.run(ctx, job)
			}
		}()
	}
}

// Enqueue schedules a write without blocking. It returns false when the queue
// is full or stopped.
func (q *Queue) Enqueue(userID, category string, answers models.AnswerSet) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}

	select {
	case q.jobs <- Job{UserID: userID, Category: category, Answers: answers.Clone(), QueuedAt: time.Now()}:
		return true
	default:
		metrics.FunnelSyncJobs.WithLabelValues("dropped").Inc()
		q.logger.Warn("sync queue full, dropping job", map[string]interface{}{
			"userId":   userID,
			"category": category,
		})
		return false
	}
}

// Stop refuses new jobs and waits for queued ones to finish.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()
	q.wg.Wait()
}

func (q *Queue) run(ctx context.Context, job Job) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.timeout)
	defer cancel()

	if err := q.persister.Persist(ctx, job.UserID, job.Category, job.Answers); err != nil {
		metrics.FunnelSyncJobs.WithLabelValues("failed").Inc()
		q.logger.Warn("remote sync failed", map[string]interface{}{
			"userId":   job.UserID,
			"category": job.Category,
			"error":    err,
		})
		return
	}
	metrics.FunnelSyncJobs.WithLabelValues("succeeded").Inc()
	q.logger.Debug("remote sync done", map[string]interface{}{
		"userId":   job.UserID,
		"category": job.Category,
		"latency":  time.Since(job.QueuedAt).String(),
	})
}
