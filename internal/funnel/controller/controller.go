// Package controller walks a visitor through a category's funnel.
//
// The controller owns the answer set for one (session, category) pair. Every
// transition writes the answers to the durable slot before returning and, for
// signed-in users, hands a copy to the remote sync queue.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"provider-funnel/internal/common/logger"
	"provider-funnel/internal/common/metrics"
	"provider-funnel/internal/funnel/catalog"
	"provider-funnel/internal/funnel/store"
	"provider-funnel/internal/models"
)

var (
	ErrInvalidOption     = errors.New("INVALID_ANSWER")
	ErrQuestionNotActive = errors.New("QUESTION_NOT_ACTIVE")
	ErrOutOfOrder        = errors.New("ANSWER_OUT_OF_ORDER")
)

// Syncer accepts best-effort remote copies of an answer set. Enqueue must not
// block; it reports false when the job was dropped.
type Syncer interface {
	Enqueue(userID, category string, answers models.AnswerSet) bool
}

// Restorer reads the remote copy of a user's answers.
type Restorer interface {
	Fetch(ctx context.Context, userID, category string) (models.AnswerSet, bool, error)
}

// Options configures Load.
type Options struct {
	SessionID string
	// UserID enables remote sync and restore when set.
	UserID   string
	Category string
	Store    *store.Store
	Sync     Syncer
	// Restore is consulted only when the local slot is empty.
	Restore Restorer
	Logger  logger.Logger
}

// Controller is the funnel state machine for one category.
type Controller struct {
	cat    catalog.Catalog
	key    store.SlotKey
	userID string
	store  *store.Store
	sync   Syncer
	logger logger.Logger

	mu      sync.Mutex
	answers models.AnswerSet

	obsMu     sync.Mutex
	observers map[int]func(Snapshot)
	nextObs   int
}

// Load selects the category's catalog, restores the saved answers and applies
// the recovery rules:
//   - a saved set the catalog still produces resumes at its first gap or as complete
//   - a set holding a retired question, an unknown option or a key the catalog
//     would not ask for that combination is cleared as a whole
//   - a missing or malformed record starts fresh
func Load(ctx context.Context, opts Options) (*Controller, error) {
	cat, err := catalog.Get(opts.Category)
	if err != nil {
		return nil, fmt.Errorf("load funnel %q: %w", opts.Category, err)
	}
	if opts.Store == nil {
		return nil, errors.New("load funnel: store is required")
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	c := &Controller{
		cat:    cat,
		key:    store.SlotKey{SessionID: opts.SessionID, Category: opts.Category},
		userID: opts.UserID,
		store:  opts.Store,
		sync:   opts.Sync,
		logger: log.WithFields(map[string]interface{}{
			"category":  opts.Category,
			"sessionId": opts.SessionID,
		}),
		answers:   models.AnswerSet{},
		observers: make(map[int]func(Snapshot)),
	}

	saved, ok := c.store.Load(ctx, c.key)
	if !ok {
		saved, ok = c.restore(ctx, opts.Restore)
	}
	if !ok {
		return c, nil
	}
	if bad := catalog.Validate(cat, saved); bad != nil {
		c.logger.Info("discarding stale answers", map[string]interface{}{
			"reason":   bad.Reason,
			"question": bad.QuestionID,
			"answers":  saved.Keys(),
		})
		metrics.FunnelStaleResets.WithLabelValues(opts.Category, bad.Reason).Inc()
		if err := c.store.Clear(ctx, c.key); err != nil {
			c.slotFailed("clear", err)
		}
		return c, nil
	}

	c.answers = saved.Clone()
	return c, nil
}

// restore pulls the remote copy into the local slot. Failures leave the
// funnel empty.
func (c *Controller) restore(ctx context.Context, r Restorer) (models.AnswerSet, bool) {
	if r == nil || c.userID == "" {
		return nil, false
	}
	answers, ok, err := r.Fetch(ctx, c.userID, c.key.Category)
	if err != nil {
		c.logger.Warn("remote restore failed", map[string]interface{}{
			"userId": c.userID,
			"error":  err,
		})
		return nil, false
	}
	if !ok || len(answers) == 0 {
		return nil, false
	}
	if catalog.Validate(c.cat, answers) == nil {
		if err := c.store.Save(ctx, c.key, answers); err != nil {
			c.slotFailed("write", err)
		}
	}
	c.logger.Info("restored answers from remote copy", map[string]interface{}{
		"userId":  c.userID,
		"answers": answers.Keys(),
	})
	return answers, true
}

// Submit records value for questionID.
//
// Answering the current question advances the walk. Changing an earlier
// answer drops every answer at or after that question's position before
// recording the new value. Re-submitting the same value changes nothing.
func (c *Controller) Submit(ctx context.Context, questionID, value string) (Snapshot, error) {
	c.mu.Lock()

	sequence := c.cat.Questions(c.answers)
	idx := catalog.IndexOf(sequence, questionID)
	if idx < 0 {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, fmt.Errorf("%w: %s", ErrQuestionNotActive, questionID)
	}
	q := sequence[idx]
	if !q.HasOption(value) {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, fmt.Errorf("%w: %s=%s", ErrInvalidOption, questionID, value)
	}

	if prev, answered := c.answers[questionID]; answered {
		if prev == value {
			snap := c.snapshotLocked()
			c.mu.Unlock()
			return snap, nil
		}
		for _, later := range sequence[idx:] {
			delete(c.answers, later.ID)
		}
		c.logger.Debug("answer edited", map[string]interface{}{
			"questionId": questionID,
			"from":       prev,
			"to":         value,
		})
	} else if _, gap, open := catalog.NextUnanswered(c.cat, c.answers); open && idx > gap {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, fmt.Errorf("%w: %s before %s", ErrOutOfOrder, questionID, sequence[gap].ID)
	}

	wasComplete := catalog.Complete(c.cat, c.answers)
	c.answers[questionID] = value
	c.pruneLocked()
	metrics.FunnelAnswersRecorded.WithLabelValues(c.key.Category).Inc()

	snap := c.commitLocked(ctx)
	c.mu.Unlock()

	if snap.State == Complete && !wasComplete {
		metrics.FunnelCompleted.WithLabelValues(c.key.Category).Inc()
	}
	c.notify(snap)
	return snap, nil
}

// Reset discards every answer and clears the slot.
func (c *Controller) Reset(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	c.answers = models.AnswerSet{}
	snap := c.commitLocked(ctx)
	c.mu.Unlock()

	c.notify(snap)
	return snap, nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Answers returns a copy of the recorded answers.
func (c *Controller) Answers() models.AnswerSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.answers.Clone()
}

// Catalog returns the catalog driving this funnel.
func (c *Controller) Catalog() catalog.Catalog {
	return c.cat
}

// Subscribe registers fn to receive a snapshot after every transition.
// The returned function detaches it.
func (c *Controller) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	return func() {
		c.obsMu.Lock()
		defer c.obsMu.Unlock()
		delete(c.observers, id)
	}
}

// Close detaches all observers. Sync jobs already queued hold their own copy
// of the answers and are unaffected.
func (c *Controller) Close() {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	c.observers = make(map[int]func(Snapshot))
}

// pruneLocked drops answers whose question the catalog no longer produces,
// repeating until the set is stable.
func (c *Controller) pruneLocked() {
	for {
		sequence := c.cat.Questions(c.answers)
		removed := false
		for id := range c.answers {
			if catalog.IndexOf(sequence, id) < 0 {
				delete(c.answers, id)
				removed = true
			}
		}
		if !removed {
			return
		}
	}
}

// commitLocked persists the answers, queues the remote sync and returns the
// resulting snapshot.
func (c *Controller) commitLocked(ctx context.Context) Snapshot {
	var err error
	if len(c.answers) == 0 {
		err = c.store.Clear(ctx, c.key)
	} else {
		err = c.store.Save(ctx, c.key, c.answers)
	}
	if err != nil {
		c.slotFailed("write", err)
	}

	if c.userID != "" && c.sync != nil {
		if !c.sync.Enqueue(c.userID, c.key.Category, c.answers.Clone()) {
			c.logger.Warn("remote sync dropped", map[string]interface{}{"userId": c.userID})
		}
	}
	return c.snapshotLocked()
}

func (c *Controller) slotFailed(op string, err error) {
	metrics.FunnelSlotWriteFailures.WithLabelValues(c.key.Category).Inc()
	c.logger.Warn("answer slot "+op+" failed", map[string]interface{}{
		"slot":  c.key.String(),
		"error": err,
	})
}

func (c *Controller) snapshotLocked() Snapshot {
	sequence := c.cat.Questions(c.answers)
	questions := make([]models.Question, len(sequence))
	for i, q := range sequence {
		questions[i] = q.Clone()
	}
	snap := Snapshot{
		Category:  c.cat.Category(),
		Index:     -1,
		Questions: questions,
		Answers:   c.answers.Clone(),
		Total:     len(sequence),
	}
	for _, q := range sequence {
		if c.answers.Has(q.ID) {
			snap.Answered++
		}
	}

	next, idx, open := catalog.NextUnanswered(c.cat, c.answers)
	switch {
	case !open:
		snap.State = Complete
	case len(c.answers) == 0:
		snap.State = NotStarted
	default:
		snap.State = InProgress
	}
	if open {
		current := next.Clone()
		snap.Index = idx
		snap.Current = &current
	}
	return snap
}

func (c *Controller) notify(snap Snapshot) {
	c.obsMu.Lock()
	fns := make([]func(Snapshot), 0, len(c.observers))
	for id := 0; id < c.nextObs; id++ {
		if fn, ok := c.observers[id]; ok {
			fns = append(fns, fn)
		}
	}
	c.obsMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
