package controller

import (
	"context"
	"errors"
	"sync"
	"testing"

	"provider-funnel/internal/common/logger"
	"provider-funnel/internal/funnel/catalog"
	"provider-funnel/internal/funnel/store"
	"provider-funnel/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSyncer struct {
	mu    sync.Mutex
	calls []syncCall
	full  bool
}

type syncCall struct {
	userID   string
	category string
	answers  models.AnswerSet
}

func (r *recordingSyncer) Enqueue(userID, category string, answers models.AnswerSet) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return false
	}
	r.calls = append(r.calls, syncCall{userID: userID, category: category, answers: answers})
	return true
}

type failingSlot struct{}

func (failingSlot) Load(context.Context, store.SlotKey) ([]byte, error) {
	return nil, errors.New("disk on fire")
}
func (failingSlot) Save(context.Context, store.SlotKey, []byte) error {
	return errors.New("disk on fire")
}
func (failingSlot) Clear(context.Context, store.SlotKey) error {
	return errors.New("disk on fire")
}

type fixture struct {
	slot  *store.MemorySlot
	store *store.Store
	sync  *recordingSyncer
	log   logger.Logger
}

func newFixture(t *testing.T) *fixture {
	slot := store.NewMemorySlot()
	log := logger.NewTestLogger(t)
	return &fixture{slot: slot, store: store.New(slot, log), sync: &recordingSyncer{}, log: log}
}

func (f *fixture) load(t *testing.T, category, userID string) *Controller {
	t.Helper()
	c, err := Load(context.Background(), Options{
		SessionID: "sess-1",
		UserID:    userID,
		Category:  category,
		Store:     f.store,
		Sync:      f.sync,
		Logger:    f.log,
	})
	require.NoError(t, err)
	return c
}

func submitAll(t *testing.T, c *Controller, pairs ...string) Snapshot {
	t.Helper()
	var snap Snapshot
	for i := 0; i < len(pairs); i += 2 {
		var err error
		snap, err = c.Submit(context.Background(), pairs[i], pairs[i+1])
		require.NoError(t, err, "submit %s=%s", pairs[i], pairs[i+1])
	}
	return snap
}

func TestLoad_Fresh(t *testing.T) {
	c := newFixture(t).load(t, catalog.RestaurantsCafes, "")

	snap := c.Snapshot()
	assert.Equal(t, NotStarted, snap.State)
	assert.Equal(t, 0, snap.Index)
	require.NotNil(t, snap.Current)
	assert.Equal(t, "budget", snap.Current.ID)
	assert.Empty(t, snap.Answers)
	assert.Equal(t, 2, snap.Total)
}

func TestLoad_UnknownCategory(t *testing.T) {
	f := newFixture(t)
	_, err := Load(context.Background(), Options{Category: "pet-care", Store: f.store})
	assert.ErrorIs(t, err, catalog.ErrUnknownCategory)
}

func TestRestaurantsScenario(t *testing.T) {
	f := newFixture(t)

	casual := f.load(t, catalog.RestaurantsCafes, "")
	snap := submitAll(t, casual, "budget", "casual")
	assert.Equal(t, InProgress, snap.State)
	assert.Equal(t, "cuisine", snap.Current.ID)

	snap = submitAll(t, casual, "cuisine", "italian")
	assert.Equal(t, Complete, snap.State)
	assert.Equal(t, -1, snap.Index)
	assert.Nil(t, snap.Current)
	assert.Equal(t, 2, snap.Total)

	_, err := casual.Reset(context.Background())
	require.NoError(t, err)

	fine := f.load(t, catalog.RestaurantsCafes, "")
	snap = submitAll(t, fine, "budget", "fine-dining", "cuisine", "italian")
	assert.Equal(t, InProgress, snap.State, "fine dining unlocks the ambience question")
	assert.Equal(t, "ambience", snap.Current.ID)
	assert.Equal(t, 2, snap.Index)

	snap = submitAll(t, fine, "ambience", "romantic")
	assert.Equal(t, Complete, snap.State)
	assert.Equal(t, 3, snap.Total)
	assert.Equal(t, models.AnswerSet{"budget": "fine-dining", "cuisine": "italian", "ambience": "romantic"}, snap.Answers)
}

func TestSubmit_EditDiscardsLaterAnswers(t *testing.T) {
	c := newFixture(t).load(t, catalog.RestaurantsCafes, "")
	submitAll(t, c, "budget", "casual", "cuisine", "italian")

	snap := submitAll(t, c, "budget", "fine-dining")
	assert.Equal(t, InProgress, snap.State)
	assert.Equal(t, models.AnswerSet{"budget": "fine-dining"}, snap.Answers)
	assert.Equal(t, "cuisine", snap.Current.ID)

	submitAll(t, c, "cuisine", "japanese", "ambience", "business")
	snap = submitAll(t, c, "budget", "casual")
	assert.Equal(t, models.AnswerSet{"budget": "casual"}, snap.Answers)
	assert.Equal(t, 2, snap.Total)
}

func TestSubmit_EditMiddleKeepsEarlierAnswers(t *testing.T) {
	c := newFixture(t).load(t, catalog.HomeServices, "")
	submitAll(t, c, "service", "plumbing", "urgency", "emergency", "area", "north")

	snap := submitAll(t, c, "urgency", "flexible")
	assert.Equal(t, models.AnswerSet{"service": "plumbing", "urgency": "flexible"}, snap.Answers)
	assert.Equal(t, "area", snap.Current.ID)
}

func TestSubmit_GatedFollowUpIsDropped(t *testing.T) {
	c := newFixture(t).load(t, catalog.HomeServices, "")
	snap := submitAll(t, c, "service", "cleaning")
	assert.Equal(t, "frequency", snap.Current.ID)

	submitAll(t, c, "frequency", "weekly", "urgency", "this-week", "area", "east")
	snap = submitAll(t, c, "service", "electrical")
	assert.False(t, snap.Answers.Has("frequency"))
	assert.Equal(t, "urgency", snap.Current.ID)
	assert.Equal(t, 3, snap.Total)
}

func TestSubmit_SameValueIsNoop(t *testing.T) {
	c := newFixture(t).load(t, catalog.RestaurantsCafes, "")
	submitAll(t, c, "budget", "casual", "cuisine", "italian")

	var notified int
	c.Subscribe(func(Snapshot) { notified++ })

	snap := submitAll(t, c, "budget", "casual")
	assert.Equal(t, Complete, snap.State)
	assert.Equal(t, models.AnswerSet{"budget": "casual", "cuisine": "italian"}, snap.Answers)
	assert.Zero(t, notified)
}

func TestSubmit_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		setup    []string
		question string
		value    string
		want     error
	}{
		{"invalid option", nil, "budget", "cheap", ErrInvalidOption},
		{"unknown question", nil, "parking", "yes", ErrQuestionNotActive},
		{"gated question", []string{"budget", "casual"}, "ambience", "romantic", ErrQuestionNotActive},
		{"skips open question", nil, "cuisine", "italian", ErrOutOfOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newFixture(t).load(t, catalog.RestaurantsCafes, "")
			submitAll(t, c, tt.setup...)
			before := c.Answers()

			_, err := c.Submit(context.Background(), tt.question, tt.value)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, c.Answers())
		})
	}
}

func TestLoad_Recovery(t *testing.T) {
	tests := []struct {
		name    string
		saved   models.AnswerSet
		raw     string
		state   State
		answers models.AnswerSet
		cleared bool
	}{
		{
			name:    "resume at first gap",
			saved:   models.AnswerSet{"budget": "fine-dining", "cuisine": "italian"},
			state:   InProgress,
			answers: models.AnswerSet{"budget": "fine-dining", "cuisine": "italian"},
		},
		{
			name:    "resume complete",
			saved:   models.AnswerSet{"budget": "casual", "cuisine": "indian"},
			state:   Complete,
			answers: models.AnswerSet{"budget": "casual", "cuisine": "indian"},
		},
		{
			name:    "retired question",
			saved:   models.AnswerSet{"budget": "casual", "cuisine": "indian", "dress-code": "smart"},
			state:   NotStarted,
			answers: models.AnswerSet{},
			cleared: true,
		},
		{
			name:    "unknown option",
			saved:   models.AnswerSet{"budget": "street-food"},
			state:   NotStarted,
			answers: models.AnswerSet{},
			cleared: true,
		},
		{
			name:    "answer the combination never asks",
			saved:   models.AnswerSet{"budget": "casual", "cuisine": "italian", "ambience": "romantic"},
			state:   NotStarted,
			answers: models.AnswerSet{},
			cleared: true,
		},
		{
			name:    "malformed record",
			raw:     `{"category":"restaurants-cafes","answers":["budget"]}`,
			state:   NotStarted,
			answers: models.AnswerSet{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			key := store.SlotKey{SessionID: "sess-1", Category: catalog.RestaurantsCafes}
			if tt.raw != "" {
				f.slot.Put(key, []byte(tt.raw))
			} else {
				require.NoError(t, f.store.Save(context.Background(), key, tt.saved))
			}

			snap := f.load(t, catalog.RestaurantsCafes, "").Snapshot()
			assert.Equal(t, tt.state, snap.State)
			assert.Equal(t, tt.answers, snap.Answers)

			if tt.cleared {
				_, err := f.slot.Load(context.Background(), key)
				assert.ErrorIs(t, err, store.ErrSlotEmpty)
			}
		})
	}
}

func TestTransitionsPersist(t *testing.T) {
	f := newFixture(t)
	c := f.load(t, catalog.HealthWellness, "")
	submitAll(t, c, "focus", "physio", "format", "in-person")

	resumed := f.load(t, catalog.HealthWellness, "")
	snap := resumed.Snapshot()
	assert.Equal(t, InProgress, snap.State)
	assert.Equal(t, "area", snap.Current.ID)

	_, err := resumed.Reset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NotStarted, f.load(t, catalog.HealthWellness, "").Snapshot().State)
}

func TestRemoteSync(t *testing.T) {
	f := newFixture(t)
	c := f.load(t, catalog.RestaurantsCafes, "user-42")

	submitAll(t, c, "budget", "casual", "cuisine", "cafe")
	require.Len(t, f.sync.calls, 2)
	last := f.sync.calls[1]
	assert.Equal(t, "user-42", last.userID)
	assert.Equal(t, catalog.RestaurantsCafes, last.category)
	assert.Equal(t, models.AnswerSet{"budget": "casual", "cuisine": "cafe"}, last.answers)

	submitAll(t, c, "budget", "mid-range")
	assert.Equal(t, "cafe", f.sync.calls[1].answers["cuisine"], "queued jobs hold their own copy")

	f.sync.full = true
	_, err := c.Reset(context.Background())
	assert.NoError(t, err, "a dropped sync is not surfaced")
}

func TestAnonymousSessionsDoNotSync(t *testing.T) {
	f := newFixture(t)
	c := f.load(t, catalog.RestaurantsCafes, "")
	submitAll(t, c, "budget", "casual")
	assert.Empty(t, f.sync.calls)
}

func TestSlotFailuresAreNotSurfaced(t *testing.T) {
	log := logger.NewTestLogger(t)
	c, err := Load(context.Background(), Options{
		SessionID: "sess-1",
		Category:  catalog.RestaurantsCafes,
		Store:     store.New(failingSlot{}, log),
		Logger:    log,
	})
	require.NoError(t, err)

	snap, err := c.Submit(context.Background(), "budget", "casual")
	require.NoError(t, err)
	assert.Equal(t, InProgress, snap.State)

	_, err = c.Reset(context.Background())
	assert.NoError(t, err)
}

func TestSubscribe(t *testing.T) {
	c := newFixture(t).load(t, catalog.RestaurantsCafes, "")

	var first, second []State
	cancel := c.Subscribe(func(s Snapshot) { first = append(first, s.State) })
	c.Subscribe(func(s Snapshot) { second = append(second, s.State) })

	submitAll(t, c, "budget", "casual")
	cancel()
	submitAll(t, c, "cuisine", "italian")

	assert.Equal(t, []State{InProgress}, first)
	assert.Equal(t, []State{InProgress, Complete}, second)

	c.Close()
	_, err := c.Reset(context.Background())
	require.NoError(t, err)
	assert.Len(t, second, 2)
}

func TestSnapshotIsACopy(t *testing.T) {
	c := newFixture(t).load(t, catalog.RestaurantsCafes, "")
	snap := submitAll(t, c, "budget", "casual")

	snap.Answers["budget"] = "fine-dining"
	assert.Equal(t, "casual", c.Answers()["budget"])

	snap.Questions[0].Options[0] = models.Option{Value: "hacked", Label: "Hacked"}
	snap.Current.Options[0] = models.Option{Value: "hacked", Label: "Hacked"}

	fresh := c.Snapshot()
	assert.Equal(t, "casual", fresh.Questions[0].Options[0].Value)
	assert.Equal(t, "italian", fresh.Current.Options[0].Value)
	cat, err := catalog.Get(catalog.RestaurantsCafes)
	require.NoError(t, err)
	assert.Equal(t, "casual", cat.Questions(models.AnswerSet{})[0].Options[0].Value)
}

func TestState_Text(t *testing.T) {
	for _, s := range []State{NotStarted, InProgress, Complete} {
		text, err := s.MarshalText()
		require.NoError(t, err)
		var back State
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, s, back)
	}
	var s State
	assert.Error(t, s.UnmarshalText([]byte("paused")))
}

type fakeRestorer struct {
	answers models.AnswerSet
	err     error
	calls   int
}

func (r *fakeRestorer) Fetch(_ context.Context, _, _ string) (models.AnswerSet, bool, error) {
	r.calls++
	if r.err != nil {
		return nil, false, r.err
	}
	return r.answers, r.answers != nil, nil
}

func TestLoad_RestoresRemoteCopy(t *testing.T) {
	f := newFixture(t)
	remote := &fakeRestorer{answers: models.AnswerSet{"budget": "casual"}}

	c, err := Load(context.Background(), Options{
		SessionID: "other-device",
		UserID:    "user-42",
		Category:  catalog.RestaurantsCafes,
		Store:     f.store,
		Restore:   remote,
		Logger:    f.log,
	})
	require.NoError(t, err)

	snap := c.Snapshot()
	assert.Equal(t, InProgress, snap.State)
	assert.Equal(t, models.AnswerSet{"budget": "casual"}, snap.Answers)

	saved, ok := f.store.Load(context.Background(), store.SlotKey{SessionID: "other-device", Category: catalog.RestaurantsCafes})
	require.True(t, ok)
	assert.Equal(t, snap.Answers, saved)
}

func TestLoad_RemoteRestoreRules(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		remote *fakeRestorer
		local  models.AnswerSet
		want   models.AnswerSet
		calls  int
	}{
		{"anonymous", "", &fakeRestorer{answers: models.AnswerSet{"budget": "casual"}}, nil, models.AnswerSet{}, 0},
		{"local slot wins", "user-42", &fakeRestorer{answers: models.AnswerSet{"budget": "casual"}}, models.AnswerSet{"budget": "mid-range"}, models.AnswerSet{"budget": "mid-range"}, 0},
		{"fetch error", "user-42", &fakeRestorer{err: errors.New("timeout")}, nil, models.AnswerSet{}, 1},
		{"stale remote copy", "user-42", &fakeRestorer{answers: models.AnswerSet{"budget": "casual", "wifi": "yes"}}, nil, models.AnswerSet{}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.local != nil {
				require.NoError(t, f.store.Save(context.Background(),
					store.SlotKey{SessionID: "sess-1", Category: catalog.RestaurantsCafes}, tt.local))
			}

			c, err := Load(context.Background(), Options{
				SessionID: "sess-1",
				UserID:    tt.userID,
				Category:  catalog.RestaurantsCafes,
				Store:     f.store,
				Restore:   tt.remote,
				Logger:    f.log,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Answers())
			assert.Equal(t, tt.calls, tt.remote.calls)
		})
	}
}
