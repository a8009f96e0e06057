// internal/workers/funnel/score-providers/handler_test.go
package scoreproviders

import (
	"context"
	"testing"
	"time"

	"provider-funnel/internal/common/errors"
	"provider-funnel/internal/common/logger"
	"provider-funnel/internal/funnel"
	"provider-funnel/internal/funnel/store"
	"provider-funnel/internal/models"
	"provider-funnel/internal/providers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func rating(v float64) *float64 { return &v }

var gyms = []models.Provider{
	{ID: "iron-house", Category: "health-wellness", Name: "Iron House", Attributes: map[string][]string{
		"specialties": {"fitness"}, "formats": {"in-person"}, "service-areas": {"north"}, "price-tier": {"budget"}}},
	{ID: "peak-coach", Category: "health-wellness", Name: "Peak Coaching", Featured: true, Attributes: map[string][]string{
		"specialties": {"fitness"}, "formats": {"in-person", "online"}, "service-areas": {"north"}, "price-tier": {"budget"}}},
	{ID: "zen-online", Category: "health-wellness", Name: "Zen Online", Rating: rating(4.9), Attributes: map[string][]string{
		"specialties": {"mental-health"}, "formats": {"online"}, "price-tier": {"standard"}}},
	{ID: "south-fit", Category: "health-wellness", Name: "South Fit", Attributes: map[string][]string{
		"specialties": {"fitness"}, "formats": {"in-person"}, "service-areas": {"south"}, "price-tier": {"budget"}}},
}

func newTestHandler(t *testing.T, maxResults int) (*Handler, *store.Store) {
	log := &testLogger{t: t}
	st := store.New(store.NewMemorySlot(), log)
	svc := &funnel.Service{Store: st, Providers: providers.NewStaticSource(gyms), Logger: log}
	return NewHandler(&Config{Timeout: 5 * time.Second, MaxResults: maxResults}, svc, log), st
}

var inPersonFitness = models.AnswerSet{"focus": "fitness", "format": "in-person", "area": "north", "price": "budget"}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_RanksStoredAnswers(t *testing.T) {
	h, st := newTestHandler(t, 0)
	require.NoError(t, st.Save(context.Background(),
		store.SlotKey{SessionID: "s1", Category: "health-wellness"}, inPersonFitness))

	out, err := h.Execute(context.Background(), &Input{SessionID: "s1", Category: "health-wellness"})
	require.NoError(t, err)

	require.Len(t, out.Results, 2, "south-fit is outside the area and zen-online lacks the specialty")
	assert.Equal(t, "peak-coach", out.Results[0].Provider.ID, "featured wins the tie")
	assert.Equal(t, "iron-house", out.Results[1].Provider.ID)
	assert.Equal(t, out.Results[0].Score, out.Results[1].Score)
	assert.Equal(t, 2, out.MatchCount)
	assert.False(t, out.NoMatches)
}

func TestHandler_Execute_ExplicitAnswersAndTruncation(t *testing.T) {
	h, _ := newTestHandler(t, 1)

	out, err := h.Execute(context.Background(), &Input{Category: "health-wellness", Answers: inPersonFitness})
	require.NoError(t, err)
	assert.Len(t, out.Results, 1)
	assert.Equal(t, 2, out.MatchCount)
}

func TestHandler_Execute_NoMatches(t *testing.T) {
	h, _ := newTestHandler(t, 0)
	answers := models.AnswerSet{"focus": "physio", "format": "online", "price": "premium"}

	out, err := h.Execute(context.Background(), &Input{Category: "health-wellness", Answers: answers})
	require.NoError(t, err)
	assert.True(t, out.NoMatches)
	assert.Empty(t, out.Results)
}

func TestHandler_Execute_IncompleteFunnel(t *testing.T) {
	h, _ := newTestHandler(t, 0)

	_, err := h.Execute(context.Background(), &Input{SessionID: "fresh", Category: "health-wellness"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAnswersIncomplete, errors.Normalize(err).Code)
}

func TestHandler_Execute_RejectsImpossibleAnswers(t *testing.T) {
	h, _ := newTestHandler(t, 0)

	tests := []struct {
		name    string
		answers models.AnswerSet
	}{
		// area is only asked for in-person sessions
		{"gated-out area", models.AnswerSet{"focus": "fitness", "format": "online", "area": "north", "price": "budget"}},
		{"unknown option", models.AnswerSet{"focus": "yoga", "format": "online", "price": "budget"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Execute(context.Background(), &Input{Category: "health-wellness", Answers: tt.answers})
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeInvalidAnswer, errors.Normalize(err).Code)
		})
	}
}

func TestParseInput(t *testing.T) {
	_, err := parseInput(`{"category":"health-wellness"}`)
	assert.Error(t, err, "needs a session or explicit answers")

	input, err := parseInput(`{"category":"health-wellness","answers":{"focus":"fitness"}}`)
	require.NoError(t, err)
	assert.Equal(t, "fitness", input.Answers["focus"])
}
