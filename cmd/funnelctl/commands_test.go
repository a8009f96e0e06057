package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"provider-funnel/internal/funnel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const providersYAML = `providers:
  - id: nonna-pizza
    category: restaurants-cafes
    name: Nonna's Pizza
    phone: "+44 20 7946 0101"
    attributes:
      price-tier: [casual]
      cuisines: [italian]
  - id: sushi-go
    category: restaurants-cafes
    name: Sushi Go
    rating: 4.2
    attributes:
      price-tier: [mid-range]
      cuisines: [japanese]
`

func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{
		"--db", filepath.Join(dir, "answers.db"),
		"--providers", filepath.Join(dir, "providers.yaml"),
	}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func newWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "providers.yaml"), []byte(providersYAML), 0o644))
	return dir
}

func TestCategories(t *testing.T) {
	out, err := execute(t, newWorkspace(t), "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "restaurants-cafes")
	assert.Contains(t, out, "home-services")
	assert.Contains(t, out, "health-wellness")
	assert.Contains(t, out, "2-3", "the ambience follow-up is only asked for fine dining")
}

func TestAnswerStatusScoreReset(t *testing.T) {
	dir := newWorkspace(t)

	_, err := execute(t, dir, "answer", "restaurants-cafes", "budget", "mid-range")
	require.NoError(t, err)

	out, err := execute(t, dir, "status", "restaurants-cafes")
	require.NoError(t, err)
	assert.Contains(t, out, "in-progress")
	assert.Contains(t, out, "Mid-range")
	assert.Contains(t, out, "next: cuisine")

	_, err = execute(t, dir, "score", "restaurants-cafes")
	require.Error(t, err, "scoring needs a complete funnel")

	_, err = execute(t, dir, "answer", "restaurants-cafes", "cuisine", "italian")
	require.NoError(t, err)

	out, err = execute(t, dir, "--json", "score", "restaurants-cafes")
	require.NoError(t, err)
	var result struct {
		Results []struct {
			Provider struct {
				ID string `json:"id"`
			} `json:"provider"`
		} `json:"results"`
		MatchCount int `json:"matchCount"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Equal(t, 2, result.MatchCount)
	assert.Equal(t, "nonna-pizza", result.Results[0].Provider.ID)

	out, err = execute(t, dir, "score", "restaurants-cafes", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Nonna's Pizza")
	assert.NotContains(t, out, "Sushi Go")
	assert.Contains(t, out, "1/2")

	_, err = execute(t, dir, "reset", "restaurants-cafes")
	require.NoError(t, err)

	out, err = execute(t, dir, "--json", "status", "restaurants-cafes")
	require.NoError(t, err)
	var vars funnel.Variables
	require.NoError(t, json.Unmarshal([]byte(out), &vars))
	assert.Equal(t, "not-started", vars.FunnelState)
	assert.Empty(t, vars.Answers)
}

func TestSessionsAreSeparate(t *testing.T) {
	dir := newWorkspace(t)

	_, err := execute(t, dir, "-s", "alice", "answer", "restaurants-cafes", "budget", "casual")
	require.NoError(t, err)

	out, err := execute(t, dir, "-s", "bob", "--json", "status", "restaurants-cafes")
	require.NoError(t, err)
	var vars funnel.Variables
	require.NoError(t, json.Unmarshal([]byte(out), &vars))
	assert.Empty(t, vars.Answers)
}

func TestAnswerErrors(t *testing.T) {
	dir := newWorkspace(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown category", []string{"answer", "pet-care", "budget", "casual"}},
		{"invalid option", []string{"answer", "restaurants-cafes", "budget", "free"}},
		{"out of order", []string{"answer", "restaurants-cafes", "cuisine", "italian"}},
		{"missing args", []string{"answer", "restaurants-cafes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, dir, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestActivities(t *testing.T) {
	dir := newWorkspace(t)
	path := filepath.Join(dir, "activity-registry.json")

	out, err := execute(t, dir, "activities")
	require.NoError(t, err)
	assert.Contains(t, out, `"taskType": "funnel-score-providers"`)

	_, err = execute(t, dir, "activities", "--check", path)
	require.Error(t, err, "file does not exist yet")

	_, err = execute(t, dir, "activities", "--write", path)
	require.NoError(t, err)

	out, err = execute(t, dir, "activities", "--check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "up to date (4 activities)")

	require.NoError(t, os.WriteFile(path, []byte(`{"version":"1.0.0","activities":[{"id":"x","displayName":"X","category":"funnel","taskType":"funnel-load"}]}`), 0o644))
	_, err = execute(t, dir, "activities", "--check", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "changed funnel-load")
}
