package providers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"provider-funnel/internal/common/database"
	"provider-funnel/internal/common/logger"
	"provider-funnel/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func providerIDs(list []models.Provider) []string {
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = p.ID
	}
	return out
}

// ==========================
// Postgres
// ==========================

func TestPostgresSource(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "category", "name", "description", "phone", "email",
		"website", "address", "featured", "rating", "attributes"}).
		AddRow("p1", "home-services", "Sparkle", "", "", "", "", "", true, 4.2, []byte(`{"services":["cleaning"]}`)).
		AddRow("p2", "home-services", "Volt", "", "", "", "", "", false, nil, nil)
	mock.ExpectQuery("SELECT id, category, name").WithArgs("home-services").WillReturnRows(rows)

	list, err := NewPostgresSource(&database.PostgresClient{DB: db}).Providers(context.Background(), "home-services")
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.True(t, list[0].Featured)
	require.NotNil(t, list[0].Rating)
	assert.Equal(t, 4.2, *list[0].Rating)
	assert.Equal(t, []string{"cleaning"}, list[0].Attributes["services"])
	assert.Nil(t, list[1].Rating)
	assert.Nil(t, list[1].Attributes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id").WillReturnError(sql.ErrConnDone)
	_, err = NewPostgresSource(&database.PostgresClient{DB: db}).Providers(context.Background(), "x")
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

// ==========================
// Elasticsearch
// ==========================

func newTestES(t *testing.T, handler http.HandlerFunc) *database.ElasticsearchClient {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return &database.ElasticsearchClient{Client: es, Index: "providers-test"}
}

func TestElasticsearchSource(t *testing.T) {
	var query map[string]interface{}
	es := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/providers-test/_search", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &query))
		io.WriteString(w, `{"hits":{"hits":[
			{"_id":"doc-1","_source":{"category":"health-wellness","name":"Core Physio","attributes":{"specialties":["physio"]}}},
			{"_id":"doc-2","_source":{"id":"yoga-loft","category":"health-wellness","name":"Yoga Loft","featured":true}}
		]}}`)
	})

	list, err := NewElasticsearchSource(es, 50).Providers(context.Background(), "health-wellness")
	require.NoError(t, err)

	assert.Equal(t, []string{"doc-1", "yoga-loft"}, providerIDs(list))
	assert.Equal(t, []string{"physio"}, list[0].Attributes["specialties"])
	assert.True(t, list[1].Featured)
	assert.EqualValues(t, 50, query["size"])
}

func TestElasticsearchSource_ErrorStatus(t *testing.T) {
	es := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"error":"cluster_block_exception"}`)
	})

	_, err := NewElasticsearchSource(es, 0).Providers(context.Background(), "health-wellness")
	assert.Error(t, err)
}

// ==========================
// Files
// ==========================

func TestFileSource_YAML(t *testing.T) {
	src, err := NewFileSource(filepath.Join("testdata", "providers.yaml"))
	require.NoError(t, err)

	list, err := src.Providers(context.Background(), "restaurants-cafes")
	require.NoError(t, err)
	assert.Equal(t, []string{"trattoria-roma", "nonna-pizza"}, providerIDs(list))
	require.NotNil(t, list[0].Rating)
	assert.Equal(t, 4.6, *list[0].Rating)

	list, err = src.Providers(context.Background(), "pet-care")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestReadYAML_Errors(t *testing.T) {
	_, err := ReadYAML(strings.NewReader("providers:\n  - name: Nameless\n    category: home-services\n"))
	assert.Error(t, err)

	_, err = ReadYAML(strings.NewReader("providers:\n  - id: a\n    category: x\n    colour: red\n"))
	assert.Error(t, err, "unknown fields are rejected")

	list, err := ReadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func writeWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadXLSX(t *testing.T) {
	buf := writeWorkbook(t, [][]interface{}{
		{"ID", "Category", "Name", "Featured", "Rating", "attr:services", "attr:service-areas"},
		{"sparkle", "home-services", "Sparkle Cleaning", "TRUE", "4.8", "cleaning", "north; east"},
		{},
		{"volt", "home-services", "Volt Electric", "false", "", "electrical", "south"},
	})

	list, err := ReadXLSX(buf)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "Sparkle Cleaning", list[0].Name)
	assert.True(t, list[0].Featured)
	assert.Equal(t, 4.8, *list[0].Rating)
	assert.Equal(t, []string{"north", "east"}, list[0].Attributes["service-areas"])
	assert.False(t, list[1].Featured)
	assert.Nil(t, list[1].Rating)
}

func TestReadXLSX_BadCell(t *testing.T) {
	buf := writeWorkbook(t, [][]interface{}{
		{"id", "category", "rating"},
		{"a", "home-services", "five stars"},
	})
	_, err := ReadXLSX(buf)
	assert.ErrorContains(t, err, "row 2")
}

func TestNewFileSource_XLSXAndUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	buf := writeWorkbook(t, [][]interface{}{
		{"id", "category", "name"},
		{"a", "health-wellness", "Anchor Gym"},
	})
	path := filepath.Join(dir, "providers.xlsx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	src, err := NewFileSource(path)
	require.NoError(t, err)
	list, err := src.Providers(context.Background(), "health-wellness")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, providerIDs(list))

	_, err = NewFileSource(filepath.Join(dir, "providers.csv"))
	assert.Error(t, err)
}

func TestSplitValues(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitValues(" a; b,c |"))
	assert.Empty(t, splitValues(" ; "))
}

// ==========================
// Redis cache
// ==========================

type countingSource struct {
	calls int
	list  []models.Provider
}

func (c *countingSource) Providers(_ context.Context, category string) ([]models.Provider, error) {
	c.calls++
	return c.list, nil
}

func TestCachedSource(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	inner := &countingSource{list: []models.Provider{{ID: "a", Category: "home-services", Name: "A"}}}
	src := NewCachedSource(inner, rdb, time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()

	first, err := src.Providers(ctx, "home-services")
	require.NoError(t, err)
	second, err := src.Providers(ctx, "home-services")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, time.Minute, mr.TTL("providers:home-services"))

	require.NoError(t, src.Invalidate(ctx, "home-services"))
	_, err = src.Providers(ctx, "home-services")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)

	require.NoError(t, mr.Set("providers:home-services", "not json"))
	_, err = src.Providers(ctx, "home-services")
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls)
}

func TestCachedSource_RedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	mr.Close()

	inner := &countingSource{list: []models.Provider{{ID: "a", Category: "home-services"}}}
	list, err := NewCachedSource(inner, rdb, time.Minute, logger.NewTestLogger(t)).Providers(context.Background(), "home-services")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
