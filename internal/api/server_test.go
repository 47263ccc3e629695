package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/rifty/internal/catalog"
	"github.com/ramonehamilton/rifty/internal/collection"
	"github.com/ramonehamilton/rifty/internal/events"
	"github.com/ramonehamilton/rifty/internal/facade"
	"github.com/ramonehamilton/rifty/internal/projection"
)

type memStore struct{ items []collection.OwnedCard }

func (m *memStore) Load() []collection.OwnedCard      { return m.items }
func (m *memStore) Save(items []collection.OwnedCard) { m.items = items }

func newTestServer(t *testing.T, cfg *Config) (*Server, *memStore) {
	t.Helper()

	cat, err := catalog.Load()
	require.NoError(t, err)

	dispatcher := events.NewDispatcher(nil)
	store := &memStore{}
	n := 0
	engine := collection.New(store,
		collection.WithNotifier(events.NewCollectionNotifier(dispatcher)),
		collection.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("inst-%d", n)
		}))
	f := facade.New(cat, engine, projection.DefaultViewOptions(), nil)

	s := NewServer(cfg, f, dispatcher, nil)
	t.Cleanup(s.WebSocketHub().Stop)
	return s, store
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, v))
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var health HealthResponse
	decodeData(t, rec, &health)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "dev", health.Version)
	assert.Zero(t, health.MutationLatency.Count)
}

func TestHealthReportsMutationLatency(t *testing.T) {
	s, _ := newTestServer(t, nil)
	do(t, s, http.MethodPost, "/api/v1/collection/items", `{"cardId":"OGN-7-fury"}`)
	do(t, s, http.MethodGet, "/api/v1/collection", "")

	rec := do(t, s, http.MethodGet, "/health", "")

	var health HealthResponse
	decodeData(t, rec, &health)
	assert.Equal(t, 1, health.MutationLatency.Count, "reads are not timed")
	assert.Equal(t, 1, health.TotalCount)
}

func TestCatalogRoutes(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/v1/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cards []catalog.Card
	decodeData(t, rec, &cards)
	assert.Len(t, cards, 20)

	rec = do(t, s, http.MethodGet, "/api/v1/catalog?limit=3", "")
	decodeData(t, rec, &cards)
	assert.Len(t, cards, 3)

	rec = do(t, s, http.MethodGet, "/api/v1/catalog?search=rune&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var results []catalog.SearchResult
	decodeData(t, rec, &results)
	require.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), 5)

	rec = do(t, s, http.MethodGet, "/api/v1/catalog/sets", "")
	var sets []catalog.Set
	decodeData(t, rec, &sets)
	require.Len(t, sets, 3)
	assert.Equal(t, "OGN", sets[0].Code)
}

func TestAddAndRemove(t *testing.T) {
	s, store := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/v1/collection/items", `{"cardId":"OGN-7-fury"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var item collection.OwnedCard
	decodeData(t, rec, &item)
	assert.Equal(t, "inst-1", item.InstanceID)
	assert.Len(t, store.items, 1)

	rec = do(t, s, http.MethodDelete, "/api/v1/collection/items/inst-1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, store.items)

	rec = do(t, s, http.MethodDelete, "/api/v1/collection/items/inst-1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddUnknownCard(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/v1/collection/items", `{"cardId":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/collection/items", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/collection/items", `{"cardId":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkAndRemoveOne(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/v1/collection/bulk", `{"setCode":"OGN","input":"7 7a x 99"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result collection.BulkResult
	decodeData(t, rec, &result)
	assert.Len(t, result.Added, 2)
	assert.Equal(t, []string{"x"}, result.Skipped)
	assert.Equal(t, []string{"99"}, result.Unmatched)

	rec = do(t, s, http.MethodPost, "/api/v1/collection/bulk", `{"setCode":"ZZZ","input":"1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/collection/remove-one",
		`{"setCode":"OGN","collectorNumber":7,"isAlternate":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/collection/remove-one",
		`{"setCode":"OGN","collectorNumber":7,"isAlternate":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/collection/all", "")
	var all []collection.OwnedCard
	decodeData(t, rec, &all)
	require.Len(t, all, 1)
	assert.False(t, all[0].IsAlternate)
}

func TestFilterAndSort(t *testing.T) {
	s, _ := newTestServer(t, nil)
	do(t, s, http.MethodPost, "/api/v1/collection/bulk", `{"setCode":"OGN","input":"1 2 3 4 5 6 7 8 9 10 11 12"}`)

	rec := do(t, s, http.MethodPut, "/api/v1/collection/filter", `{"key":"kind","value":"Rune"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var snap facade.Snapshot
	decodeData(t, rec, &snap)
	assert.Equal(t, 12, snap.TotalCount)
	assert.Equal(t, catalog.KindRune, snap.Filter.Kind)
	for _, item := range snap.Items {
		assert.Equal(t, catalog.KindRune, item.Kind)
	}

	rec = do(t, s, http.MethodPut, "/api/v1/collection/filter", `{"key":"rarity","value":"Mythic"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodPut, "/api/v1/collection/filter", `{"key":"color","value":"Red"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/v1/collection/filter", "")
	decodeData(t, rec, &snap)
	assert.Equal(t, 12, snap.DisplayedCount)

	rec = do(t, s, http.MethodPut, "/api/v1/collection/sort", `{"field":"name"}`)
	decodeData(t, rec, &snap)
	assert.Equal(t, collection.Descending, snap.Sort.Direction)

	rec = do(t, s, http.MethodPut, "/api/v1/collection/sort", `{"field":"color"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/collection", "")
	decodeData(t, rec, &snap)
	assert.Equal(t, collection.SortByName, snap.Sort.Field)
}

func TestCollectionSets(t *testing.T) {
	s, _ := newTestServer(t, nil)
	do(t, s, http.MethodPost, "/api/v1/collection/items", `{"cardId":"OGN-7-fury"}`)

	rec := do(t, s, http.MethodGet, "/api/v1/collection/sets", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view projection.CatalogView
	decodeData(t, rec, &view)
	require.Len(t, view.Sets, 2)
	assert.Equal(t, 1, view.Sets[0].Stats.UniqueOwned)
}

func TestContentTypeEnforced(t *testing.T) {
	s, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/collection/items", bytes.NewBufferString(`{"cardId":"OGN-7-fury"}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestMutationsAreRateLimited(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = 0.001
	cfg.RateBurst = 2
	s, _ := newTestServer(t, cfg)

	for range 2 {
		rec := do(t, s, http.MethodPost, "/api/v1/collection/items", `{"cardId":"OGN-7-fury"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := do(t, s, http.MethodPost, "/api/v1/collection/items", `{"cardId":"OGN-7-fury"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	rec = do(t, s, http.MethodGet, "/api/v1/collection", "")
	assert.Equal(t, http.StatusOK, rec.Code, "reads are not throttled")
}

func TestWebSocketReceivesChanges(t *testing.T) {
	s, _ := newTestServer(t, nil)
	server := httptest.NewServer(s.Handler())
	t.Cleanup(server.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.Eventually(t, func() bool { return s.WebSocketHub().ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	do(t, s, http.MethodPost, "/api/v1/collection/items", `{"cardId":"OGN-7-fury"}`)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame struct {
		Type string            `json:"type"`
		Data collection.Change `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, events.CollectionUpdated, frame.Type)
	assert.Equal(t, 1, frame.Data.TotalCount)
	require.Len(t, frame.Data.Added, 1)
	assert.Equal(t, "OGN-7-fury", frame.Data.Added[0].ID)
}

func TestStartAndShutdown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	s, _ := newTestServer(t, cfg)

	require.NoError(t, s.Start())
	require.NoError(t, s.Shutdown(t.Context()))
	require.Eventually(t, s.WebSocketHub().IsStopped, time.Second, 10*time.Millisecond)
}
