package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtable/solitaire-be/internal/db"
	"github.com/cardtable/solitaire-be/internal/session"
	"github.com/cardtable/solitaire-be/internal/store"
)

func newTestRouter(t *testing.T, database *db.Database) *mux.Router {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	h := NewHandlers(store.NewMemoryStore(), database, hub, session.Config{}, nil)
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func newTestDatabase(t *testing.T) *db.Database {
	t.Helper()
	database, err := db.NewDatabase(filepath.Join(t.TempDir(), "games.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

// doJSON sends a request through the router. A nil body sends an empty
// request, a string is sent raw, anything else is JSON encoded.
func doJSON(t *testing.T, r *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&m))
	return m
}

func createGame(t *testing.T, r *mux.Router, body map[string]interface{}) session.Snapshot {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/api/game/new", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	var snap session.Snapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	require.NotEmpty(t, snap.ID)
	return snap
}

func getSnapshot(t *testing.T, r *mux.Router, id string) session.Snapshot {
	t.Helper()
	rec := doJSON(t, r, http.MethodGet, "/api/game/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap session.Snapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	return snap
}

func findSlotView(t *testing.T, snap session.Snapshot, name string) session.SlotView {
	t.Helper()
	for _, sv := range snap.Slots {
		if sv.Name == name {
			return sv
		}
	}
	t.Fatalf("no slot %q in snapshot", name)
	return session.SlotView{}
}

func rectCenter(r session.RectView) map[string]interface{} {
	return map[string]interface{}{"x": r.X + r.W/2, "y": r.Y + r.H/2}
}

// clickAt presses and releases at the same point, which is how a client
// delivers a click.
func clickAt(t *testing.T, r *mux.Router, id string, at map[string]interface{}) map[string]interface{} {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/api/game/"+id+"/press", at)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, r, http.MethodPost, "/api/game/"+id+"/release", at)
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeMap(t, rec)
}

func TestNewGame_CreatesSession(t *testing.T) {
	r := newTestRouter(t, nil)

	snap := createGame(t, r, map[string]interface{}{"variant": "klondike", "seed": 7})

	assert.Equal(t, "Klondike", snap.Variant)
	assert.Equal(t, "Klondike #7", snap.Title)
	assert.Equal(t, int64(7), snap.Seed)
	assert.Equal(t, "Cards to uncover: 45", snap.Status)
	assert.False(t, snap.Won)
	assert.Len(t, snap.Cards, 52)
	assert.Len(t, snap.Slots, 13)
	assert.Equal(t, session.RectView{X: 21, Y: 10, W: 919, H: 610}, snap.Board)
}

func TestNewGame_ClientViewport(t *testing.T) {
	r := newTestRouter(t, nil)

	small := createGame(t, r, map[string]interface{}{"variant": "klondike", "seed": 7})
	big := createGame(t, r, map[string]interface{}{
		"variant": "klondike", "seed": 7, "width": 1920, "height": 1080,
	})

	assert.Greater(t, big.Board.W, small.Board.W)
	assert.Greater(t, big.Cards[0].Rect.W, small.Cards[0].Rect.W)
}

func TestNewGame_DefaultsToKlondike(t *testing.T) {
	r := newTestRouter(t, nil)

	snap := createGame(t, r, map[string]interface{}{})

	assert.Equal(t, "Klondike", snap.Variant)
	assert.Len(t, snap.Cards, 52)
}

func TestNewGame_UnknownVariant(t *testing.T) {
	r := newTestRouter(t, nil)

	rec := doJSON(t, r, http.MethodPost, "/api/game/new", map[string]interface{}{"variant": "poker"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Unknown game variant", decodeMap(t, rec)["error"])
}

func TestNewGame_InvalidBody(t *testing.T) {
	r := newTestRouter(t, nil)

	rec := doJSON(t, r, http.MethodPost, "/api/game/new", "not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decodeMap(t, rec)["error"])
}

func TestListVariants(t *testing.T) {
	r := newTestRouter(t, nil)

	rec := doJSON(t, r, http.MethodGet, "/api/game/variants", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var variants []map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&variants))
	require.Len(t, variants, 6)
	assert.Equal(t, "backbone", variants[0]["name"])
	assert.Equal(t, "Backbone", variants[0]["title"])
	assert.Equal(t, "klondike", variants[1]["name"])
	assert.Equal(t, "Klondike", variants[1]["title"])
}

func TestGetGame(t *testing.T) {
	r := newTestRouter(t, nil)
	snap := createGame(t, r, map[string]interface{}{"variant": "klondike", "seed": 1})

	got := getSnapshot(t, r, snap.ID)
	assert.Equal(t, snap.ID, got.ID)

	rec := doJSON(t, r, http.MethodGet, "/api/game/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Game not found", decodeMap(t, rec)["error"])
}

func TestStockClick_DealsToWaste(t *testing.T) {
	r := newTestRouter(t, nil)
	snap := createGame(t, r, map[string]interface{}{"variant": "klondike", "seed": 1})
	stock := findSlotView(t, snap, "Stock")
	require.Equal(t, 24, stock.Cards)

	// Pressing a face-down card only arms the click.
	rec := doJSON(t, r, http.MethodPost, "/api/game/"+snap.ID+"/press", rectCenter(stock.Rect))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, false, body["changed"])

	// The release delivers it.
	rec = doJSON(t, r, http.MethodPost, "/api/game/"+snap.ID+"/release", rectCenter(stock.Rect))
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeMap(t, rec)
	assert.Equal(t, true, body["changed"])
	assert.Equal(t, false, body["won"])

	after := getSnapshot(t, r, snap.ID)
	assert.Equal(t, 23, findSlotView(t, after, "Stock").Cards)
	assert.Equal(t, 1, findSlotView(t, after, "Waste").Cards)
	assert.Equal(t, 1, after.Moves)
}

func TestGesture_InvalidBody(t *testing.T) {
	r := newTestRouter(t, nil)
	snap := createGame(t, r, map[string]interface{}{"variant": "klondike", "seed": 1})

	for _, op := range []string{"press", "drag", "release"} {
		rec := doJSON(t, r, http.MethodPost, "/api/game/"+snap.ID+"/"+op, "not json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request body", decodeMap(t, rec)["error"])
	}
}

func TestGesture_UnknownGame(t *testing.T) {
	r := newTestRouter(t, nil)

	for _, op := range []string{"press", "drag", "release"} {
		rec := doJSON(t, r, http.MethodPost, "/api/game/nope/"+op, map[string]interface{}{"x": 0, "y": 0})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Game not found", decodeMap(t, rec)["error"])
	}
}

func TestUndo(t *testing.T) {
	r := newTestRouter(t, nil)
	snap := createGame(t, r, map[string]interface{}{"variant": "klondike", "seed": 1})

	// Nothing played yet.
	rec := doJSON(t, r, http.MethodPost, "/api/game/"+snap.ID+"/undo", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Unable to undo", decodeMap(t, rec)["error"])

	stock := findSlotView(t, snap, "Stock")
	clickAt(t, r, snap.ID, rectCenter(stock.Rect))

	rec = doJSON(t, r, http.MethodPost, "/api/game/"+snap.ID+"/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeMap(t, rec)["success"])

	after := getSnapshot(t, r, snap.ID)
	assert.Equal(t, 24, findSlotView(t, after, "Stock").Cards)
	assert.Equal(t, 0, findSlotView(t, after, "Waste").Cards)
}

func TestRestart(t *testing.T) {
	r := newTestRouter(t, nil)
	snap := createGame(t, r, map[string]interface{}{"variant": "klondike", "seed": 1})
	stock := findSlotView(t, snap, "Stock")
	clickAt(t, r, snap.ID, rectCenter(stock.Rect))

	rec := doJSON(t, r, http.MethodPost, "/api/game/"+snap.ID+"/restart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeMap(t, rec)["success"])

	after := getSnapshot(t, r, snap.ID)
	assert.Equal(t, int64(1), after.Seed)
	assert.Equal(t, 24, findSlotView(t, after, "Stock").Cards)
	assert.Equal(t, 0, after.Moves)
}

func TestNewDeal(t *testing.T) {
	r := newTestRouter(t, nil)
	snap := createGame(t, r, map[string]interface{}{"variant": "klondike", "seed": 1})

	rec := doJSON(t, r, http.MethodPost, "/api/game/"+snap.ID+"/deal", map[string]interface{}{"seed": 42})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(42), body["seed"])

	after := getSnapshot(t, r, snap.ID)
	assert.Equal(t, int64(42), after.Seed)
	assert.Equal(t, "Klondike #42", after.Title)
}

func TestResize(t *testing.T) {
	r := newTestRouter(t, nil)
	snap := createGame(t, r, map[string]interface{}{"variant": "klondike", "seed": 1})

	rec := doJSON(t, r, http.MethodPost, "/api/game/"+snap.ID+"/resize",
		map[string]interface{}{"width": 1920, "height": 1080})
	require.Equal(t, http.StatusOK, rec.Code)

	after := getSnapshot(t, r, snap.ID)
	assert.Equal(t, 208, after.Cards[0].Rect.W)

	rec = doJSON(t, r, http.MethodPost, "/api/game/"+snap.ID+"/resize",
		map[string]interface{}{"width": 0, "height": 1080})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid board size", decodeMap(t, rec)["error"])
}

func TestDeleteGame(t *testing.T) {
	database := newTestDatabase(t)
	r := newTestRouter(t, database)
	snap := createGame(t, r, map[string]interface{}{"variant": "klondike", "seed": 1})

	rec := doJSON(t, r, http.MethodDelete, "/api/game/"+snap.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, map[string]string{"success": "true", "message": "Game deleted"}, body)

	rec = doJSON(t, r, http.MethodGet, "/api/game/"+snap.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// An unfinished deal goes into history as abandoned.
	recHist := doJSON(t, r, http.MethodGet, "/api/history/"+snap.ID, nil)
	require.Equal(t, http.StatusOK, recHist.Code)
	var record db.GameRecord
	require.NoError(t, json.NewDecoder(recHist.Body).Decode(&record))
	assert.Equal(t, db.StatusAbandoned, record.Status)

	rec = doJSON(t, r, http.MethodDelete, "/api/game/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListGames(t *testing.T) {
	r := newTestRouter(t, nil)
	k := createGame(t, r, map[string]interface{}{"variant": "klondike", "seed": 1})
	createGame(t, r, map[string]interface{}{"variant": "yukon", "seed": 2})

	rec := doJSON(t, r, http.MethodGet, "/api/game/list", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var games []map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&games))
	require.Len(t, games, 2)
	for _, g := range games {
		assert.NotEmpty(t, g["id"])
		assert.NotEmpty(t, g["variant"])
		assert.Equal(t, false, g["won"])
		assert.NotEmpty(t, g["createdAt"])
	}

	rec = doJSON(t, r, http.MethodGet, "/api/game/list?variant=Klondike", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	games = nil
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&games))
	require.Len(t, games, 1)
	assert.Equal(t, k.ID, games[0]["id"])

	// A variant nobody is playing filters to an empty list.
	rec = doJSON(t, r, http.MethodGet, "/api/game/list?variant=Backbone", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	games = nil
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&games))
	assert.Empty(t, games)
}

func TestGetActiveGame(t *testing.T) {
	r := newTestRouter(t, nil)
	snap := createGame(t, r, map[string]interface{}{"variant": "klondike", "seed": 1})

	rec := doJSON(t, r, http.MethodGet, "/api/variant/Klondike/active", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got session.Snapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, snap.ID, got.ID)

	rec = doJSON(t, r, http.MethodGet, "/api/variant/Yukon/active", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No active game found for variant", decodeMap(t, rec)["error"])
}

func TestGetVariantStats(t *testing.T) {
	database := newTestDatabase(t)
	r := newTestRouter(t, database)
	createGame(t, r, map[string]interface{}{"variant": "klondike", "seed": 1})

	rec := doJSON(t, r, http.MethodGet, "/api/variant/Klondike/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats db.VariantStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Equal(t, "Klondike", stats.Variant)
	assert.Equal(t, 1, stats.GamesPlayed)
	assert.Equal(t, 0, stats.GamesWon)

	rec = doJSON(t, r, http.MethodGet, "/api/variant/poker/stats", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Unknown game variant", decodeMap(t, rec)["error"])
}

func TestGetVariantStats_NoDatabase(t *testing.T) {
	r := newTestRouter(t, nil)

	rec := doJSON(t, r, http.MethodGet, "/api/variant/Klondike/stats", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Database not available", decodeMap(t, rec)["error"])
}

func TestHistory(t *testing.T) {
	database := newTestDatabase(t)
	r := newTestRouter(t, database)
	snap := createGame(t, r, map[string]interface{}{"variant": "klondike", "seed": 1})

	rec := doJSON(t, r, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var records []db.GameRecord
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&records))
	require.Len(t, records, 1)
	assert.Equal(t, snap.ID, records[0].ID)
	assert.Equal(t, db.StatusActive, records[0].Status)

	rec = doJSON(t, r, http.MethodGet, "/api/history/"+snap.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/history/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/api/history/"+snap.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, map[string]string{"success": "true", "message": "History deleted"}, body)

	rec = doJSON(t, r, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	records = nil
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&records))
	assert.Empty(t, records)

	rec = doJSON(t, r, http.MethodDelete, "/api/history/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistory_NoDatabase(t *testing.T) {
	r := newTestRouter(t, nil)

	for _, req := range []struct{ method, path string }{
		{http.MethodGet, "/api/history"},
		{http.MethodGet, "/api/history/some-id"},
		{http.MethodDelete, "/api/history/some-id"},
	} {
		rec := doJSON(t, r, req.method, req.path, nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Database not available", decodeMap(t, rec)["error"])
	}
}

// The sandbox wins as soon as its last slot is used, which makes it the
// shortest path to a win over the wire.
func TestWin_RecordsResult(t *testing.T) {
	database := newTestDatabase(t)
	r := newTestRouter(t, database)
	snap := createGame(t, r, map[string]interface{}{"variant": "sandbox", "seed": 5})

	pile := snap.Slots[1]
	require.Equal(t, 52, pile.Cards)
	last := snap.Slots[len(snap.Slots)-1]
	require.Equal(t, 0, last.Cards)

	// The topmost card is painted last and is the tail of the fan.
	tail := snap.Cards[len(snap.Cards)-1]
	require.Equal(t, pile.Name, tail.Slot)
	require.True(t, tail.Draggable)

	rec := doJSON(t, r, http.MethodPost, "/api/game/"+snap.ID+"/press", rectCenter(tail.Rect))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, r, http.MethodPost, "/api/game/"+snap.ID+"/drag", rectCenter(last.Rect))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, r, http.MethodPost, "/api/game/"+snap.ID+"/release", rectCenter(last.Rect))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, true, body["changed"])
	assert.Equal(t, true, body["won"])

	after := getSnapshot(t, r, snap.ID)
	assert.True(t, after.Won)

	// The win went into the books.
	recHist := doJSON(t, r, http.MethodGet, "/api/history/"+snap.ID, nil)
	require.Equal(t, http.StatusOK, recHist.Code)
	var record db.GameRecord
	require.NoError(t, json.NewDecoder(recHist.Body).Decode(&record))
	assert.Equal(t, db.StatusWon, record.Status)

	recStats := doJSON(t, r, http.MethodGet, "/api/variant/Sandbox/stats", nil)
	require.Equal(t, http.StatusOK, recStats.Code)
	var stats db.VariantStats
	require.NoError(t, json.NewDecoder(recStats.Body).Decode(&stats))
	assert.Equal(t, 1, stats.GamesPlayed)
	assert.Equal(t, 1, stats.GamesWon)
	assert.Equal(t, 1, stats.BestMoves)
}

func TestWebSocket_WatchesGame(t *testing.T) {
	r := newTestRouter(t, nil)
	snap := createGame(t, r, map[string]interface{}{"variant": "klondike", "seed": 1})

	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?gameId=" + snap.ID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var welcome Message
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, "welcome", welcome.Type)

	// Give the hub a beat to file the client under the game.
	time.Sleep(50 * time.Millisecond)

	stock := findSlotView(t, snap, "Stock")
	clickAt(t, r, snap.ID, rectCenter(stock.Rect))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var update Message
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, "gameUpdate", update.Type)
	assert.Equal(t, snap.ID, update.GameID)
}
