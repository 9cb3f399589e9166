package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/cardtable/solitaire-be/internal/cards"
	"github.com/cardtable/solitaire-be/internal/db"
	"github.com/cardtable/solitaire-be/internal/game"
	"github.com/cardtable/solitaire-be/internal/session"
	"github.com/cardtable/solitaire-be/internal/store"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Handlers contains all the API handlers
type Handlers struct {
	store    store.Store
	database *db.Database
	hub      *Hub
	cfg      session.Config
	logger   *zap.Logger
}

// NewHandlers creates a new instance of Handlers. The logger is handed to
// each session it creates, it may be nil.
func NewHandlers(store store.Store, database *db.Database, hub *Hub, cfg session.Config, logger *zap.Logger) *Handlers {
	return &Handlers{
		store:    store,
		database: database,
		hub:      hub,
		cfg:      cfg,
		logger:   logger,
	}
}

// RegisterRoutes registers all API routes
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	// Game endpoints
	r.HandleFunc("/api/game/new", h.NewGame).Methods("POST")
	r.HandleFunc("/api/game/variants", h.ListVariants).Methods("GET")
	r.HandleFunc("/api/game/list", h.ListGames).Methods("GET")
	r.HandleFunc("/api/game/{id}/press", h.Press).Methods("POST")
	r.HandleFunc("/api/game/{id}/drag", h.Drag).Methods("POST")
	r.HandleFunc("/api/game/{id}/release", h.Release).Methods("POST")
	r.HandleFunc("/api/game/{id}/undo", h.Undo).Methods("POST")
	r.HandleFunc("/api/game/{id}/restart", h.Restart).Methods("POST")
	r.HandleFunc("/api/game/{id}/deal", h.NewDeal).Methods("POST")
	r.HandleFunc("/api/game/{id}/resize", h.Resize).Methods("POST")
	r.HandleFunc("/api/game/{id}", h.GetGame).Methods("GET")
	r.HandleFunc("/api/game/{id}", h.DeleteGame).Methods("DELETE")

	// Variant endpoints
	r.HandleFunc("/api/variant/{variant}/active", h.GetActiveGame).Methods("GET")
	r.HandleFunc("/api/variant/{variant}/stats", h.GetVariantStats).Methods("GET")

	// History endpoints
	r.HandleFunc("/api/history", h.ListHistory).Methods("GET")
	r.HandleFunc("/api/history/{id}", h.GetHistory).Methods("GET")
	r.HandleFunc("/api/history/{id}", h.DeleteHistory).Methods("DELETE")

	// WebSocket endpoint
	r.HandleFunc("/ws", h.hub.WebSocketHandler)
}

// response helper function to send JSON responses
func response(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// error response helper function
func errorResponse(w http.ResponseWriter, status int, message string) {
	response(w, status, map[string]string{"error": message})
}

// NewGame creates a new solitaire session
func (h *Handlers) NewGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Variant string `json:"variant"`
		Seed    int64  `json:"seed"`
		Width   int    `json:"width"`
		Height  int    `json:"height"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Variant == "" {
		req.Variant = "klondike"
	}

	sess, err := session.New(req.Variant, req.Seed, h.cfg, h.logger)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Unknown game variant")
		return
	}

	// Lay the board out for the client's viewport if it sent one
	if req.Width > 0 && req.Height > 0 {
		sess.Resize(req.Width, req.Height)
	}

	// Save to store
	if err := h.store.SaveSession(sess); err != nil {
		fmt.Println("err: ", err)
		errorResponse(w, http.StatusInternalServerError, "Failed to save game")
		return
	}

	// Save to database if available
	if h.database != nil {
		rec := db.GameRecord{
			ID:        sess.ID(),
			Variant:   sess.Variant(),
			Seed:      sess.Seed(),
			Status:    db.StatusActive,
			CreatedAt: sess.CreatedAt(),
		}
		if err := h.database.SaveGame(rec); err != nil {
			log.Printf("Error saving game record: %v", err)
		}
	}

	snap := sess.Snapshot()

	// Broadcast game creation to any early watchers
	if h.hub != nil {
		h.hub.BroadcastToGame(sess.ID(), Message{
			Type:   "gameCreated",
			GameID: sess.ID(),
			Data:   snap,
		})
	}

	response(w, http.StatusCreated, snap)
}

// Press delivers a pointer-down at board coordinates
func (h *Handlers) Press(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID := vars["id"]

	var req struct {
		X int `json:"x"`
		Y int `json:"y"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Get the session from store
	sess, err := h.store.GetSession(gameID)
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Game not found")
		return
	}

	upd := sess.Press(cards.Point{X: req.X, Y: req.Y})
	snap := sess.Snapshot()

	// Broadcast game update to all watchers
	if h.hub != nil && upd.Changed {
		h.hub.BroadcastGameUpdate(snap)
	}

	// A double-click can finish the deal, record the win
	if res := sess.TakeResult(); res != nil {
		if h.hub != nil {
			h.hub.BroadcastToGame(res.GameID, Message{
				Type:   "gameWon",
				GameID: res.GameID,
				Data:   snap,
			})
		}
		if h.database != nil {
			h.database.UpdateGameStatus(res.GameID, db.StatusWon)
			h.database.SaveGameResult(res.GameID, res.Variant, res.Seed, res.Score, res.Moves, res.Duration)
		}
	}

	response(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"changed": upd.Changed,
		"won":     upd.Won,
		"game":    snap,
	})
}

// Drag moves the grabbed card to board coordinates
func (h *Handlers) Drag(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID := vars["id"]

	var req struct {
		X int `json:"x"`
		Y int `json:"y"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Get the session from store
	sess, err := h.store.GetSession(gameID)
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Game not found")
		return
	}

	upd := sess.Drag(cards.Point{X: req.X, Y: req.Y})

	response(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"changed": upd.Changed,
		"game":    sess.Snapshot(),
	})
}

// Release delivers a pointer-up, resolving drops and clicks
func (h *Handlers) Release(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID := vars["id"]

	var req struct {
		X int `json:"x"`
		Y int `json:"y"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Get the session from store
	sess, err := h.store.GetSession(gameID)
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Game not found")
		return
	}

	upd := sess.Release(cards.Point{X: req.X, Y: req.Y})
	snap := sess.Snapshot()

	// Broadcast game update to all watchers
	if h.hub != nil && upd.Changed {
		h.hub.BroadcastGameUpdate(snap)
	}

	// If the deal was just won, record the result
	if res := sess.TakeResult(); res != nil {
		if h.hub != nil {
			h.hub.BroadcastToGame(res.GameID, Message{
				Type:   "gameWon",
				GameID: res.GameID,
				Data:   snap,
			})
		}
		if h.database != nil {
			h.database.UpdateGameStatus(res.GameID, db.StatusWon)
			h.database.SaveGameResult(res.GameID, res.Variant, res.Seed, res.Score, res.Moves, res.Duration)
		}
	}

	response(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"changed": upd.Changed,
		"won":     upd.Won,
		"game":    snap,
	})
}

// Undo reverts the last move
func (h *Handlers) Undo(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID := vars["id"]

	// Get the session from store
	sess, err := h.store.GetSession(gameID)
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Game not found")
		return
	}

	upd := sess.Undo()
	if !upd.Changed {
		errorResponse(w, http.StatusBadRequest, "Unable to undo")
		return
	}

	snap := sess.Snapshot()

	// Broadcast game update to all watchers
	if h.hub != nil {
		h.hub.BroadcastGameUpdate(snap)
	}

	response(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"game":    snap,
	})
}

// Restart re-deals the current shuffle from the top
func (h *Handlers) Restart(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID := vars["id"]

	// Get the session from store
	sess, err := h.store.GetSession(gameID)
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Game not found")
		return
	}

	sess.Restart()
	snap := sess.Snapshot()

	// The deal is live again
	if h.database != nil {
		h.database.UpdateGameStatus(gameID, db.StatusActive)
	}

	// Broadcast game update to all watchers
	if h.hub != nil {
		h.hub.BroadcastGameUpdate(snap)
	}

	response(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"game":    snap,
	})
}

// NewDeal shuffles and deals a fresh board in the same session
func (h *Handlers) NewDeal(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID := vars["id"]

	var req struct {
		Seed int64 `json:"seed"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Get the session from store
	sess, err := h.store.GetSession(gameID)
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Game not found")
		return
	}

	seed := sess.NewDeal(req.Seed)
	snap := sess.Snapshot()

	// Save the new deal to the database if available
	if h.database != nil {
		rec := db.GameRecord{
			ID:        sess.ID(),
			Variant:   sess.Variant(),
			Seed:      seed,
			Status:    db.StatusActive,
			CreatedAt: sess.CreatedAt(),
		}
		if err := h.database.SaveGame(rec); err != nil {
			log.Printf("Error saving game record: %v", err)
		}
	}

	// Broadcast game update to all watchers
	if h.hub != nil {
		h.hub.BroadcastGameUpdate(snap)
	}

	response(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"seed":    seed,
		"game":    snap,
	})
}

// Resize lays the board out for a new viewport size
func (h *Handlers) Resize(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID := vars["id"]

	var req struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Width <= 0 || req.Height <= 0 {
		errorResponse(w, http.StatusBadRequest, "Invalid board size")
		return
	}

	// Get the session from store
	sess, err := h.store.GetSession(gameID)
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Game not found")
		return
	}

	sess.Resize(req.Width, req.Height)
	snap := sess.Snapshot()

	// Broadcast the new layout to all watchers
	if h.hub != nil {
		h.hub.BroadcastGameUpdate(snap)
	}

	response(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"game":    snap,
	})
}

// GetGame returns the current state of a session
func (h *Handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID := vars["id"]

	// Get the session from store
	sess, err := h.store.GetSession(gameID)
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Game not found")
		return
	}

	// Return the sanitized state, face-down cards stay hidden
	response(w, http.StatusOK, sess.Snapshot())
}

// DeleteGame removes a session
func (h *Handlers) DeleteGame(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID := vars["id"]

	// Get the session from store
	sess, err := h.store.GetSession(gameID)
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Game not found")
		return
	}

	won := sess.Won()

	if err := h.store.DeleteSession(gameID); err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to delete game")
		return
	}

	// A deal abandoned before winning is recorded as such
	if h.database != nil && !won {
		h.database.UpdateGameStatus(gameID, db.StatusAbandoned)
	}

	// Broadcast game deletion to all watchers
	if h.hub != nil {
		h.hub.BroadcastToGame(gameID, Message{
			Type:   "gameDeleted",
			GameID: gameID,
		})
	}

	response(w, http.StatusOK, map[string]string{
		"success": "true",
		"message": "Game deleted",
	})
}

// ListVariants returns the playable game variants
func (h *Handlers) ListVariants(w http.ResponseWriter, r *http.Request) {
	names := game.Names()

	variants := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		g, err := game.Load(name, nil)
		if err != nil {
			continue
		}
		variants = append(variants, map[string]interface{}{
			"name":  name,
			"title": g.Name(),
		})
	}

	response(w, http.StatusOK, variants)
}

// ListGames returns a list of live sessions
func (h *Handlers) ListGames(w http.ResponseWriter, r *http.Request) {
	variant := r.URL.Query().Get("variant")

	var sessions []*session.Session
	var err error
	if variant != "" {
		sessions, err = h.store.GetVariantSessions(variant)
	} else {
		sessions, err = h.store.GetAllSessions()
	}
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Error retrieving games")
		return
	}

	games := make([]map[string]interface{}, 0, len(sessions))
	for _, sess := range sessions {
		games = append(games, map[string]interface{}{
			"id":        sess.ID(),
			"variant":   sess.Variant(),
			"seed":      sess.Seed(),
			"won":       sess.Won(),
			"createdAt": sess.CreatedAt().Format(time.RFC3339),
		})
	}

	response(w, http.StatusOK, games)
}

// GetActiveGame returns an unfinished session for a variant
func (h *Handlers) GetActiveGame(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	variant := vars["variant"]

	sess, err := h.store.GetActiveVariantSession(variant)
	if err != nil {
		errorResponse(w, http.StatusNotFound, "No active game found for variant")
		return
	}

	response(w, http.StatusOK, sess.Snapshot())
}

// GetVariantStats returns aggregate statistics for a variant
func (h *Handlers) GetVariantStats(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	variant := vars["variant"]

	if h.database == nil {
		errorResponse(w, http.StatusInternalServerError, "Database not available")
		return
	}

	if _, err := game.Load(variant, nil); err != nil {
		errorResponse(w, http.StatusNotFound, "Unknown game variant")
		return
	}

	stats, err := h.database.GetVariantStats(variant)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Error retrieving variant statistics")
		return
	}

	response(w, http.StatusOK, stats)
}

// ListHistory returns past deals from the database
func (h *Handlers) ListHistory(w http.ResponseWriter, r *http.Request) {
	if h.database == nil {
		errorResponse(w, http.StatusInternalServerError, "Database not available")
		return
	}

	records, err := h.database.ListGames()
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Error retrieving game history")
		return
	}

	if records == nil {
		records = []db.GameRecord{}
	}

	response(w, http.StatusOK, records)
}

// GetHistory returns a single past deal from the database
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID := vars["id"]

	if h.database == nil {
		errorResponse(w, http.StatusInternalServerError, "Database not available")
		return
	}

	rec, err := h.database.GetGame(gameID)
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Game not found")
		return
	}

	response(w, http.StatusOK, rec)
}

// DeleteHistory removes a past deal and its results from the database
func (h *Handlers) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID := vars["id"]

	if h.database == nil {
		errorResponse(w, http.StatusInternalServerError, "Database not available")
		return
	}

	if _, err := h.database.GetGame(gameID); err != nil {
		errorResponse(w, http.StatusNotFound, "Game not found")
		return
	}

	if err := h.database.DeleteGame(gameID); err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to delete game history")
		return
	}

	response(w, http.StatusOK, map[string]string{
		"success": "true",
		"message": "History deleted",
	})
}
