package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type Database struct {
	db *sql.DB
}

// Game lifecycle states recorded in the games table.
const (
	StatusActive    = "active"
	StatusWon       = "won"
	StatusAbandoned = "abandoned"
)

// GameRecord is the persisted metadata for a deal. Live table state stays
// in memory, only the identity and outcome of a deal are stored.
type GameRecord struct {
	ID        string    `json:"id"`
	Variant   string    `json:"variant"`
	Seed      int64     `json:"seed"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type VariantStats struct {
	Variant     string    `json:"variant"`
	GamesPlayed int       `json:"gamesPlayed"`
	GamesWon    int       `json:"gamesWon"`
	BestMoves   int       `json:"bestMoves"`
	BestTimeMs  int64     `json:"bestTimeMs"`
	LastPlayed  time.Time `json:"lastPlayed"`
}

// NewDatabase opens the SQLite database at path and prepares the schema
func NewDatabase(path string) (*Database, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	// SQLite allows a single writer, keep one connection to avoid lock errors
	db.SetMaxOpenConns(1)

	// Initialize database tables
	if err := initTables(db); err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

// initTables creates the necessary tables if they don't exist
func initTables(db *sql.DB) error {
	// Games table
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			variant TEXT NOT NULL,
			seed INTEGER NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("error creating games table: %v", err)
	}

	// Game results table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS game_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			variant TEXT NOT NULL,
			seed INTEGER NOT NULL,
			score INTEGER NOT NULL,
			moves INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (game_id) REFERENCES games (id)
		)
	`)
	if err != nil {
		return fmt.Errorf("error creating game_results table: %v", err)
	}

	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// SaveGame saves a game record to the database
func (d *Database) SaveGame(rec GameRecord) error {
	_, err := d.db.Exec(`
		INSERT INTO games (id, variant, seed, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET seed = excluded.seed, status = excluded.status, updated_at = excluded.updated_at
	`,
		rec.ID, rec.Variant, rec.Seed, rec.Status, rec.CreatedAt, time.Now())
	return err
}

// GetGame retrieves a game record by ID
func (d *Database) GetGame(id string) (*GameRecord, error) {
	var rec GameRecord
	var updatedAt sql.NullTime

	err := d.db.QueryRow(`
		SELECT id, variant, seed, status, created_at, updated_at FROM games WHERE id = ?
	`, id).Scan(
		&rec.ID,
		&rec.Variant,
		&rec.Seed,
		&rec.Status,
		&rec.CreatedAt,
		&updatedAt,
	)

	if err != nil {
		return nil, errors.New("game not found")
	}

	rec.UpdatedAt = updatedAt.Time

	return &rec, nil
}

// ListGames returns all game records, newest first
func (d *Database) ListGames() ([]GameRecord, error) {
	rows, err := d.db.Query(`
		SELECT id, variant, seed, status, created_at, updated_at
		FROM games ORDER BY created_at DESC
	`)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []GameRecord
	for rows.Next() {
		var rec GameRecord
		var updatedAt sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.Variant, &rec.Seed, &rec.Status, &rec.CreatedAt, &updatedAt); err != nil {
			return nil, err
		}
		rec.UpdatedAt = updatedAt.Time
		records = append(records, rec)
	}

	return records, rows.Err()
}

// UpdateGameStatus updates a game's status in the database
func (d *Database) UpdateGameStatus(gameID, status string) error {
	_, err := d.db.Exec(
		"UPDATE games SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now(), gameID,
	)
	return err
}

// DeleteGame removes a game record and its results from the database
func (d *Database) DeleteGame(id string) error {
	if _, err := d.db.Exec("DELETE FROM game_results WHERE game_id = ?", id); err != nil {
		return err
	}
	_, err := d.db.Exec("DELETE FROM games WHERE id = ?", id)
	return err
}

// SaveGameResult saves the outcome of a won deal
func (d *Database) SaveGameResult(gameID, variant string, seed int64, score, moves int, duration time.Duration) error {
	_, err := d.db.Exec(
		"INSERT INTO game_results (game_id, variant, seed, score, moves, duration_ms, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		gameID, variant, seed, score, moves, duration.Milliseconds(), time.Now(),
	)
	return err
}

// GetVariantStats retrieves aggregate statistics for a game variant
func (d *Database) GetVariantStats(variant string) (*VariantStats, error) {
	var stats VariantStats
	var lastPlayed sql.NullTime

	// Get total deals dealt
	err := d.db.QueryRow("SELECT COUNT(*) FROM games WHERE variant = ?", variant).Scan(&stats.GamesPlayed)
	if err != nil {
		log.Printf("Error getting games played: %v", err)
	}

	// Get total games won, results are only recorded for wins
	err = d.db.QueryRow("SELECT COUNT(*) FROM game_results WHERE variant = ?", variant).Scan(&stats.GamesWon)
	if err != nil {
		log.Printf("Error getting games won: %v", err)
	}

	// Get fewest moves in a win
	err = d.db.QueryRow("SELECT COALESCE(MIN(moves), 0) FROM game_results WHERE variant = ?", variant).Scan(&stats.BestMoves)
	if err != nil {
		log.Printf("Error getting best moves: %v", err)
	}

	// Get fastest win
	err = d.db.QueryRow("SELECT COALESCE(MIN(duration_ms), 0) FROM game_results WHERE variant = ?", variant).Scan(&stats.BestTimeMs)
	if err != nil {
		log.Printf("Error getting best time: %v", err)
	}

	// Get last played timestamp, selecting the column directly so the
	// driver keeps its timestamp type
	err = d.db.QueryRow("SELECT created_at FROM game_results WHERE variant = ? ORDER BY created_at DESC LIMIT 1", variant).Scan(&lastPlayed)
	if err != nil && err != sql.ErrNoRows {
		log.Printf("Error getting last played: %v", err)
	}

	stats.Variant = variant
	stats.LastPlayed = lastPlayed.Time

	return &stats, nil
}
