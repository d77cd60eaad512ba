package store

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database with methods for the config slot, business
// profiles, feedback history, post history, and profile documents.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used by
// tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "draftforge.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		// Check if already applied.
		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// --- Config slot ---

// GetConfigJSON returns the raw JSON stored under key, or ErrNotFound.
func (s *Store) GetConfigJSON(key string) ([]byte, error) {
	var raw string
	err := s.db.QueryRow("SELECT json FROM app_config WHERE key = ?", key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(raw), nil
}

// SetConfigJSON upserts the raw JSON stored under key.
func (s *Store) SetConfigJSON(key string, raw []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO app_config (key, json, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET json = excluded.json, updated_at = excluded.updated_at`,
		key, string(raw), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// --- Business profiles ---

// SetProfileJSON upserts the profile document for a user.
func (s *Store) SetProfileJSON(userID string, raw []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO profiles (user_id, json, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET json = excluded.json, updated_at = excluded.updated_at`,
		userID, string(raw), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetProfileJSON returns the raw profile document for a user, or ErrNotFound.
func (s *Store) GetProfileJSON(userID string) ([]byte, error) {
	var raw string
	err := s.db.QueryRow("SELECT json FROM profiles WHERE user_id = ?", userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(raw), nil
}

// --- Profile documents ---

func (s *Store) AddProfileDocument(doc ProfileDocument) error {
	uploadedAt := doc.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`
		INSERT INTO profile_documents (id, user_id, filename, file_type, content, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.UserID, doc.Filename, doc.FileType, doc.Content,
		uploadedAt.Format(time.RFC3339),
	)
	return err
}

func (s *Store) ListProfileDocuments(userID string) ([]ProfileDocument, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, filename, file_type, content, uploaded_at
		FROM profile_documents WHERE user_id = ? ORDER BY uploaded_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []ProfileDocument
	for rows.Next() {
		var d ProfileDocument
		var uploadedAt string
		if err := rows.Scan(&d.ID, &d.UserID, &d.Filename, &d.FileType, &d.Content, &uploadedAt); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, uploadedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing uploaded_at: %w", err)
		}
		d.UploadedAt = t
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *Store) DeleteProfileDocument(id string) error {
	res, err := s.db.Exec("DELETE FROM profile_documents WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Feedback ---

func (s *Store) AddFeedback(f Feedback) error {
	createdAt := f.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	keywords, err := json.Marshal(f.Keywords)
	if err != nil {
		return fmt.Errorf("marshalling keywords: %w", err)
	}
	hashtags, err := json.Marshal(f.Hashtags)
	if err != nil {
		return fmt.Errorf("marshalling hashtags: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO feedback (id, user_id, post_id, rating, note, post_type, tone, keywords, hashtags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.UserID, f.PostID, f.Rating, f.Note, f.PostType, f.Tone,
		string(keywords), string(hashtags), createdAt.Format(time.RFC3339),
	)
	return err
}

// RecentFeedbackByUser returns up to limit feedback records for a user,
// newest first.
func (s *Store) RecentFeedbackByUser(userID string, limit int) ([]Feedback, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, post_id, rating, note, post_type, tone, keywords, hashtags, created_at
		FROM feedback WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Feedback
	for rows.Next() {
		var f Feedback
		var keywords, hashtags, createdAt string
		if err := rows.Scan(&f.ID, &f.UserID, &f.PostID, &f.Rating, &f.Note, &f.PostType, &f.Tone, &keywords, &hashtags, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(keywords), &f.Keywords); err != nil {
			return nil, fmt.Errorf("unmarshalling keywords for %s: %w", f.ID, err)
		}
		if err := json.Unmarshal([]byte(hashtags), &f.Hashtags); err != nil {
			return nil, fmt.Errorf("unmarshalling hashtags for %s: %w", f.ID, err)
		}
		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		f.CreatedAt = t
		results = append(results, f)
	}
	return results, rows.Err()
}

// --- Post history ---

func (s *Store) AddPostRecord(p PostRecord) error {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`
		INSERT INTO post_history (id, user_id, post_type, tone, post_text, bucket, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.PostType, p.Tone, p.PostText, p.Bucket,
		createdAt.Format(time.RFC3339),
	)
	return err
}

// RecentTextsByUser returns the post texts of the user's most recent posts,
// newest first.
func (s *Store) RecentTextsByUser(userID string, limit int) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT post_text FROM post_history
		WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		texts = append(texts, t)
	}
	return texts, rows.Err()
}

// RecentTonesByUser returns the tones of the user's most recent posts,
// newest first.
func (s *Store) RecentTonesByUser(userID string, limit int) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT tone FROM post_history
		WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tones []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tones = append(tones, t)
	}
	return tones, rows.Err()
}

// RecentBucketsByUser returns the rotation buckets of posts created since the
// given time, newest first.
func (s *Store) RecentBucketsByUser(userID string, since time.Time, limit int) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT bucket FROM post_history
		WHERE user_id = ? AND created_at >= ? AND bucket != ''
		ORDER BY created_at DESC LIMIT ?`,
		userID, since.UTC().Format(time.RFC3339), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// GetPostRecord returns a single post history record by ID.
func (s *Store) GetPostRecord(id string) (PostRecord, error) {
	var p PostRecord
	var createdAt string
	err := s.db.QueryRow(`
		SELECT id, user_id, post_type, tone, post_text, bucket, created_at
		FROM post_history WHERE id = ?`, id,
	).Scan(&p.ID, &p.UserID, &p.PostType, &p.Tone, &p.PostText, &p.Bucket, &createdAt)
	if err == sql.ErrNoRows {
		return PostRecord{}, ErrNotFound
	}
	if err != nil {
		return PostRecord{}, err
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return PostRecord{}, fmt.Errorf("parsing created_at: %w", err)
	}
	p.CreatedAt = t
	return p, nil
}
