package depot

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alagad/depot/matching"
)

// SQLiteStore implements DonationStore using SQLite. It is the local
// single-user store behind the depotctl CLI and self-migrates on open.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS donations (
		id            TEXT PRIMARY KEY,
		title         TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		category      TEXT NOT NULL,
		status        TEXT NOT NULL DEFAULT 'active',
		organization  TEXT NOT NULL,
		date          TEXT NOT NULL,
		latitude      REAL,
		longitude     REAL,
		country       TEXT NOT NULL DEFAULT '',
		community     TEXT NOT NULL DEFAULT '',
		contact_email TEXT NOT NULL DEFAULT '',
		link          TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_donations_status ON donations(status);
	CREATE INDEX IF NOT EXISTS idx_donations_category ON donations(category);
	CREATE INDEX IF NOT EXISTS idx_donations_created ON donations(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Add inserts a new listing.
func (s *SQLiteStore) Add(d *matching.DonationRecord) error {
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now

	var lat, lon sql.NullFloat64
	if d.Location != nil {
		lat = sql.NullFloat64{Float64: d.Location.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: d.Location.Longitude, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO donations (id, title, description, category, status, organization, date,
			latitude, longitude, country, community, contact_email, link, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.Title, d.Description, string(d.Category), string(d.Status), d.Organization,
		d.Date.Format(time.RFC3339), lat, lon, d.Country, d.Community, d.ContactEmail, d.Link,
		now.Format(time.RFC3339), now.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("insert donation: %w", err)
	}
	return nil
}

// Get retrieves a listing by ID.
func (s *SQLiteStore) Get(id string) (*matching.DonationRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, title, description, category, status, organization, date,
			latitude, longitude, country, community, contact_email, link, created_at, updated_at
		FROM donations WHERE id = ?
	`, id)

	d, err := scanSQLiteDonation(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("donation with ID %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get donation: %w", err)
	}
	return d, nil
}

// List returns every listing ordered by creation time.
func (s *SQLiteStore) List() ([]*matching.DonationRecord, error) {
	return s.query(`
		SELECT id, title, description, category, status, organization, date,
			latitude, longitude, country, community, contact_email, link, created_at, updated_at
		FROM donations ORDER BY created_at ASC
	`)
}

// ListOpen returns listings that have not been completed.
func (s *SQLiteStore) ListOpen() ([]*matching.DonationRecord, error) {
	return s.query(`
		SELECT id, title, description, category, status, organization, date,
			latitude, longitude, country, community, contact_email, link, created_at, updated_at
		FROM donations WHERE status <> ? ORDER BY created_at ASC
	`, string(matching.StatusCompleted))
}

// Update modifies an existing listing.
func (s *SQLiteStore) Update(d *matching.DonationRecord) error {
	d.UpdatedAt = time.Now()

	var lat, lon sql.NullFloat64
	if d.Location != nil {
		lat = sql.NullFloat64{Float64: d.Location.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: d.Location.Longitude, Valid: true}
	}

	result, err := s.db.Exec(`
		UPDATE donations
		SET title = ?, description = ?, category = ?, status = ?, organization = ?,
			date = ?, latitude = ?, longitude = ?, country = ?, community = ?,
			contact_email = ?, link = ?, updated_at = ?
		WHERE id = ?
	`, d.Title, d.Description, string(d.Category), string(d.Status), d.Organization,
		d.Date.Format(time.RFC3339), lat, lon, d.Country, d.Community,
		d.ContactEmail, d.Link, d.UpdatedAt.Format(time.RFC3339), d.ID)
	if err != nil {
		return fmt.Errorf("update donation: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("donation with ID %s not found", d.ID)
	}
	return nil
}

// Delete removes a listing.
func (s *SQLiteStore) Delete(id string) error {
	result, err := s.db.Exec(`DELETE FROM donations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete donation: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("donation with ID %s not found", id)
	}
	return nil
}

func (s *SQLiteStore) query(query string, args ...any) ([]*matching.DonationRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	var donations []*matching.DonationRecord
	for rows.Next() {
		d, err := scanSQLiteDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan donation: %w", err)
		}
		donations = append(donations, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate donations: %w", err)
	}
	return donations, nil
}

func scanSQLiteDonation(row rowScanner) (*matching.DonationRecord, error) {
	var d matching.DonationRecord
	var category, status, date, createdAt, updatedAt string
	var lat, lon sql.NullFloat64

	err := row.Scan(
		&d.ID, &d.Title, &d.Description, &category, &status, &d.Organization, &date,
		&lat, &lon, &d.Country, &d.Community, &d.ContactEmail, &d.Link, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Category = matching.Category(category)
	d.Status = matching.Status(status)
	if d.Date, err = time.Parse(time.RFC3339, date); err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}
	if d.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if d.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	if lat.Valid && lon.Valid {
		d.Location = &matching.Coordinates{Latitude: lat.Float64, Longitude: lon.Float64}
	}

	return &d, nil
}
