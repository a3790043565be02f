package depot

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/alagad/depot/matching"
)

// PostgresDonationStore implements DonationStore backed by PostgreSQL.
type PostgresDonationStore struct {
	db *sql.DB
}

// NewPostgresDonationStore creates a new PostgreSQL-backed DonationStore.
func NewPostgresDonationStore(db *sql.DB) *PostgresDonationStore {
	return &PostgresDonationStore{db: db}
}

const donationColumns = `id, title, description, category, status, organization, date,
	latitude, longitude, country, community, contact_email, link, created_at, updated_at`

// Add inserts a new listing into the database.
func (s *PostgresDonationStore) Add(d *matching.DonationRecord) error {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM donations WHERE id = $1)
	`, d.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check donation existence: %w", err)
	}
	if exists {
		return fmt.Errorf("donation with ID %s already exists", d.ID)
	}

	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now

	var lat, lon sql.NullFloat64
	if d.Location != nil {
		lat = sql.NullFloat64{Float64: d.Location.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: d.Location.Longitude, Valid: true}
	}

	_, err = s.db.Exec(`
		INSERT INTO donations (id, title, description, category, status, organization, date,
			latitude, longitude, country, community, contact_email, link, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, d.ID, d.Title, d.Description, d.Category, d.Status, d.Organization, d.Date,
		lat, lon, d.Country, d.Community, d.ContactEmail, d.Link, d.CreatedAt, d.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert donation: %w", err)
	}

	return nil
}

// Get retrieves a listing by ID.
func (s *PostgresDonationStore) Get(id string) (*matching.DonationRecord, error) {
	row := s.db.QueryRow(`
		SELECT `+donationColumns+`
		FROM donations
		WHERE id = $1
	`, id)

	d, err := scanDonation(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("donation with ID %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get donation: %w", err)
	}

	return d, nil
}

// List returns every listing ordered by creation time.
func (s *PostgresDonationStore) List() ([]*matching.DonationRecord, error) {
	return s.queryDonations(`
		SELECT ` + donationColumns + `
		FROM donations
		ORDER BY created_at ASC
	`)
}

// ListOpen returns listings that have not been completed.
func (s *PostgresDonationStore) ListOpen() ([]*matching.DonationRecord, error) {
	return s.queryDonations(`
		SELECT `+donationColumns+`
		FROM donations
		WHERE status <> $1
		ORDER BY created_at ASC
	`, string(matching.StatusCompleted))
}

// Update modifies an existing listing.
func (s *PostgresDonationStore) Update(d *matching.DonationRecord) error {
	d.UpdatedAt = time.Now()

	var lat, lon sql.NullFloat64
	if d.Location != nil {
		lat = sql.NullFloat64{Float64: d.Location.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: d.Location.Longitude, Valid: true}
	}

	result, err := s.db.Exec(`
		UPDATE donations
		SET title = $1, description = $2, category = $3, status = $4, organization = $5,
			date = $6, latitude = $7, longitude = $8, country = $9, community = $10,
			contact_email = $11, link = $12, updated_at = $13
		WHERE id = $14
	`, d.Title, d.Description, d.Category, d.Status, d.Organization,
		d.Date, lat, lon, d.Country, d.Community,
		d.ContactEmail, d.Link, d.UpdatedAt, d.ID)

	if err != nil {
		return fmt.Errorf("failed to update donation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("donation with ID %s not found", d.ID)
	}

	return nil
}

// Delete removes a listing from the database.
func (s *PostgresDonationStore) Delete(id string) error {
	result, err := s.db.Exec(`
		DELETE FROM donations
		WHERE id = $1
	`, id)

	if err != nil {
		return fmt.Errorf("failed to delete donation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("donation with ID %s not found", id)
	}

	return nil
}

func (s *PostgresDonationStore) queryDonations(query string, args ...any) ([]*matching.DonationRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	defer rows.Close()

	var donations []*matching.DonationRecord
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan donation: %w", err)
		}
		donations = append(donations, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating donations: %w", err)
	}

	return donations, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDonation(row rowScanner) (*matching.DonationRecord, error) {
	var d matching.DonationRecord
	var lat, lon sql.NullFloat64

	err := row.Scan(
		&d.ID,
		&d.Title,
		&d.Description,
		&d.Category,
		&d.Status,
		&d.Organization,
		&d.Date,
		&lat,
		&lon,
		&d.Country,
		&d.Community,
		&d.ContactEmail,
		&d.Link,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lat.Valid && lon.Valid {
		d.Location = &matching.Coordinates{Latitude: lat.Float64, Longitude: lon.Float64}
	}

	return &d, nil
}
