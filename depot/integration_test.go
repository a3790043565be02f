//go:build integration
// +build integration

package depot_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/alagad/depot/depot"
	"github.com/alagad/depot/matching"

	_ "github.com/lib/pq"
)

// setupTestDB creates a PostgreSQL container and returns a connection
func setupTestDB(t *testing.T) (*sql.DB, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "depot_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(60 * time.Second),
	}

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := postgresContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	connStr := fmt.Sprintf("host=%s port=%s user=test password=test dbname=depot_test sslmode=disable", host, port.Port())

	// Wait for connection to be available
	var db *sql.DB
	for i := 0; i < 30; i++ {
		db, err = sql.Open("postgres", connStr)
		if err == nil {
			err = db.Ping()
			if err == nil {
				break
			}
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	migrationSQL, err := os.ReadFile(filepath.Join("..", "migrations", "000001_initial_schema.up.sql"))
	if err != nil {
		t.Fatalf("Failed to read migration file: %v", err)
	}

	_, err = db.Exec(string(migrationSQL))
	if err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		db.Close()
		postgresContainer.Terminate(ctx)
	}

	return db, cleanup
}

func newDonation() *matching.DonationRecord {
	return &matching.DonationRecord{
		ID:           uuid.New().String(),
		Title:        "Typhoon relief packs",
		Description:  "Ready-to-distribute relief packs.",
		Category:     matching.CategoryDisaster,
		Status:       matching.StatusUrgent,
		Organization: "Philippine Red Cross",
		Date:         time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC),
		Location:     &matching.Coordinates{Latitude: 14.5995, Longitude: 120.9842},
		Country:      "PH",
		Community:    "Manila",
	}
}

func TestPostgresDonationStore_BasicCRUD(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := depot.NewPostgresDonationStore(db)

	d := newDonation()
	if err := store.Add(d); err != nil {
		t.Fatalf("Failed to add donation: %v", err)
	}

	retrieved, err := store.Get(d.ID)
	if err != nil {
		t.Fatalf("Failed to get donation: %v", err)
	}
	if retrieved.Title != d.Title {
		t.Errorf("Expected title '%s', got '%s'", d.Title, retrieved.Title)
	}
	if retrieved.Category != matching.CategoryDisaster {
		t.Errorf("Expected category disaster, got '%s'", retrieved.Category)
	}
	if retrieved.Location == nil || retrieved.Location.Latitude != 14.5995 {
		t.Errorf("Location did not round-trip: %+v", retrieved.Location)
	}

	open, err := store.ListOpen()
	if err != nil {
		t.Fatalf("Failed to list open donations: %v", err)
	}
	if len(open) != 1 {
		t.Errorf("Expected 1 open donation, got %d", len(open))
	}

	d.Status = matching.StatusCompleted
	if err := store.Update(d); err != nil {
		t.Fatalf("Failed to update donation: %v", err)
	}

	open, err = store.ListOpen()
	if err != nil {
		t.Fatalf("Failed to list open donations: %v", err)
	}
	if len(open) != 0 {
		t.Errorf("Expected 0 open donations after completion, got %d", len(open))
	}

	if err := store.Delete(d.ID); err != nil {
		t.Fatalf("Failed to delete donation: %v", err)
	}
	if _, err := store.Get(d.ID); err == nil {
		t.Error("Expected error when getting deleted donation, got nil")
	}
}

func TestPostgresDonationStore_DuplicateID(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := depot.NewPostgresDonationStore(db)

	d := newDonation()
	if err := store.Add(d); err != nil {
		t.Fatalf("Failed to add donation: %v", err)
	}
	if err := store.Add(d); err == nil {
		t.Error("Expected error when adding duplicate donation, got nil")
	}
}

func TestPostgresDonationStore_UpdateNonExistent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := depot.NewPostgresDonationStore(db)

	d := newDonation()
	if err := store.Update(d); err == nil {
		t.Error("Expected error when updating non-existent donation, got nil")
	}
}

func TestPostgresDonationStore_DeleteNonExistent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := depot.NewPostgresDonationStore(db)

	if err := store.Delete(uuid.New().String()); err == nil {
		t.Error("Expected error when deleting non-existent donation, got nil")
	}
}

func TestPostgresDonationStore_CategoryConstraint(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := depot.NewPostgresDonationStore(db)

	d := newDonation()
	d.Category = "weapons"
	if err := store.Add(d); err == nil {
		t.Error("Expected constraint violation for invalid category, got nil")
	}
}

func TestEngineWithPostgresStore(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := depot.NewPostgresDonationStore(db)

	d := newDonation()
	if err := store.Add(d); err != nil {
		t.Fatalf("Failed to add donation: %v", err)
	}

	engine, err := matching.NewEngine(store)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	candidates := []matching.RecipientNeeds{
		{UserID: "r-1", Categories: []matching.Category{matching.CategoryDisaster}, Urgency: matching.UrgencyHigh},
		{UserID: "r-2", Categories: []matching.Category{matching.CategoryEducation}},
	}

	results := engine.ScoreRecipientsForDonation(d.ID, candidates)
	if len(results) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(results))
	}
	if results[0].RecipientID != "r-1" {
		t.Errorf("Expected recipient r-1, got %s", results[0].RecipientID)
	}
	if results[0].Score != 55 {
		t.Errorf("Expected score 55, got %d", results[0].Score)
	}

	ordered, err := store.List()
	if err != nil {
		t.Fatalf("Failed to list donations: %v", err)
	}
	for i := 0; i < len(ordered)-1; i++ {
		if ordered[i].CreatedAt.After(ordered[i+1].CreatedAt) {
			t.Error("Donations are not ordered by created_at ascending")
		}
	}
}
