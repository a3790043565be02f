package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/alagad/depot/depot"
	"github.com/alagad/depot/internal/logger"
	"github.com/alagad/depot/matching"
)

type Server struct {
	db       *sql.DB
	store    depot.DonationStore
	engine   *matching.Engine
	partners *depot.CachedPartnerFeed
	notifier *depot.MatchNotifier
	router   *chi.Mux
}

// NewServer builds a server over an arbitrary store; tests inject the
// in-memory store here.
func NewServer(store depot.DonationStore) (*Server, error) {
	return newServer(nil, store)
}

// NewServerWithDB connects the Postgres-backed store.
func NewServerWithDB(db *sql.DB) (*Server, error) {
	return newServer(db, depot.NewPostgresDonationStore(db))
}

func newServer(db *sql.DB, store depot.DonationStore) (*Server, error) {
	engine, err := matching.NewEngine(store)
	if err != nil {
		return nil, fmt.Errorf("failed to create matching engine: %w", err)
	}

	s := &Server{
		db:     db,
		store:  store,
		engine: engine,
		partners: depot.NewCachedPartnerFeed(
			depot.NewStaticPartnerFeed(),
			depot.NewInMemoryListingCache(depot.DefaultPartnerCacheConfig()),
		),
		notifier: depot.NewMatchNotifier(64),
	}

	// Surface top matches on the activity log.
	events, _ := s.notifier.Subscribe()
	go func() {
		for ev := range events {
			logger.Info("match found",
				"donationId", ev.DonationID,
				"recipientId", ev.RecipientID,
				"score", ev.Score,
			)
		}
	}()

	s.setupRoutes()

	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/api/v1/health", s.handleHealth)

	// Matching
	r.Post("/api/v1/matches/donations", s.handleMatchDonations)
	r.Post("/api/v1/matches/recipients", s.handleMatchRecipients)

	// Listings
	r.Route("/api/v1/donations", func(r chi.Router) {
		r.Get("/", s.handleListDonations)
		r.Post("/", s.handleCreateDonation)

		r.Route("/{donationId}", func(r chi.Router) {
			r.Get("/", s.handleGetDonation)
			r.Put("/", s.handleUpdateDonation)
			r.Delete("/", s.handleDeleteDonation)
			r.Get("/timeline", s.handleTimeline)
		})
	})

	// Partner listings
	r.Get("/api/v1/partners/listings", s.handlePartnerListings)

	// Boost rules
	r.Route("/api/v1/boosts", func(r chi.Router) {
		r.Get("/", s.handleListBoosts)
		r.Post("/", s.handleCreateBoost)
		r.Delete("/{ruleId}", s.handleDeleteBoost)
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Health check handler
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
	})
}

// Matching: donations for a recipient
func (s *Server) handleMatchDonations(w http.ResponseWriter, r *http.Request) {
	var req MatchDonationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := depot.ValidateNeeds(req.Needs); err != nil {
		respondError(w, http.StatusBadRequest, "invalid needs", err)
		return
	}

	stored, err := s.store.ListOpen()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list donations", err)
		return
	}

	candidates := make([]matching.DonationRecord, 0, len(stored))
	for _, d := range stored {
		candidates = append(candidates, *d)
	}

	if !req.ExcludePartners {
		partnerListings, err := s.partners.Listings()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to load partner listings", err)
			return
		}
		candidates = append(candidates, partnerListings...)
	}

	candidates = depot.FilterByScope(req.Needs.LocationScope, req.Country, req.Community, candidates)

	startTime := time.Now()
	results := s.engine.ScoreDonationsForRecipient(req.Needs, candidates)
	matchingTime := time.Since(startTime)

	if len(results) > 0 {
		s.notifier.Publish(depot.MatchEvent{
			DonationID:  results[0].DonationID,
			RecipientID: results[0].RecipientID,
			Score:       results[0].Score,
			At:          time.Now(),
		})
	}

	respondJSON(w, http.StatusOK, MatchResponse{
		Results:      results,
		MatchingTime: matchingTime.String(),
	})
}

// Matching: recipients for a donation
func (s *Server) handleMatchRecipients(w http.ResponseWriter, r *http.Request) {
	var req MatchRecipientsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.DonationID == "" {
		respondError(w, http.StatusBadRequest, "donationId is required", nil)
		return
	}

	for _, needs := range req.Candidates {
		if err := depot.ValidateNeeds(needs); err != nil {
			respondError(w, http.StatusBadRequest, "invalid candidate", err)
			return
		}
	}

	startTime := time.Now()
	results := s.engine.ScoreRecipientsForDonation(req.DonationID, req.Candidates)
	matchingTime := time.Since(startTime)

	respondJSON(w, http.StatusOK, MatchResponse{
		Results:      results,
		MatchingTime: matchingTime.String(),
	})
}

// Create listing handler
func (s *Server) handleCreateDonation(w http.ResponseWriter, r *http.Request) {
	var req CreateDonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	date, err := parseListingDate(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD", err)
		return
	}

	status := req.Status
	if status == "" {
		status = matching.StatusActive
	}

	d := &matching.DonationRecord{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Status:       status,
		Organization: req.Organization,
		Date:         date,
		Location:     req.Location,
		Country:      req.Country,
		Community:    req.Community,
		ContactEmail: req.ContactEmail,
		Link:         req.Link,
	}

	if err := depot.ValidateRecord(d); err != nil {
		respondError(w, http.StatusBadRequest, "invalid donation", err)
		return
	}

	if err := s.store.Add(d); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to add donation", err)
		return
	}

	respondJSON(w, http.StatusCreated, d)
}

// List listings handler
func (s *Server) handleListDonations(w http.ResponseWriter, r *http.Request) {
	var (
		donations []*matching.DonationRecord
		err       error
	)
	if r.URL.Query().Get("open") == "true" {
		donations, err = s.store.ListOpen()
	} else {
		donations, err = s.store.List()
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list donations", err)
		return
	}
	if donations == nil {
		donations = []*matching.DonationRecord{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"donations": donations,
	})
}

// Get listing handler
func (s *Server) handleGetDonation(w http.ResponseWriter, r *http.Request) {
	donationID := chi.URLParam(r, "donationId")

	d, err := s.store.Get(donationID)
	if err != nil {
		respondError(w, http.StatusNotFound, "donation not found", err)
		return
	}

	respondJSON(w, http.StatusOK, d)
}

// Update listing handler
func (s *Server) handleUpdateDonation(w http.ResponseWriter, r *http.Request) {
	donationID := chi.URLParam(r, "donationId")

	var req CreateDonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	date, err := parseListingDate(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD", err)
		return
	}

	status := req.Status
	if status == "" {
		status = matching.StatusActive
	}

	d := &matching.DonationRecord{
		ID:           donationID,
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Status:       status,
		Organization: req.Organization,
		Date:         date,
		Location:     req.Location,
		Country:      req.Country,
		Community:    req.Community,
		ContactEmail: req.ContactEmail,
		Link:         req.Link,
	}

	if err := depot.ValidateRecord(d); err != nil {
		respondError(w, http.StatusBadRequest, "invalid donation", err)
		return
	}

	if err := s.store.Update(d); err != nil {
		respondError(w, http.StatusNotFound, "failed to update donation", err)
		return
	}

	respondJSON(w, http.StatusOK, d)
}

// Delete listing handler
func (s *Server) handleDeleteDonation(w http.ResponseWriter, r *http.Request) {
	donationID := chi.URLParam(r, "donationId")

	if err := s.store.Delete(donationID); err != nil {
		respondError(w, http.StatusNotFound, "donation not found", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Timeline handler
func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	donationID := chi.URLParam(r, "donationId")

	d, err := s.store.Get(donationID)
	if err != nil {
		respondError(w, http.StatusNotFound, "donation not found", err)
		return
	}

	events := s.engine.DeriveStatusTimeline(*d)

	// Progress follows the latest tracked stage reached.
	progress := 0
	for _, ev := range events {
		if p := matching.ProgressPercentage(ev.Stage); p > progress {
			progress = p
		}
	}

	respondJSON(w, http.StatusOK, TimelineResponse{
		Events:   events,
		Progress: progress,
	})
}

// Partner listings handler
func (s *Server) handlePartnerListings(w http.ResponseWriter, r *http.Request) {
	listings, err := s.partners.Listings()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load partner listings", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"listings": listings,
	})
}

// Boost rule handlers
func (s *Server) handleListBoosts(w http.ResponseWriter, r *http.Request) {
	rules := s.engine.ListBoostRules()

	boosts := make([]BoostResponse, 0, len(rules))
	for _, rule := range rules {
		boosts = append(boosts, BoostResponse{
			ID:         rule.ID,
			Name:       rule.Name,
			Expression: rule.Expression,
			Points:     rule.Points,
			Reason:     rule.Reason,
			Active:     rule.Active,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"boosts": boosts,
	})
}

func (s *Server) handleCreateBoost(w http.ResponseWriter, r *http.Request) {
	var req CreateBoostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.Name == "" || req.Expression == "" {
		respondError(w, http.StatusBadRequest, "name and expression are required", nil)
		return
	}

	rule := matching.BoostRule{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Expression: req.Expression,
		Points:     req.Points,
		Reason:     req.Reason,
		Active:     req.Active,
	}

	// AddBoostRule validates that the expression compiles.
	if err := s.engine.AddBoostRule(rule); err != nil {
		respondError(w, http.StatusBadRequest, "failed to add boost rule", err)
		return
	}

	respondJSON(w, http.StatusCreated, BoostResponse{
		ID:         rule.ID,
		Name:       rule.Name,
		Expression: rule.Expression,
		Points:     rule.Points,
		Reason:     rule.Reason,
		Active:     rule.Active,
	})
}

func (s *Server) handleDeleteBoost(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "ruleId")

	if err := s.engine.RemoveBoostRule(ruleID); err != nil {
		respondError(w, http.StatusNotFound, "boost rule not found", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Helper functions
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	switch {
	case status >= 500:
		logger.ErrorHttp5xx()
		logger.Error(message, "status", status, "error", err)
	case status >= 400:
		logger.WarnHttp4xx()
	}

	response := map[string]string{
		"error": message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}

func main() {
	databaseURL := os.Getenv("DATABASE_URL")

	var (
		server *Server
		err    error
	)
	if databaseURL != "" {
		var db *sql.DB
		db, err = sql.Open("postgres", databaseURL)
		if err != nil {
			logger.Fatal("failed to open database", "error", err)
		}
		if err := db.Ping(); err != nil {
			logger.Fatal("failed to ping database", "error", err)
		}
		defer db.Close()

		server, err = NewServerWithDB(db)
	} else {
		// No database configured; serve from memory. Listings do not
		// survive a restart in this mode.
		logger.Warn("DATABASE_URL not set, using in-memory store")
		server, err = NewServer(depot.NewInMemoryDonationStore())
	}
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := logger.Shutdown(ctx); err != nil {
		logger.Error("logger shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
