package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alagad/depot/depot"
	"github.com/alagad/depot/matching"
)

func init() {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Find donations matching stated needs",
		Run:   runMatch,
	}

	cmd.Flags().StringP("categories", "c", "", "Comma-separated categories (required)")
	cmd.Flags().StringP("urgency", "u", "", "Urgency: high, medium, low")
	cmd.Flags().Float64("lat", 0, "Recipient latitude")
	cmd.Flags().Float64("lon", 0, "Recipient longitude")
	cmd.Flags().Float64("max-distance", 0, "Match radius in km (default 50 when a location is given)")
	cmd.Flags().Bool("partners", true, "Include partner NGO listings")

	cmd.MarkFlagRequired("categories")

	RootCmd.AddCommand(cmd)
}

func runMatch(cmd *cobra.Command, args []string) {
	categoriesStr, _ := cmd.Flags().GetString("categories")
	urgency, _ := cmd.Flags().GetString("urgency")
	maxDistance, _ := cmd.Flags().GetFloat64("max-distance")
	includePartners, _ := cmd.Flags().GetBool("partners")

	var categories []matching.Category
	for _, c := range strings.Split(categoriesStr, ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			categories = append(categories, matching.Category(c))
		}
	}

	var location *matching.Coordinates
	if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon") {
		lat, _ := cmd.Flags().GetFloat64("lat")
		lon, _ := cmd.Flags().GetFloat64("lon")
		location = &matching.Coordinates{Latitude: lat, Longitude: lon}
	}

	needs := matching.RecipientNeeds{
		UserID:        "depotctl",
		Categories:    categories,
		Location:      location,
		Urgency:       matching.Urgency(urgency),
		MaxDistanceKm: maxDistance,
	}
	if err := depot.ValidateNeeds(needs); err != nil {
		exitErr("validate", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	engine, err := matching.NewEngine(s)
	if err != nil {
		exitErr("create engine", err)
	}

	stored, err := s.ListOpen()
	if err != nil {
		exitErr("list", err)
	}

	candidates := make([]matching.DonationRecord, 0, len(stored))
	for _, d := range stored {
		candidates = append(candidates, *d)
	}
	if includePartners {
		partnerListings, err := depot.NewStaticPartnerFeed().Fetch()
		if err != nil {
			exitErr("partner listings", err)
		}
		candidates = append(candidates, partnerListings...)
	}

	results := engine.ScoreDonationsForRecipient(needs, candidates)
	for _, r := range results {
		b, _ := json.Marshal(r)
		fmt.Println(string(b))
	}
}
