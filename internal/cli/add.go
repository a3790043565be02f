package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/alagad/depot/depot"
	"github.com/alagad/depot/matching"
)

func init() {
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a donation listing",
		Args:  cobra.MinimumNArgs(1),
		Run:   runAdd,
	}

	cmd.Flags().StringP("category", "c", "other", "Category (clothing, food, healthcare, disaster, education, housing, water, livelihood, culture, environment, other)")
	cmd.Flags().StringP("status", "s", "active", "Status: active, urgent, completed")
	cmd.Flags().StringP("org", "o", "", "Listing organization (required)")
	cmd.Flags().String("date", "", "Listing date, YYYY-MM-DD (default: today)")
	cmd.Flags().Float64("lat", 0, "Latitude")
	cmd.Flags().Float64("lon", 0, "Longitude")
	cmd.Flags().String("country", "", "Country code")
	cmd.Flags().String("community", "", "Community name")

	cmd.MarkFlagRequired("org")

	RootCmd.AddCommand(cmd)
}

func runAdd(cmd *cobra.Command, args []string) {
	category, _ := cmd.Flags().GetString("category")
	status, _ := cmd.Flags().GetString("status")
	org, _ := cmd.Flags().GetString("org")
	dateStr, _ := cmd.Flags().GetString("date")
	country, _ := cmd.Flags().GetString("country")
	community, _ := cmd.Flags().GetString("community")

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if dateStr != "" {
		var err error
		if date, err = time.Parse("2006-01-02", dateStr); err != nil {
			exitErr("parse date", err)
		}
	}

	var location *matching.Coordinates
	if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon") {
		lat, _ := cmd.Flags().GetFloat64("lat")
		lon, _ := cmd.Flags().GetFloat64("lon")
		location = &matching.Coordinates{Latitude: lat, Longitude: lon}
	}

	d := &matching.DonationRecord{
		ID:           uuid.NewString(),
		Title:        args[0],
		Category:     matching.Category(category),
		Status:       matching.Status(status),
		Organization: org,
		Date:         date,
		Location:     location,
		Country:      country,
		Community:    community,
	}

	if err := depot.ValidateRecord(d); err != nil {
		exitErr("validate", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.Add(d); err != nil {
		exitErr("add", err)
	}

	b, _ := json.Marshal(d)
	fmt.Println(string(b))
}
