package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alagad/depot/depot"
)

func init() {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import the partner NGO catalog into the local store",
		Run:   runSeed,
	}

	RootCmd.AddCommand(cmd)
}

func runSeed(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	listings, err := depot.NewStaticPartnerFeed().Fetch()
	if err != nil {
		exitErr("partner listings", err)
	}

	imported := 0
	for i := range listings {
		d := listings[i]
		if _, err := s.Get(d.ID); err == nil {
			// Already seeded.
			continue
		}
		if err := s.Add(&d); err != nil {
			exitErr("add", err)
		}
		imported++
	}

	fmt.Printf("imported %d listings\n", imported)
}
