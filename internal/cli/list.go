package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alagad/depot/matching"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List donation listings",
		Run:   runList,
	}

	cmd.Flags().Bool("open", false, "Only listings still seeking a match")
	cmd.Flags().StringP("category", "c", "", "Filter by category")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	open, _ := cmd.Flags().GetBool("open")
	category, _ := cmd.Flags().GetString("category")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	var donations []*matching.DonationRecord
	if open {
		donations, err = s.ListOpen()
	} else {
		donations, err = s.List()
	}
	if err != nil {
		exitErr("list", err)
	}

	for _, d := range donations {
		if category != "" && string(d.Category) != category {
			continue
		}
		b, _ := json.Marshal(d)
		fmt.Println(string(b))
	}
}
