package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alagad/depot/matching"
)

func init() {
	cmd := &cobra.Command{
		Use:   "timeline [donation-id]",
		Short: "Show the derived status timeline for a listing",
		Args:  cobra.ExactArgs(1),
		Run:   runTimeline,
	}

	RootCmd.AddCommand(cmd)
}

func runTimeline(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	d, err := s.Get(args[0])
	if err != nil {
		exitErr("get", err)
	}

	events := matching.DeriveStatusTimeline(*d, matching.SystemClock())
	for _, ev := range events {
		b, _ := json.Marshal(ev)
		fmt.Println(string(b))
	}

	progress := 0
	for _, ev := range events {
		if p := matching.ProgressPercentage(ev.Stage); p > progress {
			progress = p
		}
	}
	fmt.Printf("progress: %d%%\n", progress)
}
