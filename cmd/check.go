package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/kilianp07/taxifare/pkg/apicheck"
)

var (
	checkURL  string
	checkFull bool
)

var errChecksFailed = errors.New("some checks failed")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Smoke test a running prediction API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Testing Taxi Fare Prediction API at %s\n\n", checkURL)
		results := apicheck.Run(ctx, apicheck.NewClient(checkURL), checkFull)
		apicheck.WriteSummary(w, results)
		if !apicheck.Passed(results) {
			return errChecksFailed
		}
		fmt.Fprintln(w, "All checks passed.")
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkURL, "url", "http://localhost:5000", "API base URL")
	checkCmd.Flags().BoolVar(&checkFull, "full", false, "run batch and features checks as well")
	rootCmd.AddCommand(checkCmd)
}
