package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/taxifare/pkg/zones"
)

var (
	zonesCSV         string
	zonesOut         string
	zonesLastUpdated string
)

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "Generate the frontend taxi zone JSON from the TLC lookup CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := zones.Generate(zonesCSV, zonesOut, zonesLastUpdated)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Created %s with %d locations\n\nPreview of locations:\n", zonesOut, doc.TotalZones)
		zones.Preview(w, doc, 5)
		return nil
	},
}

func init() {
	zonesCmd.Flags().StringVarP(&zonesCSV, "input", "i", "model/distances/taxi_zone_lookup.csv", "taxi zone lookup CSV")
	zonesCmd.Flags().StringVarP(&zonesOut, "output", "o", "frontend/taxi_zones.json", "output JSON file")
	zonesCmd.Flags().StringVar(&zonesLastUpdated, "last-updated", zones.LastUpdated, "date written to last_updated")
	rootCmd.AddCommand(zonesCmd)
}
