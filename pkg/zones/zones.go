// Package zones turns the TLC taxi zone lookup table into the JSON document
// used by the frontend location pickers.
package zones

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jszwec/csvutil"
)

// LastUpdated is the date stamped into generated documents by default.
const LastUpdated = "2025-07-22"

// Row is one line of taxi_zone_lookup.csv.
type Row struct {
	LocationID  int    `csv:"LocationID"`
	Borough     string `csv:"Borough"`
	Zone        string `csv:"Zone"`
	ServiceZone string `csv:"service_zone"`
}

// Location is a zone as exposed to the frontend.
type Location struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Zone        string `json:"zone"`
	Borough     string `json:"borough"`
	ServiceZone string `json:"service_zone"`
}

// Document is the generated taxi_zones.json.
type Document struct {
	TotalZones  int        `json:"total_zones"`
	LastUpdated string     `json:"last_updated"`
	Zones       []Location `json:"zones"`
}

// ParseCSV decodes the lookup table. The header row must use the TLC column
// names.
func ParseCSV(r io.Reader) ([]Row, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("zone csv header: %w", err)
	}
	var rows []Row
	if err := dec.Decode(&rows); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode zone csv: %w", err)
	}
	return rows, nil
}

// Build converts rows into a document sorted by display name.
func Build(rows []Row, lastUpdated string) Document {
	locs := make([]Location, 0, len(rows))
	for _, r := range rows {
		locs = append(locs, Location{
			ID:          r.LocationID,
			Name:        r.Zone + ", " + r.Borough,
			Zone:        r.Zone,
			Borough:     r.Borough,
			ServiceZone: r.ServiceZone,
		})
	}
	slices.SortStableFunc(locs, func(a, b Location) int {
		return strings.Compare(a.Name, b.Name)
	})
	return Document{TotalZones: len(locs), LastUpdated: lastUpdated, Zones: locs}
}

// WriteJSON writes doc indented by two spaces, leaving non-ASCII and HTML
// characters unescaped.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

// Generate reads csvPath and writes the document to outPath, creating the
// parent directory when needed.
func Generate(csvPath, outPath, lastUpdated string) (Document, error) {
	in, err := os.Open(csvPath)
	if err != nil {
		return Document{}, err
	}
	defer in.Close()
	rows, err := ParseCSV(in)
	if err != nil {
		return Document{}, err
	}
	doc := Build(rows, lastUpdated)

	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Document{}, err
		}
	}
	out, err := os.Create(outPath)
	if err != nil {
		return Document{}, err
	}
	if err := WriteJSON(out, doc); err != nil {
		out.Close()
		return Document{}, err
	}
	return doc, out.Close()
}

// Preview writes the first n locations as a numbered list.
func Preview(w io.Writer, doc Document, n int) {
	for i, l := range doc.Zones {
		if i >= n {
			break
		}
		fmt.Fprintf(w, "%d. ID: %d - %s\n", i+1, l.ID, l.Name)
	}
	fmt.Fprintln(w, "...")
	fmt.Fprintf(w, "Total locations: %d\n", doc.TotalZones)
}
