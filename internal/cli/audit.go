package cli

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ecinar/route-tracker/internal/geo"
)

// coordIssue is one record whose stored coordinates are unusable.
type coordIssue struct {
	Table string  `json:"table"`
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

func newAuditCoordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit-coords",
		Short: "Report records with out-of-range coordinates",
		Long:  "Scans customers and visit targets for coordinates outside valid latitude/longitude ranges. Reports only; nothing is changed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuditCoords()
		},
	}
}

func runAuditCoords() error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	var issues []coordIssue
	scans := []struct {
		table string
		query string
	}{
		{"customers", "SELECT id, name, lat, lng FROM customers"},
		{"visits", "SELECT id, customer_name, target_lat, target_lng FROM visits"},
	}
	for _, s := range scans {
		found, err := scanForBadCoords(database, s.table, s.query)
		if err != nil {
			return err
		}
		issues = append(issues, found...)
	}

	if isJSON() {
		if issues == nil {
			issues = []coordIssue{}
		}
		return printJSON(issues)
	}

	if len(issues) == 0 {
		fmt.Println("All coordinates are within range.")
		return nil
	}
	for _, i := range issues {
		fmt.Printf("%s %s (%s): lat=%v lng=%v\n", i.Table, i.ID, i.Name, i.Lat, i.Lng)
	}
	fmt.Printf("\n%d record(s) need fixing.\n", len(issues))
	return nil
}

func scanForBadCoords(database *sql.DB, table, query string) ([]coordIssue, error) {
	rows, err := database.Query(query)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", table, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	var issues []coordIssue
	for rows.Next() {
		var issue coordIssue
		issue.Table = table
		if err := rows.Scan(&issue.ID, &issue.Name, &issue.Lat, &issue.Lng); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", table, err)
		}
		c := geo.Coordinate{Lat: issue.Lat, Lng: issue.Lng}
		if !c.Valid() {
			issues = append(issues, issue)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", table, err)
	}
	return issues, nil
}
