package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/ecinar/route-tracker/internal/visit"
)

// printJSON marshals v as indented JSON and writes it to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printVisitSummary prints a single visit in text format.
func printVisitSummary(v *visit.Visit) {
	fmt.Printf("Visit %s\n", v.ID)
	fmt.Printf("  Customer: %s\n", v.Customer.Name)
	fmt.Printf("  Address:  %s\n", v.Customer.Address)
	fmt.Printf("  Planned:  %s\n", v.PlannedDate.Format("2006-01-02 15:04"))
	fmt.Printf("  Status:   %s\n", v.Status)
	if v.ActualDate != nil {
		fmt.Printf("  Actual:   %s\n", v.ActualDate.Format("2006-01-02 15:04"))
	}
	if len(v.Orders) > 0 {
		fmt.Println("  Orders:")
		for _, l := range v.Orders {
			fmt.Printf("    %d × %s @ %.2f = %.2f\n", l.Quantity, l.ProductName, l.UnitPrice, l.TotalPrice)
		}
		fmt.Printf("  Total:    %.2f\n", v.TotalOrderAmount)
	}
	if v.Notes != "" {
		fmt.Printf("  Notes:    %s\n", v.Notes)
	}
}

// printVisitTable prints a list of visits as a formatted table.
func printVisitTable(visits []*visit.Visit) error {
	if len(visits) == 0 {
		fmt.Println("No visits found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tCUSTOMER\tPLANNED\tSTATUS\tTOTAL"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t--------\t-------\t------\t-----"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}
	for _, v := range visits {
		total := ""
		if v.TotalOrderAmount > 0 {
			total = fmt.Sprintf("%.2f", v.TotalOrderAmount)
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			shortID(v.ID), v.Customer.Name,
			v.PlannedDate.Format("2006-01-02 15:04"), v.Status, total,
		); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	return w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
