package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ecinar/route-tracker/internal/client"
)

func newVisitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visit",
		Short: "Run a visit on site",
	}
	cmd.AddCommand(
		newVisitShowCmd(),
		newVisitStartCmd(),
		newVisitCompleteCmd(),
		newVisitCancelCmd(),
	)
	return cmd
}

func locationFlags(cmd *cobra.Command, lat, lng, accuracy *float64) {
	cmd.Flags().Float64Var(lat, "lat", 0, "current latitude")
	cmd.Flags().Float64Var(lng, "lng", 0, "current longitude")
	cmd.Flags().Float64Var(accuracy, "accuracy", 0, "position accuracy in meters")
}

func locationFromFlags(cmd *cobra.Command, lat, lng, accuracy float64) *client.Location {
	if !cmd.Flags().Changed("lat") && !cmd.Flags().Changed("lng") {
		return nil
	}
	return &client.Location{Lat: lat, Lng: lng, AccuracyM: accuracy}
}

func newVisitShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one visit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newAPIClient().GetVisit(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(v)
			}
			printVisitSummary(v)
			return nil
		},
	}
}

func newVisitStartCmd() *cobra.Command {
	var lat, lng, accuracy float64

	cmd := &cobra.Command{
		Use:   "start <id>",
		Short: "Start a planned visit",
		Long:  "Starts a visit. You must be within the allowed distance of the customer; pass your position with --lat/--lng.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := locationFromFlags(cmd, lat, lng, accuracy)
			v, err := newAPIClient().StartVisit(cmd.Context(), args[0], loc)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(v)
			}
			fmt.Printf("✓ started visit at %s\n", v.Customer.Name)
			return nil
		},
	}
	locationFlags(cmd, &lat, &lng, &accuracy)
	return cmd
}

func newVisitCompleteCmd() *cobra.Command {
	var (
		lat, lng, accuracy float64
		orderSpecs         []string
		notes              string
		signature          string
	)

	cmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Complete an in-progress visit",
		Long:  "Completes a visit, optionally recording orders. Each --order takes product:quantity:unit_price, e.g. --order \"Çay:2:50\".",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := parseOrderSpecs(orderSpecs)
			if err != nil {
				return err
			}

			loc := locationFromFlags(cmd, lat, lng, accuracy)
			v, err := newAPIClient().CompleteVisit(cmd.Context(), args[0], loc, orders, notes, signature)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(v)
			}
			fmt.Printf("✓ completed visit at %s", v.Customer.Name)
			if v.TotalOrderAmount > 0 {
				fmt.Printf(" (order total %.2f)", v.TotalOrderAmount)
			}
			fmt.Println()
			return nil
		},
	}
	locationFlags(cmd, &lat, &lng, &accuracy)
	cmd.Flags().StringArrayVar(&orderSpecs, "order", nil, "order line as product:quantity:unit_price (repeatable)")
	cmd.Flags().StringVar(&notes, "notes", "", "visit notes")
	cmd.Flags().StringVar(&signature, "signature", "", "base64 customer signature")
	return cmd
}

func newVisitCancelCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a visit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newAPIClient().CancelVisit(cmd.Context(), args[0], reason)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(v)
			}
			fmt.Printf("✓ cancelled visit at %s\n", v.Customer.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the visit was cancelled")
	return cmd
}

// parseOrderSpecs parses product:quantity:unit_price strings. The product
// name may itself contain colons; the last two fields are the numbers.
func parseOrderSpecs(specs []string) ([]client.OrderLine, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	orders := make([]client.OrderLine, 0, len(specs))
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		if len(parts) < 3 {
			return nil, fmt.Errorf("invalid order %q: want product:quantity:unit_price", spec)
		}

		product := strings.Join(parts[:len(parts)-2], ":")
		if strings.TrimSpace(product) == "" {
			return nil, fmt.Errorf("invalid order %q: empty product name", spec)
		}
		qty, err := strconv.Atoi(parts[len(parts)-2])
		if err != nil || qty < 1 {
			return nil, fmt.Errorf("invalid order %q: quantity must be a positive integer", spec)
		}
		price, err := strconv.ParseFloat(parts[len(parts)-1], 64)
		if err != nil || price < 0 {
			return nil, fmt.Errorf("invalid order %q: unit price must be a non-negative number", spec)
		}

		orders = append(orders, client.OrderLine{
			ProductName: product,
			Quantity:    qty,
			UnitPrice:   price,
		})
	}
	return orders, nil
}
