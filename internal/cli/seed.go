package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ecinar/route-tracker/internal/customer"
	"github.com/ecinar/route-tracker/internal/geo"
	"github.com/ecinar/route-tracker/internal/user"
	"github.com/ecinar/route-tracker/internal/visit"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo data",
		Long:  "Creates a demo salesperson (demo@example.com / demo123) with a few Istanbul customers and planned visits.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context())
		},
	}
}

func runSeed(ctx context.Context) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	users := user.NewRepository(database)
	demo, err := users.Create(ctx, "Demo Satıcı", "demo@example.com", "demo123", user.RoleSalesPerson)
	if err != nil {
		return fmt.Errorf("creating demo user: %w", err)
	}

	customers := customer.NewRepository(database)
	seeds := []*customer.Customer{
		{
			OwnerID:  demo.ID,
			Name:     "Kadıköy Market",
			Phone:    "+90 555 111 2233",
			Address:  "Moda Cd. 15, Kadıköy",
			Location: geo.Coordinate{Lat: 40.9819, Lng: 29.0254},
			Category: customer.CategoryRetail,
		},
		{
			OwnerID:  demo.ID,
			Name:     "Sultanahmet Bakkaliye",
			Phone:    "+90 555 222 3344",
			Address:  "Divan Yolu Cd. 8, Fatih",
			Location: geo.Coordinate{Lat: 41.0082, Lng: 28.9784},
			Category: customer.CategoryRetail,
		},
		{
			OwnerID:  demo.ID,
			Name:     "Anadolu Gıda Toptan",
			Phone:    "+90 555 333 4455",
			Address:  "Sanayi Mh. 42, Ümraniye",
			Location: geo.Coordinate{Lat: 41.0165, Lng: 29.1248},
			Category: customer.CategoryWholesale,
			Company:  "Anadolu Gıda A.Ş.",
		},
	}

	store := visit.NewSQLiteStore(database)
	tomorrow := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	for i, c := range seeds {
		created, err := customers.Create(ctx, c)
		if err != nil {
			return fmt.Errorf("creating customer %s: %w", c.Name, err)
		}

		_, err = store.Create(ctx, &visit.Visit{
			OwnerID: demo.ID,
			Customer: visit.CustomerRef{
				ID:      created.ID,
				Name:    created.Name,
				Address: created.Address,
				Phone:   created.Phone,
			},
			Target:      created.Location,
			PlannedDate: tomorrow.Add(time.Duration(2*i) * time.Hour),
			Status:      visit.StatusPlanned,
		})
		if err != nil {
			return fmt.Errorf("planning visit for %s: %w", created.Name, err)
		}
		fmt.Printf("✓ %s\n", created.Name)
	}

	fmt.Println("\nSeeded demo account: demo@example.com / demo123")
	return nil
}
