package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ecinar/route-tracker/internal/user"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newUserAddCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	var (
		name     string
		email    string
		password string
		role     string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a salesperson account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(database)

			u, err := user.NewRepository(database).Create(
				cmd.Context(), name, email, password, user.Role(role),
			)
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(u)
			}
			fmt.Printf("✓ created %s (%s)\n", u.Email, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "password (min 6 characters)")
	cmd.Flags().StringVar(&role, "role", "sales_person", "role (sales_person|manager)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
