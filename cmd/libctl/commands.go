package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gorm.io/gorm"

	"library_backend/internals/configs"
	database "library_backend/internals/databases"
	authDto "library_backend/internals/features/auth/dto"
	authService "library_backend/internals/features/auth/service"
	reservationScheduler "library_backend/internals/features/reservations/scheduler"
	reservationService "library_backend/internals/features/reservations/service"
	"library_backend/internals/helpers/ttlstore"
	"library_backend/internals/seeds"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "libctl",
		Short:         "Operator commands for the library backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configs.LoadEnv()
		},
	}
	root.AddCommand(
		newMigrateCmd(),
		newSeedCmd(),
		newSweepCmd(),
		newPurgeCmd(),
		newCreateStaffCmd(),
	)
	return root
}

// withDB opens the configured database for one command and closes it after.
func withDB(fn func(db *gorm.DB) error) error {
	database.ConnectDB()
	defer database.Close(database.DB)
	return fn(database.DB)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *gorm.DB) error {
				if err := database.Migrate(db); err != nil {
					return err
				}
				fmt.Println("schema is up to date")
				return nil
			})
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default loan policies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(seeds.RunAllSeeds)
		},
	}
}

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-reservations",
		Short: "Expire pending and ready reservations past their date",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *gorm.DB) error {
				n := reservationScheduler.RunSweep(reservationService.NewReservationService(db))
				fmt.Printf("%d reservations expired\n", n)
				return nil
			})
		},
	}
}

func newPurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-tokens",
		Short: "Delete expired reset tokens and revoked JWTs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *gorm.DB) error {
				n, err := ttlstore.NewGormStore(db).Purge(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Printf("%d expired entries removed\n", n)
				return nil
			})
		},
	}
}

func newCreateStaffCmd() *cobra.Command {
	var req authDto.CreateStaffRequest
	cmd := &cobra.Command{
		Use:   "create-staff",
		Short: "Create a librarian or admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw := os.Getenv("LIBCTL_PASSWORD")
			if pw == "" {
				var err error
				if pw, err = readPassword("Password: "); err != nil {
					return fmt.Errorf("read password: %w", err)
				}
			}
			req.Password = pw

			return withDB(func(db *gorm.DB) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				defer cancel()

				svc := authService.NewAuthService(db, ttlstore.NewGormStore(db))
				user, err := svc.CreateStaff(ctx, req)
				if err != nil {
					return err
				}
				fmt.Printf("created %s %s (%s)\n", user.Role, user.Email, user.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "login email")
	cmd.Flags().StringVar(&req.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&req.Role, "role", "librarian", "librarian or admin")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func readPassword(prompt string) (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", errors.New("stdin is not a terminal; set LIBCTL_PASSWORD")
	}
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
