package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/savethebee/honeyweb/internal/config"
	"github.com/savethebee/honeyweb/internal/service"
	"github.com/savethebee/honeyweb/internal/store"
)

const usage = "expected 'add-admin', 'promote' or 'migrate' subcommand"

func main() {
	addAdminCmd := flag.NewFlagSet("add-admin", flag.ExitOnError)
	adminEmail := addAdminCmd.String("email", "", "Email for the new admin")
	adminPassword := addAdminCmd.String("password", "", "Password for the new admin")

	promoteCmd := flag.NewFlagSet("promote", flag.ExitOnError)
	promoteEmail := promoteCmd.String("email", "", "Email of the user to promote")

	migrateCmd := flag.NewFlagSet("migrate", flag.ExitOnError)
	dryRun := migrateCmd.Bool("dry-run", false, "List pending migrations without applying them")

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch os.Args[1] {
	case "add-admin":
		addAdminCmd.Parse(os.Args[2:])
		if *adminEmail == "" || *adminPassword == "" {
			fmt.Println("email and password are required")
			addAdminCmd.PrintDefaults()
			os.Exit(1)
		}
		db := openStore(ctx, cfg)
		defer db.Close()
		users := &service.UserService{Store: db, Policy: service.PolicyFromConfig(cfg)}
		u, err := users.CreateAdmin(ctx, *adminEmail, *adminPassword)
		if err != nil {
			log.Fatalf("Failed to create admin: %v", err)
		}
		fmt.Printf("Admin '%s' created successfully.\n", u.Email)
	case "promote":
		promoteCmd.Parse(os.Args[2:])
		if *promoteEmail == "" {
			fmt.Println("email is required")
			promoteCmd.PrintDefaults()
			os.Exit(1)
		}
		db := openStore(ctx, cfg)
		defer db.Close()
		users := &service.UserService{Store: db, Policy: service.PolicyFromConfig(cfg)}
		u, err := users.Promote(ctx, *promoteEmail)
		if err != nil {
			log.Fatalf("Failed to promote user: %v", err)
		}
		fmt.Printf("User '%s' is now an admin.\n", u.Email)
	case "migrate":
		migrateCmd.Parse(os.Args[2:])
		db, err := store.NewStore(cfg.DBDriver, cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()
		if *dryRun {
			pending, err := db.PendingMigrations(ctx)
			if err != nil {
				log.Fatalf("Failed to list migrations: %v", err)
			}
			for _, name := range pending {
				fmt.Println(name)
			}
			fmt.Printf("%d pending migration(s).\n", len(pending))
			return
		}
		if err := db.Migrate(ctx); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		fmt.Println("Migrations applied.")
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

// openStore opens the database and makes sure the schema exists, so the
// CLI works before the server has ever run.
func openStore(ctx context.Context, cfg *config.Config) *store.Store {
	db, err := store.NewStore(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to init schema: %v", err)
	}
	return db
}
