// Command casevaultctl runs operator tasks against a casevault deployment:
// schema migrations, admin seeding, ledger lookups and manual activity entries.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	identitysvc "casevault/internal/identity/service"
	"casevault/internal/identity/store/user"
	"casevault/internal/ledger/peercli"
	"casevault/internal/platform/config"
	"casevault/internal/platform/logger"
	"casevault/internal/platform/postgres"
	"casevault/pkg/activitylog"
)

func main() {
	root := &cli.Command{
		Name:  "casevaultctl",
		Usage: "operate a casevault deployment",
		Commands: []*cli.Command{
			migrateCommand(),
			seedAdminCommand(),
			resolveTxCommand(),
			logActivityCommand(),
		},
	}
	if err := root.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "casevaultctl: %v\n", err)
		os.Exit(1)
	}
}

func openDB(ctx context.Context) (*sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.InMemory() {
		return nil, errors.New("DATABASE_URL is required")
	}
	return postgres.Open(ctx, cfg.Database)
}

func withDB(fn func(ctx context.Context, db *sql.DB) error) cli.ActionFunc {
	return func(ctx context.Context, _ *cli.Command) error {
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()
		return fn(ctx, db)
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "manage the database schema",
		Commands: []*cli.Command{
			{Name: "up", Usage: "apply pending migrations", Action: withDB(postgres.Migrate)},
			{Name: "status", Usage: "print migration status", Action: withDB(postgres.MigrationStatus)},
			{Name: "down", Usage: "roll back the latest migration", Action: withDB(postgres.Rollback)},
		},
	}
}

func seedAdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed-admin",
		Usage: "create or promote an admin account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Value: "admin", Sources: cli.EnvVars("ADMIN_USERNAME")},
			&cli.StringFlag{Name: "password", Required: true, Sources: cli.EnvVars("ADMIN_PASSWORD")},
			&cli.StringFlag{Name: "email", Value: "admin@casevault.local", Sources: cli.EnvVars("ADMIN_EMAIL")},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := identitysvc.New(user.NewPostgres(db), nil, nil,
				identitysvc.WithLogger(logger.New("info")),
			)
			admin, err := svc.SeedAdmin(ctx, c.String("username"), c.String("password"), c.String("email"))
			if err != nil {
				return err
			}
			fmt.Printf("admin %s ready (id %s)\n", admin.Username, admin.ID)
			return nil
		},
	}
}

func resolveTxCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve-tx",
		Usage:     "look up an anchored hash on the peer ledger",
		ArgsUsage: "<transaction-id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			txID := c.Args().First()
			if txID == "" {
				return errors.New("transaction id is required")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Ledger.Mode != "peer" {
				return errors.New("resolve-tx needs LEDGER_MODE=peer")
			}
			client := peercli.New(peercli.Config{
				Binary:        cfg.Ledger.PeerBinary,
				Orderer:       cfg.Ledger.Orderer,
				OrdererCA:     cfg.Ledger.OrdererCA,
				Channel:       cfg.Ledger.Channel,
				Chaincode:     cfg.Ledger.Chaincode,
				PeerAddress:   cfg.Ledger.PeerAddress,
				PeerTLSRootCA: cfg.Ledger.PeerTLSRootCA,
			})
			ctx, cancel := context.WithTimeout(ctx, cfg.Ledger.Timeout)
			defer cancel()
			tx, err := client.ResolveTransaction(ctx, txID)
			if err != nil {
				return err
			}
			fmt.Printf("hash=%s timestamp=%s\n", tx.Hash, tx.Timestamp)
			return nil
		},
	}
}

// logActivityCommand records an operator action in the activity log. A failed
// delivery is retried once as a batch before giving up.
func logActivityCommand() *cli.Command {
	return &cli.Command{
		Name:  "log-activity",
		Usage: "append an entry to the activity log",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "server", Value: "http://localhost:8080", Sources: cli.EnvVars("CASEVAULT_URL")},
			&cli.StringFlag{Name: "token", Required: true, Sources: cli.EnvVars("CASEVAULT_TOKEN")},
			&cli.StringFlag{Name: "user", Required: true, Usage: "acting user id"},
			&cli.StringFlag{Name: "type", Required: true, Usage: "activity type, e.g. EVIDENCE_REVIEWED"},
			&cli.StringFlag{Name: "related", Usage: "related case or evidence id"},
			&cli.StringFlag{Name: "details"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			shipper := activitylog.New(c.String("server"), c.String("token"),
				activitylog.WithLogger(logger.New("warn")),
			)
			entry := activitylog.Entry{
				UserID:       c.String("user"),
				ActivityType: c.String("type"),
				RelatedID:    c.String("related"),
				Details:      c.String("details"),
			}
			err := shipper.Send(ctx, entry)
			if err == nil {
				fmt.Println("activity recorded")
				return nil
			}
			if shipper.Pending() == 0 {
				return fmt.Errorf("activity refused: %w", err)
			}
			ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
			defer cancel()
			if err := shipper.Flush(ctx); err != nil {
				return fmt.Errorf("activity not recorded (%d pending): %w", shipper.Pending(), err)
			}
			fmt.Println("activity recorded on retry")
			return nil
		},
	}
}
