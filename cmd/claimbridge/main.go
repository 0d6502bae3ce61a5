package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/claimbridge/claimbridge/internal/adapters/db/sqlstore"
	httpadapter "github.com/claimbridge/claimbridge/internal/adapters/http"
	rpcadapter "github.com/claimbridge/claimbridge/internal/adapters/rpcjson"
	"github.com/claimbridge/claimbridge/internal/application"
	"github.com/claimbridge/claimbridge/internal/config"
	"github.com/claimbridge/claimbridge/internal/domain"
	"github.com/claimbridge/claimbridge/internal/logging"
	"github.com/claimbridge/claimbridge/internal/metrics"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	if err := rootCommand().Run(context.Background(), args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:  "claimbridge",
		Usage: "Claims administration server and CLI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML config file", Sources: cli.EnvVars("CLAIMBRIDGE_CONFIG")},
			&cli.StringFlag{Name: "transport", Value: transportUDS, Usage: "client transport: http or uds", Sources: cli.EnvVars("CLAIMBRIDGE_TRANSPORT")},
			&cli.StringFlag{Name: "server", Value: "http://127.0.0.1:8080", Usage: "server base URL for the http transport", Sources: cli.EnvVars("CLAIMBRIDGE_SERVER")},
			&cli.StringFlag{Name: "socket", Usage: "JSON-RPC socket for the uds transport (default from config)"},
		},
		Commands: []*cli.Command{
			serverCommand(),
			claimsCommand(),
			notesCommand(),
			adminsCommand(),
			dbCommand(),
		},
	}
}

func serverCommand() *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "Run the HTTP server and the JSON-RPC socket",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "HTTP listen address"},
			&cli.StringFlag{Name: "rpc-socket", Usage: "JSON-RPC unix socket path"},
			&cli.StringFlag{Name: "db-driver", Usage: "sqlite or postgres"},
			&cli.StringFlag{Name: "db-dsn", Usage: "database DSN or SQLite file"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Usage: "json or console"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadServerConfig(c)
			if err != nil {
				return err
			}
			return runServer(ctx, cfg)
		},
	}
}

// loadServerConfig layers command flags over the file and environment.
func loadServerConfig(c *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	overrides := map[string]*string{
		"addr":       &cfg.Server.Addr,
		"rpc-socket": &cfg.Server.RPCSocket,
		"db-driver":  &cfg.Database.Driver,
		"db-dsn":     &cfg.Database.DSN,
		"log-level":  &cfg.Log.Level,
		"log-format": &cfg.Log.Format,
	}
	for name, dst := range overrides {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openService(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...application.Option) (*application.ClaimService, *gorm.DB, error) {
	db, err := sqlstore.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	service := application.NewClaimService(sqlstore.NewClaimRepository(db), logger, opts...)
	if err := service.Initialize(ctx); err != nil {
		closeDB(db)
		return nil, nil, err
	}
	return service, db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	m := metrics.New()
	service, db, err := openService(ctx, cfg, logger, application.WithMetrics(m))
	if err != nil {
		logger.Error("database initialization failed", zap.String("driver", cfg.Database.Driver), zap.Error(err))
		return err
	}
	defer closeDB(db)

	router := httpadapter.NewRouter(service, logger, m)
	srv := &http.Server{Addr: cfg.Server.Addr, Handler: router, ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout}
	rpcSrv, err := rpcadapter.Start(cfg.Server.RPCSocket, service, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = rpcSrv.Close()
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("database", cfg.Database.Driver))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func dbCommand() *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "Database maintenance",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Create the schema and seed the demo users against the configured database",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "db-driver", Usage: "sqlite or postgres"},
					&cli.StringFlag{Name: "db-dsn", Usage: "database DSN or SQLite file"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadServerConfig(c)
					if err != nil {
						return err
					}
					_, db, err := openService(ctx, cfg, nil)
					if err != nil {
						return err
					}
					closeDB(db)
					fmt.Printf("database initialized (%s)\n", cfg.Database.Driver)
					return nil
				},
			},
		},
	}
}

func claimsCommand() *cli.Command {
	return &cli.Command{
		Name:  "claims",
		Usage: "Claim commands",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List claims, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Usage: "only show claims with this status"},
					jsonFlag(),
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := clientConfig(c)
					if err != nil {
						return err
					}
					var out []domain.Claim
					if err := doClaimsList(ctx, cfg, &out); err != nil {
						return err
					}
					out = filterByStatus(out, c.String("status"))
					if c.Bool("json") {
						return printJSON(out)
					}
					printClaims(os.Stdout, out)
					return nil
				},
			},
			{
				Name:  "get",
				Usage: "Show a claim and its notes",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "id", Required: true},
					jsonFlag(),
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := clientConfig(c)
					if err != nil {
						return err
					}
					var claim domain.Claim
					if err := doClaimsGet(ctx, cfg, c.Uint("id"), &claim); err != nil {
						return err
					}
					var notes []domain.ClaimNote
					if err := doNotesList(ctx, cfg, claim.ID, &notes); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(map[string]any{"claim": claim, "notes": notes})
					}
					printClaimDetail(os.Stdout, claim, notes)
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "Create a claim",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true, Usage: "claimant name"},
					&cli.StringFlag{Name: "date", Required: true, Usage: "date of loss, YYYY-MM-DD"},
					&cli.StringFlag{Name: "summary", Required: true},
					&cli.StringFlag{Name: "details", Required: true},
					&cli.StringFlag{Name: "status", Usage: "initial status (default New)"},
					jsonFlag(),
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := clientConfig(c)
					if err != nil {
						return err
					}
					in := domain.CreateClaimInput{
						ClaimantName: c.String("name"),
						Date:         c.String("date"),
						Summary:      c.String("summary"),
						Details:      c.String("details"),
						Status:       domain.ClaimStatus(c.String("status")),
					}
					var out domain.Claim
					if err := doClaimsCreate(ctx, cfg, in, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printClaims(os.Stdout, []domain.Claim{out})
					return nil
				},
			},
			{
				Name:  "set-status",
				Usage: "Change the status of a claim",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "id", Required: true},
					&cli.StringFlag{Name: "status", Required: true, Usage: `New, "In Review" or Closed`},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := clientConfig(c)
					if err != nil {
						return err
					}
					if err := doClaimsSetStatus(ctx, cfg, c.Uint("id"), domain.ClaimStatus(c.String("status"))); err != nil {
						return err
					}
					fmt.Printf("claim %d set to %s\n", c.Uint("id"), c.String("status"))
					return nil
				},
			},
			{
				Name:  "generate",
				Usage: "Create claims with fake data",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "count", Value: 1},
					jsonFlag(),
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := clientConfig(c)
					if err != nil {
						return err
					}
					count := c.Int("count")
					if count < 1 {
						return fmt.Errorf("count must be positive, got %d", count)
					}
					out := make([]domain.Claim, 0, count)
					for range count {
						var claim domain.Claim
						if err := doClaimsGenerate(ctx, cfg, &claim); err != nil {
							return err
						}
						out = append(out, claim)
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printClaims(os.Stdout, out)
					return nil
				},
			},
		},
	}
}

func notesCommand() *cli.Command {
	return &cli.Command{
		Name:  "notes",
		Usage: "Claim note commands",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List the notes of a claim, oldest first",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "claim-id", Required: true},
					jsonFlag(),
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := clientConfig(c)
					if err != nil {
						return err
					}
					var out []domain.ClaimNote
					if err := doNotesList(ctx, cfg, c.Uint("claim-id"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printNotes(os.Stdout, out)
					return nil
				},
			},
			{
				Name:  "add",
				Usage: "Append a note to a claim",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "claim-id", Required: true},
					&cli.StringFlag{Name: "author-id", Value: "2", Usage: "admin user id recorded as the author"},
					&cli.StringFlag{Name: "note", Required: true},
					jsonFlag(),
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := clientConfig(c)
					if err != nil {
						return err
					}
					in := domain.CreateNoteInput{
						ClaimID:  c.Uint("claim-id"),
						AuthorID: c.String("author-id"),
						Note:     c.String("note"),
					}
					var out domain.ClaimNote
					if err := doNotesAdd(ctx, cfg, in, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					fmt.Printf("added note %d to claim %d\n", out.ID, out.ClaimID)
					return nil
				},
			},
		},
	}
}

func adminsCommand() *cli.Command {
	return &cli.Command{
		Name:  "admins",
		Usage: "Admin user commands",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List admin users",
				Flags: []cli.Flag{jsonFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := clientConfig(c)
					if err != nil {
						return err
					}
					var out []domain.AdminUser
					if err := doAdminsList(ctx, cfg, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printAdmins(os.Stdout, out)
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "Create an admin user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "role", Value: string(domain.RoleAdmin), Usage: "admin or super-admin"},
					jsonFlag(),
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := clientConfig(c)
					if err != nil {
						return err
					}
					in := domain.CreateAdminInput{
						Name:  c.String("name"),
						Email: c.String("email"),
						Role:  domain.AdminRole(c.String("role")),
					}
					var out domain.AdminUser
					if err := doAdminsCreate(ctx, cfg, in, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printAdmins(os.Stdout, []domain.AdminUser{out})
					return nil
				},
			},
		},
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "output raw JSON"}
}

func jsonMarshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
