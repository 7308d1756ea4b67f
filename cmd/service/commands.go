package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"

	"github.com/luzza07/artist-management-backend/internal/auth"
	"github.com/luzza07/artist-management-backend/internal/catalog"
	"github.com/luzza07/artist-management-backend/internal/config"
	"github.com/luzza07/artist-management-backend/internal/database"
	"github.com/luzza07/artist-management-backend/internal/realtime"
	"github.com/luzza07/artist-management-backend/internal/server"
	"github.com/luzza07/artist-management-backend/internal/users"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the HTTP API",
		Action: serve,
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or update the database schema",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, logger, pool, err := connect(ctx, cmd)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := database.AutoMigrate(ctx, pool); err != nil {
				return err
			}
			logger.Info("schema up to date")
			return nil
		},
	}
}

func exportArtistsCommand() *cli.Command {
	return &cli.Command{
		Name:  "export-artists",
		Usage: "Write every artist as CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file (default stdout)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, logger, pool, err := connect(ctx, cmd)
			if err != nil {
				return err
			}
			defer pool.Close()

			var w io.Writer = os.Stdout
			if path := cmd.String("out"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("create %s: %w", path, err)
				}
				defer f.Close()
				w = f
			}
			artists := catalog.NewArtists(catalog.NewPostgresStore(pool), nil, logger)
			return artists.Export(ctx, w)
		},
	}
}

func importArtistsCommand() *cli.Command {
	return &cli.Command{
		Name:      "import-artists",
		Usage:     "Create artists from a name,bio,nationality CSV file",
		ArgsUsage: "<file.csv>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return errors.New("import-artists: a CSV file is required")
			}
			_, logger, pool, err := connect(ctx, cmd)
			if err != nil {
				return err
			}
			defer pool.Close()

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer f.Close()

			artists := catalog.NewArtists(catalog.NewPostgresStore(pool), nil, logger)
			n, err := artists.Import(ctx, f)
			if err != nil {
				return err
			}
			logger.Info("artists imported", "count", n, "file", path)
			return nil
		},
	}
}

func connect(ctx context.Context, cmd *cli.Command) (config.Config, *log.Logger, *pgxpool.Pool, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	logger := config.NewLogger(os.Stderr, cfg.LogLevel)
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, logger, pool, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, pool, err := connect(ctx, cmd)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.AutoMigrate(ctx, pool); err != nil {
		return err
	}

	tokens, err := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.AccessTTL, cfg.RefreshTTL)
	if err != nil {
		return err
	}

	var events realtime.Publisher = realtime.NopPublisher{}
	var feed *realtime.Feed
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()

		events = realtime.NewRedisPublisher(rdb, cfg.EventsChannel, logger)
		hub := realtime.NewHub()
		go hub.Run(ctx)
		feed = realtime.NewFeed(hub, logger, cfg.CORSAllowedOrigin)
		go feed.RunSubscriber(ctx, rdb, cfg.EventsChannel)
	} else {
		logger.Warn("REDIS_URL not set, realtime feed disabled")
	}

	userStore := users.NewPostgresStore(pool)
	catalogStore := catalog.NewPostgresStore(pool)

	router := server.NewRouter(server.Deps{
		Config:     cfg,
		Logger:     logger,
		Tokens:     tokens,
		Identities: userStore,
		Users:      users.NewService(userStore, tokens, events, logger),
		Albums:     catalog.NewService(catalogStore, events, logger),
		Artists:    catalog.NewArtists(catalogStore, events, logger),
		Feed:       feed,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
