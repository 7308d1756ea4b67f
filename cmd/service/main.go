package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/luzza07/artist-management-backend/internal/config"
)

func main() {
	app := &cli.Command{
		Name:  "artists",
		Usage: "Artist management back office",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to an optional TOML configuration file",
				Sources: cli.EnvVars("CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			exportArtistsCommand(),
			importArtistsCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		config.NewLogger(os.Stderr, "error").Fatal("application error", "err", err)
	}
}
