package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"github.com/urmzd/jarvis-node/pkg/api/schema"
	nodemcp "github.com/urmzd/jarvis-node/pkg/mcp"
	"github.com/urmzd/jarvis-node/pkg/node"
	"github.com/urmzd/jarvis-node/pkg/wifi"
)

var version = "1.0.0"

func main() {
	// Logging must go to stderr, stdout is the MCP transport
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Failed to load .env")
	}

	app := &cli.App{
		Name:      "jarvis-node-mcp",
		Usage:     "Serve the node provisioning tools over MCP stdio",
		Version:   version,
		Writer:    os.Stderr,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", EnvVars: []string{"CONFIG_PATH"}, Usage: "path to the local device config document"},
			&cli.StringFlag{Name: "simulate", EnvVars: []string{"JARVIS_SIMULATE_PROVISIONING"}, Usage: "use the simulated WiFi backend"},
			&cli.StringFlag{Name: "wifi-backend", EnvVars: []string{"JARVIS_WIFI_BACKEND"}, Value: "networkmanager", Usage: "WiFi backend"},
			&cli.StringFlag{Name: "wifi-interface", EnvVars: []string{"JARVIS_WIFI_INTERFACE"}, Value: "wlan0", Usage: "wireless interface"},
			&cli.StringFlag{Name: "secret-dir", EnvVars: []string{"JARVIS_SECRET_DIRECTORY"}, Usage: "secret directory"},
			&cli.StringFlag{Name: "key-file", EnvVars: []string{"JARVIS_KEY_FILE"}, Usage: "age identity file"},
			&cli.StringFlag{Name: "db", EnvVars: []string{"JARVIS_DB_PATH"}, Usage: "path to database file (default: ~/.config/jarvis-node/provisioning.db)"},
			&cli.BoolFlag{Name: "start-ap", Usage: "bring up the setup access point before serving"},
		},
		Action: func(cCtx *cli.Context) error {
			return serve(cCtx.Context, cCtx.Bool("start-ap"), node.Config{
				ConfigPath:      cCtx.String("config"),
				Simulate:        wifi.IsTruthy(cCtx.String("simulate")),
				WiFiBackend:     cCtx.String("wifi-backend"),
				WiFiInterface:   cCtx.String("wifi-interface"),
				SecretDir:       cCtx.String("secret-dir"),
				KeyFile:         cCtx.String("key-file"),
				DBPath:          cCtx.String("db"),
				FirmwareVersion: version,
			})
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("MCP server failed")
	}
}

func serve(ctx context.Context, startAP bool, cfg node.Config) error {
	n, err := node.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := n.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("Failed to close node")
		}
	}()

	if startAP {
		n.StartAccessPoint(ctx)
	}

	mcpServer := nodemcp.NewServer(n.Service, schema.NewValidator(), version)

	log.Info().Str("node_id", n.Info.NodeID).Str("wifi_backend", string(n.Backend)).Msg("Starting MCP server on stdio")
	return mcpServer.ServeStdio()
}
