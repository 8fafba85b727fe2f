package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

var flagCommandCenter = &cli.StringFlag{
	Name:     "command-center-url",
	EnvVars:  []string{"COMMAND_CENTER_URL"},
	Usage:    "command center base URL",
	Required: true,
}

var flagAdminKey = &cli.StringFlag{
	Name:     "admin-key",
	EnvVars:  []string{"JARVIS_ADMIN_KEY"},
	Usage:    "administrator API key",
	Required: true,
}

var flagRoom = &cli.StringFlag{
	Name:  "room",
	Usage: "room the node is placed in",
}

var flagConfig = &cli.StringFlag{
	Name:    "config",
	EnvVars: []string{"CONFIG_PATH"},
	Usage:   "local device config document to update",
}

var flagSecretDir = &cli.StringFlag{
	Name:    "secret-dir",
	EnvVars: []string{"JARVIS_SECRET_DIRECTORY"},
	Usage:   "secret directory (default ~/.jarvis)",
}

var flagKeyFile = &cli.StringFlag{
	Name:    "key-file",
	EnvVars: []string{"JARVIS_KEY_FILE"},
	Usage:   "age identity file (default <secret-dir>/secrets.key)",
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Failed to load .env")
	}

	app := &cli.App{
		Name:  "nodeadmin",
		Usage: "Operator tasks for jarvis nodes",
		Commands: []*cli.Command{
			{
				Name:  "token",
				Usage: "mint a single-use provisioning token for a new node",
				Flags: []cli.Flag{
					flagCommandCenter,
					flagAdminKey,
					&cli.StringFlag{Name: "household-id", Usage: "household the node joins", Required: true},
					flagRoom,
					&cli.StringFlag{Name: "name", Usage: "display name for the node"},
				},
				Action: func(cCtx *cli.Context) error {
					return mintToken(cCtx.Context, cCtx.App.Writer, nil, tokenArgs{
						CommandCenterURL: cCtx.String(flagCommandCenter.Name),
						AdminKey:         cCtx.String(flagAdminKey.Name),
						HouseholdID:      cCtx.String("household-id"),
						Room:             cCtx.String(flagRoom.Name),
						Name:             cCtx.String("name"),
					})
				},
			},
			{
				Name:  "register",
				Usage: "exchange a provisioning token for a node key",
				Flags: []cli.Flag{
					flagCommandCenter,
					&cli.StringFlag{Name: "node-id", Usage: "node id issued with the token", Required: true},
					&cli.StringFlag{Name: "token", Usage: "provisioning token", Required: true},
					flagRoom,
					flagConfig,
				},
				Action: func(cCtx *cli.Context) error {
					return register(cCtx.Context, cCtx.App.Writer, nil, registerArgs{
						CommandCenterURL: cCtx.String(flagCommandCenter.Name),
						NodeID:           cCtx.String("node-id"),
						Token:            cCtx.String("token"),
						Room:             cCtx.String(flagRoom.Name),
						ConfigPath:       cCtx.String(flagConfig.Name),
					})
				},
			},
			{
				Name:  "status",
				Usage: "show what provisioning state is stored on this node",
				Flags: []cli.Flag{flagSecretDir, flagKeyFile},
				Action: func(cCtx *cli.Context) error {
					return status(cCtx.App.Writer, cCtx.String(flagSecretDir.Name), cCtx.String(flagKeyFile.Name))
				},
			},
			{
				Name:  "reset",
				Usage: "forget the provisioned marker, WiFi credentials and K2 so the next boot enters setup",
				Flags: []cli.Flag{flagSecretDir, flagKeyFile},
				Action: func(cCtx *cli.Context) error {
					return reset(cCtx.App.Writer, cCtx.String(flagSecretDir.Name), cCtx.String(flagKeyFile.Name))
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("nodeadmin failed")
	}
}
