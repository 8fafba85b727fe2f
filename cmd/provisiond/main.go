package main

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"github.com/urmzd/jarvis-node/pkg/node"
	"github.com/urmzd/jarvis-node/pkg/startup"
	"github.com/urmzd/jarvis-node/pkg/wifi"

	_ "github.com/urmzd/jarvis-node/docs"
)

// @title           Jarvis Node Provisioning API
// @version         1.0
// @description     Control API served by a node in setup mode. The companion app uses it to hand over WiFi credentials and a provisioning token.

// @host      192.168.4.1:8080
// @BasePath  /api/v1
// @schemes   http

// version is reported as the node firmware version. Set with -ldflags "-X main.version=...".
var version = "1.0.0"

var flags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		EnvVars: []string{"CONFIG_PATH"},
		Usage:   "path to the local device config document (JSON or YAML)",
	},
	&cli.StringFlag{
		Name:    "command-center-url",
		EnvVars: []string{"COMMAND_CENTER_URL"},
		Usage:   "command center URL, overrides the config document",
	},
	&cli.StringFlag{
		Name:    "simulate",
		EnvVars: []string{"JARVIS_SIMULATE_PROVISIONING"},
		Usage:   "use the simulated WiFi backend (true, 1 or yes)",
	},
	&cli.StringFlag{
		Name:    "wifi-backend",
		EnvVars: []string{"JARVIS_WIFI_BACKEND"},
		Value:   "networkmanager",
		Usage:   "WiFi backend: networkmanager, hostapd or simulated",
	},
	&cli.StringFlag{
		Name:    "wifi-interface",
		EnvVars: []string{"JARVIS_WIFI_INTERFACE"},
		Value:   "wlan0",
		Usage:   "wireless interface",
	},
	&cli.StringFlag{
		Name:    "secret-dir",
		EnvVars: []string{"JARVIS_SECRET_DIRECTORY"},
		Usage:   "directory for the key, credentials and marker (default ~/.jarvis)",
	},
	&cli.StringFlag{
		Name:    "key-file",
		EnvVars: []string{"JARVIS_KEY_FILE"},
		Usage:   "age identity file (default <secret-dir>/secrets.key)",
	},
	&cli.IntFlag{
		Name:    "port",
		EnvVars: []string{"JARVIS_PROVISIONING_PORT"},
		Usage:   "control API port, overrides the stored setting",
	},
	&cli.StringFlag{
		Name:    "db",
		EnvVars: []string{"JARVIS_DB_PATH"},
		Usage:   "path to database file (default: ~/.config/jarvis-node/provisioning.db)",
	},
	&cli.IntFlag{
		Name:    "startup-retries",
		EnvVars: []string{"JARVIS_STARTUP_RETRIES"},
		Value:   startup.DefaultMaxRetries,
		Usage:   "command center health probes before entering provisioning mode",
	},
	&cli.DurationFlag{
		Name:    "startup-delay",
		EnvVars: []string{"JARVIS_STARTUP_DELAY"},
		Value:   startup.DefaultRetryDelay,
		Usage:   "delay between health probes",
	},
	&cli.BoolFlag{
		Name:    "force",
		EnvVars: []string{"JARVIS_FORCE_PROVISIONING"},
		Usage:   "enter provisioning mode even if the node is provisioned",
	},
	&cli.BoolFlag{
		Name:    "auto-shutdown",
		EnvVars: []string{"JARVIS_AUTO_SHUTDOWN"},
		Value:   true,
		Usage:   "exit once provisioning completes",
	},
	&cli.StringFlag{
		Name:    "log-level",
		EnvVars: []string{"JARVIS_LOG_LEVEL"},
		Value:   "info",
		Usage:   "log level: debug, info, warn, error",
	},
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Failed to load .env")
	}

	app := &cli.App{
		Name:    "provisiond",
		Usage:   "Bootstrap this node onto home WiFi and register it with the command center",
		Version: version,
		Flags:   flags,
		Before: func(cCtx *cli.Context) error {
			return setLogLevel(cCtx.String("log-level"))
		},
		Action: func(cCtx *cli.Context) error {
			return run(cCtx.Context, configFromFlags(cCtx))
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("provisiond failed")
	}
}

func setLogLevel(s string) error {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)
	return nil
}

// config is the daemon configuration collected from flags and env.
type config struct {
	Node           node.Config
	StartupRetries int
	StartupDelay   time.Duration
	Force          bool
	AutoShutdown   bool
}

func configFromFlags(cCtx *cli.Context) config {
	return config{
		Node: node.Config{
			ConfigPath:       cCtx.String("config"),
			CommandCenterURL: cCtx.String("command-center-url"),
			Simulate:         wifi.IsTruthy(cCtx.String("simulate")),
			WiFiBackend:      cCtx.String("wifi-backend"),
			WiFiInterface:    cCtx.String("wifi-interface"),
			SecretDir:        cCtx.String("secret-dir"),
			KeyFile:          cCtx.String("key-file"),
			Port:             cCtx.Int("port"),
			DBPath:           cCtx.String("db"),
			FirmwareVersion:  version,
		},
		StartupRetries: cCtx.Int("startup-retries"),
		StartupDelay:   cCtx.Duration("startup-delay"),
		Force:          cCtx.Bool("force"),
		AutoShutdown:   cCtx.Bool("auto-shutdown"),
	}
}
