package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/jarvis-node/pkg/nodeconfig"
	"github.com/urmzd/jarvis-node/pkg/registration"
	"github.com/urmzd/jarvis-node/pkg/secrets"
	"github.com/urmzd/jarvis-node/pkg/startup"
)

type tokenArgs struct {
	CommandCenterURL string
	AdminKey         string
	HouseholdID      string
	Room             string
	Name             string
}

func mintToken(ctx context.Context, out io.Writer, httpClient *http.Client, args tokenArgs) error {
	client := registration.NewClient(httpClient)
	token, err := client.CreateProvisioningToken(ctx, args.CommandCenterURL, args.AdminKey, args.HouseholdID, args.Room, args.Name)
	if err != nil {
		return err
	}
	return writeJSON(out, token)
}

type registerArgs struct {
	CommandCenterURL string
	NodeID           string
	Token            string
	Room             string
	ConfigPath       string
}

func register(ctx context.Context, out io.Writer, httpClient *http.Client, args registerArgs) error {
	client := registration.NewClient(httpClient)
	reg, err := client.RegisterWithToken(ctx, args.CommandCenterURL, args.NodeID, args.Token, args.Room)
	if err != nil {
		return err
	}

	if args.ConfigPath != "" {
		values := map[string]any{
			nodeconfig.KeyNodeID:           reg.NodeID,
			nodeconfig.KeyNodeKey:          reg.NodeKey,
			nodeconfig.KeyCommandCenterURL: args.CommandCenterURL,
		}
		if args.Room != "" {
			values[nodeconfig.KeyRoom] = args.Room
		}
		if err := nodeconfig.NewStore(args.ConfigPath).Update(values); err != nil {
			return err
		}
		log.Info().Str("config", args.ConfigPath).Str("node_id", reg.NodeID).Msg("Node credentials saved")
	}
	return writeJSON(out, reg)
}

// nodeState summarizes what is stored in the secret directory.
type nodeState struct {
	SecretDir   string `json:"secret_dir"`
	Provisioned bool   `json:"provisioned"`
	WiFiSSID    string `json:"wifi_ssid,omitempty"`
	HasK2       bool   `json:"has_k2"`
	K2KID       string `json:"k2_kid,omitempty"`
}

func status(out io.Writer, secretDir, keyFile string) error {
	paths := secrets.ResolvePaths(secretDir, keyFile)
	keys := secrets.NewKeyStore(paths.KeyFile)

	st := nodeState{
		SecretDir:   paths.Dir,
		Provisioned: startup.NewMarker(paths.Marker()).Exists(),
	}
	if creds := secrets.NewVault(paths.Credentials(), keys).Load(); creds != nil {
		st.WiFiSSID = creds.SSID
	}
	k2 := secrets.NewK2Store(paths, keys)
	st.HasK2 = k2.Has()
	if _, meta := k2.Load(); meta != nil {
		st.K2KID = meta.KID
	}
	return writeJSON(out, st)
}

func reset(out io.Writer, secretDir, keyFile string) error {
	paths := secrets.ResolvePaths(secretDir, keyFile)
	keys := secrets.NewKeyStore(paths.KeyFile)

	if err := startup.NewMarker(paths.Marker()).Clear(); err != nil {
		return err
	}
	if err := secrets.NewVault(paths.Credentials(), keys).Clear(); err != nil {
		return err
	}
	if err := secrets.NewK2Store(paths, keys).Clear(); err != nil {
		return err
	}

	log.Info().Str("secret_dir", paths.Dir).Msg("Node reset, next boot enters provisioning mode")
	_, err := fmt.Fprintln(out, "reset complete")
	return err
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
