package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kaizenhq/kaizen/internal/cli"
	kerrors "github.com/kaizenhq/kaizen/internal/errors"
	"github.com/kaizenhq/kaizen/internal/keyring"
	"github.com/kaizenhq/kaizen/internal/storage/postgres"
)

type KeyringCmd struct {
	SetConnection KeyringSetConnectionCmd `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
	SetAPIKey     KeyringSetAPIKeyCmd     `cmd:"" name:"set-api-key" help:"Store the narrator API key in the OS keyring."`
	Delete        KeyringDeleteCmd        `cmd:"" help:"Remove a stored secret."`
	Status        KeyringStatusCmd        `cmd:"" help:"Show keyring availability and stored secrets."`
}

type KeyringSetConnectionCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string."`
}

func (cmd *KeyringSetConnectionCmd) Run(ctx *cli.Context) error {
	if !postgres.IsConnString(cmd.ConnectionString) {
		return kerrors.Usagef("connection string must be a postgres:// URL or key=value pairs")
	}
	if err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return kerrors.Usagef("invalid connection string: %v", err)
		}
		fmt.Println("⚠️  Warning: Connection string contains a password.")
		fmt.Println("   It will be stored as-is in the encrypted OS keyring.")
	}

	if err := keyring.Set(keyring.DBConnection, cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}
	fmt.Println("✓ Connection string stored in OS keyring")
	fmt.Println("  kaizen will now use PostgreSQL unless --config points elsewhere")
	return nil
}

type KeyringSetAPIKeyCmd struct {
	Key string `arg:"" help:"API key for the OpenAI-compatible narrator endpoint."`
}

func (cmd *KeyringSetAPIKeyCmd) Run(ctx *cli.Context) error {
	key := strings.TrimSpace(cmd.Key)
	if key == "" {
		return kerrors.Usagef("API key cannot be empty")
	}
	if err := keyring.Set(keyring.NarratorAPIKey, key); err != nil {
		return fmt.Errorf("failed to store API key in keyring: %w", err)
	}
	fmt.Println("✓ Narrator API key stored in OS keyring")
	return nil
}

type KeyringDeleteCmd struct {
	APIKey bool `name:"api-key" help:"Delete the narrator API key instead of the connection string."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	secret, label := keyring.DBConnection, "connection string"
	if cmd.APIKey {
		secret, label = keyring.NarratorAPIKey, "narrator API key"
	}

	if err := keyring.Delete(secret); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", label)
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", label, err)
	}
	fmt.Printf("✓ Deleted %s from OS keyring\n", label)
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Println("❌ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}
	fmt.Println("✓ OS keyring is available")

	if connStr, err := keyring.Get(keyring.DBConnection); err == nil {
		fmt.Printf("✓ Connection string: %s\n", postgres.MaskPassword(connStr))
	} else {
		fmt.Println("ℹ No connection string stored")
	}
	if _, err := keyring.Get(keyring.NarratorAPIKey); err == nil {
		fmt.Println("✓ Narrator API key is stored")
	} else {
		fmt.Println("ℹ No narrator API key stored")
	}
	return nil
}
