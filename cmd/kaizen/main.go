package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/kaizenhq/kaizen/internal/cli"
	"github.com/kaizenhq/kaizen/internal/cli/backups"
	"github.com/kaizenhq/kaizen/internal/cli/challenges"
	"github.com/kaizenhq/kaizen/internal/cli/habits"
	"github.com/kaizenhq/kaizen/internal/cli/scores"
	"github.com/kaizenhq/kaizen/internal/cli/settings"
	"github.com/kaizenhq/kaizen/internal/cli/system"
	"github.com/kaizenhq/kaizen/internal/constants"
	kerrors "github.com/kaizenhq/kaizen/internal/errors"
	"github.com/kaizenhq/kaizen/internal/keyring"
	"github.com/kaizenhq/kaizen/internal/logger"
	"github.com/kaizenhq/kaizen/internal/scheduler"
	"github.com/kaizenhq/kaizen/internal/storage"
	"github.com/kaizenhq/kaizen/internal/storage/postgres"
	"github.com/kaizenhq/kaizen/internal/storage/sqlite"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"SQLite path or PostgreSQL connection string. Credentials must NOT be embedded in the connection string; use the OS keyring, PGPASSWORD or .pgpass instead." type:"string" default:"~/.config/kaizen/kaizen.db"`
	Debug   bool   `help:"Log debug output to stderr."`
	User    string `help:"Act as this user instead of the one in settings." env:"KAIZEN_USER"`

	Init      system.InitCmd          `cmd:"" help:"Initialize kaizen storage."`
	Migrate   system.MigrateCmd       `cmd:"" help:"Run database migrations."`
	Doctor    system.DoctorCmd        `cmd:"" help:"Run health checks and diagnostics."`
	Validate  system.ValidateCmd      `cmd:"" help:"Validate habit definitions."`
	Tui       system.TuiCmd           `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Keyring   system.KeyringCmd       `cmd:"" help:"Manage secrets stored in the OS keyring."`
	Habit     habits.HabitCmd         `cmd:"" help:"Manage habits and habit tracking."`
	Score     scores.ScoreCmd         `cmd:"" help:"Show category scores."`
	Coach     scores.CoachCmd         `cmd:"" help:"Suggest adjustments for struggling habits."`
	Challenge challenges.ChallengeCmd `cmd:"" help:"Run group challenges."`
	Settings  settings.SettingsCmd    `cmd:"" help:"Manage application settings."`
	Backup    backups.BackupCmd       `cmd:"" help:"Manage database backups."`
}

// commands that open the store themselves
var selfLoading = map[string]bool{
	"init":    true,
	"migrate": true,
	"doctor":  true,
	"keyring": true,
}

func main() {
	// a missing .env is fine
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker that scores your life areas and nudges the weakest ones"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	store, configDir, err := openStore(CLI.Config, CLI.Config == constants.DefaultConfigPath)
	if err != nil {
		kerrors.Fatal(err)
	}
	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir}); err != nil {
		kerrors.Fatal(err)
	}

	appCtx := &cli.Context{
		Store:     store,
		Scheduler: scheduler.New(),
		UserID:    CLI.User,
	}
	defer store.Close()

	if !selfLoading[strings.Fields(ctx.Command())[0]] {
		if err := store.Load(); err != nil {
			store.Close()
			kerrors.Fatal(err)
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		kerrors.Fatal(err)
	}
}

// openStore picks the backend. An explicit connection string selects
// PostgreSQL; so does a connection stored in the keyring or environment
// when --config was left at its default. Anything else is a SQLite path.
// It also returns the directory logs are written under.
func openStore(config string, isDefault bool) (storage.Provider, string, error) {
	if postgres.IsConnString(config) {
		if err := postgres.ValidateConnString(config); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, "", kerrors.Usagef("PostgreSQL connection strings with embedded passwords are not allowed in --config; use '%s keyring set-connection', %s, PGPASSWORD or .pgpass", constants.AppName, constants.EnvDBConnection)
			}
			return nil, "", kerrors.Usagef("%v", err)
		}
		return postgres.New(config), defaultConfigDir(), nil
	}

	if isDefault {
		if connStr, ok := keyring.Lookup(keyring.DBConnection); ok {
			return postgres.New(connStr), defaultConfigDir(), nil
		}
	}

	path := expandHome(config)
	return sqlite.NewStore(path), filepath.Dir(path), nil
}

func defaultConfigDir() string {
	return filepath.Dir(expandHome(constants.DefaultConfigPath))
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
