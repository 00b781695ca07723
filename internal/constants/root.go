package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName             = "kaizen"
	DefaultKeyringUser  = "database-connection"
	NarratorKeyringUser = "narrator-api-key"
	DefaultConfigPath   = "~/.config/kaizen/kaizen.db"
	Version             = "v0.3.0"

	// Environment fallbacks for secrets that are normally kept in the OS keyring
	EnvDBConnection   = "KAIZEN_DB_CONNECTION"
	EnvNarratorAPIKey = "KAIZEN_NARRATOR_API_KEY"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "kaizen-"
	BackupFileSuffix = ".db"

	// Narrator constants
	NarratorTimeout     = 20 * time.Second
	NarratorMaxTokens   = 220
	NarratorTemperature = 0.7
)

// Session States
const (
	StateToday SessionState = iota
	StateScores
	StateAddHabit
)
