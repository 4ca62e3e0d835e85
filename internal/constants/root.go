package constants

import "time"

const (
	AppName            = "habitchain"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/habitchain/habitchain.db"
	Version            = "v0.1.0"

	// DateFormat is the calendar-day format used for completion keys (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the reminder time format (HH:MM)
	TimeFormat = "15:04"

	// Completion rewards
	PointsPerCompletion = 10
	StreakPerCompletion = 1

	// New habit defaults
	DefaultChainMembers = 1
	DefaultWeekProgress = 0

	// Password hashing
	DefaultBcryptCost = 12

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitchain-"
	BackupFileSuffix = ".db"

	// PostgreSQL retry policy
	StoreMaxRetries     = 4
	StoreRetryBaseDelay = 100 * time.Millisecond

	// Environment variables
	EnvConfig       = "HABITCHAIN_CONFIG"
	EnvDBConnection = "HABITCHAIN_DB_CONNECTION"
	EnvDebug        = "HABITCHAIN_DEBUG"
	EnvBcryptCost   = "HABITCHAIN_BCRYPT_COST"
)
