package constants

const (
	AppName            = "pocket"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/pocket/pocket.db"
	Version            = "v0.1.0"

	// DateFormat is the day-key format used for completions (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimestampFormat is the fixed-width layout habits' created_at is stored in.
	// Lexical order equals chronological order.
	TimestampFormat = "2006-01-02T15:04:05.000000000Z07:00"

	// Environment variables
	EnvDBConnection = "POCKET_DB_CONNECTION"
	EnvLogLevel     = "POCKET_LOG_LEVEL"

	// Backup constants
	BackupDirName         = "backups"
	BackupFilePrefix      = "pocket-"
	BackupFileExtension   = ".db"
	BackupTimestampFormat = "20060102-150405"
	MaxBackups            = 14

	// LockFileName guards against two interactive sessions on one database
	LockFileName = "pocket.lock"

	// Default setting values
	DefaultUserID            = "local"
	DefaultTimezone          = "Local"
	DefaultRatioWindowDays   = 7
	DefaultHeatmapWindowDays = 28
	DefaultListenAddr        = "127.0.0.1:8377"

	// Max lengths for habit text fields
	MaxNameLength     = 120
	MaxCueLength      = 240
	MaxIdentityLength = 240
)

// Setting keys
const (
	SettingTimezone          = "timezone"
	SettingStreakMode        = "streak_mode"
	SettingRatioWindowDays   = "ratio_window_days"
	SettingHeatmapWindowDays = "heatmap_window_days"
	SettingUserID            = "user_id"
)
