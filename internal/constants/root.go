package constants

import "time"

const (
	AppName            = "habitquest"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/habitquest/habitquest.db"
	DefaultUsername    = "User"
	Version            = "v0.1.0"

	// DateFormat is the calendar-day format used for completion dates (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Snapshot keys
	HabitsKey        = "habits"
	ProfileKey       = "userProfile"
	NotificationsKey = "notifications"

	// Storage backends
	StorageJSON     = "json"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitquest-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "habitquest-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.habitquest"

	// MaxInboxNotifications caps the persisted notification inbox
	MaxInboxNotifications = 100
)
