package constants

const (
	AppName            = "vitrine"
	DefaultKeyringUser = "remote-anon-key"
	DefaultConfigDir   = "~/.config/vitrine"
	ConfigFileName     = "config.jsonc"
	Version            = "v0.3.0"

	// StorageKey is the single key the full snapshot lives under in the local blob store
	StorageKey = "planner_vitrine_v1"

	// SelectionKeySuffix names the blob holding the last selected client, kept
	// apart from the snapshot
	SelectionKeySuffix = ".current"

	// ID prefixes for generated entity ids (<prefix>-<unix millis>)
	ClientIDPrefix = "client"
	CardIDPrefix   = "card"

	// Remote table names
	TableClients = "clients"
	TableCards   = "cards"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "vitrine-"
	BackupFileSuffix = ".json"

	// Cache backends
	CacheSQLite = "sqlite"
	CacheFile   = "file"
	CacheMemory = "memory"

	CacheDBName  = "vitrine.db"
	CacheDirName = "cache"
)

// SessionState represents the current state of the TUI application
type SessionState int

const (
	StateClients SessionState = iota
	StateWorkspace
	StateClientForm
	StateCardForm
	StateConfirmDelete
)

// WorkspaceTab is a view of the selected client's cards
type WorkspaceTab int

const (
	TabWeek WorkspaceTab = iota
	TabMonth
	TabBacklog
	TabFavorites
)

// WorkspaceTabTitles are the tab labels in display order
var WorkspaceTabTitles = []string{"Semana", "Mês", "Backlog", "Favoritos"}
