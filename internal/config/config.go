package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"

	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/keyring"
	"github.com/julianstephens/vitrine/internal/logger"
	"github.com/julianstephens/vitrine/internal/remote"
	"github.com/julianstephens/vitrine/internal/utils"
)

// EnvFiles are the dotenv files read before flags are parsed. Missing files
// are skipped.
var EnvFiles = []string{".env.local", ".env"}

// Flags are the global options shared by every command. Each one can also
// be set through the environment or the config file.
type Flags struct {
	ConfigDir     string        `name:"config-dir" help:"Directory for the cache, backups and logs." type:"path" default:"${config_dir}" env:"VITRINE_CONFIG_DIR"`
	Cache         string        `help:"Local cache backend (${enum})." enum:"sqlite,file,memory" default:"sqlite" env:"VITRINE_CACHE"`
	RemoteURL     string        `name:"remote-url" help:"Remote store endpoint: a PostgREST URL or a postgres:// connection string." env:"SUPABASE_URL,VITRINE_REMOTE_URL"`
	RemoteKey     string        `name:"remote-key" help:"Remote anon key (or database password). Falls back to the OS keyring." env:"SUPABASE_ANON_KEY,VITRINE_REMOTE_KEY"`
	RemoteTimeout time.Duration `name:"remote-timeout" help:"Timeout for each remote call." default:"15s" env:"VITRINE_REMOTE_TIMEOUT"`
	MirrorRate    float64       `name:"mirror-rate" help:"Maximum remote writes per second per table (0 = unlimited)." default:"0" env:"VITRINE_MIRROR_RATE"`
	CaptionKey    string        `name:"caption-key" help:"API key for caption suggestions." env:"GEMINI_API_KEY,API_KEY"`
	CaptionModel  string        `name:"caption-model" help:"Model used for caption suggestions." default:"${caption_model}" env:"VITRINE_CAPTION_MODEL"`
	Timezone      string        `help:"Timezone used to decide what \"today\" is." default:"Local" env:"VITRINE_TIMEZONE"`
	Debug         bool          `help:"Log debug output to stderr." env:"VITRINE_DEBUG"`
}

// Vars are the interpolation variables the Flags tags refer to.
func Vars() kong.Vars {
	return kong.Vars{
		"config_dir":     constants.DefaultConfigDir,
		"caption_model":  constants.DefaultCaptionModel,
		"default_pillar": constants.DefaultCardPillar,
		"default_status": constants.DefaultCardStatus,
		"version":        constants.Version,
	}
}

// Validate is called by kong after parsing.
func (f *Flags) Validate() error {
	if !utils.ValidateTimezone(f.Timezone) {
		return fmt.Errorf("invalid timezone %q", f.Timezone)
	}
	if f.MirrorRate < 0 {
		return errors.New("mirror-rate cannot be negative")
	}
	if f.RemoteTimeout <= 0 {
		return errors.New("remote-timeout must be positive")
	}
	return nil
}

// Location returns the configured timezone.
func (f *Flags) Location() *time.Location {
	loc, err := utils.LoadLocation(f.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Remote returns the remote store configuration. The key falls back to the
// OS keyring when neither a flag nor the environment provides one.
func (f *Flags) Remote() remote.Config {
	url := strings.TrimSpace(f.RemoteURL)
	cfg := remote.Config{URL: url, Timeout: f.RemoteTimeout}
	if url != "" {
		cfg.Key = keyring.ResolveAnonKey(f.RemoteKey)
	}
	return cfg
}

// Logger returns the logger configuration for these flags.
func (f *Flags) Logger() logger.Config {
	return logger.Config{Debug: f.Debug, ConfigDir: f.ConfigDir}
}

// LoadEnv reads the given dotenv files into the process environment, without
// overriding variables that are already set.
func LoadEnv(files ...string) error {
	for _, file := range files {
		if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

// FilePaths lists the config files consulted, lowest priority last. An
// explicit VITRINE_CONFIG_FILE comes first.
func FilePaths() []string {
	paths := []string{filepath.Join(constants.DefaultConfigDir, constants.ConfigFileName)}
	if p := os.Getenv("VITRINE_CONFIG_FILE"); p != "" {
		paths = append([]string{p}, paths...)
	}
	return paths
}

// JSONC is a kong configuration loader for JSON files with comments and
// trailing commas.
func JSONC(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return kong.JSON(bytes.NewReader(jsonc.ToJSON(data)))
}
