package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/vitrine/internal/cli"
	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/keyring"
	"github.com/julianstephens/vitrine/internal/remote"
)

// endpointer is implemented by adapters that can describe where they point
// without leaking credentials.
type endpointer interface {
	Endpoint() string
}

// RemoteStatusCmd reports how the remote store is configured.
type RemoteStatusCmd struct{}

func (cmd *RemoteStatusCmd) Run(ctx *cli.Context) error {
	cfg := ctx.Config.Remote()

	switch {
	case cfg.URL == "":
		ctx.Printf("ℹ Remote store not configured (set %s to enable it)\n", constants.EnvRemoteURL)
	case cfg.Key == "":
		ctx.Printf("⚠ Remote URL is set but no key was found (set %s or run '%s remote set-key')\n",
			constants.EnvRemoteAnonKey, constants.AppName)
	case ctx.Remote == nil:
		ctx.Println("❌ Remote store configured but could not be opened (see the log for details)")
	default:
		endpoint := schemeOf(cfg.URL)
		if e, ok := ctx.Remote.(endpointer); ok {
			endpoint = e.Endpoint()
		}
		ctx.Printf("✓ Remote store: %s\n", endpoint)
		ctx.Printf("  Key source: %s\n", keySource(ctx.Config.RemoteKey))
	}
	ctx.Printf("  Supported schemes: %s\n", strings.Join(remote.Schemes(), ", "))

	if keyring.IsAvailable() {
		ctx.Println("✓ OS keyring is available")
		if _, err := keyring.GetAnonKey(); err == nil {
			ctx.Println("✓ Anon key is stored in keyring")
		} else if errors.Is(err, keyring.ErrNotFound) {
			ctx.Println("ℹ No anon key stored in keyring")
		}
	} else {
		ctx.Println("⚠ OS keyring is not available on this system")
	}
	return nil
}

func keySource(explicit string) string {
	if explicit != "" {
		return "flag or environment"
	}
	return "OS keyring"
}

func schemeOf(url string) string {
	if scheme, _, ok := strings.Cut(url, "://"); ok {
		return scheme + "://…"
	}
	return "(unrecognized URL)"
}

// RemoteSetKeyCmd stores the remote anon key in the OS keyring
type RemoteSetKeyCmd struct {
	Key string `arg:"" help:"Anon key (or database password) to store in the keyring."`
}

func (cmd *RemoteSetKeyCmd) Run(ctx *cli.Context) error {
	key := strings.TrimSpace(cmd.Key)
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if err := keyring.SetAnonKey(key); err != nil {
		return err
	}

	ctx.Println("✓ Anon key stored successfully in OS keyring")
	ctx.Printf("  It is used whenever %s is set and %s is not\n", constants.EnvRemoteURL, constants.EnvRemoteAnonKey)
	return nil
}

// RemoteClearKeyCmd removes the remote anon key from the OS keyring
type RemoteClearKeyCmd struct{}

func (cmd *RemoteClearKeyCmd) Run(ctx *cli.Context) error {
	err := keyring.DeleteAnonKey()
	if errors.Is(err, keyring.ErrNotFound) {
		return errors.New("no anon key found in keyring")
	}
	if err != nil {
		return fmt.Errorf("failed to clear anon key: %w", err)
	}

	ctx.Println("✓ Anon key deleted from OS keyring")
	return nil
}
