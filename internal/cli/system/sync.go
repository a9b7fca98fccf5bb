package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/vitrine/internal/cli"
	"github.com/julianstephens/vitrine/internal/constants"
)

// ErrSyncFailed is returned when the remote read fails. Local data is kept.
var ErrSyncFailed = errors.New("initial load from the remote store failed; local data was kept (see the log for details)")

// SyncCmd replaces the local clients and cards with the remote ones.
type SyncCmd struct{}

func (cmd *SyncCmd) Run(ctx *cli.Context) error {
	if !ctx.Store.Remote() {
		return fmt.Errorf("remote store not configured: set %s and %s", constants.EnvRemoteURL, constants.EnvRemoteAnonKey)
	}

	ctx.Println("Loading clients and cards from the remote store...")
	if !ctx.Store.LoadInitialData(ctx.Ctx) {
		return ErrSyncFailed
	}

	st := ctx.Store.State()
	ctx.Printf("✓ Synced %d clients and %d cards\n", len(st.Clients), len(st.Cards))
	return nil
}
