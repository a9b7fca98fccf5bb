package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/vitrine/internal/cli"
	"github.com/julianstephens/vitrine/internal/cli/backups"
	"github.com/julianstephens/vitrine/internal/cli/captions"
	"github.com/julianstephens/vitrine/internal/cli/cards"
	"github.com/julianstephens/vitrine/internal/cli/clients"
	"github.com/julianstephens/vitrine/internal/cli/system"
	"github.com/julianstephens/vitrine/internal/config"
	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/errors"
	"github.com/julianstephens/vitrine/internal/logger"
	_ "github.com/julianstephens/vitrine/internal/remote/postgres"
	_ "github.com/julianstephens/vitrine/internal/remote/postgrest"
)

var CLI struct {
	config.Flags

	Version kong.VersionFlag `help:"Print the version and exit."`

	Tui      system.TuiCmd      `cmd:"" help:"Launch the interactive planner." default:"1"`
	Sync     system.SyncCmd     `cmd:"" help:"Replace local clients and cards with the remote copy."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Validate system.ValidateCmd `cmd:"" help:"Check clients and cards for conflicts."`
	Client   struct {
		Add    clients.ClientAddCmd    `cmd:"" help:"Add a client."`
		List   clients.ClientListCmd   `cmd:"" help:"List clients."`
		Edit   clients.ClientEditCmd   `cmd:"" help:"Edit a client."`
		Delete clients.ClientDeleteCmd `cmd:"" help:"Delete a client and its cards."`
		Use    clients.ClientUseCmd    `cmd:"" help:"Select the current client."`
	} `cmd:"" help:"Manage clients."`
	Card struct {
		Add       cards.CardAddCmd       `cmd:"" help:"Add a content card."`
		Edit      cards.CardEditCmd      `cmd:"" help:"Edit a content card."`
		Delete    cards.CardDeleteCmd    `cmd:"" help:"Delete a content card."`
		Duplicate cards.CardDuplicateCmd `cmd:"" help:"Duplicate a content card."`
		List      cards.CardListCmd      `cmd:"" help:"List content cards." default:"1"`
	} `cmd:"" help:"Manage content cards."`
	Caption struct {
		Suggest captions.CaptionSuggestCmd `cmd:"" help:"Suggest an Instagram caption for a card."`
	} `cmd:"" help:"Generate captions."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage snapshot backups."`
	Remote struct {
		Status   system.RemoteStatusCmd   `cmd:"" help:"Show the remote store configuration." default:"1"`
		SetKey   system.RemoteSetKeyCmd   `cmd:"" help:"Store the remote anon key in the OS keyring."`
		ClearKey system.RemoteClearKeyCmd `cmd:"" help:"Remove the remote anon key from the OS keyring."`
	} `cmd:"" help:"Manage the remote store."`
}

func main() {
	if err := config.LoadEnv(config.EnvFiles...); err != nil {
		errors.Fatal(err)
	}

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Social media content planner"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		config.Vars(),
		kong.Configuration(config.JSONC, config.FilePaths()...),
	)

	errors.Fatal(run(ctx))
}

func run(ctx *kong.Context) error {
	if err := logger.Init(CLI.Logger()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx, err := cli.Open(runCtx, &CLI.Flags)
	if err != nil {
		return err
	}
	defer func() {
		if err := appCtx.Close(); err != nil {
			logger.Warn("failed to close cleanly", "error", err)
		}
	}()

	return ctx.Run(appCtx)
}
