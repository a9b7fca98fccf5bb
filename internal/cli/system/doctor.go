package system

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/vitrine/internal/cli"
	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/models"
	"github.com/julianstephens/vitrine/internal/utils"
	"github.com/julianstephens/vitrine/internal/validation"
)

// ErrChecksFailed is returned when at least one diagnostic fails.
var ErrChecksFailed = errors.New("one or more health checks failed")

type DoctorCmd struct {
	Offline bool `help:"Skip the remote store check."`
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	fail := func(name string, err error) {
		ctx.Printf("❌ %s: FAIL\n", name)
		ctx.Printf("   Error: %v\n", err)
		hasError = true
	}

	// Check 1: cache readable
	var snapshot *models.AppState
	data, found, err := ctx.Cache.Raw()
	switch {
	case err != nil:
		fail("Local cache readable", err)
	case !found:
		ctx.Printf("✓ Local cache readable: OK (empty, %s)\n", ctx.Cache.Location())
	default:
		var st models.AppState
		if err := json.Unmarshal(data, &st); err != nil {
			fail("Local cache readable", fmt.Errorf("snapshot is not valid JSON: %w", err))
		} else {
			ctx.Printf("✓ Local cache readable: OK (%s)\n", ctx.Cache.Location())
			snapshot = &st
		}
	}

	// Check 2: snapshot integrity (only if the snapshot decoded)
	if snapshot != nil {
		warnings, err := checkSnapshot(*snapshot)
		switch {
		case err != nil:
			fail("Data integrity", err)
		case len(warnings) > 0:
			ctx.Printf("⚠ Data integrity: WARNING (%d clients, %d cards)\n", len(snapshot.Clients), len(snapshot.Cards))
			for _, w := range warnings {
				ctx.Printf("   %s\n", w)
			}
		default:
			ctx.Printf("✓ Data integrity: OK (%d clients, %d cards)\n", len(snapshot.Clients), len(snapshot.Cards))
		}
	} else {
		ctx.Printf("⊘ Data integrity: SKIPPED (no snapshot)\n")
	}

	// Check 3: backups present (warning only)
	if err := checkBackupsPresent(ctx); err != nil {
		ctx.Printf("⚠ Backups present: WARNING\n")
		ctx.Printf("   %v\n", err)
	} else {
		ctx.Printf("✓ Backups present: OK\n")
	}

	// Check 4: remote reachable
	switch {
	case ctx.Remote == nil:
		ctx.Printf("⊘ Remote store: SKIPPED (local-only)\n")
	case cmd.Offline:
		ctx.Printf("⊘ Remote store: SKIPPED (--offline)\n")
	default:
		if err := checkRemote(ctx); err != nil {
			fail("Remote store", err)
		} else {
			ctx.Printf("✓ Remote store: OK\n")
		}
	}

	// Check 5: caption provider (warning only)
	if ctx.Captions.Available() {
		ctx.Printf("✓ Caption provider: OK (%s)\n", ctx.Config.CaptionModel)
	} else {
		ctx.Printf("⚠ Caption provider: WARNING\n")
		ctx.Printf("   not configured - set %s to enable caption suggestions\n", constants.EnvCaptionKey)
	}

	// Check 6: clock/timezone sanity
	if err := checkClockTimezone(ctx.Config.Timezone); err != nil {
		fail("Clock/timezone", err)
	} else {
		ctx.Printf("✓ Clock/timezone: OK\n")
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return ErrChecksFailed
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

// checkSnapshot validates the snapshot. Advisory conflicts come back as
// warnings; everything else fails the check.
func checkSnapshot(st models.AppState) ([]string, error) {
	result := validation.New().ValidateSnapshot(st)

	var warnings, errs []string
	for _, c := range result.Conflicts {
		if c.Type.Warning() {
			warnings = append(warnings, c.Description)
		} else {
			errs = append(errs, c.Description)
		}
	}
	if len(errs) > 0 {
		return warnings, fmt.Errorf("%s (run '%s validate --fix' to repair)", strings.Join(errs, "; "), constants.AppName)
	}
	return warnings, nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	backups, err := ctx.Backups.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with '%s backup create'", constants.AppName)
	}

	return nil
}

func checkRemote(ctx *cli.Context) error {
	c, cancel := context.WithTimeout(ctx.Ctx, ctx.Config.RemoteTimeout)
	defer cancel()
	if _, err := ctx.Remote.Clients().SelectAll(c, "nome"); err != nil {
		return err
	}
	_, err := ctx.Remote.Cards().SelectAll(c, "")
	return err
}

func checkClockTimezone(timezone string) error {
	// Check if system time is reasonable
	now := time.Now()

	// Check if time is in a reasonable range (after 2020 and before 2100)
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	if _, err := utils.TodayISO(timezone); err != nil {
		return err
	}
	return nil
}
