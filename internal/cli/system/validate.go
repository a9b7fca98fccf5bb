package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/vitrine/internal/cli"
	apperrors "github.com/julianstephens/vitrine/internal/errors"
	"github.com/julianstephens/vitrine/internal/models"
	"github.com/julianstephens/vitrine/internal/validation"
)

// ErrConflicts is returned when conflicts remain after validation.
var ErrConflicts = errors.New("snapshot has unresolved conflicts")

type ValidateCmd struct {
	Fix bool `help:"Delete orphan cards and move cards with a bad date to the backlog."`
}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	validator := validation.New()
	result := validator.ValidateSnapshot(ctx.Store.State().Persisted())

	ctx.Printf("%s", result.FormatReport())
	if !result.HasConflicts() {
		return nil
	}

	if cmd.Fix {
		ctx.PerformAutomaticBackup()

		// Schedule fixes run before orphans are deleted.
		actions := validation.AutoFixSchedule(result.Conflicts, func(id string, field validation.ConflictType) error {
			if _, err := ctx.Card(id); err != nil {
				return err
			}
			empty := ""
			if field == validation.ConflictInvalidTime {
				ctx.Store.UpdateCard(ctx.Ctx, id, models.CardPatch{TimeOpcional: &empty})
				return nil
			}
			backlog := true
			ctx.Store.UpdateCard(ctx.Ctx, id, models.CardPatch{DateISO: &empty, TimeOpcional: &empty, IsBacklog: &backlog})
			return nil
		})
		actions = append(actions, validation.AutoFixOrphanCards(result.Conflicts, func(id string) error {
			// DeleteCard removes every card carrying the id, twins included.
			switch n := countCards(ctx.Store.State().Cards, id); {
			case n == 0:
				return apperrors.CardNotFound(id)
			case n > 1:
				return fmt.Errorf("%d cards share this id, resolve the duplicate first", n)
			}
			ctx.Store.DeleteCard(ctx.Ctx, id)
			return nil
		})...)

		ctx.Println()
		for _, a := range actions {
			ctx.Printf("🔧 %s\n", a.Action)
		}

		result = validator.ValidateSnapshot(ctx.Store.State().Persisted())
		ctx.Println()
		ctx.Printf("%s", result.FormatReport())
	}

	if len(result.Errors()) > 0 {
		return ErrConflicts
	}
	return nil
}

func countCards(cards []models.ContentCard, id string) int {
	n := 0
	for _, c := range cards {
		if c.ID == id {
			n++
		}
	}
	return n
}
