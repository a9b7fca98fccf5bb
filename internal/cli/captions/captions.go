package captions

import (
	"fmt"

	"github.com/julianstephens/vitrine/internal/caption"
	"github.com/julianstephens/vitrine/internal/cli"
	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/models"
)

type CaptionSuggestCmd struct {
	Card  string `arg:"" help:"Card ID."`
	Apply bool   `short:"a" help:"Save the suggestion as the card caption."`
}

func (c *CaptionSuggestCmd) Run(ctx *cli.Context) error {
	if !ctx.Captions.Available() {
		return fmt.Errorf("%w: set %s", caption.ErrNoProvider, constants.EnvCaptionKey)
	}
	card, err := ctx.Card(c.Card)
	if err != nil {
		return err
	}
	// A card whose client is gone still gets a caption, just without niche and tone.
	client, _ := ctx.Store.State().FindClient(card.ClientID)

	ctx.Printf("Generating caption for %q...\n\n", card.Titulo)
	text := ctx.Captions.GenerateCaption(ctx.Ctx, card.Titulo, card.Tipo, card.Pilar, client.Nicho, client.TomDeVoz)
	ctx.Println(text)

	if c.Apply {
		ctx.Store.UpdateCard(ctx.Ctx, card.ID, models.CardPatch{Legenda: &text})
		ctx.Println()
		ctx.Println("✓ Caption saved to card")
	}
	return nil
}
