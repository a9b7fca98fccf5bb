package captions

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/vitrine/internal/cache"
	"github.com/julianstephens/vitrine/internal/caption"
	"github.com/julianstephens/vitrine/internal/cli"
	"github.com/julianstephens/vitrine/internal/config"
	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/models"
)

type fakeGenerator struct {
	text   string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.text, f.err
}

func setupTestContext(t *testing.T, gen caption.Generator) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	flags := &config.Flags{ConfigDir: t.TempDir(), Cache: constants.CacheMemory, Timezone: "UTC", RemoteTimeout: time.Second}
	c, err := cache.Open(flags.Cache, flags.ConfigDir)
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	ctx := cli.New(context.Background(), flags, c, nil, gen)
	out := &bytes.Buffer{}
	ctx.Out = out
	t.Cleanup(func() { _ = ctx.Close() })
	return ctx, out
}

func seedCard(ctx *cli.Context) models.ContentCard {
	client := ctx.Store.AddClient(ctx.Ctx, models.ClientInput{Nome: "Padaria", Nicho: "Confeitaria", TomDeVoz: "Acolhedor"})
	return ctx.Store.AddCard(ctx.Ctx, models.CardDraft{CardPatch: models.CardPatch{
		ClientID: models.String(client.ID),
		Titulo:   models.String("Bolo de cenoura"),
	}})
}

func TestCaptionSuggestCmd_Apply(t *testing.T) {
	gen := &fakeGenerator{text: "  Hoje tem bolo! 🥕 #bolo  "}
	ctx, out := setupTestContext(t, gen)
	card := seedCard(ctx)

	if err := (&CaptionSuggestCmd{Card: card.ID, Apply: true}).Run(ctx); err != nil {
		t.Fatalf("caption suggest failed: %v", err)
	}

	if !strings.Contains(gen.prompt, "Confeitaria") || !strings.Contains(gen.prompt, "Acolhedor") {
		t.Errorf("prompt missing client details:\n%s", gen.prompt)
	}
	got, _ := ctx.Store.State().FindCard(card.ID)
	if got.Legenda != "Hoje tem bolo! 🥕 #bolo" {
		t.Errorf("Legenda = %q", got.Legenda)
	}
	if !strings.Contains(out.String(), "Caption saved") {
		t.Errorf("output = %q", out.String())
	}
}

func TestCaptionSuggestCmd_ProviderErrorFallsBack(t *testing.T) {
	ctx, out := setupTestContext(t, &fakeGenerator{err: errors.New("quota exceeded")})
	card := seedCard(ctx)

	if err := (&CaptionSuggestCmd{Card: card.ID}).Run(ctx); err != nil {
		t.Fatalf("caption suggest failed: %v", err)
	}
	if !strings.Contains(out.String(), constants.CaptionErrorFallback) {
		t.Errorf("output = %q", out.String())
	}
	got, _ := ctx.Store.State().FindCard(card.ID)
	if got.Legenda != "" {
		t.Error("caption should not be saved without --apply")
	}
}

func TestCaptionSuggestCmd_NoProvider(t *testing.T) {
	ctx, _ := setupTestContext(t, nil)
	card := seedCard(ctx)

	err := (&CaptionSuggestCmd{Card: card.ID}).Run(ctx)
	if !errors.Is(err, caption.ErrNoProvider) {
		t.Errorf("expected ErrNoProvider, got %v", err)
	}
}
