package clients

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/vitrine/internal/cli"
	"github.com/julianstephens/vitrine/internal/models"
	"github.com/julianstephens/vitrine/internal/store"
)

type ClientAddCmd struct {
	Nome        string `arg:"" help:"Client name."`
	Instagram   string `short:"i" help:"Instagram handle."`
	Nicho       string `short:"n" help:"Business niche."`
	TomDeVoz    string `name:"tone" short:"t" help:"Tone of voice."`
	Objetivos   string `name:"goals" help:"Content goals."`
	Observacoes string `name:"notes" help:"Free-form notes."`
	Use         bool   `short:"u" help:"Select the new client as current."`
}

func (c *ClientAddCmd) Validate() error {
	if strings.TrimSpace(c.Nome) == "" {
		return errors.New("client name cannot be empty")
	}
	return nil
}

func (c *ClientAddCmd) Run(ctx *cli.Context) error {
	client := ctx.Store.AddClient(ctx.Ctx, models.ClientInput{
		Nome:        strings.TrimSpace(c.Nome),
		Instagram:   c.Instagram,
		Nicho:       c.Nicho,
		TomDeVoz:    c.TomDeVoz,
		Objetivos:   c.Objetivos,
		Observacoes: c.Observacoes,
	})
	if c.Use {
		ctx.Store.SetCurrentClientID(ctx.Ctx, client.ID)
	}
	ctx.Printf("✓ Client added: %s (ID: %s)\n", client.Nome, client.ID)
	return nil
}

type ClientListCmd struct {
	Search  string `short:"s" help:"Filter by name or Instagram handle."`
	ShowIDs bool   `help:"Show client IDs." name:"show-ids"`
}

func (c *ClientListCmd) Run(ctx *cli.Context) error {
	st := ctx.Store.State()
	clients := store.SearchClients(st.Clients, c.Search)
	if len(clients) == 0 {
		if c.Search != "" {
			ctx.Printf("No clients match %q\n", c.Search)
		} else {
			ctx.Println("No clients found")
		}
		return nil
	}

	counts := store.CountByClient(st.Cards)
	ctx.Println("Clients:")
	for _, client := range clients {
		marker := " "
		if client.ID == st.CurrentClientID {
			marker = "*"
		}
		idStr := ""
		if c.ShowIDs {
			idStr = fmt.Sprintf(" (ID: %s)", client.ID)
		}
		handle := ""
		if client.Instagram != "" {
			handle = " " + client.Instagram
		}
		ctx.Printf(" %s %s%s%s - %d cards\n", marker, client.Nome, handle, idStr, counts[client.ID])
		if client.Nicho != "" {
			ctx.Printf("      Niche: %s\n", client.Nicho)
		}
	}
	return nil
}

type ClientEditCmd struct {
	ID          string  `arg:"" help:"Client ID."`
	Nome        *string `name:"name" help:"New name."`
	Instagram   *string `short:"i" help:"New Instagram handle."`
	Nicho       *string `short:"n" help:"New niche."`
	TomDeVoz    *string `name:"tone" short:"t" help:"New tone of voice."`
	Objetivos   *string `name:"goals" help:"New content goals."`
	Observacoes *string `name:"notes" help:"New notes."`
}

func (c *ClientEditCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.Client(c.ID); err != nil {
		return err
	}

	patch := models.ClientPatch{
		Nome:        c.Nome,
		Instagram:   c.Instagram,
		Nicho:       c.Nicho,
		TomDeVoz:    c.TomDeVoz,
		Objetivos:   c.Objetivos,
		Observacoes: c.Observacoes,
	}
	if patch.IsEmpty() {
		return errors.New("nothing to update: pass at least one field")
	}
	if patch.Nome != nil && strings.TrimSpace(*patch.Nome) == "" {
		return errors.New("client name cannot be empty")
	}

	ctx.Store.UpdateClient(ctx.Ctx, c.ID, patch)
	ctx.Printf("✓ Client updated: %s\n", c.ID)
	return nil
}

type ClientDeleteCmd struct {
	ID  string `arg:"" help:"Client ID."`
	Yes bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *ClientDeleteCmd) Run(ctx *cli.Context) error {
	client, err := ctx.Client(c.ID)
	if err != nil {
		return err
	}

	cards := len(store.ClientCards(ctx.Store.State().Cards, client.ID))
	if !c.Yes {
		ok, err := ctx.Confirm(fmt.Sprintf("Delete %s and its %d cards?", client.Nome, cards))
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}

	ctx.Store.DeleteClient(ctx.Ctx, client.ID)
	ctx.Printf("✓ Client deleted: %s (%d cards removed)\n", client.Nome, cards)
	return nil
}

type ClientUseCmd struct {
	ID string `arg:"" optional:"" help:"Client ID. Omit to clear the selection."`
}

func (c *ClientUseCmd) Run(ctx *cli.Context) error {
	if c.ID == "" {
		ctx.Store.SetCurrentClientID(ctx.Ctx, "")
		ctx.Println("✓ Selection cleared")
		return nil
	}
	client, err := ctx.Client(c.ID)
	if err != nil {
		return err
	}
	ctx.Store.SetCurrentClientID(ctx.Ctx, client.ID)
	ctx.Printf("✓ Current client: %s\n", client.Nome)
	return nil
}
