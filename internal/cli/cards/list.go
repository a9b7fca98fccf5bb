package cards

import (
	"fmt"
	"time"

	"github.com/julianstephens/vitrine/internal/cli"
	"github.com/julianstephens/vitrine/internal/models"
	"github.com/julianstephens/vitrine/internal/store"
	"github.com/julianstephens/vitrine/internal/utils"
)

type CardListCmd struct {
	Client    string `short:"c" help:"Client ID (defaults to the current client)."`
	Week      bool   `short:"w" help:"Show the week around --date." xor:"view"`
	Month     bool   `short:"m" help:"Show the month around --date." xor:"view"`
	Backlog   bool   `short:"b" help:"Show the backlog." xor:"view"`
	Favorites bool   `short:"f" help:"Show favorites." xor:"view"`
	Date      string `short:"d" help:"Anchor date (YYYY-MM-DD). Defaults to today."`
	ShowIDs   bool   `help:"Show card IDs." name:"show-ids"`
}

func (c *CardListCmd) Validate() error {
	if !utils.ValidateDate(c.Date) {
		return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", c.Date)
	}
	return nil
}

func (c *CardListCmd) Run(ctx *cli.Context) error {
	client, err := ctx.Client(c.Client)
	if err != nil {
		return err
	}
	cards := store.ClientCards(ctx.Store.State().Cards, client.ID)

	switch {
	case c.Backlog:
		return c.printFlat(ctx, "Backlog", store.Backlog(cards))
	case c.Favorites:
		return c.printFlat(ctx, "Favorites", store.Favorites(cards))
	}

	anchor, err := c.anchor(ctx)
	if err != nil {
		return err
	}
	if c.Month {
		return c.printMonth(ctx, client, cards, anchor)
	}
	if c.Week {
		return c.printWeek(ctx, client, cards, anchor)
	}

	// plain listing of every card of the client
	if len(cards) == 0 {
		ctx.Printf("No cards for %s\n", client.Nome)
		return nil
	}
	ctx.Printf("Cards for %s:\n", client.Nome)
	for _, card := range cards {
		where := card.DateISO
		switch card.Placement() {
		case models.PlacementBacklog:
			where = "backlog"
		case models.PlacementUndated:
			where = "undated"
		}
		ctx.Printf("  %-10s  %s\n", where, cli.FormatCard(card, c.ShowIDs))
	}
	return nil
}

func (c *CardListCmd) anchor(ctx *cli.Context) (time.Time, error) {
	date := c.Date
	if date == "" {
		date = ctx.Today()
	}
	return utils.ParseDateInLocation(date, ctx.Config.Location())
}

func (c *CardListCmd) printFlat(ctx *cli.Context, title string, cards []models.ContentCard) error {
	ctx.Printf("%s (%d):\n", title, len(cards))
	for _, card := range cards {
		ctx.Printf("  %s\n", cli.FormatCard(card, c.ShowIDs))
	}
	return nil
}

func (c *CardListCmd) printWeek(ctx *cli.Context, client models.Client, cards []models.ContentCard, anchor time.Time) error {
	days := utils.WeekDays(anchor)
	ctx.Printf("%s · week of %s\n", client.Nome, utils.ToISO(days[0]))
	for _, day := range days {
		iso := utils.ToISO(day)
		ctx.Printf("\n%s %s\n", utils.WeekdayLabel(day), iso)
		onDay := store.CardsOn(cards, iso)
		if len(onDay) == 0 {
			ctx.Println("  -")
		}
		for _, card := range onDay {
			ctx.Printf("  %s\n", cli.FormatCard(card, c.ShowIDs))
		}
	}
	return nil
}

func (c *CardListCmd) printMonth(ctx *cli.Context, client models.Client, cards []models.ContentCard, anchor time.Time) error {
	ctx.Printf("%s · %s\n", client.Nome, utils.MonthLabel(anchor))
	total := 0
	for _, cell := range utils.MonthGrid(anchor) {
		if !cell.Current {
			continue
		}
		iso := utils.ToISO(cell.Date)
		onDay := store.CardsOn(cards, iso)
		if len(onDay) == 0 {
			continue
		}
		ctx.Printf("\n%s %s\n", utils.WeekdayLabel(cell.Date), iso)
		for _, card := range onDay {
			ctx.Printf("  %s\n", cli.FormatCard(card, c.ShowIDs))
		}
		total += len(onDay)
	}
	if total == 0 {
		ctx.Println("No cards scheduled this month")
	}
	return nil
}
