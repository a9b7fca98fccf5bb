package cards

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/vitrine/internal/cli"
	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/models"
	"github.com/julianstephens/vitrine/internal/utils"
)

func validateSchedule(date, clock *string) error {
	if date != nil && !utils.ValidateDate(*date) {
		return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", *date)
	}
	if clock != nil && !utils.ValidateTimeFormat(*clock) {
		return fmt.Errorf("invalid time %q (expected HH:MM)", *clock)
	}
	return nil
}

// parseLinks turns "label=url" (or a bare url) arguments into links with
// fresh ids.
func parseLinks(specs []string) ([]models.ContentLink, error) {
	links := make([]models.ContentLink, 0, len(specs))
	for _, spec := range specs {
		label, url, found := strings.Cut(spec, "=")
		if !found {
			label, url = constants.DefaultLinkLabel, spec
		}
		url = strings.TrimSpace(url)
		if url == "" {
			return nil, fmt.Errorf("link %q has no URL", spec)
		}
		links = append(links, models.ContentLink{ID: uuid.NewString(), Label: strings.TrimSpace(label), URL: url})
	}
	return links, nil
}

func newChecklist(texts []string) []models.ChecklistItem {
	items := make([]models.ChecklistItem, 0, len(texts))
	for _, text := range texts {
		items = append(items, models.ChecklistItem{ID: uuid.NewString(), Text: text})
	}
	return items
}

type CardAddCmd struct {
	Title     string   `arg:"" optional:"" help:"Card title."`
	Client    string   `short:"c" help:"Client ID (defaults to the current client)."`
	Date      string   `short:"d" help:"Publishing date (YYYY-MM-DD). Defaults to today unless --backlog is set."`
	Time      string   `short:"T" help:"Publishing time (HH:MM)."`
	Type      string   `short:"t" help:"Content format." enum:"Post,Reels,Carrossel,Story,Live,Shorts" default:"Post"`
	Pillar    string   `short:"p" help:"Content pillar." default:"${default_pillar}"`
	Status    string   `short:"s" help:"Workflow status." default:"${default_status}"`
	Backlog   bool     `short:"b" help:"Park the card in the backlog."`
	Favorite  bool     `short:"f" help:"Mark the card as a favorite."`
	Owner     string   `help:"Person responsible for the card."`
	Copy      string   `help:"Post copy."`
	Notes     string   `help:"Internal notes."`
	Tags      []string `help:"Tags (comma-separated)."`
	Links     []string `help:"Links as label=url." sep:"none"`
	Checklist []string `help:"Checklist items." sep:"none"`
	ShowID    bool     `help:"Print only the new card ID." name:"show-id"`
}

func (c *CardAddCmd) Validate() error {
	return validateSchedule(&c.Date, &c.Time)
}

func (c *CardAddCmd) Run(ctx *cli.Context) error {
	client, err := ctx.Client(c.Client)
	if err != nil {
		return err
	}

	title := strings.TrimSpace(c.Title)
	date := c.Date
	switch {
	case title == "" && c.Backlog:
		title = constants.BacklogCardTitle
	case title == "":
		title = constants.DefaultCardTitle
	}
	if date == "" && !c.Backlog {
		date = ctx.Today()
	}

	links, err := parseLinks(c.Links)
	if err != nil {
		return err
	}
	checklist := newChecklist(c.Checklist)
	tags := slices.Clone(c.Tags)
	if tags == nil {
		tags = []string{}
	}

	draft := models.CardDraft{CardPatch: models.CardPatch{
		ClientID:  &client.ID,
		DateISO:   &date,
		Titulo:    &title,
		Tipo:      &c.Type,
		Pilar:     &c.Pillar,
		Status:    &c.Status,
		Copy:      &c.Copy,
		Notas:     &c.Notes,
		Links:     &links,
		Checklist: &checklist,
		Tags:      &tags,
	}}
	if c.Time != "" {
		draft.TimeOpcional = &c.Time
	}
	if c.Owner != "" {
		draft.Responsavel = &c.Owner
	}
	if c.Backlog {
		draft.IsBacklog = models.Bool(true)
	}
	if c.Favorite {
		draft.IsFavorite = models.Bool(true)
	}

	card := ctx.Store.AddCard(ctx.Ctx, draft)
	if c.ShowID {
		ctx.Println(card.ID)
		return nil
	}
	ctx.Printf("✓ Card added for %s: %s\n", client.Nome, cli.FormatCard(card, true))
	return nil
}

type CardEditCmd struct {
	ID         string   `arg:"" help:"Card ID."`
	Client     *string  `short:"c" help:"Move the card to another client."`
	Date       *string  `short:"d" help:"New publishing date (YYYY-MM-DD, empty to clear)."`
	Time       *string  `short:"T" help:"New publishing time (HH:MM, empty to clear)."`
	Title      *string  `help:"New title."`
	Type       *string  `short:"t" help:"New content format."`
	Pillar     *string  `short:"p" help:"New content pillar."`
	Status     *string  `short:"s" help:"New workflow status."`
	NextStatus bool     `short:"n" help:"Advance the status to the next workflow step."`
	Copy       *string  `help:"New post copy."`
	Caption    *string  `help:"New caption."`
	Notes      *string  `help:"New internal notes."`
	Owner      *string  `help:"New person responsible."`
	Backlog    string   `help:"Park in (yes) or take out of (no) the backlog."`
	Favorite   string   `help:"Mark (yes) or unmark (no) as favorite."`
	Tags       []string `help:"Replace the tags."`
	AddLink    []string `help:"Append links as label=url." sep:"none"`
	AddCheck   []string `help:"Append checklist items." sep:"none"`
	Toggle     []int    `help:"Toggle checklist items by position (1-based)."`
}

func (c *CardEditCmd) Validate() error {
	if c.NextStatus && c.Status != nil {
		return errors.New("--status and --next-status cannot be combined")
	}
	if _, err := parseToggle("backlog", c.Backlog); err != nil {
		return err
	}
	if _, err := parseToggle("favorite", c.Favorite); err != nil {
		return err
	}
	return validateSchedule(c.Date, c.Time)
}

// parseToggle maps "yes"/"no" to a patch value; empty leaves the field alone.
func parseToggle(flag, v string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return nil, nil
	case "yes", "y", "true", "on":
		return models.Bool(true), nil
	case "no", "n", "false", "off":
		return models.Bool(false), nil
	default:
		return nil, fmt.Errorf("--%s must be yes or no, got %q", flag, v)
	}
}

func (c *CardEditCmd) Run(ctx *cli.Context) error {
	card, err := ctx.Card(c.ID)
	if err != nil {
		return err
	}
	if c.Client != nil {
		if _, err := ctx.Client(*c.Client); err != nil {
			return err
		}
	}

	patch := models.CardPatch{
		ClientID:     c.Client,
		DateISO:      c.Date,
		TimeOpcional: c.Time,
		Titulo:       c.Title,
		Tipo:         c.Type,
		Pilar:        c.Pillar,
		Status:       c.Status,
		Copy:         c.Copy,
		Legenda:      c.Caption,
		Notas:        c.Notes,
		Responsavel:  c.Owner,
	}
	if patch.IsBacklog, err = parseToggle("backlog", c.Backlog); err != nil {
		return err
	}
	if patch.IsFavorite, err = parseToggle("favorite", c.Favorite); err != nil {
		return err
	}
	if c.NextStatus {
		patch.Status = models.String(constants.NextStatus(card.Status))
	}
	if c.Tags != nil {
		tags := slices.Clone(c.Tags)
		patch.Tags = &tags
	}
	if len(c.AddLink) > 0 {
		added, err := parseLinks(c.AddLink)
		if err != nil {
			return err
		}
		links := append(slices.Clone(card.Links), added...)
		patch.Links = &links
	}
	if len(c.AddCheck) > 0 || len(c.Toggle) > 0 {
		checklist := append(slices.Clone(card.Checklist), newChecklist(c.AddCheck)...)
		for _, pos := range c.Toggle {
			if pos < 1 || pos > len(checklist) {
				return fmt.Errorf("checklist item %d out of range (1-%d)", pos, len(checklist))
			}
			checklist[pos-1].Done = !checklist[pos-1].Done
		}
		patch.Checklist = &checklist
	}

	if patch.IsEmpty() {
		return errors.New("nothing to update: pass at least one field")
	}

	ctx.Store.UpdateCard(ctx.Ctx, card.ID, patch)
	updated, _ := ctx.Store.State().FindCard(card.ID)
	ctx.Printf("✓ Card updated: %s\n", cli.FormatCard(updated, true))
	return nil
}

type CardDeleteCmd struct {
	ID  string `arg:"" help:"Card ID."`
	Yes bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *CardDeleteCmd) Run(ctx *cli.Context) error {
	card, err := ctx.Card(c.ID)
	if err != nil {
		return err
	}
	if !c.Yes {
		ok, err := ctx.Confirm(fmt.Sprintf("Delete %q?", card.Titulo))
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}
	ctx.Store.DeleteCard(ctx.Ctx, card.ID)
	ctx.Printf("✓ Card deleted: %s\n", card.Titulo)
	return nil
}

type CardDuplicateCmd struct {
	ID string `arg:"" help:"Card ID."`
}

func (c *CardDuplicateCmd) Run(ctx *cli.Context) error {
	card, ok := ctx.Store.DuplicateCard(ctx.Ctx, c.ID)
	if !ok {
		_, err := ctx.Card(c.ID)
		return err
	}
	ctx.Printf("✓ Card duplicated: %s\n", cli.FormatCard(card, true))
	return nil
}
