package tui

import (
	"errors"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/models"
	"github.com/julianstephens/vitrine/internal/utils"
)

type ClientFormModel struct {
	Nome        string
	Instagram   string
	Nicho       string
	TomDeVoz    string
	Objetivos   string
	Observacoes string
}

func clientFormFrom(c models.Client) *ClientFormModel {
	return &ClientFormModel{
		Nome:        c.Nome,
		Instagram:   c.Instagram,
		Nicho:       c.Nicho,
		TomDeVoz:    c.TomDeVoz,
		Objetivos:   c.Objetivos,
		Observacoes: c.Observacoes,
	}
}

func (f *ClientFormModel) Input() models.ClientInput {
	return models.ClientInput{
		Nome:        strings.TrimSpace(f.Nome),
		Instagram:   strings.TrimSpace(f.Instagram),
		Nicho:       f.Nicho,
		TomDeVoz:    f.TomDeVoz,
		Objetivos:   f.Objetivos,
		Observacoes: f.Observacoes,
	}
}

// Patch returns only the fields that differ from orig.
func (f *ClientFormModel) Patch(orig models.Client) models.ClientPatch {
	in := f.Input()
	var p models.ClientPatch
	p.Nome = changed(orig.Nome, in.Nome)
	p.Instagram = changed(orig.Instagram, in.Instagram)
	p.Nicho = changed(orig.Nicho, in.Nicho)
	p.TomDeVoz = changed(orig.TomDeVoz, in.TomDeVoz)
	p.Objetivos = changed(orig.Objetivos, in.Objetivos)
	p.Observacoes = changed(orig.Observacoes, in.Observacoes)
	return p
}

func changed[T comparable](old, cur T) *T {
	if old == cur {
		return nil
	}
	return &cur
}

// CardFormModel holds a card as editable text. Tags are comma separated;
// links ("label | url") and checklist items take one line each.
type CardFormModel struct {
	Titulo      string
	Tipo        string
	Pilar       string
	Status      string
	DateISO     string
	Time        string
	Responsavel string
	Copy        string
	Legenda     string
	Notas       string
	Tags        string
	Links       string
	Checklist   string
	IsBacklog   bool
	IsFavorite  bool
}

func cardFormFrom(c models.ContentCard) *CardFormModel {
	links := make([]string, 0, len(c.Links))
	for _, l := range c.Links {
		links = append(links, l.Label+" | "+l.URL)
	}
	items := make([]string, 0, len(c.Checklist))
	for _, item := range c.Checklist {
		items = append(items, item.Text)
	}
	return &CardFormModel{
		Titulo:      c.Titulo,
		Tipo:        c.Tipo,
		Pilar:       c.Pilar,
		Status:      c.Status,
		DateISO:     c.DateISO,
		Time:        c.TimeOpcional,
		Responsavel: c.Responsavel,
		Copy:        c.Copy,
		Legenda:     c.Legenda,
		Notas:       c.Notas,
		Tags:        strings.Join(c.Tags, ", "),
		Links:       strings.Join(links, "\n"),
		Checklist:   strings.Join(items, "\n"),
		IsBacklog:   c.IsBacklog,
		IsFavorite:  c.IsFavorite,
	}
}

// newCardForm prefills a form for a card created on date, or in the backlog
// when date is empty.
func newCardForm(date string) *CardFormModel {
	f := &CardFormModel{
		Titulo: constants.DefaultCardTitle,
		Tipo:   constants.DefaultCardType,
		Pilar:  constants.DefaultCardPillar,
		Status: constants.DefaultCardStatus,
	}
	if date == "" {
		f.Titulo = constants.BacklogCardTitle
		f.IsBacklog = true
	}
	f.DateISO = date
	return f
}

// Card returns orig with the form applied. Checklist items and links keep the
// id (and done flag) of the entry they match in orig.
func (f *CardFormModel) Card(orig models.ContentCard) models.ContentCard {
	c := orig.Clone()
	c.Titulo = strings.TrimSpace(f.Titulo)
	c.Tipo = f.Tipo
	c.Pilar = strings.TrimSpace(f.Pilar)
	c.Status = f.Status
	c.DateISO = strings.TrimSpace(f.DateISO)
	c.TimeOpcional = strings.TrimSpace(f.Time)
	c.Responsavel = strings.TrimSpace(f.Responsavel)
	c.Copy = f.Copy
	c.Legenda = f.Legenda
	c.Notas = f.Notas
	c.Tags = parseTags(f.Tags)
	c.Links = parseLinks(f.Links, orig.Links)
	c.Checklist = parseChecklist(f.Checklist, orig.Checklist)
	c.IsBacklog = f.IsBacklog
	c.IsFavorite = f.IsFavorite
	return c
}

// Draft returns the add-card input for the form.
func (f *CardFormModel) Draft(clientID string) models.CardDraft {
	c := f.Card(models.ContentCard{ClientID: clientID})
	return models.CardDraft{CardPatch: models.CardPatch{
		ClientID:     &c.ClientID,
		DateISO:      &c.DateISO,
		TimeOpcional: &c.TimeOpcional,
		Titulo:       &c.Titulo,
		Tipo:         &c.Tipo,
		Pilar:        &c.Pilar,
		Status:       &c.Status,
		Copy:         &c.Copy,
		Legenda:      &c.Legenda,
		Notas:        &c.Notas,
		Links:        &c.Links,
		Checklist:    &c.Checklist,
		Tags:         &c.Tags,
		Responsavel:  &c.Responsavel,
		IsBacklog:    &c.IsBacklog,
		IsFavorite:   &c.IsFavorite,
	}}
}

// Patch returns only the fields the form changed relative to orig.
func (f *CardFormModel) Patch(orig models.ContentCard) models.CardPatch {
	c := f.Card(orig)
	p := models.CardPatch{
		DateISO:      changed(orig.DateISO, c.DateISO),
		TimeOpcional: changed(orig.TimeOpcional, c.TimeOpcional),
		Titulo:       changed(orig.Titulo, c.Titulo),
		Tipo:         changed(orig.Tipo, c.Tipo),
		Pilar:        changed(orig.Pilar, c.Pilar),
		Status:       changed(orig.Status, c.Status),
		Copy:         changed(orig.Copy, c.Copy),
		Legenda:      changed(orig.Legenda, c.Legenda),
		Notas:        changed(orig.Notas, c.Notas),
		Responsavel:  changed(orig.Responsavel, c.Responsavel),
		IsBacklog:    changed(orig.IsBacklog, c.IsBacklog),
		IsFavorite:   changed(orig.IsFavorite, c.IsFavorite),
	}
	if !slices.Equal(orig.Tags, c.Tags) {
		p.Tags = &c.Tags
	}
	if !slices.Equal(orig.Links, c.Links) {
		p.Links = &c.Links
	}
	if !slices.Equal(orig.Checklist, c.Checklist) {
		p.Checklist = &c.Checklist
	}
	return p
}

func parseTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func parseLinks(s string, existing []models.ContentLink) []models.ContentLink {
	used := make([]bool, len(existing))
	links := []models.ContentLink{}
	for _, line := range nonEmptyLines(s) {
		label, url, found := strings.Cut(line, "|")
		if !found {
			label, url = constants.DefaultLinkLabel, line
		}
		link := models.ContentLink{Label: strings.TrimSpace(label), URL: strings.TrimSpace(url)}
		if link.Label == "" {
			link.Label = constants.DefaultLinkLabel
		}
		for i, e := range existing {
			if !used[i] && e.Label == link.Label && e.URL == link.URL {
				used[i] = true
				link.ID = e.ID
				break
			}
		}
		if link.ID == "" {
			link.ID = uuid.NewString()
		}
		links = append(links, link)
	}
	return links
}

func parseChecklist(s string, existing []models.ChecklistItem) []models.ChecklistItem {
	used := make([]bool, len(existing))
	items := []models.ChecklistItem{}
	for _, line := range nonEmptyLines(s) {
		item := models.ChecklistItem{Text: line}
		for i, e := range existing {
			if !used[i] && e.Text == line {
				used[i] = true
				item.ID, item.Done = e.ID, e.Done
				break
			}
		}
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		items = append(items, item)
	}
	return items
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " cannot be empty")
		}
		return nil
	}
}

// NewClientForm creates a new form for adding or editing a client
func NewClientForm(fm *ClientFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Nome").
				Value(&fm.Nome).
				Validate(required("name")),
			huh.NewInput().
				Title("Instagram").
				Placeholder("@perfil").
				Value(&fm.Instagram),
			huh.NewInput().
				Title("Nicho").
				Value(&fm.Nicho),
			huh.NewInput().
				Title("Tom de voz").
				Value(&fm.TomDeVoz),
		),
		huh.NewGroup(
			huh.NewText().
				Title("Objetivos").
				Value(&fm.Objetivos),
			huh.NewText().
				Title("Observações").
				Value(&fm.Observacoes),
		),
	).WithTheme(huh.ThemeDracula())
}

func statusOptions(current string) []huh.Option[string] {
	opts := huh.NewOptions(constants.Statuses...)
	if current != "" && !slices.Contains(constants.Statuses, current) {
		opts = append(opts, huh.NewOption(current, current))
	}
	return opts
}

func typeOptions(current string) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(constants.CardTypes)+1)
	for _, t := range constants.CardTypes {
		opts = append(opts, huh.NewOption(constants.TypeIcons[t]+" "+t, t))
	}
	if current != "" && !slices.Contains(constants.CardTypes, current) {
		opts = append(opts, huh.NewOption(current, current))
	}
	return opts
}

// NewCardForm creates a new form for adding or editing a content card
func NewCardForm(fm *CardFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Título").
				Value(&fm.Titulo).
				Validate(required("title")),
			huh.NewSelect[string]().
				Title("Formato").
				Options(typeOptions(fm.Tipo)...).
				Value(&fm.Tipo),
			huh.NewInput().
				Title("Pilar").
				Value(&fm.Pilar),
			huh.NewSelect[string]().
				Title("Status").
				Options(statusOptions(fm.Status)...).
				Value(&fm.Status),
			huh.NewInput().
				Title("Data (YYYY-MM-DD)").
				Description("Empty for undated ideas").
				Value(&fm.DateISO).
				Validate(func(s string) error {
					if !utils.ValidateDate(strings.TrimSpace(s)) {
						return errors.New("invalid date, use YYYY-MM-DD")
					}
					return nil
				}),
			huh.NewInput().
				Title("Horário (HH:MM)").
				Value(&fm.Time).
				Validate(func(s string) error {
					if !utils.ValidateTimeFormat(strings.TrimSpace(s)) {
						return errors.New("invalid time format, use HH:MM")
					}
					return nil
				}),
			huh.NewInput().
				Title("Responsável").
				Value(&fm.Responsavel),
			huh.NewConfirm().
				Title("Backlog").
				Value(&fm.IsBacklog),
			huh.NewConfirm().
				Title("Favorito").
				Value(&fm.IsFavorite),
		),
		huh.NewGroup(
			huh.NewText().
				Title("Copy").
				Value(&fm.Copy),
			huh.NewText().
				Title("Legenda").
				Value(&fm.Legenda),
			huh.NewText().
				Title("Notas").
				Value(&fm.Notas),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Tags").
				Description("Comma separated").
				Value(&fm.Tags),
			huh.NewText().
				Title("Links").
				Description("One per line: label | url").
				Value(&fm.Links),
			huh.NewText().
				Title("Checklist").
				Description("One item per line").
				Value(&fm.Checklist),
		),
	).WithTheme(huh.ThemeDracula())
}
