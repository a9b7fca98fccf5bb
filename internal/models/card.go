package models

// ContentLink is a reference attached to a card. Order is meaningful.
type ContentLink struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// ChecklistItem is a single production step of a card.
type ChecklistItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// ContentCard is one planned piece of social-media content. A card sits on the
// calendar when DateISO is set and IsBacklog is false, or in the backlog when
// IsBacklog is true. The two are not enforced as mutually exclusive.
type ContentCard struct {
	ID           string          `json:"id"`
	ClientID     string          `json:"clientId"`
	DateISO      string          `json:"dateISO"` // YYYY-MM-DD, empty for undated backlog items
	TimeOpcional string          `json:"timeOpcional,omitempty"`
	Titulo       string          `json:"titulo"`
	Tipo         string          `json:"tipo"`
	Pilar        string          `json:"pilar"`
	Status       string          `json:"status"`
	Copy         string          `json:"copy"`
	Legenda      string          `json:"legenda"`
	Notas        string          `json:"notas"`
	Links        []ContentLink   `json:"links"`
	Checklist    []ChecklistItem `json:"checklist"`
	Tags         []string        `json:"tags"`
	Responsavel  string          `json:"responsavel,omitempty"`
	IsBacklog    bool            `json:"isBacklog"`
	IsFavorite   bool            `json:"isFavorite"`
}

// Placement describes where a card is shown.
type Placement string

const (
	PlacementCalendar Placement = "calendar"
	PlacementBacklog  Placement = "backlog"
	PlacementUndated  Placement = "undated"
)

// Placement reports whether the card is shown on the calendar, in the backlog,
// or nowhere (no date and not parked).
func (c ContentCard) Placement() Placement {
	switch {
	case c.IsBacklog:
		return PlacementBacklog
	case c.DateISO != "":
		return PlacementCalendar
	default:
		return PlacementUndated
	}
}

// Clone returns a copy of c that shares no slices with it.
func (c ContentCard) Clone() ContentCard {
	if c.Links != nil {
		c.Links = append([]ContentLink{}, c.Links...)
	}
	if c.Checklist != nil {
		c.Checklist = append([]ChecklistItem{}, c.Checklist...)
	}
	if c.Tags != nil {
		c.Tags = append([]string{}, c.Tags...)
	}
	return c
}

// CardPatch is a partial card update. Nil fields are left untouched; a non-nil
// slice replaces the whole collection.
type CardPatch struct {
	ClientID     *string          `json:"clientId,omitempty"`
	DateISO      *string          `json:"dateISO,omitempty"`
	TimeOpcional *string          `json:"timeOpcional,omitempty"`
	Titulo       *string          `json:"titulo,omitempty"`
	Tipo         *string          `json:"tipo,omitempty"`
	Pilar        *string          `json:"pilar,omitempty"`
	Status       *string          `json:"status,omitempty"`
	Copy         *string          `json:"copy,omitempty"`
	Legenda      *string          `json:"legenda,omitempty"`
	Notas        *string          `json:"notas,omitempty"`
	Links        *[]ContentLink   `json:"links,omitempty"`
	Checklist    *[]ChecklistItem `json:"checklist,omitempty"`
	Tags         *[]string        `json:"tags,omitempty"`
	Responsavel  *string          `json:"responsavel,omitempty"`
	IsBacklog    *bool            `json:"isBacklog,omitempty"`
	IsFavorite   *bool            `json:"isFavorite,omitempty"`
}

// CardDraft is the input of the add action. A non-empty ID replaces the
// generated one, so callers may pre-assign ids for optimistic UI keys.
type CardDraft struct {
	ID string `json:"id,omitempty"`
	CardPatch
}

// Apply returns c with every non-nil field of p merged over it. Collections are
// copied so the result never aliases the patch.
func (c ContentCard) Apply(p CardPatch) ContentCard {
	setString(&c.ClientID, p.ClientID)
	setString(&c.DateISO, p.DateISO)
	setString(&c.TimeOpcional, p.TimeOpcional)
	setString(&c.Titulo, p.Titulo)
	setString(&c.Tipo, p.Tipo)
	setString(&c.Pilar, p.Pilar)
	setString(&c.Status, p.Status)
	setString(&c.Copy, p.Copy)
	setString(&c.Legenda, p.Legenda)
	setString(&c.Notas, p.Notas)
	setString(&c.Responsavel, p.Responsavel)
	setBool(&c.IsBacklog, p.IsBacklog)
	setBool(&c.IsFavorite, p.IsFavorite)
	if p.Links != nil {
		c.Links = append([]ContentLink{}, (*p.Links)...)
	}
	if p.Checklist != nil {
		c.Checklist = append([]ChecklistItem{}, (*p.Checklist)...)
	}
	if p.Tags != nil {
		c.Tags = append([]string{}, (*p.Tags)...)
	}
	return c
}

// IsEmpty reports whether the patch carries no fields.
func (p CardPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// Fields returns the patched fields keyed by their JSON names.
func (p CardPatch) Fields() map[string]any {
	fields := make(map[string]any)
	putString(fields, "clientId", p.ClientID)
	putString(fields, "dateISO", p.DateISO)
	putString(fields, "timeOpcional", p.TimeOpcional)
	putString(fields, "titulo", p.Titulo)
	putString(fields, "tipo", p.Tipo)
	putString(fields, "pilar", p.Pilar)
	putString(fields, "status", p.Status)
	putString(fields, "copy", p.Copy)
	putString(fields, "legenda", p.Legenda)
	putString(fields, "notas", p.Notas)
	putString(fields, "responsavel", p.Responsavel)
	putBool(fields, "isBacklog", p.IsBacklog)
	putBool(fields, "isFavorite", p.IsFavorite)
	if p.Links != nil {
		fields["links"] = *p.Links
	}
	if p.Checklist != nil {
		fields["checklist"] = *p.Checklist
	}
	if p.Tags != nil {
		fields["tags"] = *p.Tags
	}
	return fields
}
