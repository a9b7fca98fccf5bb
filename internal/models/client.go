package models

// Client is an agency customer whose content is planned in the workspace.
type Client struct {
	ID          string `json:"id"`
	Nome        string `json:"nome"`
	Instagram   string `json:"instagram"`
	Nicho       string `json:"nicho"`
	TomDeVoz    string `json:"tomDeVoz"`
	Objetivos   string `json:"objetivos"`
	Observacoes string `json:"observacoes"`
	CreatedAt   string `json:"createdAt"` // ISO-8601 UTC, immutable after creation
}

// ClientInput holds the display fields supplied when a client is created.
type ClientInput struct {
	Nome        string `json:"nome"`
	Instagram   string `json:"instagram"`
	Nicho       string `json:"nicho"`
	TomDeVoz    string `json:"tomDeVoz"`
	Objetivos   string `json:"objetivos"`
	Observacoes string `json:"observacoes"`
}

// ClientPatch is a partial update. Nil fields are left untouched.
type ClientPatch struct {
	Nome        *string `json:"nome,omitempty"`
	Instagram   *string `json:"instagram,omitempty"`
	Nicho       *string `json:"nicho,omitempty"`
	TomDeVoz    *string `json:"tomDeVoz,omitempty"`
	Objetivos   *string `json:"objetivos,omitempty"`
	Observacoes *string `json:"observacoes,omitempty"`
}

// NewClient builds a client from input with the given identity.
func NewClient(id, createdAt string, in ClientInput) Client {
	return Client{
		ID:          id,
		Nome:        in.Nome,
		Instagram:   in.Instagram,
		Nicho:       in.Nicho,
		TomDeVoz:    in.TomDeVoz,
		Objetivos:   in.Objetivos,
		Observacoes: in.Observacoes,
		CreatedAt:   createdAt,
	}
}

// Apply returns c with every non-nil field of p merged over it.
func (c Client) Apply(p ClientPatch) Client {
	setString(&c.Nome, p.Nome)
	setString(&c.Instagram, p.Instagram)
	setString(&c.Nicho, p.Nicho)
	setString(&c.TomDeVoz, p.TomDeVoz)
	setString(&c.Objetivos, p.Objetivos)
	setString(&c.Observacoes, p.Observacoes)
	return c
}

// IsEmpty reports whether the patch carries no fields.
func (p ClientPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// Fields returns the patched fields keyed by their JSON names.
func (p ClientPatch) Fields() map[string]any {
	fields := make(map[string]any)
	putString(fields, "nome", p.Nome)
	putString(fields, "instagram", p.Instagram)
	putString(fields, "nicho", p.Nicho)
	putString(fields, "tomDeVoz", p.TomDeVoz)
	putString(fields, "objetivos", p.Objetivos)
	putString(fields, "observacoes", p.Observacoes)
	return fields
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func putString(m map[string]any, key string, v *string) {
	if v != nil {
		m[key] = *v
	}
}

func putBool(m map[string]any, key string, v *bool) {
	if v != nil {
		m[key] = *v
	}
}

// String returns a pointer to s, for building patches.
func String(s string) *string { return &s }

// Bool returns a pointer to b, for building patches.
func Bool(b bool) *bool { return &b }
