package models

// DailyNote is kept for compatibility with the persisted snapshot format. No
// action reads or writes it.
type DailyNote struct {
	ClientID string `json:"clientId"`
	DateISO  string `json:"dateISO"`
	Notes    string `json:"notes"`
}

// AppState is the unit of persistence: exactly these three collections.
type AppState struct {
	Clients    []Client      `json:"clients"`
	Cards      []ContentCard `json:"cards"`
	DailyNotes []DailyNote   `json:"dailyNotes"`
}

// EmptyAppState returns a state with empty, non-nil collections.
func EmptyAppState() AppState {
	return AppState{
		Clients:    []Client{},
		Cards:      []ContentCard{},
		DailyNotes: []DailyNote{},
	}
}

// Normalize replaces nil collections with empty ones so that a decoded
// snapshot and an in-memory snapshot compare equal.
func (s AppState) Normalize() AppState {
	if s.Clients == nil {
		s.Clients = []Client{}
	}
	if s.Cards == nil {
		s.Cards = []ContentCard{}
	}
	if s.DailyNotes == nil {
		s.DailyNotes = []DailyNote{}
	}
	return s
}
