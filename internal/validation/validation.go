package validation

import (
	"fmt"
	"strings"

	"github.com/julianstephens/vitrine/internal/models"
	"github.com/julianstephens/vitrine/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateClientID   ConflictType = "duplicate_client_id"
	ConflictDuplicateCardID     ConflictType = "duplicate_card_id"
	ConflictDuplicateClientName ConflictType = "duplicate_client_name"
	ConflictMissingClientName   ConflictType = "missing_client_name"
	ConflictOrphanCard          ConflictType = "orphan_card"
	ConflictInvalidDate         ConflictType = "invalid_date"
	ConflictInvalidTime         ConflictType = "invalid_time"
)

// Warning reports whether the conflict type is advisory: the data is
// consistent but probably not what the user meant.
func (t ConflictType) Warning() bool {
	return t == ConflictDuplicateClientName || t == ConflictMissingClientName
}

// Conflict represents a detected problem in a snapshot
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string   // YYYY-MM-DD format (if applicable)
	Items       []string // Client names or card titles involved
	ClientIDs   []string
	CardIDs     []string // IDs of cards involved (for auto-fixing)
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// FixAction represents an action taken during auto-fix
type FixAction struct {
	Action         string   // Human-readable description of the action
	SourceConflict Conflict // The conflict that triggered this fix action
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Errors returns the conflicts that are not warnings.
func (vr *ValidationResult) Errors() []Conflict {
	var errs []Conflict
	for _, c := range vr.Conflicts {
		if !c.Type.Warning() {
			errs = append(errs, c)
		}
	}
	return errs
}

// Count returns the conflicts of the given type.
func (vr *ValidationResult) Count(t ConflictType) int {
	n := 0
	for _, c := range vr.Conflicts {
		if c.Type == t {
			n++
		}
	}
	return n
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var report strings.Builder
	report.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&report, "- %s\n", conflict.Description)
	}
	return report.String()
}

// Validator checks planner snapshots for integrity problems
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateSnapshot reports duplicate ids, clients without a name or sharing
// one, cards whose client is gone and malformed dates or times. Backlog cards
// that keep a date are not a conflict.
func (v *Validator) ValidateSnapshot(st models.AppState) ValidationResult {
	var result ValidationResult
	result.Conflicts = append(result.Conflicts, v.ValidateClients(st.Clients).Conflicts...)
	result.Conflicts = append(result.Conflicts, v.ValidateCards(st.Cards, st.Clients).Conflicts...)
	return result
}

// ValidateClients checks clients on their own.
func (v *Validator) ValidateClients(clients []models.Client) ValidationResult {
	var result ValidationResult

	seen := make(map[string]bool, len(clients))
	byName := make(map[string][]models.Client)
	var names []string
	for _, c := range clients {
		if seen[c.ID] {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateClientID,
				Description: fmt.Sprintf("duplicate client id %q", c.ID),
				Items:       []string{c.Nome},
				ClientIDs:   []string{c.ID},
			})
			continue
		}
		seen[c.ID] = true

		name := strings.ToLower(strings.TrimSpace(c.Nome))
		if name == "" {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictMissingClientName,
				Description: fmt.Sprintf("client %q has no name", c.ID),
				ClientIDs:   []string{c.ID},
			})
			continue
		}
		if _, ok := byName[name]; !ok {
			names = append(names, name)
		}
		byName[name] = append(byName[name], c)
	}

	for _, name := range names {
		group := byName[name]
		if len(group) < 2 {
			continue
		}
		conflict := Conflict{
			Type:        ConflictDuplicateClientName,
			Description: fmt.Sprintf("%d clients are named %q", len(group), group[0].Nome),
		}
		for _, c := range group {
			conflict.Items = append(conflict.Items, c.Nome)
			conflict.ClientIDs = append(conflict.ClientIDs, c.ID)
		}
		result.Conflicts = append(result.Conflicts, conflict)
	}
	return result
}

// ValidateCards checks cards against the clients they belong to.
func (v *Validator) ValidateCards(cards []models.ContentCard, clients []models.Client) ValidationResult {
	var result ValidationResult

	known := make(map[string]bool, len(clients))
	for _, c := range clients {
		known[c.ID] = true
	}

	seen := make(map[string]bool, len(cards))
	for _, c := range cards {
		if seen[c.ID] {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateCardID,
				Description: fmt.Sprintf("duplicate card id %q", c.ID),
				Items:       []string{c.Titulo},
				CardIDs:     []string{c.ID},
			})
			continue
		}
		seen[c.ID] = true

		if !known[c.ClientID] {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictOrphanCard,
				Description: fmt.Sprintf("card %q references client %q that no longer exists", c.Titulo, c.ClientID),
				Items:       []string{c.Titulo},
				ClientIDs:   []string{c.ClientID},
				CardIDs:     []string{c.ID},
			})
		}
		if !utils.ValidateDate(c.DateISO) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDate,
				Description: fmt.Sprintf("card %q has invalid date %q", c.Titulo, c.DateISO),
				Date:        c.DateISO,
				Items:       []string{c.Titulo},
				CardIDs:     []string{c.ID},
			})
		}
		if !utils.ValidateTimeFormat(c.TimeOpcional) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidTime,
				Description: fmt.Sprintf("card %q has invalid time %q", c.Titulo, c.TimeOpcional),
				Date:        c.DateISO,
				Items:       []string{c.Titulo},
				CardIDs:     []string{c.ID},
			})
		}
	}
	return result
}

// AutoFixOrphanCards deletes the cards whose client no longer exists.
// Returns a slice of FixActions describing what was fixed
func AutoFixOrphanCards(conflicts []Conflict, deleteFunc func(id string) error) []FixAction {
	actions := []FixAction{}
	for _, conflict := range conflicts {
		if conflict.Type != ConflictOrphanCard {
			continue
		}
		for _, id := range conflict.CardIDs {
			if err := deleteFunc(id); err != nil {
				actions = append(actions, FixAction{
					Action:         fmt.Sprintf("Failed to delete orphan card %s: %v", id, err),
					SourceConflict: conflict,
				})
				continue
			}
			actions = append(actions, FixAction{
				Action:         fmt.Sprintf("Deleted orphan card %s (%s)", id, strings.Join(conflict.Items, ", ")),
				SourceConflict: conflict,
			})
		}
	}
	return actions
}

// AutoFixSchedule clears malformed dates and times. clearFunc receives the
// card id and the conflict type naming the field to clear.
func AutoFixSchedule(conflicts []Conflict, clearFunc func(id string, field ConflictType) error) []FixAction {
	actions := []FixAction{}
	for _, conflict := range conflicts {
		if conflict.Type != ConflictInvalidDate && conflict.Type != ConflictInvalidTime {
			continue
		}
		field := "date"
		if conflict.Type == ConflictInvalidTime {
			field = "time"
		}
		for _, id := range conflict.CardIDs {
			if err := clearFunc(id, conflict.Type); err != nil {
				actions = append(actions, FixAction{
					Action:         fmt.Sprintf("Failed to clear %s of card %s: %v", field, id, err),
					SourceConflict: conflict,
				})
				continue
			}
			actions = append(actions, FixAction{
				Action:         fmt.Sprintf("Cleared invalid %s of card %s", field, id),
				SourceConflict: conflict,
			})
		}
	}
	return actions
}
