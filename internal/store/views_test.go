package store

import (
	"testing"
)

func TestViews(t *testing.T) {
	st := sampleState()
	today := testNow.Format("2006-01-02")

	if got := ClientCards(st.Cards, "client-1"); len(got) != 2 {
		t.Errorf("ClientCards() = %d, want 2", len(got))
	}
	on := CardsOn(st.Cards, today)
	if len(on) != 2 || on[0].ID != "card-1" || on[1].ID != "card-3" {
		t.Errorf("CardsOn() = %+v", on)
	}
	st.Cards[1].DateISO = today
	if got := CardsOn(st.Cards, today); len(got) != 2 {
		t.Error("CardsOn() should exclude backlog cards even when dated")
	}
	if got := Backlog(st.Cards); len(got) != 1 || got[0].ID != "card-2" {
		t.Errorf("Backlog() = %+v", got)
	}
	if got := Favorites(st.Cards); got == nil || len(got) != 0 {
		t.Errorf("Favorites() = %#v, want empty", got)
	}
	if counts := CountByClient(st.Cards); counts["client-1"] != 2 || counts["client-2"] != 1 {
		t.Errorf("CountByClient() = %v", counts)
	}
}

func TestSearchClients(t *testing.T) {
	clients := sampleState().Clients

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"client-1", "client-2"}},
		{"padaria", []string{"client-1"}},
		{"FORTE", []string{"client-2"}},
		{"@padariasol", []string{"client-1"}},
		{"  sol ", []string{"client-1"}},
		{"nada", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := SearchClients(clients, tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("SearchClients(%q) = %d clients, want %d", tt.query, len(got), len(tt.want))
			}
			for i, c := range got {
				if c.ID != tt.want[i] {
					t.Errorf("SearchClients(%q)[%d] = %s, want %s", tt.query, i, c.ID, tt.want[i])
				}
			}
		})
	}
}

func TestCurrentClient(t *testing.T) {
	st := State{Clients: sampleState().Clients}

	if _, ok := st.CurrentClient(); ok {
		t.Error("CurrentClient() with no selection should be false")
	}
	st.CurrentClientID = "client-2"
	if c, ok := st.CurrentClient(); !ok || c.Nome != "Academia Forte" {
		t.Errorf("CurrentClient() = %+v, %v", c, ok)
	}
	st.CurrentClientID = "gone"
	if _, ok := st.CurrentClient(); ok {
		t.Error("CurrentClient() for a missing id should be false")
	}
}

func TestIDSourceMonotonic(t *testing.T) {
	g := newIDSource(fixedClock)

	a := g.next("card", nil)
	b := g.next("card", nil)
	c := g.next("client", nil)
	if a != "card-1709555400000" || b != "card-1709555400001" {
		t.Errorf("ids = %s, %s", a, b)
	}
	if c != "client-1709555400000" {
		t.Errorf("prefixes should count separately, got %s", c)
	}
}
