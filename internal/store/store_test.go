package store

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/vitrine/internal/cache"
	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/models"
	"github.com/julianstephens/vitrine/internal/remote"
	"github.com/julianstephens/vitrine/internal/remote/remotetest"
	"github.com/julianstephens/vitrine/internal/storage"
)

var testNow = time.Date(2024, 3, 4, 12, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func setupTestStore(t *testing.T, seed *models.AppState, withRemote bool) (*Store, *cache.Cache, *remotetest.Adapter) {
	t.Helper()

	c := cache.New(storage.NewMemory())
	if seed != nil {
		c.Save(*seed)
	}

	opts := Options{Cache: c, Now: fixedClock}
	var fake *remotetest.Adapter
	if withRemote {
		fake = remotetest.New()
		opts.Remote = fake
	}

	s := New(opts)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Close(ctx)
	})
	return s, c, fake
}

func sampleState() models.AppState {
	today := testNow.Format(constants.DateFormat)
	return models.AppState{
		Clients: []models.Client{
			{ID: "client-1", Nome: "Padaria Sol", Instagram: "@padariasol", Nicho: "Alimentação", TomDeVoz: "Acolhedor", CreatedAt: "2024-01-01T00:00:00.000Z"},
			{ID: "client-2", Nome: "Academia Forte", Instagram: "@forte", CreatedAt: "2024-01-02T00:00:00.000Z"},
		},
		Cards: []models.ContentCard{
			{
				ID:        "card-1",
				ClientID:  "client-1",
				DateISO:   today,
				Titulo:    "Pão de queijo",
				Tipo:      "Reels",
				Pilar:     "Produto",
				Status:    constants.StatusTodo,
				Copy:      "copy",
				Links:     []models.ContentLink{{ID: "l1", Label: "Link", URL: "https://example.com"}},
				Checklist: []models.ChecklistItem{{ID: "c1", Text: "gravar"}},
				Tags:      []string{"produto"},
			},
			{
				ID:        "card-2",
				ClientID:  "client-1",
				Titulo:    "Ideia",
				Tipo:      "Post",
				Pilar:     "Geral",
				Status:    constants.StatusTodo,
				Links:     []models.ContentLink{},
				Checklist: []models.ChecklistItem{},
				Tags:      []string{},
				IsBacklog: true,
			},
			{
				ID:        "card-3",
				ClientID:  "client-2",
				DateISO:   today,
				Titulo:    "Treino",
				Tipo:      "Story",
				Pilar:     "Dicas",
				Status:    constants.StatusInProgress,
				Links:     []models.ContentLink{},
				Checklist: []models.ChecklistItem{},
				Tags:      []string{},
			},
		},
		DailyNotes: []models.DailyNote{{ClientID: "client-1", DateISO: today, Notes: "ligar"}},
	}
}

func assertPersisted(t *testing.T, s *Store, c *cache.Cache) {
	t.Helper()
	got := c.Load()
	want := s.State().Persisted()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("cache does not match snapshot\n got: %+v\nwant: %+v", got, want)
	}
}

func TestNewLoadsCache(t *testing.T) {
	seed := sampleState()
	s, _, _ := setupTestStore(t, &seed, false)

	st := s.State()
	if !reflect.DeepEqual(st.Persisted(), seed) {
		t.Errorf("initial state = %+v, want cached %+v", st.Persisted(), seed)
	}
	if st.CurrentClientID != "" || st.IsLoading {
		t.Errorf("ui fields = %q/%v, want empty/false", st.CurrentClientID, st.IsLoading)
	}
}

func TestNewWithoutCache(t *testing.T) {
	s := New(Options{})
	st := s.State()
	if st.Clients == nil || st.Cards == nil || st.DailyNotes == nil {
		t.Errorf("collections should be empty, not nil: %+v", st)
	}
	s.AddClient(context.Background(), models.ClientInput{Nome: "X"})
	if len(s.State().Clients) != 1 {
		t.Error("AddClient() without cache should still commit")
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	seed := sampleState()
	s, c, _ := setupTestStore(t, &seed, false)
	ctx := context.Background()

	steps := []struct {
		name string
		run  func()
	}{
		{"add client", func() { s.AddClient(ctx, models.ClientInput{Nome: "Nova", Instagram: "@nova"}) }},
		{"update client", func() { s.UpdateClient(ctx, "client-2", models.ClientPatch{Nicho: models.String("Fitness")}) }},
		{"select client", func() { s.SetCurrentClientID(ctx, "client-1") }},
		{"add card", func() { s.AddCard(ctx, models.CardDraft{CardPatch: models.CardPatch{ClientID: models.String("client-1")}}) }},
		{"update card", func() { s.UpdateCard(ctx, "card-3", models.CardPatch{Tags: &[]string{"a", "b"}}) }},
		{"duplicate card", func() { s.DuplicateCard(ctx, "card-1") }},
		{"delete card", func() { s.DeleteCard(ctx, "card-2") }},
		{"delete client", func() { s.DeleteClient(ctx, "client-2") }},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			step.run()
			assertPersisted(t, s, c)
		})
	}

	if got := c.Load().DailyNotes; !reflect.DeepEqual(got, seed.DailyNotes) {
		t.Errorf("daily notes = %+v, want them carried through", got)
	}
}

func TestSetCurrentClientIDNotifiesAndSaves(t *testing.T) {
	s, _, fake := setupTestStore(t, nil, true)
	ctx := context.Background()

	notified := 0
	cancel := s.Subscribe(func() { notified++ })
	defer cancel()

	s.SetCurrentClientID(ctx, "client-9")
	if s.State().CurrentClientID != "client-9" || notified != 1 {
		t.Errorf("selection = %q, notified = %d", s.State().CurrentClientID, notified)
	}

	s.SetCurrentClientID(ctx, "")
	if s.State().CurrentClientID != "" {
		t.Error("empty id should clear the selection")
	}

	_ = s.Flush(ctx)
	if calls := fake.Calls(); len(calls) != 0 {
		t.Errorf("selection made remote calls: %+v", calls)
	}
}

func TestAddClient(t *testing.T) {
	s, _, fake := setupTestStore(t, nil, true)
	ctx := context.Background()

	in := models.ClientInput{Nome: "Padaria Sol", Instagram: "@padariasol", TomDeVoz: "Leve"}
	got := s.AddClient(ctx, in)

	wantID := "client-" + "1709555400000"
	if got.ID != wantID {
		t.Errorf("ID = %q, want %q", got.ID, wantID)
	}
	if got.CreatedAt != "2024-03-04T12:30:00.000Z" {
		t.Errorf("CreatedAt = %q", got.CreatedAt)
	}
	if got.Nome != in.Nome || got.TomDeVoz != in.TomDeVoz {
		t.Errorf("client = %+v", got)
	}

	second := s.AddClient(ctx, models.ClientInput{Nome: "Outra"})
	if second.ID == got.ID {
		t.Errorf("two clients in the same millisecond share id %q", got.ID)
	}

	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	rows := fake.ClientsTable().Rows()
	if len(rows) != 2 || rows[0] != got {
		t.Errorf("remote rows = %+v", rows)
	}
}

func TestUpdateClient(t *testing.T) {
	seed := sampleState()
	s, _, fake := setupTestStore(t, &seed, true)
	ctx := context.Background()

	before := s.State()
	s.UpdateClient(ctx, "client-1", models.ClientPatch{Nome: models.String("Padaria Lua"), Observacoes: models.String("")})

	after := s.State()
	want := seed.Clients[0]
	want.Nome = "Padaria Lua"
	if after.Clients[0] != want {
		t.Errorf("client = %+v, want %+v", after.Clients[0], want)
	}
	if after.Clients[0].CreatedAt != seed.Clients[0].CreatedAt {
		t.Error("createdAt changed")
	}
	if !SameSlice(before.Cards, after.Cards) {
		t.Error("cards slice replaced by a client update")
	}

	_ = s.Flush(ctx)
	calls := fake.Calls()
	if len(calls) != 1 || calls[0].Op != remote.OpUpdate || calls[0].ID != "client-1" {
		t.Fatalf("remote calls = %+v", calls)
	}
	if !reflect.DeepEqual(calls[0].Fields, map[string]any{"nome": "Padaria Lua", "observacoes": ""}) {
		t.Errorf("remote fields = %+v", calls[0].Fields)
	}
}

func TestUpdateUnknownIDs(t *testing.T) {
	seed := sampleState()
	s, _, fake := setupTestStore(t, &seed, true)
	ctx := context.Background()

	notified := 0
	defer s.Subscribe(func() { notified++ })()

	before := s.State()
	s.UpdateClient(ctx, "client-404", models.ClientPatch{Nome: models.String("x")})
	s.UpdateCard(ctx, "card-404", models.CardPatch{Status: models.String("Check")})
	s.DeleteCard(ctx, "card-404")
	s.UpdateCard(ctx, "card-1", models.CardPatch{})

	if notified != 0 {
		t.Errorf("unknown ids notified %d times", notified)
	}
	if !reflect.DeepEqual(s.State(), before) {
		t.Error("unknown ids changed the snapshot")
	}

	_ = s.Flush(ctx)
	var ops []string
	for _, c := range fake.Calls() {
		ops = append(ops, c.Table+"/"+c.Op+"/"+c.ID)
	}
	// tables drain independently, so only the order within one table is fixed
	sort.SliceStable(ops, func(i, j int) bool { return strings.Split(ops[i], "/")[0] < strings.Split(ops[j], "/")[0] })
	want := []string{"cards/update/card-404", "cards/delete/card-404", "clients/update/client-404"}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("remote calls = %v, want %v", ops, want)
	}
}

func TestDeleteClientCascades(t *testing.T) {
	seed := sampleState()
	s, c, fake := setupTestStore(t, &seed, true)
	ctx := context.Background()

	s.SetCurrentClientID(ctx, "client-1")
	s.DeleteClient(ctx, "client-1")

	st := s.State()
	if _, ok := st.FindClient("client-1"); ok {
		t.Error("client-1 still present")
	}
	for _, card := range st.Cards {
		if card.ClientID == "client-1" {
			t.Errorf("card %s of deleted client survived", card.ID)
		}
	}
	if len(st.Cards) != 1 || st.Cards[0].ID != "card-3" {
		t.Errorf("cards = %+v", st.Cards)
	}
	if st.CurrentClientID != "" {
		t.Errorf("selection = %q, want cleared", st.CurrentClientID)
	}
	assertPersisted(t, s, c)

	_ = s.Flush(ctx)
	calls := fake.Calls()
	if len(calls) != 1 || calls[0].Table != constants.TableClients || calls[0].Op != remote.OpDelete {
		t.Errorf("remote calls = %+v, want only the client delete", calls)
	}
}

func TestDeleteClientKeepsOtherSelection(t *testing.T) {
	seed := sampleState()
	s, _, _ := setupTestStore(t, &seed, false)
	ctx := context.Background()

	s.SetCurrentClientID(ctx, "client-2")
	s.DeleteClient(ctx, "client-1")
	if s.State().CurrentClientID != "client-2" {
		t.Errorf("selection = %q, want client-2", s.State().CurrentClientID)
	}
}

func TestAddCardDefaults(t *testing.T) {
	seed := sampleState()
	seed.Clients = append(seed.Clients, models.Client{ID: "c1", Nome: "C1"})
	s, _, _ := setupTestStore(t, &seed, false)

	card := s.AddCard(context.Background(), models.CardDraft{CardPatch: models.CardPatch{ClientID: models.String("c1")}})

	want := models.ContentCard{
		ID:        card.ID,
		ClientID:  "c1",
		Titulo:    "Novo Post",
		Tipo:      "Post",
		Pilar:     "Geral",
		Status:    "A Fazer",
		Links:     []models.ContentLink{},
		Checklist: []models.ChecklistItem{},
		Tags:      []string{},
	}
	if !reflect.DeepEqual(card, want) {
		t.Errorf("AddCard() = %+v\nwant %+v", card, want)
	}
	if !strings.HasPrefix(card.ID, "card-") {
		t.Errorf("ID = %q", card.ID)
	}
	for _, existing := range seed.Cards {
		if existing.ID == card.ID {
			t.Errorf("ID %q collides with an existing card", card.ID)
		}
	}
}

func TestAddCardOverrides(t *testing.T) {
	s, _, _ := setupTestStore(t, nil, false)
	ctx := context.Background()

	card := s.AddCard(ctx, models.CardDraft{
		ID: "card-custom",
		CardPatch: models.CardPatch{
			Titulo:    models.String(""),
			Status:    models.String("Check"),
			IsBacklog: models.Bool(true),
			Tags:      &[]string{"x"},
		},
	})
	if card.ID != "card-custom" {
		t.Errorf("ID = %q, want draft id", card.ID)
	}
	if card.Titulo != "" {
		t.Errorf("Titulo = %q, explicit empty string should win", card.Titulo)
	}
	if card.Status != "Check" || !card.IsBacklog || !reflect.DeepEqual(card.Tags, []string{"x"}) {
		t.Errorf("card = %+v", card)
	}

	next := s.AddCard(ctx, models.CardDraft{})
	if next.ID == card.ID {
		t.Error("generated id collided with draft id")
	}
}

func TestAddCardIDsSkipTaken(t *testing.T) {
	seed := models.EmptyAppState()
	seed.Cards = []models.ContentCard{{ID: "card-1709555400000"}, {ID: "card-1709555400001"}}
	s, _, _ := setupTestStore(t, &seed, false)

	card := s.AddCard(context.Background(), models.CardDraft{})
	if card.ID != "card-1709555400002" {
		t.Errorf("ID = %q, want the first free millisecond", card.ID)
	}
}

func TestAddCardReturnsDetachedCopy(t *testing.T) {
	s, _, _ := setupTestStore(t, nil, false)

	card := s.AddCard(context.Background(), models.CardDraft{CardPatch: models.CardPatch{Tags: &[]string{"a"}}})
	card.Tags[0] = "mutated"

	if got := s.State().Cards[0].Tags[0]; got != "a" {
		t.Errorf("stored tag = %q, caller mutation leaked into the store", got)
	}
}

func TestUpdateCardChangesOnlyStatus(t *testing.T) {
	seed := sampleState()
	s, c, _ := setupTestStore(t, &seed, false)

	s.UpdateCard(context.Background(), "card-1", models.CardPatch{Status: models.String("Check")})

	got, ok := s.State().FindCard("card-1")
	if !ok {
		t.Fatal("card-1 missing")
	}
	want := seed.Cards[0]
	want.Status = "Check"
	if !reflect.DeepEqual(got, want) {
		t.Errorf("card = %+v\nwant %+v", got, want)
	}

	cached := c.Load()
	if cached.Cards[0].Status != "Check" {
		t.Errorf("cached status = %q", cached.Cards[0].Status)
	}
	if !reflect.DeepEqual(cached.Cards[1:], seed.Cards[1:]) {
		t.Error("other cards changed")
	}
}

func TestDuplicateCard(t *testing.T) {
	seed := sampleState()
	s, _, fake := setupTestStore(t, &seed, true)
	ctx := context.Background()

	dup, ok := s.DuplicateCard(ctx, "card-1")
	if !ok {
		t.Fatal("DuplicateCard() ok = false")
	}
	orig := seed.Cards[0]
	if dup.ID == orig.ID {
		t.Error("duplicate kept the original id")
	}
	if dup.Titulo != orig.Titulo+" (Cópia)" {
		t.Errorf("Titulo = %q", dup.Titulo)
	}

	cmp := dup
	cmp.ID = orig.ID
	cmp.Titulo = orig.Titulo
	if !reflect.DeepEqual(cmp, orig) {
		t.Errorf("duplicate fields differ\n got: %+v\nwant: %+v", cmp, orig)
	}

	cards := s.State().Cards
	if len(cards) != 4 || cards[3].ID != dup.ID {
		t.Errorf("duplicate not appended: %+v", cards)
	}
	cards[3].Links[0].Label = "x"
	if orig, _ := s.State().FindCard("card-1"); orig.Links[0].Label != "Link" {
		t.Error("duplicate shares links with the original")
	}

	_ = s.Flush(ctx)
	calls := fake.Calls()
	if len(calls) != 1 || calls[0].Op != remote.OpInsert || calls[0].ID != dup.ID {
		t.Errorf("remote calls = %+v", calls)
	}
}

func TestDuplicateUnknownCardIsNoop(t *testing.T) {
	seed := sampleState()
	s, _, fake := setupTestStore(t, &seed, true)
	ctx := context.Background()

	notified := 0
	defer s.Subscribe(func() { notified++ })()

	before := s.State()
	if _, ok := s.DuplicateCard(ctx, "card-404"); ok {
		t.Error("DuplicateCard() ok = true for unknown id")
	}
	if notified != 0 || !reflect.DeepEqual(s.State(), before) {
		t.Error("duplicate of unknown id changed the store")
	}
	_ = s.Flush(ctx)
	if len(fake.Calls()) != 0 {
		t.Errorf("remote calls = %+v", fake.Calls())
	}
}

func TestDeleteCard(t *testing.T) {
	seed := sampleState()
	s, c, _ := setupTestStore(t, &seed, false)

	before := s.State()
	s.DeleteCard(context.Background(), "card-2")
	after := s.State()

	if _, ok := after.FindCard("card-2"); ok {
		t.Error("card-2 still present")
	}
	if len(after.Cards) != 2 {
		t.Errorf("cards = %d, want 2", len(after.Cards))
	}
	if !SameSlice(before.Clients, after.Clients) {
		t.Error("clients slice replaced by a card delete")
	}
	if len(before.Cards) != 3 {
		t.Error("previous snapshot was mutated")
	}
	assertPersisted(t, s, c)
}
