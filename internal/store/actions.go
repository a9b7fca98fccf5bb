package store

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/logger"
	"github.com/julianstephens/vitrine/internal/models"
	"github.com/julianstephens/vitrine/internal/remote"
)

// SetCurrentClientID selects a client. An empty id clears the selection.
// Purely local.
func (s *Store) SetCurrentClientID(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.update(func(cur State) (State, bool) {
		cur.CurrentClientID = id
		return cur, true
	})
}

// LoadInitialData replaces clients and cards with the remote copy. Both reads
// must succeed for anything to change; on failure only the loading flag is
// reset. It reports whether the replacement happened.
//
// Actions issued while the reads are in flight commit normally and are then
// overwritten by the remote copy.
func (s *Store) LoadInitialData(ctx context.Context) bool {
	if s.remote == nil {
		logger.Warn("remote not configured, running in local-only mode")
		return false
	}

	s.setLoading(true)

	var (
		clients []models.Client
		cards   []models.ContentCard
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		clients, err = s.remote.Clients().SelectAll(gctx, "nome")
		return err
	})
	g.Go(func() error {
		var err error
		cards, err = s.remote.Cards().SelectAll(gctx, "")
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("failed to load remote data, keeping local data", "error", err)
		s.setLoading(false)
		return false
	}

	if clients == nil {
		clients = []models.Client{}
	}
	if cards == nil {
		cards = []models.ContentCard{}
	}
	for i := range cards {
		cards[i] = withCollections(cards[i])
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.update(func(cur State) (State, bool) {
		cur.Clients = clients
		cur.Cards = cards
		cur.IsLoading = false
		return cur, true
	})
	logger.Info("remote data loaded", "clients", len(clients), "cards", len(cards))
	return true
}

func (s *Store) setLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.update(func(cur State) (State, bool) {
		cur.IsLoading = loading
		return cur, true
	})
}

func (s *Store) clientExists(id string) bool {
	return slices.ContainsFunc(s.State().Clients, func(c models.Client) bool { return c.ID == id })
}

func (s *Store) cardExists(id string) bool {
	return slices.ContainsFunc(s.State().Cards, func(c models.ContentCard) bool { return c.ID == id })
}

// AddClient creates a client with a fresh id and creation time.
func (s *Store) AddClient(ctx context.Context, in models.ClientInput) models.Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.ids.next(constants.ClientIDPrefix, s.clientExists)
	client := models.NewClient(id, s.timestamp(), in)

	s.update(func(cur State) (State, bool) {
		cur.Clients = append(slices.Clip(cur.Clients), client)
		return cur, true
	})

	s.mirrorClients(ctx, remote.OpInsert, id, func(ctx context.Context) error {
		return s.remote.Clients().Insert(ctx, client)
	})
	return client
}

// UpdateClient merges p into the client with id. An unknown id changes
// nothing locally but the remote update is still sent. An empty patch does
// nothing at all.
func (s *Store) UpdateClient(ctx context.Context, id string, p models.ClientPatch) {
	if p.IsEmpty() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.update(func(cur State) (State, bool) {
		i := slices.IndexFunc(cur.Clients, func(c models.Client) bool { return c.ID == id })
		if i < 0 {
			return cur, false
		}
		clients := slices.Clone(cur.Clients)
		clients[i] = clients[i].Apply(p)
		cur.Clients = clients
		return cur, true
	})

	fields := p.Fields()
	s.mirrorClients(ctx, remote.OpUpdate, id, func(ctx context.Context) error {
		return s.remote.Clients().UpdateByID(ctx, id, fields)
	})
}

// DeleteClient removes the client and every card that belongs to it, and
// clears the selection when it pointed at the client. Only the client row is
// deleted remotely.
func (s *Store) DeleteClient(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.update(func(cur State) (State, bool) {
		changed := false
		if slices.ContainsFunc(cur.Clients, func(c models.Client) bool { return c.ID == id }) {
			cur.Clients = slices.DeleteFunc(slices.Clone(cur.Clients), func(c models.Client) bool { return c.ID == id })
			changed = true
		}
		if slices.ContainsFunc(cur.Cards, func(c models.ContentCard) bool { return c.ClientID == id }) {
			cur.Cards = slices.DeleteFunc(slices.Clone(cur.Cards), func(c models.ContentCard) bool { return c.ClientID == id })
			changed = true
		}
		if cur.CurrentClientID == id && id != "" {
			cur.CurrentClientID = ""
			changed = true
		}
		return cur, changed
	})

	s.mirrorClients(ctx, remote.OpDelete, id, func(ctx context.Context) error {
		return s.remote.Clients().DeleteByID(ctx, id)
	})
}

func newCard(id string) models.ContentCard {
	return models.ContentCard{
		ID:        id,
		Titulo:    constants.DefaultCardTitle,
		Tipo:      constants.DefaultCardType,
		Pilar:     constants.DefaultCardPillar,
		Status:    constants.DefaultCardStatus,
		Links:     []models.ContentLink{},
		Checklist: []models.ChecklistItem{},
		Tags:      []string{},
	}
}

// withCollections replaces nil collections with empty ones.
func withCollections(c models.ContentCard) models.ContentCard {
	if c.Links == nil {
		c.Links = []models.ContentLink{}
	}
	if c.Checklist == nil {
		c.Checklist = []models.ChecklistItem{}
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return c
}

// AddCard creates a card from the defaults with every non-nil draft field
// laid over them, empty strings included. A non-empty draft ID is used as is.
func (s *Store) AddCard(ctx context.Context, d models.CardDraft) models.ContentCard {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := d.ID
	if id == "" {
		id = s.ids.next(constants.CardIDPrefix, s.cardExists)
	}
	card := withCollections(newCard(id).Apply(d.CardPatch))

	s.update(func(cur State) (State, bool) {
		cur.Cards = append(slices.Clip(cur.Cards), card)
		return cur, true
	})

	inserted := card.Clone()
	s.mirrorCards(ctx, remote.OpInsert, id, func(ctx context.Context) error {
		return s.remote.Cards().Insert(ctx, inserted)
	})
	return card.Clone()
}

// UpdateCard merges p into the card with id. Same rules as UpdateClient.
func (s *Store) UpdateCard(ctx context.Context, id string, p models.CardPatch) {
	if p.IsEmpty() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.update(func(cur State) (State, bool) {
		i := slices.IndexFunc(cur.Cards, func(c models.ContentCard) bool { return c.ID == id })
		if i < 0 {
			return cur, false
		}
		cards := slices.Clone(cur.Cards)
		cards[i] = cards[i].Apply(p)
		cur.Cards = cards
		return cur, true
	})

	fields := p.Fields()
	s.mirrorCards(ctx, remote.OpUpdate, id, func(ctx context.Context) error {
		return s.remote.Cards().UpdateByID(ctx, id, fields)
	})
}

// DeleteCard removes the card with id.
func (s *Store) DeleteCard(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.update(func(cur State) (State, bool) {
		if !slices.ContainsFunc(cur.Cards, func(c models.ContentCard) bool { return c.ID == id }) {
			return cur, false
		}
		cur.Cards = slices.DeleteFunc(slices.Clone(cur.Cards), func(c models.ContentCard) bool { return c.ID == id })
		return cur, true
	})

	s.mirrorCards(ctx, remote.OpDelete, id, func(ctx context.Context) error {
		return s.remote.Cards().DeleteByID(ctx, id)
	})
}

// DuplicateCard appends a copy of the card with a fresh id and " (Cópia)"
// appended to the title. ok is false, and nothing happens, when id is unknown.
func (s *Store) DuplicateCard(ctx context.Context, id string) (models.ContentCard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.State()
	i := slices.IndexFunc(cur.Cards, func(c models.ContentCard) bool { return c.ID == id })
	if i < 0 {
		return models.ContentCard{}, false
	}

	dup := cur.Cards[i].Clone()
	dup.ID = s.ids.next(constants.CardIDPrefix, s.cardExists)
	dup.Titulo += constants.CopySuffix

	s.update(func(cur State) (State, bool) {
		cur.Cards = append(slices.Clip(cur.Cards), dup)
		return cur, true
	})

	inserted := dup.Clone()
	s.mirrorCards(ctx, remote.OpInsert, dup.ID, func(ctx context.Context) error {
		return s.remote.Cards().Insert(ctx, inserted)
	})
	return dup.Clone(), true
}

func (s *Store) timestamp() string {
	return s.ids.now().UTC().Format(constants.TimestampFormat)
}

func (s *Store) mirrorClients(ctx context.Context, op, id string, run func(context.Context) error) {
	if s.mirror != nil {
		s.mirror.enqueue(ctx, s.mirror.clients, op, id, run)
	}
}

func (s *Store) mirrorCards(ctx context.Context, op, id string, run func(context.Context) error) {
	if s.mirror != nil {
		s.mirror.enqueue(ctx, s.mirror.cards, op, id, run)
	}
}
