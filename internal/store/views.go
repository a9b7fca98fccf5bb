package store

import (
	"slices"
	"strings"

	"github.com/julianstephens/vitrine/internal/models"
)

// CurrentClient returns the selected client, if any.
func (s State) CurrentClient() (models.Client, bool) {
	if s.CurrentClientID == "" {
		return models.Client{}, false
	}
	return s.FindClient(s.CurrentClientID)
}

// FindCard returns the card with id.
func (s State) FindCard(id string) (models.ContentCard, bool) {
	i := slices.IndexFunc(s.Cards, func(c models.ContentCard) bool { return c.ID == id })
	if i < 0 {
		return models.ContentCard{}, false
	}
	return s.Cards[i], true
}

// FindClient returns the client with id.
func (s State) FindClient(id string) (models.Client, bool) {
	i := slices.IndexFunc(s.Clients, func(c models.Client) bool { return c.ID == id })
	if i < 0 {
		return models.Client{}, false
	}
	return s.Clients[i], true
}

func filterCards(cards []models.ContentCard, keep func(models.ContentCard) bool) []models.ContentCard {
	out := []models.ContentCard{}
	for _, c := range cards {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// ClientCards returns the cards of one client in store order.
func ClientCards(cards []models.ContentCard, clientID string) []models.ContentCard {
	return filterCards(cards, func(c models.ContentCard) bool { return c.ClientID == clientID })
}

// CardsOn returns the calendar cards dated dateISO. Backlog cards are left out
// even when they carry a date.
func CardsOn(cards []models.ContentCard, dateISO string) []models.ContentCard {
	return filterCards(cards, func(c models.ContentCard) bool { return c.DateISO == dateISO && !c.IsBacklog })
}

func Backlog(cards []models.ContentCard) []models.ContentCard {
	return filterCards(cards, func(c models.ContentCard) bool { return c.IsBacklog })
}

func Favorites(cards []models.ContentCard) []models.ContentCard {
	return filterCards(cards, func(c models.ContentCard) bool { return c.IsFavorite })
}

// SearchClients keeps the clients whose nome or instagram contains query,
// ignoring case. An empty query keeps everything.
func SearchClients(clients []models.Client, query string) []models.Client {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []models.Client{}
	for _, c := range clients {
		if q == "" || strings.Contains(strings.ToLower(c.Nome), q) || strings.Contains(strings.ToLower(c.Instagram), q) {
			out = append(out, c)
		}
	}
	return out
}

// CountByClient returns the number of cards per client id.
func CountByClient(cards []models.ContentCard) map[string]int {
	counts := make(map[string]int)
	for _, c := range cards {
		counts[c.ClientID]++
	}
	return counts
}
