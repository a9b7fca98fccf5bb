// Package remotetest provides an in-memory remote.Adapter for tests.
package remotetest

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/models"
	"github.com/julianstephens/vitrine/internal/remote"
)

// ErrInjected is the cause of failures configured with Fail.
var ErrInjected = errors.New("injected failure")

// Call records one remote operation.
type Call struct {
	Table  string
	Op     string
	ID     string
	Fields map[string]any
}

// Adapter is a fake remote.Adapter. Rows live in memory and every call is
// recorded in order.
type Adapter struct {
	mu      sync.Mutex
	calls   []Call
	fail    map[string]error
	clients *Table[models.Client]
	cards   *Table[models.ContentCard]
	closed  bool
}

func New() *Adapter {
	a := &Adapter{fail: make(map[string]error)}
	a.clients = &Table[models.Client]{a: a, name: constants.TableClients, id: func(c models.Client) string { return c.ID }}
	a.cards = &Table[models.ContentCard]{a: a, name: constants.TableCards, id: func(c models.ContentCard) string { return c.ID }}
	return a
}

func (a *Adapter) Clients() remote.Table[models.Client]    { return a.clients }
func (a *Adapter) Cards() remote.Table[models.ContentCard] { return a.cards }

// ClientsTable and CardsTable give access to the concrete fakes for seeding.
func (a *Adapter) ClientsTable() *Table[models.Client]    { return a.clients }
func (a *Adapter) CardsTable() *Table[models.ContentCard] { return a.cards }

func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

func (a *Adapter) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

// Fail makes every later op on table fail. A nil err clears it.
func (a *Adapter) Fail(table, op string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err == nil {
		delete(a.fail, table+"/"+op)
		return
	}
	a.fail[table+"/"+op] = err
}

// Calls returns a copy of the recorded calls.
func (a *Adapter) Calls() []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Call(nil), a.calls...)
}

func (a *Adapter) record(c Call) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, c)
	if err, ok := a.fail[c.Table+"/"+c.Op]; ok {
		return &remote.ProviderError{Table: c.Table, Op: c.Op, Status: 500, Err: err}
	}
	return nil
}

// Table is one fake remote table.
type Table[T any] struct {
	a    *Adapter
	name string
	id   func(T) string

	mu   sync.Mutex
	rows []T
	// Gate, when set, is received from before every op runs.
	Gate chan struct{}
}

// Seed replaces the stored rows.
func (t *Table[T]) Seed(rows ...T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append([]T(nil), rows...)
}

// Rows returns a copy of the stored rows.
func (t *Table[T]) Rows() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]T{}, t.rows...)
}

func (t *Table[T]) wait(ctx context.Context) error {
	if t.Gate == nil {
		return nil
	}
	select {
	case <-t.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Table[T]) SelectAll(ctx context.Context, orderBy string) ([]T, error) {
	if err := t.wait(ctx); err != nil {
		return nil, err
	}
	if err := t.a.record(Call{Table: t.name, Op: remote.OpSelect}); err != nil {
		return nil, err
	}

	rows := t.Rows()
	if orderBy != "" {
		sort.SliceStable(rows, func(i, j int) bool {
			return field(rows[i], orderBy) < field(rows[j], orderBy)
		})
	}
	return rows, nil
}

func (t *Table[T]) Insert(ctx context.Context, row T) error {
	if err := t.wait(ctx); err != nil {
		return err
	}
	if err := t.a.record(Call{Table: t.name, Op: remote.OpInsert, ID: t.id(row)}); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, row)
	return nil
}

func (t *Table[T]) UpdateByID(ctx context.Context, id string, fields map[string]any) error {
	if err := t.wait(ctx); err != nil {
		return err
	}
	if err := t.a.record(Call{Table: t.name, Op: remote.OpUpdate, ID: id, Fields: fields}); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for i, row := range t.rows {
		if t.id(row) != id {
			continue
		}
		updated, err := merge(row, fields)
		if err != nil {
			return &remote.ProviderError{Table: t.name, Op: remote.OpUpdate, Err: err}
		}
		t.rows[i] = updated
	}
	return nil
}

func (t *Table[T]) DeleteByID(ctx context.Context, id string) error {
	if err := t.wait(ctx); err != nil {
		return err
	}
	if err := t.a.record(Call{Table: t.name, Op: remote.OpDelete, ID: id}); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	kept := t.rows[:0]
	for _, row := range t.rows {
		if t.id(row) != id {
			kept = append(kept, row)
		}
	}
	t.rows = kept
	return nil
}

// merge applies JSON-named fields to row the way a table service would.
func merge[T any](row T, fields map[string]any) (T, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return row, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return row, err
	}
	for k, v := range fields {
		m[k] = v
	}
	data, err = json.Marshal(m)
	if err != nil {
		return row, err
	}
	var out T
	err = json.Unmarshal(data, &out)
	return out, err
}

func field[T any](row T, name string) string {
	data, _ := json.Marshal(row)
	var m map[string]any
	_ = json.Unmarshal(data, &m)
	s, _ := m[name].(string)
	return s
}
