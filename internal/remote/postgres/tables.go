package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	pq "github.com/lib/pq"

	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/models"
	"github.com/julianstephens/vitrine/internal/remote"
)

type scanner interface {
	Scan(dest ...any) error
}

// table maps one remote.Table onto a SQL table. columns are the quoted
// camelCase column names and double as the whitelist for updates.
type table[T any] struct {
	s       *Store
	name    string
	columns []string
	jsonb   map[string]bool
	scan    func(scanner) (T, error)
	values  func(T) ([]any, error)
}

func (t *table[T]) fail(op string, err error) error {
	return &remote.ProviderError{Table: t.name, Op: op, Err: err}
}

func (t *table[T]) hasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

func quoteAll(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pq.QuoteIdentifier(c)
	}
	return strings.Join(quoted, ", ")
}

func (t *table[T]) selectQuery(orderBy string) (string, error) {
	query := "SELECT " + quoteAll(t.columns) + " FROM " + pq.QuoteIdentifier(t.name)
	if orderBy != "" {
		if !t.hasColumn(orderBy) {
			return "", fmt.Errorf("unknown column %q", orderBy)
		}
		query += " ORDER BY " + pq.QuoteIdentifier(orderBy) + " ASC"
	}
	return query, nil
}

func (t *table[T]) SelectAll(ctx context.Context, orderBy string) ([]T, error) {
	query, err := t.selectQuery(orderBy)
	if err != nil {
		return nil, t.fail(remote.OpSelect, err)
	}

	rows, err := t.s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, t.fail(remote.OpSelect, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		row, err := t.scan(rows)
		if err != nil {
			return nil, t.fail(remote.OpSelect, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, t.fail(remote.OpSelect, err)
	}
	return out, nil
}

func (t *table[T]) insertQuery() string {
	placeholders := make([]string, len(t.columns))
	for i := range t.columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return "INSERT INTO " + pq.QuoteIdentifier(t.name) + " (" + quoteAll(t.columns) + ") VALUES (" +
		strings.Join(placeholders, ", ") + ")"
}

func (t *table[T]) Insert(ctx context.Context, row T) error {
	args, err := t.values(row)
	if err != nil {
		return t.fail(remote.OpInsert, err)
	}
	if _, err := t.s.db.ExecContext(ctx, t.insertQuery(), args...); err != nil {
		return t.fail(remote.OpInsert, err)
	}
	return nil
}

// updateQuery builds the UPDATE for fields, rejecting columns outside the
// table. Columns are emitted in sorted order.
func (t *table[T]) updateQuery(id string, fields map[string]any) (string, []any, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		if name == "id" || !t.hasColumn(name) {
			return "", nil, fmt.Errorf("column %q cannot be updated", name)
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return "", nil, fmt.Errorf("no fields to update")
	}
	sort.Strings(names)

	sets := make([]string, len(names))
	args := make([]any, 0, len(names)+1)
	for i, name := range names {
		value := fields[name]
		if t.jsonb[name] {
			data, err := json.Marshal(value)
			if err != nil {
				return "", nil, fmt.Errorf("failed to encode %s: %w", name, err)
			}
			value = string(data)
		}
		sets[i] = fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(name), i+1)
		args = append(args, value)
	}
	args = append(args, id)

	query := "UPDATE " + pq.QuoteIdentifier(t.name) + " SET " + strings.Join(sets, ", ") +
		fmt.Sprintf(" WHERE %s = $%d", pq.QuoteIdentifier("id"), len(args))
	return query, args, nil
}

func (t *table[T]) UpdateByID(ctx context.Context, id string, fields map[string]any) error {
	query, args, err := t.updateQuery(id, fields)
	if err != nil {
		return t.fail(remote.OpUpdate, err)
	}
	if _, err := t.s.db.ExecContext(ctx, query, args...); err != nil {
		return t.fail(remote.OpUpdate, err)
	}
	return nil
}

func (t *table[T]) DeleteByID(ctx context.Context, id string) error {
	query := "DELETE FROM " + pq.QuoteIdentifier(t.name) + " WHERE " + pq.QuoteIdentifier("id") + " = $1"
	if _, err := t.s.db.ExecContext(ctx, query, id); err != nil {
		return t.fail(remote.OpDelete, err)
	}
	return nil
}

var clientColumns = []string{"id", "nome", "instagram", "nicho", "tomDeVoz", "objetivos", "observacoes", "createdAt"}

func newClientsTable(s *Store) *table[models.Client] {
	return &table[models.Client]{
		s:       s,
		name:    constants.TableClients,
		columns: clientColumns,
		jsonb:   map[string]bool{},
		scan: func(row scanner) (models.Client, error) {
			var c models.Client
			err := row.Scan(&c.ID, &c.Nome, &c.Instagram, &c.Nicho, &c.TomDeVoz, &c.Objetivos, &c.Observacoes, &c.CreatedAt)
			return c, err
		},
		values: func(c models.Client) ([]any, error) {
			return []any{c.ID, c.Nome, c.Instagram, c.Nicho, c.TomDeVoz, c.Objetivos, c.Observacoes, c.CreatedAt}, nil
		},
	}
}

var cardColumns = []string{
	"id", "clientId", "dateISO", "timeOpcional", "titulo", "tipo", "pilar", "status",
	"copy", "legenda", "notas", "links", "checklist", "tags", "responsavel", "isBacklog", "isFavorite",
}

func newCardsTable(s *Store) *table[models.ContentCard] {
	return &table[models.ContentCard]{
		s:       s,
		name:    constants.TableCards,
		columns: cardColumns,
		jsonb:   map[string]bool{"links": true, "checklist": true, "tags": true},
		scan:    scanCard,
		values:  cardValues,
	}
}

func scanCard(row scanner) (models.ContentCard, error) {
	var c models.ContentCard
	var links, checklist, tags []byte
	err := row.Scan(
		&c.ID, &c.ClientID, &c.DateISO, &c.TimeOpcional, &c.Titulo, &c.Tipo, &c.Pilar, &c.Status,
		&c.Copy, &c.Legenda, &c.Notas, &links, &checklist, &tags, &c.Responsavel, &c.IsBacklog, &c.IsFavorite,
	)
	if err != nil {
		return models.ContentCard{}, err
	}

	c.Links = []models.ContentLink{}
	c.Checklist = []models.ChecklistItem{}
	c.Tags = []string{}
	for _, col := range []struct {
		name string
		data []byte
		dst  any
	}{
		{"links", links, &c.Links},
		{"checklist", checklist, &c.Checklist},
		{"tags", tags, &c.Tags},
	} {
		if len(col.data) == 0 {
			continue
		}
		if err := json.Unmarshal(col.data, col.dst); err != nil {
			return models.ContentCard{}, fmt.Errorf("failed to decode %s: %w", col.name, err)
		}
	}
	return c, nil
}

func cardValues(c models.ContentCard) ([]any, error) {
	links, err := jsonText(c.Links)
	if err != nil {
		return nil, err
	}
	checklist, err := jsonText(c.Checklist)
	if err != nil {
		return nil, err
	}
	tags, err := jsonText(c.Tags)
	if err != nil {
		return nil, err
	}
	return []any{
		c.ID, c.ClientID, c.DateISO, c.TimeOpcional, c.Titulo, c.Tipo, c.Pilar, c.Status,
		c.Copy, c.Legenda, c.Notas, links, checklist, tags, c.Responsavel, c.IsBacklog, c.IsFavorite,
	}, nil
}

// jsonText encodes a collection for a jsonb column; nil becomes [].
func jsonText[T any](v []T) (string, error) {
	if v == nil {
		v = []T{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

