// Package postgrest talks to a Supabase/PostgREST endpoint over HTTP.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/models"
	"github.com/julianstephens/vitrine/internal/remote"
)

const (
	restPath       = "/rest/v1"
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 4 << 10
)

func init() {
	remote.Register(func(_ context.Context, cfg remote.Config) (remote.Adapter, error) {
		return New(cfg, nil)
	}, "http", "https")
}

// Client is a remote.Adapter over the PostgREST HTTP API.
type Client struct {
	base    *url.URL
	key     string
	http    *http.Client
	clients *table[models.Client]
	cards   *table[models.ContentCard]
}

// New builds a Client. httpClient may be nil.
func New(cfg remote.Config, httpClient *http.Client) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.URL), "/"))
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid PostgREST URL: %q", cfg.URL)
	}
	if !strings.HasSuffix(base.Path, restPath) {
		base.Path += restPath
	}

	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{base: base, key: cfg.Key, http: httpClient}
	c.clients = &table[models.Client]{c: c, name: constants.TableClients}
	c.cards = &table[models.ContentCard]{c: c, name: constants.TableCards}
	return c, nil
}

func (c *Client) Clients() remote.Table[models.Client]    { return c.clients }
func (c *Client) Cards() remote.Table[models.ContentCard] { return c.cards }

func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// Endpoint returns the REST root, for status output.
func (c *Client) Endpoint() string {
	return c.base.String()
}

type table[T any] struct {
	c    *Client
	name string
}

func (t *table[T]) SelectAll(ctx context.Context, orderBy string) ([]T, error) {
	q := url.Values{}
	q.Set("select", "*")
	if orderBy != "" {
		q.Set("order", orderBy+".asc")
	}

	var rows []T
	if err := t.do(ctx, remote.OpSelect, http.MethodGet, q, nil, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

func (t *table[T]) Insert(ctx context.Context, row T) error {
	return t.do(ctx, remote.OpInsert, http.MethodPost, nil, row, nil)
}

func (t *table[T]) UpdateByID(ctx context.Context, id string, fields map[string]any) error {
	return t.do(ctx, remote.OpUpdate, http.MethodPatch, idFilter(id), fields, nil)
}

func (t *table[T]) DeleteByID(ctx context.Context, id string) error {
	return t.do(ctx, remote.OpDelete, http.MethodDelete, idFilter(id), nil, nil)
}

func idFilter(id string) url.Values {
	q := url.Values{}
	q.Set("id", "eq."+id)
	return q
}

func (t *table[T]) fail(op string, status int, err error) error {
	return &remote.ProviderError{Table: t.name, Op: op, Status: status, Err: err}
}

func (t *table[T]) do(ctx context.Context, op, method string, query url.Values, body, out any) error {
	endpoint := *t.c.base
	endpoint.Path += "/" + t.name
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return t.fail(op, 0, fmt.Errorf("failed to encode body: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return t.fail(op, 0, err)
	}
	req.Header.Set("apikey", t.c.key)
	req.Header.Set("Authorization", "Bearer "+t.c.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if out == nil {
		req.Header.Set("Prefer", "return=minimal")
	}

	resp, err := t.c.http.Do(req)
	if err != nil {
		return t.fail(op, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return t.fail(op, resp.StatusCode, errorFromBody(resp.Body))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return t.fail(op, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// apiError is the PostgREST error body.
type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Hint    string `json:"hint"`
}

func errorFromBody(r io.Reader) error {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))

	var e apiError
	if err := json.Unmarshal(data, &e); err == nil && e.Message != "" {
		if e.Code != "" {
			return fmt.Errorf("%s: %s", e.Code, e.Message)
		}
		return errors.New(e.Message)
	}
	if msg := strings.TrimSpace(string(data)); msg != "" {
		return errors.New(msg)
	}
	return errors.New("empty error response")
}
