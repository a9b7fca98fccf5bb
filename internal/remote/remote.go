// Package remote defines the CRUD surface of the optional remote table
// service and dispatches connection URLs to registered drivers.
package remote

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/vitrine/internal/models"
)

// Table is the opaque CRUD surface over one remote table.
type Table[T any] interface {
	// SelectAll returns every row. orderBy names a column to sort ascending
	// by; empty means unordered.
	SelectAll(ctx context.Context, orderBy string) ([]T, error)
	Insert(ctx context.Context, row T) error
	// UpdateByID applies fields (keyed by JSON name) to the row with id.
	UpdateByID(ctx context.Context, id string, fields map[string]any) error
	DeleteByID(ctx context.Context, id string) error
}

// Adapter exposes the two remote tables.
type Adapter interface {
	Clients() Table[models.Client]
	Cards() Table[models.ContentCard]
	Close() error
}

// Config locates the remote service.
type Config struct {
	URL     string
	Key     string
	Timeout time.Duration
}

// Enabled reports whether both the URL and the key are present.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.URL) != "" && strings.TrimSpace(c.Key) != ""
}

// Driver opens an Adapter for a URL scheme it registered for.
type Driver func(ctx context.Context, cfg Config) (Adapter, error)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// Register makes a driver available for the given URL schemes. It panics on
// duplicate registration.
func Register(d Driver, schemes ...string) {
	driversMu.Lock()
	defer driversMu.Unlock()

	for _, scheme := range schemes {
		scheme = strings.ToLower(scheme)
		if _, dup := drivers[scheme]; dup {
			panic("remote: Register called twice for scheme " + scheme)
		}
		drivers[scheme] = d
	}
}

// Schemes lists the registered URL schemes.
func Schemes() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()

	out := make([]string, 0, len(drivers))
	for s := range drivers {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Open returns an Adapter for cfg, or nil with no error when cfg is not
// enabled. The caller then runs in local-only mode.
func Open(ctx context.Context, cfg Config) (Adapter, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	u, err := url.Parse(strings.TrimSpace(cfg.URL))
	if err != nil || u.Scheme == "" {
		return nil, fmt.Errorf("invalid remote URL: %q", cfg.URL)
	}

	driversMu.RLock()
	d, ok := drivers[strings.ToLower(u.Scheme)]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no remote driver for scheme %q (registered: %s)", u.Scheme, strings.Join(Schemes(), ", "))
	}
	return d(ctx, cfg)
}
