package cache

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/models"
	"github.com/julianstephens/vitrine/internal/storage"
)

type failingBlobs struct {
	*storage.Memory
	getErr error
	setErr error
	sets   int
}

func (f *failingBlobs) Get(key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Memory.Get(key)
}

func (f *failingBlobs) Set(key string, value []byte) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	return f.Memory.Set(key, value)
}

func sampleState() models.AppState {
	state := models.EmptyAppState()
	state.Clients = append(state.Clients, models.Client{
		ID:        "client-1",
		Nome:      "Padaria Sol",
		Instagram: "@padariasol",
		CreatedAt: "2024-01-01T00:00:00.000Z",
	})
	state.Cards = append(state.Cards, models.ContentCard{
		ID:        "card-1",
		ClientID:  "client-1",
		DateISO:   "2024-01-01",
		Titulo:    "Pão",
		Tipo:      "Post",
		Pilar:     "Geral",
		Status:    constants.StatusTodo,
		Links:     []models.ContentLink{},
		Checklist: []models.ChecklistItem{},
		Tags:      []string{},
	})
	return state
}

func TestLoadEmpty(t *testing.T) {
	c := New(storage.NewMemory())

	got := c.Load()
	if !reflect.DeepEqual(got, models.EmptyAppState()) {
		t.Errorf("Load() on empty store = %+v", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := New(storage.NewMemory())
	want := sampleState()

	c.Save(want)
	got := c.Load()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestCurrentClientIDKeptApart(t *testing.T) {
	blobs := storage.NewMemory()
	c := New(blobs)
	want := sampleState()
	c.Save(want)

	if got := c.CurrentClientID(); got != "" {
		t.Errorf("CurrentClientID() on empty store = %q", got)
	}

	c.SaveCurrentClientID("client-1")
	if got := c.CurrentClientID(); got != "client-1" {
		t.Errorf("CurrentClientID() = %q, want client-1", got)
	}
	if got := c.Load(); !reflect.DeepEqual(got, want) {
		t.Errorf("snapshot changed after saving the selection: %+v", got)
	}
	if _, err := blobs.Get(constants.StorageKey + constants.SelectionKeySuffix); err != nil {
		t.Errorf("selection blob missing: %v", err)
	}

	c.SaveCurrentClientID("")
	if got := c.CurrentClientID(); got != "" {
		t.Errorf("CurrentClientID() after clearing = %q", got)
	}
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name  string
		blobs *failingBlobs
		seed  []byte
	}{
		{name: "read error", blobs: &failingBlobs{Memory: storage.NewMemory(), getErr: errors.New("disk gone")}},
		{name: "malformed json", blobs: &failingBlobs{Memory: storage.NewMemory()}, seed: []byte("{not json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.seed != nil {
				_ = tt.blobs.Memory.Set(constants.StorageKey, tt.seed)
			}
			got := New(tt.blobs).Load()
			if !reflect.DeepEqual(got, models.EmptyAppState()) {
				t.Errorf("Load() = %+v, want empty state", got)
			}
		})
	}
}

func TestSaveFailureIsSwallowed(t *testing.T) {
	blobs := &failingBlobs{Memory: storage.NewMemory(), setErr: errors.New("quota exceeded")}
	c := New(blobs)

	c.Save(sampleState())
	if blobs.sets != 1 {
		t.Errorf("Set called %d times, want 1", blobs.sets)
	}
}

func TestReplaceAndRaw(t *testing.T) {
	c := New(storage.NewMemory())

	if _, ok, err := c.Raw(); ok || err != nil {
		t.Fatalf("Raw() on empty store = ok %v, err %v", ok, err)
	}

	if _, err := c.Replace([]byte("nope")); err == nil {
		t.Error("Replace() with invalid json should fail")
	}

	state, err := c.Replace([]byte(`{"clients":[{"id":"client-9","nome":"X"}]}`))
	if err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if len(state.Clients) != 1 || state.Cards == nil || state.DailyNotes == nil {
		t.Errorf("Replace() state = %+v", state)
	}

	if _, ok, _ := c.Raw(); !ok {
		t.Error("Raw() after Replace should find the blob")
	}
}

func TestOpenBackends(t *testing.T) {
	for _, kind := range []string{constants.CacheSQLite, constants.CacheFile, constants.CacheMemory} {
		t.Run(kind, func(t *testing.T) {
			c, err := Open(kind, t.TempDir())
			if err != nil {
				t.Fatalf("Open(%q) error = %v", kind, err)
			}
			defer c.Close()

			c.Save(sampleState())
			if got := c.Load(); len(got.Clients) != 1 {
				t.Errorf("Load() clients = %d, want 1", len(got.Clients))
			}
		})
	}

	if _, err := Open("redis", filepath.Join(t.TempDir(), "x")); err == nil {
		t.Error("Open() with unknown backend should fail")
	}
}
