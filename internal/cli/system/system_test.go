package system

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/vitrine/internal/cache"
	"github.com/julianstephens/vitrine/internal/cli"
	"github.com/julianstephens/vitrine/internal/config"
	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/keyring"
	"github.com/julianstephens/vitrine/internal/models"
	"github.com/julianstephens/vitrine/internal/remote"
	"github.com/julianstephens/vitrine/internal/remote/remotetest"
)

func setupTestContext(t *testing.T, adapter *remotetest.Adapter) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	flags := &config.Flags{
		ConfigDir:     dir,
		Cache:         constants.CacheSQLite,
		Timezone:      "UTC",
		RemoteTimeout: time.Second,
		CaptionModel:  constants.DefaultCaptionModel,
	}
	c, err := cache.Open(flags.Cache, dir)
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}

	var a remote.Adapter
	if adapter != nil {
		a = adapter
		flags.RemoteURL = "https://example.supabase.co"
		flags.RemoteKey = "anon"
	}
	ctx := cli.New(context.Background(), flags, c, a, nil)
	out := &bytes.Buffer{}
	ctx.Out = out
	t.Cleanup(func() { _ = ctx.Close() })
	return ctx, out
}

func TestDoctorCmd_Healthy(t *testing.T) {
	ctx, out := setupTestContext(t, nil)
	ctx.Store.AddClient(ctx.Ctx, models.ClientInput{Nome: "Padaria"})

	// Missing backups and captions are warnings, not failures
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed on healthy cache: %v\n%s", err, out.String())
	}
	for _, want := range []string{"Data integrity: OK (1 clients, 0 cards)", "Backups present: WARNING", "Remote store: SKIPPED"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestDoctorCmd_RemoteFailure(t *testing.T) {
	adapter := remotetest.New()
	adapter.Fail(constants.TableClients, remote.OpSelect, remotetest.ErrInjected)
	ctx, out := setupTestContext(t, adapter)

	err := (&DoctorCmd{}).Run(ctx)
	if !errors.Is(err, ErrChecksFailed) {
		t.Fatalf("expected ErrChecksFailed, got %v", err)
	}
	if !strings.Contains(out.String(), "Remote store: FAIL") {
		t.Errorf("output = %s", out.String())
	}

	out.Reset()
	if err := (&DoctorCmd{Offline: true}).Run(ctx); err != nil {
		t.Errorf("doctor --offline failed: %v", err)
	}
}

func TestCheckSnapshot(t *testing.T) {
	client := models.Client{ID: "client-1", Nome: "Padaria"}
	tests := []struct {
		name    string
		state   models.AppState
		wantErr string
	}{
		{
			name:  "valid",
			state: models.AppState{Clients: []models.Client{client}, Cards: []models.ContentCard{{ID: "card-1", ClientID: "client-1", DateISO: "2024-03-04", TimeOpcional: "09:00"}}},
		},
		{
			name:    "duplicate client",
			state:   models.AppState{Clients: []models.Client{client, client}},
			wantErr: "duplicate client",
		},
		{
			name:    "duplicate card",
			state:   models.AppState{Clients: []models.Client{client}, Cards: []models.ContentCard{{ID: "card-1", ClientID: "client-1"}, {ID: "card-1", ClientID: "client-1"}}},
			wantErr: "duplicate card",
		},
		{
			name:    "orphan card",
			state:   models.AppState{Cards: []models.ContentCard{{ID: "card-1", ClientID: "client-gone"}}},
			wantErr: "no longer exist",
		},
		{
			name:    "bad date",
			state:   models.AppState{Clients: []models.Client{client}, Cards: []models.ContentCard{{ID: "card-1", ClientID: "client-1", DateISO: "04/03/2024"}}},
			wantErr: "invalid date",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := checkSnapshot(tt.state)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("checkSnapshot() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("checkSnapshot() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestSyncCmd(t *testing.T) {
	adapter := remotetest.New()
	adapter.ClientsTable().Seed(
		models.Client{ID: "client-2", Nome: "Bistrô"},
		models.Client{ID: "client-1", Nome: "Academia"},
	)
	adapter.CardsTable().Seed(models.ContentCard{ID: "card-1", ClientID: "client-1", Titulo: "Treino"})
	ctx, out := setupTestContext(t, adapter)
	ctx.Store.AddClient(ctx.Ctx, models.ClientInput{Nome: "Local only"})
	if err := ctx.Store.Flush(ctx.Ctx); err != nil {
		t.Fatalf("Flush() failed: %v", err)
	}

	// the local insert was mirrored, so the remote now has three clients
	if err := (&SyncCmd{}).Run(ctx); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	st := ctx.Store.State()
	if len(st.Clients) != 3 || st.Clients[0].Nome != "Academia" {
		t.Errorf("clients after sync = %+v", st.Clients)
	}
	if !strings.Contains(out.String(), "Synced 3 clients and 1 cards") {
		t.Errorf("output = %q", out.String())
	}
}

func TestSyncCmd_Failure(t *testing.T) {
	adapter := remotetest.New()
	adapter.Fail(constants.TableCards, remote.OpSelect, remotetest.ErrInjected)
	ctx, _ := setupTestContext(t, adapter)

	if err := (&SyncCmd{}).Run(ctx); !errors.Is(err, ErrSyncFailed) {
		t.Errorf("expected ErrSyncFailed, got %v", err)
	}
	if ctx.Store.State().IsLoading {
		t.Error("IsLoading should be cleared after a failed sync")
	}
}

func TestSyncCmd_LocalOnly(t *testing.T) {
	ctx, _ := setupTestContext(t, nil)
	if err := (&SyncCmd{}).Run(ctx); err == nil {
		t.Error("expected error without a remote store")
	}
}

func TestRemoteKeyCommands(t *testing.T) {
	gokeyring.MockInit()
	ctx, out := setupTestContext(t, nil)

	if err := (&RemoteSetKeyCmd{Key: "  "}).Run(ctx); err == nil {
		t.Error("expected error for empty key")
	}
	if err := (&RemoteSetKeyCmd{Key: "anon-key"}).Run(ctx); err != nil {
		t.Fatalf("remote set-key failed: %v", err)
	}
	if got, err := keyring.GetAnonKey(); err != nil || got != "anon-key" {
		t.Errorf("GetAnonKey() = %q, %v", got, err)
	}

	out.Reset()
	if err := (&RemoteStatusCmd{}).Run(ctx); err != nil {
		t.Fatalf("remote status failed: %v", err)
	}
	if !strings.Contains(out.String(), "Anon key is stored in keyring") {
		t.Errorf("status output = %s", out.String())
	}

	if err := (&RemoteClearKeyCmd{}).Run(ctx); err != nil {
		t.Fatalf("remote clear-key failed: %v", err)
	}
	if err := (&RemoteClearKeyCmd{}).Run(ctx); err == nil {
		t.Error("expected error clearing a missing key")
	}
}

func TestRemoteStatusCmd_Configured(t *testing.T) {
	gokeyring.MockInit()
	ctx, out := setupTestContext(t, remotetest.New())

	if err := (&RemoteStatusCmd{}).Run(ctx); err != nil {
		t.Fatalf("remote status failed: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Remote store: https://…") {
		t.Errorf("status output = %s", out.String())
	}
	if !strings.Contains(out.String(), "Key source: flag or environment") {
		t.Errorf("status output = %s", out.String())
	}
}

func seedConflicts(ctx *cli.Context) (orphan, badDate, badTime models.ContentCard) {
	client := ctx.Store.AddClient(ctx.Ctx, models.ClientInput{Nome: "Padaria"})
	orphan = ctx.Store.AddCard(ctx.Ctx, models.CardDraft{CardPatch: models.CardPatch{ClientID: models.String("client-gone")}})
	badDate = ctx.Store.AddCard(ctx.Ctx, models.CardDraft{CardPatch: models.CardPatch{ClientID: &client.ID, DateISO: models.String("04/03/2024")}})
	badTime = ctx.Store.AddCard(ctx.Ctx, models.CardDraft{CardPatch: models.CardPatch{ClientID: &client.ID, DateISO: models.String("2024-03-04"), TimeOpcional: models.String("9h")}})
	return orphan, badDate, badTime
}

func TestValidateCmd_Report(t *testing.T) {
	ctx, out := setupTestContext(t, nil)
	seedConflicts(ctx)

	err := (&ValidateCmd{}).Run(ctx)
	if !errors.Is(err, ErrConflicts) {
		t.Fatalf("expected ErrConflicts, got %v", err)
	}
	for _, want := range []string{"Conflicts detected:", "no longer exists", "invalid date", "invalid time"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
	if n := len(ctx.Store.State().Cards); n != 3 {
		t.Errorf("report-only run changed cards: %d left", n)
	}
}

func TestValidateCmd_Fix(t *testing.T) {
	ctx, out := setupTestContext(t, nil)
	orphan, badDate, badTime := seedConflicts(ctx)

	if err := (&ValidateCmd{Fix: true}).Run(ctx); err != nil {
		t.Fatalf("validate --fix failed: %v\n%s", err, out.String())
	}

	st := ctx.Store.State()
	if _, ok := st.FindCard(orphan.ID); ok {
		t.Error("orphan card still present")
	}
	card, _ := st.FindCard(badDate.ID)
	if card.DateISO != "" || !card.IsBacklog {
		t.Errorf("bad date card = %+v, want moved to the backlog", card)
	}
	card, _ = st.FindCard(badTime.ID)
	if card.TimeOpcional != "" || card.DateISO != "2024-03-04" {
		t.Errorf("bad time card = %+v, want the time cleared only", card)
	}
	if !strings.HasSuffix(out.String(), "No conflicts detected.") {
		t.Errorf("output should end clean:\n%s", out.String())
	}
}

func TestValidateCmd_FixKeepsDuplicateIDs(t *testing.T) {
	ctx, out := setupTestContext(t, nil)
	client := ctx.Store.AddClient(ctx.Ctx, models.ClientInput{Nome: "Padaria"})
	ctx.Store.AddCard(ctx.Ctx, models.CardDraft{ID: "card-twin", CardPatch: models.CardPatch{ClientID: models.String("client-gone")}})
	ctx.Store.AddCard(ctx.Ctx, models.CardDraft{ID: "card-twin", CardPatch: models.CardPatch{ClientID: &client.ID}})

	err := (&ValidateCmd{Fix: true}).Run(ctx)
	if !errors.Is(err, ErrConflicts) {
		t.Fatalf("expected ErrConflicts, got %v", err)
	}
	if n := countCards(ctx.Store.State().Cards, "card-twin"); n != 2 {
		t.Errorf("%d cards left with the shared id, want 2", n)
	}
	if !strings.Contains(out.String(), "Failed to delete orphan card card-twin: 2 cards share this id") {
		t.Errorf("output = %s", out.String())
	}
}

func TestValidateCmd_FixOrphanWithBadDate(t *testing.T) {
	ctx, out := setupTestContext(t, nil)
	orphan := ctx.Store.AddCard(ctx.Ctx, models.CardDraft{CardPatch: models.CardPatch{
		ClientID: models.String("client-gone"),
		DateISO:  models.String("amanhã"),
	}})

	if err := (&ValidateCmd{Fix: true}).Run(ctx); err != nil {
		t.Fatalf("validate --fix failed: %v\n%s", err, out.String())
	}
	if _, ok := ctx.Store.State().FindCard(orphan.ID); ok {
		t.Error("orphan card still present")
	}
	if strings.Contains(out.String(), "Failed") {
		t.Errorf("no fix should fail:\n%s", out.String())
	}
}

func TestDoctorCmd_IntegrityWarning(t *testing.T) {
	ctx, out := setupTestContext(t, nil)
	ctx.Store.AddClient(ctx.Ctx, models.ClientInput{Nome: "Bistrô"})
	ctx.Store.AddClient(ctx.Ctx, models.ClientInput{Nome: "Bistrô"})

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("duplicate names should only warn: %v", err)
	}
	if !strings.Contains(out.String(), "Data integrity: WARNING") || !strings.Contains(out.String(), `2 clients are named "Bistrô"`) {
		t.Errorf("output = %s", out.String())
	}
}
