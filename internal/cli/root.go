package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/vitrine/internal/backup"
	"github.com/julianstephens/vitrine/internal/cache"
	"github.com/julianstephens/vitrine/internal/caption"
	"github.com/julianstephens/vitrine/internal/config"
	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/errors"
	"github.com/julianstephens/vitrine/internal/logger"
	"github.com/julianstephens/vitrine/internal/models"
	"github.com/julianstephens/vitrine/internal/remote"
	"github.com/julianstephens/vitrine/internal/store"
	"github.com/julianstephens/vitrine/internal/utils"
)

// CloseTimeout bounds how long a command waits for queued remote writes on
// exit.
const CloseTimeout = 30 * time.Second

type Context struct {
	Ctx      context.Context
	Config   *config.Flags
	Store    *store.Store
	Cache    *cache.Cache
	Remote   remote.Adapter // nil when running local-only
	Backups  *backup.Manager
	Captions *caption.Service

	Out io.Writer
	In  io.Reader
}

// Open wires the cache, the optional remote adapter, the store and the
// collaborators described by flags. A remote that cannot be reached is
// logged and the store runs local-only.
func Open(ctx context.Context, flags *config.Flags) (*Context, error) {
	c, err := cache.Open(flags.Cache, flags.ConfigDir)
	if err != nil {
		return nil, err
	}

	adapter, err := remote.Open(ctx, flags.Remote())
	if err != nil {
		logger.Warn("Remote store unavailable, running local-only", "error", err)
		adapter = nil
	}

	var gen caption.Generator
	if flags.CaptionKey != "" {
		g, err := caption.NewGemini(ctx, flags.CaptionKey, flags.CaptionModel)
		if err != nil {
			logger.Warn("Caption provider unavailable", "error", err)
		} else {
			gen = g
		}
	}

	return New(ctx, flags, c, adapter, gen), nil
}

// New assembles a Context from already-built parts. The client selected when
// the previous command ended is selected again if it still exists.
func New(ctx context.Context, flags *config.Flags, c *cache.Cache, adapter remote.Adapter, gen caption.Generator) *Context {
	opts := store.Options{Cache: c, Remote: adapter, MirrorRate: flags.MirrorRate}
	st := store.New(opts)
	if id := c.CurrentClientID(); id != "" {
		if _, ok := st.State().FindClient(id); ok {
			st.SetCurrentClientID(ctx, id)
		}
	}
	return &Context{
		Ctx:      ctx,
		Config:   flags,
		Store:    st,
		Cache:    c,
		Remote:   opts.Remote,
		Backups:  backup.NewManager(c, flags.ConfigDir),
		Captions: caption.NewService(gen),
		Out:      os.Stdout,
		In:       os.Stdin,
	}
}

// Close saves the selection, drains queued remote writes and closes the
// cache.
func (c *Context) Close() error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Ctx), CloseTimeout)
	defer cancel()

	c.Cache.SaveCurrentClientID(c.Store.State().CurrentClientID)
	err := c.Store.Close(ctx)
	if cerr := c.Cache.Close(); err == nil {
		err = cerr
	}
	return err
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if _, err := c.Backups.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// Confirm asks a yes/no question. Anything but "y" or "yes" is a no.
func (c *Context) Confirm(question string) (bool, error) {
	c.Printf("%s [y/N]: ", question)
	response, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// Today returns today's date in the configured timezone.
func (c *Context) Today() string {
	return utils.ToISO(utils.Today(c.Config.Location()))
}

// Client looks a client up by id. An empty id means the current selection.
func (c *Context) Client(id string) (models.Client, error) {
	st := c.Store.State()
	if id == "" {
		if cl, ok := st.CurrentClient(); ok {
			return cl, nil
		}
		return models.Client{}, fmt.Errorf("no client selected: pass --client or run '%s client use ID'", constants.AppName)
	}
	cl, ok := st.FindClient(id)
	if !ok {
		return models.Client{}, errors.ClientNotFound(id)
	}
	return cl, nil
}

// Card looks a card up by id.
func (c *Context) Card(id string) (models.ContentCard, error) {
	card, ok := c.Store.State().FindCard(id)
	if !ok {
		return models.ContentCard{}, errors.CardNotFound(id)
	}
	return card, nil
}

// TypeIcon returns the icon shown next to a card format.
func TypeIcon(kind string) string {
	if icon, ok := constants.TypeIcons[kind]; ok {
		return icon
	}
	return constants.DefaultTypeIcon
}

// FormatCard renders a card as a single list line.
func FormatCard(card models.ContentCard, showID bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", TypeIcon(card.Tipo), card.Titulo)
	if card.IsFavorite {
		b.WriteString(" ★")
	}
	fmt.Fprintf(&b, " [%s]", card.Status)
	if card.Pilar != "" {
		fmt.Fprintf(&b, " · %s", card.Pilar)
	}
	if card.TimeOpcional != "" {
		fmt.Fprintf(&b, " @ %s", card.TimeOpcional)
	}
	if len(card.Checklist) > 0 {
		done := 0
		for _, item := range card.Checklist {
			if item.Done {
				done++
			}
		}
		fmt.Fprintf(&b, " (%d/%d)", done, len(card.Checklist))
	}
	if showID {
		fmt.Fprintf(&b, " (ID: %s)", card.ID)
	}
	return b.String()
}
