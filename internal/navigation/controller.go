// Package navigation layers a browser-style history stack over a session
// store. The store stays the single owner of session state; the controller
// only remembers where the player has been.
package navigation

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/logging"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/registry"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/session"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
)

// Controller tracks visited scenes as a stack with a cursor, so Back and
// Forward replay earlier positions without mutating choice history.
type Controller struct {
	mu     sync.Mutex
	store  *session.Store
	reg    *registry.Registry
	stack  []string
	pos    int
	logger *slog.Logger
}

// Option configures the Controller.
type Option func(*Controller)

// WithLogger sets the logger (default no-op).
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Controller seeded with the store's current scene.
func New(store *session.Store, reg *registry.Registry, opts ...Option) *Controller {
	c := &Controller{
		store:  store,
		reg:    reg,
		stack:  []string{store.State().CurrentSceneID},
		pos:    0,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Current returns the scene ID at the cursor.
func (c *Controller) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stack[c.pos]
}

// History returns the visited scene IDs up to and including the cursor.
func (c *Controller) History() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, c.pos+1)
	copy(out, c.stack[:c.pos+1])
	return out
}

// PushScene navigates the store to sceneID and records it. A push while the
// cursor sits mid-stack discards the forward entries, the way a browser
// does. Unknown scenes leave both the store and the stack untouched.
func (c *Controller) PushScene(sceneID string) error {
	if err := c.store.NavigateTo(sceneID); err != nil {
		if errors.Is(err, domain.ErrSceneNotFound) {
			c.logger.Warn("navigation target missing, staying put", "sceneId", sceneID)
		}
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stack[c.pos] == sceneID {
		return nil
	}
	c.stack = append(c.stack[:c.pos+1], sceneID)
	c.pos++
	return nil
}

// CanGoBack reports whether Back would move. Going back is only offered
// once the player has actually made a choice and is past the entry scene.
func (c *Controller) CanGoBack() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canGoBackLocked()
}

func (c *Controller) canGoBackLocked() bool {
	if c.pos == 0 {
		return false
	}
	state := c.store.State()
	if len(state.ChoiceHistory) == 0 {
		return false
	}
	return c.stack[c.pos] != c.reg.EntryScene()
}

// CanGoForward reports whether Forward would move.
func (c *Controller) CanGoForward() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos < len(c.stack)-1
}

// Back moves the cursor one scene earlier and re-navigates the store there.
// Returns the scene ID landed on, or "" if backing up is not available.
func (c *Controller) Back() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.canGoBackLocked() {
		return ""
	}
	target := c.stack[c.pos-1]
	if err := c.store.NavigateTo(target); err != nil {
		c.logger.Warn("history entry no longer resolvable", "sceneId", target, "err", err)
		return ""
	}
	c.pos--
	return target
}

// Forward moves the cursor one scene later and re-navigates the store there.
// Returns the scene ID landed on, or "" if there is no forward entry.
func (c *Controller) Forward() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pos >= len(c.stack)-1 {
		return ""
	}
	target := c.stack[c.pos+1]
	if err := c.store.NavigateTo(target); err != nil {
		c.logger.Warn("history entry no longer resolvable", "sceneId", target, "err", err)
		return ""
	}
	c.pos++
	return target
}

// Reset clears the history and resets the session, landing back on the
// entry scene.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.ResetSession()
	c.stack = []string{c.store.State().CurrentSceneID}
	c.pos = 0
}
