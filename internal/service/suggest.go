package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/placehub/placehub-api/internal/config"
	"github.com/placehub/placehub-api/internal/model"
	"go.uber.org/zap"
)

// SuggestState is the controller's observable state
type SuggestState int

const (
	SuggestIdle SuggestState = iota
	SuggestDebouncing
	SuggestInFlight
	SuggestSettled
	SuggestFailed
)

func (s SuggestState) String() string {
	switch s {
	case SuggestIdle:
		return "idle"
	case SuggestDebouncing:
		return "debouncing"
	case SuggestInFlight:
		return "in_flight"
	case SuggestSettled:
		return "settled"
	case SuggestFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Autocompleter is the upstream primitive the controller queries
type Autocompleter interface {
	Autocomplete(ctx context.Context, text string, limit int) ([]model.CitySuggestion, error)
}

// SuggestSnapshot is one observable emission of the controller
type SuggestSnapshot struct {
	State       SuggestState
	Suggestions []model.CitySuggestion
	Err         error
}

// SearchSuggestionController debounces free-text input and issues
// cancelable autocomplete requests. Each triggered request carries the
// generation number active at trigger time; a response is applied only if
// that number is still current, so a stale in-flight result can never
// overwrite the state produced by newer input.
type SearchSuggestionController struct {
	client   Autocompleter
	cfg      config.SearchConfig
	logger   *zap.Logger
	listener func(SuggestSnapshot)

	mu          sync.Mutex
	state       SuggestState
	suggestions []model.CitySuggestion
	err         error
	generation  uint64
	timer       *time.Timer
	cancel      context.CancelFunc

	stale atomic.Int64
}

// NewSearchSuggestionController creates an idle controller. The listener
// receives every state emission and must not call back into the
// controller synchronously.
func NewSearchSuggestionController(client Autocompleter, cfg config.SearchConfig, listener func(SuggestSnapshot), logger *zap.Logger) *SearchSuggestionController {
	return &SearchSuggestionController{
		client:   client,
		cfg:      cfg,
		logger:   logger,
		listener: listener,
		state:    SuggestIdle,
	}
}

// OnInputChanged feeds one keystroke batch into the controller.
// Sub-threshold input settles to an empty list synchronously with no
// network call; anything longer restarts the debounce timer.
func (c *SearchSuggestionController) OnInputChanged(text string) {
	c.mu.Lock()

	c.supersedeLocked()

	if utf8.RuneCountInString(text) < c.cfg.MinQueryLength {
		c.state = SuggestSettled
		c.suggestions = nil
		c.err = nil
		c.emitAndUnlock()
		return
	}

	gen := c.generation
	c.state = SuggestDebouncing
	c.timer = time.AfterFunc(c.cfg.DebounceInterval, func() {
		c.fire(gen, text)
	})
	c.emitAndUnlock()
}

// Select resets the controller after the user picks a suggestion
func (c *SearchSuggestionController) Select(model.CitySuggestion) {
	c.mu.Lock()
	c.supersedeLocked()
	c.state = SuggestIdle
	c.suggestions = nil
	c.err = nil
	c.emitAndUnlock()
}

// Close cancels any pending timer and in-flight request
func (c *SearchSuggestionController) Close() {
	c.mu.Lock()
	c.supersedeLocked()
	c.state = SuggestIdle
	c.mu.Unlock()
}

// Snapshot returns the current observable state
func (c *SearchSuggestionController) Snapshot() SuggestSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SuggestSnapshot{
		State:       c.state,
		Suggestions: append([]model.CitySuggestion(nil), c.suggestions...),
		Err:         c.err,
	}
}

// StaleDiscarded reports how many in-flight responses were dropped for
// arriving after newer input
func (c *SearchSuggestionController) StaleDiscarded() int64 {
	return c.stale.Load()
}

// supersedeLocked advances the generation and tears down whatever the
// previous generation still had pending. Timer cancellation is total;
// request cancellation is soft, the response is discarded on arrival.
func (c *SearchSuggestionController) supersedeLocked() {
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// fire runs on the debounce timer goroutine
func (c *SearchSuggestionController) fire(gen uint64, text string) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.state = SuggestInFlight
	c.emitAndUnlock()

	suggestions, err := c.client.Autocomplete(ctx, text, c.cfg.MaxSuggestions)
	cancel()

	c.mu.Lock()
	if gen != c.generation {
		// c.cancel now belongs to the newer generation, leave it alone
		c.stale.Add(1)
		c.mu.Unlock()
		return
	}
	c.cancel = nil
	if err != nil {
		// Absorbed locally: a broken autocomplete must not block
		// city selection.
		c.logger.Warn("Autocomplete request failed", zap.String("text", text), zap.Error(err))
		c.state = SuggestFailed
		c.suggestions = nil
		c.err = err
	} else {
		c.state = SuggestSettled
		c.suggestions = suggestions
		c.err = nil
	}
	c.emitAndUnlock()
}

// emitAndUnlock snapshots state, releases the lock, then notifies the
// listener outside of it
func (c *SearchSuggestionController) emitAndUnlock() {
	snapshot := SuggestSnapshot{
		State:       c.state,
		Suggestions: append([]model.CitySuggestion(nil), c.suggestions...),
		Err:         c.err,
	}
	listener := c.listener
	c.mu.Unlock()

	if listener != nil {
		listener(snapshot)
	}
}
