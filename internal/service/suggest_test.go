package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/placehub/placehub-api/internal/config"
	"github.com/placehub/placehub-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAutocompleter records calls and can hold a response back behind a
// gate to simulate a slow upstream
type fakeAutocompleter struct {
	mu      sync.Mutex
	calls   []string
	gates   map[string]chan struct{}
	results map[string][]model.CitySuggestion
	errs    map[string]error
}

func newFakeAutocompleter() *fakeAutocompleter {
	return &fakeAutocompleter{
		gates:   make(map[string]chan struct{}),
		results: make(map[string][]model.CitySuggestion),
		errs:    make(map[string]error),
	}
}

func (f *fakeAutocompleter) Autocomplete(ctx context.Context, text string, limit int) ([]model.CitySuggestion, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	gate := f.gates[text]
	res := f.results[text]
	err := f.errs[text]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return res, err
}

func (f *fakeAutocompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAutocompleter) lastCall() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[len(f.calls)-1]
}

func testSearchConfig() config.SearchConfig {
	return config.SearchConfig{
		DebounceInterval: 20 * time.Millisecond,
		MaxSuggestions:   5,
		MinQueryLength:   2,
	}
}

func suggestion(name string) model.CitySuggestion {
	return model.CitySuggestion{DisplayName: name}
}

func TestSuggestionController_ShortInputSettlesSynchronously(t *testing.T) {
	client := newFakeAutocompleter()
	ctrl := NewSearchSuggestionController(client, testSearchConfig(), nil, zap.NewNop())
	defer ctrl.Close()

	ctrl.OnInputChanged("a")

	snap := ctrl.Snapshot()
	assert.Equal(t, SuggestSettled, snap.State)
	assert.Empty(t, snap.Suggestions)
	assert.NoError(t, snap.Err)

	// Past the debounce window: still no network call
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, client.callCount())
}

func TestSuggestionController_DebounceCoalescesRapidTyping(t *testing.T) {
	client := newFakeAutocompleter()
	client.results["abc"] = []model.CitySuggestion{suggestion("Ahmedabad, Gujarat, India")}
	ctrl := NewSearchSuggestionController(client, testSearchConfig(), nil, zap.NewNop())
	defer ctrl.Close()

	// "a" is sub-threshold, "ab" and "abc" land inside one debounce window
	ctrl.OnInputChanged("a")
	ctrl.OnInputChanged("ab")
	time.Sleep(5 * time.Millisecond)
	ctrl.OnInputChanged("abc")

	require.Eventually(t, func() bool {
		return ctrl.Snapshot().State == SuggestSettled && ctrl.Snapshot().Suggestions != nil
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, client.callCount())
	assert.Equal(t, "abc", client.lastCall())
	assert.Equal(t, "Ahmedabad, Gujarat, India", ctrl.Snapshot().Suggestions[0].DisplayName)
}

func TestSuggestionController_StaleResponseDiscarded(t *testing.T) {
	client := newFakeAutocompleter()
	gate := make(chan struct{})
	client.gates["ah"] = gate
	client.results["ah"] = []model.CitySuggestion{suggestion("stale")}
	client.results["ahme"] = []model.CitySuggestion{suggestion("Ahmedabad, Gujarat, India")}
	ctrl := NewSearchSuggestionController(client, testSearchConfig(), nil, zap.NewNop())
	defer ctrl.Close()

	ctrl.OnInputChanged("ah")
	require.Eventually(t, func() bool { return client.callCount() == 1 }, time.Second, time.Millisecond)

	// Newer input arrives while "ah" is still in flight
	ctrl.OnInputChanged("ahme")
	require.Eventually(t, func() bool {
		snap := ctrl.Snapshot()
		return snap.State == SuggestSettled && len(snap.Suggestions) == 1
	}, time.Second, time.Millisecond)

	// Now the old response arrives; it must not overwrite the newer result
	close(gate)
	require.Eventually(t, func() bool { return ctrl.StaleDiscarded() == 1 }, time.Second, time.Millisecond)

	snap := ctrl.Snapshot()
	assert.Equal(t, SuggestSettled, snap.State)
	require.Len(t, snap.Suggestions, 1)
	assert.Equal(t, "Ahmedabad, Gujarat, India", snap.Suggestions[0].DisplayName)
}

func TestSuggestionController_UpstreamFailureAbsorbed(t *testing.T) {
	client := newFakeAutocompleter()
	upstreamErr := errors.New("upstream error: status 502")
	client.errs["berlin"] = upstreamErr
	ctrl := NewSearchSuggestionController(client, testSearchConfig(), nil, zap.NewNop())
	defer ctrl.Close()

	ctrl.OnInputChanged("berlin")

	require.Eventually(t, func() bool {
		return ctrl.Snapshot().State == SuggestFailed
	}, time.Second, time.Millisecond)

	snap := ctrl.Snapshot()
	assert.Empty(t, snap.Suggestions)
	assert.ErrorIs(t, snap.Err, upstreamErr)
}

func TestSuggestionController_SelectResetsToIdle(t *testing.T) {
	client := newFakeAutocompleter()
	client.results["ahme"] = []model.CitySuggestion{suggestion("Ahmedabad, Gujarat, India")}
	ctrl := NewSearchSuggestionController(client, testSearchConfig(), nil, zap.NewNop())
	defer ctrl.Close()

	ctrl.OnInputChanged("ahme")
	require.Eventually(t, func() bool {
		return ctrl.Snapshot().State == SuggestSettled
	}, time.Second, time.Millisecond)

	ctrl.Select(suggestion("Ahmedabad, Gujarat, India"))

	snap := ctrl.Snapshot()
	assert.Equal(t, SuggestIdle, snap.State)
	assert.Empty(t, snap.Suggestions)
}

func TestSuggestionController_PendingTimerCanceledBySelect(t *testing.T) {
	client := newFakeAutocompleter()
	ctrl := NewSearchSuggestionController(client, testSearchConfig(), nil, zap.NewNop())
	defer ctrl.Close()

	ctrl.OnInputChanged("ahme")
	assert.Equal(t, SuggestDebouncing, ctrl.Snapshot().State)

	ctrl.Select(suggestion("Ahmedabad, Gujarat, India"))

	// Past the debounce window: the canceled timer never fired
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, client.callCount())
	assert.Equal(t, SuggestIdle, ctrl.Snapshot().State)
}

func TestSuggestionController_NoPendingCancelAfterSettling(t *testing.T) {
	client := newFakeAutocompleter()
	client.results["ahme"] = []model.CitySuggestion{suggestion("Ahmedabad, Gujarat, India")}
	ctrl := NewSearchSuggestionController(client, testSearchConfig(), nil, zap.NewNop())
	defer ctrl.Close()

	ctrl.OnInputChanged("ahme")
	require.Eventually(t, func() bool {
		return ctrl.Snapshot().State == SuggestSettled
	}, time.Second, time.Millisecond)

	// Once the request has been applied there is nothing left to cancel
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	assert.Nil(t, ctrl.cancel)
	assert.Nil(t, ctrl.timer)
}

func TestSuggestionController_ListenerReceivesEmissions(t *testing.T) {
	client := newFakeAutocompleter()
	client.results["ahme"] = []model.CitySuggestion{suggestion("Ahmedabad, Gujarat, India")}

	var mu sync.Mutex
	var states []SuggestState
	listener := func(snap SuggestSnapshot) {
		mu.Lock()
		states = append(states, snap.State)
		mu.Unlock()
	}

	ctrl := NewSearchSuggestionController(client, testSearchConfig(), listener, zap.NewNop())
	defer ctrl.Close()

	ctrl.OnInputChanged("ahme")
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(states) >= 3
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []SuggestState{SuggestDebouncing, SuggestInFlight, SuggestSettled}, states[:3])
}
