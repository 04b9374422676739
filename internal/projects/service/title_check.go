package service

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
)

// DefaultDebounce is the quiescence window before a scheduled title
// check fires.
const DefaultDebounce = 500 * time.Millisecond

// TitleQuerier is the read-only project query the checker needs.
type TitleQuerier interface {
	TitleExists(ctx context.Context, title, excludeID string) (bool, error)
}

// TitleCheckResult is the advisory outcome of one uniqueness check.
// A zero-valued result (empty Candidate) means "no status": the input
// was empty and any previous indicator should be cleared.
type TitleCheckResult struct {
	Candidate string `json:"candidate"`
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

// TitleChecker runs debounced, cancelable title uniqueness checks for
// one interactive editing session. Scheduling a new check cancels any
// pending timer before rescheduling; a result whose candidate no longer
// matches the latest input is dropped, never delivered.
//
// The check is advisory. Create and update do not re-enforce
// uniqueness, so two concurrent creators of the same title can both
// succeed; that race is accepted.
type TitleChecker struct {
	querier  TitleQuerier
	onResult func(TitleCheckResult)
	window   time.Duration

	mu        sync.Mutex
	timer     *time.Timer
	current   string
	excludeID string
}

// NewTitleChecker builds a checker for one session. excludeID is the
// project being edited, or empty when creating.
func NewTitleChecker(querier TitleQuerier, excludeID string, onResult func(TitleCheckResult)) *TitleChecker {
	return &TitleChecker{
		querier:   querier,
		onResult:  onResult,
		window:    DefaultDebounce,
		excludeID: excludeID,
	}
}

// WithWindow overrides the debounce window. Tests use short windows.
func (t *TitleChecker) WithWindow(d time.Duration) *TitleChecker {
	t.window = d
	return t
}

// Input records a keystroke-driven change to the candidate title and
// reschedules the pending check. Cancellation of the previous timer is
// synchronous and happens before the new one is armed.
func (t *TitleChecker) Input(ctx context.Context, candidate string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.current = candidate

	if strings.TrimSpace(candidate) == "" {
		// Empty input short-circuits to "no status" without querying.
		if t.onResult != nil {
			t.onResult(TitleCheckResult{})
		}
		return
	}

	t.timer = time.AfterFunc(t.window, func() {
		t.runCheck(ctx, candidate)
	})
}

// Cancel stops any pending check. Safe to call at session teardown.
func (t *TitleChecker) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *TitleChecker) runCheck(ctx context.Context, candidate string) {
	res, err := t.Check(ctx, candidate)
	if err != nil {
		log.Printf("[titlecheck] query failed for %q: %v", candidate, err)
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current != candidate {
		// Input moved on while the query was in flight; drop silently.
		return
	}
	if t.onResult != nil {
		t.onResult(res)
	}
}

// Check queries immediately, bypassing the debounce. Used by the timer
// callback and by non-interactive callers.
func (t *TitleChecker) Check(ctx context.Context, candidate string) (TitleCheckResult, error) {
	exists, err := t.querier.TitleExists(ctx, strings.TrimSpace(candidate), t.excludeID)
	if err != nil {
		return TitleCheckResult{}, err
	}

	res := TitleCheckResult{Candidate: candidate, Available: !exists}
	if exists {
		res.Message = "Ya existe un proyecto con este título"
	} else {
		res.Message = "Título disponible"
	}
	return res, nil
}
