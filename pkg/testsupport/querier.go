package testsupport

import (
	"context"
	"sync"
)

// ValidationCall records one ValidateDestField invocation.
type ValidationCall struct {
	Type    string
	FieldID string
	Value   string
}

// ScriptedQuerier is a programmable field validation backend. Results map raw
// values to validity, Errs map raw values to transport failures, and gated
// values block until Release is called so tests can control the order in
// which responses arrive.
type ScriptedQuerier struct {
	mu      sync.Mutex
	results map[string]bool
	errs    map[string]error
	gates   map[string]chan struct{}
	calls   []ValidationCall
	started chan ValidationCall

	// IgnoreCancel makes gated calls wait for Release even when their
	// context is cancelled, simulating a backend that answers late.
	IgnoreCancel bool
}

// NewScriptedQuerier constructs a querier that reports every value in valid
// as valid and everything else as invalid.
func NewScriptedQuerier(valid ...string) *ScriptedQuerier {
	q := &ScriptedQuerier{
		results: make(map[string]bool),
		errs:    make(map[string]error),
		gates:   make(map[string]chan struct{}),
		started: make(chan ValidationCall, 64),
	}
	for _, v := range valid {
		q.results[v] = true
	}
	return q
}

// Fail makes validation of value return err.
func (q *ScriptedQuerier) Fail(value string, err error) *ScriptedQuerier {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.errs[value] = err
	return q
}

// Hold blocks validation of value until Release(value) is called.
func (q *ScriptedQuerier) Hold(value string) *ScriptedQuerier {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.gates[value] = make(chan struct{})
	return q
}

// Release unblocks calls held for value.
func (q *ScriptedQuerier) Release(value string) {
	q.mu.Lock()
	gate, ok := q.gates[value]
	delete(q.gates, value)
	q.mu.Unlock()
	if ok {
		close(gate)
	}
}

// Started delivers every call as soon as it reaches the querier.
func (q *ScriptedQuerier) Started() <-chan ValidationCall {
	return q.started
}

// Calls returns the calls received so far.
func (q *ScriptedQuerier) Calls() []ValidationCall {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]ValidationCall(nil), q.calls...)
}

// ValidateDestField implements validation.Querier.
func (q *ScriptedQuerier) ValidateDestField(ctx context.Context, destType, fieldID, value string) (bool, error) {
	call := ValidationCall{Type: destType, FieldID: fieldID, Value: value}

	q.mu.Lock()
	q.calls = append(q.calls, call)
	gate := q.gates[value]
	err := q.errs[value]
	valid := q.results[value]
	q.mu.Unlock()

	select {
	case q.started <- call:
	default:
	}

	if gate != nil {
		if q.IgnoreCancel {
			<-gate
		} else {
			select {
			case <-gate:
			case <-ctx.Done():
				return false, ctx.Err()
			}
		}
	}

	if err != nil {
		return false, err
	}
	return valid, nil
}
