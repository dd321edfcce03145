package validation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/goliatone/go-destform/pkg/destination"
)

var (
	// ErrSuperseded is returned to callers whose request was replaced by a
	// newer one for the same field, or invalidated by a type switch, before it
	// completed. Their result is discarded.
	ErrSuperseded = errors.New("validation: superseded by a newer request")
	// ErrNoQuerier is returned when a validator has no backend.
	ErrNoQuerier = errors.New("validation: querier is not configured")
)

// Querier checks a single raw value with the server.
type Querier interface {
	ValidateDestField(ctx context.Context, destType, fieldID, value string) (bool, error)
}

// QuerierFunc adapts a function to Querier.
type QuerierFunc func(ctx context.Context, destType, fieldID, value string) (bool, error)

// ValidateDestField implements Querier.
func (fn QuerierFunc) ValidateDestField(ctx context.Context, destType, fieldID, value string) (bool, error) {
	return fn(ctx, destType, fieldID, value)
}

// Status is the validity recorded for a field.
type Status int

const (
	// StatusUnknown means no validation has completed for the current value.
	StatusUnknown Status = iota
	// StatusPending means a request is in flight.
	StatusPending
	// StatusValid means the server accepted the value.
	StatusValid
	// StatusInvalid means the server rejected the value.
	StatusInvalid
	// StatusFailed means the request itself failed; validity is unknown.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Blocking reports whether the status prevents submission. Only a known
// invalid value blocks.
func (s Status) Blocking() bool {
	return s == StatusInvalid
}

// Key identifies a validated field.
type Key struct {
	Type    string
	FieldID string
}

// Result is the outcome of one validation request.
type Result struct {
	Key    Key
	Value  string
	Status Status
	Err    error
	Seq    uint64
}

// Option configures a Validator.
type Option func(*Validator)

// WithDebounce delays every request by d; a newer request for the same field
// issued within the window replaces the pending one before it reaches the
// server.
func WithDebounce(d time.Duration) Option {
	return func(v *Validator) {
		if d > 0 {
			v.debounce = d
		}
	}
}

// WithRateLimit caps outbound requests at rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(v *Validator) {
		if rps <= 0 {
			return
		}
		if burst <= 0 {
			burst = 1
		}
		v.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLimiter shares an existing limiter between validators.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(v *Validator) {
		v.limiter = limiter
	}
}

// Recorder observes every completed request, including results discarded as
// stale.
type Recorder interface {
	RecordValidation(ctx context.Context, res Result, elapsed time.Duration, discarded bool)
}

// WithRecorder reports request outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(v *Validator) {
		v.recorder = r
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

type entry struct {
	seq    uint64
	cancel context.CancelFunc
	result Result
}

// Validator issues field validations with last-issued-wins semantics. It is
// safe for concurrent use.
type Validator struct {
	querier  Querier
	limiter  *rate.Limiter
	debounce time.Duration
	logger   *slog.Logger
	recorder Recorder

	mu      sync.Mutex
	seq     uint64
	entries map[Key]*entry
	wg      sync.WaitGroup
}

// New constructs a Validator backed by q.
func New(q Querier, options ...Option) *Validator {
	v := &Validator{
		querier: q,
		logger:  slog.Default(),
		entries: make(map[Key]*entry),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(v)
	}
	return v
}

// Validate checks value for (destType, fieldID) and blocks until the server
// answers. A call replaced by a newer call for the same field, or invalidated
// with InvalidateType/Reset, returns ErrSuperseded and records nothing.
// Transport failures are returned as a Result with StatusFailed and a nil
// error.
func (v *Validator) Validate(ctx context.Context, destType, fieldID, value string) (Result, error) {
	if v == nil || v.querier == nil {
		return Result{}, ErrNoQuerier
	}
	key := Key{Type: destType, FieldID: fieldID}
	start := time.Now()
	reqCtx, seq := v.begin(ctx, key, value)

	if v.debounce > 0 {
		timer := time.NewTimer(v.debounce)
		select {
		case <-timer.C:
		case <-reqCtx.Done():
			timer.Stop()
			return v.abandon(ctx, key, seq)
		}
	}

	res := Result{Key: key, Value: value, Seq: seq}
	if v.limiter != nil {
		if err := v.limiter.Wait(reqCtx); err != nil {
			if reqCtx.Err() != nil {
				return v.abandon(ctx, key, seq)
			}
			res.Status = StatusFailed
			res.Err = err
			return v.complete(ctx, start, res)
		}
	}

	valid, err := v.querier.ValidateDestField(reqCtx, destType, fieldID, value)
	if err != nil && ctx.Err() != nil && v.current(key, seq) {
		return v.abandon(ctx, key, seq)
	}

	switch {
	case err != nil:
		res.Status = StatusFailed
		res.Err = err
	case valid:
		res.Status = StatusValid
	default:
		res.Status = StatusInvalid
	}
	return v.complete(ctx, start, res)
}

func (v *Validator) complete(ctx context.Context, start time.Time, res Result) (Result, error) {
	current := v.finish(res.Key, res.Seq, res)
	if v.recorder != nil {
		v.recorder.RecordValidation(ctx, res, time.Since(start), !current)
	}
	if !current {
		v.logger.Debug("validation: discarding stale result",
			"type", res.Key.Type, "field", res.Key.FieldID, "seq", res.Seq, "status", res.Status.String())
		return Result{}, ErrSuperseded
	}
	if res.Err != nil {
		v.logger.Warn("validation: request failed",
			"type", res.Key.Type, "field", res.Key.FieldID, "error", res.Err)
	}
	return res, nil
}

// ValidateField validates value for field, treating fields without remote
// validation support as valid without contacting the server.
func (v *Validator) ValidateField(ctx context.Context, destType string, field destination.FieldConfig, value string) (Result, error) {
	if !field.SupportsValidation {
		return Skip(destType, field, value), nil
	}
	return v.Validate(ctx, destType, field.FieldID, value)
}

// Skip is the result reported for fields that do not support remote
// validation.
func Skip(destType string, field destination.FieldConfig, value string) Result {
	return Result{
		Key:    Key{Type: destType, FieldID: field.FieldID},
		Value:  value,
		Status: StatusValid,
	}
}

// ValidateAsync runs Validate in a goroutine and passes the result to fn
// unless the request was superseded. fn may still race a newer request issued
// after the result was recorded; callers that need certainty check Current.
func (v *Validator) ValidateAsync(ctx context.Context, destType, fieldID, value string, fn func(Result)) {
	if v == nil {
		return
	}
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		res, err := v.Validate(ctx, destType, fieldID, value)
		if err != nil || fn == nil {
			return
		}
		fn(res)
	}()
}

// Wait blocks until every ValidateAsync goroutine has returned.
func (v *Validator) Wait() {
	if v == nil {
		return
	}
	v.wg.Wait()
}

// Status returns the latest recorded result for a field.
func (v *Validator) Status(destType, fieldID string) Result {
	key := Key{Type: destType, FieldID: fieldID}
	if v == nil {
		return Result{Key: key}
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	e, ok := v.entries[key]
	if !ok {
		return Result{Key: key}
	}
	return e.result
}

// Current reports whether res is the newest request issued for its field.
func (v *Validator) Current(res Result) bool {
	if v == nil {
		return false
	}
	return v.current(res.Key, res.Seq)
}

// Cancel aborts any in-flight request for a field and forgets its status.
func (v *Validator) Cancel(destType, fieldID string) {
	if v == nil {
		return
	}
	key := Key{Type: destType, FieldID: fieldID}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.dropLocked(key)
}

// InvalidateType aborts every in-flight request for destType. Their results
// are discarded on arrival.
func (v *Validator) InvalidateType(destType string) {
	if v == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	for key := range v.entries {
		if key.Type == destType {
			v.dropLocked(key)
		}
	}
}

// Reset aborts every in-flight request and forgets all statuses.
func (v *Validator) Reset() {
	if v == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	for key := range v.entries {
		v.dropLocked(key)
	}
}

func (v *Validator) dropLocked(key Key) {
	e, ok := v.entries[key]
	if !ok {
		return
	}
	if e.cancel != nil {
		e.cancel()
	}
	delete(v.entries, key)
}

func (v *Validator) begin(ctx context.Context, key Key, value string) (context.Context, uint64) {
	reqCtx, cancel := context.WithCancel(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()

	v.seq++
	seq := v.seq
	e, ok := v.entries[key]
	if !ok {
		e = &entry{}
		v.entries[key] = e
	}
	if e.cancel != nil {
		e.cancel()
	}
	e.seq = seq
	e.cancel = cancel
	e.result = Result{Key: key, Value: value, Status: StatusPending, Seq: seq}
	return reqCtx, seq
}

func (v *Validator) finish(key Key, seq uint64, res Result) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	e, ok := v.entries[key]
	if !ok || e.seq != seq {
		return false
	}
	e.result = res
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	return true
}

func (v *Validator) current(key Key, seq uint64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	e, ok := v.entries[key]
	return ok && e.seq == seq
}

// abandon handles a request that stopped before the server answered. When it
// is still the newest request the caller's context ended, so the field goes
// back to unknown and the context error is returned.
func (v *Validator) abandon(ctx context.Context, key Key, seq uint64) (Result, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	e, ok := v.entries[key]
	if !ok || e.seq != seq {
		return Result{}, ErrSuperseded
	}
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.result = Result{Key: key, Value: e.result.Value, Status: StatusUnknown, Seq: seq}
	if err := ctx.Err(); err != nil {
		return e.result, err
	}
	return e.result, context.Canceled
}
