package destfields

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-destform/pkg/destination"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type optionsResponse struct {
	Data []destination.FieldOption `json:"data"`
}

type validateResponse struct {
	Valid bool `json:"valid"`
}

// Handler builds a net/http handler with default options plus any overrides.
func Handler(fns ...OptionFn) http.Handler {
	return NewHandler(fns...)
}

func NewHandler(fns ...OptionFn) http.Handler {
	return HandlerWithOptions(NewOptions(fns...))
}

// HandlerWithOptions builds a chi router serving both routes under
// opts.RoutePath.
func HandlerWithOptions(opts Options) http.Handler {
	r := chi.NewRouter()
	mount(r, "", opts)
	return r
}

type handler struct {
	opts Options
}

func (h handler) optionsRoute(w http.ResponseWriter, r *http.Request) {
	field, ok := h.resolve(w, r)
	if !ok {
		return
	}
	if !field.IsSearchSelectable {
		http.Error(w, "field is not search-selectable", http.StatusBadRequest)
		return
	}

	query := r.URL.Query().Get(h.opts.SearchParam)
	limit := clampLimit(parseInt(r.URL.Query().Get(h.opts.LimitParam)), h.opts)

	var results []destination.FieldOption
	if limit > 0 && h.opts.Searcher != nil &&
		(strings.TrimSpace(query) != "" || h.opts.EmptySearchMode == EmptySearchTop) {
		found, err := h.opts.Searcher.SearchField(r.Context(), destination.SearchInput{
			Type:    chi.URLParam(r, "type"),
			FieldID: field.FieldID,
			Search:  query,
			First:   limit,
		})
		if err != nil {
			h.opts.Logger.Warn("destfields: search failed",
				"type", chi.URLParam(r, "type"), "field", field.FieldID, "error", err)
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
			return
		}
		results = Rank(found, query, limit, h.opts)
	}
	if results == nil {
		results = []destination.FieldOption{}
	}
	writeJSON(w, r, optionsResponse{Data: results})
}

func (h handler) validateRoute(w http.ResponseWriter, r *http.Request) {
	field, ok := h.resolve(w, r)
	if !ok {
		return
	}
	value := r.URL.Query().Get(h.opts.ValueParam)
	if !field.SupportsValidation || strings.TrimSpace(value) == "" {
		writeJSON(w, r, validateResponse{Valid: !field.SupportsValidation})
		return
	}
	if h.opts.Querier == nil {
		http.Error(w, http.StatusText(http.StatusNotImplemented), http.StatusNotImplemented)
		return
	}

	destType := chi.URLParam(r, "type")
	valid, err := h.opts.Querier.ValidateDestField(r.Context(), destType, field.FieldID, value)
	if err != nil {
		h.opts.Logger.Warn("destfields: validation failed",
			"type", destType, "field", field.FieldID, "error", err)
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	writeJSON(w, r, validateResponse{Valid: valid})
}

func (h handler) resolve(w http.ResponseWriter, r *http.Request) (destination.FieldConfig, bool) {
	if h.opts.Registry == nil {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return destination.FieldConfig{}, false
	}
	field, err := h.opts.Registry.Field(chi.URLParam(r, "type"), chi.URLParam(r, "fieldID"))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return destination.FieldConfig{}, false
	}
	return field, true
}

func (h handler) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.opts.Guard != nil {
			if err := h.opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(payload)
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}

func parseInt(raw string) int {
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
