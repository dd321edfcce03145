package destfields

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-destform/pkg/destination"
	"github.com/goliatone/go-destform/pkg/testsupport"
)

type stubSearcher struct {
	options []destination.FieldOption
	err     error
	got     destination.SearchInput
}

func (s *stubSearcher) SearchField(_ context.Context, in destination.SearchInput) ([]destination.FieldOption, error) {
	s.got = in
	return s.options, s.err
}

type handlerResponse struct {
	Data []destination.FieldOption `json:"data"`
}

func channelOptions() []destination.FieldOption {
	return []destination.FieldOption{
		{Label: "random", Value: "C3"},
		{Label: "general-alerts", Value: "C2"},
		{Label: "alerts", Value: "C1"},
		{Label: "team-alerts", Value: "C4", IsFavorite: true},
	}
}

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func optionsURL(destType, fieldID, query string) string {
	return "/api/destinations/" + destType + "/fields/" + fieldID + "/options" + query
}

func validateURL(destType, fieldID, query string) string {
	return "/api/destinations/" + destType + "/fields/" + fieldID + "/validate" + query
}

func TestOptionsRankedAndLimited(t *testing.T) {
	searcher := &stubSearcher{options: channelOptions()}
	h := NewHandler(
		WithRegistry(testsupport.Registry(t)),
		WithSearcher(searcher),
		WithLimits(10, 3),
	)

	rec := serve(t, h, http.MethodGet, optionsURL(testsupport.TypeSlackChannel, testsupport.FieldSlackChannel, "?q=alerts&limit=50"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload handlerResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := []destination.FieldOption{
		{Label: "team-alerts", Value: "C4", IsFavorite: true},
		{Label: "alerts", Value: "C1"},
		{Label: "general-alerts", Value: "C2"},
	}
	if diff := cmp.Diff(want, payload.Data); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	wantInput := destination.SearchInput{
		Type:    testsupport.TypeSlackChannel,
		FieldID: testsupport.FieldSlackChannel,
		Search:  "alerts",
		First:   3,
	}
	if diff := cmp.Diff(wantInput, searcher.got); diff != "" {
		t.Fatalf("search input mismatch (-want +got):\n%s", diff)
	}
}

func TestOptionsEmptySearchNone(t *testing.T) {
	searcher := &stubSearcher{options: channelOptions()}
	h := NewHandler(
		WithRegistry(testsupport.Registry(t)),
		WithSearcher(searcher),
		WithEmptySearchMode(EmptySearchNone),
	)

	rec := serve(t, h, http.MethodGet, optionsURL(testsupport.TypeSlackChannel, testsupport.FieldSlackChannel, ""))
	var payload handlerResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Data == nil || len(payload.Data) != 0 {
		t.Fatalf("expected empty data array, got %#v", payload.Data)
	}
	if searcher.got.FieldID != "" {
		t.Fatalf("searcher should not be called for empty queries")
	}
}

func TestOptionsErrors(t *testing.T) {
	reg := testsupport.Registry(t)
	h := NewHandler(WithRegistry(reg), WithSearcher(&stubSearcher{err: errors.New("boom")}))

	cases := []struct {
		name   string
		method string
		target string
		want   int
	}{
		{"unknown type", http.MethodGet, optionsURL("builtin-nope", testsupport.FieldSlackChannel, ""), http.StatusNotFound},
		{"unknown field", http.MethodGet, optionsURL(testsupport.TypeSlackChannel, "nope", ""), http.StatusNotFound},
		{"not searchable", http.MethodGet, optionsURL(testsupport.TypeSMS, testsupport.FieldPhoneNumber, ""), http.StatusBadRequest},
		{"search failure", http.MethodGet, optionsURL(testsupport.TypeSlackChannel, testsupport.FieldSlackChannel, "?q=a"), http.StatusBadGateway},
		{"method not allowed", http.MethodPost, optionsURL(testsupport.TypeSlackChannel, testsupport.FieldSlackChannel, ""), http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, h, tc.method, tc.target)
			if rec.Code != tc.want {
				t.Fatalf("expected status %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestValidateRoute(t *testing.T) {
	q := testsupport.NewScriptedQuerier("12225550123").Fail("500", errors.New("unavailable"))
	h := NewHandler(WithRegistry(testsupport.Registry(t)), WithQuerier(q))

	cases := []struct {
		name   string
		target string
		code   int
		valid  bool
	}{
		{"valid", validateURL(testsupport.TypeSMS, testsupport.FieldPhoneNumber, "?value=12225550123"), http.StatusOK, true},
		{"invalid", validateURL(testsupport.TypeSMS, testsupport.FieldPhoneNumber, "?value=123"), http.StatusOK, false},
		{"not validated remotely", validateURL(testsupport.TypeSlackChannel, testsupport.FieldSlackChannel, "?value=C1"), http.StatusOK, true},
		{"transport failure", validateURL(testsupport.TypeSMS, testsupport.FieldPhoneNumber, "?value=500"), http.StatusBadGateway, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, h, http.MethodGet, tc.target)
			if rec.Code != tc.code {
				t.Fatalf("expected status %d, got %d", tc.code, rec.Code)
			}
			if tc.code != http.StatusOK {
				return
			}
			var payload validateResponse
			if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if payload.Valid != tc.valid {
				t.Fatalf("expected valid=%v, got %v", tc.valid, payload.Valid)
			}
		})
	}

	for _, call := range q.Calls() {
		if call.FieldID == testsupport.FieldSlackChannel {
			t.Fatalf("fields without remote validation must not reach the querier")
		}
	}
}

func TestGuardRejects(t *testing.T) {
	h := NewHandler(
		WithRegistry(testsupport.Registry(t)),
		WithGuard(func(r *http.Request) error {
			return StatusError{Code: http.StatusUnauthorized}
		}),
	)
	rec := serve(t, h, http.MethodGet, validateURL(testsupport.TypeSMS, testsupport.FieldPhoneNumber, "?value=1"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}

	h = NewHandler(
		WithRegistry(testsupport.Registry(t)),
		WithGuard(func(r *http.Request) error { return errors.New("nope") }),
	)
	rec = serve(t, h, http.MethodGet, validateURL(testsupport.TypeSMS, testsupport.FieldPhoneNumber, "?value=1"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestHeadReturnsNoBody(t *testing.T) {
	h := NewHandler(WithRegistry(testsupport.Registry(t)), WithSearcher(&stubSearcher{options: channelOptions()}))
	rec := serve(t, h, http.MethodHead, optionsURL(testsupport.TypeSlackChannel, testsupport.FieldSlackChannel, "?q=a"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body for HEAD, got %q", rec.Body.String())
	}
}

func TestRank(t *testing.T) {
	opts := NewOptions()
	got := Rank(channelOptions(), "", 2, opts)
	want := []destination.FieldOption{
		{Label: "team-alerts", Value: "C4", IsFavorite: true},
		{Label: "alerts", Value: "C1"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rank mismatch (-want +got):\n%s", diff)
	}
	if got := Rank(channelOptions(), "C3", 10, opts); len(got) != 1 || got[0].Label != "random" {
		t.Fatalf("expected value match, got %#v", got)
	}
	if got := Rank(channelOptions(), "a", -1, opts); got != nil {
		t.Fatalf("expected nil for negative limit, got %#v", got)
	}
}

func TestRegisterRoutesOnChiRouter(t *testing.T) {
	r := chi.NewRouter()
	prefix, err := RegisterRoutes(r, "/admin", WithRegistry(testsupport.Registry(t)), WithQuerier(testsupport.NewScriptedQuerier("x")))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if prefix != "/admin/api/destinations" {
		t.Fatalf("unexpected prefix: %q", prefix)
	}
	rec := serve(t, r, http.MethodGet, "/admin"+validateURL(testsupport.TypeSMS, testsupport.FieldPhoneNumber, "?value=x"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	if _, err := RegisterRoutes(nil, "/"); err == nil {
		t.Fatalf("expected error for nil router")
	}
}

func TestMountPath(t *testing.T) {
	if got := MountPath("/admin"); got != "/admin/api/destinations" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath("admin/", WithRoutePath("dest/")); got != "/admin/dest" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath("", WithRoutePath("/")); got != "/" {
		t.Fatalf("unexpected mount path: %q", got)
	}
}
