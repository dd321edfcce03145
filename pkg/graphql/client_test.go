package graphql_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/goliatone/go-destform/pkg/destination"
	"github.com/goliatone/go-destform/pkg/errutil"
	"github.com/goliatone/go-destform/pkg/form"
	"github.com/goliatone/go-destform/pkg/graphql"
	"github.com/goliatone/go-destform/pkg/testsupport"
)

type recorded struct {
	header http.Header
	body   gjson.Result
}

// graphQLServer answers every request with respond and records the request.
func graphQLServer(t *testing.T, respond func(req gjson.Result) (int, string)) (*httptest.Server, *[]recorded) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		data, _ := io.ReadAll(r.Body)
		body := gjson.ParseBytes(data)
		mu.Lock()
		reqs = append(reqs, recorded{header: r.Header.Clone(), body: body})
		mu.Unlock()

		status, payload := respond(body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, payload)
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func TestDestinationTypesFetchedOnce(t *testing.T) {
	types := testsupport.RegistryTypes(t)
	payload, err := json.Marshal(map[string]any{"data": map[string]any{"destinationTypes": types}})
	require.NoError(t, err)

	var hits atomic.Int32
	srv, _ := graphQLServer(t, func(gjson.Result) (int, string) {
		hits.Add(1)
		return http.StatusOK, string(payload)
	})
	client := graphql.New(srv.URL)
	ctx := testsupport.Context()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.DestinationTypes(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := client.DestinationTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
	require.Len(t, got, len(types))

	disabled := got[len(got)-1]
	assert.Equal(t, testsupport.TypeDisabled, disabled.Type)
	assert.NotContains(t, disabled.DisabledMessage, "<b>")

	reg, err := client.Registry(ctx)
	require.NoError(t, err)
	assert.True(t, reg.Has(testsupport.TypeSMS))
}

func TestValidateDestField(t *testing.T) {
	srv, reqs := graphQLServer(t, func(req gjson.Result) (int, string) {
		valid := req.Get("variables.input.value").String() == "12225550123"
		if valid {
			return http.StatusOK, `{"data":{"destinationFieldValidate":true}}`
		}
		return http.StatusOK, `{"data":{"destinationFieldValidate":false}}`
	})
	client := graphql.New(srv.URL, graphql.WithBearerToken("secret"), graphql.WithHeader("X-Client", "destform"))
	ctx := testsupport.Context()

	ok, err := client.ValidateDestField(ctx, testsupport.TypeSMS, testsupport.FieldPhoneNumber, "12225550123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.ValidateDestField(ctx, testsupport.TypeSMS, testsupport.FieldPhoneNumber, "123")
	require.NoError(t, err)
	assert.False(t, ok)

	require.Len(t, *reqs, 2)
	first := (*reqs)[0]
	assert.Equal(t, "Bearer secret", first.header.Get("Authorization"))
	assert.Equal(t, "destform", first.header.Get("X-Client"))
	assert.Equal(t, testsupport.TypeSMS, first.body.Get("variables.input.destType").String())
	assert.Equal(t, testsupport.FieldPhoneNumber, first.body.Get("variables.input.fieldID").String())
	assert.Contains(t, first.body.Get("query").String(), "destinationFieldValidate")
}

func TestDoReturnsStructuredErrors(t *testing.T) {
	srv, _ := graphQLServer(t, func(gjson.Result) (int, string) {
		return http.StatusOK, `{"data":null,"errors":[
			{"message":"invalid number","path":["destinationDisplayInfo","input"],
			 "extensions":{"code":"INVALID_DEST_FIELD_VALUE","fieldID":"phone-number"}},
			{"message":"generic error"}
		]}`
	})
	client := graphql.New(srv.URL)

	_, err := client.DestinationDisplayInfo(testsupport.Context(), destination.Input{Type: testsupport.TypeSMS})
	var errs errutil.Errors
	require.True(t, errors.As(err, &errs), "expected errutil.Errors, got %T", err)

	want := errutil.Errors{
		{
			Message: "invalid number",
			Path:    errutil.Path{"destinationDisplayInfo", "input"},
			Extensions: &errutil.Extensions{
				Code:    errutil.CodeInvalidDestFieldValue,
				FieldID: testsupport.FieldPhoneNumber,
			},
		},
		{Message: "generic error"},
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestDoTransportErrors(t *testing.T) {
	srv, _ := graphQLServer(t, func(gjson.Result) (int, string) {
		return http.StatusBadGateway, "upstream down"
	})
	client := graphql.New(srv.URL)

	_, err := client.ValidateDestField(testsupport.Context(), testsupport.TypeSMS, testsupport.FieldPhoneNumber, "1")
	var terr *graphql.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusBadGateway, terr.StatusCode)
	assert.Equal(t, "ValidateDestField", terr.Operation)
	assert.Contains(t, terr.Error(), "upstream down")

	_, err = graphql.New("").Do(testsupport.Context(), "query X { x }", nil)
	require.ErrorIs(t, err, graphql.ErrEndpointRequired)

	badJSON, _ := graphQLServer(t, func(gjson.Result) (int, string) {
		return http.StatusOK, "<html>"
	})
	_, err = graphql.New(badJSON.URL).Do(testsupport.Context(), "query X { x }", nil)
	require.ErrorIs(t, err, graphql.ErrInvalidResponse)
}

func TestDisplayInfoAndSearch(t *testing.T) {
	srv, _ := graphQLServer(t, func(req gjson.Result) (int, string) {
		switch {
		case req.Get("variables.input.search").Exists():
			return http.StatusOK, `{"data":{"destinationFieldSearch":{"nodes":[
				{"value":"C1","label":"<i>#general</i>","isFavorite":true},
				{"value":"C2","label":""},
				{"value":"","label":"skipped"}
			]}}}`
		case req.Get("variables.input.values").Exists():
			return http.StatusOK, `{"data":{"destinationDisplayInfo":{"text":"+1 222-555-0123","iconURL":"/icon.svg","iconAltText":"Text Message","linkURL":""}}}`
		default:
			return http.StatusOK, `{"data":{"destinationFieldValueName":"#general"}}`
		}
	})
	client := graphql.New(srv.URL)
	ctx := testsupport.Context()

	info, err := client.DestinationDisplayInfo(ctx, destination.Input{
		Type:   testsupport.TypeSMS,
		Values: []destination.FieldValue{{FieldID: testsupport.FieldPhoneNumber, Value: "12225550123"}},
	})
	require.NoError(t, err)
	assert.Equal(t, destination.DisplayInfo{Text: "+1 222-555-0123", IconURL: "/icon.svg", IconAltText: "Text Message"}, info)

	opts, err := client.SearchField(ctx, destination.SearchInput{
		Type:    testsupport.TypeSlackChannel,
		FieldID: testsupport.FieldSlackChannel,
		Search:  "gen",
	})
	require.NoError(t, err)
	want := []destination.FieldOption{
		{Label: "#general", Value: "C1", IsFavorite: true},
		{Label: "C2", Value: "C2"},
	}
	if diff := cmp.Diff(want, opts); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	name, err := client.FieldValueName(ctx, testsupport.TypeSlackChannel, testsupport.FieldSlackChannel, "C1")
	require.NoError(t, err)
	assert.Equal(t, "#general", name)
}

func TestMutationDefaultVars(t *testing.T) {
	srv, reqs := graphQLServer(t, func(gjson.Result) (int, string) {
		return http.StatusOK, `{"data":{"createUserContactMethod":{"id":"abc"}}}`
	})
	client := graphql.New(srv.URL)
	submit := client.Mutation(`mutation CreateCM($input: CreateUserContactMethodInput!) { createUserContactMethod(input: $input) { id } }`, nil)

	err := submit(testsupport.Context(), form.Submission{
		Input: destination.Input{
			Type:   testsupport.TypeSMS,
			Values: []destination.FieldValue{{FieldID: testsupport.FieldPhoneNumber, Value: "12225550123"}},
		},
		Values: map[string]any{"name": "Cell"},
	})
	require.NoError(t, err)

	require.Len(t, *reqs, 1)
	body := (*reqs)[0].body
	assert.Equal(t, "Cell", body.Get("variables.input.name").String())
	assert.Equal(t, testsupport.TypeSMS, body.Get("variables.input.dest.type").String())
	assert.Equal(t, "12225550123", body.Get("variables.input.dest.values.0.value").String())
}
