// Package destform wires the destination form stack: the type registry, the
// GraphQL client, the field validator and form construction.
package destform

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goliatone/go-destform/pkg/destination"
	"github.com/goliatone/go-destform/pkg/form"
	"github.com/goliatone/go-destform/pkg/graphql"
	"github.com/goliatone/go-destform/pkg/validation"
)

// Kind selects the family of destination types a form offers.
type Kind string

const (
	KindAll               Kind = "all"
	KindContactMethod     Kind = "contact"
	KindEPTarget          Kind = "ep"
	KindSchedOnCallNotify Kind = "oncall"
)

// ParseKind reads a kind name. "" means KindAll.
func ParseKind(raw string) (Kind, error) {
	switch kind := Kind(strings.ToLower(strings.TrimSpace(raw))); kind {
	case "":
		return KindAll, nil
	case KindAll, KindContactMethod, KindEPTarget, KindSchedOnCallNotify:
		return kind, nil
	default:
		return "", fmt.Errorf("destform: unknown kind %q", raw)
	}
}

// Filter reports whether a type belongs to the kind.
func (k Kind) Filter() func(destination.TypeInfo) bool {
	switch k {
	case KindContactMethod:
		return func(t destination.TypeInfo) bool { return t.IsContactMethod }
	case KindEPTarget:
		return func(t destination.TypeInfo) bool { return t.IsEPTarget }
	case KindSchedOnCallNotify:
		return func(t destination.TypeInfo) bool { return t.IsSchedOnCallNotify }
	default:
		return func(destination.TypeInfo) bool { return true }
	}
}

// Options configures NewRuntime. RegistryPath wins over fetching the catalog
// from Endpoint; remote validation needs Endpoint.
type Options struct {
	Endpoint         string
	Token            string
	RegistryPath     string
	Timeout          time.Duration
	ValidateRPS      float64
	ValidateBurst    int
	ValidateDebounce time.Duration
	Recorder         validation.Recorder
	Logger           *slog.Logger
}

// Runtime holds the shared collaborators of every form.
type Runtime struct {
	Registry  *destination.Registry
	Client    *graphql.Client
	Validator *validation.Validator
	logger    *slog.Logger
}

// NewRuntime loads the registry and builds the client and validator.
func NewRuntime(ctx context.Context, opts Options) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rt := &Runtime{logger: logger}

	if endpoint := strings.TrimSpace(opts.Endpoint); endpoint != "" {
		rt.Client = graphql.New(endpoint,
			graphql.WithBearerToken(opts.Token),
			graphql.WithTimeout(opts.Timeout),
			graphql.WithLogger(logger),
		)
		rt.Validator = validation.New(rt.Client,
			validation.WithRateLimit(opts.ValidateRPS, opts.ValidateBurst),
			validation.WithDebounce(opts.ValidateDebounce),
			validation.WithRecorder(opts.Recorder),
			validation.WithLogger(logger),
		)
	}

	var err error
	switch {
	case strings.TrimSpace(opts.RegistryPath) != "":
		rt.Registry, err = destination.LoadFile(opts.RegistryPath)
	case rt.Client != nil:
		rt.Registry, err = rt.Client.Registry(ctx)
	default:
		err = fmt.Errorf("destform: a registry path or endpoint is required")
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("destform: registry loaded", "types", len(rt.Registry.Types()))
	return rt, nil
}

// NewForm constructs a form bound to the runtime's registry and validator.
func (rt *Runtime) NewForm(opts ...form.Option) *form.Form {
	base := []form.Option{
		form.WithValidator(rt.Validator),
		form.WithLogger(rt.logger),
	}
	return form.New(rt.Registry, append(base, opts...)...)
}

// Types lists the registry types of kind in catalog order.
func (rt *Runtime) Types(kind Kind) []destination.TypeInfo {
	keep := kind.Filter()
	var out []destination.TypeInfo
	for _, info := range rt.Registry.Types() {
		if keep(info) {
			out = append(out, info)
		}
	}
	return out
}
