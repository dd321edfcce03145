package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	destform "github.com/goliatone/go-destform"
	"github.com/goliatone/go-destform/components/destfields"
	"github.com/goliatone/go-destform/internal/config"
	"github.com/goliatone/go-destform/internal/observability"
	"github.com/goliatone/go-destform/pkg/errutil"
	"github.com/goliatone/go-destform/pkg/form"
	"github.com/goliatone/go-destform/pkg/graphql"
	"github.com/goliatone/go-destform/pkg/renderers/tui"
)

func main() {
	os.Exit(execute())
}

func execute() int {
	destType := flag.String("type", "", "destination type to preselect")
	kindFlag := flag.String("kind", "all", "offered types: all, contact, ep or oncall")
	mutation := flag.String("mutation", "", "GraphQL mutation to submit, or @file")
	destRoot := flag.String("dest-root", "", "error path of the destination input, e.g. createUserContactMethod.input.dest (required with -mutation)")
	nameField := flag.Bool("name", false, "prompt for a name before the destination")
	preview := flag.Bool("preview", false, "render the destination display info before submitting")
	schemas := flag.Bool("schemas", false, "print the OpenAPI schemas of every destination input and exit")
	serve := flag.String("serve", "", "serve the field options/validate API on this address instead of prompting")
	output := flag.String("output", "", "output file (stdout if empty)")
	flag.Parse()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	logger := observability.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.OTelEnabled {
		shutdown, err := observability.InitTracer(ctx, "destform-cli")
		if err != nil {
			logger.Error("otel init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	err = run(ctx, cfg, logger, cliFlags{
		destType:  *destType,
		kind:      *kindFlag,
		mutation:  *mutation,
		destRoot:  *destRoot,
		nameField: *nameField,
		preview:   *preview,
		schemas:   *schemas,
		serve:     *serve,
		output:    *output,
	})
	switch {
	case err == nil:
		return 0
	case errors.Is(err, tui.ErrAborted):
		return 130
	default:
		logger.Error("destform: failed", "error", err)
		return 1
	}
}

type cliFlags struct {
	destType  string
	kind      string
	mutation  string
	destRoot  string
	nameField bool
	preview   bool
	schemas   bool
	serve     string
	output    string
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, flags cliFlags) error {
	kind, err := destform.ParseKind(flags.kind)
	if err != nil {
		return err
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return err
	}

	rt, err := destform.NewRuntime(ctx, destform.Options{
		Endpoint:         cfg.Endpoint,
		Token:            cfg.Token,
		RegistryPath:     cfg.RegistryPath,
		Timeout:          cfg.Timeout,
		ValidateRPS:      cfg.ValidateRPS,
		ValidateBurst:    cfg.ValidateBurst,
		ValidateDebounce: cfg.ValidateDebounce,
		Recorder:         metrics,
		Logger:           logger,
	})
	if err != nil {
		return err
	}

	if flags.schemas {
		payload, err := json.MarshalIndent(rt.Registry.Schemas(), "", "  ")
		if err != nil {
			return err
		}
		return write(flags.output, payload)
	}
	if flags.serve != "" {
		return serveFields(ctx, rt, logger, flags.serve)
	}

	roots, err := destRoots(flags.mutation, flags.destRoot)
	if err != nil {
		return err
	}
	formOpts := []form.Option{
		form.WithManualValidation(),
		form.WithDestRoot(roots...),
	}
	if flags.destType != "" {
		if !rt.Registry.Has(flags.destType) {
			return fmt.Errorf("destform: unknown destination type %q", flags.destType)
		}
		formOpts = append(formOpts, form.WithType(flags.destType))
	}
	f := rt.NewForm(formOpts...)

	renderOpts := []tui.Option{
		tui.WithTypeFilter(kind.Filter()),
		tui.WithOutputFormat(tui.OutputFormat(cfg.Output)),
		tui.WithMessageWriter(os.Stderr),
		tui.WithLogger(logger),
	}
	if flags.nameField {
		renderOpts = append(renderOpts, tui.WithFormFields(tui.FormField{
			Name:     "name",
			Label:    "Name",
			Required: true,
		}))
	}

	var submit form.SubmitFunc
	if rt.Client != nil {
		renderOpts = append(renderOpts, tui.WithSearcher(rt.Client, 20))
		if flags.preview {
			renderOpts = append(renderOpts, tui.WithPreview(rt.Client))
		}
		if flags.mutation != "" {
			query, err := readMutation(flags.mutation)
			if err != nil {
				return err
			}
			submit = rt.Client.Mutation(query, graphql.DefaultVars)
		}
	} else if flags.mutation != "" || flags.preview {
		return fmt.Errorf("destform: -mutation and -preview need DESTFORM_ENDPOINT")
	}

	renderer, err := tui.New(rt.Registry, renderOpts...)
	if err != nil {
		return err
	}
	out, err := renderer.Render(ctx, f, submit)
	if err != nil {
		return err
	}
	return write(flags.output, out)
}

func serveFields(ctx context.Context, rt *destform.Runtime, logger *slog.Logger, addr string) error {
	fieldOpts := []destfields.OptionFn{
		destfields.WithRegistry(rt.Registry),
		destfields.WithLogger(logger),
	}
	if rt.Client != nil {
		fieldOpts = append(fieldOpts, destfields.WithSearcher(rt.Client), destfields.WithQuerier(rt.Client))
	}

	r := chi.NewRouter()
	prefix, err := destfields.New(fieldOpts...).RegisterRoutes(r, "/")
	if err != nil {
		return err
	}
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("destform: serving field API", "addr", addr, "prefix", prefix)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// destRoots resolves -dest-root. Error paths start at the mutation's response
// field, so a submitting form cannot guess the root.
func destRoots(mutation, raw string) ([]errutil.Path, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if mutation != "" {
			return nil, errors.New("destform: -dest-root is required with -mutation")
		}
		return nil, nil
	}
	return []errutil.Path{errutil.ParsePath(raw)}, nil
}

func readMutation(raw string) (string, error) {
	if path, ok := strings.CutPrefix(raw, "@"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("destform: read mutation: %w", err)
		}
		return string(data), nil
	}
	return raw, nil
}

func write(path string, payload []byte) error {
	if path == "" {
		_, err := fmt.Fprintln(os.Stdout, string(payload))
		return err
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Output written to %s\n", path)
	return nil
}
