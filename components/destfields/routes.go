package destfields

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	optionsPattern  = "/{type}/fields/{fieldID}/options"
	validatePattern = "/{type}/fields/{fieldID}/validate"
)

// MountPath returns the full mount path for the component routes under
// basePath.
func MountPath(basePath string, fns ...OptionFn) string {
	opts := NewOptions(fns...)
	return mountPath(basePath, opts.RoutePath)
}

// RegisterRoutes registers both routes under basePath on r.
func RegisterRoutes(r chi.Router, basePath string, fns ...OptionFn) (string, error) {
	return RegisterRoutesWithOptions(r, basePath, NewOptions(fns...))
}

// RegisterRoutesWithOptions registers both routes using a pre-built Options
// value.
func RegisterRoutesWithOptions(r chi.Router, basePath string, opts Options) (string, error) {
	if r == nil {
		return "", fmt.Errorf("destfields: missing router")
	}
	opts = NewOptions(func(o *Options) { *o = opts })
	return mount(r, basePath, opts), nil
}

func mount(r chi.Router, basePath string, opts Options) string {
	prefix := mountPath(basePath, opts.RoutePath)
	h := handler{opts: opts}
	guarded := r.With(h.guard)
	for _, method := range []string{http.MethodGet, http.MethodHead} {
		guarded.Method(method, joinPattern(prefix, optionsPattern), http.HandlerFunc(h.optionsRoute))
		guarded.Method(method, joinPattern(prefix, validatePattern), http.HandlerFunc(h.validateRoute))
	}
	return prefix
}

func joinPattern(prefix, pattern string) string {
	if prefix == "/" {
		return pattern
	}
	return prefix + pattern
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}
	routePath = strings.TrimRight(routePath, "/")
	if routePath == "" {
		routePath = "/"
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	if routePath == "/" {
		return basePath
	}
	return basePath + routePath
}
