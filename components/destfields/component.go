package destfields

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Component bundles the handler, its configuration and routing helpers.
type Component struct {
	opts Options
}

// New constructs a component with default options plus any overrides.
func New(fns ...OptionFn) *Component {
	return &Component{opts: NewOptions(fns...)}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Handler returns a net/http handler serving the component routes.
func (c *Component) Handler() http.Handler {
	if c == nil {
		return Handler()
	}
	return HandlerWithOptions(c.opts)
}

// RegisterRoutes registers the component routes under basePath on r.
func (c *Component) RegisterRoutes(r chi.Router, basePath string) (string, error) {
	if c == nil {
		return RegisterRoutes(r, basePath)
	}
	return RegisterRoutesWithOptions(r, basePath, c.opts)
}
