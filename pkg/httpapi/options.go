package httpapi

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-formset/components/catalog"
	"github.com/goliatone/go-formset/pkg/formset"
)

// Options configures a Server.
type Options struct {
	BasePath   string
	Logger     *zap.Logger
	Catalog    *catalog.Component
	Controller []formset.OptionFn
	// MaxBodyBytes caps request bodies (default 1MiB).
	MaxBodyBytes int64
}

type Option func(*Options)

const defaultMaxBodyBytes = 1 << 20

// WithBasePath mounts every route under path.
func WithBasePath(path string) Option {
	return func(o *Options) {
		o.BasePath = path
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithCatalog mounts the catalog search route.
func WithCatalog(component *catalog.Component) Option {
	return func(o *Options) {
		o.Catalog = component
	}
}

// WithControllerOptions sets the options used to parse submitted management
// forms and to build session controllers.
func WithControllerOptions(fns ...formset.OptionFn) Option {
	return func(o *Options) {
		o.Controller = append(o.Controller, fns...)
	}
}

func WithMaxBodyBytes(n int64) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxBodyBytes = n
		}
	}
}
