// Package session keeps live form-set controllers between HTTP requests.
// Each session owns one dispatcher; sessions expire after a TTL and the
// least recently used one is evicted when the store is full.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/goliatone/go-formset/pkg/dispatch"
	"github.com/goliatone/go-formset/pkg/formset"
)

const (
	DefaultTTL     = 30 * time.Minute
	DefaultMaxSize = 1024
)

var ErrNotFound = errors.New("session: not found")

// Session is one live form-set.
type Session struct {
	ID         string
	CreatedAt  time.Time
	Dispatcher *dispatch.Dispatcher
}

// Options configures a Store.
type Options struct {
	TTL     time.Duration
	MaxSize int
	Logger  *zap.Logger
	// Base options applied to every controller before the per-session ones.
	Base []formset.OptionFn
}

type Option func(*Options)

func WithTTL(ttl time.Duration) Option {
	return func(o *Options) {
		if ttl > 0 {
			o.TTL = ttl
		}
	}
}

func WithMaxSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxSize = n
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithControllerOptions sets options shared by every session controller.
func WithControllerOptions(fns ...formset.OptionFn) Option {
	return func(o *Options) {
		o.Base = append(o.Base, fns...)
	}
}

// Store holds sessions keyed by id.
type Store struct {
	cache  *expirable.LRU[string, *Session]
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

// NewStore builds an empty store.
func NewStore(options ...Option) *Store {
	opts := Options{TTL: DefaultTTL, MaxSize: DefaultMaxSize, Logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}

	s := &Store{opts: opts, logger: opts.Logger, now: time.Now}
	s.cache = expirable.NewLRU[string, *Session](opts.MaxSize, s.evicted, opts.TTL)
	return s
}

// Create starts a session over state (nil for an empty form-set). fns are
// applied after the store's base options.
func (s *Store) Create(state *formset.State, fns ...formset.OptionFn) (*Session, error) {
	all := make([]formset.OptionFn, 0, len(s.opts.Base)+len(fns)+1)
	all = append(all, formset.WithLogger(s.logger))
	all = append(all, s.opts.Base...)
	all = append(all, fns...)

	ctrl, err := formset.New(state, all...)
	if err != nil {
		return nil, fmt.Errorf("session: new controller: %w", err)
	}

	sess := &Session{
		ID:         uuid.NewString(),
		CreatedAt:  s.now(),
		Dispatcher: dispatch.New(ctrl, dispatch.WithLogger(s.logger)),
	}
	s.cache.Add(sess.ID, sess)
	s.logger.Debug("session created", zap.String("session", sess.ID), zap.Int("total", ctrl.State().Total()))
	return sess, nil
}

// Get returns the session with id. Lookups refresh recency, not the TTL.
func (s *Store) Get(id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if sess, ok := s.cache.Get(id); ok {
		return sess, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
}

// Delete drops the session and reports whether it existed.
func (s *Store) Delete(id string) bool {
	return s.cache.Remove(strings.TrimSpace(id))
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.cache.Len()
}

// Purge drops every session.
func (s *Store) Purge() {
	s.cache.Purge()
}

func (s *Store) evicted(id string, _ *Session) {
	s.logger.Debug("session evicted", zap.String("session", id))
}
