package credential

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/giantswarm/pgbootstrap/internal/logging"
	"github.com/giantswarm/pgbootstrap/internal/sentinel"
)

// ErrMissingCredential is returned when a credential is neither set in the
// environment nor can be prompted for.
const ErrMissingCredential = sentinel.Error("credential not set and could not be prompted for")

// Config configures a Resolver. Every field is optional.
type Config struct {
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)

	// Interactive reports whether the operator can be prompted. Defaults
	// to StdinIsTerminal.
	Interactive func() bool

	// Prompter defaults to a FormPrompter on stderr.
	Prompter Prompter

	Logger *slog.Logger
}

// Resolver resolves named credentials from the environment or the
// operator and caches them for its lifetime. Safe for concurrent use.
type Resolver struct {
	cfg   Config
	log   *slog.Logger
	mu    sync.Mutex
	cache map[string]*Secret
}

// NewResolver returns a Resolver with cfg's defaults applied.
func NewResolver(cfg Config) *Resolver {
	if cfg.LookupEnv == nil {
		cfg.LookupEnv = os.LookupEnv
	}
	if cfg.Interactive == nil {
		cfg.Interactive = StdinIsTerminal
	}
	if cfg.Prompter == nil {
		cfg.Prompter = &FormPrompter{}
	}
	return &Resolver{
		cfg:   cfg,
		log:   logging.OrDefault(cfg.Logger),
		cache: make(map[string]*Secret),
	}
}

// Resolve returns the value of name. A variable that is set wins even if
// empty; otherwise the operator is prompted if stdin is a terminal. The
// first successful result is cached and returned by later calls without
// consulting the environment or the operator again.
func (r *Resolver) Resolve(ctx context.Context, name string) (*Secret, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.cache[name]; ok {
		return s, nil
	}

	var s *Secret
	if v, ok := r.cfg.LookupEnv(name); ok {
		r.log.Debug("credential from environment", "name", name)
		s = NewSecret(v)
	} else {
		if !r.cfg.Interactive() {
			return nil, fmt.Errorf("%s: %w: stdin is not a terminal", name, ErrMissingCredential)
		}
		r.log.Debug("prompting for credential", "name", name)
		v, err := r.cfg.Prompter.Prompt(ctx, name, IsSensitive(name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", name, ErrMissingCredential, err)
		}
		s = NewSecret(v)
	}
	r.cache[name] = s
	return s, nil
}

// Close destroys every cached value.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, s := range r.cache {
		s.Destroy()
		delete(r.cache, name)
	}
}

// IsSensitive reports whether name should be prompted for without echo.
func IsSensitive(name string) bool {
	return strings.Contains(strings.ToUpper(name), "SECRET")
}
