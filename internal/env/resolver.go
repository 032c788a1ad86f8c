// Package env resolves configuration variables from the process
// environment and an optional dotenv file.
package env

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// DotenvPrefix namespaces dotenv-sourced entries inside the pool so they
// can never shadow a native environment variable of the same bare name.
const DotenvPrefix = "DOTENV_"

// Resolver resolves named settings through a fixed precedence cascade:
// NAME, NAME_FILE, DOTENV_NAME_FILE, DOTENV_NAME. The first populated
// candidate wins; _FILE candidates name a path whose full content is the
// value. The resolver owns its pool, seeded once from the process
// environment, and caches resolved values under the bare name instead of
// writing them back with os.Setenv.
type Resolver struct {
	pool   map[string]string
	logger zerolog.Logger
}

// NewResolver builds a resolver over the current process environment.
func NewResolver(logger zerolog.Logger) *Resolver {
	r := &Resolver{
		pool:   make(map[string]string),
		logger: logger,
	}
	for _, kv := range os.Environ() {
		if key, value, ok := strings.Cut(kv, "="); ok {
			r.pool[key] = value
		}
	}
	return r
}

// NewResolverFromPool builds a resolver over an explicit pool (useful for testing).
func NewResolverFromPool(logger zerolog.Logger, pool map[string]string) *Resolver {
	r := &Resolver{
		pool:   make(map[string]string, len(pool)),
		logger: logger,
	}
	for key, value := range pool {
		r.pool[key] = value
	}
	return r
}

// Merge adds entries to the pool. Existing names are never overwritten;
// precedence between native and dotenv sources is decided in Resolve.
func (r *Resolver) Merge(entries map[string]string) {
	for key, value := range entries {
		if _, exists := r.pool[key]; !exists {
			r.pool[key] = value
		}
	}
}

// Resolve returns the value of name from the highest-precedence
// populated source, or "" when every source is empty. A _FILE candidate
// naming an unreadable path is a misconfiguration and returns an error.
// Resolution is idempotent: the result is cached under the bare name so
// repeated calls and exported environments observe one canonical value.
func (r *Resolver) Resolve(name string) (string, error) {
	if value := r.pool[name]; value != "" {
		return value, nil
	}

	for _, candidate := range []string{name + "_FILE", DotenvPrefix + name + "_FILE"} {
		path := r.pool[candidate]
		if path == "" {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s from %s: %w", candidate, path, err)
		}
		// A readable but empty file still wins the cascade; the empty
		// value is cached and ResolveDefault substitutes the default.
		value := string(content)
		r.logger.Debug().Str("name", name).Str("source", candidate).Msg("resolved from secret file")
		r.pool[name] = value
		return value, nil
	}

	if value := r.pool[DotenvPrefix+name]; value != "" {
		r.pool[name] = value
		return value, nil
	}

	return "", nil
}

// ResolveDefault resolves name and falls back to def when no source is
// populated.
func (r *Resolver) ResolveDefault(name, def string) (string, error) {
	value, err := r.Resolve(name)
	if err != nil || value != "" {
		return value, err
	}
	return def, nil
}

// Environ exports the pool in KEY=VALUE form, sorted, so subprocesses
// observe the same canonical values the resolver produced.
func (r *Resolver) Environ() []string {
	environ := make([]string, 0, len(r.pool))
	for key, value := range r.pool {
		environ = append(environ, key+"="+value)
	}
	sort.Strings(environ)
	return environ
}
