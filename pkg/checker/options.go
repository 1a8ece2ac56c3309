package checker

import "github.com/refguard/refguard/pkg/templater"

// Option is a functional option for customizing check behavior.
type Option func(*checkOptions)

// checkOptions holds optional configuration for a Checker.
type checkOptions struct {
	resolver      templater.Resolver
	ignoreDotless bool
}

// WithResolver provides manifest-backed resolution of ref()/source()
// targets to physical relation names. Without a resolver, macro calls
// render to deterministic names derived from their arguments.
//
// Example:
//
//	m, _ := manifest.Load("target/manifest.json")
//	c := checker.New(types.Dialect_ANSI, checker.WithResolver(m))
func WithResolver(resolver templater.Resolver) Option {
	return func(opts *checkOptions) {
		opts.resolver = resolver
	}
}

// WithIgnoreDotlessTables exempts single-part (schema-less) identifiers
// from being reported as bare tables.
func WithIgnoreDotlessTables() Option {
	return func(opts *checkOptions) {
		opts.ignoreDotless = true
	}
}
