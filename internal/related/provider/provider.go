// Package provider defines the pluggable related-file provider surface.
//
// Providers contribute additional related-file candidates beyond the built-in
// naming heuristic. They are registered with a Registry owned by the
// composition root and queried concurrently, each raced against a timeout, so
// a slow or broken provider can never delay or fail a lookup.
package provider

import "context"

// Provider produces related-file candidates for a queried path.
type Provider interface {
	// Name identifies the provider for logging and events.
	Name() string

	// RelatedFiles returns candidate paths related to the given path.
	// An error means the provider has nothing to contribute; it is never
	// surfaced to the caller of a lookup.
	RelatedFiles(ctx context.Context, path string) ([]string, error)
}

// Func adapts a plain function to the Provider interface.
type Func struct {
	ProviderName string
	Fn           func(ctx context.Context, path string) ([]string, error)
}

// Name returns the provider name.
func (f Func) Name() string {
	if f.ProviderName == "" {
		return "func"
	}
	return f.ProviderName
}

// RelatedFiles invokes the wrapped function.
func (f Func) RelatedFiles(ctx context.Context, path string) ([]string, error) {
	return f.Fn(ctx, path)
}
