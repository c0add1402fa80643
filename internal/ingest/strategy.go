package ingest

import "context"

// Strategy retrieves one Artifact for inputs it recognizes. Strategies are
// evaluated in a fixed order, first match wins, and never raise past their
// own boundary: any internal failure is represented on the returned Artifact.
type Strategy interface {
	// Match reports whether this strategy handles the input. It must be
	// cheap and deterministic; only the local strategy touches the
	// filesystem (an existence check).
	Match(raw string) bool
	// Retrieve produces exactly one Artifact for the input.
	Retrieve(ctx context.Context, raw string) Artifact
}
