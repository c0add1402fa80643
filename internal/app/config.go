package app

// Config holds runtime configuration for a single run.
type Config struct {
	// URLs are raw inputs from the command line, already split.
	URLs []string
	// URLsFile points at a line-delimited URL list; blank lines and
	// #-comments are filtered on load.
	URLsFile string

	// RunID overrides the timestamp-derived run id.
	RunID string
	// ArtifactsDir overrides the default artifacts/<run_id> layout.
	ArtifactsDir string
	// CacheDir is the workspace cache root; staged .sol sources live under
	// <CacheDir>/solidity.
	CacheDir string
	// CacheClear wipes the staging cache before the run.
	CacheClear bool

	UserAgent string
	// OutputPDF optionally renders the run summary as a PDF.
	OutputPDF string
	// RestrictedHosts lists host markers of wikis behind a login wall.
	RestrictedHosts []string

	Verbose bool
}
