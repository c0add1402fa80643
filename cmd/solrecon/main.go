package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/solrecon/internal/app"
)

const version = "0.1.0"

// multiFlag collects repeated occurrences of a string flag.
type multiFlag []string

func (m *multiFlag) String() string     { return strings.Join(*m, ",") }
func (m *multiFlag) Set(v string) error { *m = append(*m, v); return nil }

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		urls         multiFlag
		urlsFile     string
		runID        string
		artifactsDir string
		cacheDir     string
		cacheClear   bool
		userAgent    string
		outputPDF    string
		restricted   string
		configPath   string
		verbose      bool
		showVersion  bool
	)

	flag.Var(&urls, "urls", "One or more URLs (space/comma separated). Can be repeated.")
	flag.StringVar(&urlsFile, "urls.file", os.Getenv("SOLRECON_URLS_FILE"), "Path to a file with one URL per line")
	flag.StringVar(&runID, "run.id", "", "Override run id (default: UTC timestamp)")
	flag.StringVar(&artifactsDir, "artifacts.dir", "", "Base artifacts dir (default: artifacts/<run_id>)")
	flag.StringVar(&cacheDir, "cache.dir", os.Getenv("SOLRECON_CACHE_DIR"), "Workspace cache directory (default: "+app.DefaultCacheDir+")")
	flag.BoolVar(&cacheClear, "cache.clear", false, "Clear the staging cache before the run")
	flag.StringVar(&userAgent, "http.ua", "", "Custom User-Agent for outbound requests")
	flag.StringVar(&outputPDF, "output.pdf", "", "Optional path for a PDF run summary")
	flag.StringVar(&restricted, "restricted.hosts", "", "Comma-separated host markers of restricted wikis")
	flag.StringVar(&configPath, "config", os.Getenv("SOLRECON_CONFIG"), "Path to YAML or JSON config file")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.BoolVar(&showVersion, "version", false, "Show version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("solrecon %s\n", version)
		return
	}

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := app.Config{
		URLs:         app.SplitURLsArg(urls),
		URLsFile:     urlsFile,
		RunID:        runID,
		ArtifactsDir: artifactsDir,
		CacheDir:     cacheDir,
		CacheClear:   cacheClear,
		UserAgent:    userAgent,
		OutputPDF:    outputPDF,
		Verbose:      verbose,
	}
	if s := strings.TrimSpace(restricted); s != "" {
		parts := strings.Split(s, ",")
		list := make([]string, 0, len(parts))
		for _, p := range parts {
			if v := strings.TrimSpace(p); v != "" {
				list = append(list, v)
			}
		}
		cfg.RestrictedHosts = list
	}
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Str("path", configPath).Msg("config file failed")
			os.Exit(1)
		}
		app.ApplyFileConfig(&cfg, fc)
		if cfg.Verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	}

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func run(cfg app.Config) error {
	ctx := context.Background()

	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}
