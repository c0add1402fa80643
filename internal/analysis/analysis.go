package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/solrecon/internal/stage"
)

// Result aggregates per-file findings over all staged Solidity sources.
type Result struct {
	SoliditySources      []string                   `json:"solidity_sources"`
	ASTs                 map[string]json.RawMessage `json:"asts"`
	CallGraph            map[string][]string        `json:"call_graph"`
	StateLayout          map[string]json.RawMessage `json:"state_layout"`
	ExternalCalls        map[string][]string        `json:"external_calls"`
	ModifierUsage        map[string][]string        `json:"modifier_usage"`
	ERCStandards         map[string][]string        `json:"erc_standards"`
	ReentrancyCandidates map[string][]string        `json:"reentrancy_candidates"`
}

var externalCallPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\.call\s*\(`),
	regexp.MustCompile(`\.call\s*\{`),
	regexp.MustCompile(`\.delegatecall\s*\(`),
	regexp.MustCompile(`\.transfer\s*\(`),
	regexp.MustCompile(`\.send\s*\(`),
}

var modifierPattern = regexp.MustCompile(`modifier\s+([A-Za-z0-9_]+)`)

var ercPatterns = map[string][]*regexp.Regexp{
	"ERC20":   {regexp.MustCompile(`\bIERC20\b`), regexp.MustCompile(`\bERC20\b`)},
	"ERC721":  {regexp.MustCompile(`\bIERC721\b`), regexp.MustCompile(`\bERC721\b`)},
	"ERC1155": {regexp.MustCompile(`\bIERC1155\b`), regexp.MustCompile(`\bERC1155\b`)},
}

var reentrancyMarkers = []string{".call{", ".send(", ".transfer("}

// FileScan collects the regex findings for one source file.
type FileScan struct {
	ExternalCalls        []string
	ModifierUsage        []string
	ERCStandards         []string
	ReentrancyCandidates []string
}

// ScanSource applies the lightweight heuristics to one Solidity source body.
func ScanSource(text string) FileScan {
	var scan FileScan
	for _, pat := range externalCallPatterns {
		for _, loc := range pat.FindAllStringIndex(text, -1) {
			start := loc[0] - 40
			if start < 0 {
				start = 0
			}
			end := loc[1] + 40
			if end > len(text) {
				end = len(text)
			}
			scan.ExternalCalls = append(scan.ExternalCalls, text[start:end])
		}
	}
	for _, m := range modifierPattern.FindAllStringSubmatch(text, -1) {
		scan.ModifierUsage = append(scan.ModifierUsage, m[1])
	}
	for name, pats := range ercPatterns {
		for _, pat := range pats {
			if pat.MatchString(text) {
				scan.ERCStandards = append(scan.ERCStandards, name)
				break
			}
		}
	}
	for _, marker := range reentrancyMarkers {
		if strings.Contains(text, marker) {
			scan.ReentrancyCandidates = append(scan.ReentrancyCandidates, "external_call_present")
			break
		}
	}
	return scan
}

// Run scans every staged .sol source, attempts best-effort solc ASTs and a
// Slither pass when those tools are on PATH, and writes
// analysis_summary.json under outDir.
func Run(outDir string, sources *stage.Store) (*Result, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir analysis dir: %w", err)
	}
	files, err := sources.List(".sol")
	if err != nil {
		return nil, fmt.Errorf("list solidity sources: %w", err)
	}

	result := &Result{
		SoliditySources:      files,
		ASTs:                 runSolcASTs(files),
		CallGraph:            map[string][]string{},
		StateLayout:          map[string]json.RawMessage{},
		ExternalCalls:        map[string][]string{},
		ModifierUsage:        map[string][]string{},
		ERCStandards:         map[string][]string{},
		ReentrancyCandidates: map[string][]string{},
	}

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Warn().Str("file", f).Err(err).Msg("read source failed; skipping")
			continue
		}
		scan := ScanSource(string(data))
		result.ExternalCalls[f] = scan.ExternalCalls
		result.ModifierUsage[f] = scan.ModifierUsage
		result.ERCStandards[f] = scan.ERCStandards
		result.ReentrancyCandidates[f] = scan.ReentrancyCandidates
	}

	if slither := runSlither(sources.Dir, filepath.Join(outDir, "slither.json")); slither != nil {
		// The Slither JSON schema drifts between releases; take what we can.
		var payload struct {
			Results struct {
				CallGraph map[string][]string `json:"call-graph"`
			} `json:"results"`
		}
		if err := json.Unmarshal(slither, &payload); err == nil && payload.Results.CallGraph != nil {
			for k, v := range payload.Results.CallGraph {
				result.CallGraph[k] = v
			}
		}
	}

	summary, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode analysis summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "analysis_summary.json"), summary, 0o644); err != nil {
		return nil, fmt.Errorf("write analysis summary: %w", err)
	}
	return result, nil
}

// runSolcASTs produces a compact AST per file when solc is available. Any
// per-file failure is skipped.
func runSolcASTs(files []string) map[string]json.RawMessage {
	asts := map[string]json.RawMessage{}
	if len(files) == 0 {
		return asts
	}
	if _, err := exec.LookPath("solc"); err != nil {
		log.Info().Msg("solc not found in PATH; skipping AST generation")
		return asts
	}
	for _, f := range files {
		out, err := exec.Command("solc", "--ast-compact-json", f).Output()
		if err != nil {
			log.Debug().Str("file", f).Err(err).Msg("solc failed")
			continue
		}
		// solc prints the filename before the JSON; slice out the object.
		s := string(out)
		i := strings.Index(s, "{")
		j := strings.LastIndex(s, "}")
		if i < 0 || j < i {
			continue
		}
		raw := json.RawMessage(s[i : j+1])
		if !json.Valid(raw) {
			continue
		}
		asts[f] = raw
	}
	return asts
}

// runSlither invokes slither over the source root when available, returning
// the raw JSON report or nil.
func runSlither(targetDir, outJSON string) json.RawMessage {
	if _, err := exec.LookPath("slither"); err != nil {
		log.Info().Msg("slither not found in PATH; skipping Slither analysis")
		return nil
	}
	cmd := exec.Command("slither", targetDir, "--json", outJSON)
	if out, err := cmd.CombinedOutput(); err != nil {
		log.Warn().Err(err).Str("output", strings.TrimSpace(string(out))).Msg("slither failed")
		return nil
	}
	data, err := os.ReadFile(outJSON)
	if err != nil {
		log.Warn().Err(err).Msg("failed reading slither json")
		return nil
	}
	return json.RawMessage(data)
}
