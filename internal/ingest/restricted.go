package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// restrictedStrategy probes hosts known to sit behind a login wall. An
// explicit 401/403, or a body that looks like a login page combined with the
// platform's own marker, yields a restricted artifact; an accessible page
// defers to the generic strategy.
type restrictedStrategy struct {
	s *Session
}

var loginMarkers = []string{"login", "sign in", "sign-in"}

func (st *restrictedStrategy) Match(raw string) bool {
	return IsRestrictedHost(raw, st.s.restricted)
}

func (st *restrictedStrategy) Retrieve(ctx context.Context, raw string) Artifact {
	resp, err := st.s.client.Get(ctx, raw, 15*time.Second)
	if err != nil {
		return Artifact{Source: raw, Kind: KindRestricted, Err: err.Error()}
	}
	if resp.StatusCode == 401 || resp.StatusCode == 403 {
		rerr := &AccessRestrictedError{Reason: fmt.Sprintf("HTTP %d", resp.StatusCode)}
		return Artifact{Source: raw, Kind: KindRestricted, Err: rerr.Error()}
	}

	body := strings.ToLower(string(resp.Body))
	if containsAny(body, loginMarkers) && containsAny(body, st.platformTokens()) {
		rerr := &AccessRestrictedError{Reason: "login page"}
		return Artifact{Source: raw, Kind: KindRestricted, Err: rerr.Error()}
	}

	return (&genericStrategy{s: st.s}).Retrieve(ctx, raw)
}

// platformTokens derives the bare platform names from the host markers, e.g.
// "slite.com" -> "slite".
func (st *restrictedStrategy) platformTokens() []string {
	tokens := make([]string, 0, len(st.s.restricted))
	for _, marker := range st.s.restricted {
		if tok := strings.Split(strings.ToLower(marker), ".")[0]; tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
