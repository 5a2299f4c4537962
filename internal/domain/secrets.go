package domain

import (
	"regexp"
	"strings"
)

// secretKeyPattern matches key=value assignments whose key names credential
// material. The key set is fixed; this is a checklist scanner, not a general
// secret detector.
var secretKeyPattern = regexp.MustCompile(`(?i)\b([A-Z0-9_]*(?:password|passwd|secret|api_key|token|private_key)[A-Z0-9_]*)\s*=\s*("[^"]*"|'[^']*'|\S+)`)

// FindSecretHits scans lines of text for secret-like key=value assignments.
// Line numbers are 1-based.
func FindSecretHits(lines []string) []SecretHit {
	var hits []SecretHit
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		for _, m := range secretKeyPattern.FindAllStringSubmatch(line, -1) {
			hits = append(hits, SecretHit{
				Key:   m[1],
				Value: unquote(m[2]),
				Line:  i + 1,
			})
		}
	}
	return hits
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

// realSecretPrefixes are markers of credential material that is unambiguously
// live: provider-issued API keys, PEM blocks, JWTs.
var realSecretPrefixes = []string{
	"sk-", "ghp_", "gho_", "github_pat_", "AKIA", "xoxb-", "xoxp-",
	"-----BEGIN", "eyJ",
}

var base64Like = regexp.MustCompile(`^[A-Za-z0-9+/=_-]{20,}$`)

// LooksLikeRealSecret distinguishes live credential material from short human
// placeholder values. A demo password like "changeme" does not count; a long
// base64-like token or a recognizably prefixed key does.
func LooksLikeRealSecret(value string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return false
	}
	for _, p := range realSecretPrefixes {
		if strings.HasPrefix(v, p) {
			return true
		}
	}
	return base64Like.MatchString(v)
}

// EnvAssignments splits "KEY=VALUE" environment entries into secret-scanner
// input lines. Entries without '=' are ignored.
func EnvAssignments(env []string) []string {
	lines := make([]string, 0, len(env))
	for _, e := range env {
		if strings.Contains(e, "=") {
			lines = append(lines, e)
		}
	}
	return lines
}
