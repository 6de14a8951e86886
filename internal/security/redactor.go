// Package security keeps credentials out of relaybot's logs.
package security

import (
	"regexp"
	"strings"
	"sync"
)

// Placeholder replaces every redacted value.
const Placeholder = "[REDACTED]"

// ServiceName is the service key of the process-wide Redactor. Modules that
// load credentials register them with AddSecret during Provision.
const ServiceName = "security.redactor"

// minSecretLen is the shortest literal worth redacting. Shorter values
// would mangle ordinary log text.
const minSecretLen = 4

type rule struct {
	re   *regexp.Regexp
	repl string
}

// defaultRules catch credentials embedded in URLs and headers, such as a
// bridge URL carrying ?token=... or user:pass@ userinfo.
var defaultRules = []rule{
	{regexp.MustCompile(`(?i)\b(token|secret|password|api_key|key)=[^&\s"']+`), "${1}=" + Placeholder},
	{regexp.MustCompile(`(?i)\bbearer\s+[a-z0-9._~+/-]+=*`), "Bearer " + Placeholder},
	{regexp.MustCompile(`(?i)\b(wss?|https?)://[^/\s:@]+:[^/\s@]+@`), "${1}://" + Placeholder + "@"},
}

// Redactor rewrites strings so that known secrets never appear in them.
// It is safe for concurrent use.
type Redactor struct {
	mu      sync.RWMutex
	secrets []string
}

// NewRedactor returns a Redactor that knows the given secrets in addition
// to the built-in URL and header rules.
func NewRedactor(secrets ...string) *Redactor {
	r := &Redactor{}
	for _, s := range secrets {
		r.AddSecret(s)
	}
	return r
}

// AddSecret registers a literal secret. Empty, very short and already
// known values are ignored.
func (r *Redactor) AddSecret(secret string) {
	if len(secret) < minSecretLen {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.secrets {
		if s == secret {
			return
		}
	}
	r.secrets = append(r.secrets, secret)
}

// Redact returns s with every known secret replaced by Placeholder.
func (r *Redactor) Redact(s string) string {
	if s == "" {
		return s
	}

	r.mu.RLock()
	secrets := r.secrets
	r.mu.RUnlock()

	for _, secret := range secrets {
		s = strings.ReplaceAll(s, secret, Placeholder)
	}
	for _, rl := range defaultRules {
		s = rl.re.ReplaceAllString(s, rl.repl)
	}
	return s
}
