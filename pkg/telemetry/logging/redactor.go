package logging

import (
	"fmt"
	"regexp"
	"strings"

	"mercator-hq/relay/pkg/config"
)

// Redactor scrubs secrets and client-identifying data from log fields
// before they reach the handler. The default rules cover the credentials
// that show up around a proxy deployment (bearer/basic auth values, URL
// userinfo, generic key=value secrets) and the client addresses relay
// exists to forward: a relay log must be able to say "wrote a v1 header"
// without recording who the header was for.
type Redactor struct {
	rules []rule
}

// rule is one ordered redaction pass. Order matters: the PROXY-line rule
// must run before the generic IP rules so the source address is fully
// masked, not just truncated to its /16.
type rule struct {
	name string
	re   *regexp.Regexp
	repl string
}

func defaultRules() []rule {
	return []rule{
		{
			name: "bearer_token",
			re:   regexp.MustCompile(`(?i)bearer\s+[a-z0-9\-._~+/]+=*`),
			repl: "Bearer [redacted]",
		},
		{
			name: "basic_auth",
			re:   regexp.MustCompile(`(?i)basic\s+[a-z0-9+/]+=*`),
			repl: "Basic [redacted]",
		},
		{
			name: "url_userinfo",
			re:   regexp.MustCompile(`://[^/@\s]+@`),
			repl: "://[redacted]@",
		},
		{
			name: "key_value_secret",
			re:   regexp.MustCompile(`(?i)\b(api[-_]?key|secret|token|password|passwd)[=:]\s*\S+`),
			repl: "$1=[redacted]",
		},
		{
			// A logged v1 header line identifies the original client in
			// its third field. Mask the source, keep the destination.
			name: "proxy_v1_source",
			re:   regexp.MustCompile(`PROXY (TCP[46]) \S+ `),
			repl: "PROXY $1 [redacted] ",
		},
		{
			name: "ipv6",
			re:   regexp.MustCompile(`\b[0-9a-fA-F]{1,4}(?::[0-9a-fA-F]{1,4}){7}\b`),
			repl: "[redacted-ipv6]",
		},
		{
			// Keep the /16 so logs stay correlatable per network, mask
			// the host part.
			name: "ipv4",
			re:   regexp.MustCompile(`\b(\d{1,3}\.\d{1,3})\.\d{1,3}\.\d{1,3}\b`),
			repl: "$1.x.x",
		},
	}
}

// keyHints are substrings of field keys whose values are redacted
// wholesale, whatever they contain. "payload" is here because a PROXY v2
// trailing payload is opaque application data relay has no business
// logging.
var keyHints = []string{
	"password", "passwd", "secret", "token",
	"api_key", "apikey", "authorization",
	"private_key", "privatekey", "payload",
}

// NewRedactor creates a Redactor with the default rules plus any custom
// patterns from the config. Invalid custom patterns are skipped; config
// validation reports them before a Logger is ever built.
func NewRedactor(custom []config.RedactPattern) *Redactor {
	r := &Redactor{rules: defaultRules()}

	for _, p := range custom {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		r.rules = append(r.rules, rule{name: p.Name, re: re, repl: p.Replacement})
	}
	return r
}

// RedactString applies every rule, in order, to value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, ru := range r.rules {
		value = ru.re.ReplaceAllString(value, ru.repl)
	}
	return value
}

// RedactArgs redacts slog-style variadic key/value arguments. Values
// under a sensitive key are replaced wholesale; remaining string values
// pass through the pattern rules.
func (r *Redactor) RedactArgs(args ...any) []any {
	if len(args) == 0 {
		return args
	}

	redacted := make([]any, len(args))
	copy(redacted, args)

	for i := 1; i < len(redacted); i += 2 {
		if key, ok := redacted[i-1].(string); ok && isSensitiveKey(key) {
			redacted[i] = "[redacted]"
			continue
		}
		switch v := redacted[i].(type) {
		case string:
			redacted[i] = r.RedactString(v)
		case fmt.Stringer:
			redacted[i] = r.RedactString(v.String())
		}
	}
	return redacted
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, hint := range keyHints {
		if strings.Contains(key, hint) {
			return true
		}
	}
	return false
}
