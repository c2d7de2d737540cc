package audit

import "strings"

// RedactedPlaceholder replaces the value of any context entry whose key matches
// a sensitive fragment.
const RedactedPlaceholder = "***REDACTED***"

// sensitiveFragments are matched case-insensitively as substrings of context
// keys. Every code path that produces an Event runs its context through
// Sanitize before formatting or persisting it.
var sensitiveFragments = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"api_key",
	"creditcard",
	"cpf",
	"phone",
}

// Sanitize returns a shallow copy of ctx with sensitive values replaced by
// RedactedPlaceholder. A nil map passes through unchanged. Only top-level keys
// are inspected; nested maps are not recursed into.
func Sanitize(ctx map[string]any) map[string]any {
	if ctx == nil {
		return nil
	}
	out := make(map[string]any, len(ctx))
	for k, v := range ctx {
		if isSensitiveKey(k) {
			out[k] = RedactedPlaceholder
		} else {
			out[k] = v
		}
	}
	return out
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, fragment := range sensitiveFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}
