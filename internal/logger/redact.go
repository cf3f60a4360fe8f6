package logger

import (
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

var sensitiveKeys = map[string]struct{}{
	"password":         {},
	"new_password":     {},
	"current_password": {},
	"token":            {},
	"access_token":     {},
	"refresh_token":    {},
	"auth_token":       {},
	"secret":           {},
	"client_secret":    {},
	"authorization":    {},
	"cookie":           {},
	"jwt":              {},
	"api_key":          {},
	"internal_key":     {},
}

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

var stackMarkers = []string{
	"goroutine ",
	"\truntime/",
	"\tnet/http/",
	"runtime.goexit",
	"panic(",
}

// redactor scrubs credentials, emails and, in production, stack traces.
type redactor struct {
	stripStacks bool
}

func (r redactor) details(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		if _, secret := sensitiveKeys[strings.ToLower(k)]; secret {
			out[k] = redacted
			continue
		}
		switch val := v.(type) {
		case string:
			out[k] = r.text(val)
		case map[string]interface{}:
			out[k] = r.details(val)
		default:
			out[k] = val
		}
	}
	return out
}

func (r redactor) text(s string) string {
	s = emailPattern.ReplaceAllStringFunc(s, maskEmail)
	if r.stripStacks && strings.Contains(s, "\n") {
		s = dropStackLines(s)
	}
	return s
}

// maskEmail keeps the first two characters of the local part.
func maskEmail(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return "[REDACTED_EMAIL]"
	}
	local, domain := email[:at], email[at+1:]
	if len(local) <= 2 {
		return "**@" + domain
	}
	return local[:2] + "***@" + domain
}

func dropStackLines(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !isStackLine(line) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func isStackLine(line string) bool {
	for _, marker := range stackMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}
