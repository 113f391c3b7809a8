package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Redactor masks credentials in log fields. Values of sensitive keys are
// replaced wholesale; other string values are scanned for known patterns.
type Redactor struct {
	patterns []*redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Pattern is a custom redaction rule.
type Pattern struct {
	Name        string
	Pattern     string
	Replacement string
}

// Built-in pattern names.
const (
	PatternBearerToken = "bearer_token"
	PatternBasicAuth   = "basic_auth"
	PatternQuerySecret = "query_secret"
	PatternURLPassword = "url_password"
)

var defaultPatterns = []Pattern{
	{
		Name:        PatternBearerToken,
		Pattern:     `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`,
		Replacement: "Bearer ***",
	},
	{
		Name:        PatternBasicAuth,
		Pattern:     `Basic\s+[a-zA-Z0-9+/]+=*`,
		Replacement: "Basic ***",
	},
	{
		// token=..., api_key=..., password=... in query strings and form bodies
		Name:        PatternQuerySecret,
		Pattern:     `(?i)\b(token|access_token|api_key|apikey|password|passwd|secret)=[^&\s]+`,
		Replacement: "$1=***",
	},
	{
		Name:        PatternURLPassword,
		Pattern:     `://([^:/@\s]+):[^@/\s]+@`,
		Replacement: "://$1:***@",
	},
}

// NewRedactor creates a Redactor with the built-in patterns followed by
// custom. Custom patterns that fail to compile are skipped.
func NewRedactor(custom []Pattern) *Redactor {
	r := &Redactor{}
	for _, p := range append(append([]Pattern(nil), defaultPatterns...), custom...) {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		})
	}
	return r
}

// RedactString applies every pattern to value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, pattern := range r.patterns {
		value = pattern.regex.ReplaceAllString(value, pattern.replacement)
	}
	return value
}

// RedactAttr redacts a single attribute, descending into groups.
func (r *Redactor) RedactAttr(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()

	switch v.Kind() {
	case slog.KindGroup:
		group := v.Group()
		redacted := make([]any, 0, len(group))
		for _, ga := range group {
			redacted = append(redacted, r.RedactAttr(ga))
		}
		return slog.Group(a.Key, redacted...)
	case slog.KindString:
		if isSensitiveKey(a.Key) {
			return slog.String(a.Key, maskValue(v.String()))
		}
		return slog.String(a.Key, r.RedactString(v.String()))
	default:
		if isSensitiveKey(a.Key) {
			return slog.String(a.Key, "***")
		}
		return slog.Attr{Key: a.Key, Value: v}
	}
}

var sensitiveKeys = []string{
	"password", "passwd", "secret", "token",
	"api_key", "apikey", "authorization", "cookie",
	"private_key",
}

// isSensitiveKey checks if a key name indicates sensitive data.
func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}
	return false
}

// maskValue keeps a short prefix of v for correlation.
func maskValue(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 8 {
		return "***"
	}
	return v[:4] + "***"
}
