package logging

import (
	"log/slog"
	"strings"
)

// RedactedValue replaces sensitive values in log output.
const RedactedValue = "[REDACTED]"

// sensitiveKeys are masked by every logger built by Setup regardless of the
// call site.
var sensitiveKeys = map[string]struct{}{
	"authorization": {},
	"token":         {},
	"bearer":        {},
	"secret":        {},
	"hmacsecret":    {},
	"headers":       {},
	"password":      {},
}

// IsSensitive reports whether values logged under key are masked.
func IsSensitive(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

// MaskValue returns RedactedValue for non-empty values.
func MaskValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return value
	}
	return RedactedValue
}

// MaskField returns an attribute whose value is always redacted, for keys
// that are not sensitive by name, e.g. raw reward payloads.
func MaskField(key, value string) slog.Attr {
	return slog.String(key, MaskValue(value))
}

func redactAttr(attr slog.Attr) slog.Attr {
	if IsSensitive(attr.Key) && attr.Value.Kind() != slog.KindGroup {
		return slog.String(attr.Key, MaskValue(attr.Value.String()))
	}
	return attr
}
