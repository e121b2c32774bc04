package export

import (
	"strings"
)

// ParseEmbedded parses a marketplace property value made of "key : value" lines.
// Each line is split on its first colon; keys are lower-cased and trimmed, values trimmed.
// Lines without a colon or with an empty key are ignored. Later keys overwrite earlier ones.
func ParseEmbedded(value string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(value, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		if key == "" {
			continue
		}
		out[key] = strings.TrimSpace(line[idx+1:])
	}
	return out
}
