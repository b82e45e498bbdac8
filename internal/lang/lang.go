// Package lang turns locale-like strings ("hu_HU", "en-US") into the short
// language codes used both for provider requests and per-language storage keys.
package lang

import "strings"

// Short returns the lower-case, letter-only short code for a locale-like
// string, or "" when nothing usable remains. Callers must filter out "".
func Short(val string) string {
	val = strings.TrimSpace(val)
	if val == "" {
		return ""
	}
	r := strings.NewReplacer(" ", "-", ".", "-", "_", "-")
	val = r.Replace(val)
	first, _, _ := strings.Cut(val, "-")
	first = strings.ToLower(first)

	var b strings.Builder
	for _, c := range first {
		if c >= 'a' && c <= 'z' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// SanitizeList parses an operator-entered language list (newline or comma
// separated), normalizes every entry, de-duplicates preserving first-seen
// order, and guarantees the site default is present. Never returns an empty
// slice as long as siteDefault normalizes to something.
func SanitizeList(raw, siteDefault string) []string {
	def := Short(siteDefault)

	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	raw = strings.ReplaceAll(raw, ",", "\n")

	seen := make(map[string]struct{})
	var out []string
	add := func(code string) {
		if code == "" {
			return
		}
		if _, ok := seen[code]; ok {
			return
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}

	for _, part := range strings.Split(raw, "\n") {
		add(Short(part))
	}
	if len(out) == 0 {
		add(def)
	}
	if _, ok := seen[def]; !ok {
		add(def)
	}
	return out
}
