package lang_test

import (
	"reflect"
	"testing"

	"reviews_importer/internal/lang"
)

func TestShort(t *testing.T) {
	cases := map[string]string{
		"hu_HU":       "hu",
		"hu-HU":       "hu",
		"HU":          "hu",
		" hu ":        "hu",
		"en-US":       "en",
		"en US":       "en",
		"pt.BR":       "pt",
		"":            "",
		"   ":         "",
		"123-45":      "",
		"fr_1":        "fr",
		"de_DE.UTF-8": "de",
	}
	for in, want := range cases {
		if got := lang.Short(in); got != want {
			t.Errorf("Short(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		def  string
		want []string
	}{
		{"mixed separators", "hu_HU\nen-US,de", "hu_HU", []string{"hu", "en", "de"}},
		{"dedupe keeps first-seen order", "en\nEN_us\nhu", "en", []string{"en", "hu"}},
		{"empty input falls back to default", "", "hu_HU", []string{"hu"}},
		{"default appended when missing", "en\nfr", "hu_HU", []string{"en", "fr", "hu"}},
		{"garbage entries dropped", "123\n\n  ,en", "en_US", []string{"en"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := lang.SanitizeList(tc.raw, tc.def)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("SanitizeList(%q, %q) = %v, want %v", tc.raw, tc.def, got, tc.want)
			}
		})
	}
}
