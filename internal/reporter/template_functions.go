package reporter

import (
	"strings"
	"text/template"
	"time"
	"unicode"
)

// titleCase converts string to title case (replaces deprecated strings.Title)
func titleCase(s string) string {
	words := strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(s))
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// templateFunctions returns the functions available to console templates.
func templateFunctions() template.FuncMap {
	return template.FuncMap{
		"title":       titleCase,
		"upper":       strings.ToUpper,
		"joinStrings": strings.Join,
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return "never"
			}
			return t.UTC().Format("2006-01-02 15:04:05 UTC")
		},
		"duration": func(d time.Duration) string {
			return d.Round(time.Millisecond).String()
		},
		"orDash": func(s string) string {
			if s == "" {
				return "-"
			}
			return s
		},
	}
}
