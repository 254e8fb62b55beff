// Package validate holds the pure input hygiene functions: HTML-escape
// sanitization and the profanity check. Nickname and campus rules live
// with their entities in domain.
package validate

import "strings"

var htmlEscaper = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// Sanitize HTML-escapes and trims user text. It does not truncate;
// length caps are enforced at the operation boundary so oversize input
// surfaces as a validation failure instead of silent clipping.
func Sanitize(text string) string {
	return strings.TrimSpace(htmlEscaper.Replace(text))
}

// TODO: populate the blocklist before a public deployment.
var profanityList = []string{
	"badword1",
	"badword2",
}

func ContainsProfanity(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range profanityList {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
