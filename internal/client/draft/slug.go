package draft

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugInvalid = regexp.MustCompile(`[^\w-]+`)
	slugDashes  = regexp.MustCompile(`--+`)
)

// Slugify turns a form-field label into a submission name: accents stripped,
// lower case, whitespace runs as underscores, anything else outside [A-Za-z0-9_-] dropped.
func Slugify(label string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, label)
	if err != nil {
		plain = label
	}

	out := strings.TrimSpace(strings.ToLower(plain))
	out = slugSpaces.ReplaceAllString(out, "_")
	out = slugInvalid.ReplaceAllString(out, "")
	return slugDashes.ReplaceAllString(out, "-")
}
