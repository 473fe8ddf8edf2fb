package domain

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SlugSourceLength is how many characters of a caption feed its slug.
const SlugSourceLength = 30

var (
	slugStrip    = regexp.MustCompile(`[^\w\s\v-]`)
	slugSeparate = regexp.MustCompile(`[-\s\v]+`)
)

// Slugify lowercases s, folds it to ASCII, drops anything that is not a
// word character, space or hyphen, and joins words with single hyphens.
func Slugify(s string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(s) {
		if r > unicode.MaxASCII {
			continue
		}
		b.WriteRune(r)
	}

	out := slugStrip.ReplaceAllString(strings.ToLower(b.String()), "")
	out = slugSeparate.ReplaceAllString(out, "-")
	return strings.Trim(out, "-_")
}

// PostSlug derives a post slug from the first SlugSourceLength characters
// of its caption. Slugs are not unique.
func PostSlug(caption string) string {
	r := []rune(caption)
	if len(r) > SlugSourceLength {
		r = r[:SlugSourceLength]
	}
	return Slugify(string(r))
}
