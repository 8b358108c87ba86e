package naming

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"gyre/internal/fileutil"
)

// Metadata carries the item fields the name template can reference.
type Metadata struct {
	ID        string
	Title     string
	Creation  string
	Channel   string
	Community string
	Tags      []string
}

var (
	unsafeChars   = regexp.MustCompile(`[^\p{L}\p{N}_\s().,+-]`)
	whitespace    = regexp.MustCompile(`\s+`)
	wordChars     = regexp.MustCompile(`[\p{L}\p{N}]`)
	openParenGap  = regexp.MustCompile(`\( `)
	closeParenGap = regexp.MustCompile(` \)`)
)

// asciiOnly decomposes compatibility equivalents and drops everything outside
// ASCII, matching an NFKD + ASCII-ignore transliteration.
var asciiOnly = transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
	return r > unicode.MaxASCII
})))

// Resolve produces the final output name for an item. Any template result
// that is empty after sanitizing, or that the filesystem rejects, falls back
// to the bare identifier. The fallback is deterministic and never fails.
func Resolve(meta Metadata, dir, template, tagSeparator string, allowUnicode bool) string {
	name := Sanitize(Assemble(meta, template, tagSeparator), allowUnicode)
	if name == "" || !validName(dir, name) {
		return meta.ID
	}
	return name
}

// Assemble substitutes the recognized placeholders into the template. Literal
// text passes through untouched. Colons in the creation timestamp become
// dashes so the result stays filename-safe on every platform.
func Assemble(meta Metadata, template, tagSeparator string) string {
	replacer := strings.NewReplacer(
		"%id%", meta.ID,
		"%title%", meta.Title,
		"%creation%", strings.ReplaceAll(meta.Creation, ":", "-"),
		"%channel%", meta.Channel,
		"%community%", meta.Community,
		"%tags%", strings.Join(meta.Tags, tagSeparator),
	)
	return replacer.Replace(template)
}

// Sanitize normalizes Unicode per policy, strips characters unsafe for
// filenames and collapses whitespace. An empty string signals the caller to
// fall back to the identifier.
func Sanitize(name string, allowUnicode bool) string {
	if allowUnicode {
		name = norm.NFKC.String(name)
	} else {
		converted, _, err := transform.String(asciiOnly, name)
		if err != nil {
			return ""
		}
		name = converted
	}

	name = unsafeChars.ReplaceAllString(name, " ")
	name = whitespace.ReplaceAllString(name, " ")

	// Nothing left worth naming after stripping.
	if !wordChars.MatchString(name) {
		return ""
	}

	// Tidy the gaps the ASCII conversion leaves behind inside parentheses,
	// then the stray separators at the edges.
	name = openParenGap.ReplaceAllString(name, "(")
	name = closeParenGap.ReplaceAllString(name, ")")
	name = strings.Trim(name, "-. ")

	return name
}

// validName checks a candidate by creating a zero-byte probe file with a
// representative extension. Illegal names and over-long paths fail here
// instead of mid-download.
func validName(dir, name string) bool {
	probe := filepath.Join(dir, name+".ext.gyre")
	if err := fileutil.Touch(probe); err != nil {
		return false
	}
	os.Remove(probe)
	return true
}
