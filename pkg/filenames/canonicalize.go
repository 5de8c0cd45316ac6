package filenames

import (
	"regexp"
	"strings"
	"unicode"
)

// junkPrefixes are watermark tags that download sites prepend to uploaded
// files. Each one is checked once, in order, against the start of the name.
var junkPrefixes = []string{
	"oceanofpdf.com_",
	"_oceanofpdf.com_",
}

// junkSeparator marks the start of an appended junk suffix, e.g.
// "my_book_-_oceanofpdf.com.pdf".
const junkSeparator = "_-_"

var (
	disallowedRE = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphensRE    = regexp.MustCompile(`-+`)
)

// Canonicalize cleans an uploaded filename into its canonical form. The
// extension is split off the original name before any rule runs and is
// re-attached unchanged. The second return value is false when nothing usable
// is left of the base name.
func Canonicalize(name string) (string, bool) {
	base, ext := SplitExt(name)

	base = strings.ToLower(base)

	for _, prefix := range junkPrefixes {
		base = strings.TrimPrefix(base, prefix)
	}

	if i := strings.Index(base, junkSeparator); i >= 0 {
		base = base[:i]
	}

	base = collapseSeparators(base)
	base = disallowedRE.ReplaceAllString(base, "")
	base = hyphensRE.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")

	if base == "" {
		return "", false
	}

	return base + ext, true
}

// collapseSeparators replaces every run of whitespace and underscores with a
// single hyphen.
func collapseSeparators(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inRun := false
	for _, r := range s {
		if isSeparator(r) {
			if !inRun {
				b.WriteByte('-')
				inRun = true
			}
			continue
		}
		inRun = false
		b.WriteRune(r)
	}

	return b.String()
}

// isSeparator reports whether r is an underscore or whitespace. The ASCII
// information separators (0x1c-0x1f) count as whitespace too, since uploads
// coming from Python tooling treat them that way.
func isSeparator(r rune) bool {
	if r == '_' || unicode.IsSpace(r) {
		return true
	}
	return r >= 0x1c && r <= 0x1f
}

// SplitExt splits name into base and extension. The extension starts at the
// last dot of the final path element, unless every character before that dot
// is also a dot (".hidden" has no extension).
func SplitExt(name string) (string, string) {
	dot := strings.LastIndexByte(name, '.')
	sep := strings.LastIndexByte(name, '/')
	if dot <= sep {
		return name, ""
	}

	for i := sep + 1; i < dot; i++ {
		if name[i] != '.' {
			return name[:dot], name[dot:]
		}
	}

	return name, ""
}
