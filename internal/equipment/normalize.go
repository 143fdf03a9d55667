package equipment

import (
	"regexp"
	"strings"
	"unicode"
)

// fold lowercases s and drops everything but letters and digits, so
// "ER Medium-Laser" and "ermediumlaser" compare equal.
func fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Slug converts an identifier into lower-case hyphen-separated words,
// splitting camel case ("ERMediumLaser" -> "er-medium-laser") and
// letter/digit runs ("LRM10" -> "lrm-10"). Slug is idempotent.
func Slug(s string) string {
	rs := []rune(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(rs) + 4)
	sep := true
	for i, r := range rs {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			if !sep {
				b.WriteByte('-')
				sep = true
			}
			continue
		}
		if !sep && wordBoundary(rs, i) {
			b.WriteByte('-')
		}
		b.WriteRune(unicode.ToLower(r))
		sep = false
	}
	return strings.TrimRight(b.String(), "-")
}

func wordBoundary(rs []rune, i int) bool {
	prev, cur := rs[i-1], rs[i]
	switch {
	case unicode.IsLower(prev) && unicode.IsUpper(cur):
		return true
	case unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(rs) && unicode.IsLower(rs[i+1]):
		// end of an acronym: "ERMedium" -> "er" + "medium"
		return true
	case unicode.IsLetter(prev) && unicode.IsDigit(cur), unicode.IsDigit(prev) && unicode.IsLetter(cur):
		return true
	}
	return false
}

const clanPrefix = "clan-"

type techMarker int

const (
	noMarker techMarker = iota
	clanMarker
	isMarker
)

var markerSuffixes = []struct {
	suffix string
	marker techMarker
}{
	{"(clan)", clanMarker},
	{"(cl)", clanMarker},
	{"(inner sphere)", isMarker},
	{"(is)", isMarker},
}

// splitTechBase detects a tech-base marker and returns the remaining body.
// Recognised forms: suffix "(Clan)"/"(IS)", spaced or slugged prefixes
// ("Clan ER PPC", "clan-er-ppc", "Inner Sphere LRM 10", "is-lrm-10") and
// compact MegaMek prefixes ("CLERPPC", "ISLRM10").
func splitTechBase(s string) (string, techMarker) {
	s = strings.TrimSpace(s)
	for _, m := range markerSuffixes {
		n := len(s) - len(m.suffix)
		if n > 0 && strings.EqualFold(s[n:], m.suffix) {
			if body := strings.TrimSpace(s[:n]); body != "" {
				return body, m.marker
			}
		}
	}

	for _, p := range []struct {
		word   string
		marker techMarker
	}{
		{"inner sphere", isMarker},
		{"inner-sphere", isMarker},
		{"clan", clanMarker},
		{"cl", clanMarker},
		{"is", isMarker},
	} {
		if len(s) <= len(p.word) || !strings.EqualFold(s[:len(p.word)], p.word) {
			continue
		}
		next := rune(s[len(p.word)])
		body := s[len(p.word):]
		switch {
		case next == ' ' || next == '-' || next == '_':
			if body = strings.TrimLeft(body, " -_"); body != "" {
				return body, p.marker
			}
		case compactMarker(s[:len(p.word)]) && (unicode.IsUpper(next) || unicode.IsDigit(next)):
			return body, p.marker
		}
	}
	return s, noMarker
}

// compactMarker reports whether a prefix is written the way MegaMek glues
// it onto names: "CL", "IS" or "Clan".
func compactMarker(prefix string) bool {
	switch prefix {
	case "CL", "IS", "Clan":
		return true
	}
	return false
}

func applyMarker(id string, m techMarker) string {
	if m == clanMarker && !strings.HasPrefix(id, clanPrefix) {
		return clanPrefix + id
	}
	return id
}

var (
	trailingCounter = regexp.MustCompile(`-\d+$`)
	leadingIndex    = regexp.MustCompile(`^\d+-`)
)

// counterVariants returns s, s without a trailing "-N" duplicate counter,
// s without a leading "N-" slot index, and s with both removed. Empty or
// repeated variants are skipped.
func counterVariants(s string) []string {
	out := []string{s}
	add := func(v string) {
		if v == "" {
			return
		}
		for _, o := range out {
			if o == v {
				return
			}
		}
		out = append(out, v)
	}
	trail := trailingCounter.ReplaceAllString(s, "")
	lead := leadingIndex.ReplaceAllString(s, "")
	add(trail)
	add(lead)
	add(leadingIndex.ReplaceAllString(trail, ""))
	return out
}
