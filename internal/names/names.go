// Package names parses and normalizes personal names and free text used by the catalog.
//
// A name is stored as four parts: last, first, middle, and suffix. Parse accepts
// either the sort form ("Herbert, Frank Patrick, Jr.") or the display form
// ("Frank Patrick Herbert Jr.").
package names

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// knownSuffixes are recognized at the end of a display-form name.
var knownSuffixes = map[string]bool{
	"jr": true, "jr.": true, "sr": true, "sr.": true,
	"ii": true, "iii": true, "iv": true, "v": true,
	"phd": true, "ph.d.": true, "md": true, "m.d.": true,
}

// Name holds the parts of a personal name. Empty parts are absent.
type Name struct {
	Last   string `json:"last"`
	First  string `json:"first"`
	Middle string `json:"middle,omitempty"`
	Suffix string `json:"suffix,omitempty"`
}

// Text trims, collapses inner whitespace, and NFC-normalizes s.
func Text(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// ISBN strips spaces and hyphens and upper-cases an ISBN-10 check digit.
func ISBN(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, Text(s))
	return strings.ToUpper(s)
}

// Parse splits raw into name parts.
//
// With commas the input is read as "Last, First Middle, Suffix". Without commas
// the last word is the last name (after peeling off a known suffix), the first
// word is the first name, and anything between is the middle name. A single word
// is a last name.
func Parse(raw string) Name {
	raw = Text(raw)
	if raw == "" {
		return Name{}
	}

	if strings.Contains(raw, ",") {
		parts := strings.Split(raw, ",")
		n := Name{Last: Text(parts[0])}
		if len(parts) > 1 {
			given := strings.Fields(parts[1])
			if len(given) > 0 {
				n.First = given[0]
				n.Middle = strings.Join(given[1:], " ")
			}
		}
		if len(parts) > 2 {
			n.Suffix = Text(strings.Join(parts[2:], " "))
		}
		return n
	}

	words := strings.Fields(raw)
	var n Name
	if len(words) > 1 && knownSuffixes[strings.ToLower(words[len(words)-1])] {
		n.Suffix = words[len(words)-1]
		words = words[:len(words)-1]
	}
	switch len(words) {
	case 0:
	case 1:
		n.Last = words[0]
	default:
		n.First = words[0]
		n.Last = words[len(words)-1]
		n.Middle = strings.Join(words[1:len(words)-1], " ")
	}
	return n
}

// Normalize returns n with every part passed through Text.
func (n Name) Normalize() Name {
	return Name{
		Last:   Text(n.Last),
		First:  Text(n.First),
		Middle: Text(n.Middle),
		Suffix: Text(n.Suffix),
	}
}

// Complete reports whether the required last and first parts are present.
func (n Name) Complete() bool {
	return n.Last != "" && n.First != ""
}

// IsZero reports whether no part is set.
func (n Name) IsZero() bool {
	return n == Name{}
}

// String renders the display form, e.g. "Frank Herbert Jr.".
func (n Name) String() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{n.First, n.Middle, n.Last, n.Suffix} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// SortName renders the sort form, e.g. "Herbert, Frank, Jr.".
func (n Name) SortName() string {
	var b strings.Builder
	b.WriteString(n.Last)
	given := strings.TrimSpace(n.First + " " + n.Middle)
	if given != "" {
		b.WriteString(", ")
		b.WriteString(given)
	}
	if n.Suffix != "" {
		b.WriteString(", ")
		b.WriteString(n.Suffix)
	}
	return b.String()
}
