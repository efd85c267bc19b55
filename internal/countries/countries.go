// Package countries resolves the country identifiers found in the event log.
// The canonical form used by filters is ISO 3166-1 alpha-2.
package countries

import (
	"errors"
	"fmt"
	"strings"

	"github.com/biter777/countries"
)

// ErrUnknownCountry is returned when an identifier does not resolve.
var ErrUnknownCountry = errors.New("unknown country")

func lookup(code string) (countries.CountryCode, bool) {
	value := strings.TrimSpace(code)
	if value == "" {
		return countries.Unknown, false
	}
	c := countries.ByName(value)
	if c == countries.Unknown || !c.IsValid() {
		return countries.Unknown, false
	}
	return c, true
}

// Alpha3 converts an alpha-2 code, alpha-3 code or English name into the
// ISO alpha-3 code.
func Alpha3(code string) (string, error) {
	c, ok := lookup(code)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCountry, code)
	}
	return c.Alpha3(), nil
}

// DisplayName returns the English name, or code itself if it does not resolve.
func DisplayName(code string) string {
	c, ok := lookup(code)
	if !ok {
		return code
	}
	return c.String()
}

// Normalize maps user input onto the alpha-2 code stored in the event log.
// Unresolvable values are returned trimmed but otherwise unchanged.
func Normalize(value string) string {
	c, ok := lookup(value)
	if !ok {
		return strings.TrimSpace(value)
	}
	return c.Alpha2()
}

// NormalizeAll normalises every value and drops blanks and duplicates,
// keeping first-seen order.
func NormalizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		n := Normalize(v)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Info is the display form of one country code.
type Info struct {
	Code   string `json:"code"`
	Alpha3 string `json:"alpha3"`
	Name   string `json:"name"`
}

// Describe builds the display form of code. Alpha3 is blank when the code
// does not resolve.
func Describe(code string) Info {
	alpha3, _ := Alpha3(code)
	return Info{Code: code, Alpha3: alpha3, Name: DisplayName(code)}
}
