// Package compatibility scores how well two users fit together from their
// natal charts (synastry) and their questionnaire answers.
//
// Everything here is pure: no I/O, no shared mutable state. Charts and answers
// are loaded by the caller.
package compatibility

import (
	"fmt"
	"math"
	"strings"
)

// Body is a celestial body or chart point.
type Body string

const (
	Sun       Body = "sun"
	Moon      Body = "moon"
	Mercury   Body = "mercury"
	Venus     Body = "venus"
	Mars      Body = "mars"
	Jupiter   Body = "jupiter"
	Saturn    Body = "saturn"
	Uranus    Body = "uranus"
	Neptune   Body = "neptune"
	Pluto     Body = "pluto"
	Ascendant Body = "ascendant"
)

// Bodies lists every body a chart summary may carry.
var Bodies = []Body{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto, Ascendant}

// Sign is a zodiac sign.
type Sign string

const (
	Aries       Sign = "aries"
	Taurus      Sign = "taurus"
	Gemini      Sign = "gemini"
	Cancer      Sign = "cancer"
	Leo         Sign = "leo"
	Virgo       Sign = "virgo"
	Libra       Sign = "libra"
	Scorpio     Sign = "scorpio"
	Sagittarius Sign = "sagittarius"
	Capricorn   Sign = "capricorn"
	Aquarius    Sign = "aquarius"
	Pisces      Sign = "pisces"
)

// Signs in zodiac order; the index doubles as the row/column of the sun-sign table.
var Signs = [12]Sign{Aries, Taurus, Gemini, Cancer, Leo, Virgo, Libra, Scorpio, Sagittarius, Capricorn, Aquarius, Pisces}

// Index returns the zodiac position of s (Aries = 0) or -1 if s is unknown.
func (s Sign) Index() int {
	norm := Sign(strings.ToLower(strings.TrimSpace(string(s))))
	for i, v := range Signs {
		if v == norm {
			return i
		}
	}
	return -1
}

// Valid reports whether s is one of the twelve signs.
func (s Sign) Valid() bool { return s.Index() >= 0 }

// SignOf returns the sign containing an absolute ecliptic degree.
func SignOf(degree float64) Sign {
	return Signs[int(Normalize(degree)/30)%12]
}

// Position of one body. Degree is the absolute ecliptic longitude in [0, 360);
// nil when the upstream chart only knows the sign (no birth time, for example).
type Position struct {
	Sign   Sign     `json:"sign"`
	Degree *float64 `json:"degree,omitempty"`
}

// Chart is a precomputed natal chart summary. Missing bodies are simply absent.
type Chart struct {
	Positions map[Body]Position `json:"positions"`
}

// Degree returns the absolute degree for b if the chart carries one.
func (c *Chart) Degree(b Body) (float64, bool) {
	if c == nil {
		return 0, false
	}
	p, ok := c.Positions[b]
	if !ok || p.Degree == nil {
		return 0, false
	}
	return Normalize(*p.Degree), true
}

// SunSign returns the Sun's sign, derived from its degree when the sign is not set.
func (c *Chart) SunSign() (Sign, bool) {
	if c == nil {
		return "", false
	}
	p, ok := c.Positions[Sun]
	if !ok {
		return "", false
	}
	if p.Sign.Valid() {
		return Sign(strings.ToLower(string(p.Sign))), true
	}
	if p.Degree != nil {
		return SignOf(*p.Degree), true
	}
	return "", false
}

// Validate rejects degrees outside [0, 360] and unknown signs.
func (c *Chart) Validate() error {
	if c == nil {
		return nil
	}
	for body, p := range c.Positions {
		if p.Sign != "" && !p.Sign.Valid() {
			return fmt.Errorf("%s: unknown sign %q", body, p.Sign)
		}
		if p.Degree != nil {
			if d := *p.Degree; math.IsNaN(d) || d < 0 || d > 360 {
				return fmt.Errorf("%s: degree %v out of range", body, d)
			}
		}
	}
	return nil
}

// Normalize folds any angle into [0, 360).
func Normalize(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// Separation is the shortest angular distance between two ecliptic degrees,
// always in [0, 180].
func Separation(a, b float64) float64 {
	diff := math.Abs(Normalize(a) - Normalize(b))
	return math.Min(diff, 360-diff)
}
