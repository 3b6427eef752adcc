// Package cookie parses the Cookie and Set-Cookie header grammars used by
// the session layer (C5). It mirrors the field set and parsing rules of
// the original aqaSend implementation's nom-based grammar — RFC 6265
// cookie-octet charset, IMF-fixdate Expires values — rather than using
// net/http's cookie jar, since the server never needs to round-trip
// cookies through a net/http.Client.
package cookie

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// SameSite mirrors the three values the Set-Cookie SameSite attribute can
// take.
type SameSite int

const (
	SameSiteStrict SameSite = iota
	SameSiteLax
	SameSiteNone
)

func (s SameSite) String() string {
	switch s {
	case SameSiteStrict:
		return "Strict"
	case SameSiteLax:
		return "Lax"
	case SameSiteNone:
		return "None"
	default:
		return "None"
	}
}

// DayName is the three-letter weekday abbreviation used in IMF-fixdate.
type DayName int

const (
	Mon DayName = iota
	Tue
	Wed
	Thu
	Fri
	Sat
	Sun
)

var dayNames = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func (d DayName) String() string {
	if d < Mon || d > Sun {
		return ""
	}
	return dayNames[d]
}

var monthAbbrev = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// DateHeader is an IMF-fixdate timestamp, decomposed the way the original
// parser decomposed it rather than folded into time.Time, so Render can
// reproduce the exact wire format byte for byte.
type DateHeader struct {
	DayName DayName
	Day     uint8
	Month   uint8 // 1-12
	Year    uint16
	Hour    uint8
	Minute  uint8
	Second  uint8
}

// Render formats d as "Wed, 21 Oct 2015 07:28:00 GMT".
func (d DateHeader) Render() string {
	return fmt.Sprintf("%s, %02d %s %04d %02d:%02d:%02d GMT",
		d.DayName, d.Day, monthAbbrev[d.Month-1], d.Year, d.Hour, d.Minute, d.Second)
}

// Cookie is a single parsed Set-Cookie header's fields.
type Cookie struct {
	Name     string
	Value    string
	Expires  *DateHeader
	MaxAge   *int64
	Domain   string
	Path     string
	Secure   bool
	HTTPOnly bool
	SameSite *SameSite
}

var errMalformed = errors.New("malformed cookie header")

// ParseCookie parses a request "Cookie: name=value; name2=value2" header
// into a map, as sent by a browser for every request that has an active
// session (§4.3).
func ParseCookie(input string) (map[string]string, error) {
	out := make(map[string]string)
	if input == "" {
		return out, nil
	}
	for _, pair := range strings.Split(input, "; ") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, errors.Wrapf(errMalformed, "pair %q has no '='", pair)
		}
		if !isCookieToken(name) || !isCookieToken(value) {
			return nil, errors.Wrapf(errMalformed, "pair %q uses a disallowed character", pair)
		}
		out[name] = value
	}
	return out, nil
}

// ParseSetCookie parses a single response "Set-Cookie: ..." header value
// into a Cookie, including its attributes (§4.3).
func ParseSetCookie(input string) (Cookie, error) {
	var c Cookie

	head, rest, _ := strings.Cut(input, "; ")
	name, value, ok := strings.Cut(head, "=")
	if !ok || !isCookieToken(name) || !isCookieToken(value) {
		return c, errors.Wrapf(errMalformed, "cookie pair %q is invalid", head)
	}
	c.Name, c.Value = name, value

	for rest != "" {
		var attr string
		attr, rest, _ = strings.Cut(rest, "; ")

		switch {
		case strings.HasPrefix(attr, "Expires="):
			date, err := parseDate(strings.TrimPrefix(attr, "Expires="))
			if err != nil {
				return c, err
			}
			c.Expires = &date
		case strings.HasPrefix(attr, "Max-Age="):
			n, err := strconv.ParseInt(strings.TrimPrefix(attr, "Max-Age="), 10, 64)
			if err != nil {
				return c, errors.Wrap(errMalformed, "invalid Max-Age")
			}
			c.MaxAge = &n
		case strings.HasPrefix(attr, "Domain="):
			c.Domain = strings.TrimPrefix(attr, "Domain=")
		case strings.HasPrefix(attr, "Path="):
			c.Path = strings.TrimPrefix(attr, "Path=")
		case attr == "Secure":
			c.Secure = true
		case attr == "HttpOnly":
			c.HTTPOnly = true
		case strings.HasPrefix(attr, "SameSite="):
			ss, err := parseSameSite(strings.TrimPrefix(attr, "SameSite="))
			if err != nil {
				return c, err
			}
			c.SameSite = &ss
		default:
			return c, errors.Wrapf(errMalformed, "unrecognized attribute %q", attr)
		}
	}

	return c, nil
}

// Render formats c back into a Set-Cookie header value. Attribute order
// matches the server's own handlers (§8), not the order they happened to
// be parsed in.
func (c Cookie) Render() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(c.Value)

	if c.Expires != nil {
		b.WriteString("; Expires=")
		b.WriteString(c.Expires.Render())
	}
	if c.MaxAge != nil {
		b.WriteString("; Max-Age=")
		b.WriteString(strconv.FormatInt(*c.MaxAge, 10))
	}
	if c.Domain != "" {
		b.WriteString("; Domain=")
		b.WriteString(c.Domain)
	}
	if c.Path != "" {
		b.WriteString("; Path=")
		b.WriteString(c.Path)
	}
	if c.Secure {
		b.WriteString("; Secure")
	}
	if c.HTTPOnly {
		b.WriteString("; HttpOnly")
	}
	if c.SameSite != nil {
		b.WriteString("; SameSite=")
		b.WriteString(c.SameSite.String())
	}
	return b.String()
}

func parseSameSite(s string) (SameSite, error) {
	switch s {
	case "Strict":
		return SameSiteStrict, nil
	case "Lax":
		return SameSiteLax, nil
	case "None":
		return SameSiteNone, nil
	default:
		return 0, errors.Wrapf(errMalformed, "unknown SameSite value %q", s)
	}
}

func parseDate(s string) (DateHeader, error) {
	var d DateHeader

	dayName, s, ok := strings.Cut(s, ", ")
	if !ok {
		return d, errors.Wrap(errMalformed, "date missing day name")
	}
	idx := indexOf(dayNames[:], dayName)
	if idx == -1 {
		return d, errors.Wrapf(errMalformed, "unknown day name %q", dayName)
	}
	d.DayName = DayName(idx)

	if len(s) < 11 || s[2] != ' ' || s[6] != ' ' {
		return d, errors.Wrap(errMalformed, "malformed date body")
	}
	day, err := strconv.ParseUint(s[0:2], 10, 8)
	if err != nil {
		return d, errors.Wrap(errMalformed, "invalid day")
	}
	d.Day = uint8(day)

	monIdx := indexOf(monthAbbrev[:], s[3:6])
	if monIdx == -1 {
		return d, errors.Wrapf(errMalformed, "unknown month %q", s[3:6])
	}
	d.Month = uint8(monIdx + 1)

	s = s[7:]
	if len(s) < 5 || s[4] != ' ' {
		return d, errors.Wrap(errMalformed, "malformed year")
	}
	year, err := strconv.ParseUint(s[0:4], 10, 16)
	if err != nil {
		return d, errors.Wrap(errMalformed, "invalid year")
	}
	d.Year = uint16(year)

	s = s[5:]
	if len(s) < 12 || s[2] != ':' || s[5] != ':' {
		return d, errors.Wrap(errMalformed, "malformed time of day")
	}
	hour, err1 := strconv.ParseUint(s[0:2], 10, 8)
	minute, err2 := strconv.ParseUint(s[3:5], 10, 8)
	second, err3 := strconv.ParseUint(s[6:8], 10, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return d, errors.Wrap(errMalformed, "invalid time of day")
	}
	d.Hour, d.Minute, d.Second = uint8(hour), uint8(minute), uint8(second)

	if s[8:] != " GMT" {
		return d, errors.Wrap(errMalformed, "date must end in \" GMT\"")
	}

	return d, nil
}

func indexOf(ss []string, v string) int {
	for i, s := range ss {
		if s == v {
			return i
		}
	}
	return -1
}

// isCookieToken reports whether s is entirely made of RFC 6265's
// cookie-octet charset (a conservative subset of token excluding control
// characters, whitespace, DQUOTE, comma, semicolon and backslash).
func isCookieToken(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range []byte(s) {
		if !isCookieOctet(c) {
			return false
		}
	}
	return true
}

func isCookieOctet(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '!', c >= '#' && c <= '\'', c >= '*' && c <= '+', c >= '-' && c <= '.', c == '`', c == '|', c == '~':
		return true
	default:
		return false
	}
}
