package cookie_test

import (
	"testing"

	"github.com/aqasend/aqasend/cookie"
)

func TestParseDate(t *testing.T) {
	d, err := cookie.ParseSetCookie("x=y; Expires=Wed, 21 Oct 2015 07:28:01 GMT")
	if err != nil {
		t.Fatal(err)
	}
	if d.Expires == nil {
		t.Fatal("expected Expires to be set")
	}
	got := *d.Expires
	if got.DayName != cookie.Wed || got.Day != 21 || got.Month != 10 || got.Year != 2015 ||
		got.Hour != 7 || got.Minute != 28 || got.Second != 1 {
		t.Fatalf("unexpected date: %+v", got)
	}
}

func TestParseSetCookieMinimal(t *testing.T) {
	c, err := cookie.ParseSetCookie("id=a3fWa")
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "id" || c.Value != "a3fWa" {
		t.Fatalf("unexpected cookie: %+v", c)
	}
	if c.Expires != nil || c.MaxAge != nil || c.Domain != "" || c.Path != "" || c.Secure || c.HTTPOnly || c.SameSite != nil {
		t.Fatalf("expected all optional fields unset: %+v", c)
	}
}

func TestParseSetCookieAllAttributes(t *testing.T) {
	raw := "id=a3fWa; Expires=Wed, 21 Oct 2015 07:28:00 GMT; HttpOnly; Secure; SameSite=Strict; Domain=foo.example.com; Max-Age=12305; Path=/docs/Web/HTTP"
	c, err := cookie.ParseSetCookie(raw)
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "id" || c.Value != "a3fWa" {
		t.Fatalf("unexpected name/value: %+v", c)
	}
	if c.Domain != "foo.example.com" || c.Path != "/docs/Web/HTTP" {
		t.Fatalf("unexpected domain/path: %+v", c)
	}
	if !c.Secure || !c.HTTPOnly {
		t.Fatalf("expected Secure and HttpOnly set: %+v", c)
	}
	if c.SameSite == nil || *c.SameSite != cookie.SameSiteStrict {
		t.Fatalf("expected SameSite=Strict: %+v", c)
	}
	if c.MaxAge == nil || *c.MaxAge != 12305 {
		t.Fatalf("expected MaxAge=12305: %+v", c)
	}
}

func TestParseCookieHeader(t *testing.T) {
	m, err := cookie.ParseCookie("session=abc123; theme=dark")
	if err != nil {
		t.Fatal(err)
	}
	if m["session"] != "abc123" || m["theme"] != "dark" {
		t.Fatalf("unexpected map: %+v", m)
	}
}

func TestParseCookieRejectsDisallowedCharacters(t *testing.T) {
	if _, err := cookie.ParseCookie(`session="abc123"`); err == nil {
		t.Fatal("expected error for quoted value")
	}
}

func TestRenderRoundTrip(t *testing.T) {
	c := cookie.Cookie{Name: "session", Value: "abc123", Secure: true, HTTPOnly: true}
	same := SameSiteNoneHelper()
	c.SameSite = &same
	rendered := c.Render()
	parsed, err := cookie.ParseSetCookie(rendered)
	if err != nil {
		t.Fatalf("round trip parse failed: %v, rendered=%q", err, rendered)
	}
	if parsed.Name != c.Name || parsed.Value != c.Value || !parsed.Secure || !parsed.HTTPOnly {
		t.Fatalf("round trip mismatch: %+v", parsed)
	}
}

func SameSiteNoneHelper() cookie.SameSite {
	return cookie.SameSiteNone
}
