// Package header parses the four aqa-* request headers that control an
// upload's lifecycle (C11), grounded on the original aqaSend
// implementation's headers.rs. One behavior is intentionally changed from
// the original: a missing aqa-lifetime header defaults to Lifetime
// Infinite rather than a 1-hour duration, per the governing specification.
package header

import (
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/aqasend/aqasend/config"
	"github.com/aqasend/aqasend/store"
)

const (
	Visibility    = "aqa-visibility"
	DownloadCount = "aqa-download-count"
	Password      = "aqa-password"
	Lifetime      = "aqa-lifetime"
)

// Error is a Bad Request-class error: every Error returned from this
// package is safe to present to the client verbatim (§C10 "user
// presentable").
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

func newErr(msg string) *Error { return &Error{msg: msg} }

// ParseVisibility defaults to Public when the header is absent, matching
// the original implementation.
func ParseVisibility(v string, present bool) (store.Visibility, error) {
	if !present {
		return store.Public, nil
	}
	switch v {
	case "public":
		return store.Public, nil
	case "private":
		return store.Private, nil
	default:
		return "", newErr("invalid aqa-visibility header value")
	}
}

// ParseDownloadCount requires the header to be present and to name one of
// the configured buckets.
func ParseDownloadCount(v string, present bool) (store.DownloadCountType, error) {
	if !present {
		return store.DownloadCountType{}, newErr("aqa-download-count header missing")
	}
	if !isConfiguredBucket(v) {
		return store.DownloadCountType{}, newErr("unsupported download count")
	}
	if v == "infinite" {
		return store.DownloadCountType{Kind: store.Infinite}, nil
	}
	count, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return store.DownloadCountType{}, errors.Wrap(newErr("invalid aqa-download-count header value"), err.Error())
	}
	return store.DownloadCountType{Kind: store.Count, Max: count}, nil
}

func isConfiguredBucket(v string) bool {
	for _, b := range config.Buckets {
		if b == v {
			return true
		}
	}
	return false
}

// ParsePassword URL-decodes the header value, matching the original
// implementation's urlencoding::decode call, so a password containing
// reserved characters survives transport as a header.
func ParsePassword(v string, present bool) (*string, error) {
	if !present {
		return nil, nil
	}
	decoded, err := url.QueryUnescape(v)
	if err != nil {
		return nil, newErr("invalid aqa-password header value")
	}
	return &decoded, nil
}

var lifetimeValues = map[string]store.Lifetime{
	"infinite": {Kind: store.LifetimeInfinite},
	"1 min":    {Kind: store.LifetimeDuration, Duration: time.Minute},
	"5 mins":   {Kind: store.LifetimeDuration, Duration: 5 * time.Minute},
	"1 hour":   {Kind: store.LifetimeDuration, Duration: time.Hour},
	"1 day":    {Kind: store.LifetimeDuration, Duration: 24 * time.Hour},
	"7 days":   {Kind: store.LifetimeDuration, Duration: 7 * 24 * time.Hour},
	"30 days":  {Kind: store.LifetimeDuration, Duration: 30 * 24 * time.Hour},
}

// ParseLifetime defaults to Infinite when the header is absent. This
// overrides the original implementation's 1-hour default, which the
// governing specification calls out explicitly.
func ParseLifetime(v string, present bool) (store.Lifetime, error) {
	if !present {
		return store.Lifetime{Kind: store.LifetimeInfinite}, nil
	}
	lt, ok := lifetimeValues[v]
	if !ok {
		return store.Lifetime{}, newErr("invalid aqa-lifetime header value. Possible values: [infinite|1 min|5 mins|1 hour|1 day|7 days|30 days]")
	}
	return lt, nil
}
