package store

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// MarshalJSON renders DownloadCountType the way the original Rust
// implementation's serde-tagged enum does: "Infinite" or {"Count": n}.
func (d DownloadCountType) MarshalJSON() ([]byte, error) {
	if d.Kind == Infinite {
		return json.Marshal("Infinite")
	}
	return json.Marshal(struct {
		Count uint64 `json:"Count"`
	}{d.Max})
}

// UnmarshalJSON accepts either the bare string "Infinite" or {"Count": n}.
func (d *DownloadCountType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != "Infinite" {
			return errors.Errorf("download_count_type: unknown variant %q", s)
		}
		*d = DownloadCountType{Kind: Infinite}
		return nil
	}
	var wrapped struct {
		Count uint64 `json:"Count"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return errors.Wrap(err, "download_count_type")
	}
	*d = DownloadCountType{Kind: Count, Max: wrapped.Count}
	return nil
}

// MarshalJSON renders Lifetime as "Infinite" or a nanosecond duration
// number, matching Rust's `#[serde(untagged)]` enum over Duration.
func (l Lifetime) MarshalJSON() ([]byte, error) {
	if l.Kind == LifetimeInfinite {
		return json.Marshal("Infinite")
	}
	return json.Marshal(int64(l.Duration))
}

// UnmarshalJSON accepts either "Infinite" or a nanosecond duration number.
func (l *Lifetime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != "Infinite" {
			return errors.Errorf("lifetime: unknown variant %q", s)
		}
		*l = Lifetime{Kind: LifetimeInfinite}
		return nil
	}
	var ns int64
	if err := json.Unmarshal(b, &ns); err != nil {
		return errors.Wrap(err, "lifetime")
	}
	*l = Lifetime{Kind: LifetimeDuration, Duration: time.Duration(ns)}
	return nil
}
