// Package config holds the process-global, effectively-immutable
// configuration of an aqasend daemon: the DB root, the bucket layout, and
// the background task intervals. Mirrors the single atomically-swapped
// pointer pattern of cmn.GCO in the teacher repo, simplified to a
// write-once owner since this spec has no live-reload requirement.
package config

import (
	"time"

	"go.uber.org/atomic"
)

// Buckets is the fixed set of download-count directories under the DB root.
var Buckets = [...]string{"1", "5", "10", "100", "infinite"}

// Config is the full set of daemon knobs. All fields are read-only after
// Owner.Set is called once at startup.
type Config struct {
	// Root is the directory under which index/accounts/registration_codes
	// and the bucket directories live.
	Root string

	// MaxUploadSize bounds the total bytes a multipart.Reader accepts
	// through Feed across every part of a single multipart upload (§4.4
	// TooBig).
	MaxUploadSize int64

	// MaxHeaderSize is not read by any component: the multipart reader
	// applies its own fixed 16 KiB bound to the header block of a part.
	MaxHeaderSize int

	// EvictInterval is the tick period of the eviction engine (C7).
	EvictInterval time.Duration
	// EvictStartLag delays the first eviction tick after startup.
	EvictStartLag time.Duration

	// SaveInterval is the tick period of the periodic snapshot save.
	SaveInterval time.Duration
	// SaveStartLag delays the first periodic save after startup.
	SaveStartLag time.Duration
}

// Default returns the baseline configuration used when no flags override it.
func Default(root string) *Config {
	return &Config{
		Root:          root,
		MaxUploadSize: 1 << 30, // 1 GiB
		MaxHeaderSize: 1 << 14, // 16 KiB
		EvictInterval: time.Hour,
		EvictStartLag: time.Minute,
		SaveInterval:  5 * time.Minute,
		SaveStartLag:  time.Minute,
	}
}

// Owner atomically swaps and exposes a *Config. Only Set (called once, at
// startup, before any request is served) mutates it; Get is lock-free.
type Owner struct {
	ptr atomic.Pointer[Config]
}

// NewOwner constructs an Owner already holding cfg.
func NewOwner(cfg *Config) *Owner {
	o := &Owner{}
	o.Set(cfg)
	return o
}

// Set installs cfg as the current configuration.
func (o *Owner) Set(cfg *Config) {
	o.ptr.Store(cfg)
}

// Get returns the current configuration. Never nil once Set has been called.
func (o *Owner) Get() *Config {
	return o.ptr.Load()
}
