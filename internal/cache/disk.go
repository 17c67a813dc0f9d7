package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tmc/pkg/logging"
)

// DefaultTTL is how long a disk entry stays fresh.
const DefaultTTL = 60 * time.Second

// DefaultDir returns the default on-disk cache location.
func DefaultDir() string {
	return filepath.Join(os.TempDir(), "tmc-cache")
}

// Disk persists one JSON file per signature under a directory. Entries carry
// an expiry; stale or unreadable files read as misses.
type Disk struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

type envelope struct {
	Signature string    `json:"signature"`
	Expires   time.Time `json:"expires"`
	Data      any       `json:"data"`
}

// NewDisk returns a disk store rooted at dir. A zero or negative ttl falls
// back to DefaultTTL.
func NewDisk(dir string, ttl time.Duration) *Disk {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Disk{dir: dir, ttl: ttl, now: time.Now}
}

func (d *Disk) Get(signature string) (any, bool) {
	raw, err := os.ReadFile(d.path(signature))
	if err != nil {
		return nil, false
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false
	}
	if !d.now().Before(env.Expires) {
		return nil, false
	}
	return env.Data, true
}

func (d *Disk) Put(signature string, body any) {
	env := envelope{
		Signature: signature,
		Expires:   d.now().Add(d.ttl),
		Data:      body,
	}
	raw, err := json.Marshal(env)
	if err != nil {
		logging.Warn("cache", "encoding entry for %q: %v", signature, err)
		return
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		logging.Warn("cache", "creating cache dir %s: %v", d.dir, err)
		return
	}
	if err := os.WriteFile(d.path(signature), raw, 0o644); err != nil {
		logging.Warn("cache", "writing entry for %q: %v", signature, err)
	}
}

func (d *Disk) path(signature string) string {
	sum := sha256.Sum256([]byte(signature))
	return filepath.Join(d.dir, fmt.Sprintf("tmc-cache_%x.json", sum))
}
