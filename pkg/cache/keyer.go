package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ArtifactKeyOpts lists every input that changes a rendered document.
type ArtifactKeyOpts struct {
	SchemaHash string  `json:"schema"`
	RosterHash string  `json:"roster,omitempty"`
	Event      string  `json:"event,omitempty"`
	Room       string  `json:"room"`
	Judges     int     `json:"judges,omitempty"`
	TestDate   string  `json:"test_date,omitempty"`
	FontFamily string  `json:"font"`
	FontSize   float64 `json:"font_size"`
	OffsetX    float64 `json:"offset_x"`
	OffsetY    float64 `json:"offset_y"`
	Format     string  `json:"format"`
}

// Keyer derives cache keys.
type Keyer interface {
	ArtifactKey(opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the full option set.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(opts ArtifactKeyOpts) string {
	return hashKey("artifact", opts)
}

// ScopedKeyer prepends a fixed prefix to the keys of another Keyer, e.g. to
// keep renders made with different form printings apart.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, defaulting to DefaultKeyer when nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) ArtifactKey(opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(opts)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey returns "kind:" followed by the SHA-256 of v's JSON encoding.
func hashKey(kind string, v any) string {
	h := sha256.New()
	_ = json.NewEncoder(h).Encode(v)
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}
