package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// KeyPrefix starts every key produced by [DefaultKeyer].
const KeyPrefix = "repostats"

// KeyParts is the request identity a key is derived from.
type KeyParts struct {
	Owner    string
	Repo     string
	Username string
	Theme    string
	// Params holds any further rendering parameters in a canonical
	// encoding. It is left out of the hash when empty.
	Params string
}

// Keyer derives cache keys.
type Keyer interface {
	// Key returns the key for an endpoint kind (e.g. "repo_stats") and the
	// request identity. Equal inputs always yield equal keys.
	Key(kind string, parts KeyParts) string
}

// DefaultKeyer produces keys of the form "repostats:{kind}:{sha256}".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// Key implements Keyer.
func (DefaultKeyer) Key(kind string, p KeyParts) string {
	parts := []string{p.Owner, p.Repo, p.Username, p.Theme}
	if p.Params != "" {
		parts = append(parts, p.Params)
	}
	return hashKey(KeyPrefix+":"+kind, parts...)
}

// hashKey hashes the JSON encoding of parts, so ("a:b", "c") and
// ("a", "b:c") produce different keys.
func hashKey(prefix string, parts ...string) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash computes the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
