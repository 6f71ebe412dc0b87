package hostprobe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/cockroachdb/errors"
)

// ProtectedID returns an application specific device binding id: the
// HMAC-SHA256 of appID keyed by the hardware fingerprint. It never exposes
// the fingerprint itself, and different applications get unrelated ids on
// the same machine.
func ProtectedID(appID string, categories ...Category) (string, error) {
	return (&Config{Categories: categories}).ProtectedID(appID)
}

// ProtectedID computes the binding id from this configuration's fingerprint.
func (c *Config) ProtectedID(appID string) (string, error) {
	fp, err := c.Fingerprint()
	if err != nil {
		return "", errors.Wrap(err, "hostprobe: protected id")
	}
	return protect(appID, fp.ID), nil
}

// protect calculates HMAC-SHA256 of appID keyed by key and returns a hex encoded string.
func protect(appID, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(appID))
	return hex.EncodeToString(mac.Sum(nil))
}
