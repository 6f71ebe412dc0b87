package hostprobe

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func Test_protect(t *testing.T) {
	appID := "ms.azur.appX"
	key := "3f1c0a5e9b7d24680ace13579bdf0246813579bdf02468ace13579bdf0246813"
	hash := protect(appID, key)
	if len(hash) != 64 {
		t.Fatalf("expected HMAC-SHA256 hex format (64 chars), got length %d", len(hash))
	}
	if hash != protect(appID, key) {
		t.Error("same input should produce same hash")
	}
	if hash == protect(appID+"different", key) {
		t.Error("different app id should produce different hash")
	}
	if hash == protect(appID, key+"0") {
		t.Error("different fingerprint should produce different hash")
	}
}

func TestProtectedIDKeyedByFingerprint(t *testing.T) {
	fb := machine()
	cfg := &Config{Backend: fb.factory()}

	fp, err := cfg.Fingerprint()
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	id, err := cfg.ProtectedID("app")
	if err != nil {
		t.Fatalf("protected id: %v", err)
	}
	if id != protect("app", fp.ID) {
		t.Fatalf("unexpected id: got %s want %s", id, protect("app", fp.ID))
	}
	if id == fp.ID {
		t.Fatal("protected id must not expose the fingerprint")
	}

	other, err := cfg.ProtectedID("other-app")
	if err != nil {
		t.Fatalf("protected id: %v", err)
	}
	if other == id {
		t.Fatal("different applications should get different ids")
	}
}

func TestProtectedIDPropagatesNoFactors(t *testing.T) {
	stubBackend(t, (&fakeBackend{}).factory())

	_, err := ProtectedID("app")
	if err == nil {
		t.Fatal("expected error without hardware factors")
	}
	if !errors.Is(err, ErrNoFactorsFound) {
		t.Fatalf("expected ErrNoFactorsFound in chain, got %v", err)
	}
}
