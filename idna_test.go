package u2f

import "testing"

func TestApplicationParameterASCIIStable(t *testing.T) {
	const appID = "https://example.com/u2f"
	a := applicationParameter(appID)
	b := sha256Sum([]byte(appID))
	if a != b {
		t.Errorf("applicationParameter(%q) = %x, want plain SHA-256 %x", appID, a, b)
	}
}

func TestApplicationParameterDeterministic(t *testing.T) {
	const appID = "https://example.com/u2f"
	if applicationParameter(appID) != applicationParameter(appID) {
		t.Error("applicationParameter is not deterministic for the same input")
	}
	if applicationParameter(appID) == applicationParameter(appID+"x") {
		t.Error("applicationParameter collided across two distinct appIds")
	}
}
