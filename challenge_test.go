package u2f

import "testing"

func TestNewChallengeSizeAndFreshness(t *testing.T) {
	a, err := newChallenge()
	if err != nil {
		t.Fatalf("newChallenge: %v", err)
	}
	if len(a) != challengeSize {
		t.Fatalf("len(challenge) = %d, want %d", len(a), challengeSize)
	}
	b, err := newChallenge()
	if err != nil {
		t.Fatalf("newChallenge: %v", err)
	}
	if string(a) == string(b) {
		t.Error("two consecutive challenges were identical")
	}
}
