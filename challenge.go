package u2f

import "crypto/rand"

// challengeSize is the fixed length, in bytes, of every U2F challenge.
const challengeSize = 32

// newChallenge returns challengeSize fresh random bytes. Challenge
// freshness (reuse, expiry) is the caller's session-store policy; this
// only guarantees the bytes are drawn fresh from the platform CSPRNG.
func newChallenge() ([]byte, error) {
	buf := make([]byte, challengeSize)
	if _, err := rand.Read(buf); err != nil {
		return nil, wrapErr(ErrMalformedMessage, "failed to read random challenge", err)
	}
	return buf, nil
}
