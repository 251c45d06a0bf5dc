package u2f

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"encoding/asn1"
	"math/big"
)

type ecdsaSignature struct {
	R, S *big.Int
}

func ellipticPublicKey(x, y *big.Int) *ecdsa.PublicKey {
	return &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}
}

// verifyECDSADER verifies a DER-encoded SEQUENCE{r,s} ECDSA signature over
// SHA-256(data) using pub. Used for SignResponse assertions, which are
// verified against a stored raw public key rather than an X.509
// certificate (register.go uses x509.Certificate.CheckSignature instead,
// since an attestation certificate is available there).
func verifyECDSADER(pub *ecdsa.PublicKey, data, sig []byte) bool {
	var parsed ecdsaSignature
	if rest, err := asn1.Unmarshal(sig, &parsed); err != nil || len(rest) != 0 {
		return false
	}
	digest := sha256.Sum256(data)
	return ecdsa.Verify(pub, digest[:], parsed.R, parsed.S)
}
