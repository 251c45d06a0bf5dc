package u2f

import "encoding/hex"

// certsNeedingFixup holds the SHA-256 hashes (over the full DER) of known
// early Yubico attestation certificates whose BIT STRING "unused bits"
// value was miscoded. Taken verbatim from the known CERTS_TO_FIX table of
// affected certificate hashes.
var certsNeedingFixup = mustHashes(
	"349bca1031f8c82c4ceca38b9cebf1a69df9fb3b94eed99eb3fb9aa3822d26e8",
	"dd574527df608e47ae45fbba75a2afdd5c20fd94a02419381813cd55a2a3398f",
	"1d8764f0f7cd1352df6150045c8f638e517270e8b5dda1c63ade9c2280240cae",
	"d0edc9a91a1677435a953390865d208c55b3183c6759c9b5a7ff494c322558eb",
	"6073c436dcd064a48127ddbf6032ac1a66fd59a0c24434f070d4e564c124c897",
	"ca993121846c464d666096d35f13bf44c1b05af205f9b4a1e00cf6cc10c5e511",
)

func mustHashes(hexes ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(hexes))
	for _, h := range hexes {
		b, err := hex.DecodeString(h)
		if err != nil {
			panic("u2f: bad certsNeedingFixup entry: " + err.Error())
		}
		m[string(b)] = struct{}{}
	}
	return m
}

// fixupCertificate zeroes the miscoded "unused bits" byte at offset -257
// from the end of der, but only when der's own SHA-256 appears in the
// known allow-list. All other certificates pass through unchanged (the
// returned slice aliases der in that case; callers must not mutate der
// afterwards if they also hold the original).
func fixupCertificate(der []byte) []byte {
	sum := sha256Sum(der)
	if _, bad := certsNeedingFixup[string(sum[:])]; !bad {
		return der
	}
	if len(der) < 257 {
		return der
	}
	fixed := make([]byte, len(der))
	copy(fixed, der)
	fixed[len(fixed)-257] = 0
	return fixed
}
