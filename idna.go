package u2f

import "golang.org/x/net/idna"

// applicationParameter computes SHA-256 of the IDNA-encoded appId, binding
// every signature produced under it to this relying party. ASCII appIds
// round-trip through IDNA unchanged, but the conversion is mandatory for
// interoperability with other U2F implementations that always apply it.
func applicationParameter(appID string) [32]byte {
	encoded, err := idna.ToASCII(appID)
	if err != nil {
		// idna.ToASCII treats the whole appId URL as dot-separated labels
		// and converts only the non-ASCII ones, so an ASCII appId comes
		// back unchanged. Fall back to the raw string rather than reject
		// the request.
		encoded = appID
	}
	return sha256Sum([]byte(encoded))
}
