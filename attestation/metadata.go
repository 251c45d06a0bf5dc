// Package attestation resolves a U2F attestation certificate against a set
// of trusted vendor metadata, answering "is this a known, trusted
// authenticator, and if so what does the vendor say about it".
package attestation

import "github.com/strandkey/u2f"

// Selector describes one way a DeviceInfo entry can be matched against an
// attestation certificate: Type names a registered Matcher (e.g.
// "fingerprint", "x509Extension") and Parameters carries matcher-specific
// arguments.
type Selector struct {
	Type       string                 `json:"type"`
	Parameters map[string]interface{} `json:"parameters"`
}

// DeviceInfo describes one authenticator model covered by a MetadataObject.
// A nil Selectors means "matches any certificate trusted by this metadata
// object" (no further discrimination needed).
type DeviceInfo struct {
	VendorInfo map[string]interface{} `json:"vendorInfo,omitempty"`
	Selectors  []Selector             `json:"selectors,omitempty"`
	Transports *int                   `json:"transports,omitempty"`
}

// transportMask returns the device's declared transports as a bitmask. It
// returns 0 both when Transports is nil and when it declares an empty set;
// only Transports itself tells the two apart.
func (d DeviceInfo) transportMask() int {
	if d.Transports == nil {
		return 0
	}
	return *d.Transports
}

// MetadataObject is one vendor's signed statement about a set of trusted
// root certificates and the devices attested by them.
type MetadataObject struct {
	Identifier          string                 `json:"identifier"`
	Version             int                    `json:"version"`
	VendorInfo          map[string]interface{} `json:"vendorInfo,omitempty"`
	TrustedCertificates []string               `json:"trustedCertificates"`
	Devices             []DeviceInfo           `json:"devices"`
}

// Attestation is the result of resolving a certificate: whether it chains to
// trusted metadata, what that metadata says about the vendor and device, and
// the union of transports declared by the certificate itself and by the
// matched device entry.
type Attestation struct {
	Trusted    bool
	VendorInfo map[string]interface{}
	Device     DeviceInfo
	Transports []u2f.Transport
}

func transportsFromMask(mask int) []u2f.Transport {
	if mask == 0 {
		return nil
	}
	var out []u2f.Transport
	for _, t := range []u2f.Transport{u2f.TransportBT, u2f.TransportBLE, u2f.TransportUSB, u2f.TransportNFC} {
		if mask&int(t) != 0 {
			out = append(out, t)
		}
	}
	return out
}
