package u2f

import (
	"crypto/x509"
	"encoding/asn1"
)

// Transport is a bit in the authenticator-transports bitmask. The same
// bitmask is used both for the value decoded from an attestation
// certificate's transports extension and for the value a MetadataObject's
// DeviceInfo declares; the attestation package unions the two.
type Transport int

const (
	TransportBT  Transport = 0x01 // Bluetooth Classic
	TransportBLE Transport = 0x02 // Bluetooth Low Energy
	TransportUSB Transport = 0x04
	TransportNFC Transport = 0x08
)

var transportNames = map[Transport]string{
	TransportBT:  "bt",
	TransportBLE: "ble",
	TransportUSB: "usb",
	TransportNFC: "nfc",
}

func (t Transport) String() string {
	if name, ok := transportNames[t]; ok {
		return name
	}
	return "unknown"
}

// transportsExtensionOID identifies the vendor extension (FIDO Alliance
// enterprise number 45724) carrying a device's supported transports as a
// DER BIT STRING.
var transportsExtensionOID = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 45724, 2, 1, 1}

// readTransportsExtension decodes the transports extension from cert, if
// present, into its component Transport bits. A nil, nil return means the
// extension was absent (unknown transport set, not empty).
func readTransportsExtension(cert *x509.Certificate) ([]string, error) {
	mask, ok, err := CertificateTransportMask(cert)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	names := transportsToStrings(mask)
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// CertificateTransportMask decodes the authenticator-transports extension
// from cert into a Transport bitmask. The second return is false if cert
// carries no such extension (an unknown transport set, not an empty one).
func CertificateTransportMask(cert *x509.Certificate) (int, bool, error) {
	bits, ok := extensionValue(cert, transportsExtensionOID)
	if !ok {
		return 0, false, nil
	}
	mask, err := decodeTransportsBitString(bits)
	if err != nil {
		return 0, false, err
	}
	return mask, true, nil
}

func extensionValue(cert *x509.Certificate, oid asn1.ObjectIdentifier) ([]byte, bool) {
	for _, ext := range cert.Extensions {
		if ext.Id.Equal(oid) {
			return ext.Value, true
		}
	}
	return nil, false
}

// decodeTransportsBitString decodes a DER BIT STRING (tag+length+unused-bits
// prefix included, as stored in pkix.Extension.Value) into a Transport
// bitmask. The first content byte after the length is the count U of
// unused trailing bits; the remaining bytes are read MSB-first but with
// each byte's bit order reversed (bit 0 of the wire byte becomes the high
// bit of the accumulated integer), masking off the low U bits of the final
// byte before folding it in.
func decodeTransportsBitString(der []byte) (int, error) {
	var bitString asn1.BitString
	if _, err := asn1.Unmarshal(der, &bitString); err != nil {
		return 0, wrapErr(ErrMalformedRegistration, "transports extension is not a DER BIT STRING", err)
	}
	raw := append([]byte(nil), bitString.Bytes...)
	if len(raw) == 0 {
		return 0, nil
	}
	unused := 8*len(raw) - bitString.BitLength
	last := len(raw) - 1
	raw[last] &^= byte(1<<uint(unused) - 1)

	// Read bytes in their original (MSB-first) order, but reverse each
	// byte's own bit order (bit 0 <-> bit 7) as it's folded in.
	mask := 0
	for _, b := range raw {
		for bit := 0; bit < 8; bit++ {
			mask = mask<<1 | int(b&1)
			b >>= 1
		}
	}
	return mask, nil
}

func transportsToStrings(mask int) []string {
	var out []string
	for _, t := range []Transport{TransportBT, TransportBLE, TransportUSB, TransportNFC} {
		if mask&int(t) != 0 {
			out = append(out, t.String())
		}
	}
	return out
}
