package u2f

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
)

// registrationData is the parsed form of the raw byte frame a device
// returns in RegisterResponse.RegistrationData:
//
//	0x05 | pubKey(65) | khLen(1) | keyHandle(khLen) | certificate(DER) | signature(DER ECDSA)
type registrationData struct {
	PubKey      []byte // 65 bytes, uncompressed P-256 point, leading 0x04
	KeyHandle   []byte
	Certificate []byte // DER, with the cert fix-up already applied
	Signature   []byte // DER-encoded ECDSA SEQUENCE{r,s}
}

const registrationReservedByte = 0x05

// parseRegistrationData parses and validates a raw registrationData frame.
// The cert fix-up (see certfix.go) is applied before the certificate is
// returned.
func parseRegistrationData(buf []byte) (*registrationData, error) {
	if len(buf) < 1+65+1 {
		return nil, newErr(ErrMalformedRegistration, "frame shorter than the fixed header")
	}
	if buf[0] != registrationReservedByte {
		return nil, newErr(ErrMalformedRegistration, "reserved byte is not 0x05")
	}
	buf = buf[1:]

	pubKey := buf[:65]
	if pubKey[0] != 0x04 {
		return nil, newErr(ErrMalformedRegistration, "public key is not an uncompressed point")
	}
	buf = buf[65:]

	khLen := int(buf[0])
	buf = buf[1:]
	if len(buf) < khLen {
		return nil, newErr(ErrMalformedRegistration, "key handle runs past end of frame")
	}
	keyHandle := buf[:khLen]
	buf = buf[khLen:]

	certLen, err := asn1ObjectLength(buf)
	if err != nil {
		return nil, err
	}
	if len(buf) < certLen {
		return nil, newErr(ErrMalformedRegistration, "certificate length runs past end of frame")
	}
	certDER := fixupCertificate(buf[:certLen])
	signature := buf[certLen:]

	return &registrationData{
		PubKey:      append([]byte(nil), pubKey...),
		KeyHandle:   append([]byte(nil), keyHandle...),
		Certificate: certDER,
		Signature:   append([]byte(nil), signature...),
	}, nil
}

// bytes re-serializes the frame, used by the round-trip test property and
// to observe the cert fix-up's effect on the byte stream.
func (r *registrationData) bytes() []byte {
	out := make([]byte, 0, 1+len(r.PubKey)+1+len(r.KeyHandle)+len(r.Certificate)+len(r.Signature))
	out = append(out, registrationReservedByte)
	out = append(out, r.PubKey...)
	out = append(out, byte(len(r.KeyHandle)))
	out = append(out, r.KeyHandle...)
	out = append(out, r.Certificate...)
	out = append(out, r.Signature...)
	return out
}

func (r *registrationData) certificate() (*x509.Certificate, error) {
	cert, err := x509.ParseCertificate(r.Certificate)
	if err != nil {
		return nil, wrapErr(ErrMalformedRegistration, "attestation certificate does not parse as X.509", err)
	}
	return cert, nil
}

func (r *registrationData) publicKey() (*ecdsa.PublicKey, error) {
	x, y := elliptic.Unmarshal(elliptic.P256(), r.PubKey)
	if x == nil {
		return nil, newErr(ErrMalformedRegistration, "public key is not a valid P-256 point")
	}
	return &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}, nil
}
