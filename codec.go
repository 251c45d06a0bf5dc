package u2f

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// encodeBase64 returns the unpadded, URL-safe base64 encoding used for
// every binary field ("web-safe base64") in the U2F wire format.
func encodeBase64(buf []byte) string {
	return strings.TrimRight(base64.URLEncoding.EncodeToString(buf), "=")
}

// decodeBase64 reverses encodeBase64, restoring the padding the encoder
// stripped before handing the string to the standard decoder.
func decodeBase64(s string) ([]byte, error) {
	if rem := len(s) % 4; rem != 0 {
		s += strings.Repeat("=", 4-rem)
	}
	buf, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, wrapErr(ErrMalformedMessage, "invalid web-safe base64", err)
	}
	return buf, nil
}

func sha256Sum(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// pubKeyDERPrefix is the fixed 26-byte SubjectPublicKeyInfo header for a
// P-256 EC public key. Prepending it to a 65-byte uncompressed point
// produces a DER-encoded public key that crypto/x509's key loaders accept.
var pubKeyDERPrefix = []byte{
	0x30, 0x59, 0x30, 0x13, 0x06, 0x07, 0x2a, 0x86, 0x48, 0xce, 0x3d, 0x02, 0x01,
	0x06, 0x08, 0x2a, 0x86, 0x48, 0xce, 0x3d, 0x03, 0x01, 0x07, 0x03, 0x42, 0x00,
}

// wrapP256PublicKeyDER wraps a 65-byte uncompressed P-256 point (leading
// 0x04) into a DER-encoded SubjectPublicKeyInfo.
func wrapP256PublicKeyDER(point []byte) []byte {
	der := make([]byte, 0, len(pubKeyDERPrefix)+len(point))
	der = append(der, pubKeyDERPrefix...)
	der = append(der, point...)
	return der
}

// asn1ObjectLength computes the total byte length (tag + length + content)
// of the DER object whose TLV header starts at buf[0], by reading only the
// length octets: if the first length byte is < 0x80 it is the length
// itself; otherwise its low 7 bits give the count of following big-endian
// length octets. Used to split a registrationData blob into the
// certificate and the trailing signature without a full ASN.1 parse.
func asn1ObjectLength(buf []byte) (int, error) {
	if len(buf) < 2 {
		return 0, newErr(ErrMalformedRegistration, "truncated ASN.1 header")
	}
	lenByte := buf[1]
	if lenByte < 0x80 {
		return 2 + int(lenByte), nil
	}
	n := int(lenByte &^ 0x80)
	if n == 0 || len(buf) < 2+n {
		return 0, newErr(ErrMalformedRegistration, "truncated ASN.1 long-form length")
	}
	length := 0
	for _, b := range buf[2 : 2+n] {
		length = length<<8 | int(b)
	}
	return 2 + n + length, nil
}
