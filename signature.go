package u2f

import "encoding/binary"

// signatureData is the parsed form of the raw byte frame a device returns
// in SignResponse.SignatureData:
//
//	userPresence(1) | counter(4 big-endian) | signature(DER ECDSA)
type signatureData struct {
	UserPresence byte // only the low bit is meaningful
	Counter      uint32
	Signature    []byte
}

func parseSignatureData(buf []byte) (*signatureData, error) {
	if len(buf) < 5 {
		return nil, newErr(ErrMalformedRegistration, "signatureData frame shorter than the fixed header")
	}
	return &signatureData{
		UserPresence: buf[0],
		Counter:      binary.BigEndian.Uint32(buf[1:5]),
		Signature:    append([]byte(nil), buf[5:]...),
	}, nil
}

func (s *signatureData) bytes() []byte {
	out := make([]byte, 5, 5+len(s.Signature))
	out[0] = s.UserPresence
	binary.BigEndian.PutUint32(out[1:5], s.Counter)
	out = append(out, s.Signature...)
	return out
}

// userPresent reports the semantic (0/1) user-presence bit.
func (s *signatureData) userPresent() byte {
	return s.UserPresence & 1
}
