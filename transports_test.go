package u2f

import "testing"

// TestDecodeTransportsBitString uses the same single-byte BIT STRING shape
// (4 unused bits, content 0x30) the transports extension test fixtures use,
// which decodes to USB|NFC.
func TestDecodeTransportsBitString(t *testing.T) {
	der := []byte{0x03, 0x02, 0x04, 0x30}
	mask, err := decodeTransportsBitString(der)
	if err != nil {
		t.Fatalf("decodeTransportsBitString: %v", err)
	}
	want := int(TransportUSB | TransportNFC)
	if mask != want {
		t.Errorf("mask = %#x, want %#x", mask, want)
	}
}

func TestDecodeTransportsBitStringEmpty(t *testing.T) {
	der := []byte{0x03, 0x01, 0x00}
	mask, err := decodeTransportsBitString(der)
	if err != nil {
		t.Fatalf("decodeTransportsBitString: %v", err)
	}
	if mask != 0 {
		t.Errorf("mask = %#x, want 0", mask)
	}
}

func TestDecodeTransportsBitStringMalformed(t *testing.T) {
	if _, err := decodeTransportsBitString([]byte{0x04, 0x01, 0x00}); err == nil {
		t.Fatal("expected an error decoding a non-BIT-STRING TLV")
	}
}

func TestTransportsToStrings(t *testing.T) {
	got := transportsToStrings(int(TransportUSB | TransportNFC))
	want := []string{"usb", "nfc"}
	if len(got) != len(want) {
		t.Fatalf("transportsToStrings = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("transportsToStrings[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTransportString(t *testing.T) {
	if TransportBLE.String() != "ble" {
		t.Errorf("TransportBLE.String() = %q, want ble", TransportBLE.String())
	}
	if Transport(0x10).String() != "unknown" {
		t.Errorf("unrecognized Transport.String() = %q, want unknown", Transport(0x10).String())
	}
}
