package u2f

import (
	"crypto/elliptic"
	"encoding/binary"
)

// BeginAuthentication produces a U2fSignRequest bundle, one SignRequest
// implied per device in devices (all sharing the same challenge). Pass nil
// challenge to have one generated.
func BeginAuthentication(appID string, devices []RegisteredKey, challenge []byte) (*U2fSignRequest, error) {
	if challenge == nil {
		c, err := newChallenge()
		if err != nil {
			return nil, err
		}
		challenge = c
	}
	return &U2fSignRequest{
		AppId:          appID,
		Challenge:      encodeBase64(challenge),
		RegisteredKeys: devices,
	}, nil
}

// CompleteAuthentication validates resp against req and the caller's
// devices, returning the raw counter and user-presence byte the device
// reported. Counter monotonicity is deliberately left to the caller: a
// non-increasing counter is a policy decision about cloned authenticators,
// not a core verification failure.
func CompleteAuthentication(req U2fSignRequest, resp SignResponse, devices []DeviceRegistration, validFacets []string) (counter uint32, userPresence byte, err error) {
	clientData, clientDataRaw, err := decodeClientData(resp.ClientData)
	if err != nil {
		return 0, 0, err
	}
	if err := validateClientData(clientData, typeSign, req.Challenge, validFacets); err != nil {
		return 0, 0, err
	}

	device, err := findDevice(devices, resp.KeyHandle)
	if err != nil {
		return 0, 0, err
	}

	rawSigData, err := decodeBase64(resp.SignatureData)
	if err != nil {
		return 0, 0, err
	}
	sigData, err := parseSignatureData(rawSigData)
	if err != nil {
		return 0, 0, err
	}

	appParam := device.applicationParameter(req.AppId)
	chalParam := sha256Sum(clientDataRaw)
	if err := verifyAssertionSignature(device, appParam, chalParam, sigData); err != nil {
		return 0, 0, err
	}

	return sigData.Counter, sigData.userPresent(), nil
}

func findDevice(devices []DeviceRegistration, keyHandle string) (*DeviceRegistration, error) {
	for i := range devices {
		if devices[i].KeyHandle == keyHandle {
			return &devices[i], nil
		}
	}
	return nil, newErr(ErrUnknownKeyHandle, "no registered device has key handle "+keyHandle)
}

// verifyAssertionSignature checks the assertion signature over
//
//	applicationParameter | userPresence(1) | counter(4) | challengeParameter
func verifyAssertionSignature(device *DeviceRegistration, appParam, chalParam [32]byte, sigData *signatureData) error {
	pubKeyRaw, err := decodeBase64(device.PublicKey)
	if err != nil {
		return err
	}
	x, y := elliptic.Unmarshal(elliptic.P256(), pubKeyRaw)
	if x == nil {
		return newErr(ErrMalformedRegistration, "stored public key is not a valid P-256 point")
	}

	signedData := make([]byte, 0, 32+1+4+32)
	signedData = append(signedData, appParam[:]...)
	signedData = append(signedData, sigData.UserPresence)
	counterBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(counterBuf, sigData.Counter)
	signedData = append(signedData, counterBuf...)
	signedData = append(signedData, chalParam[:]...)

	pub := ellipticPublicKey(x, y)
	if !verifyECDSADER(pub, signedData, sigData.Signature) {
		return newErr(ErrInvalidSignature, "assertion signature verification failed")
	}
	return nil
}
