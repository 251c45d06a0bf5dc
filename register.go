package u2f

import (
	"crypto/x509"
)

// BeginRegistration produces a U2fRegisterRequest bundle for the caller to
// serialize to the client. registeredKeys are echoed back unmodified so a
// device already enrolled for appID can refuse to re-register; pass nil if
// the user has no devices yet. A challenge is generated internally unless
// one is supplied (non-nil), in which case it must be challengeSize bytes.
func BeginRegistration(appID string, registeredKeys []RegisteredKey, challenge []byte) (*U2fRegisterRequest, error) {
	if challenge == nil {
		c, err := newChallenge()
		if err != nil {
			return nil, err
		}
		challenge = c
	}
	return &U2fRegisterRequest{
		AppId: appID,
		RegisterRequests: []RegisterRequest{{
			Version:   versionU2F,
			AppId:     appID,
			Challenge: encodeBase64(challenge),
		}},
		RegisteredKeys: registeredKeys,
	}, nil
}

// CompleteRegistration validates resp against the original req and, on
// success, returns the DeviceRegistration the caller should persist for
// this user along with the attestation certificate (for optional
// inspection, e.g. via the attestation package). validFacets, if non-nil,
// restricts which origins may complete the exchange.
func CompleteRegistration(req U2fRegisterRequest, resp RegisterResponse, validFacets []string) (*DeviceRegistration, *x509.Certificate, error) {
	registerReq, err := req.request(versionU2F)
	if err != nil {
		return nil, nil, err
	}

	clientData, clientDataRaw, err := decodeClientData(resp.ClientData)
	if err != nil {
		return nil, nil, err
	}
	if err := validateClientData(clientData, typeRegister, registerReq.Challenge, validFacets); err != nil {
		return nil, nil, err
	}

	rawRegData, err := decodeBase64(resp.RegistrationData)
	if err != nil {
		return nil, nil, err
	}
	regData, err := parseRegistrationData(rawRegData)
	if err != nil {
		return nil, nil, err
	}

	cert, err := regData.certificate()
	if err != nil {
		return nil, nil, err
	}

	appParam := applicationParameter(req.AppId)
	chalParam := sha256Sum(clientDataRaw)
	if err := verifyRegistrationSignature(cert, appParam, chalParam, regData); err != nil {
		return nil, nil, err
	}

	transports, err := readTransportsExtension(cert)
	if err != nil {
		return nil, nil, err
	}

	return &DeviceRegistration{
		Version:    versionU2F,
		AppId:      req.AppId,
		KeyHandle:  encodeBase64(regData.KeyHandle),
		PublicKey:  encodeBase64(regData.PubKey),
		Transports: transports,
	}, cert, nil
}

// verifyRegistrationSignature checks the attestation signature over
//
//	0x00 | applicationParameter | challengeParameter | keyHandle | pubKey
func verifyRegistrationSignature(cert *x509.Certificate, appParam, chalParam [32]byte, regData *registrationData) error {
	signedData := make([]byte, 0, 1+32+32+len(regData.KeyHandle)+len(regData.PubKey))
	signedData = append(signedData, 0x00)
	signedData = append(signedData, appParam[:]...)
	signedData = append(signedData, chalParam[:]...)
	signedData = append(signedData, regData.KeyHandle...)
	signedData = append(signedData, regData.PubKey...)

	if err := cert.CheckSignature(x509.ECDSAWithSHA256, signedData, regData.Signature); err != nil {
		return wrapErr(ErrInvalidSignature, "attestation signature verification failed", err)
	}
	return nil
}

// validateClientData enforces the three checks every complete_* call makes
// against ClientData before touching any cryptography.
func validateClientData(cd *ClientData, wantType, wantChallengeB64 string, validFacets []string) error {
	if cd.Typ != wantType {
		return newErr(ErrWrongType, "clientData.typ is "+cd.Typ+", expected "+wantType)
	}
	if cd.Challenge != wantChallengeB64 {
		return newErr(ErrWrongChallenge, "clientData.challenge does not match the issued challenge")
	}
	if validFacets != nil {
		found := false
		for _, f := range validFacets {
			if f == cd.Origin {
				found = true
				break
			}
		}
		if !found {
			return newErr(ErrInvalidFacet, "clientData.origin "+cd.Origin+" is not a valid facet")
		}
	}
	return nil
}
