package u2f

import "testing"

// TestFullFlow exercises registration followed by authentication against a
// real captured Yubikey/Chrome exchange (same fixture tstranex-u2f's own
// u2f_test.go uses), proving the two operations compose: a registration
// response completes successfully and the resulting DeviceRegistration then
// completes a matching authentication with the expected counter.
func TestFullFlow(t *testing.T) {
	const appID = "http://localhost:3483"

	regReq := U2fRegisterRequest{
		AppId: appID,
		RegisterRequests: []RegisterRequest{{
			Version:   versionU2F,
			AppId:     appID,
			Challenge: "s4UJ3wkN80p4wLjyI2Guv-_a-s7LV54Ic9PAZvHo_lM",
		}},
	}

	const regRespJSON = `{"registrationData":"BQTD17IP7bZ3Gcd7l5Ao4qqohsUcm0bcXgHLpn0pv2VWNl7SBtNFo0wEoAdMrHlFXGzJgQz_bRZaKXZfHyd3fAo0QJmZkSv9ZbTKz7TVO6jnOcKGrSHb15JDatMMFxHxN5BR56CE3sj10jtGOY7szQIi4RGU6kONIuriAarxuEFJ5IswggIcMIIBBqADAgECAgQk26tAMAsGCSqGSIb3DQEBCzAuMSwwKgYDVQQDEyNZdWJpY28gVTJGIFJvb3QgQ0EgU2VyaWFsIDQ1NzIwMDYzMTAgFw0xNDA4MDEwMDAwMDBaGA8yMDUwMDkwNDAwMDAwMFowKzEpMCcGA1UEAwwgWXViaWNvIFUyRiBFRSBTZXJpYWwgMTM1MDMyNzc4ODgwWTATBgcqhkjOPQIBBggqhkjOPQMBBwNCAAQCsJS-NH1HeUHEd46-xcpN7SpHn6oeb-w5r-veDCBwy1vUvWnJanjjv4dR_rV5G436ysKUAXUcsVe5fAnkORo2oxIwEDAOBgorBgEEAYLECgEBBAAwCwYJKoZIhvcNAQELA4IBAQCjY64OmDrzC7rxLIst81pZvxy7ShsPy2jEhFWEkPaHNFhluNsCacNG5VOITCxWB68OonuQrIzx70MfcqwYnbIcgkkUvxeIpVEaM9B7TI40ZHzp9h4VFqmps26QCkAgYfaapG4SxTK5k_lCPvqqTPmjtlS03d7ykkpUj9WZlVEN1Pf02aTVIZOHPHHJuH6GhT6eLadejwxtKDBTdNTv3V4UlvjDOQYQe9aL1jUNqtLDeBHso8pDvJMLc0CX3vadaI2UVQxM-xip4kuGouXYj0mYmaCbzluBDFNsrzkNyL3elg3zMMrKvAUhoYMjlX_-vKWcqQsgsQ0JtSMcWMJ-umeDMEQCIApTYovLr8citOpIKkyNidCQz7UeSOWNMlPBB-s3r4G9AiAskXkh7iale4QDe6a-675L3xzohYb8Fcvz3gH6dkDLvw","version":"U2F_V2","challenge":"s4UJ3wkN80p4wLjyI2Guv-_a-s7LV54Ic9PAZvHo_lM","appId":"http://localhost:3483","clientData":"eyJ0eXAiOiJuYXZpZ2F0b3IuaWQuZmluaXNoRW5yb2xsbWVudCIsImNoYWxsZW5nZSI6InM0VUozd2tOODBwNHdManlJMkd1di1fYS1zN0xWNTRJYzlQQVp2SG9fbE0iLCJvcmlnaW4iOiJodHRwOi8vbG9jYWxob3N0OjM0ODMiLCJjaWRfcHVia2V5IjoiIn0"}`

	var regResp RegisterResponse
	mustUnmarshal(t, []byte(regRespJSON), &regResp)

	dev, cert, err := CompleteRegistration(regReq, regResp, []string{appID})
	if err != nil {
		t.Fatalf("CompleteRegistration: %v", err)
	}
	if cert == nil {
		t.Fatal("CompleteRegistration returned a nil attestation certificate")
	}
	if dev.Version != versionU2F {
		t.Errorf("Version = %q, want %q", dev.Version, versionU2F)
	}

	signReq := U2fSignRequest{
		AppId:     appID,
		Challenge: "PzN6SGiUaeypErE3SCHeRlkRxVwfWlGVi35gfq6LsdY",
		RegisteredKeys: []RegisteredKey{
			dev.RegisteredKey(),
		},
	}

	const signRespJSON = `{"keyHandle":"mZmRK_1ltMrPtNU7qOc5woatIdvXkkNq0wwXEfE3kFHnoITeyPXSO0Y5juzNAiLhEZTqQ40i6uIBqvG4QUnkiw","clientData":"eyJ0eXAiOiJuYXZpZ2F0b3IuaWQuZ2V0QXNzZXJ0aW9uIiwiY2hhbGxlbmdlIjoiUHpONlNHaVVhZXlwRXJFM1NDSGVSbGtSeFZ3ZldsR1ZpMzVnZnE2THNkWSIsIm9yaWdpbiI6Imh0dHA6Ly9sb2NhbGhvc3Q6MzQ4MyIsImNpZF9wdWJrZXkiOiIifQ","signatureData":"AQAAAAYwRAIgBuyafOXoc9Q7fARcs2JbCZdtnMzVCyeJC-J-2Im1IBsCIDxkzmvPX9RCY8uts4wM1y4wEX9LmNH2Mz_VFd-JdyGE"}`

	var signResp SignResponse
	mustUnmarshal(t, []byte(signRespJSON), &signResp)

	if signResp.KeyHandle != dev.KeyHandle {
		t.Fatalf("fixture key handle mismatch: response has %q, registration produced %q", signResp.KeyHandle, dev.KeyHandle)
	}

	counter, userPresence, err := CompleteAuthentication(signReq, signResp, []DeviceRegistration{*dev}, []string{appID})
	if err != nil {
		t.Fatalf("CompleteAuthentication: %v", err)
	}
	if counter != 6 {
		t.Errorf("counter = %d, want 6", counter)
	}
	if userPresence != 1 {
		t.Errorf("userPresence = %d, want 1", userPresence)
	}
}

func mustUnmarshal(t *testing.T, data []byte, v interface{ UnmarshalJSON([]byte) error }) {
	t.Helper()
	if err := v.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
}
