package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestValidateSignature_OK(t *testing.T) {
	secret := "channel-secret"
	body := []byte(`{"destination":"U1","events":[]}`)

	if !ValidateSignature(secret, body, sign(secret, body)) {
		t.Error("valid signature should pass")
	}
}

func TestValidateSignature_Rejects(t *testing.T) {
	secret := "channel-secret"
	body := []byte(`{"destination":"U1","events":[]}`)

	tests := []struct {
		name      string
		signature string
	}{
		{"wrong secret", sign("other-secret", body)},
		{"tampered body", sign(secret, []byte(`{"destination":"U2","events":[]}`))},
		{"not base64", "%%%not-base64%%%"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ValidateSignature(secret, body, tt.signature) {
				t.Error("invalid signature should fail")
			}
		})
	}
}
