package kalshi

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func writeTestKey(t *testing.T) (string, *rsa.PrivateKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "key.pem")
	pemData := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	if err := os.WriteFile(path, pemData, 0o600); err != nil {
		t.Fatal(err)
	}

	return path, key
}

func TestLoadCredentials(t *testing.T) {
	path, _ := writeTestKey(t)

	creds, err := LoadCredentials("key-id-1", path)
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if creds.KeyID != "key-id-1" {
		t.Errorf("KeyID = %q", creds.KeyID)
	}
	if creds.PrivateKey == nil {
		t.Fatal("PrivateKey is nil")
	}
}

func TestLoadCredentialsErrors(t *testing.T) {
	path, _ := writeTestKey(t)

	if _, err := LoadCredentials("", path); err == nil {
		t.Error("empty key ID should fail")
	}
	if _, err := LoadCredentials("id", ""); err == nil {
		t.Error("empty key path should fail")
	}
	if _, err := LoadCredentials("id", filepath.Join(t.TempDir(), "absent.pem")); err == nil {
		t.Error("missing key file should fail")
	}
}

func TestSignRequestVerifies(t *testing.T) {
	path, key := writeTestKey(t)
	creds, err := LoadCredentials("key-id-1", path)
	if err != nil {
		t.Fatal(err)
	}

	headers, err := creds.SignRequest("GET", "/trade-api/v2/markets")
	if err != nil {
		t.Fatalf("SignRequest: %v", err)
	}

	if headers["KALSHI-ACCESS-KEY"] != "key-id-1" {
		t.Errorf("KALSHI-ACCESS-KEY = %q", headers["KALSHI-ACCESS-KEY"])
	}

	ts, err := strconv.ParseInt(headers["KALSHI-ACCESS-TIMESTAMP"], 10, 64)
	if err != nil {
		t.Fatalf("timestamp not numeric: %v", err)
	}

	sig, err := base64.StdEncoding.DecodeString(headers["KALSHI-ACCESS-SIGNATURE"])
	if err != nil {
		t.Fatalf("signature not base64: %v", err)
	}

	message := fmt.Sprintf("%dGET/trade-api/v2/markets", ts)
	hashed := sha256.Sum256([]byte(message))

	err = rsa.VerifyPSS(&key.PublicKey, crypto.SHA256, hashed[:], sig,
		&rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash})
	if err != nil {
		t.Errorf("signature does not verify: %v", err)
	}
}

func TestSignWebSocket(t *testing.T) {
	path, _ := writeTestKey(t)
	creds, err := LoadCredentials("key-id-1", path)
	if err != nil {
		t.Fatal(err)
	}

	headers, err := creds.SignWebSocket()
	if err != nil {
		t.Fatalf("SignWebSocket: %v", err)
	}
	for _, h := range []string{"KALSHI-ACCESS-KEY", "KALSHI-ACCESS-TIMESTAMP", "KALSHI-ACCESS-SIGNATURE"} {
		if headers[h] == "" {
			t.Errorf("missing header %s", h)
		}
	}
}
