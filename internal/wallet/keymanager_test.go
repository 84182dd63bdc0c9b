package wallet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testKeyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	blob, err := EncryptKey("0x"+testKeyHex, "hunter2")
	if err != nil {
		t.Fatal(err)
	}

	got, err := DecryptKey(blob, "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if got != testKeyHex {
		t.Errorf("decrypted key = %q, want original", got)
	}
}

func TestDecryptWrongPassword(t *testing.T) {
	blob, err := EncryptKey(testKeyHex, "correct")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecryptKey(blob, "wrong"); err == nil {
		t.Error("expected error with wrong password")
	}
}

func TestEncryptKeyRejectsBadInput(t *testing.T) {
	if _, err := EncryptKey(testKeyHex, ""); err == nil {
		t.Error("expected error for empty password")
	}
	if _, err := EncryptKey("not-hex", "pw"); err == nil {
		t.Error("expected error for non-hex key")
	}
	if _, err := EncryptKey("abcd", "pw"); err == nil {
		t.Error("expected error for short key")
	}
}

func TestDecryptKeyRejectsUnknownVersion(t *testing.T) {
	if _, err := DecryptKey([]byte(`{"version": 99}`), "pw"); err == nil {
		t.Error("expected error for unsupported version")
	}
}

func TestLoadKeyRawTakesPrecedence(t *testing.T) {
	got, err := LoadKey(KeyConfig{
		RawPrivateKey:    "0x" + testKeyHex,
		EncryptedKeyPath: "/nonexistent/key.json",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != testKeyHex {
		t.Errorf("key = %q, want raw key without prefix", got)
	}
}

func TestLoadKeyFromEncryptedFile(t *testing.T) {
	blob, err := EncryptKey(testKeyHex, "pw")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "key.json")
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := LoadKey(KeyConfig{EncryptedKeyPath: path, KeyPassword: "pw"})
	if err != nil {
		t.Fatal(err)
	}
	if got != testKeyHex {
		t.Errorf("key = %q, want decrypted key", got)
	}
}

func TestLoadKeyNoSource(t *testing.T) {
	_, err := LoadKey(KeyConfig{})
	if err == nil || !strings.Contains(err.Error(), "no private key source") {
		t.Errorf("err = %v, want no-source error", err)
	}
}
