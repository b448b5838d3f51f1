package backup

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateSalt(t *testing.T) {
	salt1, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	if len(salt1) != saltSize {
		t.Errorf("salt length = %d, want %d", len(salt1), saltSize)
	}

	salt2, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt 2: %v", err)
	}
	if bytes.Equal(salt1, salt2) {
		t.Error("two salts should not be equal")
	}
}

func TestDeriveKeyDeterminism(t *testing.T) {
	salt := []byte("1234567890abcdef")

	key1 := DeriveKey("mypassphrase", salt)
	key2 := DeriveKey("mypassphrase", salt)

	if !bytes.Equal(key1, key2) {
		t.Error("same passphrase and salt should produce the same key")
	}
	if len(key1) != keySize {
		t.Errorf("key length = %d, want %d", len(key1), keySize)
	}

	other := DeriveKey("otherpassphrase", salt)
	if bytes.Equal(key1, other) {
		t.Error("different passphrases should produce different keys")
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	plaintext := []byte("household snapshot content")

	sealed, err := Seal(plaintext, "passphrase-123", salt)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Equal(sealed, plaintext) {
		t.Error("sealed content should differ from plaintext")
	}
	if !bytes.Equal(sealed[:saltSize], salt) {
		t.Error("sealed snapshot should start with the salt")
	}

	opened, err := Open(sealed, "passphrase-123")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Error("opened content should match original")
	}
}

func TestOpenWrongPassphrase(t *testing.T) {
	salt, _ := GenerateSalt()
	sealed, err := Seal([]byte("secret data"), "correct-password", salt)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	if _, err := Open(sealed, "wrong-password"); err == nil {
		t.Fatal("expected error with wrong passphrase")
	}
}

func TestOpenTamperedCiphertext(t *testing.T) {
	salt, _ := GenerateSalt()
	sealed, err := Seal([]byte("secret data"), "password", salt)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	sealed[saltSize+nonceSize+1] ^= 0xFF

	if _, err := Open(sealed, "password"); err == nil {
		t.Fatal("expected error with tampered ciphertext")
	}
}

func TestOpenTooSmall(t *testing.T) {
	if _, err := Open([]byte("too short"), "password"); err == nil {
		t.Fatal("expected error with truncated input")
	}
}

func TestEncryptDecryptFile(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "source.db")
	encPath := filepath.Join(dir, "encrypted.db.enc")
	decPath := filepath.Join(dir, "decrypted.db")

	original := []byte("This is test database content with some data in it.")
	if err := os.WriteFile(srcPath, original, 0600); err != nil {
		t.Fatalf("write source: %v", err)
	}

	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}

	if err := EncryptFile(srcPath, encPath, "test-passphrase", salt); err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if err := DecryptFile(encPath, decPath, "test-passphrase"); err != nil {
		t.Fatalf("decrypt: %v", err)
	}

	decrypted, err := os.ReadFile(decPath)
	if err != nil {
		t.Fatalf("read decrypted: %v", err)
	}
	if !bytes.Equal(original, decrypted) {
		t.Error("decrypted content should match original")
	}
}
