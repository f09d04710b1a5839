package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TOTPIssuer is shown in authenticator apps next to the account name
const TOTPIssuer = "Storefront CMS"

var errShortCiphertext = errors.New("encrypted secret too short")

// GenerateTOTPKey creates a new TOTP key for accountName
func GenerateTOTPKey(accountName string) (*otp.Key, error) {
	return totp.Generate(totp.GenerateOpts{
		Issuer:      TOTPIssuer,
		AccountName: accountName,
	})
}

// ValidateTOTP checks code against a decrypted secret
func ValidateTOTP(secret sql.NullString, code string) bool {
	if !secret.Valid {
		return false
	}
	return totp.Validate(strings.TrimSpace(code), secret.String)
}

// EncryptTOTPSecret seals the secret with AES-GCM under a key derived from
// encryptionKey. The nonce is prepended to the hex-encoded output.
func EncryptTOTPSecret(secret, encryptionKey string) (string, error) {
	gcm, err := newGCM(encryptionKey)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, []byte(secret), nil)
	return hex.EncodeToString(sealed), nil
}

// DecryptTOTPSecret reverses EncryptTOTPSecret. A NULL column stays NULL.
func DecryptTOTPSecret(encryptedSecret sql.NullString, encryptionKey string) (sql.NullString, error) {
	if !encryptedSecret.Valid {
		return sql.NullString{}, nil
	}

	sealed, err := hex.DecodeString(encryptedSecret.String)
	if err != nil {
		return sql.NullString{}, err
	}

	gcm, err := newGCM(encryptionKey)
	if err != nil {
		return sql.NullString{}, err
	}
	if len(sealed) < gcm.NonceSize() {
		return sql.NullString{}, errShortCiphertext
	}

	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(plain), Valid: true}, nil
}

func newGCM(encryptionKey string) (cipher.AEAD, error) {
	hash := sha256.Sum256([]byte(encryptionKey))
	block, err := aes.NewCipher(hash[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
