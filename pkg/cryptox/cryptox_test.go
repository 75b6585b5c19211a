package cryptox

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	SetPepper("test-pepper")
	os.Exit(m.Run())
}

func TestHashAndVerify(t *testing.T) {
	for _, pw := range []string{"password123", "P@ssw0rd!#$%^&*()", strings.Repeat("a", 100), "", "пароль"} {
		hash, err := HashPassword(pw)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m="))
		require.Len(t, strings.Split(hash, "$"), 6)

		require.NoError(t, VerifyPassword(pw, hash))
		require.ErrorIs(t, VerifyPassword(pw+"x", hash), ErrPasswordMismatch)
	}
}

func TestUniqueSalts(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestPepperChangeInvalidatesHash(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)

	SetPepper("rotated")
	defer SetPepper("test-pepper")
	require.ErrorIs(t, VerifyPassword("secret", hash), ErrPasswordMismatch)
}

func TestVerifyPasswordInvalidHash(t *testing.T) {
	for _, h := range []string{
		"",
		"$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=19456",
		"$argon2id$v=19$invalid$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA",
		"$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA",
	} {
		require.ErrorIs(t, VerifyPassword("pw", h), ErrInvalidHash, "hash %q", h)
	}
}

func TestLoadPepperPersists(t *testing.T) {
	defer SetPepper("test-pepper")
	path := filepath.Join(t.TempDir(), "nested", "pepper")

	require.NoError(t, LoadPepper(path))
	first := currentPepper()
	require.NotEmpty(t, first)

	SetPepper("")
	require.NoError(t, LoadPepper(path))
	require.Equal(t, first, currentPepper())
}

func TestGeneratePassword(t *testing.T) {
	pw, err := GeneratePassword()
	require.NoError(t, err)
	require.Len(t, pw, 16)
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	b, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	require.Len(t, a, 43)

	_, err = GenerateToken(0)
	require.Error(t, err)
}

func TestFingerprintToken(t *testing.T) {
	require.Equal(t, FingerprintToken("abc"), FingerprintToken("abc"))
	require.NotEqual(t, FingerprintToken("abc"), FingerprintToken("abd"))
	require.Len(t, FingerprintToken("abc"), 43)
}

func TestGenerateEd25519Key(t *testing.T) {
	pemBytes, err := GenerateEd25519Key()
	require.NoError(t, err)

	block, _ := pem.Decode(pemBytes)
	require.NotNil(t, block)
	require.Equal(t, "PRIVATE KEY", block.Type)

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	require.NoError(t, err)
	_, ok := key.(ed25519.PrivateKey)
	require.True(t, ok)
}
