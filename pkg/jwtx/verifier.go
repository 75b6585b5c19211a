package jwtx

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a token and returns its claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// EdDSAVerifier checks EdDSA signatures against a fixed set of keys
// indexed by kid.
type EdDSAVerifier struct {
	keys   map[string]ed25519.PublicKey
	issuer string
	leeway time.Duration
	now    func() time.Time
}

// NewVerifierEdDSA trusts the public halves of the given signers.
func NewVerifierEdDSA(issuer string, signers ...*EdDSASigner) *EdDSAVerifier {
	keys := make(map[string]ed25519.PublicKey, len(signers))
	for _, s := range signers {
		keys[s.KID()] = s.Public()
	}
	return &EdDSAVerifier{keys: keys, issuer: issuer, now: time.Now}
}

// WithLeeway allows clock skew when checking exp and nbf.
func (v *EdDSAVerifier) WithLeeway(d time.Duration) *EdDSAVerifier {
	v.leeway = d
	return v
}

func (v *EdDSAVerifier) Verify(raw string) (Claims, error) {
	// exp/nbf are checked below against our own clock.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		pub, ok := v.keys[kid]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownKID, kid)
		}
		return pub, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrUnknownKID):
		return Claims{}, ErrUnknownKID
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Claims{}, ErrInvalidSig
	default:
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiryAt(v.now(), v.leeway); err != nil {
		return Claims{}, err
	}

	return claims, nil
}
