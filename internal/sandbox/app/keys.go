package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/idx"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
)

// InitSigningKey generates an Ed25519 key that lives only in memory. Every
// restart invalidates outstanding access tokens; refresh tokens survive
// because they are opaque and stored as fingerprints.
func InitSigningKey(cfg Config, logger *slog.Logger) (*jwtx.EdDSASigner, *jwtx.EdDSAVerifier, error) {
	pemKey, err := cryptox.GenerateEd25519Key()
	if err != nil {
		return nil, nil, fmt.Errorf("generate signing key: %w", err)
	}

	signer, err := jwtx.NewSignerEdDSA(idx.New().String(), pemKey)
	if err != nil {
		return nil, nil, fmt.Errorf("load signing key: %w", err)
	}

	logger.Info("generated ephemeral signing key", "kid", signer.KID(), "issuer", cfg.Issuer)
	logger.Warn("access tokens issued before this start are no longer valid")

	return signer, jwtx.NewVerifierEdDSA(cfg.Issuer, signer), nil
}
