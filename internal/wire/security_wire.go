package wire

import (
	"fmt"
	"os"

	"profile-auth/pkg/security"
	"profile-auth/pkg/utils"
)

func newPasswordHasher(config utils.PasswordConfig) (security.PasswordHasher, error) {
	argon := security.DefaultArgon2Params
	if config.Argon2Time > 0 {
		argon.Time = config.Argon2Time
	}
	if config.Argon2MemoryKB > 0 {
		argon.Memory = config.Argon2MemoryKB
	}
	if config.Argon2Threads > 0 {
		argon.Threads = uint8(config.Argon2Threads)
	}

	hasher, err := security.NewPasswordHasher(security.HasherConfig{
		Algorithm:  config.Hasher,
		BcryptCost: config.BcryptCost,
		Argon2:     argon,
	})
	if err != nil {
		return nil, fmt.Errorf("init password hasher: %w", err)
	}
	return hasher, nil
}

func newTokenService(config utils.JWTConfig) (*security.TokenService, error) {
	tokenConfig := security.TokenConfig{
		Algorithm:  config.Algorithm,
		Secret:     []byte(config.Secret),
		AccessTTL:  config.AccessTTL,
		RefreshTTL: config.RefreshTTL,
		Leeway:     config.Leeway,
		Issuer:     config.Issuer,
	}

	if config.Algorithm == "EdDSA" {
		priv, err := os.ReadFile(config.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read JWT private key: %w", err)
		}
		pub, err := os.ReadFile(config.PublicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read JWT public key: %w", err)
		}
		tokenConfig.PrivateKeyPEM = priv
		tokenConfig.PublicKeyPEM = pub
	}

	tokens, err := security.NewTokenService(tokenConfig)
	if err != nil {
		return nil, fmt.Errorf("init token service: %w", err)
	}
	return tokens, nil
}
