package security

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrOpsKeyNotConfigured = errors.New("security: ops key not configured")

// OpsKeyVerifier guards internal endpoints with a shared key stored as a bcrypt hash.
type OpsKeyVerifier struct {
	Hash string
}

func (v OpsKeyVerifier) Verify(key string) error {
	if strings.TrimSpace(v.Hash) == "" {
		return ErrOpsKeyNotConfigured
	}
	return bcrypt.CompareHashAndPassword([]byte(v.Hash), []byte(key))
}

// HashOpsKey produces the value for OPS_KEY_HASH.
func HashOpsKey(key string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	out, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
