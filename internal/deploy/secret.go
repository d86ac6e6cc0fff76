package deploy

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateSecret produces one random secret of n bytes, base64 encoded. It is
// returned to the caller for display and never written anywhere by this tool;
// the operator pastes it into the target's .env once.
func GenerateSecret(n int) (string, error) {
	if n <= 0 {
		n = 32
	}

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
