package keygen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

const (
	// UsernamePrefix is prepended to every generated username.
	UsernamePrefix = "user"

	usernameBytes = 8  // 16 hex chars
	passwordBytes = 12 // 24 hex chars
)

// Placeholder values emitted by the render command instead of real secrets.
const (
	PlaceholderUsername = "PLACEHOLDER_USERNAME"
	PlaceholderPassword = "PLACEHOLDER_PASSWORD"
)

// Credentials holds a ClickHouse username and password.
type Credentials struct {
	Username string
	Password string
}

// randReader is the entropy source. Tests swap it to simulate exhaustion.
var randReader io.Reader = rand.Reader

// GenerateCredentials returns a fresh username/password pair.
// Equivalent to "user$(openssl rand -hex 8)" and "$(openssl rand -hex 12)".
func GenerateCredentials() (*Credentials, error) {
	suffix, err := randomHex(usernameBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate username: %w", err)
	}

	password, err := randomHex(passwordBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}

	return &Credentials{
		Username: UsernamePrefix + suffix,
		Password: password,
	}, nil
}

// PlaceholderCredentials returns fixed credentials for offline rendering.
func PlaceholderCredentials() *Credentials {
	return &Credentials{
		Username: PlaceholderUsername,
		Password: PlaceholderPassword,
	}
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(randReader, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
