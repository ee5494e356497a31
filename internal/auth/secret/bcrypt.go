package secret

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth"
)

const SchemeBcrypt = "bcrypt"

// minPasswordLength rejects obviously unusable passwords before they
// reach the hasher.
const minPasswordLength = 8

// BcryptCodec is the one-way hash-and-compare codec. Each stored value
// carries its own salt and the comparison is constant time.
type BcryptCodec struct {
	cost int
}

// NewBcrypt returns a bcrypt codec at the default cost.
func NewBcrypt() *BcryptCodec {
	return &BcryptCodec{cost: bcrypt.DefaultCost}
}

func (c *BcryptCodec) Scheme() string {
	return SchemeBcrypt
}

func (c *BcryptCodec) Protect(plaintext string) (string, error) {
	if len(plaintext) < minPasswordLength {
		return "", errors.New("secret: password too short")
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(plaintext), c.cost)
	if err != nil {
		return "", fmt.Errorf("secret: hash password: %w", err)
	}

	return string(bytes), nil
}

func (c *BcryptCodec) Verify(stored, presented string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(presented)); err != nil {
		return auth.ErrBadPassword
	}
	return nil
}
