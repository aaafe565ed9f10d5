package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// ==================== UUID ====================

func ParseUUID(uuidStr string) (uuid.UUID, error) {
	return uuid.Parse(uuidStr)
}

// ==================== OTP ====================

// GenerateOTP creates a numeric one-time code of the given length. Codes are
// drawn uniformly, so leading zeros are possible and preserved.
func GenerateOTP(length int) string {
	if length <= 0 {
		length = 6
	}

	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		// crypto/rand does not fail on supported platforms; a broken
		// entropy source must never produce weaker codes
		panic(fmt.Sprintf("generate OTP: %v", err))
	}

	return fmt.Sprintf("%0*d", length, n)
}
