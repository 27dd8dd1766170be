package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateReceiptNo generates a unique receipt reference for a payment
func GenerateReceiptNo() string {
	return "RCT-" + strings.ToUpper(uuid.New().String()[:8])
}
