package enums

import "fmt"

// PaymentMethod identifies how a donor intends to settle a donation.
type PaymentMethod string

const (
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "bank_transfer"
	PaymentMethodWallet   PaymentMethod = "wallet"
	PaymentMethodQR       PaymentMethod = "qr"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCard,
	PaymentMethodTransfer,
	PaymentMethodWallet,
	PaymentMethodQR,
}

// String implements fmt.Stringer.
func (m PaymentMethod) String() string {
	return string(m)
}

// IsValid reports whether the value is a known PaymentMethod.
func (m PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
