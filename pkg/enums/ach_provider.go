package enums

import (
	"fmt"
	"strings"
)

// ACHProvider names a bank-transfer rail integration.
type ACHProvider string

const (
	ACHProviderMock   ACHProvider = "mock"
	ACHProviderStripe ACHProvider = "stripe"
	ACHProviderPlaid  ACHProvider = "plaid"
	ACHProviderDwolla ACHProvider = "dwolla"
)

var validACHProviders = []ACHProvider{
	ACHProviderMock,
	ACHProviderStripe,
	ACHProviderPlaid,
	ACHProviderDwolla,
}

// String implements fmt.Stringer.
func (p ACHProvider) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ACHProvider.
func (p ACHProvider) IsValid() bool {
	for _, candidate := range validACHProviders {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseACHProvider converts raw input into an ACHProvider. Matching ignores case and surrounding space.
func ParseACHProvider(value string) (ACHProvider, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validACHProviders {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ach provider %q", value)
}
