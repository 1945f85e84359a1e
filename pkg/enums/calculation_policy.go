package enums

import (
	"fmt"
	"strings"
)

// CalculationPolicy selects how the agent share of adjusted GCI is derived.
type CalculationPolicy string

const (
	// CalculationPolicyCapAware limits the brokerage share to what is left under the annual cap.
	CalculationPolicyCapAware CalculationPolicy = "cap_aware"
	// CalculationPolicySimpleSplit applies the primary split and ignores the cap.
	CalculationPolicySimpleSplit CalculationPolicy = "simple_split"
)

// IsValid reports whether the value is a known CalculationPolicy.
func (p CalculationPolicy) IsValid() bool {
	return p == CalculationPolicyCapAware || p == CalculationPolicySimpleSplit
}

// ParseCalculationPolicy converts raw input into a CalculationPolicy.
func ParseCalculationPolicy(value string) (CalculationPolicy, error) {
	candidate := CalculationPolicy(strings.ToLower(strings.TrimSpace(value)))
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid calculation policy %q", value)
}
