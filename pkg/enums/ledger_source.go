package enums

import "fmt"

// LedgerSource identifies what produced a ledger entry.
type LedgerSource string

const (
	LedgerSourceOrder      LedgerSource = "order"
	LedgerSourceAdjustment LedgerSource = "adjustment"
)

var validLedgerSources = []LedgerSource{
	LedgerSourceOrder,
	LedgerSourceAdjustment,
}

// String implements fmt.Stringer.
func (s LedgerSource) String() string {
	return string(s)
}

// IsValid reports whether the source is recognized.
func (s LedgerSource) IsValid() bool {
	for _, candidate := range validLedgerSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLedgerSource converts a raw string into a LedgerSource.
func ParseLedgerSource(value string) (LedgerSource, error) {
	for _, candidate := range validLedgerSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger source %q", value)
}
