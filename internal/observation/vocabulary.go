package observation

import (
	"slices"
	"strings"
)

// The observation vocabulary is closed. Codes come in three families; dry and
// discharge codes take a single atomic specifier token from a family-dependent
// set, and a frequency qualifies how often the observation occurred.

// Family classifies an observation code.
type Family string

const (
	FamilyPeriod    Family = "period"
	FamilyDry       Family = "dry"
	FamilyDischarge Family = "discharge"
	FamilyUnknown   Family = "unknown"
)

// SpecifierWet is the dry specifier, valid only on code 2. Rendered with a
// separating space ("2 W") to match the historical whitelist.
const SpecifierWet = "W"

var (
	periodCodes    = []string{"H", "M", "L", "VL", "B"}
	dryCodes       = []string{"0", "2", "4"}
	dischargeCodes = []string{"6", "8", "10"}

	// Specifier tokens for discharge codes 6 and 8, and the base set for
	// 10. Tokens are atomic: "C/K" and "KL" are single selections, not
	// letter combinations.
	dischargeSpecifiers = []string{"B", "C", "C/K", "G", "K", "KL", "L", "P", "R", "Y"}

	// Extended tokens accepted only on code 10 (10DL, 10SL, 10WL).
	extendedSpecifiers = []string{"DL", "SL", "WL"}

	// Frequencies: X1/X2/X3 times observed, AD all day.
	frequencies = []string{"X1", "X2", "X3", "AD"}
)

// IsPeriodCode reports whether code is in the period family (H, M, L, VL, B).
func IsPeriodCode(code string) bool { return slices.Contains(periodCodes, code) }

// IsDryCode reports whether code is in the dry family (0, 2, 4).
func IsDryCode(code string) bool { return slices.Contains(dryCodes, code) }

// IsDischargeCode reports whether code is in the discharge family (6, 8, 10).
func IsDischargeCode(code string) bool { return slices.Contains(dischargeCodes, code) }

// IsFrequency reports whether token is a recognized frequency code.
func IsFrequency(token string) bool { return slices.Contains(frequencies, token) }

// NeedsSecondary reports whether a primary requires a secondary observation.
// Light period days (L, VL, B) always carry one.
func NeedsSecondary(primary string) bool {
	return primary == "L" || primary == "VL" || primary == "B"
}

// SuppressesFrequency reports whether a primary renders without a frequency
// even when one was selected (heavy and moderate period days).
func SuppressesFrequency(primary string) bool {
	return primary == "H" || primary == "M"
}

// validSpecifier reports whether token is an acceptable specifier for code.
// The empty token is always acceptable here; requiredness is checked during
// validation, not tokenization.
func validSpecifier(code, token string) bool {
	if token == "" {
		return true
	}
	switch code {
	case "2":
		return token == SpecifierWet
	case "6", "8":
		return slices.Contains(dischargeSpecifiers, token)
	case "10":
		return slices.Contains(dischargeSpecifiers, token) ||
			slices.Contains(extendedSpecifiers, token)
	default:
		return false
	}
}

// FamilyOf classifies a canonical observation string (or a bare code) by its
// leading code. Unknown input maps to FamilyUnknown rather than an error so
// chart grouping can shrug at unrecognized historical entries.
func FamilyOf(code string) Family {
	lead, _, _ := strings.Cut(strings.TrimSpace(code), " ")
	base, _, err := splitCodeToken(lead)
	if err != nil {
		return FamilyUnknown
	}
	switch {
	case IsPeriodCode(base):
		return FamilyPeriod
	case IsDryCode(base):
		return FamilyDry
	case IsDischargeCode(base):
		return FamilyDischarge
	default:
		return FamilyUnknown
	}
}
