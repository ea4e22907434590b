// Package observation implements the observation codec: the canonical textual
// encoding of a day's entry (primary code, specifier, optional secondary,
// frequency), its inverse, and validation against the whitelist of accepted
// entries.
//
// The canonical grammar, informally:
//
//	entry     = primary [secondary] [frequency]
//	primary   = period | dry [" W"] | discharge specifier
//	secondary = dry [" W"] | discharge specifier
//	period    = "H" | "M" | "L" | "VL" | "B"
//	dry       = "0" | "2" | "4"
//	discharge = "6" | "8" | "10"
//
// Discharge specifiers concatenate directly onto the code ("6P", "10KL",
// "10DL"); the dry specifier W is space-separated ("2 W"); secondary and
// frequency are space-separated from what precedes them. Frequency is one of
// X1, X2, X3, AD and never renders on H or M days.
package observation

import (
	"strings"

	derrors "cycletracker/pkg/domain-errors"
)

// Parts holds the structured components of an observation entry, as selected
// in the entry form. The codec is the single translation point between Parts
// and the canonical string; nothing else in the system parses entry text.
type Parts struct {
	Primary            string `json:"primary"`
	Specifier          string `json:"specifier,omitempty"`
	Secondary          string `json:"secondary,omitempty"`
	SecondarySpecifier string `json:"secondarySpecifier,omitempty"`
	Frequency          string `json:"frequency,omitempty"`
}

// Format renders the canonical string for p. Format is total: it renders
// whatever it is given, dropping only components the grammar never renders
// (specifiers on codes that take none, frequency on H/M days). Callers that
// need the domain rules enforced must run Validate first.
func Format(p Parts) string {
	var b strings.Builder
	b.WriteString(p.Primary)
	if p.Specifier != "" && validSpecifier(p.Primary, p.Specifier) {
		if p.Primary == "2" {
			b.WriteByte(' ')
		}
		b.WriteString(p.Specifier)
	}
	if p.Secondary != "" && NeedsSecondary(p.Primary) {
		b.WriteByte(' ')
		b.WriteString(p.Secondary)
		if p.SecondarySpecifier != "" && validSpecifier(p.Secondary, p.SecondarySpecifier) {
			if p.Secondary == "2" {
				b.WriteByte(' ')
			}
			b.WriteString(p.SecondarySpecifier)
		}
	}
	if p.Frequency != "" && !SuppressesFrequency(p.Primary) {
		b.WriteByte(' ')
		b.WriteString(p.Frequency)
	}
	return b.String()
}

// Parse decodes a canonical observation string back into its Parts. It is the
// inverse of Format for every string Format can produce, and additionally
// tolerates a trailing frequency on H/M entries found in historical data.
func Parse(s string) (Parts, error) {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return Parts{}, derrors.New(derrors.CodeBadRequest, "empty observation")
	}

	var p Parts
	code, spec, err := splitCodeToken(tokens[0])
	if err != nil {
		return Parts{}, err
	}
	if !validSpecifier(code, spec) {
		return Parts{}, derrors.Newf(derrors.CodeBadRequest, "invalid specifier %q for observation %q", spec, code)
	}
	p.Primary, p.Specifier = code, spec
	rest := tokens[1:]

	// Dry specifier of the primary arrives as its own token ("2 W ...").
	if p.Primary == "2" && p.Specifier == "" && len(rest) > 0 && rest[0] == SpecifierWet {
		p.Specifier = SpecifierWet
		rest = rest[1:]
	}

	// A non-frequency token next is the secondary observation.
	if len(rest) > 0 && !IsFrequency(rest[0]) {
		code, spec, err := splitCodeToken(rest[0])
		if err != nil {
			return Parts{}, err
		}
		if IsPeriodCode(code) {
			return Parts{}, derrors.Newf(derrors.CodeBadRequest, "secondary observation %q must be a dry or discharge code", code)
		}
		if !validSpecifier(code, spec) {
			return Parts{}, derrors.Newf(derrors.CodeBadRequest, "invalid specifier %q for observation %q", spec, code)
		}
		p.Secondary, p.SecondarySpecifier = code, spec
		rest = rest[1:]

		if p.Secondary == "2" && p.SecondarySpecifier == "" && len(rest) > 0 && rest[0] == SpecifierWet {
			p.SecondarySpecifier = SpecifierWet
			rest = rest[1:]
		}
	}

	if len(rest) > 0 {
		if !IsFrequency(rest[0]) {
			return Parts{}, derrors.Newf(derrors.CodeBadRequest, "unrecognized token %q in observation %q", rest[0], s)
		}
		p.Frequency = rest[0]
		rest = rest[1:]
	}
	if len(rest) > 0 {
		return Parts{}, derrors.Newf(derrors.CodeBadRequest, "trailing tokens in observation %q", s)
	}
	return p, nil
}

// splitCodeToken separates a code token into its code and trailing specifier.
// Period codes are pure letters and never carry a specifier; dry and
// discharge codes are the digit prefix with the specifier concatenated after
// ("6P" -> "6", "P"; "10C/K" -> "10", "C/K").
func splitCodeToken(token string) (code, specifier string, err error) {
	if token == "" {
		return "", "", derrors.New(derrors.CodeBadRequest, "empty observation code")
	}
	digits := len(token)
	for i, r := range token {
		if r < '0' || r > '9' {
			digits = i
			break
		}
	}
	if digits == 0 {
		if !IsPeriodCode(token) {
			return "", "", derrors.Newf(derrors.CodeBadRequest, "unknown observation code %q", token)
		}
		return token, "", nil
	}
	code, specifier = token[:digits], token[digits:]
	if !IsDryCode(code) && !IsDischargeCode(code) {
		return "", "", derrors.Newf(derrors.CodeBadRequest, "unknown observation code %q", code)
	}
	return code, specifier, nil
}
