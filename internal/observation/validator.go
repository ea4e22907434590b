package observation

import (
	"context"

	derrors "cycletracker/pkg/domain-errors"
)

// Whitelist is the external list of accepted canonical observation strings.
// The structural rules below are a fast local pre-check; the whitelist is the
// authoritative acceptance gate.
type Whitelist interface {
	IsValid(ctx context.Context, code string) (bool, error)
}

// Validator turns structured entry input into a validated canonical string.
type Validator struct {
	whitelist Whitelist
}

func NewValidator(whitelist Whitelist) *Validator {
	return &Validator{whitelist: whitelist}
}

// Validate checks p against the domain rules and the whitelist, returning the
// canonical string on success.
func (v *Validator) Validate(ctx context.Context, p Parts) (string, error) {
	if err := checkStructure(p); err != nil {
		return "", err
	}
	code := Format(p)
	ok, err := v.whitelist.IsValid(ctx, code)
	if err != nil {
		return "", derrors.Wrap(err, derrors.CodeInternal, "whitelist lookup failed")
	}
	if !ok {
		return "", derrors.Newf(derrors.CodeBadRequest, "observation %q is not a valid entry", code)
	}
	return code, nil
}

// ValidateString parses a raw observation string and validates it, returning
// the re-encoded canonical form. Used when the caller supplies entry text
// rather than structured parts.
func (v *Validator) ValidateString(ctx context.Context, raw string) (string, error) {
	p, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return v.Validate(ctx, p)
}

// checkStructure enforces the domain rules that do not need the whitelist.
func checkStructure(p Parts) error {
	if p.Primary == "" {
		return derrors.New(derrors.CodeBadRequest, "primary observation is required")
	}
	if !IsPeriodCode(p.Primary) && !IsDryCode(p.Primary) && !IsDischargeCode(p.Primary) {
		return derrors.Newf(derrors.CodeBadRequest, "unknown observation code %q", p.Primary)
	}
	if p.Specifier != "" && !validSpecifier(p.Primary, p.Specifier) {
		return derrors.Newf(derrors.CodeBadRequest, "invalid specifier %q for observation %q", p.Specifier, p.Primary)
	}
	if IsDischargeCode(p.Primary) && p.Specifier == "" {
		return derrors.Newf(derrors.CodeBadRequest, "observation %q requires a specifier", p.Primary)
	}

	switch {
	case NeedsSecondary(p.Primary):
		if p.Secondary == "" {
			return derrors.Newf(derrors.CodeBadRequest, "observation %q requires a secondary observation", p.Primary)
		}
		if !IsDryCode(p.Secondary) && !IsDischargeCode(p.Secondary) {
			return derrors.Newf(derrors.CodeBadRequest, "secondary observation %q must be a dry or discharge code", p.Secondary)
		}
		if p.SecondarySpecifier != "" && !validSpecifier(p.Secondary, p.SecondarySpecifier) {
			return derrors.Newf(derrors.CodeBadRequest, "invalid specifier %q for observation %q", p.SecondarySpecifier, p.Secondary)
		}
		if IsDischargeCode(p.Secondary) && p.SecondarySpecifier == "" {
			return derrors.Newf(derrors.CodeBadRequest, "observation %q requires a specifier", p.Secondary)
		}
	case p.Secondary != "":
		return derrors.Newf(derrors.CodeBadRequest, "observation %q does not take a secondary observation", p.Primary)
	}

	if p.Frequency != "" && !IsFrequency(p.Frequency) {
		return derrors.Newf(derrors.CodeBadRequest, "unknown frequency %q", p.Frequency)
	}
	// Every dry or discharge entry needs a frequency. H and M days render
	// without one regardless of what was selected.
	if !SuppressesFrequency(p.Primary) && p.Frequency == "" {
		return derrors.New(derrors.CodeBadRequest, "frequency is required for dry and discharge observations")
	}
	return nil
}
