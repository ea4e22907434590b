package observation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "cycletracker/pkg/domain-errors"
)

// acceptAll satisfies Whitelist for tests exercising the structural rules.
type acceptAll struct{}

func (acceptAll) IsValid(context.Context, string) (bool, error) { return true, nil }

// fixedWhitelist accepts only the listed strings.
type fixedWhitelist map[string]bool

func (f fixedWhitelist) IsValid(_ context.Context, code string) (bool, error) {
	return f[code], nil
}

func TestValidateStructuralRules(t *testing.T) {
	v := NewValidator(acceptAll{})
	ctx := context.Background()

	t.Run("empty primary rejected", func(t *testing.T) {
		_, err := v.Validate(ctx, Parts{})
		require.Error(t, err)
		assert.True(t, derrors.Is(err, derrors.CodeBadRequest))
	})

	t.Run("discharge without specifier rejected", func(t *testing.T) {
		for _, primary := range []string{"6", "8", "10"} {
			_, err := v.Validate(ctx, Parts{Primary: primary, Frequency: "X1"})
			assert.Error(t, err, "primary %s", primary)
		}
	})

	t.Run("discharge with specifier accepted", func(t *testing.T) {
		for _, primary := range []string{"6", "8", "10"} {
			code, err := v.Validate(ctx, Parts{Primary: primary, Specifier: "K", Frequency: "X1"})
			require.NoError(t, err, "primary %s", primary)
			assert.Equal(t, primary+"K X1", code)
		}
	})

	t.Run("light period without secondary rejected", func(t *testing.T) {
		for _, primary := range []string{"L", "VL", "B"} {
			_, err := v.Validate(ctx, Parts{Primary: primary, Frequency: "X1"})
			assert.Error(t, err, "primary %s", primary)
		}
	})

	t.Run("secondary on non-period primary rejected", func(t *testing.T) {
		_, err := v.Validate(ctx, Parts{Primary: "0", Secondary: "6", SecondarySpecifier: "P", Frequency: "X1"})
		assert.Error(t, err)
	})

	t.Run("missing frequency rejected for dry and discharge", func(t *testing.T) {
		_, err := v.Validate(ctx, Parts{Primary: "0"})
		assert.Error(t, err)
		_, err = v.Validate(ctx, Parts{Primary: "B", Secondary: "2"})
		assert.Error(t, err)
	})

	t.Run("frequency suppressed on heavy days", func(t *testing.T) {
		code, err := v.Validate(ctx, Parts{Primary: "H", Frequency: "X1"})
		require.NoError(t, err)
		assert.Equal(t, "H", code)
	})

	t.Run("extended specifier only on ten", func(t *testing.T) {
		_, err := v.Validate(ctx, Parts{Primary: "8", Specifier: "DL", Frequency: "X1"})
		assert.Error(t, err)
		code, err := v.Validate(ctx, Parts{Primary: "10", Specifier: "DL", Frequency: "X1"})
		require.NoError(t, err)
		assert.Equal(t, "10DL X1", code)
	})
}

func TestValidateWhitelistGate(t *testing.T) {
	ctx := context.Background()
	v := NewValidator(fixedWhitelist{"6P X1": true})

	code, err := v.Validate(ctx, Parts{Primary: "6", Specifier: "P", Frequency: "X1"})
	require.NoError(t, err)
	assert.Equal(t, "6P X1", code)

	// Structurally sound but not on the list.
	_, err = v.Validate(ctx, Parts{Primary: "6", Specifier: "G", Frequency: "X1"})
	require.Error(t, err)
	assert.True(t, derrors.Is(err, derrors.CodeBadRequest))
}

func TestValidateString(t *testing.T) {
	ctx := context.Background()
	v := NewValidator(acceptAll{})

	code, err := v.ValidateString(ctx, "B 2 X1")
	require.NoError(t, err)
	assert.Equal(t, "B 2 X1", code)

	_, err = v.ValidateString(ctx, "B X1")
	assert.Error(t, err, "light period without secondary")

	_, err = v.ValidateString(ctx, "gibberish")
	assert.Error(t, err)
}

func TestStructuralRulesAcceptFullEnumeration(t *testing.T) {
	v := NewValidator(acceptAll{})
	ctx := context.Background()
	for _, p := range enumerateValid() {
		_, err := v.Validate(ctx, p)
		require.NoError(t, err, "parts %+v", p)
	}
}
