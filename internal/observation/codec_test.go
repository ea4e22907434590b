package observation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		parts Parts
		want  string
	}{
		{"heavy period", Parts{Primary: "H"}, "H"},
		{"heavy period drops frequency", Parts{Primary: "H", Frequency: "X1"}, "H"},
		{"moderate period drops frequency", Parts{Primary: "M", Frequency: "AD"}, "M"},
		{"dry day", Parts{Primary: "0", Frequency: "X2"}, "0 X2"},
		{"damp with wet specifier", Parts{Primary: "2", Specifier: "W", Frequency: "X2"}, "2 W X2"},
		{"shiny with frequency", Parts{Primary: "4", Frequency: "X3"}, "4 X3"},
		{"discharge with specifier", Parts{Primary: "6", Specifier: "P", Frequency: "X1"}, "6P X1"},
		{"stretchy clear", Parts{Primary: "10", Specifier: "KL", Frequency: "X3"}, "10KL X3"},
		{"extended specifier", Parts{Primary: "10", Specifier: "DL", Frequency: "AD"}, "10DL AD"},
		{"slash specifier", Parts{Primary: "8", Specifier: "C/K", Frequency: "X2"}, "8C/K X2"},
		{"light with dry secondary", Parts{Primary: "B", Secondary: "2", Frequency: "X1"}, "B 2 X1"},
		{"light with wet secondary", Parts{Primary: "L", Secondary: "2", SecondarySpecifier: "W", Frequency: "X1"}, "L 2 W X1"},
		{"very light with discharge secondary", Parts{Primary: "VL", Secondary: "8", SecondarySpecifier: "K", Frequency: "X2"}, "VL 8K X2"},
		{"specifier dropped on period code", Parts{Primary: "H", Specifier: "K"}, "H"},
		{"secondary dropped on dry primary", Parts{Primary: "0", Secondary: "6", Frequency: "X1"}, "0 X1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.parts))
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Parts
	}{
		{"H", Parts{Primary: "H"}},
		{"0 X1", Parts{Primary: "0", Frequency: "X1"}},
		{"2 W X2", Parts{Primary: "2", Specifier: "W", Frequency: "X2"}},
		{"6P X1", Parts{Primary: "6", Specifier: "P", Frequency: "X1"}},
		{"8C/K AD", Parts{Primary: "8", Specifier: "C/K", Frequency: "AD"}},
		{"10KL X3", Parts{Primary: "10", Specifier: "KL", Frequency: "X3"}},
		{"10DL AD", Parts{Primary: "10", Specifier: "DL", Frequency: "AD"}},
		{"B 2 X1", Parts{Primary: "B", Secondary: "2", Frequency: "X1"}},
		{"L 2 W X1", Parts{Primary: "L", Secondary: "2", SecondarySpecifier: "W", Frequency: "X1"}},
		{"VL 10SL X2", Parts{Primary: "VL", Secondary: "10", SecondarySpecifier: "SL", Frequency: "X2"}},
		// Historical charts carry frequencies on H/M days; Parse tolerates
		// them even though Format will not re-render them.
		{"H X1", Parts{Primary: "H", Frequency: "X1"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, in := range []string{
		"",
		"Q",
		"3 X1",
		"6Z X1",
		"H H",
		"0 X1 X2",
		"B H X1",
		"10KL X9",
		"0 X1 extra",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.Error(t, err)
		})
	}
}

// TestRoundTrip drives the full cross-product of valid entries through
// Format and Parse and requires the re-encoding to be byte-identical.
func TestRoundTrip(t *testing.T) {
	all := enumerateValid()
	require.NotEmpty(t, all)
	seen := make(map[string]bool, len(all))
	for _, p := range all {
		encoded := Format(p)
		require.False(t, seen[encoded], "duplicate encoding %q", encoded)
		seen[encoded] = true

		decoded, err := Parse(encoded)
		require.NoError(t, err, "parse %q", encoded)
		require.Equal(t, encoded, Format(decoded), "round trip %q", encoded)
		require.Equal(t, p, decoded, "parts round trip %q", encoded)
	}
}

func TestFamilyOf(t *testing.T) {
	assert.Equal(t, FamilyPeriod, FamilyOf("H"))
	assert.Equal(t, FamilyPeriod, FamilyOf("B 2 X1"))
	assert.Equal(t, FamilyDry, FamilyOf("2 W X2"))
	assert.Equal(t, FamilyDry, FamilyOf("0 AD"))
	assert.Equal(t, FamilyDischarge, FamilyOf("10KL X3"))
	assert.Equal(t, FamilyDischarge, FamilyOf("6P X1"))
	assert.Equal(t, FamilyUnknown, FamilyOf("banana"))
	assert.Equal(t, FamilyUnknown, FamilyOf(""))
}

// enumerateValid builds every Parts combination the structural rules accept.
func enumerateValid() []Parts {
	specifiersFor := func(code string) [][2]string {
		var out [][2]string
		switch code {
		case "0", "4":
			out = append(out, [2]string{code, ""})
		case "2":
			out = append(out, [2]string{code, ""}, [2]string{code, SpecifierWet})
		case "6", "8":
			for _, s := range dischargeSpecifiers {
				out = append(out, [2]string{code, s})
			}
		case "10":
			for _, s := range dischargeSpecifiers {
				out = append(out, [2]string{code, s})
			}
			for _, s := range extendedSpecifiers {
				out = append(out, [2]string{code, s})
			}
		}
		return out
	}

	var secondaries [][2]string
	for _, code := range []string{"0", "2", "4", "6", "8", "10"} {
		secondaries = append(secondaries, specifiersFor(code)...)
	}

	var all []Parts
	all = append(all, Parts{Primary: "H"}, Parts{Primary: "M"})
	for _, primary := range []string{"0", "2", "4", "6", "8", "10"} {
		for _, cs := range specifiersFor(primary) {
			for _, freq := range frequencies {
				all = append(all, Parts{Primary: cs[0], Specifier: cs[1], Frequency: freq})
			}
		}
	}
	for _, primary := range []string{"L", "VL", "B"} {
		for _, cs := range secondaries {
			for _, freq := range frequencies {
				all = append(all, Parts{
					Primary:            primary,
					Secondary:          cs[0],
					SecondarySpecifier: cs[1],
					Frequency:          freq,
				})
			}
		}
	}
	return all
}
