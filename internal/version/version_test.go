package version

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/s3-resource/internal/errs"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Version
	}{
		{"0", Version{0}},
		{"63248", Version{63248}},
		{"2.1", Version{2, 1}},
		{"1.02.3", Version{1, 2, 3}},
		{"10.0.0.1", Version{10, 0, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			if !cmp.Equal(tt.want, got) {
				t.Error(cmp.Diff(tt.want, got))
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"asdf", "", "1..2", "1.a", ".1", "1.", "-1", "+1", "1.2-rc1", " 1"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
			assert.True(t, errs.IsInvalidVersion(err), "got %v", err)
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Version
		want int
	}{
		{"equal", Version{1, 2}, Version{1, 2}, 0},
		{"first element decides", Version{2}, Version{1, 9, 9}, 1},
		{"numeric not textual", Version{1, 10}, Version{1, 9}, 1},
		{"shorter prefix is smaller", Version{1, 2}, Version{1, 2, 0}, -1},
		{"longer is larger", Version{1, 2, 0}, Version{1, 2}, 1},
		{"unversioned below zero", Unversioned, Version{0}, -1},
		{"unversioned equals itself", Unversioned, Version{-1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
			assert.Equal(t, -tt.want, Compare(tt.b, tt.a))
		})
	}
}

func TestVersion_Predicates(t *testing.T) {
	threshold := Version{63000}

	assert.True(t, Version{63248}.AtLeast(threshold))
	assert.True(t, Version{63000}.AtLeast(threshold))
	assert.False(t, Version{62999}.AtLeast(threshold))
	assert.False(t, Unversioned.AtLeast(Version{0}))

	assert.True(t, Version{1}.Less(Version{1, 0}))
	assert.False(t, Version{1, 0}.Less(Version{1}))
}

func TestVersion_String(t *testing.T) {
	assert.Equal(t, "2.10.1", Version{2, 10, 1}.String())
	assert.Equal(t, "-1", Unversioned.String())
}
