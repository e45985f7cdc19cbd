package station

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want ID
	}{
		{"long prefix", "FFT_SEC_V_T_L12_S034_D1_C2_X", ID{Line: 12, Site: 34, Device: 1, Channel: 2, Tag: "X"}},
		{"short prefix", "RX_L1_S2_D3_C4_Ey", ID{Line: 1, Site: 2, Device: 3, Channel: 4, Tag: "Ey"}},
		{"doubled separators", "RX__L7_S8__D9_C0_Hz", ID{Line: 7, Site: 8, Device: 9, Channel: 0, Tag: "Hz"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseID(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseID_Errors(t *testing.T) {
	for _, in := range []string{
		"",
		"L12_S034_D1_C2_X",
		"FFT_Lxx_S034_D1_C2_X",
		"FFT_L12_S_D1_C2_X",
		"FFT_L12_S034_D1_Cz_X",
	} {
		_, err := ParseID(in)
		assert.ErrorIs(t, err, ErrMalformedIdentity, "name %q", in)
	}
}

func TestID_String(t *testing.T) {
	id := ID{Line: 12, Site: 34, Device: 1, Channel: 2, Tag: "X"}
	assert.Equal(t, "L12_S34_D1_C2_X", id.String())

	parsed, err := ParseID("PREFIX_" + id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestFormatFrequency(t *testing.T) {
	assert.Equal(t, "500.00 mHz", FormatFrequency(0.5))
	assert.Equal(t, "8.00 Hz", FormatFrequency(8))
	assert.Equal(t, "8.19 kHz", FormatFrequency(8192))
}
