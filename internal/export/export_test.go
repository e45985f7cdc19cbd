package export

import (
	"bytes"
	"context"
	"database/sql"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/scatter-prep/internal/normalize"
	"github.com/roman-kulish/scatter-prep/internal/record"
	"github.com/roman-kulish/scatter-prep/internal/station"
	"github.com/roman-kulish/scatter-prep/internal/storage"
)

func TestFilteredPath(t *testing.T) {
	testCases := []struct {
		in, want string
	}{
		{"x.csv", "x_filtered.csv"},
		{"/data/FFT_SEC_V_T_L1_S2_D3_C4_X.csv", "/data/FFT_SEC_V_T_L1_S2_D3_C4_X_filtered.csv"},
		{"noext", "noext_filtered"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, FilteredPath(tc.in))
	}
}

func TestWriteFiltered(t *testing.T) {
	s, err := station.New(station.ID{Tag: "X"}, []record.Record{
		{Frequency: 8, Samples: []float64{1.5, 2}},
		{Frequency: 0.015625, Samples: []float64{-3e-7}},
	})
	require.NoError(t, err)
	require.NoError(t, s.Replace(8, []float64{2}))

	var buf bytes.Buffer
	require.NoError(t, WriteFiltered(&buf, s))
	assert.Equal(t, "8,2\n0.015625,-3e-07\n", buf.String())

	// written output loads back into the same table
	records, err := record.Scan(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, []record.Record{
		{Frequency: 8, Samples: []float64{2}},
		{Frequency: 0.015625, Samples: []float64{-3e-7}},
	}, records)
}

func TestWriteFilteredFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "FFT_SEC_V_T_L1_S2_D3_C4_X.csv")

	s, err := station.New(station.ID{Tag: "X"}, []record.Record{{Frequency: 1, Samples: []float64{10, 20}}})
	require.NoError(t, err)

	path, err := WriteFilteredFile(s, src, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "FFT_SEC_V_T_L1_S2_D3_C4_X_filtered.csv"), path)

	out := t.TempDir()
	path, err = WriteFilteredFile(s, src, out)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "FFT_SEC_V_T_L1_S2_D3_C4_X_filtered.csv"), path)

	p, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1,10,20\n", string(p))
}

func TestWriteSummary(t *testing.T) {
	id := station.ID{Line: 12, Site: 34, Device: 1, Channel: 2, Tag: "X"}

	var buf bytes.Buffer
	err := WriteSummary(&buf, []storage.Summary{
		{Station: id, Frequency: 1, Current: sql.NullFloat64{Float64: 2, Valid: true}, Mean: 20, RelativeError: 0.25},
		{Station: id, Frequency: 2, Mean: 0, RelativeError: math.NaN()},
	})
	require.NoError(t, err)

	want := "line,site,device,channel,tag,frequency,current,mean,relative_error\n" +
		"12,34,1,2,X,1,2,20,0.25\n" +
		"12,34,1,2,X,2,,0,NaN\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteComparison(t *testing.T) {
	cmp := normalize.Comparison{
		Axis: []float64{0.5, 1, 2},
		Curves: []normalize.Curve{
			{Label: "L1_S1_D1_C1_X", Points: []normalize.Point{{Frequency: 0.5, Value: 10}, {Frequency: 2, Value: 2.5}}},
			{Label: "L1_S2_D1_C1_X", Points: []normalize.Point{{Frequency: 1, Value: 4}}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteComparison(&buf, cmp))

	want := "frequency,L1_S1_D1_C1_X,L1_S2_D1_C1_X\n" +
		"0.5,10,\n" +
		"1,,4\n" +
		"2,2.5,\n"
	assert.Equal(t, want, buf.String())
}
