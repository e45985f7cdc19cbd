package app

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
settings:
  logLevel: debug
storage:
  dbPath: /tmp/scatter.sqlite
input:
  transmitter: FFT_AVG_I_T1.csv
  receivers:
    - data/FFT_SEC_V_T_*.csv
  workers: 4
output:
  directory: out
  writeFiltered: true
  metricsFile: metrics.prom
cuts:
  - station: L12_S34_D1_C2_X
    frequency: 0.015625
    min: -1.5
    max: 2
  - station: L12_S34_D1_C2_X
    frequency: 8
    from: 0
    to: 9
`)

	c, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, c.Settings.Level())
	assert.Equal(t, "/tmp/scatter.sqlite", c.Storage.DBPath)
	assert.Equal(t, "FFT_AVG_I_T1.csv", c.Input.Transmitter)
	assert.Equal(t, []string{"data/FFT_SEC_V_T_*.csv"}, c.Input.Receivers)
	assert.Equal(t, 4, c.Input.Workers)
	assert.Equal(t, "out", c.Output.Directory)
	assert.Equal(t, defaultSummaryFile, c.Output.SummaryFile)
	assert.Equal(t, defaultCurvesFile, c.Output.CurvesFile)
	assert.True(t, c.Output.WriteFiltered)
	assert.Equal(t, "metrics.prom", c.Output.MetricsFile)

	require.Len(t, c.Cuts, 2)
	assert.True(t, c.Cuts[0].isValueCut())
	assert.Equal(t, 0.015625, c.Cuts[0].Frequency)
	assert.Equal(t, -1.5, *c.Cuts[0].Min)
	assert.True(t, c.Cuts[1].isIndexCut())
	assert.Equal(t, 9, *c.Cuts[1].To)
}

func TestLoadConfig_Defaults(t *testing.T) {
	c, err := LoadConfig(writeConfig(t, "input:\n  receivers: [\"*.csv\"]\n"))
	require.NoError(t, err)

	assert.Equal(t, slog.LevelInfo, c.Settings.Level())
	assert.Equal(t, defaultDBPath, c.Storage.DBPath)
	assert.Equal(t, defaultSummaryFile, c.Output.SummaryFile)
	assert.False(t, c.Output.WriteFiltered)
}

func TestLoadConfig_Invalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "no receivers",
			content: "settings:\n  logLevel: info\n",
			wantErr: errNoReceivers,
		},
		{
			name:    "cut without bounds",
			content: "input:\n  receivers: [a]\ncuts:\n  - station: L1_S1_D1_C1_X\n    frequency: 1\n",
			wantErr: errInvalidCut,
		},
		{
			name:    "half value cut",
			content: "input:\n  receivers: [a]\ncuts:\n  - station: L1_S1_D1_C1_X\n    frequency: 1\n    min: 0\n",
			wantErr: errInvalidCut,
		},
		{
			name:    "mixed cut",
			content: "input:\n  receivers: [a]\ncuts:\n  - station: L1_S1_D1_C1_X\n    frequency: 1\n    min: 0\n    max: 1\n    from: 0\n    to: 1\n",
			wantErr: errInvalidCut,
		},
		{
			name:    "cut without station",
			content: "input:\n  receivers: [a]\ncuts:\n  - frequency: 1\n    min: 0\n    max: 1\n",
			wantErr: errInvalidCut,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.content))
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadConfig(writeConfig(t, "input: [\n"))
	assert.Error(t, err)
}

func TestSettings_Level(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, Settings{LogLevel: "WARN"}.Level())
	assert.Equal(t, slog.LevelInfo, Settings{LogLevel: "chatty"}.Level())
}
