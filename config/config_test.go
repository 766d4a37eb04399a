package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		parts   int32
		part    int32
		wantErr bool
	}{
		{"part within range", 3, 2, false},
		{"first part", 3, 1, false},
		{"last part", 3, 3, false},
		{"all parts", 3, 0, false},
		{"part above range", 3, 4, true},
		{"negative part", 3, -1, true},
		{"zero parts", 0, 0, true},
		{"negative parts", -2, 0, true},
		{"single part dataset", 1, 1, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{
				ScaleFactor: 1.0,
				OutputDir:   "/tmp/out",
				Parts:       tc.parts,
				Part:        tc.part,
				Compression: CompressionSnappy,
			}
			err := cfg.Validate()
			if tc.wantErr {
				require.Error(t, err)
				var cfgErr *ConfigError
				assert.ErrorAs(t, err, &cfgErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	single := &Config{OutputDir: "/data/sf1", Parts: 1}
	assert.Equal(t, filepath.Join("/data/sf1", "zone.parquet"), single.OutputPath(1))

	multi := &Config{OutputDir: "/data/sf1", Parts: 4}
	assert.Equal(t, filepath.Join("/data/sf1", "zone", "zone.3.parquet"), multi.OutputPath(3))

	// No zero padding in part numbers.
	big := &Config{OutputDir: "/data", Parts: 12}
	assert.Equal(t, filepath.Join("/data", "zone", "zone.12.parquet"), big.OutputPath(12))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zonegen.yaml")
	content := []byte(`scale_factor: 2.5
output_dir: /data/out
parts: 8
part: 3
row_group_bytes: 67108864
compression: zstd
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2.5, cfg.ScaleFactor)
	assert.Equal(t, "/data/out", cfg.OutputDir)
	assert.Equal(t, int32(8), cfg.Parts)
	assert.Equal(t, int32(3), cfg.Part)
	assert.Equal(t, int64(67108864), cfg.RowGroupBytes)
	assert.Equal(t, "zstd", cfg.Compression)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
