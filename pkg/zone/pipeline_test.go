package zone

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/zonegen/config"
	"github.com/TFMV/zonegen/pkg/core"
	"github.com/TFMV/zonegen/pkg/readers"
)

func testConfig(t *testing.T, parts int32) *config.Config {
	t.Helper()
	return &config.Config{
		ScaleFactor:   1.0,
		OutputDir:     t.TempDir(),
		Parts:         parts,
		RowGroupBytes: 1 << 20,
		Compression:   config.CompressionSnappy,
	}
}

// readKeys reads every z_zonekey value from a generated parquet file.
func readKeys(t *testing.T, path string) []int64 {
	t.Helper()
	reader, err := readers.NewParquetReader(path, 0)
	require.NoError(t, err)
	defer reader.Close()

	keyIdx := reader.Schema().FieldIndices("z_zonekey")
	require.NotEmpty(t, keyIdx)

	ctx := context.Background()
	var keys []int64
	for {
		rec, err := reader.Read(ctx)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		col := rec.Column(keyIdx[0]).(*array.Int64)
		for i := 0; i < col.Len(); i++ {
			keys = append(keys, col.Value(i))
		}
		rec.Release()
	}
	return keys
}

func TestGenerateAllPartsEndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, 3)
	gen := NewGenerator(cfg.ScaleFactor, WithRowCount(100), WithBatchSize(16))

	manifest, err := GenerateWith(ctx, cfg, gen, core.AllParts{})
	require.NoError(t, err)
	require.Len(t, manifest.Files, 3)

	// N=100, K=3 => limits 34, 33, 33 at offsets 0, 34, 67.
	assert.Equal(t, int64(34), manifest.Files[0].Rows)
	assert.Equal(t, int64(33), manifest.Files[1].Rows)
	assert.Equal(t, int64(33), manifest.Files[2].Rows)
	assert.Equal(t, int64(0), manifest.Files[0].Offset)
	assert.Equal(t, int64(34), manifest.Files[1].Offset)
	assert.Equal(t, int64(67), manifest.Files[2].Offset)

	var all []int64
	for _, f := range manifest.Files {
		assert.FileExists(t, f.Path)
		all = append(all, readKeys(t, f.Path)...)
	}

	// Keys across all parts are exactly 1..N, no gaps or duplicates.
	require.Len(t, all, 100)
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	for i, k := range all {
		assert.Equal(t, int64(i+1), k)
	}
}

func TestGenerateSinglePartMatchesMultiPart(t *testing.T) {
	ctx := context.Background()

	multiCfg := testConfig(t, 3)
	gen := NewGenerator(1, WithRowCount(90), WithBatchSize(13))
	multiManifest, err := GenerateWith(ctx, multiCfg, gen, core.AllParts{})
	require.NoError(t, err)

	singleCfg := testConfig(t, 3)
	singleCfg.Part = 2
	gen2 := NewGenerator(1, WithRowCount(90), WithBatchSize(13))
	singleManifest, err := GenerateWith(ctx, singleCfg, gen2, core.SinglePart{Part: 2})
	require.NoError(t, err)
	require.Len(t, singleManifest.Files, 1)

	multiKeys := readKeys(t, multiManifest.Files[1].Path)
	singleKeys := readKeys(t, singleManifest.Files[0].Path)
	assert.Equal(t, multiKeys, singleKeys)
}

func TestGenerateOutputLayout(t *testing.T) {
	ctx := context.Background()

	// parts == 1: single canonical file, no subdirectory.
	cfg := testConfig(t, 1)
	gen := NewGenerator(1, WithRowCount(10))
	manifest, err := GenerateWith(ctx, cfg, gen, core.AllParts{})
	require.NoError(t, err)
	require.Len(t, manifest.Files, 1)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "zone.parquet"), manifest.Files[0].Path)

	// parts > 1: per-part files in a zone subdirectory.
	cfg4 := testConfig(t, 4)
	gen4 := NewGenerator(1, WithRowCount(10))
	manifest4, err := GenerateWith(ctx, cfg4, gen4, core.SinglePart{Part: 3})
	require.NoError(t, err)
	require.Len(t, manifest4.Files, 1)
	assert.Equal(t, filepath.Join(cfg4.OutputDir, "zone", "zone.3.parquet"), manifest4.Files[0].Path)
}

func TestGenerateMorePartsThanRows(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, 5)
	gen := NewGenerator(1, WithRowCount(3))

	manifest, err := GenerateWith(ctx, cfg, gen, core.AllParts{})
	require.NoError(t, err)
	require.Len(t, manifest.Files, 5)

	var total int64
	for _, f := range manifest.Files {
		total += f.Rows
	}
	assert.Equal(t, int64(3), total)

	// Every part file must be valid parquet, including the zero-row
	// ones, and read back exactly its manifest row count.
	var all []int64
	for _, f := range manifest.Files {
		reader, err := readers.NewParquetReader(f.Path, 0)
		require.NoError(t, err, "part %d", f.Part)
		assert.Equal(t, f.Rows, reader.NumRows(), "part %d", f.Part)
		require.NoError(t, reader.Close())

		all = append(all, readKeys(t, f.Path)...)
	}

	require.Len(t, all, 3)
	for i, k := range all {
		assert.Equal(t, int64(i+1), k)
	}
}

func TestGenerateRejectsInvalidPart(t *testing.T) {
	ctx := context.Background()

	for _, part := range []int32{0, 4} {
		cfg := testConfig(t, 3)
		cfg.Part = part
		gen := NewGenerator(1, WithRowCount(10))

		sel := core.PartSelection(core.SinglePart{Part: part})
		_, err := GenerateWith(ctx, cfg, gen, sel)
		require.Error(t, err, "part=%d", part)

		var cfgErr *config.ConfigError
		assert.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %T", err)

		// No output was produced.
		entries, readErr := os.ReadDir(cfg.OutputDir)
		require.NoError(t, readErr)
		assert.Empty(t, entries)
	}
}

func TestGenerateCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig(t, 2)
	gen := NewGenerator(1, WithRowCount(50))

	_, err := GenerateWith(ctx, cfg, gen, core.AllParts{})
	require.Error(t, err)

	var execErr *core.ExecutionError
	assert.True(t, errors.As(err, &execErr))
	assert.ErrorIs(t, err, context.Canceled)
}
