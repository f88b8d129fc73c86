package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rafaelcaricio/wav1c/internal/config"
	"github.com/rafaelcaricio/wav1c/internal/extract"
	"github.com/rafaelcaricio/wav1c/internal/table"
)

// fixture assembles a synthetic cdf.c with the same landmarks the real one
// has: the default_cdf initializer and the four-slice default_coef_cdf
// array. Tests mutate the field bodies to provoke specific failures.
type fixture struct {
	def  map[string]string
	coef map[string]string
}

func newFixture() *fixture {
	f := &fixture{
		def:  make(map[string]string),
		coef: make(map[string]string),
	}
	for _, spec := range table.Manifest() {
		body := entriesFor(spec)
		if spec.Section == table.SectionCoef {
			f.coef[spec.Field] = body
		} else {
			f.def[spec.Field] = body
		}
	}
	return f
}

// entriesFor renders spec.Count macro calls, honoring the first spot check
// so the fixture passes validation out of the box.
func entriesFor(spec table.Spec) string {
	var b strings.Builder
	start := 0
	if len(spec.Checks) > 0 {
		fmt.Fprintf(&b, "CDF1(%d), ", 32768-int(spec.Checks[0].Want))
		start = 1
	}
	for i := start; i < spec.Count; i++ {
		b.WriteString("CDF1(5), ")
	}
	return b.String()
}

func (f *fixture) source() string {
	var b strings.Builder
	b.WriteString("#include \"src/cdf.h\"\n\n")

	b.WriteString("static const CdfDefaultContext default_cdf = {\n")
	for _, spec := range table.Manifest() {
		if spec.Section != table.SectionDefault {
			continue
		}
		body, ok := f.def[spec.Field]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "    .%s = {\n        %s\n    },\n", spec.Field, body)
	}
	b.WriteString("};\n\n")

	b.WriteString("static const CdfCoefContext default_coef_cdf[4] = {\n")
	for qctx := 0; qctx < 3; qctx++ {
		fmt.Fprintf(&b, "    [%d] = { .skip = { CDF1(1) } },\n", qctx)
	}
	b.WriteString("    [3] = {\n")
	for _, spec := range table.Manifest() {
		if spec.Section != table.SectionCoef {
			continue
		}
		body, ok := f.coef[spec.Field]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "        .%s = {\n            %s\n        },\n", spec.Field, body)
	}
	b.WriteString("    },\n")
	b.WriteString("};\n")

	return b.String()
}

// write saves the fixture and returns a config pointing at it.
func (f *fixture) write(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "cdf.c")
	require.NoError(t, os.WriteFile(src, []byte(f.source()), 0644))

	cfg := config.DefaultConfig()
	cfg.Source = src
	cfg.Output = filepath.Join(dir, "out", "cdf_tables.go")
	return cfg
}

func requireNoOutput(t *testing.T, cfg *config.Config) {
	t.Helper()
	_, err := os.Stat(cfg.Output)
	require.True(t, os.IsNotExist(err), "output file should not have been written")
}

func TestRun(t *testing.T) {
	logger := zap.NewNop()

	t.Run("generates all tables", func(t *testing.T) {
		cfg := newFixture().write(t)

		result, err := Run(cfg, logger)
		require.NoError(t, err)
		assert.Equal(t, 14, result.Tables)
		assert.Equal(t, cfg.Output, result.OutputPath)

		data, err := os.ReadFile(cfg.Output)
		require.NoError(t, err)
		src := string(data)

		assert.True(t, strings.HasPrefix(src, "// Code generated by cdfgen; DO NOT EDIT.\n"))
		assert.Contains(t, src, "package msac\n")
		for _, spec := range table.Manifest() {
			assert.Contains(t, src, "var "+spec.Const+" = ", "table %s missing", spec.Const)
		}
		assert.Contains(t, src, "func NewCdfContext(baseQIdx uint8) CdfContext {")

		// skip's first entry is CDF1(31671); the transformed value 1097
		// leads its zero-padded row.
		assert.Contains(t, src, "var DefaultSkipCdf = [3][4]uint16{\n\t{1097, 0, 0, 0},")
	})

	t.Run("regeneration is byte identical", func(t *testing.T) {
		cfg := newFixture().write(t)

		_, err := Run(cfg, logger)
		require.NoError(t, err)
		first, err := os.ReadFile(cfg.Output)
		require.NoError(t, err)

		_, err = Run(cfg, logger)
		require.NoError(t, err)
		second, err := os.ReadFile(cfg.Output)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("missing source file", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Source = filepath.Join(t.TempDir(), "nope.c")
		cfg.Output = filepath.Join(t.TempDir(), "out.go")

		_, err := Run(cfg, logger)
		require.Error(t, err)
		requireNoOutput(t, cfg)
	})

	t.Run("missing field aborts before writing", func(t *testing.T) {
		f := newFixture()
		delete(f.def, "partition")
		cfg := f.write(t)

		_, err := Run(cfg, logger)
		require.ErrorIs(t, err, extract.ErrMarkerNotFound)
		assert.Contains(t, err.Error(), "DefaultPartitionCdf")
		requireNoOutput(t, cfg)
	})

	t.Run("count mismatch aborts before writing", func(t *testing.T) {
		f := newFixture()
		// 64 entries where the manifest declares 65.
		f.coef["skip"] = "CDF1(26887), " + strings.Repeat("CDF1(5), ", 63)
		cfg := f.write(t)

		_, err := Run(cfg, logger)
		require.ErrorIs(t, err, table.ErrCountMismatch)
		requireNoOutput(t, cfg)
	})

	t.Run("spot check failure aborts before writing", func(t *testing.T) {
		f := newFixture()
		f.def["skip"] = "CDF1(9999), CDF1(5), CDF1(5), "
		cfg := f.write(t)

		_, err := Run(cfg, logger)
		require.ErrorIs(t, err, table.ErrSpotCheck)
		requireNoOutput(t, cfg)
	})

	t.Run("arity mismatch aborts before writing", func(t *testing.T) {
		f := newFixture()
		f.def["skip"] = "CDF2(31671, 2, 3), CDF1(5), CDF1(5), "
		cfg := f.write(t)

		_, err := Run(cfg, logger)
		require.ErrorIs(t, err, extract.ErrArityMismatch)
		requireNoOutput(t, cfg)
	})
}

func TestCheck(t *testing.T) {
	logger := zap.NewNop()

	t.Run("valid source passes without writing", func(t *testing.T) {
		cfg := newFixture().write(t)

		require.NoError(t, Check(cfg, logger))
		requireNoOutput(t, cfg)
	})

	t.Run("reports the same failures as Run", func(t *testing.T) {
		f := newFixture()
		delete(f.coef, "dc_sign")
		cfg := f.write(t)

		err := Check(cfg, logger)
		require.ErrorIs(t, err, extract.ErrMarkerNotFound)
	})
}
