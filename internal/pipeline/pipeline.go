// Package pipeline runs the full extraction pass: read cdf.c once, cut out
// each table region, decode and transform its macros, gate the result, then
// reshape and emit everything into one generated file.
//
// The pass is deliberately synchronous and all-or-nothing. A malformed or
// version-skewed input cannot be partially reshaped, so every failure
// aborts before the output file is opened.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rafaelcaricio/wav1c/internal/config"
	"github.com/rafaelcaricio/wav1c/internal/emit"
	"github.com/rafaelcaricio/wav1c/internal/extract"
	"github.com/rafaelcaricio/wav1c/internal/table"
)

// defaultMarker opens the CdfDefaultContext initializer; the coefficient
// tables live in default_coef_cdf and are located by extract.CoefSlice.
const defaultMarker = "static const CdfDefaultContext default_cdf = {"

// coefQctx is the quantizer-context slice the tool extracts. The other
// three slices exist in cdf.c but are not wired into the generated context.
const coefQctx = 3

// Result summarizes a completed generation pass.
type Result struct {
	OutputPath string
	Tables     int
	Entries    int
}

// Run executes the whole pipeline and writes the generated file. The
// output file is created (and any previous content truncated) only after
// every table has passed validation.
func Run(cfg *config.Config, logger *zap.Logger) (*Result, error) {
	tables, entries, err := buildTables(cfg.Source, logger)
	if err != nil {
		return nil, err
	}

	src := emit.File(cfg.Package, tables)

	if dir := filepath.Dir(cfg.Output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(cfg.Output, []byte(src), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", cfg.Output, err)
	}

	logger.Info("Generated CDF tables",
		zap.String("output", cfg.Output),
		zap.Int("tables", len(tables)),
		zap.Int("entries", entries))

	return &Result{OutputPath: cfg.Output, Tables: len(tables), Entries: entries}, nil
}

// Check runs extraction, decoding, reshaping, and validation without
// writing anything. It is the CI-friendly half of Run.
func Check(cfg *config.Config, logger *zap.Logger) error {
	_, _, err := buildTables(cfg.Source, logger)
	return err
}

// buildTables reads the source file and produces every manifest table,
// fully validated and reshaped. Tables come back in emission order.
func buildTables(sourcePath string, logger *zap.Logger) ([]emit.Table, int, error) {
	raw, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read %s: %w", sourcePath, err)
	}
	text := string(raw)

	defSection, err := extract.Braced(text, defaultMarker)
	if err != nil {
		return nil, 0, fmt.Errorf("default_cdf section: %w", err)
	}
	coefSection, err := extract.CoefSlice(text, coefQctx)
	if err != nil {
		return nil, 0, fmt.Errorf("default_coef_cdf section: %w", err)
	}

	var tables []emit.Table
	total := 0
	for _, spec := range table.Manifest() {
		section := defSection
		if spec.Section == table.SectionCoef {
			section = coefSection
		}

		region, err := extract.Field(section, spec.Field)
		if err != nil {
			return nil, 0, fmt.Errorf("table %s: %w", spec.Const, err)
		}

		entries, err := extract.Decode(region)
		if err != nil {
			return nil, 0, fmt.Errorf("table %s: %w", spec.Const, err)
		}

		if err := table.Validate(spec, entries); err != nil {
			return nil, 0, err
		}

		arr, err := table.Reshape(entries, spec.Shape)
		if err != nil {
			return nil, 0, fmt.Errorf("table %s: %w", spec.Const, err)
		}

		logger.Debug("Table validated",
			zap.String("table", spec.Const),
			zap.String("field", spec.Field),
			zap.Int("entries", len(entries)))

		tables = append(tables, emit.Table{Name: spec.Const, Shape: spec.Shape, Data: arr})
		total += len(entries)
	}

	logger.Info("Validation passed",
		zap.Int("tables", len(tables)),
		zap.Int("entries", total))

	return tables, total, nil
}
