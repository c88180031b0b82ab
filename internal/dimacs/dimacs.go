// Package dimacs loads DIMACS CNF files into a SAT engine, and reads back
// DIMACS-formatted model files for testing.
package dimacs

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rhartert/dimacs"

	"github.com/cdclsat/backbone/internal/sat"
)

func reader(filename string, gzipped bool) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	rc := io.ReadCloser(file)
	if gzipped {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			return nil, err
		}
	}
	return rc, nil
}

// LoadDIMACS parses the DIMACS CNF file at filename and installs its
// variables and clauses into e. Variables are named by their 1-based
// DIMACS index, stringified, so that a caller can list relevant
// variables for backbone computation using the same numbers the file
// uses.
func LoadDIMACS(filename string, gzipped bool, e *sat.Engine) error {
	r, err := reader(filename, gzipped)
	if err != nil {
		return fmt.Errorf("dimacs: could not open %q: %w", filename, err)
	}
	defer r.Close()

	b := &builder{e: e}
	if err := dimacs.ReadBuilder(r, b); err != nil {
		return fmt.Errorf("dimacs: could not parse %q: %w", filename, err)
	}
	return nil
}

// builder wraps an Engine to implement dimacs.Builder.
type builder struct {
	e *sat.Engine
}

func (b *builder) Problem(problem string, nVars int, nClauses int) error {
	if problem != "cnf" {
		return fmt.Errorf("dimacs: problem type %q is not supported", problem)
	}
	for i := 1; i <= nVars; i++ {
		b.e.EnsureVar(strconv.Itoa(i))
	}
	return nil
}

func (b *builder) Clause(tmpClause []int) error {
	clause := make([]sat.Lit, len(tmpClause))
	for i, l := range tmpClause {
		if l < 0 {
			clause[i] = b.e.EnsureVar(strconv.Itoa(-l)).SignedLit(true)
		} else {
			clause[i] = b.e.EnsureVar(strconv.Itoa(l)).SignedLit(false)
		}
	}
	b.e.AddClause(clause)
	return nil
}

func (b *builder) Comment(_ string) error {
	return nil
}

// ReadModels returns the list of models contained in a DIMACS-formatted
// model file: one model per line, each a clause of literals over the
// same numbering as the corresponding instance file.
func ReadModels(filename string) ([][]bool, error) {
	r, err := reader(filename, false)
	if err != nil {
		return nil, fmt.Errorf("dimacs: could not open %q: %w", filename, err)
	}
	defer r.Close()

	b := &modelBuilder{}
	if err := dimacs.ReadBuilder(r, b); err != nil {
		return nil, fmt.Errorf("dimacs: could not parse %q: %w", filename, err)
	}
	return b.models, nil
}

type modelBuilder struct {
	models [][]bool
}

func (b *modelBuilder) Problem(problem string, nVars int, nClauses int) error {
	return fmt.Errorf("dimacs: model files should not have a problem line")
}

func (b *modelBuilder) Comment(_ string) error {
	return nil
}

func (b *modelBuilder) Clause(tmpClause []int) error {
	model := make([]bool, len(tmpClause))
	for i, l := range tmpClause {
		model[i] = l > 0
	}
	b.models = append(b.models, model)
	return nil
}
