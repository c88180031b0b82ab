// Package ingest installs formulas, built with package formula, into a
// SAT engine's permanent clause base.
package ingest

import (
	"fmt"

	"github.com/cdclsat/backbone/formula"
	"github.com/cdclsat/backbone/internal/sat"
)

// InvariantViolated is the panic value raised when a formula reaches
// Install in a shape that CNF conversion should never have produced. It
// indicates a bug in package formula, not a malformed caller input.
type InvariantViolated struct {
	Shape string
}

func (e InvariantViolated) Error() string {
	return fmt.Sprintf("ingest: invariant violated: unexpected post-CNF shape %s", e.Shape)
}

// Install converts f to conjunctive normal form and adds each conjunct
// to e as a permanent clause. Variable names are resolved through
// e.EnsureVar, allocating a fresh engine variable the first time a name
// is seen; dummy variables introduced by CNF conversion are allocated
// non-decidable so the search heuristic never branches on them.
func Install(e *sat.Engine, f formula.Formula) error {
	if f == nil {
		return fmt.Errorf("ingest: nil formula")
	}
	installConjunct(e, formula.CNF(f))
	return nil
}

func installConjunct(e *sat.Engine, f formula.Formula) {
	switch {
	case formula.IsTrue(f):
		return
	case formula.IsFalse(f):
		e.AddClause(nil)
		return
	}

	switch lit := f.(type) {
	case formula.Lit:
		e.AddClause([]sat.Lit{toEngineLit(e, lit)})
		return
	}

	if disj, ok := asOr(f); ok {
		e.AddClause(toEngineLits(e, disj))
		return
	}

	if conj, ok := asAnd(f); ok {
		for _, c := range conj {
			installConjunct(e, c)
		}
		return
	}

	panic(InvariantViolated{Shape: fmt.Sprintf("%T", f)})
}

// asOr and asAnd type-assert against the concrete disjunction and
// conjunction shapes formula.CNF produces. formula's and/or types are
// unexported, so detection goes through formula.Disjunction/
// formula.Conjunction instead of a direct type switch from outside the package.
func asOr(f formula.Formula) ([]formula.Lit, bool) {
	return formula.Disjunction(f)
}

func asAnd(f formula.Formula) ([]formula.Formula, bool) {
	return formula.Conjunction(f)
}

func toEngineLit(e *sat.Engine, l formula.Lit) sat.Lit {
	v := e.EnsureVar(l.Name)
	if l.Dummy {
		// EnsureVar always allocates decidable variables; dummy
		// variables introduced by CNF conversion must not be branched
		// on, so mark them non-decidable now that the variable exists.
		e.SetDecidable(v, false)
	}
	return v.SignedLit(l.Negated)
}

func toEngineLits(e *sat.Engine, lits []formula.Lit) []sat.Lit {
	out := make([]sat.Lit, len(lits))
	for i, l := range lits {
		out[i] = toEngineLit(e, l)
	}
	return out
}
