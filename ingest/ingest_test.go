package ingest

import (
	"testing"

	"github.com/cdclsat/backbone/formula"
	"github.com/cdclsat/backbone/internal/sat"
)

func TestInstallLiteral(t *testing.T) {
	e := sat.NewEngine(sat.DefaultOptions)

	if err := Install(e, formula.Var("A")); err != nil {
		t.Fatalf("Install(): want no error, got %s", err)
	}

	v, ok := e.LookupVar("A")
	if !ok {
		t.Fatalf("LookupVar(A): want the variable to exist")
	}
	if e.Value(v) != sat.True {
		t.Errorf("Value(A): want True, got %s", e.Value(v))
	}
}

func TestInstallFalseIsUnsat(t *testing.T) {
	e := sat.NewEngine(sat.DefaultOptions)

	if err := Install(e, formula.False); err != nil {
		t.Fatalf("Install(): want no error, got %s", err)
	}
	if got := e.Solve(nil); got != sat.Unsat {
		t.Errorf("Solve(): want Unsat, got %s", got)
	}
}

func TestInstallTrueIsNoop(t *testing.T) {
	e := sat.NewEngine(sat.DefaultOptions)

	if err := Install(e, formula.True); err != nil {
		t.Fatalf("Install(): want no error, got %s", err)
	}
	if e.NumVars() != 0 {
		t.Errorf("NumVars(): want 0, got %d", e.NumVars())
	}
	if got := e.Solve(nil); got != sat.Sat {
		t.Errorf("Solve(): want Sat, got %s", got)
	}
}

func TestInstallConjunctionAndDisjunction(t *testing.T) {
	e := sat.NewEngine(sat.DefaultOptions)
	a, b, c := formula.Var("A"), formula.Var("B"), formula.Var("C")

	f := formula.And(a, formula.Or(b, c))
	if err := Install(e, f); err != nil {
		t.Fatalf("Install(): want no error, got %s", err)
	}

	va, _ := e.LookupVar("A")
	if e.Value(va) != sat.True {
		t.Errorf("Value(A): want True, got %s", e.Value(va))
	}

	vb, okB := e.LookupVar("B")
	vc, okC := e.LookupVar("C")
	if !okB || !okC {
		t.Fatalf("LookupVar(B)/LookupVar(C): want both variables to exist")
	}
	if e.Value(vb) != sat.Unknown || e.Value(vc) != sat.Unknown {
		t.Errorf("Value(B)/Value(C): want unassigned until solved")
	}

	if got := e.Solve([]sat.Lit{vb.SignedLit(true), vc.SignedLit(true)}); got != sat.Unsat {
		t.Errorf("Solve({-B,-C}): want Unsat, got %s", got)
	}
}

func TestInstallNestedConjunctionInDisjunctionIsSat(t *testing.T) {
	e := sat.NewEngine(sat.DefaultOptions)
	a, b, c := formula.Var("A"), formula.Var("B"), formula.Var("C")

	// Force a nested and-inside-or so CNF conversion introduces a
	// Tseitin dummy variable.
	f := formula.Or(formula.And(a, b), c)
	if err := Install(e, f); err != nil {
		t.Fatalf("Install(): want no error, got %s", err)
	}

	if got := e.Solve(nil); got != sat.Sat {
		t.Fatalf("Solve(): want Sat, got %s", got)
	}
}

func TestInstallNilFormulaErrors(t *testing.T) {
	e := sat.NewEngine(sat.DefaultOptions)

	if err := Install(e, nil); err == nil {
		t.Errorf("Install(nil): want an error, got none")
	}
}
