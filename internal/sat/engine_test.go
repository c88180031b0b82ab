package sat

import "testing"

// lits builds a clause from integers using the usual DIMACS convention:
// a positive integer n denotes the positive literal of Var(n-1), negative
// denotes its negation.
func lits(ns ...int) []Lit {
	out := make([]Lit, len(ns))
	for i, n := range ns {
		if n < 0 {
			out[i] = Var(-n - 1).SignedLit(true)
		} else {
			out[i] = Var(n - 1).SignedLit(false)
		}
	}
	return out
}

func newTestEngine(nVars int) *Engine {
	e := NewEngine(DefaultOptions)
	for i := 0; i < nVars; i++ {
		e.NewVar(true, true)
	}
	return e
}

func TestAddClauseUnitPropagation(t *testing.T) {
	e := newTestEngine(2)

	e.AddClause(lits(1))
	e.AddClause(lits(-1, 2))

	if e.Value(Var(0)) != True {
		t.Fatalf("Value(0): want True, got %s", e.Value(Var(0)))
	}
	if e.Value(Var(1)) != True {
		t.Fatalf("Value(1): want True after unit propagation, got %s", e.Value(Var(1)))
	}
	if e.Level(Var(1)) != 0 {
		t.Errorf("Level(1): want 0, got %d", e.Level(Var(1)))
	}
}

func TestAddClauseEmptyIsUnsat(t *testing.T) {
	e := newTestEngine(1)

	if ok := e.AddClause(nil); ok {
		t.Fatalf("AddClause(nil): want false")
	}
	if got := e.Solve(nil); got != Unsat {
		t.Errorf("Solve(): want Unsat, got %s", got)
	}
}

func TestAddClauseContradictionIsUnsat(t *testing.T) {
	e := newTestEngine(1)

	e.AddClause(lits(1))
	e.AddClause(lits(-1))

	if got := e.Solve(nil); got != Unsat {
		t.Errorf("Solve(): want Unsat, got %s", got)
	}
}

func TestSolveSatisfiable(t *testing.T) {
	e := newTestEngine(3)

	e.AddClause(lits(1, 2, 3))
	e.AddClause(lits(-1, 2))
	e.AddClause(lits(-2, 3))

	if got := e.Solve(nil); got != Sat {
		t.Fatalf("Solve(): want Sat, got %s", got)
	}
	if !e.ModelValue(Var(2)) {
		t.Errorf("ModelValue(2): the only unit-free clause set here still forces var 3 true")
	}
}

func TestSolveWithAssumptions(t *testing.T) {
	e := newTestEngine(2)

	e.AddClause(lits(1, 2))

	if got := e.Solve(lits(-1)); got != Sat {
		t.Fatalf("Solve({-1}): want Sat, got %s", got)
	}
	if !e.ModelValue(Var(1)) {
		t.Errorf("ModelValue(1): want true, since 2 is forced when 1 is assumed false")
	}

	if got := e.Solve(lits(-1, -2)); got != Unsat {
		t.Errorf("Solve({-1,-2}): want Unsat, got %s", got)
	}

	// The clause base itself is still satisfiable; only the combination
	// with both assumptions is not.
	if got := e.Solve(nil); got != Sat {
		t.Errorf("Solve(): want Sat after an assumption-only conflict, got %s", got)
	}
}

func TestCheckpointRollback(t *testing.T) {
	e := newTestEngine(2)
	e.AddClause(lits(1, 2))

	cp := e.SaveState()
	e.AddClause(lits(1))
	e.AddClause(lits(-2))

	if got := e.Solve(nil); got != Sat {
		t.Fatalf("Solve(): want Sat before rollback, got %s", got)
	}

	e.LoadState(cp)

	if e.NumConstraints() != 1 {
		t.Errorf("NumConstraints(): want 1 after rollback, got %d", e.NumConstraints())
	}
	if got := e.Solve(lits(-1)); got != Sat {
		t.Errorf("Solve({-1}): want Sat after rollback undid the unit clause on 1, got %s", got)
	}
}

func TestCheckpointRollbackPreservesPriorUnsat(t *testing.T) {
	e := newTestEngine(1)
	e.AddClause(lits(1))
	e.AddClause(lits(-1))

	cp := e.SaveState()
	e.LoadState(cp)

	if got := e.Solve(nil); got != Unsat {
		t.Errorf("Solve(): want Unsat to survive a checkpoint taken while already unsat, got %s", got)
	}
}

func TestRotatableLiteral(t *testing.T) {
	// A lone variable with no constraints on it at all is rotatable in
	// any complete model: flipping it falsifies nothing.
	e := newTestEngine(1)

	if got := e.Solve(nil); got != Sat {
		t.Fatalf("Solve(): want Sat, got %s", got)
	}

	l := Var(0).SignedLit(!e.ModelValue(Var(0)))
	if !e.Rotatable(l) {
		t.Errorf("Rotatable(): want true for an unconstrained variable's model literal")
	}
}

func TestRotatableLiteralFalseWhenClauseDependsOnIt(t *testing.T) {
	e := newTestEngine(2)
	e.AddClause(lits(1, 2))

	if got := e.Solve(lits(-2)); got != Sat {
		t.Fatalf("Solve({-2}): want Sat, got %s", got)
	}

	// Var 1 must be true for the clause to be satisfied once var 2 is
	// false: the clause watches var 1 and has no other true literal, so
	// var 1 is not rotatable.
	l := Var(0).SignedLit(!e.ModelValue(Var(0)))
	if e.Rotatable(l) {
		t.Errorf("Rotatable(): want false for a literal required by a now-unit clause")
	}
}

func TestSolveWithAssumptionsSurvivesLowLevelConflict(t *testing.T) {
	// Vars: 1=L (unconstrained), 2=R, 3=P, 4=Q.
	e := newTestEngine(4)
	e.AddClause(lits(3, 4))   // P or Q
	e.AddClause(lits(-3, 2))  // not(P) or R
	e.AddClause(lits(-4, 2))  // not(Q) or R

	// Assuming not(L) forces a decision on R, P, or Q deeper in the
	// trail; if that decision conflicts and the conflict analyzes down
	// to a fact that holds regardless of the assumption (here, R must
	// be true), the call must still find the satisfying assignment
	// (L=false, R=true) rather than reporting Unsat.
	if got := e.Solve(lits(-1)); got != Sat {
		t.Fatalf("Solve({-L}): want Sat (R=true satisfies everything regardless of L), got %s", got)
	}
	if e.ModelValue(Var(0)) {
		t.Errorf("ModelValue(L): want false, the model must respect the assumption")
	}
}

func TestLearntClauseAfterConflict(t *testing.T) {
	e := newTestEngine(3)

	e.AddClause(lits(1, 2))
	e.AddClause(lits(1, -2, 3))
	e.AddClause(lits(-1, 2, 3))
	e.AddClause(lits(-1, -2))

	if got := e.Solve(nil); got != Sat {
		t.Fatalf("Solve(): want Sat, got %s", got)
	}
	if !e.ModelValue(Var(2)) {
		t.Errorf("ModelValue(2): every model of this clause set has var 3 true")
	}
}
