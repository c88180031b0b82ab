// Package backbone computes the backbone of a propositional formula: the
// set of literals that hold in every satisfying assignment. It implements
// Algorithm 3 of Janota, Lynce & Marques-Silva, "Algorithms for Computing
// Backbones of Propositional Formulae" (AI Communications 28(2), 2015),
// on top of an incremental CDCL engine.
package backbone

import (
	"errors"
	"sort"

	"github.com/cdclsat/backbone/formula"
	"github.com/cdclsat/backbone/ingest"
	"github.com/cdclsat/backbone/internal/sat"
)

// ErrUnsatisfiable is returned by Compute when the formula, once the
// given restrictions are added, has no satisfying assignment at all —
// the empty-model case in which every literal is vacuously a backbone
// literal and none.
var ErrUnsatisfiable = errors.New("backbone: formula is unsatisfiable")

// Result is the backbone of a formula, projected onto the caller's
// relevant variable names and split into the three categories Algorithm
// 3 distinguishes. Each slice is sorted.
type Result struct {
	// Positive holds the names of relevant variables forced true in
	// every model.
	Positive []string
	// Negative holds the names of relevant variables forced false in
	// every model.
	Negative []string
	// Optional holds the names of relevant variables that take both
	// values across different models — including any name the caller
	// listed that the engine never saw a clause for.
	Optional []string
}

// Compute installs restrictions into e, then computes the backbone of
// the resulting formula restricted to relevant's variables. e is left
// exactly as it was found: every clause and variable Compute adds,
// including the unit clauses it records for discovered backbone
// literals, is rolled back before returning.
func Compute(e *sat.Engine, restrictions []formula.Formula, relevant []string, cfg Config) (*Result, error) {
	checkpoint := e.SaveState()
	defer e.LoadState(checkpoint)

	for _, r := range restrictions {
		if err := ingest.Install(e, r); err != nil {
			return nil, err
		}
	}

	if e.Solve(nil) != sat.Sat {
		return nil, ErrUnsatisfiable
	}

	relevantVars := make([]sat.Var, 0, len(relevant))
	for _, name := range relevant {
		if v, ok := e.LookupVar(name); ok {
			relevantVars = append(relevantVars, v)
		}
	}

	s := &state{e: e, cfg: cfg}
	s.createInitialCandidates(relevantVars)
	s.run()

	positiveNames := make(map[string]bool, len(s.positive))
	for _, lit := range s.positive {
		positiveNames[e.VarName(lit.Var())] = true
	}
	negativeNames := make(map[string]bool, len(s.negative))
	for _, lit := range s.negative {
		negativeNames[e.VarName(lit.Var())] = true
	}

	res := &Result{}
	for _, name := range relevant {
		switch {
		case positiveNames[name]:
			res.Positive = append(res.Positive, name)
		case negativeNames[name]:
			res.Negative = append(res.Negative, name)
		default:
			res.Optional = append(res.Optional, name)
		}
	}
	sort.Strings(res.Positive)
	sort.Strings(res.Negative)
	sort.Strings(res.Optional)

	return res, nil
}

// state holds the working data of a single backbone computation: the
// LIFO stack of literals still to be checked and the two lists of
// literals already confirmed as part of the backbone.
type state struct {
	e   *sat.Engine
	cfg Config

	candidates []sat.Lit
	positive   []sat.Lit
	negative   []sat.Lit
}

func (s *state) push(l sat.Lit) {
	s.candidates = append(s.candidates, l)
}

func (s *state) pop() sat.Lit {
	l := s.candidates[len(s.candidates)-1]
	s.candidates = s.candidates[:len(s.candidates)-1]
	return l
}

// modelLit returns the literal of v that matches v's value in the
// engine's most recent model.
func modelLit(e *sat.Engine, v sat.Var) sat.Lit {
	return v.SignedLit(!e.ModelValue(v))
}

func isUPZero(e *sat.Engine, v sat.Var) bool {
	return e.Level(v) == 0
}

func (s *state) addBackboneLiteral(lit sat.Lit) {
	if lit.IsPositive() {
		s.positive = append(s.positive, lit)
	} else {
		s.negative = append(s.negative, lit)
	}
	s.e.AddClause([]sat.Lit{lit})
}

// createInitialCandidates seeds the candidate stack from the initial
// model: a relevant variable already forced at decision level 0 is an
// immediate backbone literal (if InitialLBUPZero is set); otherwise it
// becomes a candidate, unless InitialUBRotatable proves up front that it
// cannot be one.
func (s *state) createInitialCandidates(relevant []sat.Var) {
	for _, v := range relevant {
		lit := modelLit(s.e, v)
		if s.cfg.InitialLBUPZero && isUPZero(s.e, v) {
			if lit.IsPositive() {
				s.positive = append(s.positive, lit)
			} else {
				s.negative = append(s.negative, lit)
			}
			continue
		}
		if !s.cfg.InitialUBRotatable || !s.e.Rotatable(lit) {
			s.push(lit)
		}
	}
}

// refineUpperBound re-checks every remaining candidate against the model
// found by the most recent SAT call, dropping any that the model now
// proves cannot be a backbone literal (promoting it to the backbone
// outright when UPZero catches it).
func (s *state) refineUpperBound() {
	kept := s.candidates[:0]
	for _, lit := range s.candidates {
		v := lit.Var()
		switch {
		case s.cfg.UPZero && isUPZero(s.e, v):
			s.addBackboneLiteral(lit)
		case s.cfg.ComplementModel && modelLit(s.e, v) != lit:
		case s.cfg.Rotatable && s.e.Rotatable(lit):
		default:
			kept = append(kept, lit)
		}
	}
	s.candidates = kept
}

func (s *state) run() {
	for len(s.candidates) > 0 {
		lit := s.pop()
		if s.e.Solve([]sat.Lit{lit.Negation()}) != sat.Sat {
			s.addBackboneLiteral(lit)
		} else {
			s.refineUpperBound()
		}
	}
}
