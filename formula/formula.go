// Package formula builds propositional formulas and converts them to the
// conjunction-of-disjunction-of-literals shape the ingestion layer knows
// how to install into a SAT engine.
package formula

import (
	"fmt"
	"math"
	"strings"
)

// A Formula is any kind of boolean formula, not necessarily in CNF. The
// interface is sealed: every implementation lives in this package, so a
// Formula value is always one of the shapes CNF knows how to flatten.
type Formula interface {
	nnf() Formula
	String() string
	Eval(model map[string]bool) bool
}

type trueConst struct{}

// True is the constant denoting a tautology.
var True Formula = trueConst{}

func (t trueConst) nnf() Formula                  { return t }
func (t trueConst) String() string                { return "T" }
func (t trueConst) Eval(model map[string]bool) bool { return true }

type falseConst struct{}

// False is the constant denoting a contradiction.
var False Formula = falseConst{}

func (f falseConst) nnf() Formula                  { return f }
func (f falseConst) String() string                { return "F" }
func (f falseConst) Eval(model map[string]bool) bool { return false }

// IsTrue reports whether f is the True constant.
func IsTrue(f Formula) bool { _, ok := f.(trueConst); return ok }

// IsFalse reports whether f is the False constant.
func IsFalse(f Formula) bool { _, ok := f.(falseConst); return ok }

// Disjunction reports whether f is a disjunction of literals — the shape
// CNF conversion uses for every clause with more than one literal — and
// returns its literals if so.
func Disjunction(f Formula) ([]Lit, bool) {
	o, ok := f.(or)
	if !ok {
		return nil, false
	}
	lits := make([]Lit, len(o))
	for i, sub := range o {
		l, ok := sub.(Lit)
		if !ok {
			panic("formula: disjunction contains a non-literal after CNF conversion")
		}
		lits[i] = l
	}
	return lits, true
}

// Conjunction reports whether f is a conjunction — the top-level shape
// CNF conversion uses when a formula flattens to more than one clause —
// and returns its conjuncts if so.
func Conjunction(f Formula) ([]Formula, bool) {
	a, ok := f.(and)
	if !ok {
		return nil, false
	}
	return []Formula(a), true
}

// variable names a boolean. Dummy variables are introduced by CNF
// conversion and by Unique's commander encoding; they never come from a
// name the caller chose.
type variable struct {
	name  string
	dummy bool
}

func (v variable) nnf() Formula { return Lit{Name: v.name, Dummy: v.dummy} }

func (v variable) String() string { return v.name }

func (v variable) Eval(model map[string]bool) bool {
	b, ok := model[v.name]
	if !ok {
		panic(fmt.Errorf("formula: model lacks binding for variable %q", v.name))
	}
	return b
}

func pbVar(name string) variable   { return variable{name: name} }
func dummyVar(name string) variable { return variable{name: name, dummy: true} }

// Var generates a named boolean variable in a formula.
func Var(name string) Formula { return pbVar(name) }

// Lit is a (possibly negated) literal: the output shape CNF conversion
// and Unit ingestion both understand directly.
type Lit struct {
	Name    string
	Negated bool
	Dummy   bool
}

func (l Lit) nnf() Formula { return l }

func (l Lit) String() string {
	if l.Negated {
		return "not(" + l.Name + ")"
	}
	return l.Name
}

func (l Lit) Eval(model map[string]bool) bool {
	b, ok := model[l.Name]
	if !ok {
		panic(fmt.Errorf("formula: model lacks binding for variable %q", l.Name))
	}
	if l.Negated {
		return !b
	}
	return b
}

// Not represents a negation. It negates the given subformula.
func Not(f Formula) Formula { return not{f} }

type not [1]Formula

func (n not) nnf() Formula {
	switch f := n[0].(type) {
	case variable:
		l := f.nnf().(Lit)
		l.Negated = true
		return l
	case Lit:
		f.Negated = !f.Negated
		return f
	case not:
		return f[0].nnf()
	case and:
		subs := make([]Formula, len(f))
		for i, sub := range f {
			subs[i] = not{sub}.nnf()
		}
		return or(subs).nnf()
	case or:
		subs := make([]Formula, len(f))
		for i, sub := range f {
			subs[i] = not{sub}.nnf()
		}
		return and(subs).nnf()
	case trueConst:
		return False
	case falseConst:
		return True
	default:
		panic("formula: invalid formula type")
	}
}

func (n not) String() string { return "not(" + n[0].String() + ")" }

func (n not) Eval(model map[string]bool) bool { return !n[0].Eval(model) }

// And generates a conjunction of subformulas.
func And(subs ...Formula) Formula { return and(subs) }

type and []Formula

func (a and) nnf() Formula {
	var res and
	for _, s := range a {
		switch sub := s.nnf().(type) {
		case and:
			res = append(res, sub...)
		case trueConst:
		case falseConst:
			return False
		default:
			res = append(res, sub)
		}
	}
	switch len(res) {
	case 0:
		return True
	case 1:
		return res[0]
	default:
		return res
	}
}

func (a and) String() string {
	strs := make([]string, len(a))
	for i, f := range a {
		strs[i] = f.String()
	}
	return "and(" + strings.Join(strs, ", ") + ")"
}

func (a and) Eval(model map[string]bool) (res bool) {
	for i, s := range a {
		b := s.Eval(model)
		if i == 0 {
			res = b
		} else {
			res = res && b
		}
	}
	return
}

// Or generates a disjunction of subformulas.
func Or(subs ...Formula) Formula { return or(subs) }

type or []Formula

func (o or) nnf() Formula {
	var res or
	for _, s := range o {
		switch sub := s.nnf().(type) {
		case or:
			res = append(res, sub...)
		case falseConst:
		case trueConst:
			return True
		default:
			res = append(res, sub)
		}
	}
	switch len(res) {
	case 0:
		return False
	case 1:
		return res[0]
	default:
		return res
	}
}

func (o or) String() string {
	strs := make([]string, len(o))
	for i, f := range o {
		strs[i] = f.String()
	}
	return "or(" + strings.Join(strs, ", ") + ")"
}

func (o or) Eval(model map[string]bool) (res bool) {
	for i, s := range o {
		b := s.Eval(model)
		if i == 0 {
			res = b
		} else {
			res = res || b
		}
	}
	return
}

// Implies indicates a subformula implies another one.
func Implies(f1, f2 Formula) Formula { return or{not{f1}, f2} }

// Eq indicates a subformula is equivalent to another one.
func Eq(f1, f2 Formula) Formula { return and{or{not{f1}, f2}, or{f1, not{f2}}} }

// Xor indicates exactly one of the two given subformulas is true.
func Xor(f1, f2 Formula) Formula { return and{or{not{f1}, not{f2}}, or{f1, f2}} }

// Unique indicates exactly one of the given variables must be true. It
// may introduce dummy variables to keep the number of generated clauses
// from growing quadratically in the common case of many variables.
func Unique(names ...string) Formula {
	vars := make([]variable, len(names))
	for i, n := range names {
		vars[i] = pbVar(n)
	}
	return uniqueRec(vars...)
}

func uniqueSmall(vars ...variable) Formula {
	res := make([]Formula, 1, 1+(len(vars)*len(vars)-1)/2)
	asForms := make([]Formula, len(vars))
	for i, v := range vars {
		asForms[i] = v
	}
	res[0] = Or(asForms...)
	for i := 0; i < len(vars)-1; i++ {
		for j := i + 1; j < len(vars); j++ {
			res = append(res, Or(Not(asForms[i]), Not(asForms[j])))
		}
	}
	return And(res...)
}

func uniqueRec(vars ...variable) Formula {
	n := len(vars)
	if n <= 4 {
		return uniqueSmall(vars...)
	}

	sqrt := math.Sqrt(float64(n))
	nbLines := int(sqrt + 0.5)
	nbCols := int(math.Ceil(sqrt))

	allNames := make([]string, n)
	for i := range vars {
		allNames[i] = vars[i].name
	}
	fullName := strings.Join(allNames, "-")

	lines := make([]variable, nbLines)
	linesF := make([][]Formula, nbLines)
	for i := range lines {
		lines[i] = dummyVar(fmt.Sprintf("$line-%d-%s", i, fullName))
	}
	cols := make([]variable, nbCols)
	colsF := make([][]Formula, nbCols)
	for i := range cols {
		cols[i] = dummyVar(fmt.Sprintf("$col-%d-%s", i, fullName))
	}

	for i, v := range vars {
		linesF[i/nbCols] = append(linesF[i/nbCols], v)
		colsF[i%nbCols] = append(colsF[i%nbCols], v)
	}

	res := make([]Formula, 0, 2*n+2)
	for i := range lines {
		res = append(res, Eq(lines[i], Or(linesF[i]...)))
	}
	for i := range cols {
		res = append(res, Eq(cols[i], Or(colsF[i]...)))
	}
	res = append(res, uniqueRec(lines...))
	res = append(res, uniqueRec(cols...))
	return And(res...)
}

// cnfBuilder hands out fresh dummy variable names while flattening a
// formula into conjunctive normal form.
type cnfBuilder struct {
	dummies int
}

func (b *cnfBuilder) dummy() variable {
	b.dummies++
	return dummyVar(fmt.Sprintf("$cnf%d", b.dummies))
}

// CNF flattens f into conjunctive normal form, introducing Tseitin-style
// dummy variables for any disjunction that itself contains a conjunction.
// The result is always one of True, False, Lit, Or (of Lits), or And (of
// Lit/Or) — the five shapes the ingestion layer understands.
func CNF(f Formula) Formula {
	b := &cnfBuilder{}
	clauses := cnfRec(f.nnf(), b)

	for _, c := range clauses {
		if o, ok := c.(or); ok && len(o) == 0 {
			return False
		}
	}

	switch len(clauses) {
	case 0:
		return True
	case 1:
		return normalizeClause(clauses[0])
	default:
		forms := make([]Formula, len(clauses))
		for i, c := range clauses {
			forms[i] = normalizeClause(c)
		}
		return and(forms)
	}
}

func normalizeClause(c Formula) Formula {
	if o, ok := c.(or); ok && len(o) == 1 {
		return o[0]
	}
	return c
}

func orAppend(c Formula, extra Lit) Formula {
	switch c := c.(type) {
	case Lit:
		return or{c, extra}
	case or:
		res := make(or, len(c)+1)
		copy(res, c)
		res[len(c)] = extra
		return res
	default:
		panic("formula: invalid CNF clause")
	}
}

// cnfRec returns the list of clauses (each a Lit or an or of Lits)
// representing f, which must already be in negation normal form.
func cnfRec(f Formula, b *cnfBuilder) []Formula {
	switch f := f.(type) {
	case Lit:
		return []Formula{f}
	case and:
		var res []Formula
		for _, sub := range f {
			res = append(res, cnfRec(sub, b)...)
		}
		return res
	case or:
		var res []Formula
		var lits []Formula
		for _, sub := range f {
			switch sub := sub.(type) {
			case Lit:
				lits = append(lits, sub)
			case and:
				d := b.dummy()
				lits = append(lits, Lit{Name: d.name, Dummy: true})
				for _, conjunct := range sub {
					conjClauses := cnfRec(conjunct, b)
					if n := len(conjClauses); n > 0 {
						conjClauses[n-1] = orAppend(conjClauses[n-1], Lit{Name: d.name, Dummy: true, Negated: true})
					}
					res = append(res, conjClauses...)
				}
			default:
				panic("formula: unexpected disjunct in or")
			}
		}
		res = append(res, or(lits))
		return res
	case trueConst:
		return nil
	case falseConst:
		return []Formula{or{}}
	default:
		panic("formula: invalid NNF formula")
	}
}
