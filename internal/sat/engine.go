package sat

import (
	"fmt"
)

// Engine is an incremental CDCL SAT engine. Variables are identified both
// by a dense index (Var) and, optionally, by a name registered through
// EnsureVar; the engine owns that name table so SaveState/LoadState can
// roll it back together with the rest of the clause base.
type Engine struct {
	// Clause database.
	constraints []*Clause
	learnts     []*Clause
	clauseInc   float64
	clauseDecay float64

	// Variable ordering.
	activity    []float64
	varInc      float64
	varDecay    float64
	decidable   []bool
	initPhase   []LBool
	phaseSaving bool
	order       *varOrder

	// Propagation and watchers, indexed by Lit.
	watchers  [][]watcher
	propQueue *queue

	// Value assigned to each literal, indexed by Lit.
	assigns []LBool

	// Trail.
	trail    []Lit
	trailLim []int
	reason   []*Clause
	level    []int

	// Name table, the other half of the variable store.
	nameToVar map[string]Var
	varToName []string

	// Whether the clause base has reached a root-level conflict.
	unsat bool

	// Search statistics.
	Conflicts int64
	Restarts  int64

	seenVar *resetSet

	tmpLearnts []Lit

	// Satisfying assignments found so far, most recent last.
	models [][]bool
}

// Options configures a new Engine. It mirrors the tunables of a classic
// MiniSat-family solver.
type Options struct {
	ClauseDecay   float64
	VariableDecay float64
	PhaseSaving   bool
}

// DefaultOptions is a reasonable set of defaults for Options.
var DefaultOptions = Options{
	ClauseDecay:   0.999,
	VariableDecay: 0.95,
	PhaseSaving:   false,
}

// NewEngine returns an empty engine configured with opts.
func NewEngine(opts Options) *Engine {
	return &Engine{
		clauseDecay: opts.ClauseDecay,
		varDecay:    opts.VariableDecay,
		clauseInc:   1,
		varInc:      1,
		propQueue:   newQueue(128),
		phaseSaving: opts.PhaseSaving,
		nameToVar:   make(map[string]Var),
		seenVar:     &resetSet{},
	}
}

// NumVars reports the number of variables allocated so far.
func (e *Engine) NumVars() int {
	return len(e.decidable)
}

// NumConstraints reports the number of permanent (non-learnt) clauses.
func (e *Engine) NumConstraints() int {
	return len(e.constraints)
}

// NumLearnts reports the number of learnt clauses currently retained.
func (e *Engine) NumLearnts() int {
	return len(e.learnts)
}

// NumAssigns reports the number of currently assigned variables.
func (e *Engine) NumAssigns() int {
	return len(e.trail)
}

// NewVar allocates a fresh variable. polarity is the phase preferred when
// the engine has not yet observed (and saved) a value for the variable;
// decision controls whether the search heuristic may branch on it at all
// — dummy variables introduced by CNF encoding are allocated with
// decision=false so they are never picked as a decision literal.
func (e *Engine) NewVar(polarity bool, decision bool) Var {
	v := Var(len(e.decidable))

	e.watchers = append(e.watchers, nil, nil)
	e.assigns = append(e.assigns, Unknown, Unknown)
	e.reason = append(e.reason, nil)
	e.level = append(e.level, -1)
	e.activity = append(e.activity, 0)
	e.decidable = append(e.decidable, decision)
	if polarity {
		e.initPhase = append(e.initPhase, True)
	} else {
		e.initPhase = append(e.initPhase, False)
	}
	e.varToName = append(e.varToName, "")
	e.seenVar.expand()

	return v
}

// EnsureVar returns the variable registered under name, allocating one
// (decidable, positive-preferred) if name has not been seen before.
func (e *Engine) EnsureVar(name string) Var {
	if v, ok := e.nameToVar[name]; ok {
		return v
	}
	v := e.NewVar(true, true)
	e.nameToVar[name] = v
	e.varToName[v] = name
	return v
}

// SetDecidable changes whether the search heuristic may branch on v. It
// is used to demote CNF-encoding dummy variables after they have already
// been allocated through EnsureVar.
func (e *Engine) SetDecidable(v Var, decidable bool) {
	e.decidable[v] = decidable
}

// LookupVar returns the variable registered under name, if any.
func (e *Engine) LookupVar(name string) (Var, bool) {
	v, ok := e.nameToVar[name]
	return v, ok
}

// VarName returns the name registered for v, or "" if v was allocated
// through NewVar rather than EnsureVar.
func (e *Engine) VarName(v Var) string {
	return e.varToName[v]
}

// Value returns the current value of v.
func (e *Engine) Value(v Var) LBool {
	return e.assigns[v.Lit()]
}

// valueLit returns the current value of l, already accounting for sign.
func (e *Engine) valueLit(l Lit) LBool {
	return e.assigns[l]
}

// Level returns the decision level at which v was assigned, or -1 if it
// is currently unassigned.
func (e *Engine) Level(v Var) int {
	return e.level[v]
}

// HasReason reports whether v was assigned by unit propagation (as
// opposed to being a decision or currently unassigned).
func (e *Engine) HasReason(v Var) bool {
	return e.reason[v] != nil
}

// ModelValue returns v's value in the most recently found model. It
// panics if no model covering v has been found.
func (e *Engine) ModelValue(v Var) bool {
	if len(e.models) == 0 || int(v) >= len(e.models[len(e.models)-1]) {
		panic("sat: ModelValue called with no model for the variable")
	}
	return e.models[len(e.models)-1][v]
}

// Rotatable reports whether l can be flipped to false without falsifying
// any clause. l is not rotatable if its variable is assigned at level 0
// or has a reason, or if some clause watching l has no other literal that
// is currently true. The check uses the current assignment; after Solve
// returns, that is the root-level assignment.
func (e *Engine) Rotatable(l Lit) bool {
	if e.level[l.Var()] == 0 || e.reason[l.Var()] != nil {
		return false
	}
	for _, w := range e.watchers[l.Negation()] {
		if w.clause.unitUnder(e, l) {
			return false
		}
	}
	return true
}

func (e *Engine) decisionLevel() int {
	return len(e.trailLim)
}

// AddClause installs a permanent clause, built from lits, at the current
// (must be root) decision level. ok is false when the clause base is now
// unsatisfiable, in which case every future Solve call returns Unsat
// without doing any work.
func (e *Engine) AddClause(lits []Lit) bool {
	if e.decisionLevel() != 0 {
		panic("sat: AddClause called above the root decision level")
	}
	c, ok := newClause(e, lits, false)
	if c != nil {
		e.constraints = append(e.constraints, c)
	}
	if !ok {
		e.unsat = true
	}
	return ok
}

func (e *Engine) enqueue(l Lit, from *Clause) bool {
	switch e.valueLit(l) {
	case False:
		return false
	case True:
		return true
	default:
		v := l.Var()
		e.assigns[l] = True
		e.assigns[l.Negation()] = False
		e.level[v] = e.decisionLevel()
		e.reason[v] = from
		e.trail = append(e.trail, l)
		e.propQueue.push(l)
		return true
	}
}

// propagate drains the propagation queue, returning the first clause
// found to be conflicting, or nil once the queue empties without one.
func (e *Engine) propagate() *Clause {
	for !e.propQueue.isEmpty() {
		l := e.propQueue.pop()

		ws := e.watchers[l]
		e.watchers[l] = ws[:0]

		for i, w := range ws {
			if e.valueLit(w.guard) == True {
				e.watchers[l] = append(e.watchers[l], w)
				continue
			}
			if w.clause.propagate(e, l) {
				continue
			}
			e.watchers[l] = append(e.watchers[l], ws[i+1:]...)
			e.propQueue.clear()
			return w.clause
		}
	}
	return nil
}

func (e *Engine) explain(c *Clause, l Lit, hasL bool, dst []Lit) []Lit {
	if !hasL {
		return c.explainConflict(e, dst)
	}
	return c.explainAssign(e, dst)
}

// analyze walks the implication graph backward from confl to the first
// unique implication point, returning the asserting learnt clause (its
// first literal is the one to assert) and the level to backtrack to.
func (e *Engine) analyze(confl *Clause) ([]Lit, int) {
	nImplicationPoints := 0

	e.tmpLearnts = e.tmpLearnts[:0]
	e.tmpLearnts = append(e.tmpLearnts, 0) // placeholder for the FUIP

	nextIdx := len(e.trail) - 1
	var l Lit
	hasL := false
	e.seenVar.clear()
	backtrackLevel := 0

	for {
		reasonLits := e.explain(confl, l, hasL, nil)
		for _, q := range reasonLits {
			v := q.Var()
			if e.seenVar.contains(int(v)) {
				continue
			}
			e.seenVar.add(int(v))
			if e.level[v] == e.decisionLevel() {
				nImplicationPoints++
				continue
			}
			e.tmpLearnts = append(e.tmpLearnts, q.Negation())
			if lvl := e.level[v]; lvl > backtrackLevel {
				backtrackLevel = lvl
			}
		}

		for {
			l = e.trail[nextIdx]
			nextIdx--
			v := l.Var()
			confl = e.reason[v]
			hasL = true
			if e.seenVar.contains(int(v)) {
				break
			}
		}

		nImplicationPoints--
		if nImplicationPoints <= 0 {
			break
		}
	}

	e.tmpLearnts[0] = l.Negation()
	out := make([]Lit, len(e.tmpLearnts))
	copy(out, e.tmpLearnts)
	return out, backtrackLevel
}

func (e *Engine) record(clause []Lit) {
	c, _ := newClause(e, clause, true)
	e.enqueue(clause[0], c)
	if c != nil {
		e.learnts = append(e.learnts, c)
	}
}

func (e *Engine) bumpClauseActivity(c *Clause) {
	c.activity += e.clauseInc
	if c.activity > 1e100 {
		e.clauseInc *= 1e-100
		for _, l := range e.learnts {
			l.activity *= 1e-100
		}
	}
}

func (e *Engine) bumpVarActivity(l Lit) {
	v := l.Var()
	e.activity[v] += e.varInc
	if e.activity[v] > 1e100 {
		e.varInc *= 1e-100
		for i := range e.activity {
			e.activity[i] *= 1e-100
		}
	}
	if e.order != nil {
		e.order.update(v)
	}
}

func (e *Engine) decayClauseActivity() {
	e.clauseInc *= e.clauseDecay
}

func (e *Engine) decayVarActivity() {
	e.varInc *= e.varDecay
}

func (e *Engine) assume(l Lit) bool {
	e.trailLim = append(e.trailLim, len(e.trail))
	return e.enqueue(l, nil)
}

func (e *Engine) undoOne() {
	l := e.trail[len(e.trail)-1]
	v := l.Var()

	if e.order != nil {
		e.order.undo(v)
	}
	e.assigns[l] = Unknown
	e.assigns[l.Negation()] = Unknown
	e.reason[v] = nil
	e.level[v] = -1

	e.trail = e.trail[:len(e.trail)-1]
}

func (e *Engine) cancel() {
	n := len(e.trail) - e.trailLim[len(e.trailLim)-1]
	for ; n != 0; n-- {
		e.undoOne()
	}
	e.trailLim = e.trailLim[:len(e.trailLim)-1]
}

func (e *Engine) cancelUntil(level int) {
	for e.decisionLevel() > level {
		e.cancel()
	}
}

// simplify drops root-satisfied clauses from the learnt database. The
// permanent constraints are left as they are, since LoadState restores
// them by count. It must only be called at decision level 0 with an
// empty propagation queue.
func (e *Engine) simplify() {
	simplifyInto(e, &e.learnts)
}

func simplifyInto(e *Engine, clauses *[]*Clause) {
	cs := *clauses
	j := 0
	for i := range cs {
		if cs[i].simplify(e) {
			cs[i].remove(e)
		} else {
			cs[j] = cs[i]
			j++
		}
	}
	*clauses = cs[:j]
}

// reduceDB discards the least active half of the learnt clauses that are
// not locked (currently serving as some variable's reason).
func (e *Engine) reduceDB() {
	lim := e.clauseInc / float64(len(e.learnts))

	sortClausesByActivity(e.learnts)

	i, j := 0, 0
	for ; i < len(e.learnts)/2; i++ {
		if e.learnts[i].locked(e) {
			e.learnts[j] = e.learnts[i]
			j++
		} else {
			e.learnts[i].remove(e)
		}
	}
	for ; i < len(e.learnts); i++ {
		if !e.learnts[i].locked(e) && e.learnts[i].activity < lim {
			e.learnts[i].remove(e)
		} else {
			e.learnts[j] = e.learnts[i]
			j++
		}
	}
	e.learnts = e.learnts[:j]
}

func sortClausesByActivity(cs []*Clause) {
	// Insertion sort: reduceDB runs rarely enough (once every few
	// hundred conflicts) that a dependency-free sort is not worth
	// pulling in, unlike the one-off sort.Slice the teacher uses.
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j-1].activity > cs[j].activity; j-- {
			cs[j-1], cs[j] = cs[j], cs[j-1]
		}
	}
}

func (e *Engine) saveModel() {
	model := make([]bool, e.NumVars())
	for v := range model {
		model[v] = e.Value(Var(v)) == True
	}
	e.models = append(e.models, model)
}

// search outcomes, internal to Solve/SolveBudget.
const (
	outcomeSat = iota
	outcomeUnsat
	outcomeRestart
	outcomeBudget
)

// search runs CDCL until either a model is found, the clause base is
// proven unsatisfiable (possibly under assumptions), the restart bound is
// hit, or the decision budget is exhausted.
func (e *Engine) search(assumptions []Lit, maxLearnts int, confBound uint64, maxDecisions int, decisionsUsed *int) int {
	idx := 0
	assumeLevels := 0
	conflictCount := uint64(0)

	for {
		if conflict := e.propagate(); conflict != nil {
			e.Conflicts++
			conflictCount++

			if e.decisionLevel() == 0 {
				e.unsat = true
				return outcomeUnsat
			}

			learnt, backtrackLevel := e.analyze(conflict)
			e.cancelUntil(backtrackLevel)
			e.record(learnt)
			e.decayClauseActivity()
			e.decayVarActivity()

			// The learnt clause is a valid, assumption-independent
			// consequence of the clause database regardless of how far
			// back it forces the search to backtrack; it is recorded
			// above either way. But backtracking below the levels the
			// assumptions were pushed at unassigns some of them, and idx
			// has already moved past those same assumptions, so this
			// search call can no longer re-examine them. Restarting
			// re-enters search with a fresh idx, which re-consumes every
			// assumption from scratch against the now-larger clause
			// database; UNSAT-under-assumptions is still detected only
			// by that consumption loop's own case False below, never by
			// this backtrack distance.
			if backtrackLevel < assumeLevels {
				return outcomeRestart
			}
			continue
		}

		if e.decisionLevel() == 0 {
			e.simplify()
		}
		if len(e.learnts)-len(e.trail) >= maxLearnts {
			e.reduceDB()
		}
		if len(e.trail) == e.NumVars() && idx == len(assumptions) {
			e.saveModel()
			return outcomeSat
		}
		if conflictCount > confBound {
			return outcomeRestart
		}
		if maxDecisions >= 0 && *decisionsUsed >= maxDecisions {
			return outcomeBudget
		}

		var next Lit
		fromAssumption := false
		for idx < len(assumptions) {
			a := assumptions[idx]
			idx++
			switch e.valueLit(a) {
			case True:
				continue
			case False:
				e.cancelUntil(0)
				return outcomeUnsat
			default:
				next = a
				fromAssumption = true
			}
			break
		}
		if !fromAssumption {
			l, ok := e.order.select_()
			if !ok {
				e.saveModel()
				return outcomeSat
			}
			next = l
		}

		*decisionsUsed++
		e.assume(next)
		if fromAssumption {
			assumeLevels++
		}
	}
}

func (e *Engine) solve(assumptions []Lit, maxDecisions int) Status {
	if e.unsat {
		return Unsat
	}

	e.order = newVarOrder(e)
	e.order.phaseSaving = e.phaseSaving
	for v := range e.initPhase {
		e.order.phase[v] = e.initPhase[v]
	}

	maxLearnts := e.NumConstraints()/3 + 1
	decisionsUsed := 0

	for restartIdx := uint64(0); ; restartIdx++ {
		bound := restartBound(restartIdx)
		switch e.search(assumptions, maxLearnts, bound, maxDecisions, &decisionsUsed) {
		case outcomeSat:
			e.cancelUntil(0)
			e.Restarts += int64(restartIdx)
			return Sat
		case outcomeUnsat:
			e.cancelUntil(0)
			e.Restarts += int64(restartIdx)
			return Unsat
		case outcomeBudget:
			e.cancelUntil(0)
			e.Restarts += int64(restartIdx)
			return Undef
		}
		e.cancelUntil(0)
		maxLearnts += maxLearnts / 20
	}
}

// Solve runs the engine to completion under the given assumptions (which
// may be empty), returning Sat, Unsat, or never Undef.
func (e *Engine) Solve(assumptions []Lit) Status {
	return e.solve(assumptions, -1)
}

// SolveBudget behaves like Solve but aborts with Undef when the search
// needs another branching decision after maxDecisions have been made
// (assumptions count as decisions).
func (e *Engine) SolveBudget(assumptions []Lit, maxDecisions int) Status {
	return e.solve(assumptions, maxDecisions)
}

// Checkpoint is a snapshot of an Engine's size, sufficient to roll back
// every clause, variable, and name-table mutation made since it was
// taken. It must be taken and restored at decision level 0.
type Checkpoint struct {
	nConstraints int
	nLearnts     int
	nVars        int
	trailLen     int
	wasUnsat     bool
}

// SaveState returns a Checkpoint of the engine's current size. It must be
// called at decision level 0.
func (e *Engine) SaveState() Checkpoint {
	if e.decisionLevel() != 0 {
		panic("sat: SaveState called above the root decision level")
	}
	return Checkpoint{
		nConstraints: len(e.constraints),
		nLearnts:     len(e.learnts),
		nVars:        e.NumVars(),
		trailLen:     len(e.trail),
		wasUnsat:     e.unsat,
	}
}

// LoadState rolls the engine back to the given checkpoint, discarding
// every clause, variable, and trail entry introduced since it was taken.
func (e *Engine) LoadState(cp Checkpoint) {
	if e.decisionLevel() != 0 {
		panic("sat: LoadState called above the root decision level")
	}

	for i := len(e.trail) - 1; i >= cp.trailLen; i-- {
		l := e.trail[i]
		v := l.Var()
		e.assigns[l] = Unknown
		e.assigns[l.Negation()] = Unknown
		e.reason[v] = nil
		e.level[v] = -1
	}
	e.trail = e.trail[:cp.trailLen]

	for _, c := range e.constraints[cp.nConstraints:] {
		c.remove(e)
	}
	e.constraints = e.constraints[:cp.nConstraints]

	for _, c := range e.learnts[cp.nLearnts:] {
		c.remove(e)
	}
	e.learnts = e.learnts[:cp.nLearnts]

	for v := cp.nVars; v < e.NumVars(); v++ {
		if name := e.varToName[v]; name != "" {
			delete(e.nameToVar, name)
		}
	}
	e.watchers = e.watchers[:cp.nVars*2]
	e.assigns = e.assigns[:cp.nVars*2]
	e.reason = e.reason[:cp.nVars]
	e.level = e.level[:cp.nVars]
	e.activity = e.activity[:cp.nVars]
	e.decidable = e.decidable[:cp.nVars]
	e.initPhase = e.initPhase[:cp.nVars]
	e.varToName = e.varToName[:cp.nVars]
	e.seenVar.addedAt = e.seenVar.addedAt[:cp.nVars]

	e.unsat = cp.wasUnsat
	e.order = nil
}

func (e *Engine) String() string {
	return fmt.Sprintf("Engine{vars=%d constraints=%d learnts=%d}", e.NumVars(), len(e.constraints), len(e.learnts))
}
