package sat

// Clause is a disjunction of at least two literals, together with the
// bookkeeping used by conflict-driven learning. Clauses with 0 or 1
// literals are never materialized: an empty clause marks the engine
// unsatisfiable at the root, a unit clause is enqueued directly onto
// the trail.
type Clause struct {
	learnt   bool
	activity float64

	// lits must always contain at least two literals. lits[0] and
	// lits[1] are the two watched literals.
	lits []Lit
}

// newClause builds a clause from lits, simplifying it against the
// engine's current root-level assignment and registering its watches.
// It returns (nil, true) when the clause was simplified away (already
// satisfied, or collapsed to a unit fact that was successfully
// enqueued) and (nil, false) when the clause makes the engine
// unsatisfiable.
func newClause(e *Engine, lits []Lit, learnt bool) (*Clause, bool) {
	if !learnt {
		size := len(lits)
		seen := make(map[Lit]struct{}, size)
		for i := size - 1; i >= 0; i-- {
			if _, ok := seen[lits[i].Negation()]; ok {
				return nil, true // l and ¬l both present: clause is a tautology
			}
			if _, ok := seen[lits[i]]; ok {
				size--
				lits[i], lits[size] = lits[size], lits[i]
				continue
			}
			seen[lits[i]] = struct{}{}
			switch e.valueLit(lits[i]) {
			case True:
				return nil, true // clause already satisfied at the root
			case False:
				size--
				lits[i], lits[size] = lits[size], lits[i]
			}
		}
		lits = lits[:size]
	}

	switch len(lits) {
	case 0:
		return nil, false
	case 1:
		return nil, e.enqueue(lits[0], nil)
	default:
		c := &Clause{learnt: learnt, lits: lits}
		if learnt {
			// Watch the literal assigned at the highest level besides
			// the asserting (first) literal, so that backtracking
			// wakes the clause as late as possible.
			maxLevel, wl := -1, 1
			for i := 1; i < len(c.lits); i++ {
				if lvl := e.level[c.lits[i].Var()]; lvl > maxLevel {
					maxLevel, wl = lvl, i
				}
			}
			c.lits[1], c.lits[wl] = c.lits[wl], c.lits[1]

			e.bumpClauseActivity(c)
			for _, bl := range c.lits {
				e.bumpVarActivity(bl)
			}
		}
		e.watch(c, c.lits[0].Negation(), c.lits[1])
		e.watch(c, c.lits[1].Negation(), c.lits[0])
		return c, true
	}
}

// locked reports whether c is currently the reason for its own
// asserting literal, which means it cannot be deleted.
func (c *Clause) locked(e *Engine) bool {
	return e.reason[c.lits[0].Var()] == c
}

// remove unregisters c's watches.
func (c *Clause) remove(e *Engine) {
	e.unwatch(c, c.lits[0].Negation())
	e.unwatch(c, c.lits[1].Negation())
}

// simplify drops root-false literals and reports whether c is now
// satisfied at the root (in which case the caller should remove it).
func (c *Clause) simplify(e *Engine) bool {
	j := 0
	for _, l := range c.lits {
		switch e.valueLit(l) {
		case True:
			return true
		case False:
			// drop
		default:
			c.lits[j] = l
			j++
		}
	}
	c.lits = c.lits[:j]
	return false
}

// propagate is called when l, the negation of one of c's two watched
// literals, has just become true. It re-establishes the two-watched-
// literal invariant, or enqueues c's remaining literal, or reports a
// conflict by returning false.
func (c *Clause) propagate(e *Engine, l Lit) bool {
	falsified := l.Negation()
	if c.lits[0] == falsified {
		c.lits[0], c.lits[1] = c.lits[1], c.lits[0]
	}
	if e.valueLit(c.lits[0]) == True {
		e.watch(c, l, c.lits[0])
		return true
	}
	for i := 2; i < len(c.lits); i++ {
		if e.valueLit(c.lits[i]) != False {
			c.lits[1], c.lits[i] = c.lits[i], c.lits[1]
			e.watch(c, c.lits[1].Negation(), c.lits[0])
			return true
		}
	}
	e.watch(c, l, c.lits[0])
	return e.enqueue(c.lits[0], c)
}

// explainConflict appends the negation of every literal in c to dst and
// returns the result, used by conflict analysis when c is the
// conflicting clause itself.
func (c *Clause) explainConflict(e *Engine, dst []Lit) []Lit {
	for _, l := range c.lits {
		dst = append(dst, l.Negation())
	}
	if c.learnt {
		e.bumpClauseActivity(c)
	}
	return dst
}

// explainAssign appends the negation of every literal but the first
// (the asserted one) to dst, used by conflict analysis when c is the
// reason for one of its own literals.
func (c *Clause) explainAssign(e *Engine, dst []Lit) []Lit {
	for _, l := range c.lits[1:] {
		dst = append(dst, l.Negation())
	}
	if c.learnt {
		e.bumpClauseActivity(c)
	}
	return dst
}

// unitUnder reports whether no literal in c other than l is currently
// true, i.e. whether c relies solely on l to be satisfied.
func (c *Clause) unitUnder(e *Engine, l Lit) bool {
	for _, lit := range c.lits {
		if lit == l {
			continue
		}
		if e.valueLit(lit) == True {
			return false
		}
	}
	return true
}
