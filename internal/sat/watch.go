package sat

// watcher is a clause registered against one of the two literals it
// watches, together with a blocking literal that, when already true,
// lets propagation skip loading the clause at all.
type watcher struct {
	clause *Clause
	guard  Lit
}

// watch registers c to be woken when l is assigned true (i.e. l is the
// negation of one of c's two watched literals). guard is c's other
// watched literal: if it is already true when propagation wakes this
// entry, the clause can be skipped without being loaded.
func (e *Engine) watch(c *Clause, l Lit, guard Lit) {
	e.watchers[l] = append(e.watchers[l], watcher{clause: c, guard: guard})
}

// unwatch removes c from l's watcher list.
func (e *Engine) unwatch(c *Clause, l Lit) {
	ws := e.watchers[l]
	j := 0
	for i := range ws {
		if ws[i].clause != c {
			ws[j] = ws[i]
			j++
		}
	}
	e.watchers[l] = ws[:j]
}
