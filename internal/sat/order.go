package sat

import (
	"github.com/rhartert/yagh"
)

// varOrder selects the next unassigned variable to branch on, ordered by
// VSIDS activity. Undecidable variables (dummy variables introduced by
// CNF encoding) are never inserted, so they never surface as decisions.
type varOrder struct {
	engine      *Engine
	phase       []LBool
	phaseSaving bool
	heap        *yagh.IntMap[float64]
}

func newVarOrder(e *Engine) *varOrder {
	vo := &varOrder{
		engine: e,
		phase:  make([]LBool, len(e.decidable)),
		heap:   yagh.New[float64](len(e.decidable)),
	}
	vo.rebuild()
	return vo
}

// rebuild populates the heap with every decidable variable; newVarOrder
// calls it each time Solve builds a fresh order.
func (vo *varOrder) rebuild() {
	for v := 0; v < len(vo.engine.decidable); v++ {
		vo.undo(Var(v))
	}
}

func (vo *varOrder) update(v Var) {
	if vo.heap.Contains(int(v)) {
		vo.undo(v)
	}
}

// undo reinserts v into the heap, used both at initialization and when
// backtracking unassigns a variable that had been removed by Select.
func (vo *varOrder) undo(v Var) {
	if int(v) >= len(vo.phase) {
		vo.phase = append(vo.phase, Unknown)
	}
	if vo.phaseSaving {
		vo.phase[v] = vo.engine.Value(v)
	}
	if !vo.engine.decidable[v] {
		return
	}
	act := vo.engine.activity[v]
	vo.heap.Put(int(v), -act)
}

// select pops the highest-activity unassigned decidable variable and
// returns the literal to assume, following the saved phase if phase
// saving is enabled.
func (vo *varOrder) select_() (Lit, bool) {
	for {
		next, ok := vo.heap.Pop()
		if !ok {
			return 0, false
		}
		v := Var(next.Elem)
		if vo.engine.Value(v) != Unknown {
			continue
		}
		switch vo.phase[v] {
		case True:
			return v.SignedLit(false), true
		default:
			return v.SignedLit(true), true
		}
	}
}
