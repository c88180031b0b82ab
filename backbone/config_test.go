package backbone

import (
	"reflect"
	"testing"

	"github.com/cdclsat/backbone/formula"
)

// allConfigs enumerates every combination of the five heuristic flags.
func allConfigs() []Config {
	var cfgs []Config
	for mask := 0; mask < 32; mask++ {
		cfgs = append(cfgs, Config{
			InitialLBUPZero:    mask&1 != 0,
			InitialUBRotatable: mask&2 != 0,
			UPZero:             mask&4 != 0,
			ComplementModel:    mask&8 != 0,
			Rotatable:          mask&16 != 0,
		})
	}
	return cfgs
}

type scenario struct {
	name     string
	formula  func() formula.Formula
	relevant []string
}

var configScenarios = []scenario{
	{
		name: "scenario7",
		formula: func() formula.Formula {
			a, b, c := formula.Var("A"), formula.Var("B"), formula.Var("C")
			return formula.And(a, b, formula.Or(b, c))
		},
		relevant: strs("A", "B", "C"),
	},
	{
		name: "scenario8",
		formula: func() formula.Formula {
			a, b, c := formula.Var("A"), formula.Var("B"), formula.Var("C")
			return formula.And(a, b, formula.Or(formula.Not(b), c))
		},
		relevant: strs("A", "B", "C"),
	},
	{
		name: "scenario9",
		formula: func() formula.Formula {
			a, b, c, d, f := formula.Var("A"), formula.Var("B"), formula.Var("C"), formula.Var("D"), formula.Var("F")
			return formula.And(a, b, formula.Or(formula.Not(b), c), formula.Or(b, d), formula.Implies(a, f))
		},
		relevant: strs("A", "B", "C", "D", "F"),
	},
	{
		name: "scenario10",
		formula: func() formula.Formula {
			a, b, c, d, f := formula.Var("A"), formula.Var("B"), formula.Var("C"), formula.Var("D"), formula.Var("F")
			return formula.And(formula.Not(a), formula.Not(b), formula.Or(formula.Not(b), c), formula.Or(b, d), formula.Implies(a, f))
		},
		relevant: strs("A", "B", "C", "D", "F"),
	},
	{
		name: "scenario11",
		formula: func() formula.Formula {
			x, y, b, c, d, a, f := formula.Var("X"), formula.Var("Y"), formula.Var("B"), formula.Var("C"), formula.Var("D"), formula.Var("A"), formula.Var("F")
			return formula.And(x, y, formula.Or(formula.Not(b), c), formula.Or(b, d), formula.Implies(a, f))
		},
		relevant: strs("A", "B", "C", "D", "F", "X", "Y"),
	},
}

func TestConfigIndependence(t *testing.T) {
	for _, sc := range configScenarios {
		t.Run(sc.name, func(t *testing.T) {
			var reference *Result
			for _, cfg := range allConfigs() {
				e := newEngine()
				got, err := Compute(e, []formula.Formula{sc.formula()}, sc.relevant, cfg)
				if err != nil {
					t.Fatalf("Compute() with config %+v: want no error, got %s", cfg, err)
				}
				if reference == nil {
					reference = got
					continue
				}
				if !reflect.DeepEqual(reference, got) {
					t.Errorf("Compute() with config %+v: got %+v, want %+v (same as the all-heuristics-off configuration)", cfg, got, reference)
				}
			}
		})
	}
}
