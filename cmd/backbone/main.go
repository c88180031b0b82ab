package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/cdclsat/backbone/backbone"
	"github.com/cdclsat/backbone/internal/dimacs"
	"github.com/cdclsat/backbone/internal/sat"
)

var flagRelevant = flag.String(
	"relevant",
	"",
	"comma-separated list of variable numbers to project the backbone onto (default: all variables in the instance)",
)

var flagGzipped = flag.Bool(
	"gzip",
	false,
	"the instance file is gzip-compressed",
)

var flagNoUPZero = flag.Bool(
	"no_up_zero",
	false,
	"disable the level-0 unit-propagation heuristic during refinement",
)

var flagNoComplementModel = flag.Bool(
	"no_complement_model",
	false,
	"disable the complement-model heuristic during refinement",
)

var flagNoRotatable = flag.Bool(
	"no_rotatable",
	false,
	"disable the rotatable-literal heuristic during refinement",
)

var flagNoInitialUPZero = flag.Bool(
	"no_initial_up_zero",
	false,
	"disable committing level-0 variables to the backbone before the main loop",
)

var flagNoInitialRotatable = flag.Bool(
	"no_initial_rotatable",
	false,
	"disable dropping initially-rotatable candidates before the main loop",
)

type config struct {
	instanceFile string
	gzipped      bool
	relevant     []string
	backboneCfg  backbone.Config
}

func parseConfig() (*config, error) {
	flag.Parse()

	if flag.NArg() == 0 || flag.Arg(0) == "" {
		return nil, fmt.Errorf("missing instance file")
	}

	cfg := &config{
		instanceFile: flag.Arg(0),
		gzipped:      *flagGzipped,
		backboneCfg: backbone.Config{
			InitialLBUPZero:    !*flagNoInitialUPZero,
			InitialUBRotatable: !*flagNoInitialRotatable,
			UPZero:             !*flagNoUPZero,
			ComplementModel:    !*flagNoComplementModel,
			Rotatable:          !*flagNoRotatable,
		},
	}
	if *flagRelevant != "" {
		cfg.relevant = strings.Split(*flagRelevant, ",")
	}
	return cfg, nil
}

func run(cfg *config) error {
	e := sat.NewEngine(sat.DefaultOptions)

	if err := dimacs.LoadDIMACS(cfg.instanceFile, cfg.gzipped, e); err != nil {
		return fmt.Errorf("could not load instance: %s", err)
	}

	relevant := cfg.relevant
	if relevant == nil {
		for i := 0; i < e.NumVars(); i++ {
			relevant = append(relevant, e.VarName(sat.Var(i)))
		}
	}

	res, err := backbone.Compute(e, nil, relevant, cfg.backboneCfg)
	if err == backbone.ErrUnsatisfiable {
		fmt.Println("c status: UNSATISFIABLE")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("c positive: %s\n", strings.Join(res.Positive, " "))
	fmt.Printf("c negative: %s\n", strings.Join(res.Negative, " "))
	fmt.Printf("c optional: %s\n", strings.Join(res.Optional, " "))

	return nil
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		log.Fatal(err)
	}
	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}
