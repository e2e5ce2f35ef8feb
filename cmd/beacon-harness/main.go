// Command beacon-harness drives a single in-process run of the distributed
// randomness beacon protocol: it spins up n node actors and a client over
// an emulated network, starts DKG, and either waits for the nodes to reach
// their terminal state (round_max = 0) or collects the replier's stream of
// (round, output) pairs.
//
// Usage:
//
//	beacon-harness [flags]
//
// Flags:
//
//	-t            reconstruction threshold (default: 3)
//	-n            participant count (default: 5)
//	-p            safe prime, decimal (default: 100043)
//	-round-max    number of beacon rounds, 0 means DKG only (default: 10)
//	-replier      1-based index of the replier node, 0 disables replies (default: 1)
//	-delay-ms     max per-message network delay in milliseconds (default: 2)
//	-timeout      wall-clock deadline for the whole run (default: 30s)
//	-loglevel     log verbosity: debug, info, warn, error (default: info)
package main

import (
	"flag"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/harness"
	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/transport"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. It takes CLI
// arguments without the program name so it can be tested in isolation.
func run(args []string) int {
	cfg, exit, code := parseFlags(args)
	if exit {
		return code
	}

	p, ok := new(big.Int).SetString(cfg.p, 10)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: -p %q is not a valid decimal integer\n", cfg.p)
		return 2
	}

	var replierID string
	if cfg.replier > 0 {
		replierID = fmt.Sprintf("node-%d", cfg.replier)
	}

	r, err := harness.NewRun(harness.Params{
		T:         cfg.t,
		N:         cfg.n,
		P:         p,
		RoundMax:  cfg.roundMax,
		ReplierID: replierID,
		Delay:     transport.UniformDelay(time.Duration(cfg.delayMs) * time.Millisecond),
		LogLevel:  cfg.logLevel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to configure run: %v\n", err)
		return 1
	}

	fmt.Printf("beacon-harness starting: t=%d n=%d p=%s round_max=%d replier=%q\n",
		cfg.t, cfg.n, cfg.p, cfg.roundMax, replierID)

	r.Start()
	defer r.Stop()

	r.Begin()

	if !r.AwaitDKG(cfg.timeout) {
		fmt.Fprintln(os.Stderr, "Error: DKG did not complete before the deadline")
		return 1
	}
	fmt.Println("DKG complete")

	if cfg.roundMax == 0 {
		if !r.AwaitDone(cfg.timeout) {
			fmt.Fprintln(os.Stderr, "Error: nodes did not reach the terminal state before the deadline")
			return 1
		}
		fmt.Println("all nodes reached the terminal state (round_max=0)")
		return 0
	}

	if replierID != "" {
		outputs, err := r.AwaitReplies(int(cfg.roundMax), cfg.timeout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v (collected %d of %d)\n", err, len(outputs), cfg.roundMax)
			return 1
		}
		for _, out := range outputs {
			fmt.Printf("round %d: output %s\n", out.Round, out.Output.String())
		}
	}

	if !r.AwaitDone(cfg.timeout) {
		fmt.Fprintln(os.Stderr, "Error: not all nodes reached the terminal state before the deadline")
		return 1
	}
	fmt.Println("beacon run complete")
	return 0
}

type config struct {
	t, n      int
	p         string
	roundMax  uint64
	replier   int
	delayMs   int
	timeout   time.Duration
	logLevel  string
}

// parseFlags parses CLI arguments into a config. Returns the config,
// whether the caller should exit immediately, and the exit code.
func parseFlags(args []string) (config, bool, int) {
	cfg := config{
		t:         3,
		n:         5,
		p:         "100043",
		roundMax:  10,
		replier:   1,
		delayMs:   2,
		timeout:   30 * time.Second,
		logLevel:  "info",
	}

	fs := flag.NewFlagSet("beacon-harness", flag.ContinueOnError)
	fs.IntVar(&cfg.t, "t", cfg.t, "reconstruction threshold")
	fs.IntVar(&cfg.n, "n", cfg.n, "participant count")
	fs.StringVar(&cfg.p, "p", cfg.p, "safe prime, decimal")
	fs.Uint64Var(&cfg.roundMax, "round-max", cfg.roundMax, "number of beacon rounds, 0 means DKG only")
	fs.IntVar(&cfg.replier, "replier", cfg.replier, "1-based index of the replier node, 0 disables replies")
	fs.IntVar(&cfg.delayMs, "delay-ms", cfg.delayMs, "max per-message network delay in milliseconds")
	fs.DurationVar(&cfg.timeout, "timeout", cfg.timeout, "wall-clock deadline for the whole run")
	fs.StringVar(&cfg.logLevel, "loglevel", cfg.logLevel, "log verbosity: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return cfg, true, 2
	}
	return cfg, false, 0
}
