package main

import (
	"testing"
	"time"
)

func TestParseFlagsDefaults(t *testing.T) {
	cfg, exit, code := parseFlags(nil)
	if exit {
		t.Fatalf("parseFlags(nil) wants to exit with code %d", code)
	}
	if cfg.t != 3 || cfg.n != 5 {
		t.Errorf("t=%d n=%d, want 3 5", cfg.t, cfg.n)
	}
	if cfg.p != "100043" {
		t.Errorf("p = %q, want 100043", cfg.p)
	}
	if cfg.roundMax != 10 {
		t.Errorf("roundMax = %d, want 10", cfg.roundMax)
	}
}

func TestParseFlagsOverrides(t *testing.T) {
	cfg, exit, _ := parseFlags([]string{"-t", "2", "-n", "3", "-p", "23", "-round-max", "0", "-replier", "0"})
	if exit {
		t.Fatal("parseFlags unexpectedly wants to exit")
	}
	if cfg.t != 2 || cfg.n != 3 || cfg.p != "23" || cfg.roundMax != 0 || cfg.replier != 0 {
		t.Errorf("cfg = %+v, overrides not applied", cfg)
	}
}

func TestParseFlagsRejectsUnknownFlag(t *testing.T) {
	_, exit, code := parseFlags([]string{"-nonexistent"})
	if !exit || code != 2 {
		t.Errorf("exit=%v code=%d, want exit=true code=2 on parse error", exit, code)
	}
}

// TestRunDKGOnlySmallConfig exercises the full CLI entry point end to end
// with a small, fast configuration (round_max=0 keeps this a unit test
// rather than a multi-second integration run).
func TestRunDKGOnlySmallConfig(t *testing.T) {
	code := run([]string{"-t", "2", "-n", "3", "-p", "23", "-round-max", "0", "-timeout", (5 * time.Second).String()})
	if code != 0 {
		t.Errorf("run() = %d, want 0", code)
	}
}

func TestRunRejectsInvalidPrime(t *testing.T) {
	code := run([]string{"-p", "not-a-number"})
	if code != 2 {
		t.Errorf("run() with a non-numeric -p = %d, want 2", code)
	}
}
