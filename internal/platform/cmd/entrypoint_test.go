package cmd

import (
	"context"
	"errors"
	"flag"
	"testing"
)

type testConfig struct {
	Address string `env:"SITE_CMD_TEST_ADDRESS" envDefault:"127.0.0.1:8080"`
	Mode    string `env:"SITE_CMD_TEST_MODE" envDefault:"server"`
}

func TestParseConfigThenFlagsOverride(t *testing.T) {
	t.Setenv("SITE_CMD_TEST_ADDRESS", "env:9000")

	var cfg testConfig
	if err := ParseConfig(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.StringVar(&cfg.Address, "address", cfg.Address, "address")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "mode")
	if err := ParseArgs(fs, []string{"-address", "flag:9001"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if cfg.Address != "flag:9001" {
		t.Fatalf("address = %q, want flag value", cfg.Address)
	}
	if cfg.Mode != "server" {
		t.Fatalf("mode = %q, want envDefault", cfg.Mode)
	}
}

func TestParseRejectsNilTargets(t *testing.T) {
	if err := ParseConfig[testConfig](nil); err == nil {
		t.Fatal("expected nil config error")
	}
	if err := ParseArgs(nil, nil); err == nil {
		t.Fatal("expected nil flag set error")
	}
}

func TestRunRejectsMissingInputs(t *testing.T) {
	if err := Run(context.Background(), " ", nil, func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := Run(context.Background(), ServiceSite, nil, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}

func TestRunReturnsLoopError(t *testing.T) {
	t.Setenv("SITE_OTEL_ENDPOINT", "")

	boom := errors.New("boom")
	called := false
	err := Run(context.Background(), ServiceMaintenance, nil, func(context.Context) error {
		called = true
		return boom
	})
	if !called {
		t.Fatal("expected run function to be called")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}
