package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/enginemock/enginemock/internal/cli/enginectl"
)

func main() {
	timeout := parseDurationWithDefault(strings.TrimSpace(os.Getenv("ENGINE_MOCK_TIMEOUT")), 10*time.Second)
	options := enginectl.Options{
		BaseURL: envOr("ENGINE_MOCK_URL", "http://localhost:8000"),
		Timeout: timeout,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}

	code := enginectl.Run(context.Background(), os.Args[1:], options)
	os.Exit(code)
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func parseDurationWithDefault(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid ENGINE_MOCK_TIMEOUT %q; using %s\n", raw, fallback)
		return fallback
	}
	return parsed
}
