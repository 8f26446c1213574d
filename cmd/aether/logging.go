package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Logs go to stderr so stdout stays clean for command output and for the
// MCP stdio transport.
var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "aether"})

func configureLogger(flagLevel string) error {
	level := strings.TrimSpace(flagLevel)
	if level == "" {
		level = strings.TrimSpace(os.Getenv("AETHER_LOG_LEVEL"))
	}
	if level == "" {
		level = "info"
	}

	parsed, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(parsed)
	return nil
}
