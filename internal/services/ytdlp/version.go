package ytdlp

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Version asks the tool for its version string, giving up after timeout.
func Version(ctx context.Context, invoker Invoker, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := Run(ctx, invoker, []string{"--version"}, RunOptions{
		StdoutLimit: 4 << 10,
		StderrLimit: 4 << 10,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run version query: %w", err)
	}
	if ctx.Err() != nil {
		return "", fmt.Errorf("version query: %w", ctx.Err())
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("version query exited with code %d: %s", result.ExitCode, strings.TrimSpace(result.Stderr))
	}

	version := strings.TrimSpace(string(result.Stdout))
	if version == "" {
		return "", fmt.Errorf("version query returned no output")
	}
	return version, nil
}
