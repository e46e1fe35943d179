package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classifying failures across the job pipeline. Submit-time
// failures (configuration, concurrency) are returned synchronously to the
// caller; everything else surfaces through the job's terminal state.
var (
	ErrConfiguration    = errors.New("configuration error")
	ErrConcurrencyLimit = errors.New("concurrency limit exceeded")
	ErrToolUnavailable  = errors.New("transcode tool unavailable")
	ErrExternalTool     = errors.New("external tool error")
	ErrNoMatches        = errors.New("no matching files")
	ErrCancelled        = errors.New("cancelled")
)

// Wrap builds an error message that includes operation context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
