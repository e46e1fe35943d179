package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			// Interrupted by the user; the conventional shell code.
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "dubber:", err)
		os.Exit(1)
	}
}
