package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Exit codes, stable for scripting against gyre.
const (
	exitOK         = 0
	exitDependency = 1
	exitOptions    = 2
	exitRuntime    = 3
	exitDownload   = 4
	exitInterrupt  = 5
	exitConnection = 6
)

// exitError carries an exit code along the cobra error path.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit code %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func exitWith(code int, err error) error {
	return &exitError{code: code, err: err}
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			if exit.err != nil && !errors.Is(exit.err, context.Canceled) {
				fmt.Fprintln(os.Stderr, "Error:", exit.err)
			}
			os.Exit(exit.code)
		}
		if errors.Is(err, context.Canceled) {
			os.Exit(exitInterrupt)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitRuntime)
	}
}
