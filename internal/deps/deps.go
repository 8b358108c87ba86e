package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Status reports whether an external binary can be executed.
type Status struct {
	Command   string
	Available bool
	Detail    string
}

// CheckBinary resolves command and reports whether it is runnable. An
// absolute or relative path is checked directly, a bare name through PATH.
func CheckBinary(command string) Status {
	command = strings.TrimSpace(command)
	if command == "" {
		return Status{Detail: "command not configured"}
	}
	if _, err := exec.LookPath(command); err != nil {
		return Status{Command: command, Detail: fmt.Sprintf("binary %q not found", command)}
	}
	return Status{Command: command, Available: true}
}
