// Package tools resolves latest versions of developer tools (terraform,
// kubectl, node, ...) by shelling out to mise, which aggregates the
// per-tool version backends.
package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"
)

// ToolVersion is a successful tool lookup.
type ToolVersion struct {
	ToolName      string `json:"tool_name"`
	LatestVersion string `json:"latest_version"`
}

// ToolError is a failed tool lookup.
type ToolError struct {
	ToolName string `json:"tool_name"`
	Error    string `json:"error"`
}

// Response groups successes and failures of a batch tool lookup.
type Response struct {
	Result       []ToolVersion `json:"result"`
	LookupErrors []ToolError   `json:"lookup_errors"`
}

// runner abstracts command execution for tests.
type runner interface {
	run(ctx context.Context, args ...string) (string, error)
}

type execRunner struct {
	bin string
}

func (r execRunner) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("%s %s: %s", r.bin, strings.Join(args, " "), msg)
	}
	return stdout.String(), nil
}

// Mise wraps the mise CLI.
type Mise struct {
	runner runner
}

// New creates a Mise wrapper. bin defaults to "mise" on PATH.
func New(bin string) *Mise {
	if bin == "" {
		bin = "mise"
	}
	return &Mise{runner: execRunner{bin: bin}}
}

// LatestVersion returns the latest version mise knows for a tool.
func (m *Mise) LatestVersion(ctx context.Context, toolName string) (string, error) {
	out, err := m.runner.run(ctx, "latest", toolName)
	if err != nil {
		return "", err
	}

	version := strings.TrimSpace(out)
	if version == "" {
		return "", fmt.Errorf("mise reports no versions for tool %q", toolName)
	}

	// Some backends report vendor-qualified versions such as
	// "temurin-21.0.5"; keep only answers that start with a digit.
	if version[0] < '0' || version[0] > '9' {
		if idx := strings.LastIndex(version, "-"); idx >= 0 && idx < len(version)-1 {
			candidate := version[idx+1:]
			if candidate[0] >= '0' && candidate[0] <= '9' {
				return candidate, nil
			}
		}
		return "", fmt.Errorf("mise returned unrecognized version %q for tool %q", version, toolName)
	}
	return version, nil
}

// SupportedTools returns the short names of every tool mise can resolve,
// sorted and de-duplicated.
func (m *Mise) SupportedTools(ctx context.Context) ([]string, error) {
	out, err := m.runner.run(ctx, "registry")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var names []string
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		name := fields[0]
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	sort.Strings(names)
	return names, nil
}
