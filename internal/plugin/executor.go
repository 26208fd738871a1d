package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/rs/zerolog"
)

// Executor runs plugin actions as short-lived subprocesses. The request
// goes to the plugin's stdin as JSON and the response comes back on stdout;
// a plugin that overruns the timeout is killed.
type Executor struct {
	timeout time.Duration
	log     zerolog.Logger
}

// NewExecutor returns an Executor enforcing the given per-run timeout.
func NewExecutor(timeout time.Duration, log zerolog.Logger) *Executor {
	return &Executor{
		timeout: timeout,
		log:     log.With().Str("component", "plugin").Logger(),
	}
}

// Execute runs one action against the plugin and parses its response.
func (e *Executor) Execute(p *Plugin, req *Request) (*Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding plugin request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.Executable)
	cmd.Dir = p.Path
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.log.Debug().
		Str("plugin", p.Manifest.Name).
		Str("action", req.Action).
		Msg("executing plugin")

	runErr := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("plugin %s timed out after %s", p.Manifest.Name, e.timeout)
	}
	if runErr != nil {
		if msg := stderr.String(); msg != "" {
			return nil, fmt.Errorf("plugin %s: %w: %s", p.Manifest.Name, runErr, msg)
		}
		return nil, fmt.Errorf("plugin %s: %w", p.Manifest.Name, runErr)
	}

	var resp Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("decoding response from plugin %s: %w", p.Manifest.Name, err)
	}
	return &resp, nil
}
