package dbtclix

import (
	"context"
	"os/exec"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Runner invokes a local dbt executable. Output is returned verbatim,
// stderr folded into stdout, because the caller relays it to the agent
// rather than interpreting it.
type Runner struct {
	Logger     *zap.Logger
	DbtPath    string
	ProjectDir string
	GlobalArgs []string
}

var allowedCommands = map[string]struct{}{
	"build":   {},
	"compile": {},
	"docs":    {},
	"list":    {},
	"parse":   {},
	"run":     {},
	"test":    {},
	"show":    {},
}

func (r Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// Run executes one allow-listed dbt command. Global args are inserted
// between the command and its own arguments so flags like --quiet apply
// to every invocation.
func (r Runner) Run(ctx context.Context, command string, commandArgs ...string) (string, error) {
	if _, ok := allowedCommands[command]; !ok {
		return "", errors.Wrapf(ErrUnknownCommand, "%q", command)
	}

	argv := []string{command}
	if command == "docs" {
		argv = append(argv, "generate")
	}
	argv = append(argv, r.GlobalArgs...)
	argv = append(argv, commandArgs...)

	return r.exec(ctx, argv)
}

// ShowInline runs `dbt show` for an inline sql query, returning the
// result rows as json text. A non-positive limit is left to dbt's default.
func (r Runner) ShowInline(ctx context.Context, sqlQuery string, limit int) (string, error) {
	if sqlQuery == "" {
		return "", errors.Wrap(ErrInvalidArguments, "empty sql query")
	}

	argv := []string{"show"}
	argv = append(argv, r.GlobalArgs...)
	argv = append(argv, "--inline", sqlQuery, "--favor-state")
	if limit > 0 {
		argv = append(argv, "--limit", strconv.Itoa(limit))
	}
	argv = append(argv, "--output", "json")

	return r.exec(ctx, argv)
}

func (r Runner) exec(ctx context.Context, argv []string) (string, error) {
	dbtPath := r.DbtPath
	if dbtPath == "" {
		dbtPath = "dbt"
	}

	r.logger().Debug("running dbt command",
		zap.String("path", dbtPath),
		zap.Strings("argv", argv))

	cmd := exec.CommandContext(ctx, dbtPath, argv...)
	cmd.Dir = r.ProjectDir

	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// dbt reports failures through its output, keep it.
			return string(output), nil
		}
		return "", errors.Wrapf(err, "failed to invoke %s", dbtPath)
	}

	return string(output), nil
}
