package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	flag "github.com/spf13/pflag"

	tex2png "github.com/alnah/go-tex2png"
	"github.com/alnah/go-tex2png/internal/fileutil"
	"github.com/alnah/go-tex2png/internal/hints"
)

// versionProbeTimeout bounds each "<tool> --version" call.
const versionProbeTimeout = 10 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Tools    []toolInfo `json:"tools"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// toolInfo holds detection results for latex or dvipng.
type toolInfo struct {
	Name    string `json:"name"`
	Command string `json:"command"`
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	Container bool   `json:"container"`
	CI        bool   `json:"ci"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempDir      string `json:"temp_dir"`
	TempWritable bool   `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad usage.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	jsonOutput := fs.Bool("json", false, "print the report as JSON")
	configName := fs.StringP("config", "c", "", "config file name or path")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(env.Stderr, "%v: %v\n", ErrInvalidFlag, err)
		return ExitUsage
	}

	envCfg := loadEnvConfig()
	cfg, err := loadConfig(*configName, envCfg)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}
	applyEnvConfig(envCfg, cfg)

	result := runDoctor(ctx, env, map[string]string{
		"latex":  cfg.Tools.Latex,
		"dvipng": cfg.Tools.Dvipng,
	})

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks. commands maps tool name to the
// configured command line.
func runDoctor(ctx context.Context, env *Environment, commands map[string]string) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
	}

	for _, name := range []string{"latex", "dvipng"} {
		checkTool(ctx, env, result, name, commands[name])
	}
	checkEnvironment(result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkTool resolves a configured command on PATH and probes its version.
func checkTool(ctx context.Context, env *Environment, result *doctorResult, name, command string) {
	info := toolInfo{Name: name, Command: command}
	defer func() { result.Tools = append(result.Tools, info) }()

	argv, err := tex2png.ParseCommand(command)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: invalid command %q: %v", name, command, err))
		return
	}

	path, err := env.LookPath(argv[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s not found (%s)", name, argv[0]))
		return
	}
	info.Found = true
	info.Path = path

	ctx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()
	version, err := env.ToolVersion(ctx, path)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("could not get %s version: %v", name, err))
		return
	}
	info.Version = version
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container = hints.IsInContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}
}

// checkSystem verifies the temporary directory used for scoped work
// directories is writable.
func checkSystem(result *doctorResult) {
	result.System.TempDir = os.TempDir()
	if err := fileutil.DirWritable(result.System.TempDir); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("temp directory not writable: %s", result.System.TempDir))
		return
	}
	result.System.TempWritable = true
}

// colorEnabled reports whether w is a terminal and NO_COLOR is unset.
func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && !color.NoColor && isatty.IsTerminal(f.Fd())
}

// printDoctorResult outputs human-readable diagnostic results.
// Colors are used only when w is a terminal.
func printDoctorResult(w io.Writer, r *doctorResult) {
	green, yellow, red, bold := color.New(color.FgGreen), color.New(color.FgYellow),
		color.New(color.FgRed), color.New(color.Bold)
	if !colorEnabled(w) {
		for _, c := range []*color.Color{green, yellow, red, bold} {
			c.DisableColor()
		}
	}
	ok, warn, bad := green.Sprint("[OK]"), yellow.Sprint("[WARN]"), red.Sprint("[ERROR]")

	bold.Fprintln(w, "tex2png doctor")
	fmt.Fprintln(w)

	bold.Fprintln(w, "TeX tools")
	for _, t := range r.Tools {
		if !t.Found {
			fmt.Fprintf(w, "  %s %s: not found (%s)\n", bad, t.Name, t.Command)
			continue
		}
		fmt.Fprintf(w, "  %s %s: %s\n", ok, t.Name, t.Path)
		if t.Version != "" {
			fmt.Fprintf(w, "  %s %s version: %s\n", ok, t.Name, t.Version)
		}
	}
	fmt.Fprintln(w)

	bold.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  %s Platform: %s/%s\n", ok, r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  %s Container: detected\n", ok)
	}
	if r.Env.CI {
		fmt.Fprintf(w, "  %s CI: detected\n", ok)
	}
	fmt.Fprintln(w)

	bold.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintf(w, "  %s Temp directory: writable (%s)\n", ok, r.System.TempDir)
	} else {
		fmt.Fprintf(w, "  %s Temp directory: not writable (%s)\n", bad, r.System.TempDir)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		bold.Fprintln(w, "Warnings:")
		for _, msg := range r.Warnings {
			fmt.Fprintf(w, "  %s %s\n", warn, msg)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		bold.Fprintln(w, "Errors:")
		for _, msg := range r.Errors {
			fmt.Fprintf(w, "  %s %s\n", bad, msg)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to render")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
