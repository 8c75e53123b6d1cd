package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagEnum // has suggested values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long   string   // --output
	Short  string   // -f (empty if none)
	Type   flagType // completion type
	Desc   string   // help text
	Values []string // for enum flags
	Glob   string   // for file flags, e.g. "*.png"
}

// commandDef describes a command for completion.
type commandDef struct {
	Name  string
	Desc  string
	Flags []flagDef
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values []string
	Glob   string
	IsFile bool
	IsDir  bool
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"size":     {Values: []string{"72", "150", "300", "600"}},
	"file":     {IsFile: true},
	"output":   {IsFile: true, Glob: "*.png"},
	"config":   {IsFile: true, Glob: "*.yaml,*.yml,*.toml"},
	"log-file": {IsFile: true},
	"workdir":  {IsDir: true},
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}
		if f.Value.Type() == "bool" {
			fd.Type = flagBool
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.IsFile:
				fd.Type = flagFile
				fd.Glob = meta.Glob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// doctorFlags lists the doctor command flags.
var doctorFlags = []flagDef{
	{Long: "json", Type: flagBool, Desc: "print the report as JSON"},
	{Long: "config", Short: "c", Type: flagFile, Glob: "*.yaml,*.yml,*.toml", Desc: "config file name or path"},
}

// getCommands returns the command registry for completion.
// Render flags are extracted from the actual FlagSet.
func getCommands() []commandDef {
	return []commandDef{
		{Name: cmdRender, Desc: "Render an expression to PNG", Flags: extractFlagsFromFlagSet(newRenderFlagSet(&renderFlags{}))},
		{Name: cmdDoctor, Desc: "Check that latex and dvipng are usable", Flags: doctorFlags},
		{Name: cmdVersion, Desc: "Show version information"},
		{Name: cmdHelp, Desc: "Show help for a command"},
		{Name: cmdCompletion, Desc: "Generate shell completion script"},
	}
}

// GenerateCompletion writes shell completion script to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w, getCommands())
	case ShellZsh:
		return generateZsh(w, getCommands())
	case ShellFish:
		return generateFish(w, getCommands())
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tex2png completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w, "  Bash:  eval \"$(tex2png completion bash)\"   # in ~/.bashrc")
	fmt.Fprintln(w, "  Zsh:   eval \"$(tex2png completion zsh)\"    # in ~/.zshrc, before compinit")
	fmt.Fprintln(w, "  Fish:  tex2png completion fish > ~/.config/fish/completions/tex2png.fish")
}

func commandNames(cmds []commandDef) string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return strings.Join(names, " ")
}

func flagWords(flags []flagDef) string {
	var words []string
	for _, f := range flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return strings.Join(words, " ")
}

// generateBash writes a bash completion function. Rendering is the default
// command, so render flags complete at the top level too.
func generateBash(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	render := cmds[0]

	b.WriteString("# bash completion for tex2png\n")
	b.WriteString("_tex2png() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")

	b.WriteString("    case \"${prev}\" in\n")
	for _, f := range render.Flags {
		pattern := "--" + f.Long
		if f.Short != "" {
			pattern += "|-" + f.Short
		}
		switch f.Type {
		case flagEnum:
			fmt.Fprintf(&b, "        %s) COMPREPLY=( $(compgen -W %q -- \"${cur}\") ); return ;;\n", pattern, strings.Join(f.Values, " "))
		case flagFile:
			fmt.Fprintf(&b, "        %s) COMPREPLY=( $(compgen -f -- \"${cur}\") ); return ;;\n", pattern)
		case flagDir:
			fmt.Fprintf(&b, "        %s) COMPREPLY=( $(compgen -d -- \"${cur}\") ); return ;;\n", pattern)
		case flagString:
			fmt.Fprintf(&b, "        %s) return ;;\n", pattern)
		}
	}
	b.WriteString("    esac\n\n")

	b.WriteString("    case \"${cmd}\" in\n")
	fmt.Fprintf(&b, "        %s) COMPREPLY=( $(compgen -W \"bash zsh fish\" -- \"${cur}\") ); return ;;\n", cmdCompletion)
	fmt.Fprintf(&b, "        %s) COMPREPLY=( $(compgen -W %q -- \"${cur}\") ); return ;;\n", cmdHelp, commandNames(cmds))
	fmt.Fprintf(&b, "        %s) COMPREPLY=( $(compgen -W %q -- \"${cur}\") ); return ;;\n", cmdDoctor, flagWords(doctorFlags))
	fmt.Fprintf(&b, "        %s) return ;;\n", cmdVersion)
	b.WriteString("    esac\n\n")

	b.WriteString("    if [[ \"${cur}\" == -* ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=( $(compgen -W %q -- \"${cur}\") )\n", flagWords(render.Flags))
	b.WriteString("    elif [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=( $(compgen -W %q -- \"${cur}\") )\n", commandNames(cmds))
	b.WriteString("    fi\n")
	b.WriteString("}\n")
	b.WriteString("complete -F _tex2png tex2png\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// zshSpec returns the _arguments spec for one flag.
func zshSpec(f flagDef) []string {
	desc := strings.ReplaceAll(f.Desc, "'", "'\\''")
	desc = strings.NewReplacer("[", "\\[", "]", "\\]", ":", "\\:").Replace(desc)

	var action string
	switch f.Type {
	case flagBool:
		action = ""
	case flagEnum:
		action = ":value:(" + strings.Join(f.Values, " ") + ")"
	case flagFile:
		if f.Glob != "" {
			action = ":file:_files -g \"" + zshGlob(f.Glob) + "\""
		} else {
			action = ":file:_files"
		}
	case flagDir:
		action = ":directory:_files -/"
	default:
		action = ":value: "
	}

	specs := []string{"'--" + f.Long + "[" + desc + "]" + action + "'"}
	if f.Short != "" {
		specs = append(specs, "'-"+f.Short+"["+desc+"]"+action+"'")
	}
	return specs
}

// zshGlob turns "*.yaml,*.yml" into "*.(yaml|yml)".
func zshGlob(glob string) string {
	parts := strings.Split(glob, ",")
	if len(parts) == 1 {
		return parts[0]
	}
	exts := make([]string, len(parts))
	for i, p := range parts {
		exts[i] = strings.TrimPrefix(p, "*.")
	}
	return "*.(" + strings.Join(exts, "|") + ")"
}

// generateZsh writes a zsh completion function.
func generateZsh(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	render := cmds[0]

	b.WriteString("#compdef tex2png\n\n")
	b.WriteString("_tex2png() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, c.Desc)
	}
	b.WriteString("    )\n\n")

	b.WriteString("    case \"${words[2]}\" in\n")
	for _, c := range cmds {
		switch c.Name {
		case cmdCompletion:
			fmt.Fprintf(&b, "        %s) _arguments '2:shell:(bash zsh fish)' ;;\n", c.Name)
		case cmdHelp:
			fmt.Fprintf(&b, "        %s) _arguments '2:command:(%s)' ;;\n", c.Name, commandNames(cmds))
		case cmdVersion:
			fmt.Fprintf(&b, "        %s) ;;\n", c.Name)
		default:
			fmt.Fprintf(&b, "        %s)\n            _arguments \\\n", c.Name)
			writeZshSpecs(&b, c.Flags)
			b.WriteString("            ;;\n")
		}
	}
	b.WriteString("        *)\n")
	b.WriteString("            if (( CURRENT == 2 )) && [[ \"${words[2]}\" != -* ]]; then\n")
	b.WriteString("                _describe 'command' commands\n")
	b.WriteString("                return\n")
	b.WriteString("            fi\n")
	b.WriteString("            _arguments \\\n")
	writeZshSpecs(&b, render.Flags)
	b.WriteString("            ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("_tex2png \"$@\"\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeZshSpecs(b *strings.Builder, flags []flagDef) {
	var specs []string
	for _, f := range flags {
		specs = append(specs, zshSpec(f)...)
	}
	for i, s := range specs {
		b.WriteString("                " + s)
		if i < len(specs)-1 {
			b.WriteString(" \\")
		}
		b.WriteString("\n")
	}
}

// generateFish writes fish completion commands.
func generateFish(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	render := cmds[0]

	b.WriteString("# fish completion for tex2png\n")
	b.WriteString("complete -c tex2png -f\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c tex2png -n '__fish_use_subcommand' -a %s -d '%s'\n", c.Name, fishQuote(c.Desc))
	}
	b.WriteString("complete -c tex2png -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish'\n")
	fmt.Fprintf(&b, "complete -c tex2png -n '__fish_seen_subcommand_from help' -a '%s'\n", commandNames(cmds))

	renderCond := fmt.Sprintf("not __fish_seen_subcommand_from %s %s %s %s",
		cmdDoctor, cmdVersion, cmdHelp, cmdCompletion)
	for _, f := range render.Flags {
		writeFishFlag(&b, renderCond, f)
	}
	for _, f := range doctorFlags {
		writeFishFlag(&b, "__fish_seen_subcommand_from "+cmdDoctor, f)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeFishFlag(b *strings.Builder, cond string, f flagDef) {
	fmt.Fprintf(b, "complete -c tex2png -n '%s' -l %s", cond, f.Long)
	if f.Short != "" {
		fmt.Fprintf(b, " -s %s", f.Short)
	}
	switch f.Type {
	case flagBool:
	case flagEnum:
		fmt.Fprintf(b, " -x -a '%s'", strings.Join(f.Values, " "))
	case flagFile:
		b.WriteString(" -r -F")
	case flagDir:
		b.WriteString(" -x -a '(__fish_complete_directories)'")
	default:
		b.WriteString(" -x")
	}
	fmt.Fprintf(b, " -d '%s'\n", fishQuote(f.Desc))
}

func fishQuote(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
