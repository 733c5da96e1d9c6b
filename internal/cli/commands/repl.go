package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/transql/internal/cli/output"
	"github.com/leapstack-labs/transql/internal/translate"
	"github.com/spf13/cobra"
)

const (
	replPrompt         = "transql> "
	replContinuePrompt = "    ...> "
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Translate SQL interactively",
		Long: `Start an interactive session. Statements may span several lines and are
translated once a line ends with a semicolon.`,
		Args: cobra.NoArgs,
		RunE: runREPL,
	}
}

func runREPL(cmd *cobra.Command, _ []string) error {
	cmdCtx := NewCommandContext(cmd)
	tr, err := cmdCtx.Translator()
	if err != nil {
		return err
	}

	rlCfg := &readline.Config{
		Prompt:          replPrompt,
		AutoComplete:    replCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	}
	if h := cmdCtx.Cfg.History; h != nil && h.Enabled {
		rlCfg.HistoryFile = filepath.Join(filepath.Dir(h.Path), "repl_history")
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r := cmdCtx.Renderer
	r.Println("transql REPL (redshift -> databricks)")
	r.Println("Type .help for commands, .quit to exit")
	r.Println("")

	sess := &replSession{translator: tr, renderer: r}
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			sess.reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if sess.handleLine(line) {
			return nil
		}
		if sess.pending() {
			rl.SetPrompt(replContinuePrompt)
		} else {
			rl.SetPrompt(replPrompt)
		}
	}
}

// replSession holds the statement being typed.
type replSession struct {
	translator *translate.Translator
	renderer   *output.Renderer
	buf        strings.Builder
}

func (s *replSession) reset() { s.buf.Reset() }

func (s *replSession) pending() bool { return s.buf.Len() > 0 }

// handleLine consumes one input line and reports whether the session should
// end.
func (s *replSession) handleLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if !s.pending() && strings.HasPrefix(line, ".") {
		return s.dotCommand(line)
	}

	if s.pending() {
		s.buf.WriteString("\n")
	}
	s.buf.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		return false
	}

	sql := s.buf.String()
	s.reset()

	res, err := s.translator.Translate(sql)
	if err != nil {
		s.renderer.Error(fmt.Sprintf("Error: %v", err))
		return false
	}
	s.renderer.Printf("%s\n", res.SQL)
	return false
}

func (s *replSession) dotCommand(line string) bool {
	switch strings.ToLower(strings.Fields(line)[0]) {
	case ".quit", ".exit":
		return true
	case ".help":
		printREPLHelp(s.renderer.Writer())
	default:
		s.renderer.Error(fmt.Sprintf("Unknown command: %s (type .help for commands)", line))
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .quit / .exit   Exit the REPL

Tips:
  - Statements are translated once a line ends with a semicolon (;)
  - Ctrl+C discards the statement being typed
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

func replCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
