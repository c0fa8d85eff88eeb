package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driving"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions about your notes",
}

var chatSendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Send a message and stream the answer",
	Long: `Send a message to a thread and print the answer as it streams in.

Without --thread the active thread is used, and a new thread is created
when none is active. Pass "-" to read the message from stdin.

Examples:
  notely chat send "summarise my meeting notes from last week"
  notely chat send --thread 3f2a... "and what were the action items?"
  echo "list open questions" | notely chat send -`,
	Args: cobra.ExactArgs(1),
	RunE: runChatSend,
}

var (
	chatThreadID string
	chatJSON     bool
)

func init() {
	chatSendCmd.Flags().StringVarP(&chatThreadID, "thread", "t", "", "thread to post to (default: active thread)")
	chatSendCmd.Flags().BoolVar(&chatJSON, "json", false, "print the final answer as JSON")

	chatCmd.AddCommand(chatSendCmd)
	rootCmd.AddCommand(chatCmd)
}

func runChatSend(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return notConfigured("chat service")
	}

	text := args[0]
	if text == "-" {
		var err error
		if text, err = readAll(cmd.InOrStdin()); err != nil {
			return err
		}
	}

	printer := newStreamPrinter(cmd, !chatJSON)
	result, err := chatService.Send(cmd.Context(), chatThreadID, text, printer.observe)
	printer.finish()
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	if chatJSON {
		return outputChatJSON(cmd, result)
	}

	printSources(cmd, result.Answer.Sources)
	if result.SkippedFrames > 0 {
		cmd.PrintErrf("warning: %d malformed stream frame(s) were skipped\n", result.SkippedFrames)
	}
	return nil
}

func outputChatJSON(cmd *cobra.Command, result *driving.ChatResult) error {
	out := struct {
		ThreadID string             `json:"thread_id"`
		Answer   string             `json:"answer"`
		Sources  []domain.SourceRef `json:"sources"`
	}{
		ThreadID: result.ThreadID,
		Answer:   result.Answer.Content,
		Sources:  result.Answer.Sources,
	}
	if out.Sources == nil {
		out.Sources = []domain.SourceRef{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printSources(cmd *cobra.Command, sources []domain.SourceRef) {
	if len(sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for i, src := range sources {
		title := src.Title
		if title == "" {
			title = src.ID
		}
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, src.Score)
	}
}

// streamPrinter writes answer deltas as they arrive. Phase changes are
// shown on stderr when it is a terminal.
type streamPrinter struct {
	cmd    *cobra.Command
	echo   bool
	status bool

	mu      sync.Mutex
	wrote   bool
	showing bool
}

func newStreamPrinter(cmd *cobra.Command, echo bool) *streamPrinter {
	status := false
	if f, ok := cmd.ErrOrStderr().(*os.File); ok && echo {
		status = term.IsTerminal(int(f.Fd()))
	}
	return &streamPrinter{cmd: cmd, echo: echo, status: status}
}

func (p *streamPrinter) observe(ev driving.ChatEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch ev.Kind {
	case driving.ChatEventStatus:
		if !p.status || p.wrote {
			return
		}
		label := phaseLabel(ev.Status)
		if label == "" {
			return
		}
		fmt.Fprintf(p.cmd.ErrOrStderr(), "\r\033[K%s", color.New(color.Faint).Sprint(label))
		p.showing = true
	case driving.ChatEventContent:
		if !p.echo {
			return
		}
		p.clearStatus()
		p.wrote = true
		p.cmd.Print(ev.Delta)
	}
}

func (p *streamPrinter) clearStatus() {
	if p.showing {
		fmt.Fprint(p.cmd.ErrOrStderr(), "\r\033[K")
		p.showing = false
	}
}

func (p *streamPrinter) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearStatus()
	if p.wrote && p.echo {
		p.cmd.Println()
	}
}

// phaseLabel renders an in-flight phase for display.
func phaseLabel(status domain.ChatStatus) string {
	switch status.Phase {
	case domain.PhaseSearching:
		return fmt.Sprintf("Searching your notes... %d%%", int(status.Progress))
	case domain.PhaseAnalyzing:
		return "Analyzing sources..."
	case domain.PhaseGenerating:
		return "Generating answer..."
	default:
		return ""
	}
}

// truncate shortens s to n runes for table output.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
