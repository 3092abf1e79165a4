package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/tutor-assistant/internal"
	"github.com/spf13/cobra"
)

var (
	chatPath   string
	chatClosed bool
)

var chatHelpStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("243"))

const chatHelp = `Commands:
  /go <path>          navigate to a page (e.g. /go /vectors)
  /replace <path>     replace the current page
  /link <path>        follow a link to a page
  /back, /forward     move through page history
  /click <element>    record an interaction with a page element
  /set <field> <val>  set a visualizer input (learning_rate, iterations)
  /open, /close       open or close the assistant panel
  /suggest [n]        show suggestions, or send suggestion n
  /new                archive this conversation and start a new session
  /sidebar            toggle the sidebar
  /session            show the session id
  /quit               leave
Anything else is sent to the tutor.`

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat with the tutor assistant.

The terminal acts as the host application: navigate between modules with
/go, /link, /back and /forward, and the assistant follows along.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			internal.SetLogLevel(internal.LogLevelWarn)
		}

		cfg, kv, closeFn, err := openStorage()
		if err != nil {
			return err
		}
		defer func() {
			if err := closeFn(); err != nil {
				internal.LogWarn("Failed to close storage: %v", err)
			}
		}()

		out := cmd.OutOrStdout()
		session := newChatSession(cfg, kv, internal.NewHTTPBackend(cfg.Backend.BaseURL, cfg.Backend.Timeout), out, chatPath)
		defer session.assistant.Shutdown()

		session.start(!chatClosed)
		return session.run(cmd.Context(), cmd.InOrStdin())
	},
}

// chatSession couples an Assistant with the terminal host state
type chatSession struct {
	assistant *internal.Assistant
	location  *internal.MemoryHistory
	gradient  *internal.FieldProvider
	view      *terminalView
	out       io.Writer
	scanner   *bufio.Scanner
}

func newChatSession(cfg *internal.Config, kv internal.KV, backend internal.Backend, out io.Writer, path string) *chatSession {
	if path == "" {
		path = "/"
	}
	view := newTerminalView(out)
	location := internal.NewMemoryHistory(path)
	markup := terminalMarkup

	s := &chatSession{
		location: location,
		gradient: internal.NewGradientProvider(),
		view:     view,
		out:      out,
	}
	s.assistant = internal.NewAssistant(internal.AssistantOptions{
		Config:   cfg,
		KV:       kv,
		Backend:  backend,
		View:     view,
		Location: location,
		Markup:   &markup,
	})
	s.assistant.RegisterProvider(s.gradient)
	return s
}

func (s *chatSession) start(open bool) {
	session := s.assistant.Start()
	internal.LogDebug("Chat session %s", session.ID)
	if open {
		s.assistant.Toggle()
	}
	_, _ = fmt.Fprintln(s.out, chatHelpStyle.Render("Type /help for commands."))
}

func (s *chatSession) run(ctx context.Context, in io.Reader) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.scanner = bufio.NewScanner(in)
	for {
		_, _ = fmt.Fprint(s.out, s.view.Prompt())
		if !s.scanner.Scan() {
			_, _ = fmt.Fprintln(s.out)
			return s.scanner.Err()
		}
		quit, err := s.handle(ctx, s.scanner.Text())
		if err != nil {
			internal.PrintError(s.out, err.Error())
		}
		if quit {
			return nil
		}
	}
}

// handle processes one line of input. It reports whether the user asked to quit.
func (s *chatSession) handle(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return false, s.send(ctx, line)
	}

	fields := strings.Fields(line)
	command, args := fields[0], fields[1:]
	watcher := s.assistant.Watcher()

	switch command {
	case "/help":
		_, _ = fmt.Fprintln(s.out, chatHelpStyle.Render(chatHelp))
		_, _ = fmt.Fprintln(s.out, chatHelpStyle.Render("Modules: /"+strings.Join(internal.KnownModules(), ", /")))
	case "/quit", "/exit":
		return true, nil
	case "/go", "/replace", "/link":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: %s <path>", command)
		}
		switch command {
		case "/go":
			s.location.Push(args[0])
			watcher.HistoryChanged()
		case "/replace":
			s.location.Replace(args[0])
			watcher.HistoryChanged()
		default:
			s.location.Push(args[0])
			watcher.LinkClicked()
		}
	case "/back":
		if !s.location.Back() {
			return false, errors.New("no earlier page")
		}
		watcher.PopState()
	case "/forward":
		if !s.location.Forward() {
			return false, errors.New("no later page")
		}
		watcher.PopState()
	case "/click":
		if len(args) == 0 {
			return false, errors.New("usage: /click <element>")
		}
		s.assistant.RecordInteraction(strings.Join(args, " "))
	case "/set":
		if len(args) != 2 {
			return false, errors.New("usage: /set <field> <value>")
		}
		if !s.gradient.Set(args[0], args[1]) {
			return false, fmt.Errorf("unknown field %q", args[0])
		}
	case "/open", "/close":
		if s.assistant.IsOpen() != (command == "/open") {
			s.assistant.Toggle()
		}
	case "/suggest":
		return false, s.suggest(ctx, args)
	case "/new":
		return false, s.newSession()
	case "/sidebar":
		collapsed, err := s.assistant.Layout().ToggleSidebar()
		if err != nil {
			return false, fmt.Errorf("failed to save sidebar state: %w", err)
		}
		internal.PrintInfo(s.out, fmt.Sprintf("Sidebar collapsed: %t", collapsed))
	case "/session":
		internal.PrintInfo(s.out, s.assistant.Session().ID)
	default:
		return false, fmt.Errorf("unknown command %s (try /help)", command)
	}
	return false, nil
}

func (s *chatSession) send(ctx context.Context, text string) error {
	pending, err := s.assistant.Send(ctx, text)
	if errors.Is(err, internal.ErrEmptyMessage) {
		return nil
	}
	if err != nil {
		return err
	}
	if outcome := pending.Wait(); outcome.Err != nil {
		internal.PrintWarning(s.out, "Reply failed: "+outcome.Err.Error())
	}
	return nil
}

func (s *chatSession) suggest(ctx context.Context, args []string) error {
	if len(args) == 0 {
		suggestions, err := s.assistant.Suggestions().Load(ctx)
		if err != nil {
			return fmt.Errorf("suggestions unavailable: %w", err)
		}
		if len(suggestions) == 0 {
			internal.PrintInfo(s.out, "No suggestions")
		} else if !s.assistant.IsOpen() {
			for i, suggestion := range suggestions {
				_, _ = fmt.Fprintf(s.out, "  [%d] %s\n", i+1, suggestion)
			}
		}
		return nil
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid suggestion number %q", args[0])
	}
	pending, err := s.assistant.ActivateSuggestion(ctx, n-1)
	if err != nil {
		return err
	}
	pending.Wait()
	return nil
}

func (s *chatSession) newSession() error {
	_, err := s.assistant.NewSession(internal.ConfirmFunc(s.confirm))
	if errors.Is(err, internal.ErrDeclined) {
		internal.PrintInfo(s.out, "Kept the current session")
		return nil
	}
	return err
}

// confirm asks a yes/no question on the chat input
func (s *chatSession) confirm(prompt string) bool {
	_, _ = fmt.Fprintf(s.out, "%s [y/N] ", prompt)
	if s.scanner == nil || !s.scanner.Scan() {
		return false
	}
	return isYes(s.scanner.Text())
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatPath, "path", "/", "Page to start on (e.g. /vectors)")
	chatCmd.Flags().BoolVar(&chatClosed, "closed", false, "Start with the assistant panel closed")
}
