package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/stxkxs/bluebot/internal/chat"
	"github.com/stxkxs/bluebot/internal/provider"
	"github.com/stxkxs/bluebot/internal/telemetry"
)

var chatRememberOnExit bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the bot in the terminal",
	Long: `Start an interactive chat in the terminal.

Commands:
  /clear     summarize the conversation into memory and start over
  /memories  show what the bot remembers
  /quit      leave the chat`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatRememberOnExit, "remember-on-exit", true, "summarize the conversation into memory when leaving")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	p := a.Persona
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, p.Title)
	if p.Description != "" {
		fmt.Fprintln(out, p.Description)
	}
	fmt.Fprintln(out, "Type /clear to save and start over, /memories to see memories, /quit to leave.")
	fmt.Fprintln(out)

	return runREPL(ctx, cmd.InOrStdin(), out, a.Bot, chatRememberOnExit)
}

// runREPL reads one message per line until EOF, /quit or ctx is cancelled.
// Input is read on its own goroutine so an interrupt at the prompt is seen
// without waiting for the next line.
func runREPL(ctx context.Context, in io.Reader, out io.Writer, bot *chat.Bot, rememberOnExit bool) error {
	sessionID := uuid.New().String()
	var history []chat.HistoryEntry
	name := bot.Persona().Name

	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()
	lines, readErr := readLines(readCtx, in)

loop:
	for {
		fmt.Fprint(out, "> ")
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			break loop
		case l, ok := <-lines:
			if !ok {
				break loop
			}
			line = strings.TrimSpace(l)
		}

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return finishREPL(ctx, out, bot, history, rememberOnExit)
		case "/memories":
			fmt.Fprintln(out, bot.Memory().Display(ctx))
			continue
		case "/clear":
			fmt.Fprintln(out, bot.ClearAndRemember(ctx, history))
			history = nil
			sessionID = uuid.New().String()
			continue
		}

		turnCtx := telemetry.ContextWithTurn(ctx, telemetry.NewTurnContext(sessionID))
		reply, err := bot.Respond(turnCtx, chat.ToMessages(history), line)
		if err != nil {
			// Failed turns never enter history, so they are not sent again or remembered.
			fmt.Fprintf(out, "%s: %s\n\n", name, chat.ErrorText(err))
		} else {
			if reply.Trace != nil {
				fmt.Fprintln(out, reply.Trace.Markdown())
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%s: %s\n\n", name, reply.Text)
			history = append(history,
				chat.Record(provider.RoleUser, line),
				chat.Record(provider.RoleAssistant, reply.Text),
			)
		}
		if ctx.Err() != nil {
			break
		}
	}

	if ctx.Err() == nil {
		if err := <-readErr; err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
	}
	return finishREPL(context.WithoutCancel(ctx), out, bot, history, rememberOnExit)
}

// readLines scans in on a goroutine. The lines channel is closed at EOF, and
// the scanner error is then delivered on the error channel.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errc <- nil
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

func finishREPL(ctx context.Context, out io.Writer, bot *chat.Bot, history []chat.HistoryEntry, remember bool) error {
	if remember && len(history) > 0 {
		bot.ClearAndRemember(ctx, history)
		fmt.Fprintln(out, "\nSaved this chat to memory. Bye!")
		return nil
	}
	fmt.Fprintln(out, "\nBye!")
	return nil
}
