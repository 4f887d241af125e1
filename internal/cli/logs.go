package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/stxkxs/bluebot/internal/config"
)

var (
	logsFollow  bool
	logsLines   int
	logsSession string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View the bot's log file",
	Long: `View the log file configured under logging.file.

Examples:
  bluebot logs                  # last 50 lines
  bluebot logs --follow         # follow log output
  bluebot logs --session abc123 # lines for one chat session`,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "follow log output")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 50, "number of lines to show")
	logsCmd.Flags().StringVar(&logsSession, "session", "", "only show lines for this session ID")
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile(configPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	w := cmd.OutOrStdout()

	if cfg.Logging.File == "" {
		fmt.Fprintln(w, "No log file configured. Set logging.file in bluebot.yaml.")
		return nil
	}
	if _, err := os.Stat(cfg.Logging.File); os.IsNotExist(err) && !logsFollow {
		fmt.Fprintln(w, "No logs found.")
		return nil
	}

	if logsFollow {
		return followLogs(cmd, cfg.Logging.File)
	}

	content, err := readLastLines(cfg.Logging.File, logsLines, logsSession)
	if err != nil {
		return fmt.Errorf("failed to read logs: %w", err)
	}
	fmt.Fprintln(w, content)
	return nil
}

func followLogs(cmd *cobra.Command, path string) error {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Following logs... (Ctrl+C to stop)")

	file, err := os.Open(path)
	for os.IsNotExist(err) {
		time.Sleep(time.Second)
		file, err = os.Open(path)
	}
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek log file: %w", err)
	}

	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if matchesSession(line, logsSession) {
			fmt.Fprint(w, line)
		}
	}
}

func matchesSession(line, session string) bool {
	return session == "" || strings.Contains(line, "session_id="+session)
}

func readLastLines(path string, n int, session string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if !matchesSession(scanner.Text(), session) {
			continue
		}
		lines = append(lines, scanner.Text())
		if len(lines) > n {
			lines = lines[1:]
		}
	}

	return strings.Join(lines, "\n"), scanner.Err()
}
