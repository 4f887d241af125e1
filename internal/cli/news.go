package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stxkxs/bluebot/internal/chat"
	"github.com/stxkxs/bluebot/internal/search"
)

var (
	newsStyle      string
	newsMaxResults int
	newsRegion     string
	newsTimeLimit  string
)

var newsCmd = &cobra.Command{
	Use:   "news [topic]",
	Short: "Analyze recent news on a topic in a given style",
	Long: `Search recent news for a topic and have the model retell it in a style.

Examples:
  bluebot news
  bluebot news "gold prices" --style "Write in the style of a nature documentary"`,
	RunE: runNews,
}

func init() {
	newsCmd.Flags().StringVarP(&newsStyle, "style", "s", "", "analysis style (default: "+chat.DefaultNewsStyle+")")
	newsCmd.Flags().IntVarP(&newsMaxResults, "max-results", "n", 10, "number of news items to analyze")
	newsCmd.Flags().StringVar(&newsRegion, "region", "us-en", "search region")
	newsCmd.Flags().StringVar(&newsTimeLimit, "time", "w", "time limit: d, w, m or y")
}

func runNews(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	analyzer := a.News().
		WithSearchOptions(search.Options{
			MaxResults: newsMaxResults,
			Region:     newsRegion,
			SafeSearch: "moderate",
			TimeLimit:  newsTimeLimit,
		})

	analysis, err := analyzer.Analyze(ctx, newsStyle, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), analysis)
	return nil
}
