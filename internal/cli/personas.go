package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stxkxs/bluebot/internal/config"
)

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List available personas",
	Long:  `List the built-in persona presets and any personas/*.yaml files in the project.`,
	RunE:  runPersonas,
}

func runPersonas(cmd *cobra.Command, args []string) error {
	dir := projectDir()
	names, err := config.LoadPersonaList(dir)
	if err != nil {
		return fmt.Errorf("failed to list personas: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSOURCE\tTITLE")
	for _, name := range names {
		source := "file"
		if _, ok := config.Preset(name); ok {
			source = "built-in"
		}
		p, err := config.ResolvePersona(dir, config.PersonaConfig{Preset: name})
		if err != nil {
			fmt.Fprintf(w, "%s\t%s\tinvalid: %v\n", name, source, err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, source, p.Title)
	}
	return w.Flush()
}
