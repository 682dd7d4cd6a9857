package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Show supported sources and formats",
	Long:  `Lists the source readers in resolution order and the file extensions that can be parsed.`,
	Args:  cobra.NoArgs,
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	st := stylesFor(cmd.OutOrStdout())
	cmd.Println(st.title.Render("Sources"))
	for _, s := range svc.Catalog.Sources() {
		state := st.ok.Render("enabled")
		if !s.Enabled {
			state = st.bad.Render("disabled")
		}
		cmd.Printf("  %-6s %-9s %s\n", s.Kind, state, st.label.Render(s.Description))
	}

	cmd.Println()
	cmd.Println(st.title.Render("Formats"))
	cmd.Printf("  %s\n", strings.Join(svc.Catalog.Formats(), " "))
	return nil
}
