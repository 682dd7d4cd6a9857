package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driving"
	"github.com/custodia-labs/policy-reader/internal/parsers/table"
)

var (
	listCredentials string
	listPattern     string
	listJSON        bool
)

var listCmd = &cobra.Command{
	Use:   "list [source]",
	Short: "List documents at a location",
	Long: `Lists the files directly under a location. Listings are never recursive.

Use --pattern to keep only names matching a glob such as "*.pdf".`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listCredentials, "credentials", "", "credentials path in the secrets file")
	listCmd.Flags().StringVarP(&listPattern, "pattern", "p", "*", "glob matched against file names")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print the full result envelope as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	out := svc.Tools.ListDocuments(cmd.Context(), driving.ListDocumentsInput{
		Source:          args[0],
		CredentialsPath: listCredentials,
		Pattern:         listPattern,
		Caller:          callerName,
	})

	if listJSON {
		return printEnvelope(cmd, out)
	}
	if !out.IsSuccess() {
		return errors.New(out.Error)
	}

	listing, ok := out.Data.(domain.Listing)
	if !ok {
		return fmt.Errorf("unexpected result type %T", out.Data)
	}

	if listing.Count == 0 {
		cmd.Printf("No documents found at %s\n", args[0])
		return nil
	}

	rows := make([][]string, len(listing.Files))
	for i, f := range listing.Files {
		modified := ""
		if !f.Modified.IsZero() {
			modified = f.Modified.Format("2006-01-02 15:04")
		}
		rows[i] = []string{f.Name, strconv.FormatInt(f.Size, 10), modified, f.Path}
	}

	cmd.Println(table.Render([]string{"NAME", "SIZE", "MODIFIED", "PATH"}, rows))
	cmd.Println()
	cmd.Printf("Total: %d documents\n", listing.Count)
	return nil
}
