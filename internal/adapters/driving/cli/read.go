package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driving"
)

var (
	readCredentials string
	readFormat      string
	readJSON        bool
)

var readCmd = &cobra.Command{
	Use:   "read [source]",
	Short: "Read a document as text",
	Long: `Fetches a document and prints its text content with its metadata.

The source is a local path, file://, s3://, git://host/org/repo/branch/path,
smb://server/share/path, a UNC path or an http(s):// URL.`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func init() {
	readCmd.Flags().StringVar(&readCredentials, "credentials", "", "credentials path in the secrets file")
	readCmd.Flags().StringVarP(&readFormat, "format", "f", "auto", "force a format instead of detecting it")
	readCmd.Flags().BoolVar(&readJSON, "json", false, "print the full result envelope as JSON")
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	out := svc.Tools.ReadDocument(cmd.Context(), driving.ReadDocumentInput{
		Source:          args[0],
		CredentialsPath: readCredentials,
		Format:          readFormat,
		Caller:          callerName,
	})

	if readJSON {
		return printEnvelope(cmd, out)
	}
	if !out.IsSuccess() {
		return errors.New(out.Error)
	}

	doc, ok := out.Data.(*domain.ParsedDocument)
	if !ok {
		return fmt.Errorf("unexpected result type %T", out.Data)
	}

	st := stylesFor(cmd.OutOrStdout())
	cmd.Println(st.title.Render(doc.FileName))
	cmd.Printf("  %s %s\n", st.label.Render("Format:"), doc.Format)
	cmd.Printf("  %s %d bytes\n", st.label.Render("Size:  "), doc.FileSize)
	cmd.Printf("  %s %s\n", st.label.Render("Path:  "), doc.FilePath)

	if len(doc.Metadata) > 0 {
		keys := make([]string, 0, len(doc.Metadata))
		for k := range doc.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		cmd.Println()
		cmd.Println(st.title.Render("Metadata"))
		for _, k := range keys {
			cmd.Printf("  %s %v\n", st.label.Render(k+":"), doc.Metadata[k])
		}
	}

	cmd.Println()
	if doc.Content == "" {
		cmd.Println(st.muted.Render("(no text content)"))
		return nil
	}
	cmd.Println(doc.Content)
	return nil
}

// printEnvelope writes the outcome as indented JSON. An error envelope is
// still printed in full, and the command fails afterwards.
func printEnvelope(cmd *cobra.Command, out domain.Outcome) error {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	if !out.IsSuccess() {
		return errors.New(out.Error)
	}
	return nil
}
