package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/policy-reader/internal/parsers/table"
)

// ErrAuditDisabled is returned by the audit command when no store is configured.
var ErrAuditDisabled = errors.New("audit trail is disabled: set audit.enabled = true in the config file")

var (
	auditLimit int
	auditJSON  bool
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent tool invocations",
	Long:  `Prints the most recent entries of the persistent audit trail, newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runAudit,
}

func init() {
	auditCmd.Flags().IntVarP(&auditLimit, "limit", "n", 20, "maximum number of entries")
	auditCmd.Flags().BoolVar(&auditJSON, "json", false, "output entries as JSON")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}
	if svc.Audit == nil {
		return ErrAuditDisabled
	}

	events, err := svc.Audit.Recent(cmd.Context(), auditLimit)
	if err != nil {
		return fmt.Errorf("failed to read audit trail: %w", err)
	}

	if auditJSON {
		data, err := json.MarshalIndent(events, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal entries: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(events) == 0 {
		cmd.Println("No audit entries.")
		return nil
	}

	st := stylesFor(cmd.OutOrStdout())
	rows := make([][]string, len(events))
	for i, e := range events {
		status := st.ok.Render(e.Status)
		detail := strconv.FormatInt(e.Size, 10)
		if e.Count > 0 {
			detail = strconv.Itoa(e.Count)
		}
		if !e.Succeeded() {
			status = st.bad.Render(e.Status)
			detail = e.ErrorKind
		}
		rows[i] = []string{
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Action,
			status,
			e.Duration.Round(time.Millisecond).String(),
			detail,
			e.Source,
		}
	}

	cmd.Println(table.Render([]string{"TIME", "ACTION", "STATUS", "DURATION", "DETAIL", "SOURCE"}, rows))
	return nil
}
