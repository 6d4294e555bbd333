package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/tirereq/internal/request"
)

// invalidDraftError marks a draft that failed validation. The report has
// already been printed, so main only sets the exit code.
type invalidDraftError struct {
	path  string
	count int
}

func (e *invalidDraftError) Error() string {
	return fmt.Sprintf("%s: %d invalid field(s)", e.path, e.count)
}

var validateCmd = &cobra.Command{
	Use:   "validate <draft.yaml>",
	Short: "Check a request draft against the form rules",
	Long: `Validate a YAML request draft without opening the TUI.

Prints OK when every field passes. Otherwise each failing field is listed with
its message and the command exits with status 1.

	Examples:
	  tirereq validate van-42.yaml`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := request.ValidateDraftFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if report.IsValid() {
			fmt.Fprintf(out, "OK: %s\n", report.Path)
			return nil
		}
		fmt.Fprintf(out, "Invalid: %s\n", report.Path)
		for _, field := range report.Errors.Fields() {
			fmt.Fprintf(out, "- %s: %s\n", field.Label(), report.Errors[field])
		}
		return &invalidDraftError{path: report.Path, count: len(report.Errors)}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
