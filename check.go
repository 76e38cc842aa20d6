package main

import (
	"github.com/muhammadolammi/skillscan/internal/report"
	"github.com/muhammadolammi/skillscan/internal/scan"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Check a single resume",
	Long:  "Check one PDF or DOCX resume against the predefined skills. Any other file type is an error.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

var checkSkills string

func init() {
	checkCmd.Flags().StringVarP(&checkSkills, "skills", "s", "", "Comma-separated predefined skills (defaults to the configured list)")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := newApp(0)
	if err != nil {
		return err
	}
	defer a.Close()

	matcher, err := a.matcher(checkSkills)
	if err != nil {
		return err
	}

	result, err := a.scanner.ScanResume(cmd.Context(), args[0], matcher)
	if err != nil {
		return err
	}

	report.NewLogPresenter(a.logger).Present(scan.NewReport(result))
	return nil
}
