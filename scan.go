package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/muhammadolammi/skillscan/internal/logger"
	"github.com/muhammadolammi/skillscan/internal/notify"
	"github.com/muhammadolammi/skillscan/internal/report"
	"github.com/muhammadolammi/skillscan/internal/scan"
	"github.com/muhammadolammi/skillscan/internal/skills"
	"github.com/muhammadolammi/skillscan/internal/storage"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a directory of resumes and log the matching skills",
	Long:  "Walk a directory recursively (or pull resumes from the configured R2 bucket) and log, for every PDF and DOCX resume, which predefined skills it mentions.",
	Args:  cobra.NoArgs,
	RunE:  runScan,
}

var (
	scanDir          string
	scanSkills       string
	scanBucketPrefix string
	scanWorkers      int
)

func init() {
	scanCmd.Flags().StringVarP(&scanDir, "dir", "d", "", "Directory to walk (defaults to resume_dir from the config)")
	scanCmd.Flags().StringVarP(&scanSkills, "skills", "s", "", "Comma-separated predefined skills (defaults to the configured list)")
	scanCmd.Flags().StringVar(&scanBucketPrefix, "bucket-prefix", "", "Scan objects under this key prefix in the configured R2 bucket instead of a directory")
	scanCmd.Flags().IntVarP(&scanWorkers, "workers", "w", 0, "Resumes extracted in parallel (defaults to the configured value)")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, _ []string) error {
	a, err := newApp(scanWorkers)
	if err != nil {
		return err
	}
	defer a.Close()

	matcher, err := a.matcher(scanSkills)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var r *scan.Report
	if scanBucketPrefix != "" {
		r, err = a.scanBucket(ctx, scanBucketPrefix, matcher)
	} else {
		dir := scanDir
		if dir == "" {
			dir = a.cfg.ResumeDir
		}
		r, err = a.scanner.ScanDir(ctx, dir, matcher)
		if err != nil {
			err = fmt.Errorf("failed to scan %s: %w", dir, err)
		}
	}
	if err != nil {
		return err
	}

	report.NewLogPresenter(a.logger).Present(r)
	notify.PublishReport(ctx, a.publisher, r, a.logger)
	return nil
}

// scanBucket downloads the resumes under prefix into a temporary workspace,
// scans them and removes the workspace again.
func (a *app) scanBucket(ctx context.Context, prefix string, matcher *skills.Matcher) (*scan.Report, error) {
	if !a.cfg.R2.Enabled() {
		return nil, errors.New("--bucket-prefix needs r2.bucket and r2.account_id (or r2.endpoint) configured")
	}

	client, err := storage.NewR2Client(ctx, a.cfg.R2)
	if err != nil {
		return nil, err
	}
	source := storage.NewBucketSource(client, a.cfg.R2.Bucket, logger.Component("storage"))

	ws, err := storage.NewWorkspace("")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ws.Cleanup(); err != nil {
			a.logger.Error().Err(err).Str("dir", ws.Dir()).Msg("failed to remove download workspace")
		}
	}()

	paths, err := source.Fetch(ctx, prefix, ws)
	if err != nil {
		return nil, err
	}
	return a.scanner.ScanFiles(ctx, paths, matcher)
}
