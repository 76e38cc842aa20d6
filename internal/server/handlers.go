package server

import (
	"fmt"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/muhammadolammi/skillscan/internal/extract"
	"github.com/muhammadolammi/skillscan/internal/notify"
	"github.com/muhammadolammi/skillscan/internal/report"
	"github.com/muhammadolammi/skillscan/internal/scan"
	"github.com/muhammadolammi/skillscan/internal/skills"
	"github.com/muhammadolammi/skillscan/internal/storage"
)

const (
	warnNoSkills = "Please enter predefined skills."
	warnNoFiles  = "Please upload resumes."
)

// scanOutcome is what a form submission produced. Warning is set when
// input validation stopped the scan before it started.
type scanOutcome struct {
	skillsInput string
	warning     string
	skipped     []string
	report      *scan.Report
}

func (s *Server) Index(c *fiber.Ctx) error {
	return renderPage(c, fiber.StatusOK, pageData{})
}

func (s *Server) ScanPage(c *fiber.Ctx) error {
	out, err := s.handleUpload(c)
	if err != nil {
		return err
	}

	data := pageData{
		Skills:  out.skillsInput,
		Warning: out.warning,
		Skipped: out.skipped,
	}
	code := fiber.StatusOK
	if out.warning != "" {
		code = fiber.StatusUnprocessableEntity
	}
	if out.report != nil {
		data.Blocks = report.View(out.report)
	}
	return renderPage(c, code, data)
}

func (s *Server) ScanAPI(c *fiber.Ctx) error {
	out, err := s.handleUpload(c)
	if err != nil {
		return err
	}
	if out.warning != "" {
		return failure(c, fiber.StatusUnprocessableEntity, out.warning, fiber.Map{"skipped": out.skipped})
	}
	return success(c, fiber.StatusOK, "Scan completed", fiber.Map{
		"scan_id": out.report.ID,
		"results": report.View(out.report),
		"skipped": out.skipped,
	})
}

// handleUpload validates the form, materializes the uploads in a private
// workspace, scans them and removes the workspace again on every path.
func (s *Server) handleUpload(c *fiber.Ctx) (*scanOutcome, error) {
	out := &scanOutcome{skillsInput: c.FormValue("skills")}

	set := skills.Parse(out.skillsInput)
	if set.Len() == 0 {
		out.warning = warnNoSkills
		return out, nil
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil {
		files = form.File["resumes"]
	}
	if len(files) == 0 {
		out.warning = warnNoFiles
		return out, nil
	}
	if len(files) > maxFilesPerRequest {
		out.warning = fmt.Sprintf("Please upload at most %d resumes at a time.", maxFilesPerRequest)
		return out, nil
	}
	for _, fh := range files {
		if fh.Size > s.cfg.MaxUploadBytes() {
			out.warning = fmt.Sprintf("%s is larger than %d MB.", storage.SafeName(fh.Filename), s.cfg.MaxUploadMB)
			return out, nil
		}
	}

	matcher, err := skills.Compile(set)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	ws, err := storage.NewWorkspace(s.cfg.UploadDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ws.Cleanup(); err != nil {
			s.logger.Error().Err(err).Str("dir", ws.Dir()).Msg("failed to remove upload workspace")
		}
	}()

	paths := make([]string, 0, len(files))
	for _, fh := range files {
		name := storage.SafeName(fh.Filename)
		if !extract.Supported(name) {
			s.logger.Error().Str("path", name).Err(extract.ErrUnsupportedFormat).Msg("Skipping unsupported upload")
			out.skipped = append(out.skipped, name)
			continue
		}
		path, err := saveUpload(ws, fh)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		out.warning = warnNoFiles
		return out, nil
	}

	ctx := c.UserContext()
	r, err := s.scanner.ScanFiles(ctx, paths, matcher)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	notify.PublishReport(ctx, s.publisher, r, s.logger)

	out.report = r
	return out, nil
}

func saveUpload(ws *storage.Workspace, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("cannot open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return ws.Save(fh.Filename, f)
}
