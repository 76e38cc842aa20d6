package server

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v2"
	"github.com/muhammadolammi/skillscan/internal/report"
)

type pageData struct {
	Skills  string
	Warning string
	Skipped []string
	Blocks  []report.Block
}

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Resume Skill Matcher</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
.warning { background: #fff4ce; border-left: 4px solid #f0ad00; padding: .5rem 1rem; }
.result { background: #e8f1fb; border-left: 4px solid #1c6fd1; padding: .5rem 1rem; margin: 1rem 0; }
.failed { color: #a30000; }
label { display: block; margin-top: 1rem; }
input[type=text] { width: 100%; }
</style>
</head>
<body>
<h1>Resume Skill Matcher</h1>
<form method="post" action="/scan" enctype="multipart/form-data">
<label for="skills">Enter predefined skills (comma-separated):</label>
<input type="text" id="skills" name="skills" value="{{.Skills}}">
<label for="resumes">Upload resumes (PDF or DOCX files)</label>
<input type="file" id="resumes" name="resumes" accept=".pdf,.docx" multiple>
<p><button type="submit">Check Skills</button></p>
</form>
{{with .Warning}}<p class="warning">{{.}}</p>{{end}}
{{range .Skipped}}<p class="warning">Skipped {{.}}: only PDF and DOCX files are supported.</p>{{end}}
{{range .Blocks}}
<section class="result">
<h2>{{.Name}}</h2>
<p>Number of Predefined Skills: {{.Predefined}}</p>
<p>Number of Matching Skills: {{.Matched}}</p>
<p>Matching Skills: {{range $i, $s := .Skills}}{{if $i}}, {{end}}{{$s}}{{else}}none{{end}}</p>
<p>Percentage of Matching Skills: {{.Percentage}}%</p>
{{with .Error}}<p class="failed">{{.}}</p>{{end}}
</section>
{{end}}
</body>
</html>
`))

func renderPage(c *fiber.Ctx, code int, data pageData) error {
	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Status(code).Send(buf.Bytes())
}
