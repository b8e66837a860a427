package discover

import (
	"bytes"
	"text/template"
)

var scorePromptTmpl = template.Must(template.New("score").Parse(`On a scale from 0 to 100, how likely is "{{.Candidate}}" to be a direct competitor of "{{.Company}}"{{if .Industry}} in the {{.Industry}} industry{{end}}?

A direct competitor sells a comparable product or service to the same customers. Score publishers, directories, generic product categories, and unrelated companies 0.

Answer with a single integer between 0 and 100 and nothing else.`))

type scorePromptData struct {
	Candidate string
	Company   string
	Industry  string
}

func renderScorePrompt(candidate, company, industry string) (string, error) {
	var buf bytes.Buffer
	err := scorePromptTmpl.Execute(&buf, scorePromptData{Candidate: candidate, Company: company, Industry: industry})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
