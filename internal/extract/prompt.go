// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"text/template"
)

// namesPromptTmpl asks the model for a bare JSON array of competitor names
// mined from search result snippets.
var namesPromptTmpl = template.Must(template.New("names").Parse(`You are a market research analyst. Below are web search results about the company "{{.Company}}"{{if .Industry}} in the {{.Industry}} industry{{end}}.

Identify the companies that compete directly with {{.Company}}.

Rules:
- Return ONLY a JSON array of company names, for example ["Acme Corp", "Globex"].
- Do not include {{.Company}} itself.
- Do not include generic terms, product categories, publishers, news sites, or directories (e.g. "Wikipedia", "LinkedIn", "Forbes").
- Use each company's common brand name.
- If no competitors are mentioned, return [].

Search results:
{{.Evidence}}`))

type namesPromptData struct {
	Company  string
	Industry string
	Evidence string
}

func renderNamesPrompt(company, industry, evidence string) (string, error) {
	var buf bytes.Buffer
	err := namesPromptTmpl.Execute(&buf, namesPromptData{Company: company, Industry: industry, Evidence: evidence})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
