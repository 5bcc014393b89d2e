package notification

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// LeadQualifiedEmail carries the data rendered into the consultant email.
type LeadQualifiedEmail struct {
	Name      string
	Phone     string
	Score     int
	Threshold int
	Manual    bool
	Reason    string
}

func renderLeadQualified(data LeadQualifiedEmail) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/lead_qualified.html")
	if err != nil {
		return "", fmt.Errorf("parse email template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email template: %w", err)
	}
	return buf.String(), nil
}
