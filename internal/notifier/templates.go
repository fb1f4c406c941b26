package notifier

import (
	"bytes"
	"embed"
	"strings"
	"text/template"

	"github.com/good-yellow-bee/breachwatch/internal/models"
)

//go:embed templates/*
var templateFS embed.FS

// Templates holds parsed email templates.
type Templates struct {
	html  *template.Template
	plain *template.Template
}

// TemplateData contains data for template rendering.
type TemplateData struct {
	Email          string
	NewBreachCount int
	BreachNames    []string
	RiskScore      int
	Band           string
	BandColor      string
}

// LoadTemplates loads the embedded email templates.
func LoadTemplates() (*Templates, error) {
	funcs := template.FuncMap{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"join":  strings.Join,
	}

	htmlTmpl, err := template.New("breach.html").Funcs(funcs).ParseFS(templateFS, "templates/breach.html")
	if err != nil {
		return nil, err
	}

	plainTmpl, err := template.New("breach.txt").Funcs(funcs).ParseFS(templateFS, "templates/breach.txt")
	if err != nil {
		return nil, err
	}

	return &Templates{
		html:  htmlTmpl,
		plain: plainTmpl,
	}, nil
}

// RenderHTML renders the HTML email body.
func (t *Templates) RenderHTML(data *TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := t.html.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderPlain renders the plain text email body.
func (t *Templates) RenderPlain(data *TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := t.plain.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// bandColor returns the display color for a risk band.
func bandColor(band models.RiskBand) string {
	switch band {
	case models.RiskBandHigh:
		return "#d32f2f" // red
	case models.RiskBandElevated:
		return "#f57c00" // orange
	default:
		return "#388e3c" // green
	}
}

// EventToTemplateData converts a breach event to template data.
func EventToTemplateData(event models.BreachEvent) TemplateData {
	band := models.BandForScore(event.RiskScore)
	return TemplateData{
		Email:          event.Email,
		NewBreachCount: event.NewBreachCount,
		BreachNames:    event.BreachNames,
		RiskScore:      event.RiskScore,
		Band:           string(band),
		BandColor:      bandColor(band),
	}
}
