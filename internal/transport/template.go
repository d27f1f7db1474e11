package transport

import (
	"strings"
	"text/template"

	"github.com/ImSingee/go-ex/ee"

	"github.com/ImSingee/uvm/internal/installer"
)

// TemplateData is available to command and URL templates.
type TemplateData struct {
	Version     string
	Base        string
	Revision    string
	Component   string
	ComponentID int
	Destination string
	Platform    string
}

func NewTemplateData(req installer.FetchRequest) TemplateData {
	return TemplateData{
		Version:     req.Version.String(),
		Base:        req.Version.Base,
		Revision:    req.Version.Revision,
		Component:   req.Component.String(),
		ComponentID: req.Component.ID(),
		Destination: req.Destination,
		Platform:    req.Platform.String(),
	}
}

// Render executes tmpl with the data of req.
func Render(tmpl string, req installer.FetchRequest) (string, error) {
	t, err := template.New("").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", ee.Wrap(err, "invalid template")
	}

	w := strings.Builder{}
	err = t.Execute(&w, NewTemplateData(req))
	if err != nil {
		return "", ee.Wrap(err, "cannot render template")
	}
	return w.String(), nil
}
