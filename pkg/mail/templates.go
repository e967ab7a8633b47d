package mail

import (
	"bytes"
	_ "embed"
	"html"
	"html/template"
	"net/url"

	"github.com/Masterminds/sprig/v3"
)

type GeolocationMailParams struct {
	Latitude  string
	Longitude string
	// Timestamp is the client-supplied value, rendered verbatim.
	Timestamp string
	MapURL    string
	// AppName signs off the message; empty falls back to the template default.
	AppName string
}

// geolocationView holds pre-escaped values. html/template would turn '+'
// into "&#43;", which breaks exponent coordinates and zone offsets in the body.
type geolocationView struct {
	Latitude  template.HTML
	Longitude template.HTML
	Timestamp template.HTML
	MapHref   template.HTMLAttr
	AppName   string
}

var (
	geolocationTemplate = template.New("geolocation").Funcs(sprig.HtmlFuncMap())

	//go:embed templates/geolocation.html
	geolocationTemplateRaw string
)

func init() {
	if _, err := geolocationTemplate.Parse(geolocationTemplateRaw); err != nil {
		panic(err)
	}
}

func render(t *template.Template, p any) (string, error) {
	b := bytes.Buffer{}
	err := t.Execute(&b, p)
	return b.String(), err
}

func RenderGeolocation(p GeolocationMailParams) (string, error) {
	return render(geolocationTemplate, geolocationView{
		Latitude:  template.HTML(html.EscapeString(p.Latitude)),
		Longitude: template.HTML(html.EscapeString(p.Longitude)),
		Timestamp: template.HTML(html.EscapeString(p.Timestamp)),
		MapHref:   mapHref(p.MapURL),
		AppName:   p.AppName,
	})
}

// mapHref only links http(s) targets; anything else gets the same inert
// placeholder html/template uses for rejected URLs.
func mapHref(raw string) template.HTMLAttr {
	if u, err := url.Parse(raw); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		raw = "#ZgotmplZ"
	}
	return template.HTMLAttr(`href="` + html.EscapeString(raw) + `"`)
}
