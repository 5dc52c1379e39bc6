package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("page.html").
		Funcs(template.FuncMap{
			"badge": BadgeClass,
			"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
		}).
		ParseFS(templateFS, "templates/*.html"),
)

// Page is everything a rendered route needs.
type Page struct {
	Route         Route
	Routes        []Route
	Data          Data
	Authenticated bool
	Email         string
	// Error, when set, replaces the route content with a failure notice.
	Error string
}

func (p Page) AuthClass() string {
	class, _ := AuthBadge(p.Authenticated)
	return class
}

func (p Page) AuthText() string {
	_, text := AuthBadge(p.Authenticated)
	return text
}

// NewPage builds the page for route id with the fixture data.
func NewPage(id string, authenticated bool, email string) Page {
	return Page{
		Route:         ResolveRoute(id),
		Routes:        Routes,
		Data:          Fixtures(),
		Authenticated: authenticated,
		Email:         email,
	}
}

// Render writes the full HTML document for p.
func Render(w io.Writer, p Page) error {
	if p.Routes == nil {
		p.Routes = Routes
	}
	if err := pageTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("render %s: %w", p.Route.ID, err)
	}
	return nil
}
