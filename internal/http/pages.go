package http

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pandorascan/weather-scanner/internal/observability"
	"github.com/pandorascan/weather-scanner/internal/registry"
	"github.com/pandorascan/weather-scanner/internal/validation"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageRenderer renders the HTML pages from the embedded templates.
type PageRenderer struct {
	templates *template.Template
	registry  *registry.Registry
	logger    *zap.Logger
}

// NewPageRenderer parses the embedded templates and returns a renderer.
func NewPageRenderer(reg *registry.Registry, logger *zap.Logger) (*PageRenderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &PageRenderer{templates: tmpl, registry: reg, logger: logger}, nil
}

// Home handles GET /.
func (p *PageRenderer) Home(w http.ResponseWriter, r *http.Request) {
	p.render(w, "index.html", "home", map[string]interface{}{
		"LocationKeys": p.registry.Keys(),
	})
}

// Wiki handles GET /wiki.
func (p *PageRenderer) Wiki(w http.ResponseWriter, r *http.Request) {
	p.render(w, "wiki.html", "wiki", nil)
}

// Map handles GET /map.
func (p *PageRenderer) Map(w http.ResponseWriter, r *http.Request) {
	p.render(w, "map.html", "map", map[string]interface{}{
		"LocationKeys": p.registry.Keys(),
	})
}

// Character handles GET /character/{name}. Unknown names render a synthesized
// placeholder record; only garbage input (bad charset, oversized) is rejected.
func (p *PageRenderer) Character(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	key, err := validation.ValidateKey(name, maxKeyLength)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	ch := p.registry.Character(key)
	p.render(w, "character.html", "character", map[string]interface{}{
		"Character": ch,
	})
}

func (p *PageRenderer) render(w http.ResponseWriter, name, page string, data interface{}) {
	observability.PageViewsTotal.WithLabelValues(page).Inc()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := p.templates.ExecuteTemplate(w, name, data); err != nil && p.logger != nil {
		p.logger.Error("render template", zap.String("template", name), zap.Error(err))
	}
}
