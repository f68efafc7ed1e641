// Package view renders the server-side HTML shell from embedded templates.
package view

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/smithpartners/lawdesk/auth"
	"github.com/smithpartners/lawdesk/i18n"
)

//go:embed templates/*.html
var files embed.FS

var tplCache = struct {
	sync.RWMutex
	m map[string]*template.Template
}{m: map[string]*template.Template{}}

// Funcs returns the standard func map including i18n and simple helpers.
func Funcs(r *http.Request) template.FuncMap {
	lang := i18n.LangFromContext(r.Context())
	return template.FuncMap{
		"t":    func(code string) string { return i18n.T(lang, code) },
		"lang": func() string { return lang },
		"year": func() int { return time.Now().Year() },
		// dict creates a map from key-value pairs for passing to sub-templates.
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
	}
}

// ResetForTests clears the template cache.
func ResetForTests() {
	tplCache.Lock()
	tplCache.m = map[string]*template.Template{}
	tplCache.Unlock()
}

// Render executes the named page inside layout.html.
// name should be the filename (e.g., "dashboard.html").
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["IsLoggedIn"]; !exists {
		sess, loggedIn := auth.FromContext(r.Context())
		data["IsLoggedIn"] = loggedIn
		data["Session"] = sess
	}
	// The func map is bound per request, so the cache keys on language.
	key := i18n.LangFromContext(r.Context()) + "/" + name
	tplCache.RLock()
	t, ok := tplCache.m[key]
	tplCache.RUnlock()
	if !ok {
		parsed, err := template.New("layout.html").Funcs(Funcs(r)).ParseFS(files, "templates/layout.html", "templates/"+name)
		if err != nil {
			return err
		}
		t = parsed
		tplCache.Lock()
		tplCache.m[key] = t
		tplCache.Unlock()
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}
