package api

import (
	"bytes"
	"html/template"
	"log"
	"net/http"
)

// introspectPage renders an introspection response for a browser. A full
// themeable template system is out of scope; this is the thin ancillary
// rendering needed when a request's Accept header prefers text/html,
// kept intentionally small.
var introspectPage = template.Must(template.New("introspect").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.PID}}</title></head>
<body>
<h1>{{.PID}}</h1>
<table>
<tr><th>scheme</th><td>{{.Scheme}}</td></tr>
<tr><th>prefix</th><td>{{.Prefix}}</td></tr>
<tr><th>value</th><td>{{.Value}}</td></tr>
<tr><th>suffix</th><td>{{.Suffix}}</td></tr>
<tr><th>target</th><td>{{.Target}}</td></tr>
<tr><th>canonical</th><td>{{.Canonical}}</td></tr>
</table>
{{if .Definition}}
<h2>definition</h2>
<table>
<tr><th>uniq</th><td>{{.Definition.Uniq}}</td></tr>
<tr><th>http_code</th><td>{{.Definition.HTTPCode}}</td></tr>
{{if .Definition.SynonymFor}}<tr><th>synonym_for</th><td>{{.Definition.SynonymFor}}</td></tr>{{end}}
{{if .Definition.Prefixes}}<tr><th>prefixes</th><td>{{range .Definition.Prefixes}}{{.}} {{end}}</td></tr>{{end}}
{{if .Definition.Values}}<tr><th>values</th><td>{{range .Definition.Values}}{{.}} {{end}}</td></tr>{{end}}
</table>
{{end}}
</body>
</html>
`))

// renderIntrospectHTML writes body through introspectPage. A template
// execution failure here is an internal templating bug, not a client
// error, so it maps to 500 rather than falling back to JSON silently.
func renderIntrospectHTML(w http.ResponseWriter, status int, body introspectResponse) {
	var buf bytes.Buffer
	if err := introspectPage.Execute(&buf, body); err != nil {
		log.Printf("api: render introspection html: %v", err)
		WriteError(w, http.StatusInternalServerError, "template_error", "render introspection html")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
