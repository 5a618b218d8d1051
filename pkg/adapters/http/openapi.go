package http

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/go-chi/chi/v5"
)

//go:embed openapi.yaml
var rawSpec []byte

const (
	treePattern  = "/trees/{tree}"
	nodesPattern = "/trees/{tree}/nodes"
)

var loadSpec = sync.OnceValues(func() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("load openapi spec: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate openapi spec: %w", err)
	}
	return doc, nil
})

func serveSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	_, _ = w.Write(rawSpec)
}

func serveSwagger(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte(swaggerHTML))
}

// validated checks the request against the operation declared for pattern before calling
// next. Node routes gain a {path} segment when the wildcard is set. YAML layouts are left
// to the layout parser.
func (s *Server) validated(pattern string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.spec == nil || strings.Contains(r.Header.Get("Content-Type"), "yaml") {
			next(w, r)
			return
		}

		params := map[string]string{"tree": chi.URLParam(r, "tree")}
		if p := strings.Trim(nodePath(r), "/"); p != "" && pattern == nodesPattern {
			pattern += "/{path}"
			params["path"] = p
		}
		item := s.spec.Paths.Value(pattern)
		if item == nil || item.GetOperation(r.Method) == nil {
			next(w, r)
			return
		}

		// Bodies are JSON whatever the client declared, as decodeBody reads them.
		check := r.Clone(r.Context())
		check.Header.Set("Content-Type", "application/json")
		err := openapi3filter.ValidateRequest(r.Context(), &openapi3filter.RequestValidationInput{
			Request:    check,
			PathParams: params,
			Route: &routers.Route{
				Spec:      s.spec,
				Path:      pattern,
				PathItem:  item,
				Method:    r.Method,
				Operation: item.GetOperation(r.Method),
			},
		})
		if err != nil {
			s.writeError(w, fmt.Errorf("request does not match the API schema: %v: %w", err, domain.ErrInvalidArgument))
			return
		}
		r.Body = check.Body
		next(w, r)
	}
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>itemtree API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
