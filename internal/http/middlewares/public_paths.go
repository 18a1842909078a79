package middlewares

import (
	"net/http"
	"path"
	"strings"
)

// Class is the outcome of classifying a request path.
type Class int

const (
	ClassProtected Class = iota
	ClassPublic
	// ClassUndetermined means no path could be derived from the request.
	ClassUndetermined
)

func (c Class) String() string {
	switch c {
	case ClassPublic:
		return "public"
	case ClassProtected:
		return "protected"
	default:
		return "undetermined"
	}
}

// PublicRules decides which paths skip the session gate.
type PublicRules struct {
	Exact      map[string]struct{}
	Prefixes   []string
	Extensions map[string]struct{} // lower-case, with the leading dot
}

func DefaultPublicRules() PublicRules {
	return NewPublicRules(
		[]string{
			"/login", "/login.html",
			"/register", "/register.html", "/cadastro.html",
			"/logout",
			"/health", "/readyz",
			"/contact",
			"/favicon.ico",
		},
		[]string{"/img", "/css", "/js"},
		[]string{".css", ".js", ".png", ".jpg", ".jpeg", ".svg", ".ico", ".woff", ".woff2", ".ttf", ".map"},
	)
}

func NewPublicRules(exact, prefixes, extensions []string) PublicRules {
	r := PublicRules{
		Exact:      make(map[string]struct{}, len(exact)),
		Prefixes:   append([]string(nil), prefixes...),
		Extensions: make(map[string]struct{}, len(extensions)),
	}
	for _, p := range exact {
		r.Exact[p] = struct{}{}
	}
	for _, e := range extensions {
		r.Extensions[strings.ToLower(e)] = struct{}{}
	}
	return r
}

// WithExact returns a copy of the rules with extra exact-match paths.
func (r PublicRules) WithExact(paths ...string) PublicRules {
	exact := make([]string, 0, len(r.Exact)+len(paths))
	for p := range r.Exact {
		exact = append(exact, p)
	}
	exts := make([]string, 0, len(r.Extensions))
	for e := range r.Extensions {
		exts = append(exts, e)
	}
	return NewPublicRules(append(exact, paths...), r.Prefixes, exts)
}

// Classify applies the rules to a raw path, query string allowed.
func (r PublicRules) Classify(rawPath string) Class {
	p, _, _ := strings.Cut(rawPath, "?")
	if p == "" {
		return ClassUndetermined
	}

	if _, ok := r.Exact[p]; ok {
		return ClassPublic
	}

	if _, ok := r.Extensions[strings.ToLower(path.Ext(p))]; ok {
		return ClassPublic
	}

	for _, prefix := range r.Prefixes {
		if strings.HasPrefix(p, prefix) {
			return ClassPublic
		}
	}

	return ClassProtected
}

// ClassifyRequest picks the path off the request. A request without a
// usable URL classifies as ClassUndetermined.
func (r PublicRules) ClassifyRequest(req *http.Request) Class {
	if req == nil {
		return ClassUndetermined
	}

	raw := ""
	if req.URL != nil {
		raw = req.URL.Path
	}
	if raw == "" {
		raw = req.RequestURI
	}

	return r.Classify(raw)
}
