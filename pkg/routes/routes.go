// Package routes describes HTTP endpoints as data so domain handlers can
// declare their surface and have it registered on a ServeMux.
package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group organizes routes under a common prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Patterns returns the fully qualified "METHOD /path" patterns of the group and its children.
func (g Group) Patterns() []string {
	var patterns []string
	walk("", g, func(pattern string, _ http.HandlerFunc) {
		patterns = append(patterns, pattern)
	})
	return patterns
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		walk("", group, func(pattern string, h http.HandlerFunc) {
			mux.Handle(pattern, h)
		})
	}
}

func walk(parentPrefix string, group Group, fn func(string, http.HandlerFunc)) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		fn(route.Method+" "+fullPrefix+route.Pattern, route.Handler)
	}
	for _, child := range group.Children {
		walk(fullPrefix, child, fn)
	}
}
