package tether

import (
	"net/url"
	"regexp"
)

// placeholderPattern matches :field tokens. A leading digit is excluded so
// ports such as :8080 are left alone.
var placeholderPattern = regexp.MustCompile(`:[A-Za-z_][A-Za-z0-9_]*`)

// BuildURL resolves the template for operation against fields.
//
// The BaseKey entry prefixes the template. Every placeholder must have a
// truthy value in fields; its formatted, path-escaped value is substituted.
// A missing operation fails with ErrUnknownOperation and an unresolved
// placeholder with ErrUnresolvedParam.
func BuildURL(operation string, fields map[string]any, endpoints Endpoints) (string, error) {
	tmpl, ok := endpoints[operation]
	if !ok || operation == BaseKey {
		return "", newRouteError(ErrUnknownOperation, operation, "")
	}

	var missing string
	resolved := placeholderPattern.ReplaceAllStringFunc(endpoints[BaseKey]+tmpl, func(token string) string {
		v, ok := fields[token[1:]]
		if !ok || !truthy(v) {
			if missing == "" {
				missing = token[1:]
			}
			return token
		}
		return url.PathEscape(formatValue(v))
	})

	if missing != "" {
		return "", newRouteError(ErrUnresolvedParam, operation, missing)
	}
	return resolved, nil
}

// usesParam reports whether the template for operation contains :name.
func usesParam(endpoints Endpoints, operation, name string) bool {
	for _, token := range placeholderPattern.FindAllString(endpoints[BaseKey]+endpoints[operation], -1) {
		if token[1:] == name {
			return true
		}
	}
	return false
}
