package proj

import "strings"

// Matches reports whether the project's name or description contains expr,
// ignoring case. An empty expr matches every project.
func (p Project) Matches(expr string) bool {
	expr = strings.ToLower(strings.TrimSpace(expr))
	if expr == "" {
		return true
	}

	return strings.Contains(strings.ToLower(p.Name), expr) ||
		strings.Contains(strings.ToLower(p.Description), expr)
}
