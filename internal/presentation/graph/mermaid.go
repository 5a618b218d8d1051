package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/itemtree/pkg/domain"
)

// GraphOverlay contains query results and focus to visualize on the graph.
// Entries are id paths joined with "/", as produced by domain.NodeSpec.Walk.
type GraphOverlay struct {
	Matches []string
	Current string
}

// GenerateMermaid produces a Mermaid flowchart of the tree described by root.
// It applies semantic styling:
// - Widget: [[Subroutine]]
// - Options panel: [/Parallelogram/]
// - Foreign namespace (SVG, MathML): ((Circle))
// - Default: [Rectangle]
func GenerateMermaid(root domain.NodeSpec, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	root.Walk(func(path []string, spec domain.NodeSpec) bool {
		safeID := sanitizeMermaidID(strings.Join(path, "/"))

		opener, closer := "[", "]"
		switch {
		case spec.Kind == domain.KindWidget || spec.HasClass(domain.ClassWidget):
			opener, closer = "[[", "]]"
		case spec.Kind == domain.KindOptions || spec.HasClass(domain.ClassOptions):
			opener, closer = "[/", "/]"
		case spec.Namespace != "" && spec.Namespace != domain.NamespaceHTML:
			opener, closer = "((", "))"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label(spec), closer))

		if len(path) > 1 {
			parent := sanitizeMermaidID(strings.Join(path[:len(path)-1], "/"))
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", parent, safeID))
		}
		return true
	})

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme
		sb.WriteString("    classDef match fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, p := range overlay.Matches {
			safeID := sanitizeMermaidID(p)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s match;\n", safeID))
			}
		}
		if overlay.Current != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.Current)))
		}
	}

	return sb.String()
}

// label renders a node the way a CSS selector would address it.
func label(spec domain.NodeSpec) string {
	var b strings.Builder
	b.WriteString(spec.Tag)
	b.WriteString("#")
	b.WriteString(spec.ID)
	for _, c := range spec.Classes {
		b.WriteString(".")
		b.WriteString(c)
	}
	return strings.ReplaceAll(b.String(), "\"", "'")
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", "#", "_", " ", "_", ":", "_")
	return r.Replace(id)
}
