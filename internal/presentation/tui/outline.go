package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/itemtree/pkg/domain"
)

// Outline renders a tree as a nested markdown list, one line per node, with its classes
// and attributes inline.
func Outline(root domain.NodeSpec) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", root.ID)
	root.Walk(func(path []string, spec domain.NodeSpec) bool {
		indent := strings.Repeat("  ", len(path)-1)
		fmt.Fprintf(&sb, "%s- **%s** `<%s>`", indent, spec.ID, spec.Tag)
		if len(spec.Classes) > 0 {
			fmt.Fprintf(&sb, " _.%s_", strings.Join(spec.Classes, " ."))
		}
		if len(spec.Attributes) > 0 {
			names := make([]string, 0, len(spec.Attributes))
			for k := range spec.Attributes {
				names = append(names, k)
			}
			sort.Strings(names)
			pairs := make([]string, 0, len(names))
			for _, k := range names {
				pairs = append(pairs, fmt.Sprintf("%s=%q", k, spec.Attributes[k]))
			}
			fmt.Fprintf(&sb, " `%s`", strings.Join(pairs, " "))
		}
		sb.WriteString("\n")
		return true
	})
	return sb.String()
}
