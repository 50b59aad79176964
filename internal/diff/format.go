package diff

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/variantify/internal/scene"
)

// String renders the tree as an indented, human-readable dump.
func (t *Tree) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s -> %s", label(t.Candidate()), t.Template().Name())
	if t.Invalid() {
		fmt.Fprintf(&sb, ": invalid: %s\n", t.Reason())
		return sb.String()
	}
	sb.WriteString("\n")
	writeNode(&sb, t.root, 1)
	return sb.String()
}

func writeNode(sb *strings.Builder, n *Node, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(sb, "%s%s", indent, n.template.Name())
	if n.expanded {
		sb.WriteString(" [expanded]")
	}
	if n.selected {
		fmt.Fprintf(sb, " [selected %d]", n.selectionIndex)
	}
	sb.WriteString("\n")

	for _, t := range n.addedBehaviors {
		fmt.Fprintf(sb, "%s  + behavior %s\n", indent, t)
	}
	for _, t := range n.removedBehaviors {
		fmt.Fprintf(sb, "%s  - behavior %s\n", indent, t)
	}
	for _, f := range n.modifiedFields {
		fmt.Fprintf(sb, "%s  ~ %s = %s\n", indent, f, scene.Describe(f.Value))
	}
	for _, c := range n.addedChildren {
		fmt.Fprintf(sb, "%s  + child %s\n", indent, c.Name())
	}
	for _, c := range n.children {
		writeNode(sb, c, depth+1)
	}
}
