package scene

import (
	"fmt"
	"io"
	"strings"

	"github.com/Faultbox/strider/pkg/math"
)

// Dump writes the attached tree, one node per line, indented by depth.
func (g *Graph) Dump(w io.Writer) error {
	var err error
	g.Traverse(func(n *Node, world math.Mat4, depth int) {
		if err != nil {
			return
		}
		p := world.Position()
		line := fmt.Sprintf("%s%s pos=(%.3f, %.3f, %.3f)", strings.Repeat("  ", depth), n.Name, p.X, p.Y, p.Z)
		if n.Binding.HasVisual() {
			line += fmt.Sprintf(" [%s/%s]", n.Binding.Mesh, n.Binding.Material)
		}
		_, err = fmt.Fprintln(w, line)
	})
	return err
}
