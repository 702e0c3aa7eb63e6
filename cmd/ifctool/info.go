package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show model statistics, materials and element types",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	b, err := loadBuilding()
	if err != nil {
		return err
	}
	m, err := b.Model()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	g := m.Mesh.Geometry

	fmt.Fprintln(out, "Building Information")
	fmt.Fprintln(out, "====================")
	if b.Name != "" {
		fmt.Fprintf(out, "Name: %s\n", b.Name)
	}
	fmt.Fprintf(out, "Model: %d\n\n", m.ID)

	fmt.Fprintln(out, "Mesh:")
	fmt.Fprintf(out, "  Elements: %d\n", len(m.Faces))
	fmt.Fprintf(out, "  Triangles: %d\n", g.TriangleCount())
	fmt.Fprintf(out, "  Vertices: %d\n", g.VertexCount())
	fmt.Fprintf(out, "  Draw groups: %d\n\n", len(g.Groups))

	box := g.BoundingBox()
	if !box.Empty() {
		fmt.Fprintln(out, "Bounding Box:")
		fmt.Fprintf(out, "  Min: %s\n", formatVec(box.Min))
		fmt.Fprintf(out, "  Max: %s\n\n", formatVec(box.Max))
	}

	fmt.Fprintln(out, "Materials:")
	for _, id := range m.MaterialIDs() {
		items := m.Items[id]
		fmt.Fprintf(out, "  %-4d %-12s opacity %.2f  %d elements\n",
			id, items.Material.Name, items.Material.Opacity, len(items.Geometries))
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Element types:")
	types := b.Types()
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		label := name
		if label == "" {
			label = "(untyped)"
		}
		fmt.Fprintf(out, "  %-12s %d\n", label, types[name])
	}
	return nil
}
