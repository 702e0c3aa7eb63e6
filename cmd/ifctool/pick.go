package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/ifcview/internal/engine/bvh"
)

var (
	flagFrom     string
	flagDir      string
	flagLeafSize int
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Cast a ray into the model and report the element it hits first",
	Args:  cobra.NoArgs,
	RunE:  runPick,
}

func init() {
	pickCmd.Flags().StringVar(&flagFrom, "from", "", "Ray origin as x,y,z (required)")
	pickCmd.Flags().StringVar(&flagDir, "dir", "0,-1,0", "Ray direction as x,y,z")
	pickCmd.Flags().IntVar(&flagLeafSize, "leaf-size", bvh.DefaultLeafSize, "Max triangles per BVH leaf")
	pickCmd.MarkFlagRequired("from")
	rootCmd.AddCommand(pickCmd)
}

func runPick(cmd *cobra.Command, args []string) error {
	origin, err := parseVec3(flagFrom)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	dir, err := parseVec3(flagDir)
	if err != nil {
		return fmt.Errorf("--dir: %w", err)
	}
	if dir.Len() == 0 {
		return fmt.Errorf("--dir must not be zero")
	}

	b, err := loadBuilding()
	if err != nil {
		return err
	}
	m, err := b.Model()
	if err != nil {
		return err
	}

	tree := bvh.Build(m.Mesh.Geometry, flagLeafSize)
	out := cmd.OutOrStdout()

	hit, ok := tree.Raycast(bvh.Ray{Origin: origin, Direction: dir.Normalize()})
	if !ok {
		fmt.Fprintln(out, "No hit")
		return nil
	}
	id, _ := m.ElementAt(hit.Face)
	el, _ := b.Element(id)

	fmt.Fprintf(out, "Element: %d\n", id)
	if el.Type != "" {
		fmt.Fprintf(out, "Type: %s\n", el.Type)
	}
	if el.Name != "" {
		fmt.Fprintf(out, "Name: %s\n", el.Name)
	}
	fmt.Fprintf(out, "Face: %d\n", hit.Face)
	fmt.Fprintf(out, "Distance: %.3f\n", hit.Distance)
	fmt.Fprintf(out, "Point: %s\n", formatVec(hit.Point))
	return nil
}
