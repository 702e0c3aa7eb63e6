package fixture

// Material ids used by Generate.
const (
	MaterialConcrete = 1
	MaterialGlass    = 2
	MaterialSteel    = 3
)

// Element types used by Generate.
const (
	TypeSlab   = "IfcSlab"
	TypeColumn = "IfcColumn"
	TypeWindow = "IfcWindow"
)

const (
	storeyHeight = 3.0
	baySize      = 6.0
	columnWidth  = 0.4
	slabDepth    = 0.3
)

// Generate lays out a storeys x bays x bays frame building: one slab per
// storey, a column at every bay corner and a window pane on each bay of the
// south facade. Element ids are assigned in that order starting at 1.
func Generate(modelID, storeys, bays int) *Building {
	glass := float32(0.4)
	b := &Building{
		Name:    "generated",
		ModelID: modelID,
		Materials: []MaterialSpec{
			{ID: MaterialConcrete, Name: "concrete", Color: [3]float32{0.72, 0.72, 0.7}},
			{ID: MaterialGlass, Name: "glass", Color: [3]float32{0.55, 0.75, 0.9}, Opacity: &glass},
			{ID: MaterialSteel, Name: "steel", Color: [3]float32{0.35, 0.38, 0.42}},
		},
	}

	nextID := 1
	add := func(typ string, mat int, box BoxSpec) {
		b.Elements = append(b.Elements, ElementSpec{ID: nextID, Type: typ, Material: mat, Box: &box})
		nextID++
	}

	width := float32(bays) * baySize
	for s := 0; s < storeys; s++ {
		y := float32(s) * storeyHeight
		add(TypeSlab, MaterialConcrete, BoxSpec{
			Min: [3]float32{0, y, 0},
			Max: [3]float32{width, y + slabDepth, width},
		})
	}

	for s := 0; s < storeys; s++ {
		y := float32(s)*storeyHeight + slabDepth
		for i := 0; i <= bays; i++ {
			for j := 0; j <= bays; j++ {
				x, z := float32(i)*baySize, float32(j)*baySize
				add(TypeColumn, MaterialSteel, BoxSpec{
					Min: [3]float32{x - columnWidth/2, y, z - columnWidth/2},
					Max: [3]float32{x + columnWidth/2, y + storeyHeight - slabDepth, z + columnWidth/2},
				})
			}
		}
	}

	for s := 0; s < storeys; s++ {
		y := float32(s)*storeyHeight + slabDepth
		for i := 0; i < bays; i++ {
			x := float32(i) * baySize
			add(TypeWindow, MaterialGlass, BoxSpec{
				Min: [3]float32{x + columnWidth, y + 0.5, -0.05},
				Max: [3]float32{x + baySize - columnWidth, y + storeyHeight - slabDepth - 0.3, 0.05},
			})
		}
	}

	return b
}
