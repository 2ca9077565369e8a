package diffkit

// Ops is the serializable view of an Instruction's operations, used by
// the journal payload and the harness golden traces. All slices are
// non-nil so JSON output is stable ([] rather than null).
type Ops struct {
	DeleteSections []int     `json:"delete_sections"`
	InsertSections []int     `json:"insert_sections"`
	MoveSections   []Move    `json:"move_sections"`
	DeleteRows     []RowPath `json:"delete_rows"`
	InsertRows     []RowPath `json:"insert_rows"`
	MoveRows       []RowMove `json:"move_rows"`
}

// Ops returns a deep copy of the instruction's operations.
func (in *Instruction) Ops() Ops {
	ops := Ops{
		DeleteSections: make([]int, len(in.DeleteSections)),
		InsertSections: make([]int, len(in.InsertSections)),
		MoveSections:   make([]Move, len(in.MoveSections)),
		DeleteRows:     make([]RowPath, len(in.DeleteRows)),
		InsertRows:     make([]RowPath, len(in.InsertRows)),
		MoveRows:       make([]RowMove, len(in.MoveRows)),
	}
	copy(ops.DeleteSections, in.DeleteSections)
	copy(ops.InsertSections, in.InsertSections)
	copy(ops.MoveSections, in.MoveSections)
	copy(ops.DeleteRows, in.DeleteRows)
	copy(ops.InsertRows, in.InsertRows)
	copy(ops.MoveRows, in.MoveRows)
	return ops
}
