package tables

// DumpWriter is the external collaborator interface for persisting a built
// PhysicsTables to a binary dump. Spec §5/§6 describe the original's single
// arena allocation with pointers relocated to byte offsets before writing
// and back to pointers on load; Go has no raw pointer arithmetic to
// relocate, so the Go realization of that discipline is an explicit offset
// descriptor written alongside the flat data rather than a memcpy of
// pointer-laden structs. Only the interface is specified here (spec §1
// scopes the concrete writer out as an external collaborator); Descriptor
// below is the shared schema a writer/reader pair must agree on.
type DumpWriter interface {
	WriteDump(t *PhysicsTables) ([]byte, error)
}

// DumpReader is the writer's inverse.
type DumpReader interface {
	ReadDump(data []byte) (*PhysicsTables, error)
}

// Descriptor records, for one arena-serialized PhysicsTables, the byte
// offset and length of each flattened slice so a DumpReader can reconstruct
// typed slices as views into one contiguous buffer without relocating
// pointers (Go slices already carry their own bounds; only the offsets need
// to travel). This is the "pointer becomes offset" relocation idiom of
// spec §5/§6, expressed the idiomatic-Go way.
type Descriptor struct {
	GridOffset, GridLen int

	// One entry per material, in PhysicsTables.Materials order. Each field
	// is a (offset, len) pair into the dump's shared float64 payload.
	Materials []MaterialDescriptor
}

// MaterialDescriptor is one material's slice layout within a Descriptor.
type MaterialDescriptor struct {
	Name string

	CSDARangeOffset, CSDARangeLen int
	TotalLossOffset, TotalLossLen int
}

// Relocate builds a Descriptor for t, assuming a caller-supplied
// serialization will lay out each table's (xs, ys, derivs) triple
// contiguously in file order; the actual byte writing is left to a
// DumpWriter implementation.
func Relocate(t *PhysicsTables) Descriptor {
	d := Descriptor{GridLen: len(t.Grid)}
	offset := len(t.Grid)
	for _, m := range t.Materials {
		md := MaterialDescriptor{Name: m.Name}
		if m.CSDARange != nil {
			md.CSDARangeOffset = offset
			md.CSDARangeLen = m.CSDARange.Len()
			offset += md.CSDARangeLen
		}
		if m.TotalLoss != nil {
			md.TotalLossOffset = offset
			md.TotalLossLen = m.TotalLoss.Len()
			offset += md.TotalLossLen
		}
		d.Materials = append(d.Materials, md)
	}
	return d
}
