package fatfs

import "github.com/gofatfs/fatfs/checkpoint"

// table maps a cluster number to its successor, dispatching on the
// BPB's variant for entry width (16 vs 32 bits, the latter masked to
// 28 bits) and end-of-chain band.
type table struct {
	c       cursor
	variant Variant
}

func newTable(img Image, bpb BPB) table {
	return table{
		c:       newCursor(img).plus(int64(bpb.fatRegionStart()) * int64(bpb.BytesPerSector)),
		variant: bpb.Variant,
	}
}

// next returns the raw successor entry for cluster, masked to the
// variant's width. Callers must not query clusters 0 or 1; the table
// does not range-check them.
func (t table) next(clusterNumber uint32) (uint32, error) {
	switch t.variant {
	case Fat32Style:
		v, err := t.c.u32(int(clusterNumber) * 4)
		if err != nil {
			return 0, checkpoint.Wrap(err, ErrImage)
		}
		return v & 0x0FFFFFFF, nil
	default:
		v, err := t.c.u16(int(clusterNumber) * 2)
		if err != nil {
			return 0, checkpoint.Wrap(err, ErrImage)
		}
		return uint32(v), nil
	}
}

// isEnd reports whether entry denotes end-of-chain for this variant.
// Any entry whose value falls in the end-of-chain band is treated as
// the terminal sentinel, not just the single all-ones value (see
// SPEC_FULL.md Open Question #2).
func (t table) isEnd(entry uint32) bool {
	if t.variant == Fat32Style {
		return entry >= 0x0FFFFFF8 && entry <= 0x0FFFFFFF
	}
	return entry >= 0xFFF8 && entry <= 0xFFFF
}
