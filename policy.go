package arena

// Policy names how an allocator treats released and resized blocks.
type Policy struct {
	Name string
	// ReusesFreed is set when deallocated blocks can serve later allocations.
	ReusesFreed bool
	// ResizesInPlace is set when grow and shrink may keep the block address.
	ResizesInPlace bool
}

// BumpPolicy is the policy of every Handle: deallocate is a no-op, grow and
// shrink always carve a fresh block and copy, and memory comes back only when
// the whole arena is reset or released.
var BumpPolicy = Policy{Name: "bump"}

// ResizeCost returns the bytes a resize from old to new carves from the
// arena, not counting alignment padding.
func (p Policy) ResizeCost(old, new Layout) int {
	if p.ResizesInPlace {
		return max(new.Size-old.Size, 0)
	}
	return new.Size
}

// GrowthFootprint returns the bytes a Vec consumes while growing from empty
// to n elements of the given layout one push at a time, not counting
// alignment padding.
func (p Policy) GrowthFootprint(n int, elem Layout) int {
	total, capacity := 0, 0
	for capacity < n {
		next := nextCapacity(capacity, capacity+1, elem.Size)
		if p.ReusesFreed || p.ResizesInPlace {
			total = next * elem.Size
		} else {
			total += next * elem.Size
		}
		capacity = next
	}
	return total
}
