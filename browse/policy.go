package browse

// LoadingPolicy decides which collection positions should be resident
// around the shown image. It is a pure function of its inputs and the
// three configured counts, which keeps it testable without any threading.
type LoadingPolicy struct {
	// LookAhead and LookBehind extend the resident window beyond the
	// buffer zone, asymmetrically: stepping forward is the common case.
	LookAhead  int
	LookBehind int
	// BufferZone is the radius around the pivot within which navigation
	// does not move the pivot. This hysteresis avoids re-triggering loads
	// on every single-step move.
	BufferZone int
}

// GetLoadSet computes the new pivot and the positions that should be
// resident, ordered by load priority: positions at or ahead of the pivot
// come before positions behind it, and within each side closer positions
// come first. A consumer with limited worker throughput therefore always
// finishes the most immediately useful loads first.
func (p LoadingPolicy) GetLoadSet(pivot, shown, size int) (int, []int) {
	if size <= 0 {
		return pivot, nil
	}

	if shown < pivot-p.BufferZone || shown > pivot+p.BufferZone {
		pivot = shown
	}
	if pivot < 0 {
		pivot = 0
	}
	if pivot > size-1 {
		pivot = size - 1
	}

	lo := pivot - p.BufferZone - p.LookBehind
	if lo < 0 {
		lo = 0
	}
	hi := pivot + p.BufferZone + p.LookAhead
	if hi > size-1 {
		hi = size - 1
	}

	set := make([]int, 0, hi-lo+1)
	for i := pivot; i <= hi; i++ {
		set = append(set, i)
	}
	for i := pivot - 1; i >= lo; i-- {
		set = append(set, i)
	}

	return pivot, set
}

// MaxResidentCount is the largest number of positions GetLoadSet can
// return, used to size the image cache up front.
func (p LoadingPolicy) MaxResidentCount() int {
	return 1 + 2*p.BufferZone + p.LookAhead + p.LookBehind
}
