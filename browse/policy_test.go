package browse

import "testing"

func TestGetLoadSet_WindowAndPriorityOrder(t *testing.T) {
	policy := LoadingPolicy{LookAhead: 2, LookBehind: 1, BufferZone: 1}

	pivot, set := policy.GetLoadSet(5, 5, 10)
	if pivot != 5 {
		t.Errorf("pivot = %d, want 5", pivot)
	}
	want := []int{5, 6, 7, 8, 4, 3}
	if len(set) != len(want) {
		t.Fatalf("set = %v, want %v", set, want)
	}
	for i := range want {
		if set[i] != want[i] {
			t.Fatalf("set = %v, want %v", set, want)
		}
	}
}

func TestGetLoadSet_Hysteresis(t *testing.T) {
	policy := LoadingPolicy{LookAhead: 2, LookBehind: 1, BufferZone: 2}

	t.Run("pivot holds while shown stays inside the buffer zone", func(t *testing.T) {
		pivot := 10
		for _, shown := range []int{10, 11, 12, 9, 8, 10} {
			newPivot, set := policy.GetLoadSet(pivot, shown, 100)
			if newPivot != 10 {
				t.Fatalf("pivot moved to %d at shown=%d", newPivot, shown)
			}
			if !contains(set, shown) {
				t.Fatalf("resident set %v misses shown %d", set, shown)
			}
			pivot = newPivot
		}
	})

	t.Run("pivot resets once shown leaves the buffer zone", func(t *testing.T) {
		newPivot, _ := policy.GetLoadSet(10, 13, 100)
		if newPivot != 13 {
			t.Errorf("pivot = %d, want 13", newPivot)
		}
		newPivot, _ = policy.GetLoadSet(10, 7, 100)
		if newPivot != 7 {
			t.Errorf("pivot = %d, want 7", newPivot)
		}
	})
}

func TestGetLoadSet_Properties(t *testing.T) {
	policy := LoadingPolicy{LookAhead: 3, LookBehind: 2, BufferZone: 1}

	for size := 1; size <= 12; size++ {
		for pivot := 0; pivot < size; pivot++ {
			for shown := 0; shown < size; shown++ {
				newPivot, set := policy.GetLoadSet(pivot, shown, size)

				if !contains(set, shown) {
					t.Fatalf("size=%d pivot=%d shown=%d: set %v misses shown", size, pivot, shown, set)
				}
				if len(set) > policy.MaxResidentCount() {
					t.Fatalf("size=%d pivot=%d shown=%d: set %v larger than max %d", size, pivot, shown, set, policy.MaxResidentCount())
				}

				// Priority order: every position at or ahead of the pivot
				// precedes every position behind it, each side ordered by
				// distance from the pivot.
				seenBehind := false
				lastAhead, lastBehind := -1, -1
				for _, idx := range set {
					if idx < 0 || idx >= size {
						t.Fatalf("size=%d pivot=%d shown=%d: out-of-range index %d", size, pivot, shown, idx)
					}
					if idx >= newPivot {
						if seenBehind {
							t.Fatalf("ahead-of-pivot index %d after behind indices in %v", idx, set)
						}
						if lastAhead >= 0 && idx-newPivot <= lastAhead {
							t.Fatalf("ahead side not ordered by distance in %v", set)
						}
						lastAhead = idx - newPivot
					} else {
						seenBehind = true
						if lastBehind >= 0 && newPivot-idx <= lastBehind {
							t.Fatalf("behind side not ordered by distance in %v", set)
						}
						lastBehind = newPivot - idx
					}
				}
			}
		}
	}
}

func TestGetLoadSet_EmptyCollection(t *testing.T) {
	policy := LoadingPolicy{LookAhead: 1, LookBehind: 1, BufferZone: 1}
	if _, set := policy.GetLoadSet(0, 0, 0); set != nil {
		t.Errorf("set = %v, want nil for empty collection", set)
	}
}

func TestMaxResidentCount(t *testing.T) {
	policy := LoadingPolicy{LookAhead: 2, LookBehind: 1, BufferZone: 1}
	if got := policy.MaxResidentCount(); got != 6 {
		t.Errorf("MaxResidentCount() = %d, want 6", got)
	}
}

func contains(set []int, idx int) bool {
	for _, v := range set {
		if v == idx {
			return true
		}
	}
	return false
}
