package ratings

import "fmt"

// Rating is the 3-level per-image rating. Low is the implicit default for
// any image that has no stored entry.
type Rating int

const (
	Low Rating = iota
	Medium
	High
)

// maxLevel is the highest level stored in the sidecar file.
const maxLevel = 2

// FromLevel converts a persisted integer level to a Rating. Out-of-range
// values are clamped rather than rejected.
func FromLevel(level int) Rating {
	if level < 0 {
		return Low
	}
	if level > maxLevel {
		return High
	}
	return Rating(level)
}

// Level is the integer representation written to the sidecar file.
func (r Rating) Level() int {
	return int(r)
}

func (r Rating) String() string {
	switch r {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	}
	return fmt.Sprintf("rating(%d)", int(r))
}

// Parse converts a CLI argument to a Rating. Accepts the names low,
// medium and high as well as the levels 0, 1 and 2.
func Parse(s string) (Rating, error) {
	switch s {
	case "low", "0":
		return Low, nil
	case "medium", "1":
		return Medium, nil
	case "high", "2":
		return High, nil
	}
	return Low, fmt.Errorf("unknown rating %q (want low|medium|high or 0|1|2)", s)
}
