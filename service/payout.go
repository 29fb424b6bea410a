package service

// Apportion splits distribute across stakes proportionally using the
// largest-remainder method. Each stake first receives its floored
// proportional share; the leftover units go one each to the stakes with
// the largest remainders, earlier stakes winning ties. The returned shares
// always sum to exactly distribute.
//
// All arithmetic is integer. stake*distribute stays well inside int64 for
// any realistic pool.
func Apportion(stakes []int64, distribute int64) []int64 {
	shares := make([]int64, len(stakes))
	if distribute <= 0 || len(stakes) == 0 {
		return shares
	}

	var total int64
	for _, s := range stakes {
		total += s
	}
	if total <= 0 {
		return shares
	}

	remainders := make([]int64, len(stakes))
	var allocated int64
	for i, s := range stakes {
		shares[i] = s * distribute / total
		remainders[i] = s * distribute % total
		allocated += shares[i]
	}

	for leftover := distribute - allocated; leftover > 0; leftover-- {
		best := -1
		for i, r := range remainders {
			if best == -1 || r > remainders[best] {
				best = i
			}
		}
		shares[best]++
		remainders[best] = -1
	}

	return shares
}
