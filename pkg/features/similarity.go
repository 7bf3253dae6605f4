package features

// SimilarityRatio computes the classic Ratcliff/Obershelp sequence-matching
// ratio between two strings: 2*M / (len(a)+len(b)) where M is the total
// length of recursively matched common substrings. Range [0, 1]; identical
// strings score 1. Used as a typosquatting proxy against trusted domains.
func SimilarityRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	matched := matchingTotal([]byte(a), []byte(b))
	return 2 * float64(matched) / float64(len(a)+len(b))
}

// matchingTotal finds the longest common substring, then recurses into the
// unmatched pieces on either side of it.
func matchingTotal(a, b []byte) int {
	aStart, bStart, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingTotal(a[:aStart], b[:bStart])
	total += matchingTotal(a[aStart+size:], b[bStart+size:])
	return total
}

func longestCommonSubstring(a, b []byte) (aStart, bStart, size int) {
	// lengths[j] is the match length ending at a[i-1], b[j-1]
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		// Walk b backwards so lengths[j-1] still holds the previous row
		for j := len(b); j >= 1; j-- {
			if a[i-1] == b[j-1] {
				lengths[j] = lengths[j-1] + 1
				if lengths[j] > size {
					size = lengths[j]
					aStart = i - size
					bStart = j - size
				}
			} else {
				lengths[j] = 0
			}
		}
	}
	return aStart, bStart, size
}
