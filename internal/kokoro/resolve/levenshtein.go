package resolve

// Distance computes the Levenshtein edit distance between a and b,
// operating on runes so multi-byte input is counted per character.
func Distance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Single-row dynamic programming; prev holds the previous row.
	prev := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur := prev[0]
		prev[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			next := min3(
				prev[j]+1,   // deletion
				prev[j-1]+1, // insertion
				cur+cost,    // substitution
			)
			cur = prev[j]
			prev[j] = next
		}
	}

	return prev[len(rb)]
}

// Similarity returns a normalized similarity score in [0, 1]:
// 1 − distance/max(len). Two empty strings are defined as similarity 1;
// exactly one empty string is similarity 0.
func Similarity(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	if la == 0 && lb == 0 {
		return 1
	}
	if la == 0 || lb == 0 {
		return 0
	}
	longest := la
	if lb > longest {
		longest = lb
	}
	return 1 - float64(Distance(a, b))/float64(longest)
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
