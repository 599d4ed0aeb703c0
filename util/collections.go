package util

// RemoveDuplicatesFromList returns a copy of the given list with all duplicates
// removed, keeping the first occurrence of each element.
func RemoveDuplicatesFromList[S ~[]E, E comparable](list S) S {
	out := make(S, 0, len(list))
	present := make(map[E]bool, len(list))

	for _, value := range list {
		if present[value] {
			continue
		}

		present[value] = true

		out = append(out, value)
	}

	return out
}
