package sliceutil

// Chunk splits items into consecutive pages of at most size elements.
// It returns ceil(len(items)/size) pages; nil for empty input or size < 1.
// Pages share the backing array of items.
func Chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 || size < 1 {
		return nil
	}

	pages := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		pages = append(pages, items[start:end:end])
	}
	return pages
}
