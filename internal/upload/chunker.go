package upload

// Range is a half-open byte range [Start, End).
type Range struct {
	Start int64
	End   int64
}

func (r Range) Len() int64 {
	return r.End - r.Start
}

// Split cuts size bytes into consecutive ranges of chunkSize bytes; the last
// range may be shorter. A zero size yields no ranges. A non-positive
// chunkSize means DefaultPartSize.
func Split(size, chunkSize int64) []Range {
	if size <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultPartSize
	}

	ranges := make([]Range, 0, (size+chunkSize-1)/chunkSize)
	for start := int64(0); start < size; start += chunkSize {
		ranges = append(ranges, Range{Start: start, End: min(start+chunkSize, size)})
	}
	return ranges
}
