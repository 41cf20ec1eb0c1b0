package yomu

// ReassembleStructuredAppend orders and concatenates a set of decoded
// symbols that together form one Structured Append sequence (each
// produced by a separate Decode call against a physically separate
// symbol). It validates that every result carries StructuredAppend
// info, that they share one SequenceCount and parity byte, and that
// every index in [0, SequenceCount) is present exactly once.
func ReassembleStructuredAppend(results []*DecoderResult) (string, error) {
	if len(results) == 0 {
		return "", newErr(ArgumentError, "no results to reassemble")
	}

	first := results[0].StructuredAppend
	if first == nil {
		return "", newErr(ArgumentError, "result 0 carries no StructuredAppend info")
	}
	count := first.SequenceCount
	parity := first.Parity

	ordered := make([]*DecoderResult, count)
	seen := make([]bool, count)
	for i, r := range results {
		sa := r.StructuredAppend
		if sa == nil {
			return "", newErr(ArgumentError, "result %d carries no StructuredAppend info", i)
		}
		if sa.SequenceCount != count {
			return "", newErr(ArgumentError, "result %d has sequence count %d, expected %d", i, sa.SequenceCount, count)
		}
		if sa.Parity != parity {
			return "", newErr(ArgumentError, "result %d has parity 0x%x, expected 0x%x", i, sa.Parity, parity)
		}
		if sa.SequenceIndex < 0 || sa.SequenceIndex >= count {
			return "", newErr(ArgumentError, "result %d has out-of-range sequence index %d", i, sa.SequenceIndex)
		}
		if seen[sa.SequenceIndex] {
			return "", newErr(ArgumentError, "duplicate sequence index %d", sa.SequenceIndex)
		}
		seen[sa.SequenceIndex] = true
		ordered[sa.SequenceIndex] = r
	}
	for i, ok := range seen {
		if !ok {
			return "", newErr(ArgumentError, "missing sequence index %d of %d", i, count)
		}
	}

	var text string
	for _, r := range ordered {
		text += r.Text
	}
	return text, nil
}
