package detector

import "github.com/ashokshau/yomu/internal/bitmatrix"

// DetectAll locates every QR symbol it can find in a single image, up
// to maxSymbols (maxSymbols <= 0 means unbounded). It scans for
// finder-pattern centers once, then repeatedly selects the best
// remaining triplet, processes it into a Result, and excludes its
// three patterns (by pointer identity) from the next selection — so a
// finder pattern shared by two candidate triplets is claimed by only
// the first, higher-confidence symbol rather than appearing in both.
// alignmentAllowance is forwarded to each symbol's alignment-pattern
// search, in module-size units.
func DetectAll(image *bitmatrix.BitMatrix, tryHarder bool, maxSymbols int, alignmentAllowance float64) ([]*Result, error) {
	finder := &finderPatternFinder{image: image}
	if err := finder.scan(tryHarder); err != nil {
		return nil, err
	}

	var results []*Result
	claimed := make(map[*FinderPattern]bool)

	for maxSymbols <= 0 || len(results) < maxSymbols {
		patterns, err := finder.selectBestPatternsExcluding(claimed)
		if err != nil {
			break
		}
		info := orderFinderPatterns(patterns)

		claimed[info.BottomLeft] = true
		claimed[info.TopLeft] = true
		claimed[info.TopRight] = true

		result, err := processFinderPatternInfo(image, info, alignmentAllowance)
		if err != nil {
			continue
		}
		results = append(results, result)
	}

	if len(results) == 0 {
		return nil, errNotFound
	}
	return results, nil
}
