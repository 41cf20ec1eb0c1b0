package detector

import (
	"math"

	"github.com/ashokshau/yomu/internal/bitmatrix"
)

// AlignmentPattern is a located 1:1:1 alignment pattern center.
type AlignmentPattern struct {
	X, Y                float64
	EstimatedModuleSize float64
}

func (ap *AlignmentPattern) aboutEquals(moduleSize, i, j float64) bool {
	if math.Abs(i-ap.Y) <= moduleSize && math.Abs(j-ap.X) <= moduleSize {
		diff := math.Abs(moduleSize - ap.EstimatedModuleSize)
		return diff <= 1.0 || diff <= ap.EstimatedModuleSize
	}
	return false
}

func (ap *AlignmentPattern) combineEstimate(i, j, newModuleSize float64) *AlignmentPattern {
	return &AlignmentPattern{
		X:                   (ap.X + j) / 2.0,
		Y:                   (ap.Y + i) / 2.0,
		EstimatedModuleSize: (ap.EstimatedModuleSize + newModuleSize) / 2.0,
	}
}

// alignmentPatternFinder searches a bounded region around an estimated
// alignment-pattern location for the 1:1:1 ratio pattern.
type alignmentPatternFinder struct {
	image           *bitmatrix.BitMatrix
	possibleCenters []*AlignmentPattern
	startX, startY  int
	width, height   int
	moduleSize      float64
}

func (af *alignmentPatternFinder) find() *AlignmentPattern {
	startX := af.startX
	height := af.height
	maxJ := startX + af.width
	middleI := af.startY + height/2

	var stateCount [3]int
	for iGen := 0; iGen < height; iGen++ {
		i := middleI
		if iGen&1 == 0 {
			i += (iGen + 1) / 2
		} else {
			i -= (iGen + 1) / 2
		}

		stateCount = [3]int{}
		j := startX
		for j < maxJ && !af.image.Get(j, i) {
			j++
		}
		currentState := 0
		for j < maxJ {
			if af.image.Get(j, i) {
				if currentState == 1 {
					stateCount[1]++
				} else if currentState == 2 {
					if af.foundPatternCross(stateCount) {
						if confirmed := af.handlePossibleCenter(stateCount, i, j); confirmed != nil {
							return confirmed
						}
					}
					stateCount[0] = stateCount[2]
					stateCount[1] = 1
					stateCount[2] = 0
					currentState = 1
				} else {
					currentState++
					stateCount[currentState]++
				}
			} else {
				if currentState == 1 {
					currentState++
				}
				stateCount[currentState]++
			}
			j++
		}
		if af.foundPatternCross(stateCount) {
			if confirmed := af.handlePossibleCenter(stateCount, i, maxJ); confirmed != nil {
				return confirmed
			}
		}
	}

	if len(af.possibleCenters) > 0 {
		return af.possibleCenters[0]
	}
	return nil
}

func (af *alignmentPatternFinder) foundPatternCross(stateCount [3]int) bool {
	maxVariance := af.moduleSize / 2.0
	for _, c := range stateCount {
		if math.Abs(af.moduleSize-float64(c)) >= maxVariance {
			return false
		}
	}
	return true
}

func (af *alignmentPatternFinder) crossCheckVertical(startI, centerJ, maxCount, originalStateCountTotal int) float64 {
	maxI := af.image.Height()
	var sc [3]int

	i := startI
	for i >= 0 && af.image.Get(centerJ, i) && sc[1] <= maxCount {
		sc[1]++
		i--
	}
	if i < 0 || sc[1] > maxCount {
		return math.NaN()
	}
	for i >= 0 && !af.image.Get(centerJ, i) && sc[0] <= maxCount {
		sc[0]++
		i--
	}
	if sc[0] > maxCount {
		return math.NaN()
	}

	i = startI + 1
	for i < maxI && af.image.Get(centerJ, i) && sc[1] <= maxCount {
		sc[1]++
		i++
	}
	if i == maxI || sc[1] > maxCount {
		return math.NaN()
	}
	for i < maxI && !af.image.Get(centerJ, i) && sc[2] <= maxCount {
		sc[2]++
		i++
	}
	if sc[2] > maxCount {
		return math.NaN()
	}

	total := sc[0] + sc[1] + sc[2]
	if 5*intAbs(total-originalStateCountTotal) >= 2*originalStateCountTotal {
		return math.NaN()
	}
	if af.foundPatternCross(sc) {
		return float64(i-sc[2]) - float64(sc[1])/2.0
	}
	return math.NaN()
}

func (af *alignmentPatternFinder) handlePossibleCenter(stateCount [3]int, i, j int) *AlignmentPattern {
	total := stateCount[0] + stateCount[1] + stateCount[2]
	centerJ := float64(j-stateCount[2]) - float64(stateCount[1])/2.0
	centerI := af.crossCheckVertical(i, int(centerJ), 2*stateCount[1], total)
	if math.IsNaN(centerI) {
		return nil
	}
	estimatedModuleSize := float64(total) / 3.0
	for _, center := range af.possibleCenters {
		if center.aboutEquals(estimatedModuleSize, centerI, centerJ) {
			return center.combineEstimate(centerI, centerJ, estimatedModuleSize)
		}
	}
	af.possibleCenters = append(af.possibleCenters, &AlignmentPattern{
		X: centerJ, Y: centerI, EstimatedModuleSize: estimatedModuleSize,
	})
	return nil
}
