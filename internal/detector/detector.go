package detector

import (
	"errors"
	"math"

	"github.com/ashokshau/yomu/internal/bitmatrix"
	"github.com/ashokshau/yomu/internal/transform"
)

// errNotFound is returned internally when a search step fails; Detect
// translates it into the package's exported sentinel.
var errNotFound = errors.New("detector: pattern not found")

// ErrNotFound is returned by Detect when no plausible finder-pattern
// triplet exists in the image.
var ErrNotFound = errNotFound

// Point is a located image coordinate, used for the symbol's corner
// points in the detection result.
type Point struct {
	X, Y float64
}

// Result is a located, sampled QR symbol: its module grid plus the
// corner points used to find it (bottomLeft, topLeft, topRight, and —
// when one was found — the bottom-right alignment pattern).
type Result struct {
	Bits       *bitmatrix.BitMatrix
	Dimension  int
	Corners    []Point
	ModuleSize float64
}

// defaultAlignmentAllowance is used by callers that have no opinion on
// the alignment-pattern search radius (in module-size units).
const defaultAlignmentAllowance = 15.0

// Detect locates a single QR symbol in a binary image. tryHarder
// disables the coarse row-skip derived from the image height, scanning
// every third row (the minimum skip) instead — used on a retry pass
// after a first attempt at default effort fails.
// alignmentAllowance sets the alignment-pattern search radius, in
// module-size units, around the estimated center.
func Detect(image *bitmatrix.BitMatrix, tryHarder bool, alignmentAllowance float64) (*Result, error) {
	finder := &finderPatternFinder{image: image}
	info, err := finder.find(tryHarder)
	if err != nil {
		return nil, err
	}
	return processFinderPatternInfo(image, info, alignmentAllowance)
}

func processFinderPatternInfo(image *bitmatrix.BitMatrix, info *FinderPatternInfo, alignmentAllowance float64) (*Result, error) {
	topLeft, topRight, bottomLeft := info.TopLeft, info.TopRight, info.BottomLeft

	moduleSize := calculateModuleSize(image, topLeft, topRight, bottomLeft)
	if moduleSize < 1.0 {
		return nil, errNotFound
	}

	dimension, err := computeDimension(topLeft, topRight, bottomLeft, moduleSize)
	if err != nil {
		return nil, err
	}

	var alignmentPattern *AlignmentPattern
	version := (dimension - 17) / 4
	if version >= 2 {
		bottomRightX := topRight.X - topLeft.X + bottomLeft.X
		bottomRightY := topRight.Y - topLeft.Y + bottomLeft.Y

		modulesBetweenFPCenters := dimension - 7
		correctionToTopLeft := 1.0 - 3.0/float64(modulesBetweenFPCenters)
		estAlignmentX := int(topLeft.X + correctionToTopLeft*(bottomRightX-topLeft.X))
		estAlignmentY := int(topLeft.Y + correctionToTopLeft*(bottomRightY-topLeft.Y))

		alignmentPattern = findAlignmentInRegion(image, moduleSize, estAlignmentX, estAlignmentY, alignmentAllowance)
	}

	xform := createTransform(topLeft, topRight, bottomLeft, alignmentPattern, dimension)
	bits, err := transform.SampleGrid(image, dimension, xform)
	if err != nil {
		return nil, err
	}

	corners := []Point{
		{bottomLeft.X, bottomLeft.Y},
		{topLeft.X, topLeft.Y},
		{topRight.X, topRight.Y},
	}
	if alignmentPattern != nil {
		corners = append(corners, Point{alignmentPattern.X, alignmentPattern.Y})
	}

	return &Result{Bits: bits, Dimension: dimension, Corners: corners, ModuleSize: moduleSize}, nil
}

func computeDimension(topLeft, topRight, bottomLeft *FinderPattern, moduleSize float64) (int, error) {
	tltr := mathRound(distanceFP(topLeft, topRight) / moduleSize)
	tlbl := mathRound(distanceFP(topLeft, bottomLeft) / moduleSize)
	dimension := (tltr+tlbl)/2 + 7
	switch dimension & 0x03 {
	case 0:
		dimension++
	case 2:
		dimension--
	case 3:
		dimension -= 2
	}
	if dimension < 21 {
		return 0, errNotFound
	}
	return dimension, nil
}

func mathRound(d float64) int {
	if d < 0 {
		return int(d - 0.5)
	}
	return int(d + 0.5)
}

func calculateModuleSize(image *bitmatrix.BitMatrix, topLeft, topRight, bottomLeft *FinderPattern) float64 {
	return (calculateModuleSizeOneWay(image, topLeft, topRight) +
		calculateModuleSizeOneWay(image, topLeft, bottomLeft)) / 2.0
}

func calculateModuleSizeOneWay(image *bitmatrix.BitMatrix, pattern, other *FinderPattern) float64 {
	est1 := sizeOfBlackWhiteBlackRunBothWays(image, int(pattern.X), int(pattern.Y), int(other.X), int(other.Y))
	est2 := sizeOfBlackWhiteBlackRunBothWays(image, int(other.X), int(other.Y), int(pattern.X), int(pattern.Y))
	if math.IsNaN(est1) {
		return est2 / 7.0
	}
	if math.IsNaN(est2) {
		return est1 / 7.0
	}
	return (est1 + est2) / 14.0
}

func sizeOfBlackWhiteBlackRunBothWays(image *bitmatrix.BitMatrix, fromX, fromY, toX, toY int) float64 {
	result := sizeOfBlackWhiteBlackRun(image, fromX, fromY, toX, toY)

	scale := 1.0
	otherToX := fromX - (toX - fromX)
	if otherToX < 0 {
		scale = float64(fromX) / float64(fromX-otherToX)
		otherToX = 0
	} else if otherToX >= image.Width() {
		scale = float64(image.Width()-1-fromX) / float64(otherToX-fromX)
		otherToX = image.Width() - 1
	}
	otherToY := int(float64(fromY) - float64(toY-fromY)*scale)

	scale = 1.0
	if otherToY < 0 {
		scale = float64(fromY) / float64(fromY-otherToY)
		otherToY = 0
	} else if otherToY >= image.Height() {
		scale = float64(image.Height()-1-fromY) / float64(otherToY-fromY)
		otherToY = image.Height() - 1
	}
	otherToX = int(float64(fromX) + float64(otherToX-fromX)*scale)

	result += sizeOfBlackWhiteBlackRun(image, fromX, fromY, otherToX, otherToY)
	return result - 1.0
}

func sizeOfBlackWhiteBlackRun(image *bitmatrix.BitMatrix, fromX, fromY, toX, toY int) float64 {
	steep := intAbs(toY-fromY) > intAbs(toX-fromX)
	if steep {
		fromX, fromY = fromY, fromX
		toX, toY = toY, toX
	}

	dx := intAbs(toX - fromX)
	dy := intAbs(toY - fromY)
	errAcc := -dx / 2
	xstep := 1
	if fromX > toX {
		xstep = -1
	}
	ystep := 1
	if fromY > toY {
		ystep = -1
	}

	state := 0
	xLimit := toX + xstep
	x, y := fromX, fromY
	for ; x != xLimit; x += xstep {
		realX, realY := x, y
		if steep {
			realX, realY = y, x
		}

		if (state == 1) == image.Get(realX, realY) {
			if state == 2 {
				return distancePt(x, y, fromX, fromY)
			}
			state++
		}

		errAcc += dy
		if errAcc > 0 {
			if y == toY {
				break
			}
			y += ystep
			errAcc -= dx
		}
	}

	if state == 2 {
		return distancePt(toX+xstep, toY, fromX, fromY)
	}
	return math.NaN()
}

func distancePt(x1, y1, x2, y2 int) float64 {
	dx := float64(x1 - x2)
	dy := float64(y1 - y2)
	return math.Sqrt(dx*dx + dy*dy)
}

func createTransform(topLeft, topRight, bottomLeft *FinderPattern, alignmentPattern *AlignmentPattern, dimension int) *transform.PerspectiveTransform {
	dimMinusThree := float64(dimension) - 3.5
	var bottomRightX, bottomRightY, sourceBottomRightX, sourceBottomRightY float64

	if alignmentPattern != nil {
		bottomRightX = alignmentPattern.X
		bottomRightY = alignmentPattern.Y
		sourceBottomRightX = dimMinusThree - 3.0
		sourceBottomRightY = sourceBottomRightX
	} else {
		bottomRightX = (topRight.X - topLeft.X) + bottomLeft.X
		bottomRightY = (topRight.Y - topLeft.Y) + bottomLeft.Y
		sourceBottomRightX = dimMinusThree
		sourceBottomRightY = dimMinusThree
	}

	return transform.QuadrilateralToQuadrilateral(
		3.5, 3.5, dimMinusThree, 3.5, sourceBottomRightX, sourceBottomRightY, 3.5, dimMinusThree,
		topLeft.X, topLeft.Y, topRight.X, topRight.Y, bottomRightX, bottomRightY, bottomLeft.X, bottomLeft.Y,
	)
}

func findAlignmentInRegion(image *bitmatrix.BitMatrix, overallEstModuleSize float64, estAlignmentX, estAlignmentY int, allowanceFactor float64) *AlignmentPattern {
	allowance := int(allowanceFactor * overallEstModuleSize)
	alignmentAreaLeftX := max(0, estAlignmentX-allowance)
	alignmentAreaRightX := min(image.Width()-1, estAlignmentX+allowance)
	if float64(alignmentAreaRightX-alignmentAreaLeftX) < overallEstModuleSize*3 {
		return nil
	}
	alignmentAreaTopY := max(0, estAlignmentY-allowance)
	alignmentAreaBottomY := min(image.Height()-1, estAlignmentY+allowance)
	if float64(alignmentAreaBottomY-alignmentAreaTopY) < overallEstModuleSize*3 {
		return nil
	}

	finder := &alignmentPatternFinder{
		image:      image,
		startX:     alignmentAreaLeftX,
		startY:     alignmentAreaTopY,
		width:      alignmentAreaRightX - alignmentAreaLeftX,
		height:     alignmentAreaBottomY - alignmentAreaTopY,
		moduleSize: overallEstModuleSize,
	}
	return finder.find()
}
