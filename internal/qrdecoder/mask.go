package qrdecoder

// maskFuncs are the eight fixed data-mask formulas, indexed by the
// 3-bit mask pattern read from format info. A true result flips the
// module at (row, col) when un-masking.
// MaskFunc exposes one of the eight mask formulas by pattern index, for
// internal/qrfixture to apply the same masking the parser undoes.
func MaskFunc(pattern int) func(row, col int) bool {
	return maskFuncs[pattern]
}

var maskFuncs = [8]func(row, col int) bool{
	func(row, col int) bool { return (row+col)%2 == 0 },
	func(row, col int) bool { return row%2 == 0 },
	func(row, col int) bool { return col%3 == 0 },
	func(row, col int) bool { return (row+col)%3 == 0 },
	func(row, col int) bool { return (row/2+col/3)%2 == 0 },
	func(row, col int) bool { return (row*col)%2+(row*col)%3 == 0 },
	func(row, col int) bool { return ((row*col)%2+(row*col)%3)%2 == 0 },
	func(row, col int) bool { return ((row+col)%2+(row*col)%3)%2 == 0 },
}
