package entity

const BoardSize = 3

// WinCombos lists the winning lines as flat cell indexes (row*BoardSize + column).
var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is indexed as Board[x][y] where x is the row and y the column.
type Board [BoardSize][BoardSize]Mark

func InBounds(x, y int) bool {
	return x >= 0 && x < BoardSize && y >= 0 && y < BoardSize
}

func (that *Board) At(x, y int) Mark {
	return that[x][y]
}

func (that *Board) IsEmpty(x, y int) bool {
	return that[x][y] == EmptyCell
}

func (that *Board) cell(index int) Mark {
	return that[index/BoardSize][index%BoardSize]
}

// Winner returns the mark that owns a complete line, or EmptyCell when there is none.
func (that *Board) Winner() Mark {
	for _, combo := range WinCombos {
		a, b, c := that.cell(combo[0]), that.cell(combo[1]), that.cell(combo[2])
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	return EmptyCell
}

// HasLine reports whether player owns a complete line.
func (that *Board) HasLine(player Mark) bool {
	for _, combo := range WinCombos {
		if that.cell(combo[0]) == player && that.cell(combo[1]) == player && that.cell(combo[2]) == player {
			return true
		}
	}

	return false
}

func (that *Board) IsFull() bool {
	for _, row := range that {
		for _, cell := range row {
			if cell == EmptyCell {
				return false
			}
		}
	}

	return true
}
