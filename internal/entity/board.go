package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tris-server/internal/apperror"
)

const BoardSize = 9

// Cell holds either EmptyCell or the seat that claimed it.
type Cell int

const EmptyCell Cell = 0

// WinCombos - every row, column and diagonal of the 3x3 board, row-major indices.
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

// Board is the 3x3 grid of one match. It is a value type: a Match owns its copy.
type Board [BoardSize]Cell

// Place claims cell for seat. Out of range and occupied cells are rejected and the board is left untouched.
func (that *Board) Place(cell int, seat Seat) error {
	if cell < 0 || cell >= BoardSize {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that[cell] != EmptyCell {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	that[cell] = Cell(seat)

	return nil
}

// CheckWinner - returns the seat holding a full line, or NoSeat.
func (that *Board) CheckWinner() Seat {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return Seat(a)
		}
	}

	return NoSeat
}

// CheckDraw - reports whether every cell is taken. Callers check for a winner first.
func (that *Board) CheckDraw() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// Snapshot - serializes the board for the player who did not move:
// every cell followed by a comma, then the result tag with no separator.
func (that *Board) Snapshot(tag string) string {
	var sb strings.Builder

	for _, cell := range that {
		sb.WriteString(strconv.Itoa(int(cell)))
		sb.WriteByte(',')
	}

	sb.WriteString(tag)

	return sb.String()
}

// Moves - counts the occupied cells.
func (that *Board) Moves() int {
	n := 0
	for _, cell := range that {
		if cell != EmptyCell {
			n++
		}
	}

	return n
}
