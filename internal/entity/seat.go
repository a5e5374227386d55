package entity

// Seat is a player's fixed identity inside one match.
type Seat int

const (
	NoSeat Seat = 0
	Seat1  Seat = 1
	Seat2  Seat = 2
)

// Other - returns the opposing seat.
func (that Seat) Other() Seat {
	switch that {
	case Seat1:
		return Seat2
	case Seat2:
		return Seat1
	default:
		return NoSeat
	}
}

func (that Seat) Valid() bool {
	return that == Seat1 || that == Seat2
}
