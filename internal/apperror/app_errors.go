package apperror

import "errors"

var (
	ErrDisconnected  = errors.New("peer disconnected")
	ErrMalformedMove = errors.New("move is not a cell index")
	ErrInvalidCell   = errors.New("invalid cell index")
	ErrCellOccupied  = errors.New("cell is already occupied")
	ErrLobbyClosed   = errors.New("lobby is closed")
	ErrLineTooLong   = errors.New("line too long")
)
