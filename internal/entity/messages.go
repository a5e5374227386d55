package entity

// Server to client lines.
const (
	MsgWait         = "WAIT"
	MsgReady        = "READY"
	MsgOK           = "OK"
	MsgKO           = "KO"
	MsgWin          = "W"
	MsgDraw         = "P"
	MsgDisconnected = "DISCONNECTED"
)

// Result tags appended to a board snapshot.
const (
	TagNone = ""
	TagLost = "L"
	TagDraw = "P"
)
