package protocol

// 错误码
const (
	ErrCodeUnknown    = 1000
	ErrCodeInvalidMsg = 1001

	ErrCodeRoomNotFound    = 2001
	ErrCodeRoomFull        = 2002
	ErrCodeNotInRoom       = 2003
	ErrCodeInvalidName     = 2004
	ErrCodeDuplicateName   = 2005
	ErrCodeUnsupportedMode = 2006

	ErrCodeGameStarted      = 3001
	ErrCodeGameNotStart     = 3002
	ErrCodeNotLeader        = 3003
	ErrCodeNotEnoughPlayers = 3004
	ErrCodeUnknownPlayer    = 3005
)
