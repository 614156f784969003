package chat

// Protocol errors. Each one is answered with ERROR and leaves state untouched.
var (
	ErrEmptyLine        = errorString("empty_line")
	ErrUnknownCommand   = errorString("unknown_command")
	ErrBadArguments     = errorString("bad_arguments")
	ErrNickTaken        = errorString("nick_taken")
	ErrNotAuthenticated = errorString("not_authenticated")
	ErrNotInRoom        = errorString("not_in_room")
	ErrUnknownNick      = errorString("unknown_nick")
)

// Connection-fatal errors.
var (
	ErrInputOverflow    = errorString("input_overflow")
	ErrOutboundOverflow = errorString("outbound_overflow")
	ErrOutboxClosed     = errorString("outbox_closed")
	ErrRoomVanished     = errorString("room_vanished")
)

type errorString string

func (e errorString) Error() string { return string(e) }
