package game

import "errors"

// Error categories. Every error returned by the room operations wraps exactly
// one of these.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrBadRequest = errors.New("bad request")
)

var (
	ErrRoomNotFound   = newError(ErrNotFound, "room not found")
	ErrPlayerNotFound = newError(ErrNotFound, "player not found in room")

	ErrNotHost        = newError(ErrForbidden, "only the host can do that")
	ErrCannotKickHost = newError(ErrForbidden, "the host cannot be removed")

	ErrRoomFull           = newError(ErrBadRequest, "room is full")
	ErrGameAlreadyStarted = newError(ErrBadRequest, "game has already started")
	ErrNotEnoughPlayers   = newError(ErrBadRequest, "not enough players to start")
	ErrNoDeckSelected     = newError(ErrBadRequest, "no deck selected")
	ErrNoQuestions        = newError(ErrBadRequest, "at least one question is required")
	ErrInvalidQuestion    = newError(ErrBadRequest, "question text and correct answer are required")
	ErrNoGame             = newError(ErrBadRequest, "no game in progress")
	ErrWrongPhase         = newError(ErrBadRequest, "not allowed in the current phase")
	ErrStaleQuestion      = newError(ErrBadRequest, "question index does not match the current question")
	ErrAlreadyAnswered    = newError(ErrBadRequest, "answer already recorded for this question")
	ErrInvalidSettings    = newError(ErrBadRequest, "invalid settings")
	ErrInvalidName        = newError(ErrBadRequest, "name is required")
)

// Error is a categorized room error. errors.Is matches both the error itself
// and its category.
type Error struct {
	kind error
	msg  string
}

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

// Error codes exposed to clients
const (
	CodeNotFound   = "NOT_FOUND"
	CodeForbidden  = "FORBIDDEN"
	CodeBadRequest = "BAD_REQUEST"
	CodeInternal   = "INTERNAL"
)

// Code returns the client-facing category of err.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrBadRequest):
		return CodeBadRequest
	default:
		return CodeInternal
	}
}
