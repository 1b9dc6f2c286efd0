package core

// Error codes for domain errors.
const (
	ErrCodeRoomNotFound  = "room_not_found"
	ErrCodeDuplicateRoom = "duplicate_room"
	ErrCodeNotAMember    = "not_a_member"
	ErrCodeBadRequest    = "bad_request"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodePersistence   = "persistence_failed"
)

// CoreError wraps a code and human-readable message. It is the only error
// shape that crosses the protocol boundary.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
