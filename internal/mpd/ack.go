package mpd

import "fmt"

// AckCode is one of MPD's numeric error codes (SPEC_FULL.md §7).
type AckCode int

const (
	AckNotList       AckCode = 1
	AckArg           AckCode = 2
	AckPassword      AckCode = 3
	AckPermission    AckCode = 4
	AckUnknown       AckCode = 5
	AckNoExist       AckCode = 50
	AckPlaylistMax   AckCode = 51
	AckSystem        AckCode = 52
	AckPlaylistLoad  AckCode = 53
	AckUpdateAlready AckCode = 54
	AckPlayerSync    AckCode = 55
	AckExist         AckCode = 56
)

// AckError is a protocol-level error carrying the code and command name
// needed to format an ACK line. Handlers return this (wrapped as a plain
// error) instead of formatting ACK text themselves, so the dispatcher can
// fill in the batch index uniformly.
type AckError struct {
	Code    AckCode
	Command string
	Message string
}

func (e *AckError) Error() string { return e.Message }

// NewAckError builds an AckError; Command is filled in by the dispatcher
// from the command currently executing, so handlers may pass "" here and
// let Dispatch stamp it in.
func NewAckError(code AckCode, message string) *AckError {
	return &AckError{Code: code, Message: message}
}

// format renders the ACK line for this error at the given zero-based
// batch index.
func (e *AckError) format(index int) string {
	return fmt.Sprintf("ACK [%d@%d] {%s} %s\n", e.Code, index, e.Command, e.Message)
}
