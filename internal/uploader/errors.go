package uploader

import (
	"errors"
	"fmt"
)

// Phase identifies which step of the upload protocol a failure came from.
type Phase string

const (
	PhaseAuthenticate Phase = "authenticate"
	PhaseGrantRequest Phase = "grant_request"
	PhaseTransfer     Phase = "transfer"
	PhaseConfirm      Phase = "confirm"
)

// Error is a phase-classified upload failure. Every failure of
// Coordinator.UploadVideo is one of these; the classification is never
// collapsed into a generic error on the way out.
type Error struct {
	Phase      Phase
	Message    string // remote-supplied when the failing party sent one
	StatusCode int    // HTTP status when one applies, else 0
	Err        error  // underlying cause, if any
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "upload failed"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("upload %s: %s (status %d)", e.Phase, msg, e.StatusCode)
	}
	return fmt.Sprintf("upload %s: %s", e.Phase, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts the phase classification from any error returned by
// UploadVideo.
func AsError(err error) (*Error, bool) {
	var ue *Error
	ok := errors.As(err, &ue)
	return ue, ok
}
