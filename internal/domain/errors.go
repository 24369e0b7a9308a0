package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies fetch failures.
type ErrorKind string

const (
	// KindAuthRequired: the host redirected to its sign-in page.
	KindAuthRequired ErrorKind = "auth_required"
	// KindNotPublic: the host kept answering with HTML.
	KindNotPublic ErrorKind = "not_public"
	// KindTransport: DNS, connection or TLS failure talking to the host.
	KindTransport ErrorKind = "transport"
	// KindTooLarge: the payload exceeds FETCH_MAX_FILE_SIZE.
	KindTooLarge ErrorKind = "too_large"
	// KindBadStatus: a non-HTML response with a non-2xx status.
	KindBadStatus ErrorKind = "bad_status"
	// KindRead: the body could not be read to the end.
	KindRead ErrorKind = "read"
)

// Messages returned to callers for host-side access failures.
const (
	MsgAuthRequired = "File requires Google authentication. Please make it publicly accessible."
	MsgNotPublic    = "Unable to download file. Please ensure the file is publicly shared."
)

// ErrNotFound is returned by the file cache when no payload is stored
// for an identifier.
var ErrNotFound = errors.New("file not found")

// FetchError is the failure half of a fetch. Message is the text shown
// to callers.
type FetchError struct {
	Kind    ErrorKind
	Message string
	FileID  string
	Err     error
}

func (e *FetchError) Error() string {
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError builds a FetchError. For wrapped errors without an explicit
// message the underlying error text becomes the message.
func NewFetchError(kind ErrorKind, fileID, message string, err error) *FetchError {
	if message == "" && err != nil {
		message = err.Error()
	}
	if message == "" {
		message = fmt.Sprintf("fetch failed: %s", kind)
	}
	return &FetchError{Kind: kind, Message: message, FileID: fileID, Err: err}
}

// AsFetchError unwraps err into a *FetchError.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
