package handler

import (
	"encoding/json"
	"io"
	"time"
)

// Error codes understood by the platform adapters.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeValidation     = "VALIDATION_ERROR"
	CodeInvalidLink    = "INVALID_LINK"
	CodeDownloadFailed = "DOWNLOAD_FAILED"
	CodeNotFound       = "NOT_FOUND"
	CodeTimeout        = "TIMEOUT"
	CodeUnavailable    = "SERVICE_UNAVAILABLE"
	CodeInternal       = "INTERNAL_ERROR"
)

// path parameters travel in the metadata under this prefix
const paramPrefix = "param_"

// Request is what a platform adapter hands to a worker.
type Request struct {
	ID     string `json:"id"`
	Source string `json:"source"` // http or lambda

	// Type names the worker the route is bound to.
	Type string `json:"type"`

	// Payload is the raw JSON body. GET routes leave it empty.
	Payload json.RawMessage `json:"payload"`

	// Metadata holds selected headers, query values and path parameters.
	Metadata map[string]string `json:"metadata,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// Response is what a worker hands back. Exactly one of Data, Error and
// Attachment is meaningful.
type Response struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`

	Data       json.RawMessage `json:"data,omitempty"`
	Error      *ErrorResponse  `json:"error,omitempty"`
	Attachment *Attachment     `json:"-"`

	// Metadata entries are echoed to the caller as X- headers.
	Metadata map[string]string `json:"metadata,omitempty"`

	ProcessedAt time.Time     `json:"processed_at"`
	Duration    time.Duration `json:"duration,omitempty"`
}

// Attachment is a file streamed back with Content-Disposition: attachment.
// The adapter writing the response closes Body.
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// ErrorResponse is the failure half of a Response. Message is shown to the
// caller verbatim; Details only reaches the logs.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func NewErrorResponse(id, code, message, details string) Response {
	return Response{
		ID:          id,
		Error:       &ErrorResponse{Code: code, Message: message, Details: details},
		ProcessedAt: time.Now().UTC(),
	}
}

// NewSuccessResponse encodes data as the JSON body. A nil data leaves the
// body empty.
func NewSuccessResponse(id string, data any) (Response, error) {
	resp := Response{ID: id, Success: true, ProcessedAt: time.Now().UTC()}
	if data == nil {
		return resp, nil
	}
	if err := resp.Marshal(data); err != nil {
		return Response{}, err
	}
	return resp, nil
}

func NewAttachmentResponse(id string, attachment *Attachment) Response {
	return Response{
		ID:          id,
		Success:     true,
		Attachment:  attachment,
		ProcessedAt: time.Now().UTC(),
	}
}

// Unmarshal decodes the payload into v.
func (r *Request) Unmarshal(v any) error {
	return json.Unmarshal(r.Payload, v)
}

func (r *Request) SetMetadata(key, value string) {
	setMetadata(&r.Metadata, key, value)
}

// GetMetadata returns the value stored under key, or "".
func (r *Request) GetMetadata(key string) string {
	return r.Metadata[key]
}

func (r *Request) SetParam(name, value string) {
	r.SetMetadata(paramPrefix+name, value)
}

// Param returns the path parameter name, or "" when the route has none.
func (r *Request) Param(name string) string {
	return r.GetMetadata(paramPrefix + name)
}

// Marshal replaces the response body with v encoded as JSON.
func (r *Response) Marshal(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	r.Data = data
	return nil
}

func (r *Response) SetMetadata(key, value string) {
	setMetadata(&r.Metadata, key, value)
}

// Close releases the attachment body, if any.
func (r *Response) Close() error {
	if r.Attachment == nil || r.Attachment.Body == nil {
		return nil
	}
	return r.Attachment.Body.Close()
}

func setMetadata(m *map[string]string, key, value string) {
	if *m == nil {
		*m = make(map[string]string)
	}
	(*m)[key] = value
}
