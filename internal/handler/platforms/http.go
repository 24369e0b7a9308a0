package platforms

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/domain/content"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/handler"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/types"
)

// HTTPAdapter serves one handler over net/http. It is mounted on a chi
// route; path parameters of the route reach the worker as request params.
type HTTPAdapter struct {
	handler *handler.Handler
	logger  types.Logger
}

// ErrorBody is the JSON body of every failed request
type ErrorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// NewHTTPAdapter creates a new HTTP adapter with the provided handler.
func NewHTTPAdapter(h *handler.Handler, logger types.Logger) *HTTPAdapter {
	return &HTTPAdapter{handler: h, logger: logger}
}

// ServeHTTP implements http.Handler
func (a *HTTPAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := a.readBody(w, r)
	if err != nil {
		requestID := a.extractRequestID(r)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		msg := "Failed to read request body"
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			msg = "Request body too large"
		}
		WriteError(w, http.StatusBadRequest, handler.CodeInvalidRequest, msg, requestID)
		return
	}

	req := a.buildRequest(r, body)
	resp, err := a.handler.Handle(r.Context(), req)

	a.writeResponse(w, r, req.ID, resp, err)
}

// ServeHealth answers readiness probes from the worker's Health check
func (a *HTTPAdapter) ServeHealth(w http.ResponseWriter, r *http.Request) {
	if err := a.handler.Health(r.Context()); err != nil {
		a.logger.Warn(r.Context(), "Health check failed", types.Fields{"error": err.Error()})
		WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"worker": a.handler.Worker().Name(),
		"time":   time.Now().UTC(),
	})
}

func (a *HTTPAdapter) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()

	maxSize := a.handler.Config().MaxRequestSize
	if maxSize <= 0 {
		maxSize = 10 * 1024 * 1024
	}

	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxSize))
}

func (a *HTTPAdapter) buildRequest(r *http.Request, body []byte) handler.Request {
	requestID := a.extractRequestID(r)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	req := handler.Request{
		ID:        requestID,
		Source:    "http",
		Type:      a.handler.Worker().Name(),
		Payload:   json.RawMessage(body),
		Metadata:  a.extractMetadata(r),
		Timestamp: time.Now().UTC(),
	}

	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, key := range rctx.URLParams.Keys {
			if key == "*" || i >= len(rctx.URLParams.Values) {
				continue
			}
			req.SetParam(key, rctx.URLParams.Values[i])
		}
	}

	return req
}

func (a *HTTPAdapter) extractRequestID(r *http.Request) string {
	for _, header := range []string{"X-Request-ID", "X-Correlation-ID", "Request-ID"} {
		if id := r.Header.Get(header); id != "" {
			return id
		}
	}
	return ""
}

func (a *HTTPAdapter) extractMetadata(r *http.Request) map[string]string {
	metadata := map[string]string{
		"http_method": r.Method,
		"http_path":   r.URL.Path,
		"http_host":   r.Host,
	}

	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			metadata["query_"+key] = values[0]
		}
	}

	for _, header := range []string{"Content-Type", "Accept", "User-Agent", "X-Forwarded-For", "X-Real-IP"} {
		if value := r.Header.Get(header); value != "" {
			metadata["header_"+strings.ToLower(strings.ReplaceAll(header, "-", "_"))] = value
		}
	}

	if traceID := r.Header.Get("X-Trace-ID"); traceID != "" {
		metadata["trace_id"] = traceID
	}

	return metadata
}

func (a *HTTPAdapter) writeResponse(w http.ResponseWriter, r *http.Request, requestID string, resp handler.Response, err error) {
	if resp.ID != "" {
		requestID = resp.ID
	}

	w.Header().Set("X-Request-ID", requestID)
	for key, value := range resp.Metadata {
		w.Header().Set("X-"+strings.ReplaceAll(key, "_", "-"), value)
	}

	if err != nil || !resp.Success {
		_ = resp.Close()

		if err != nil {
			a.logger.Error(r.Context(), "Request processing failed", err, types.Fields{"request_id": requestID})
			if resp.Success {
				resp.Error = nil
			}
		}
		if resp.Error == nil {
			resp.Error = &handler.ErrorResponse{Code: handler.CodeInternal, Message: "An internal error occurred"}
		}

		WriteError(w, determineStatusCode(resp.Error.Code), resp.Error.Code, resp.Error.Message, requestID)
		return
	}

	if resp.Attachment != nil {
		a.writeAttachment(w, r, resp.Attachment)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	data := resp.Data
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}
	if _, err := w.Write(data); err != nil {
		a.logger.Warn(r.Context(), "Failed to write response", types.Fields{"error": err.Error()})
	}
}

func (a *HTTPAdapter) writeAttachment(w http.ResponseWriter, r *http.Request, att *handler.Attachment) {
	defer att.Body.Close()

	contentType := att.ContentType
	if contentType == "" {
		contentType = content.OctetStream
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", ContentDisposition(att.Filename))
	if att.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(att.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, att.Body); err != nil {
		a.logger.Warn(r.Context(), "Failed to stream attachment", types.Fields{
			"filename": att.Filename,
			"error":    err.Error(),
		})
	}
}

// ContentDisposition formats an attachment header for filename
func ContentDisposition(filename string) string {
	name := content.SafeFilename(filename)
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return mime.FormatMediaType("attachment", map[string]string{"filename": content.DefaultFilename})
}

// WriteJSON writes v as a JSON response
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the standard error body
func WriteError(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, ErrorBody{Error: message, Code: code, RequestID: requestID})
}

// determineStatusCode maps error codes to HTTP status codes
func determineStatusCode(code string) int {
	switch code {
	case handler.CodeValidation, handler.CodeInvalidRequest, handler.CodeInvalidLink, handler.CodeDownloadFailed:
		return http.StatusBadRequest
	case handler.CodeNotFound:
		return http.StatusNotFound
	case handler.CodeTimeout:
		return http.StatusGatewayTimeout
	case handler.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
