package platforms

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/types"
)

// LambdaAdapter serves API Gateway HTTP API (payload v2) events through the
// same router the HTTP server uses, so every route behaves identically on
// both platforms.
type LambdaAdapter struct {
	router http.Handler
	logger types.Logger
}

// NewLambdaAdapter creates a Lambda adapter around router
func NewLambdaAdapter(router http.Handler, logger types.Logger) *LambdaAdapter {
	return &LambdaAdapter{router: router, logger: logger}
}

// Start hands control to the Lambda runtime. It does not return.
func (a *LambdaAdapter) Start() {
	lambda.Start(a.HandleEvent)
}

// HandleEvent converts event into an http.Request, serves it and converts
// the recorded response back. Non-text bodies are base64 encoded.
func (a *LambdaAdapter) HandleEvent(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	req, err := a.buildRequest(ctx, event)
	if err != nil {
		a.logger.Error(ctx, "Failed to convert Lambda event", err, types.Fields{
			"route_key": event.RouteKey,
		})
		return events.APIGatewayV2HTTPResponse{}, err
	}

	rec := newResponseRecorder()
	a.router.ServeHTTP(rec, req)

	return rec.toEvent(), nil
}

func (a *LambdaAdapter) buildRequest(ctx context.Context, event events.APIGatewayV2HTTPRequest) (*http.Request, error) {
	var body []byte
	if event.Body != "" {
		if event.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(event.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to decode base64 body: %w", err)
			}
			body = decoded
		} else {
			body = []byte(event.Body)
		}
	}

	method := event.RequestContext.HTTP.Method
	if method == "" {
		method = http.MethodGet
	}

	path := event.RawPath
	if path == "" {
		path = "/"
	}

	target := &url.URL{Path: path, RawQuery: event.RawQueryString}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	for key, value := range event.Headers {
		req.Header.Set(key, value)
	}
	if len(event.Cookies) > 0 {
		req.Header.Set("Cookie", strings.Join(event.Cookies, "; "))
	}
	if req.Header.Get("X-Request-ID") == "" && event.RequestContext.RequestID != "" {
		req.Header.Set("X-Request-ID", event.RequestContext.RequestID)
	}

	req.Host = event.RequestContext.DomainName
	req.RemoteAddr = event.RequestContext.HTTP.SourceIP
	req.RequestURI = target.RequestURI()

	return req, nil
}

// responseRecorder buffers a response for conversion into a Lambda event
type responseRecorder struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newResponseRecorder() *responseRecorder {
	return &responseRecorder{header: make(http.Header)}
}

func (r *responseRecorder) Header() http.Header {
	return r.header
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.body.Write(p)
}

func (r *responseRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
}

func (r *responseRecorder) toEvent() events.APIGatewayV2HTTPResponse {
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}

	headers := make(map[string]string, len(r.header))
	for key, values := range r.header {
		if key == "Set-Cookie" {
			continue
		}
		headers[key] = strings.Join(values, ",")
	}

	resp := events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    headers,
		Cookies:    r.header.Values("Set-Cookie"),
	}

	if isTextual(r.header.Get("Content-Type")) {
		resp.Body = r.body.String()
	} else {
		resp.Body = base64.StdEncoding.EncodeToString(r.body.Bytes())
		resp.IsBase64Encoded = true
	}

	return resp
}

func isTextual(contentType string) bool {
	if contentType == "" {
		return true
	}
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "text/") ||
		strings.Contains(ct, "json") ||
		strings.Contains(ct, "xml") ||
		strings.Contains(ct, "javascript")
}
