// Package content classifies fetched payloads and cleans host-supplied names.
package content

import (
	"mime"
	"path"
	"strings"

	"github.com/h2non/filetype"
)

const (
	// DefaultFilename is used when the host sends no usable filename.
	DefaultFilename = "download.pdf"

	// OctetStream is the content type of unrecognized payloads.
	OctetStream = "application/octet-stream"
)

// Sniff inspects the leading bytes of data. ok is false when the
// signature is not recognized.
func Sniff(data []byte) (mimeType, extension string, ok bool) {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return "", "", false
	}
	return kind.MIME.Value, kind.Extension, true
}

// Detect picks the content type of a payload: the sniffed signature first,
// then the media type from the response header, then OctetStream.
func Detect(data []byte, header string) string {
	if mimeType, _, ok := Sniff(data); ok {
		return mimeType
	}
	if mediaType := MediaType(header); mediaType != "" {
		return mediaType
	}
	return OctetStream
}

// MediaType strips parameters from a Content-Type header value,
// e.g. "text/html; charset=UTF-8" becomes "text/html".
func MediaType(header string) string {
	if header == "" {
		return ""
	}
	if mediaType, _, err := mime.ParseMediaType(header); err == nil {
		return mediaType
	}
	return strings.ToLower(strings.TrimSpace(strings.Split(header, ";")[0]))
}

// IsHTML reports whether a Content-Type header names an HTML document.
func IsHTML(header string) bool {
	return strings.Contains(strings.ToLower(header), "text/html")
}

// Label returns a short type label for metrics ("pdf", "png", "bin").
func Label(contentType string) string {
	if contentType == "" || contentType == OctetStream {
		return "bin"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return strings.TrimPrefix(exts[0], ".")
	}
	if i := strings.LastIndex(contentType, "/"); i >= 0 && i < len(contentType)-1 {
		return contentType[i+1:]
	}
	return "bin"
}

// SafeFilename reduces a host-supplied filename to its final path element
// so it can be used as part of a storage key. Names that reduce to nothing
// usable become DefaultFilename.
func SafeFilename(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	name = path.Base(name)
	switch name {
	case "", ".", "..", "/":
		return DefaultFilename
	}
	return name
}
