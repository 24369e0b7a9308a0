package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var pdfHeader = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n")

func TestSniff(t *testing.T) {
	mimeType, ext, ok := Sniff(pdfHeader)
	assert.True(t, ok)
	assert.Equal(t, "application/pdf", mimeType)
	assert.Equal(t, "pdf", ext)

	_, _, ok = Sniff([]byte("plain text body"))
	assert.False(t, ok)

	_, _, ok = Sniff(nil)
	assert.False(t, ok)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		header   string
		expected string
	}{
		{"signature wins over header", pdfHeader, "application/octet-stream", "application/pdf"},
		{"header used when signature unknown", []byte("a,b,c"), "text/csv; charset=utf-8", "text/csv"},
		{"fallback to octet stream", []byte("????"), "", OctetStream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Detect(tt.data, tt.header))
		})
	}
}

func TestIsHTML(t *testing.T) {
	assert.True(t, IsHTML("text/html; charset=utf-8"))
	assert.True(t, IsHTML("TEXT/HTML"))
	assert.False(t, IsHTML("application/pdf"))
	assert.False(t, IsHTML(""))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "pdf", Label("application/pdf"))
	assert.Equal(t, "bin", Label(OctetStream))
	assert.Equal(t, "bin", Label(""))
	assert.Equal(t, "x-unknown-thing", Label("application/x-unknown-thing"))
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"invoice.pdf", "invoice.pdf"},
		{"../../etc/passwd", "passwd"},
		{`..\..\boot.ini`, "boot.ini"},
		{"reports/2024/march.pdf", "march.pdf"},
		{"..", DefaultFilename},
		{"", DefaultFilename},
		{"   ", DefaultFilename},
		{"/", DefaultFilename},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SafeFilename(tt.input))
		})
	}
}
