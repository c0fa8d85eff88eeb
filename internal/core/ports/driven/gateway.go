package driven

import (
	"context"
	"net/http"
)

// FilePart is a file sent as a multipart form field.
type FilePart struct {
	// Field is the form field name.
	Field string

	// Filename is the name reported to the server.
	Filename string

	// Content is the complete file content. Attempts are whole-file,
	// so the bytes are held in memory and replayed on retry.
	Content []byte
}

// Request describes one call to the notes service.
type Request struct {
	Method   string
	Endpoint string

	// Body is encoded as JSON when non-nil.
	Body any

	// File switches the request to a multipart body.
	File *FilePart

	// Accept overrides the Accept header, e.g. for event streams.
	Accept string
}

// Gateway sends authenticated requests to the notes service.
// On a 401 it refreshes the session once and retries once.
type Gateway interface {
	// Do sends the request and returns the response for any 2xx status.
	// The caller must close the response body.
	Do(ctx context.Context, req Request) (*http.Response, error)
}
