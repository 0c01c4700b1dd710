package crawler

import "errors"

var (
	// ErrMalformedURL means no numeric player id could be taken from a
	// detail URL. The entity is skipped; the run continues.
	ErrMalformedURL = errors.New("player id not found in url")

	// ErrMalformedPayload means the embedded stats JSON or a date string
	// on the page failed to parse. The entity is skipped.
	ErrMalformedPayload = errors.New("malformed page payload")
)
