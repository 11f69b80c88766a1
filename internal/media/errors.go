package media

import "errors"

var (
	// ErrStorageUnavailable indicates the object store is not configured.
	ErrStorageUnavailable = errors.New("media object storage unavailable")
	// ErrProberUnavailable indicates the duration prober is not configured.
	ErrProberUnavailable = errors.New("media duration prober unavailable")
	// ErrEmptyFile indicates an upload with no content.
	ErrEmptyFile = errors.New("media file is empty")
)
