package backup

import "errors"

var (
	// ErrHashMismatch means the content does not match the envelope hash.
	ErrHashMismatch = errors.New("backup: hash mismatch")
	// ErrVersionMismatch means the backup was written by a different schema version.
	ErrVersionMismatch = errors.New("backup: version mismatch")
	// ErrMalformedBackup means the file could not be parsed into an envelope.
	ErrMalformedBackup = errors.New("backup: malformed backup")
)
