package fatfs

import (
	"errors"
	"fmt"
)

// Error kinds a consumer may check for with errors.Is. They mirror the
// kinds named in the format's error-handling design: image I/O bounds,
// malformed BPB fields, cluster-reference misuse, FAT cycles, and
// path-resolution failures.
var (
	ErrImage               = errors.New("image: out of range or truncated read")
	ErrInvalidBPB          = errors.New("bpb: invalid boot parameter block")
	ErrInvalidCluster      = errors.New("cluster: invalid cluster reference")
	ErrCorruptChain        = errors.New("chain: end-of-chain sentinel not reached within cluster bound")
	ErrNotFound            = errors.New("path: no such entry")
	ErrNotADirectory       = errors.New("path: not a directory")
	ErrNotAFile            = errors.New("path: not a file")
	ErrInvalidTimestamp    = errors.New("entry: timestamp field out of range")
	ErrLfnChecksumMismatch = errors.New("lfn: checksum mismatch, falling back to short name")
	ErrNotSupported        = errors.New("operation not supported")
	ErrInvalidPath         = errors.New("path: empty path")
)

func errOutOfRange(offset int64, length int) error {
	return fmt.Errorf("offset %d length %d: out of range", offset, length)
}

func errTruncated(offset int64, want, got int) error {
	return fmt.Errorf("offset %d: wanted %d bytes, got %d", offset, want, got)
}
