package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrDataAnomaly marks input that was skipped because it does not satisfy the export format
	ErrDataAnomaly = errors.New("data anomaly")

	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported file format", ErrDataAnomaly)
	ErrMalformedFile     = fmt.Errorf("%w: malformed file", ErrDataAnomaly)
)
