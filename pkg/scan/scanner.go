// Package scan screens uploaded files for malware before they are stored.
package scan

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when no scanner could be reached.
var ErrUnavailable = errors.New("scan: scanner unavailable")

// Verdict is the outcome of scanning one file.
type Verdict struct {
	Infected bool
	Threat   string
}

// Scanner inspects file content. A non-nil error means the content was not
// scanned and must not be trusted.
type Scanner interface {
	Scan(ctx context.Context, filename string, data []byte) (Verdict, error)
	Name() string
	Ping(ctx context.Context) error
}

// Nop accepts everything. It stands in when no scanner is configured.
type Nop struct{}

var _ Scanner = Nop{}

func (Nop) Scan(context.Context, string, []byte) (Verdict, error) { return Verdict{}, nil }
func (Nop) Name() string                                          { return "nop" }
func (Nop) Ping(context.Context) error                            { return nil }
