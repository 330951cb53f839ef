package service

import "context"

// auditor is the slice of the audit recorder services depend on; narrowed so
// unit tests can capture records without Redis.
type auditor interface {
	Record(ctx context.Context, format string, args ...interface{})
}
