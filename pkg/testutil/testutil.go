package testutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/projdesk/projdesk/pkg/log"
)

// Diff fails the test when exp and got differ.
func Diff(t *testing.T, msg string, exp, got interface{}, opts ...cmp.Option) {
	t.Helper()

	if diff := cmp.Diff(exp, got, opts...); diff != "" {
		t.Fatalf("%v (-exp, +got):\n%v", msg, diff)
	}
}

// IgnoreFields returns a cmp.Option ignoring the named fields of typ.
func IgnoreFields(typ interface{}, names ...string) cmp.Option {
	return cmpopts.IgnoreFields(typ, names...)
}

type testLogger struct {
	log.NopLogger
	t *testing.T
}

func (l *testLogger) Errorw(msg string, v ...interface{}) {
	l.t.Helper()
	l.t.Fatalf(msg+": %v", v...)
}

// NewLogger returns a logger that fails the test on any error entry.
func NewLogger(t *testing.T) log.Logger {
	t.Helper()
	return &testLogger{t: t}
}
