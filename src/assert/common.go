// Package assert contains the small set of test assertions used throughout
// the project's tests.
package assert

import "fmt"

// TestingErrf is an which supports reporting errors in testing types such as
// testing.T, testing.TB and similar.
type TestingErrf interface {
	Errorf(format string, args ...any)
	Helper()
}

// TestingFatalf is an interface for testing types which are able to stop the
// test with a fatal error.
type TestingFatalf interface {
	Fatalf(format string, args ...any)
	Helper()
}

func fromMsgAndArgs(msgAndArgs ...any) string {
	if len(msgAndArgs) == 0 {
		return ""
	}

	fmtStr, ok := msgAndArgs[0].(string)
	if !ok {
		panic("The first argument in msgAndArgs must be a string format value.")
	}

	return fmt.Sprintf(" ("+fmtStr+")", msgAndArgs[1:]...)
}
