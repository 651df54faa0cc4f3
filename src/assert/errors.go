package assert

import "errors"

// ErrorIs checks that `target` is found in the chain of `err`.
func ErrorIs(t TestingErrf, err, target error, msgAndArgs ...any) {
	t.Helper()

	if errors.Is(err, target) {
		return
	}

	t.Errorf("expected error `%v` but got `%v`%s",
		target, err, fromMsgAndArgs(msgAndArgs...),
	)
}
