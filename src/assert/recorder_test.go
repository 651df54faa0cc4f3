package assert_test

import "fmt"

// recordingT is a TestingErrf and TestingFatalf which only records the
// calls made to it.
type recordingT struct {
	errors  []string
	fatals  []string
	helpers int
}

func (r *recordingT) Errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *recordingT) Fatalf(format string, args ...any) {
	r.fatals = append(r.fatals, fmt.Sprintf(format, args...))
}

func (r *recordingT) Helper() {
	r.helpers++
}
