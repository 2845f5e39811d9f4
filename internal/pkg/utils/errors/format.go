package errors

import (
	"bufio"
	"fmt"
	"runtime"
	"strings"
)

const (
	indent = "  "
	bullet = "- "
)

// Format renders the error as a single message,
// errors with details are rendered as an indented bullet list.
func Format(err error) string {
	w := &writer{}
	w.writeError(0, err)
	return w.out.String()
}

// FormatWithDebug output includes the [file:line] of each error origin.
func FormatWithDebug(err error) string {
	w := &writer{debug: true}
	w.writeError(0, err)
	return w.out.String()
}

type writer struct {
	out   strings.Builder
	debug bool
}

func (w *writer) writeError(level int, err error) {
	if err == nil {
		panic(New("error cannot be nil"))
	}

	switch v := err.(type) { // nolint: errorlint
	case nestedErrorGetter:
		w.writeNested(level, v)
	case multiErrorGetter:
		w.writeList(level, v.WrappedErrors())
	case *withStack:
		w.writeMessage(level, v.err.Error(), v.trace)
	default:
		var trace StackTrace
		if tracer, ok := err.(stackTracer); ok {
			trace = tracer.StackTrace()
		}
		w.writeMessage(level, err.Error(), trace)
	}
}

func (w *writer) writeNested(level int, err nestedErrorGetter) {
	mainWriter := w.clone()
	mainWriter.writeError(level, err.MainError())
	mainStr := mainWriter.out.String()

	errs := err.WrappedErrors()
	if len(errs) == 0 {
		w.write(mainStr)
		return
	}

	subWriter := w.clone()
	subWriter.writeList(level, errs)
	subStr := subWriter.out.String()

	// One short detail stays on the main error line, otherwise a bullet list follows.
	w.write(formatPrefix(mainStr))
	if len(errs) > 1 || len(mainStr)+len(subStr) > 60 || strings.Contains(subStr, "\n") {
		w.write("\n")
		if len(errs) == 1 {
			w.write(strings.Repeat(indent, level))
			w.write(bullet)
			w.writeError(level+1, errs[0])
		} else {
			w.writeList(level, errs)
		}
	} else {
		w.write(" ")
		w.write(subStr)
	}
}

func (w *writer) writeList(level int, errs []error) {
	withBullet := len(errs) > 1
	last := len(errs) - 1
	for i, err := range errs {
		if withBullet {
			w.write(strings.Repeat(indent, level))
			w.write(bullet)
		}
		w.writeError(level+1, err)
		if i != last {
			w.write("\n")
		}
	}
}

func (w *writer) writeMessage(level int, msg string, trace StackTrace) {
	if w.debug && len(trace) > 0 {
		frame := trace[0]
		fn := runtime.FuncForPC(frame)
		file, line := fn.FileLine(frame)
		msg = fmt.Sprintf("%s [%s:%d]", msg, file, line)
	}

	// If the message contains more lines (which shouldn't happen), align all lines.
	scanner := bufio.NewScanner(strings.NewReader(msg))
	scanner.Scan()
	w.write(scanner.Text())
	for scanner.Scan() {
		w.write("\n")
		w.write(strings.Repeat(indent, level))
		w.write(scanner.Text())
	}
}

func (w *writer) write(s string) {
	_, _ = w.out.WriteString(s)
}

func (w *writer) clone() *writer {
	return &writer{debug: w.debug}
}

func formatPrefix(prefix string) string {
	return strings.TrimRight(prefix, ".,:") + ":"
}
