package errors

type MultiError interface {
	error
	Len() int
	Append(errs ...error)
	AppendNested(err error) NestedError
	AppendWithPrefix(err error, prefix string)
	AppendWithPrefixf(err error, format string, a ...any)
	WrappedErrors() []error
	ErrorOrNil() error
}

type multiErrorGetter interface {
	WrappedErrors() []error
}

type multiError struct {
	errs []error
}

func NewMultiError() MultiError {
	return &multiError{}
}

func (e *multiError) Len() int {
	return len(e.errs)
}

func (e *multiError) Error() string {
	return Format(e)
}

func (e *multiError) Unwrap() []error {
	return e.errs
}

func (e *multiError) WrappedErrors() []error {
	return e.errs
}

// Append adds errors to the container, nil values are skipped
// and other MultiErrors are flattened.
func (e *multiError) Append(errs ...error) {
	for _, err := range errs {
		switch {
		case err == nil:
			continue
		case isFlattenable(err):
			e.errs = append(e.errs, err.(multiErrorGetter).WrappedErrors()...) // nolint: errorlint
		default:
			e.errs = append(e.errs, err)
		}
	}
}

func (e *multiError) AppendNested(err error) NestedError {
	nested := NewNestedError(err)
	e.errs = append(e.errs, nested)
	return nested
}

func (e *multiError) AppendWithPrefix(err error, prefix string) {
	e.Append(PrefixError(err, prefix))
}

func (e *multiError) AppendWithPrefixf(err error, format string, a ...any) {
	e.Append(PrefixErrorf(err, format, a...))
}

func (e *multiError) ErrorOrNil() error {
	if len(e.errs) == 0 {
		return nil
	}
	return e
}

func isFlattenable(err error) bool {
	// A nested error keeps its main/sub structure, only plain MultiErrors are flattened.
	if _, ok := err.(nestedErrorGetter); ok { // nolint: errorlint
		return false
	}
	_, ok := err.(multiErrorGetter) // nolint: errorlint
	return ok
}
