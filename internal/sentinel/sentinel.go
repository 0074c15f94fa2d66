package sentinel

// Compile-time check that Error implements the error interface.
var _ error = Error("")

// Error is an error type backed by a string so it can be declared as a
// const. Two Error values are equal when their text is equal, which is
// what errors.Is compares after unwrapping.
type Error string

// Error implements the error interface.
func (e Error) Error() string {
	return string(e)
}
