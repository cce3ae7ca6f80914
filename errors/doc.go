/*
Package errors implements the coded errors used across the escrow program.

Every error returned to a caller wraps one of the root errors declared in
this package. Root errors carry a numeric code that survives any amount of
wrapping, so the hosting environment can hand a structured error code back
to the client while the log keeps the full context.

Create errors with ErrXyz.New("...") or errors.Wrap(err, "...") at the point
of failure so a stack trace is attached. Only the innermost wrap records the
trace; wrapping again just adds context.

	%s   prints the error message
	%+v  prints the message with the full stack trace
*/
package errors
