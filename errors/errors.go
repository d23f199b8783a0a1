package errors

import (
	"fmt"
	"strings"
)

// Domain groups errors by the layer that produced them
type Domain string

const (
	DomainJava  Domain = "java"  // embedding layer and relayed exceptions
	DomainPte   Domain = "pte"   // query status codes shared by all queries
	DomainTrips Domain = "trips" // trip query status codes
)

// Kind categorizes the error within its domain
type Kind string

const (
	KindJvmInitFailed      Kind = "jvm-init-failed"
	KindJvmThreading       Kind = "jvm-threading"
	KindIOException        Kind = "io-exception"
	KindUnhandledException Kind = "unhandled-exception"

	KindServiceDown      Kind = "service-down"
	KindInvalidStation   Kind = "invalid-station"
	KindInvalidID        Kind = "invalid-id"
	KindInvalidDate      Kind = "invalid-date"
	KindUnexpectedStatus Kind = "unexpected-status"

	KindNoTrips             Kind = "no-trips"
	KindTooClose            Kind = "too-close"
	KindUnknownFrom         Kind = "unknown-from"
	KindUnknownLocation     Kind = "unknown-location"
	KindUnknownTo           Kind = "unknown-to"
	KindUnknownVia          Kind = "unknown-via"
	KindUnresolvableAddress Kind = "unresolvable-address"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Domain Domain
	Kind   Kind
	Detail string
	Class  string // Java exception class, for relayed exceptions
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Domain))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Class != "" {
		b.WriteString(" from ")
		b.WriteString(e.Class)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Message returns the human-readable part of the error
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return string(e.Kind)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Domain == t.Domain && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(domain Domain, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Domain: domain,
			Kind:   kind,
		},
	}
}

// Class sets the Java exception class name
func (b *Builder) Class(name string) *Builder {
	b.err.Class = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Java domain

// JvmInitFailed creates a runtime boot failure
func JvmInitFailed(detail string, cause error) *Error {
	return &Error{
		Domain: DomainJava,
		Kind:   KindJvmInitFailed,
		Detail: detail,
		Cause:  cause,
	}
}

// JvmThreading creates a thread attachment failure
func JvmThreading(cause error) *Error {
	return &Error{
		Domain: DomainJava,
		Kind:   KindJvmThreading,
		Detail: "Unable to attach thread",
		Cause:  cause,
	}
}

// IOException relays a pending java.io.IOException
func IOException(class, message string) *Error {
	return &Error{
		Domain: DomainJava,
		Kind:   KindIOException,
		Class:  class,
		Detail: message,
	}
}

// UnhandledException relays any other pending Throwable
func UnhandledException(class, message string) *Error {
	return &Error{
		Domain: DomainJava,
		Kind:   KindUnhandledException,
		Class:  class,
		Detail: message,
	}
}

// Query status errors. The messages are fixed user-facing strings.

func ServiceDown() *Error    { return status(DomainPte, KindServiceDown, "Service Down") }
func InvalidStation() *Error { return status(DomainPte, KindInvalidStation, "Invalid Station") }
func InvalidID() *Error      { return status(DomainPte, KindInvalidID, "Invalid station identifier") }
func InvalidDate() *Error    { return status(DomainPte, KindInvalidDate, "Invalid Date") }

// UnexpectedStatus reports a status constant that has no mapping
func UnexpectedStatus(operation, name string) *Error {
	return &Error{
		Domain: DomainPte,
		Kind:   KindUnexpectedStatus,
		Detail: fmt.Sprintf("%s returned status %s", operation, name),
		Value:  name,
	}
}

func NoTrips() *Error         { return status(DomainTrips, KindNoTrips, "No available trips") }
func TooClose() *Error        { return status(DomainTrips, KindTooClose, "Locations too close by eachother") }
func UnknownFrom() *Error     { return status(DomainTrips, KindUnknownFrom, "Departure location unknown") }
func UnknownLocation() *Error { return status(DomainTrips, KindUnknownLocation, "Unknown location") }
func UnknownTo() *Error       { return status(DomainTrips, KindUnknownTo, "Destination location unknown") }
func UnknownVia() *Error      { return status(DomainTrips, KindUnknownVia, "Via location unknown") }
func UnresolvableAddress() *Error {
	return status(DomainTrips, KindUnresolvableAddress, "Address unresolvable")
}

func status(domain Domain, kind Kind, msg string) *Error {
	return &Error{
		Domain: domain,
		Kind:   kind,
		Detail: msg,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(domain Domain, kind Kind, cause error, detail string) *Error {
	return &Error{
		Domain: domain,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// KindOf returns the kind of err if it is or wraps an *Error
func KindOf(err error) (Kind, bool) {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return "", false
		}
		err = u.Unwrap()
	}
	return "", false
}
