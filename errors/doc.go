// Package errors provides structured error types for the bridge.
//
// Errors are categorized by Domain (the layer that produced them) and Kind.
// Three domains exist: java for embedding failures and relayed exceptions,
// pte for status codes shared by all queries, and trips for trip query
// status codes.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.DomainJava, errors.KindUnhandledException).
//		Class("java.lang.IllegalStateException").
//		Detail("provider not ready").
//		Build()
//
// Or use the per-kind constructors:
//
//	err := errors.ServiceDown()
//	err := errors.JvmThreading(cause)
//
// All errors implement the standard error interface and support errors.Is/As.
// errors.Is matches on Domain and Kind only.
package errors
