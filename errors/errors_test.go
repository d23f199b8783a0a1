package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "relayed exception",
			err: &Error{
				Domain: DomainJava,
				Kind:   KindIOException,
				Class:  "java.net.SocketTimeoutException",
				Detail: "connect timed out",
			},
			contains: []string{"[java]", "io-exception", "java.net.SocketTimeoutException", "connect timed out"},
		},
		{
			name: "minimal error",
			err: &Error{
				Domain: DomainTrips,
				Kind:   KindNoTrips,
			},
			contains: []string{"[trips]", "no-trips"},
		},
		{
			name: "error with cause",
			err: &Error{
				Domain: DomainJava,
				Kind:   KindJvmInitFailed,
				Detail: "write boot archive",
				Cause:  errors.New("no space left on device"),
			},
			contains: []string{"[java]", "jvm-init-failed", "write boot archive", "caused by", "no space left"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := JvmThreading(cause)

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := ServiceDown()

	if !err.Is(&Error{Domain: DomainPte, Kind: KindServiceDown}) {
		t.Error("Is should match same domain and kind")
	}
	if err.Is(&Error{Domain: DomainTrips, Kind: KindServiceDown}) {
		t.Error("Is should not match different domain")
	}
	if err.Is(InvalidStation()) {
		t.Error("Is should not match different kind")
	}

	wrapped := fmt.Errorf("query departures: %w", err)
	if !errors.Is(wrapped, ServiceDown()) {
		t.Error("errors.Is should see through wrapping")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(DomainJava, KindUnhandledException).
		Class("java.lang.IllegalStateException").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "OK", "FAILED").
		Build()

	if err.Domain != DomainJava {
		t.Errorf("Domain = %v, want %v", err.Domain, DomainJava)
	}
	if err.Kind != KindUnhandledException {
		t.Errorf("Kind = %v, want %v", err.Kind, KindUnhandledException)
	}
	if err.Class != "java.lang.IllegalStateException" {
		t.Errorf("Class = %v", err.Class)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected OK, got FAILED" {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestStatusConstructors(t *testing.T) {
	tests := []struct {
		err    *Error
		domain Domain
		kind   Kind
		msg    string
	}{
		{ServiceDown(), DomainPte, KindServiceDown, "Service Down"},
		{InvalidStation(), DomainPte, KindInvalidStation, "Invalid Station"},
		{InvalidID(), DomainPte, KindInvalidID, "Invalid station identifier"},
		{InvalidDate(), DomainPte, KindInvalidDate, "Invalid Date"},
		{NoTrips(), DomainTrips, KindNoTrips, "No available trips"},
		{TooClose(), DomainTrips, KindTooClose, "Locations too close by eachother"},
		{UnknownFrom(), DomainTrips, KindUnknownFrom, "Departure location unknown"},
		{UnknownLocation(), DomainTrips, KindUnknownLocation, "Unknown location"},
		{UnknownTo(), DomainTrips, KindUnknownTo, "Destination location unknown"},
		{UnknownVia(), DomainTrips, KindUnknownVia, "Via location unknown"},
		{UnresolvableAddress(), DomainTrips, KindUnresolvableAddress, "Address unresolvable"},
		{JvmThreading(nil), DomainJava, KindJvmThreading, "Unable to attach thread"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if tt.err.Domain != tt.domain {
				t.Errorf("Domain = %v, want %v", tt.err.Domain, tt.domain)
			}
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Message() != tt.msg {
				t.Errorf("Message = %q, want %q", tt.err.Message(), tt.msg)
			}
		})
	}
}

func TestUnexpectedStatus(t *testing.T) {
	err := UnexpectedStatus("queryDepartures", "AMBIGUOUS")
	if err.Kind != KindUnexpectedStatus {
		t.Errorf("Kind = %v", err.Kind)
	}
	if err.Value != "AMBIGUOUS" {
		t.Errorf("Value = %v", err.Value)
	}
	if !strings.Contains(err.Error(), "queryDepartures") {
		t.Errorf("message %q should name the operation", err.Error())
	}
}

func TestKindOf(t *testing.T) {
	if k, ok := KindOf(fmt.Errorf("outer: %w", NoTrips())); !ok || k != KindNoTrips {
		t.Errorf("KindOf = %v, %v", k, ok)
	}
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("KindOf should not match a plain error")
	}
	if _, ok := KindOf(nil); ok {
		t.Error("KindOf(nil) should not match")
	}
}
