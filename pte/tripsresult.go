package pte

import (
	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jvm"
)

// TripsResultKind tells which payload a trip query carries.
type TripsResultKind int

const (
	TripsError TripsResultKind = iota
	TripsAmbiguous
	TripsOK
)

func (k TripsResultKind) String() string {
	switch k {
	case TripsOK:
		return "ok"
	case TripsAmbiguous:
		return "ambiguous"
	}
	return "error"
}

// TripsResult is the outcome of a trip query: a pageable trip list, or
// candidate locations when the query was ambiguous.
type TripsResult struct {
	kind      TripsResultKind
	trips     *Trips
	ambigFrom jvm.Lazy[*jvm.List[*Location]]
	ambigVia  jvm.Lazy[*jvm.List[*Location]]
	ambigTo   jvm.Lazy[*jvm.List[*Location]]
}

// NewTripsResult wraps a QueryTripsResult obtained from provider.
func NewTripsResult(rt *jvm.Runtime, provider *Provider, local jni.Ref) *TripsResult {
	trips := newTrips(rt, provider, local)
	if trips == nil {
		return nil
	}
	kind := TripsError
	switch jvm.Scoped(rt, 1, func(env jni.Env) string { return tripsStatus.status(rt, env, local) }) {
	case "OK":
		kind = TripsOK
	case "AMBIGUOUS":
		kind = TripsAmbiguous
	}
	return &TripsResult{kind: kind, trips: trips}
}

func (r *TripsResult) Kind() TripsResultKind { return r.kind }

// JavaObject returns the wrapped QueryTripsResult.
func (r *TripsResult) JavaObject() *jvm.Object { return r.trips.Object }

// Trips returns the trip list. It panics unless the kind is TripsOK.
// The result owns the list; Retain it to keep it longer.
func (r *TripsResult) Trips() *Trips {
	if r.kind != TripsOK {
		panic("pte: trips of a " + r.kind.String() + " result")
	}
	return r.trips
}

// AmbiguousFrom returns the candidates for the origin. It panics unless
// the kind is TripsAmbiguous.
func (r *TripsResult) AmbiguousFrom() *jvm.List[*Location] {
	return r.ambiguous(&r.ambigFrom, "ambiguousFrom")
}

func (r *TripsResult) AmbiguousVia() *jvm.List[*Location] {
	return r.ambiguous(&r.ambigVia, "ambiguousVia")
}

func (r *TripsResult) AmbiguousTo() *jvm.List[*Location] {
	return r.ambiguous(&r.ambigTo, "ambiguousTo")
}

func (r *TripsResult) ambiguous(cell *jvm.Lazy[*jvm.List[*Location]], field string) *jvm.List[*Location] {
	if r.kind != TripsAmbiguous {
		panic("pte: " + field + " of a " + r.kind.String() + " result")
	}
	return cell.Get(func() *jvm.List[*Location] {
		return fieldList(r.trips.Object, classTripsRs, field, NewLocation)
	})
}

// Release drops the result and everything read from it.
func (r *TripsResult) Release() {
	if r == nil {
		return
	}
	r.trips.Release()
}
