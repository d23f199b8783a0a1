package pte

import (
	"github.com/wippyai/pte-bridge/errors"
	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jvm"
)

// statusTable maps the non-OK status constants of one result class to
// errors. A nil entry is a status that passes through.
type statusTable struct {
	class     string
	operation string
	errs      map[string]func() *errors.Error
}

var (
	departuresStatus = statusTable{
		class:     classDeparturesRs,
		operation: "queryDepartures",
		errs: map[string]func() *errors.Error{
			"SERVICE_DOWN":    errors.ServiceDown,
			"INVALID_STATION": errors.InvalidStation,
		},
	}
	tripsStatus = statusTable{
		class:     classTripsRs,
		operation: "queryTrips",
		errs: map[string]func() *errors.Error{
			"AMBIGUOUS":            nil,
			"SERVICE_DOWN":         errors.ServiceDown,
			"INVALID_DATE":         errors.InvalidDate,
			"NO_TRIPS":             errors.NoTrips,
			"TOO_CLOSE":            errors.TooClose,
			"UNKNOWN_FROM":         errors.UnknownFrom,
			"UNKNOWN_LOCATION":     errors.UnknownLocation,
			"UNKNOWN_TO":           errors.UnknownTo,
			"UNKNOWN_VIA":          errors.UnknownVia,
			"UNRESOLVABLE_ADDRESS": errors.UnresolvableAddress,
		},
	}
	// Paging never asks the user to pick a location.
	moreTripsStatus = statusTable{
		class:     classTripsRs,
		operation: "queryMoreTrips",
		errs: map[string]func() *errors.Error{
			"SERVICE_DOWN":         errors.ServiceDown,
			"INVALID_DATE":         errors.InvalidDate,
			"NO_TRIPS":             errors.NoTrips,
			"TOO_CLOSE":            errors.TooClose,
			"UNKNOWN_FROM":         errors.UnknownFrom,
			"UNKNOWN_LOCATION":     errors.UnknownLocation,
			"UNKNOWN_TO":           errors.UnknownTo,
			"UNKNOWN_VIA":          errors.UnknownVia,
			"UNRESOLVABLE_ADDRESS": errors.UnresolvableAddress,
		},
	}
	nearbyStatus = statusTable{
		class:     classNearbyRs,
		operation: "queryNearbyLocations",
		errs: map[string]func() *errors.Error{
			"SERVICE_DOWN": errors.ServiceDown,
			"INVALID_ID":   errors.InvalidID,
		},
	}
	suggestStatus = statusTable{
		class:     classSuggestRs,
		operation: "suggestLocations",
		errs: map[string]func() *errors.Error{
			"SERVICE_DOWN": errors.ServiceDown,
		},
	}
)

// status reads the status constant of result.
func (t statusTable) status(rt *jvm.Runtime, env jni.Env, result jni.Ref) string {
	ref := rt.GetField(env, result, t.class, "status", jni.ClassSig(t.class+"$Status")).Ref()
	name, _ := jvm.EnumName(rt, ref)
	return name
}

// check maps the status of result to an error. OK and pass-through
// statuses give nil; anything else unknown is an unexpected status.
func (t statusTable) check(rt *jvm.Runtime, env jni.Env, result jni.Ref) error {
	return t.errorFor(t.status(rt, env, result))
}

func (t statusTable) errorFor(name string) error {
	if name == "OK" {
		return nil
	}
	mk, ok := t.errs[name]
	if !ok {
		return errors.UnexpectedStatus(t.operation, name)
	}
	if mk == nil {
		return nil
	}
	return mk()
}
