package pte

import (
	"time"

	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jvm"
)

// TripLeg is one leg of a trip: an *IndividualLeg, a *PublicLeg, or a
// bare *Leg for leg classes the bridge does not know.
type TripLeg interface {
	jvm.Wrapper
	leg() *Leg
}

// newTripLeg picks the wrapper matching the runtime class of local.
func newTripLeg(rt *jvm.Runtime, local jni.Ref) TripLeg {
	obj := jvm.Wrap(rt, local)
	if obj == nil {
		return nil
	}
	base := &Leg{Object: obj}
	return jvm.Scoped(rt, 0, func(env jni.Env) TripLeg {
		switch {
		case env.IsInstanceOf(obj.Ref(), rt.Class(env, classIndividual)):
			return &IndividualLeg{Leg: base}
		case env.IsInstanceOf(obj.Ref(), rt.Class(env, classPublic)):
			return &PublicLeg{Leg: base}
		}
		return base
	})
}

// Leg holds the accessors shared by every leg.
type Leg struct {
	*jvm.Object
	departure jvm.Lazy[*Location]
	arrival   jvm.Lazy[*Location]
	path      jvm.Lazy[[]GeoPoint]
	depTime   jvm.Lazy[jvm.Maybe[time.Time]]
	arrTime   jvm.Lazy[jvm.Maybe[time.Time]]
	minTime   jvm.Lazy[jvm.Maybe[time.Time]]
	maxTime   jvm.Lazy[jvm.Maybe[time.Time]]
}

func (l *Leg) leg() *Leg { return l }

func (l *Leg) Departure() *Location {
	return l.departure.Get(func() *Location {
		loc, _ := fieldChild(l.Object, classLeg, "departure", classLocation, NewLocation).Get()
		return loc
	})
}

func (l *Leg) Arrival() *Location {
	return l.arrival.Get(func() *Location {
		loc, _ := fieldChild(l.Object, classLeg, "arrival", classLocation, NewLocation).Get()
		return loc
	})
}

// Path returns the geometry of the leg. It is empty when the provider
// sends none.
func (l *Leg) Path() []GeoPoint {
	return l.path.Get(func() []GeoPoint {
		rt := l.Runtime()
		return jvm.Scoped(rt, 3, func(env jni.Env) []GeoPoint {
			return geoPointsFromList(rt, env, rt.GetField(env, l.Ref(), classLeg, "path", sigList).Ref())
		})
	})
}

func (l *Leg) DepartureTime() (time.Time, bool) {
	return l.depTime.Get(func() jvm.Maybe[time.Time] { return callDate(l.Object, classLeg, "getDepartureTime") }).Get()
}

func (l *Leg) ArrivalTime() (time.Time, bool) {
	return l.arrTime.Get(func() jvm.Maybe[time.Time] { return callDate(l.Object, classLeg, "getArrivalTime") }).Get()
}

// MinTime is the earliest time the leg touches.
func (l *Leg) MinTime() (time.Time, bool) {
	return l.minTime.Get(func() jvm.Maybe[time.Time] { return callDate(l.Object, classLeg, "getMinTime") }).Get()
}

// MaxTime is the latest time the leg touches.
func (l *Leg) MaxTime() (time.Time, bool) {
	return l.maxTime.Get(func() jvm.Maybe[time.Time] { return callDate(l.Object, classLeg, "getMaxTime") }).Get()
}

// IndividualType is the way an individual leg is travelled.
type IndividualType int

const (
	IndividualNone IndividualType = iota
	IndividualBike
	IndividualCar
	IndividualCheckIn
	IndividualCheckOut
	IndividualTransfer
	IndividualWalk
)

var individualTypeNames = map[string]IndividualType{
	"BIKE":      IndividualBike,
	"CAR":       IndividualCar,
	"CHECK_IN":  IndividualCheckIn,
	"CHECK_OUT": IndividualCheckOut,
	"TRANSFER":  IndividualTransfer,
	"WALK":      IndividualWalk,
}

func (t IndividualType) String() string {
	for k, v := range individualTypeNames {
		if v == t {
			return lowerName(k)
		}
	}
	return "none"
}

// IndividualLeg is a leg travelled without public transport.
type IndividualLeg struct {
	*Leg
	typ      jvm.Lazy[IndividualType]
	distance jvm.Lazy[int]
}

func (l *IndividualLeg) Type() IndividualType {
	return l.typ.Get(func() IndividualType {
		rt := l.Runtime()
		return jvm.Scoped(rt, 1, func(env jni.Env) IndividualType {
			ref := rt.GetField(env, l.Ref(), classIndividual, "type", jni.ClassSig(classIndivType)).Ref()
			return enumFrom(rt, ref, "Trip.Individual.Type", individualTypeNames, IndividualNone)
		})
	})
}

// Distance is the length of the leg in meters.
func (l *IndividualLeg) Distance() int {
	return l.distance.Get(func() int {
		rt := l.Runtime()
		return jvm.Scoped(rt, 0, func(env jni.Env) int {
			return int(rt.GetField(env, l.Ref(), classIndividual, "distance", "I").Int())
		})
	})
}

// PublicLeg is a ride on a public transport line.
type PublicLeg struct {
	*Leg
	line         jvm.Lazy[*Line]
	destination  jvm.Lazy[*Location]
	depStop      jvm.Lazy[*Stop]
	arrStop      jvm.Lazy[*Stop]
	intermediate jvm.Lazy[*jvm.List[*Stop]]
	message      jvm.Lazy[jvm.Maybe[string]]
}

func (l *PublicLeg) Line() *Line {
	return l.line.Get(func() *Line {
		v, _ := fieldChild(l.Object, classPublic, "line", classLine, newLine).Get()
		return v
	})
}

func (l *PublicLeg) Destination() *Location {
	return l.destination.Get(func() *Location {
		v, _ := fieldChild(l.Object, classPublic, "destination", classLocation, NewLocation).Get()
		return v
	})
}

func (l *PublicLeg) DepartureStop() *Stop {
	return l.depStop.Get(func() *Stop {
		v, _ := fieldChild(l.Object, classPublic, "departureStop", classStop, newStop).Get()
		return v
	})
}

func (l *PublicLeg) ArrivalStop() *Stop {
	return l.arrStop.Get(func() *Stop {
		v, _ := fieldChild(l.Object, classPublic, "arrivalStop", classStop, newStop).Get()
		return v
	})
}

// IntermediateStops returns the stops between departure and arrival, nil
// if the provider sent none.
func (l *PublicLeg) IntermediateStops() *jvm.List[*Stop] {
	return l.intermediate.Get(func() *jvm.List[*Stop] {
		return fieldList(l.Object, classPublic, "intermediateStops", newStop)
	})
}

func (l *PublicLeg) Message() (string, bool) {
	return l.message.Get(func() jvm.Maybe[string] { return fieldString(l.Object, classPublic, "message") }).Get()
}

// newPublicLeg wraps a local known to be a Trip$Public.
func newPublicLeg(rt *jvm.Runtime, local jni.Ref) *PublicLeg {
	obj := jvm.Wrap(rt, local)
	if obj == nil {
		return nil
	}
	return &PublicLeg{Leg: &Leg{Object: obj}}
}
