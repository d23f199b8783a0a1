package pte

import (
	"time"

	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jvm"
)

// Trip is one connection between two locations.
type Trip struct {
	*jvm.Object
	from       jvm.Lazy[*Location]
	to         jvm.Lazy[*Location]
	legs       jvm.Lazy[*jvm.List[TripLeg]]
	fares      jvm.Lazy[*jvm.List[*Fare]]
	changes    jvm.Lazy[jvm.Maybe[int]]
	duration   jvm.Lazy[time.Duration]
	firstLeg   jvm.Lazy[*PublicLeg]
	lastLeg    jvm.Lazy[*PublicLeg]
	firstDep   jvm.Lazy[jvm.Maybe[time.Time]]
	lastArr    jvm.Lazy[jvm.Maybe[time.Time]]
	minTime    jvm.Lazy[jvm.Maybe[time.Time]]
	maxTime    jvm.Lazy[jvm.Maybe[time.Time]]
	travelable jvm.Lazy[bool]
	products   jvm.Lazy[Products]
}

func newTrip(rt *jvm.Runtime, local jni.Ref) *Trip {
	obj := jvm.Wrap(rt, local)
	if obj == nil {
		return nil
	}
	return &Trip{Object: obj}
}

func (t *Trip) From() *Location {
	return t.from.Get(func() *Location {
		v, _ := fieldChild(t.Object, classTrip, "from", classLocation, NewLocation).Get()
		return v
	})
}

func (t *Trip) To() *Location {
	return t.to.Get(func() *Location {
		v, _ := fieldChild(t.Object, classTrip, "to", classLocation, NewLocation).Get()
		return v
	})
}

// Legs returns the legs in travel order.
func (t *Trip) Legs() *jvm.List[TripLeg] {
	return t.legs.Get(func() *jvm.List[TripLeg] {
		return fieldList(t.Object, classTrip, "legs", newTripLeg)
	})
}

// Fares returns the fares, nil if the provider sent none.
func (t *Trip) Fares() *jvm.List[*Fare] {
	return t.fares.Get(func() *jvm.List[*Fare] {
		return fieldList(t.Object, classTrip, "fares", newFare)
	})
}

// NumChanges returns the number of changes between public legs, if known.
func (t *Trip) NumChanges() (int, bool) {
	return t.changes.Get(func() jvm.Maybe[int] {
		rt := t.Runtime()
		return jvm.Scoped(rt, 1, func(env jni.Env) jvm.Maybe[int] {
			n, ok := jvm.BoxedInt(rt, rt.Invoke(env, t.Ref(), classTrip, "getNumChanges", "()Ljava/lang/Integer;").Ref())
			return jvm.Maybe[int]{Value: int(n), Valid: ok}
		})
	}).Get()
}

// Duration is the time from first departure to last arrival.
func (t *Trip) Duration() time.Duration {
	return t.duration.Get(func() time.Duration {
		rt := t.Runtime()
		return jvm.Scoped(rt, 0, func(env jni.Env) time.Duration {
			return time.Duration(rt.Invoke(env, t.Ref(), classTrip, "getDuration", "()J").Long()) * time.Millisecond
		})
	})
}

func (t *Trip) FirstPublicLeg() *PublicLeg {
	return t.firstLeg.Get(func() *PublicLeg {
		v, _ := callChild(t.Object, classTrip, "getFirstPublicLeg", classPublic, newPublicLeg).Get()
		return v
	})
}

func (t *Trip) LastPublicLeg() *PublicLeg {
	return t.lastLeg.Get(func() *PublicLeg {
		v, _ := callChild(t.Object, classTrip, "getLastPublicLeg", classPublic, newPublicLeg).Get()
		return v
	})
}

func (t *Trip) FirstDepartureTime() (time.Time, bool) {
	return t.firstDep.Get(func() jvm.Maybe[time.Time] { return callDate(t.Object, classTrip, "getFirstDepartureTime") }).Get()
}

func (t *Trip) LastArrivalTime() (time.Time, bool) {
	return t.lastArr.Get(func() jvm.Maybe[time.Time] { return callDate(t.Object, classTrip, "getLastArrivalTime") }).Get()
}

func (t *Trip) MinTime() (time.Time, bool) {
	return t.minTime.Get(func() jvm.Maybe[time.Time] { return callDate(t.Object, classTrip, "getMinTime") }).Get()
}

func (t *Trip) MaxTime() (time.Time, bool) {
	return t.maxTime.Get(func() jvm.Maybe[time.Time] { return callDate(t.Object, classTrip, "getMaxTime") }).Get()
}

// Travelable reports whether every change can be made in time.
func (t *Trip) Travelable() bool {
	return t.travelable.Get(func() bool {
		rt := t.Runtime()
		return jvm.Scoped(rt, 0, func(env jni.Env) bool {
			return rt.Invoke(env, t.Ref(), classTrip, "isTravelable", "()Z").Bool()
		})
	})
}

// Products returns the means of transport used by the public legs.
func (t *Trip) Products() Products {
	return t.products.Get(func() Products {
		rt := t.Runtime()
		return jvm.Scoped(rt, 2, func(env jni.Env) Products {
			return productsFromSet(rt, env, rt.Invoke(env, t.Ref(), classTrip, "products", "()"+sigSet).Ref())
		})
	})
}
