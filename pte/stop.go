package pte

import (
	"time"

	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jvm"
)

// Position is a platform or track.
type Position struct {
	Name    string `json:"name" yaml:"name"`
	Section string `json:"section,omitempty" yaml:"section,omitempty"`
}

func (p *Position) String() string {
	if p == nil {
		return ""
	}
	if p.Section != "" {
		return p.Name + " " + p.Section
	}
	return p.Name
}

func positionFromJava(rt *jvm.Runtime, env jni.Env, pos jni.Ref) *Position {
	if pos == 0 {
		return nil
	}
	name, _ := jvm.GoString(env, rt.GetField(env, pos, classPosition, "name", sigString).Ref())
	section, _ := jvm.GoString(env, rt.GetField(env, pos, classPosition, "section", sigString).Ref())
	return &Position{Name: name, Section: section}
}

type stopTime struct {
	t         time.Time
	predicted bool
	ok        bool
}

type stopPosition struct {
	pos       *Position
	predicted bool
}

// Stop is a call of a vehicle at a location.
type Stop struct {
	*jvm.Object
	location  jvm.Lazy[*Location]
	arrival   jvm.Lazy[stopTime]
	departure jvm.Lazy[stopTime]
	arrDelay  jvm.Lazy[jvm.Maybe[time.Duration]]
	depDelay  jvm.Lazy[jvm.Maybe[time.Duration]]
	arrPos    jvm.Lazy[stopPosition]
	depPos    jvm.Lazy[stopPosition]
}

func newStop(rt *jvm.Runtime, local jni.Ref) *Stop {
	obj := jvm.Wrap(rt, local)
	if obj == nil {
		return nil
	}
	return &Stop{Object: obj}
}

// Location returns where the stop takes place.
func (s *Stop) Location() *Location {
	return s.location.Get(func() *Location {
		loc, _ := fieldChild(s.Object, classStop, "location", classLocation, NewLocation).Get()
		return loc
	})
}

func (s *Stop) timeAndPrediction(getter, predicate string) stopTime {
	rt := s.Runtime()
	return jvm.Scoped(rt, 1, func(env jni.Env) stopTime {
		t, ok := jvm.TimeFromDate(rt, rt.Invoke(env, s.Ref(), classStop, getter, "()"+sigDate).Ref())
		predicted := rt.Invoke(env, s.Ref(), classStop, predicate, "()Z").Bool()
		return stopTime{t: t, predicted: predicted, ok: ok}
	})
}

// ArrivalTime returns the predicted arrival if known, else the planned one.
func (s *Stop) ArrivalTime() (t time.Time, predicted bool, ok bool) {
	v := s.arrival.Get(func() stopTime { return s.timeAndPrediction("getArrivalTime", "isArrivalTimePredicted") })
	return v.t, v.predicted, v.ok
}

// DepartureTime returns the predicted departure if known, else the planned one.
func (s *Stop) DepartureTime() (t time.Time, predicted bool, ok bool) {
	v := s.departure.Get(func() stopTime { return s.timeAndPrediction("getDepartureTime", "isDepartureTimePredicted") })
	return v.t, v.predicted, v.ok
}

func (s *Stop) delay(getter string) jvm.Maybe[time.Duration] {
	rt := s.Runtime()
	return jvm.Scoped(rt, 1, func(env jni.Env) jvm.Maybe[time.Duration] {
		ms, ok := jvm.BoxedLong(rt, rt.Invoke(env, s.Ref(), classStop, getter, "()Ljava/lang/Long;").Ref())
		return jvm.Maybe[time.Duration]{Value: time.Duration(ms) * time.Millisecond, Valid: ok}
	})
}

// ArrivalDelay returns the difference between predicted and planned arrival.
func (s *Stop) ArrivalDelay() (time.Duration, bool) {
	return s.arrDelay.Get(func() jvm.Maybe[time.Duration] { return s.delay("getArrivalDelay") }).Get()
}

// DepartureDelay returns the difference between predicted and planned departure.
func (s *Stop) DepartureDelay() (time.Duration, bool) {
	return s.depDelay.Get(func() jvm.Maybe[time.Duration] { return s.delay("getDepartureDelay") }).Get()
}

func (s *Stop) position(getter, predicate string) stopPosition {
	rt := s.Runtime()
	return jvm.Scoped(rt, 1, func(env jni.Env) stopPosition {
		pos := positionFromJava(rt, env, rt.Invoke(env, s.Ref(), classStop, getter, "()"+jni.ClassSig(classPosition)).Ref())
		predicted := rt.Invoke(env, s.Ref(), classStop, predicate, "()Z").Bool()
		return stopPosition{pos: pos, predicted: predicted}
	})
}

// ArrivalPosition returns the arrival platform, nil if unknown.
func (s *Stop) ArrivalPosition() (pos *Position, predicted bool) {
	v := s.arrPos.Get(func() stopPosition { return s.position("getArrivalPosition", "isArrivalPositionPredicted") })
	return v.pos, v.predicted
}

// DeparturePosition returns the departure platform, nil if unknown.
func (s *Stop) DeparturePosition() (pos *Position, predicted bool) {
	v := s.depPos.Get(func() stopPosition { return s.position("getDeparturePosition", "isDeparturePositionPredicted") })
	return v.pos, v.predicted
}
