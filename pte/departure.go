package pte

import (
	"time"

	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jvm"
)

// Departure is one departure of a line from a station.
type Departure struct {
	*jvm.Object
	planned     jvm.Lazy[jvm.Maybe[time.Time]]
	predicted   jvm.Lazy[jvm.Maybe[time.Time]]
	time        jvm.Lazy[jvm.Maybe[time.Time]]
	line        jvm.Lazy[*Line]
	position    jvm.Lazy[*Position]
	destination jvm.Lazy[*Location]
	message     jvm.Lazy[jvm.Maybe[string]]
}

func newDeparture(rt *jvm.Runtime, local jni.Ref) *Departure {
	obj := jvm.Wrap(rt, local)
	if obj == nil {
		return nil
	}
	return &Departure{Object: obj}
}

func (d *Departure) PlannedTime() (time.Time, bool) {
	return d.planned.Get(func() jvm.Maybe[time.Time] { return fieldDate(d.Object, classDeparture, "plannedTime") }).Get()
}

func (d *Departure) PredictedTime() (time.Time, bool) {
	return d.predicted.Get(func() jvm.Maybe[time.Time] { return fieldDate(d.Object, classDeparture, "predictedTime") }).Get()
}

// Time returns the predicted time if known, else the planned time.
func (d *Departure) Time() (time.Time, bool) {
	return d.time.Get(func() jvm.Maybe[time.Time] { return callDate(d.Object, classDeparture, "getTime") }).Get()
}

func (d *Departure) Line() *Line {
	return d.line.Get(func() *Line {
		l, _ := fieldChild(d.Object, classDeparture, "line", classLine, newLine).Get()
		return l
	})
}

// Position returns the platform, if known.
func (d *Departure) Position() (*Position, bool) {
	p := d.position.Get(func() *Position {
		rt := d.Runtime()
		return jvm.Scoped(rt, 1, func(env jni.Env) *Position {
			return positionFromJava(rt, env, rt.GetField(env, d.Ref(), classDeparture, "position", jni.ClassSig(classPosition)).Ref())
		})
	})
	return p, p != nil
}

// Destination returns where the vehicle is heading, nil if unknown.
func (d *Departure) Destination() *Location {
	return d.destination.Get(func() *Location {
		l, _ := fieldChild(d.Object, classDeparture, "destination", classLocation, NewLocation).Get()
		return l
	})
}

func (d *Departure) Message() (string, bool) {
	return d.message.Get(func() jvm.Maybe[string] { return fieldString(d.Object, classDeparture, "message") }).Get()
}
