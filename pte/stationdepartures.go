package pte

import (
	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jvm"
)

// LineDestination is a line together with the destination it serves
// from a station. The wrappers are owned by the StationDepartures.
type LineDestination struct {
	Line        *Line
	Destination *Location
}

// StationDepartures groups the departures of one station.
type StationDepartures struct {
	*jvm.Object
	location   jvm.Lazy[*Location]
	departures jvm.Lazy[*jvm.List[*Departure]]
	lines      jvm.Lazy[[]LineDestination]
}

func newStationDepartures(rt *jvm.Runtime, local jni.Ref) *StationDepartures {
	obj := jvm.Wrap(rt, local)
	if obj == nil {
		return nil
	}
	return &StationDepartures{Object: obj}
}

func (s *StationDepartures) Location() *Location {
	return s.location.Get(func() *Location {
		l, _ := fieldChild(s.Object, classStationDeps, "location", classLocation, NewLocation).Get()
		return l
	})
}

// Departures returns the departures, nil if the provider sent none.
func (s *StationDepartures) Departures() *jvm.List[*Departure] {
	return s.departures.Get(func() *jvm.List[*Departure] {
		return fieldList(s.Object, classStationDeps, "departures", newDeparture)
	})
}

// Lines returns the lines serving the station. It returns nil when the
// provider does not report them.
func (s *StationDepartures) Lines() []LineDestination {
	return s.lines.Get(func() []LineDestination {
		rt := s.Runtime()
		return jvm.Scoped(rt, 4, func(env jni.Env) []LineDestination {
			list := rt.GetField(env, s.Ref(), classStationDeps, "lines", sigList).Ref()
			if list == 0 {
				return nil
			}
			out := []LineDestination{}
			elements(rt, env, list, func(elem jni.Ref) {
				if elem == 0 {
					return
				}
				var ld LineDestination
				if line := rt.GetField(env, elem, classLineDest, "line", jni.ClassSig(classLine)).Ref(); line != 0 {
					ld.Line = adopt(s.Object, newLine(rt, line))
					env.DeleteLocalRef(line)
				}
				if dest := rt.GetField(env, elem, classLineDest, "destination", jni.ClassSig(classLocation)).Ref(); dest != 0 {
					ld.Destination = adopt(s.Object, NewLocation(rt, dest))
					env.DeleteLocalRef(dest)
				}
				out = append(out, ld)
			})
			return out
		})
	})
}
