package pte

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/pte-bridge/errors"
	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jvm"
	"github.com/wippyai/pte-bridge/task"
)

// Capabilities are the query kinds a provider supports.
type Capabilities uint8

const (
	CapDepartures Capabilities = 1 << iota
	CapNearbyLocations
	CapSuggestLocations
	CapTrips
	CapTripsVia
)

var capabilityConstants = []struct {
	bit  Capabilities
	name string
}{
	{CapDepartures, "DEPARTURES"},
	{CapNearbyLocations, "NEARBY_LOCATIONS"},
	{CapSuggestLocations, "SUGGEST_LOCATIONS"},
	{CapTrips, "TRIPS"},
	{CapTripsVia, "TRIPS_VIA"},
}

func (c Capabilities) String() string {
	var s string
	for _, k := range capabilityConstants {
		if c&k.bit != 0 {
			if s != "" {
				s += ","
			}
			s += lowerName(k.name)
		}
	}
	return s
}

// DeparturesFlags modify a departures query.
type DeparturesFlags uint8

const (
	// QueryEquivs includes departures of equivalent stations.
	QueryEquivs DeparturesFlags = 1 << iota
)

// TripsRequest says whether the time of a trip query is a departure or
// an arrival time.
type TripsRequest int

const (
	TripsDeparture TripsRequest = iota
	TripsArrival
)

// Provider is a network provider of the library. Queries block on the
// network; the Async variants run them on a task pool. Locations passed
// to a query and the provider itself must stay alive until the query
// returns or its future completes.
type Provider struct {
	*jvm.Object
	id       string
	defaults jvm.Lazy[Products]
	area     jvm.Lazy[[]GeoPoint]
}

// NewProvider wraps a constructed NetworkProvider.
func NewProvider(rt *jvm.Runtime, id string, local jni.Ref) *Provider {
	obj := jvm.Wrap(rt, local)
	if obj == nil {
		return nil
	}
	return &Provider{Object: obj, id: id}
}

// ID returns the catalog identifier the provider was created with.
func (p *Provider) ID() string { return p.id }

// DefaultProducts returns the products queried when none are given.
func (p *Provider) DefaultProducts() Products {
	return p.defaults.Get(func() Products {
		rt := p.Runtime()
		return jvm.Scoped(rt, 2, func(env jni.Env) Products {
			return productsFromSet(rt, env, rt.Invoke(env, p.Ref(), classProvider, "defaultProducts", "()"+sigSet).Ref())
		})
	})
}

// HasCapabilities reports whether the provider supports all of c.
func (p *Provider) HasCapabilities(c Capabilities) bool {
	rt := p.Runtime()
	return jvm.Scoped(rt, len(capabilityConstants)+2, func(env jni.Env) bool {
		var names []string
		for _, k := range capabilityConstants {
			if c&k.bit != 0 {
				names = append(names, k.name)
			}
		}
		arr := env.NewObjectArray(len(names), rt.Class(env, classCapability), 0)
		for i, name := range names {
			env.SetObjectArrayElement(arr, i, rt.EnumConstant(env, classCapability, name))
		}
		return rt.Invoke(env, p.Ref(), classProvider, "hasCapabilities",
			"(["+jni.ClassSig(classCapability)+")Z", jni.Object(arr)).Bool()
	})
}

// Area returns the polygon covered by the provider, empty if unknown.
func (p *Provider) Area() []GeoPoint {
	return p.area.Get(func() []GeoPoint {
		rt := p.Runtime()
		return jvm.Scoped(rt, 3, func(env jni.Env) []GeoPoint {
			arr := rt.Invoke(env, p.Ref(), classProvider, "getArea", "()["+jni.ClassSig(classPoint)).Ref()
			if err := rt.CheckException(); err != nil {
				Logger().Debug("no area", zap.String("provider", p.id), zap.Error(err))
				return nil
			}
			return geoPointsFromArray(rt, env, arr)
		})
	})
}

// LineStyle returns the style the provider assigns to a line.
func (p *Provider) LineStyle(network string, product ProductCode, label string) (*Style, bool) {
	rt := p.Runtime()
	s := jvm.Scoped(rt, 5, func(env jni.Env) *Style {
		var net, lbl jni.Ref
		if network != "" {
			net = jvm.JavaString(env, network)
		}
		if label != "" {
			lbl = jvm.JavaString(env, label)
		}
		ref := rt.Invoke(env, p.Ref(), classProvider, "lineStyle",
			"("+sigString+jni.ClassSig(classProduct)+sigString+")"+jni.ClassSig(classStyle),
			jni.Object(net), jni.Object(productToJava(rt, env, product)), jni.Object(lbl)).Ref()
		if err := rt.CheckException(); err != nil {
			Logger().Debug("line style failed", zap.String("provider", p.id), zap.Error(err))
			return nil
		}
		return styleFromJava(rt, env, ref)
	})
	return s, s != nil
}

// query runs a provider method and checks the result: the pending
// exception first, then the status. On success read gets the result.
func query[T any](p *Provider, table statusTable, name, sig string, args []func(env jni.Env) jni.Value, read func(env jni.Env, result jni.Ref) T) (T, error) {
	rt := p.Runtime()
	sc := rt.Enter(len(args) + 4)
	defer sc.Leave()
	env := sc.Env()

	var zero T
	vals := make([]jni.Value, len(args))
	for i, a := range args {
		vals[i] = a(env)
	}
	log := Logger().With(zap.String("provider", p.id), zap.String("query", name))
	log.Debug("query")
	result := rt.Invoke(env, p.Ref(), classProvider, name, sig, vals...).Ref()
	if err := rt.CheckException(); err != nil {
		log.Debug("query raised", zap.Error(err))
		return zero, err
	}
	if result == 0 {
		return zero, errors.UnexpectedStatus(table.operation, "null")
	}
	if err := table.check(rt, env, result); err != nil {
		log.Debug("query failed", zap.Error(err))
		return zero, err
	}
	return read(env, result), nil
}

func stringArg(s string) func(jni.Env) jni.Value {
	return func(env jni.Env) jni.Value { return jni.Object(jvm.JavaString(env, s)) }
}

func locationArg(l *Location) func(jni.Env) jni.Value {
	return func(jni.Env) jni.Value {
		if l == nil {
			return jni.Object(0)
		}
		return jni.Object(l.Ref())
	}
}

func valueArg(v jni.Value) func(jni.Env) jni.Value {
	return func(jni.Env) jni.Value { return v }
}

// QueryDepartures returns the next departures at a station. A zero time
// means now. The caller owns the returned list.
func (p *Provider) QueryDepartures(stationID string, at time.Time, max int, flags DeparturesFlags) (*jvm.List[*StationDepartures], error) {
	rt := p.Runtime()
	sig := "(" + sigString + sigDate + "IZ)" + jni.ClassSig(classDeparturesRs)
	return query(p, departuresStatus, "queryDepartures", sig,
		[]func(jni.Env) jni.Value{
			stringArg(stationID),
			func(env jni.Env) jni.Value { return jni.Object(jvm.DateFromTime(rt, env, at)) },
			valueArg(jni.Int(int32(max))),
			valueArg(jni.Bool(flags&QueryEquivs != 0)),
		},
		func(env jni.Env, result jni.Ref) *jvm.List[*StationDepartures] {
			return jvm.NewList(rt, rt.GetField(env, result, classDeparturesRs, "stationDepartures", sigList).Ref(), newStationDepartures)
		})
}

// QueryTrips searches connections from one location to another,
// optionally via a third. via and opts may be nil. The caller owns the
// returned result.
func (p *Provider) QueryTrips(from, via, to *Location, at time.Time, req TripsRequest, opts *TripOptions) (*TripsResult, error) {
	rt := p.Runtime()
	loc := jni.ClassSig(classLocation)
	sig := "(" + loc + loc + loc + sigDate + "Z" + jni.ClassSig(classTripOptions) + ")" + jni.ClassSig(classTripsRs)
	return query(p, tripsStatus, "queryTrips", sig,
		[]func(jni.Env) jni.Value{
			locationArg(from),
			locationArg(via),
			locationArg(to),
			func(env jni.Env) jni.Value { return jni.Object(jvm.DateFromTime(rt, env, at)) },
			valueArg(jni.Bool(req == TripsDeparture)),
			func(env jni.Env) jni.Value { return jni.Object(opts.toJava(rt, env)) },
		},
		func(env jni.Env, result jni.Ref) *TripsResult {
			return NewTripsResult(rt, p, result)
		})
}

// QueryNearby returns locations of the given types around loc. A zero
// maxDistance or max leaves the limit to the provider.
func (p *Provider) QueryNearby(types LocationTypes, loc *Location, maxDistance, max int) (*jvm.List[*Location], error) {
	rt := p.Runtime()
	sig := "(" + sigSet + jni.ClassSig(classLocation) + "II)" + jni.ClassSig(classNearbyRs)
	return query(p, nearbyStatus, "queryNearbyLocations", sig,
		[]func(jni.Env) jni.Value{
			func(env jni.Env) jni.Value { return jni.Object(locationTypesToJava(rt, env, types)) },
			locationArg(loc),
			valueArg(jni.Int(int32(maxDistance))),
			valueArg(jni.Int(int32(max))),
		},
		func(env jni.Env, result jni.Ref) *jvm.List[*Location] {
			return jvm.NewList(rt, rt.GetField(env, result, classNearbyRs, "locations", sigList).Ref(), NewLocation)
		})
}

// SuggestLocations completes a partial location name.
func (p *Provider) SuggestLocations(constraint string, types LocationTypes, max int) (*jvm.List[*Location], error) {
	rt := p.Runtime()
	sig := "(Ljava/lang/CharSequence;" + sigSet + "I)" + jni.ClassSig(classSuggestRs)
	return query(p, suggestStatus, "suggestLocations", sig,
		[]func(jni.Env) jni.Value{
			stringArg(constraint),
			func(env jni.Env) jni.Value { return jni.Object(locationTypesToJava(rt, env, types)) },
			valueArg(jni.Int(int32(max))),
		},
		func(env jni.Env, result jni.Ref) *jvm.List[*Location] {
			return jvm.NewList(rt, rt.Invoke(env, result, classSuggestRs, "getLocations", "()"+sigList).Ref(), NewLocation)
		})
}

// Worker thread names of the async queries.
const (
	threadDepartures = "pte-query-departures"
	threadTrips      = "pte-query-trips"
	threadNearby     = "pte-query-nearby"
	threadSuggest    = "pte-suggest-locations"
	threadMore       = "pte-query-more"
)

// QueryDeparturesAsync runs QueryDepartures on pool.
func (p *Provider) QueryDeparturesAsync(ctx context.Context, pool *task.Pool, stationID string, at time.Time, max int, flags DeparturesFlags) *task.Future[*jvm.List[*StationDepartures]] {
	return task.Run(ctx, pool, p.Runtime(), threadDepartures, func(context.Context) (*jvm.List[*StationDepartures], error) {
		return p.QueryDepartures(stationID, at, max, flags)
	})
}

// QueryTripsAsync runs QueryTrips on pool.
func (p *Provider) QueryTripsAsync(ctx context.Context, pool *task.Pool, from, via, to *Location, at time.Time, req TripsRequest, opts *TripOptions) *task.Future[*TripsResult] {
	return task.Run(ctx, pool, p.Runtime(), threadTrips, func(context.Context) (*TripsResult, error) {
		return p.QueryTrips(from, via, to, at, req, opts)
	})
}

// QueryNearbyAsync runs QueryNearby on pool.
func (p *Provider) QueryNearbyAsync(ctx context.Context, pool *task.Pool, types LocationTypes, loc *Location, maxDistance, max int) *task.Future[*jvm.List[*Location]] {
	return task.Run(ctx, pool, p.Runtime(), threadNearby, func(context.Context) (*jvm.List[*Location], error) {
		return p.QueryNearby(types, loc, maxDistance, max)
	})
}

// SuggestLocationsAsync runs SuggestLocations on pool.
func (p *Provider) SuggestLocationsAsync(ctx context.Context, pool *task.Pool, constraint string, types LocationTypes, max int) *task.Future[*jvm.List[*Location]] {
	return task.Run(ctx, pool, p.Runtime(), threadSuggest, func(context.Context) (*jvm.List[*Location], error) {
		return p.SuggestLocations(constraint, types, max)
	})
}
