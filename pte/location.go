package pte

import (
	"fmt"
	"strings"

	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jvm"
)

// LocationType classifies a location.
type LocationType int

const (
	LocationAny LocationType = iota
	LocationStation
	LocationPOI
	LocationAddress
	LocationCoord
)

var locationTypeNames = map[string]LocationType{
	"ANY":     LocationAny,
	"STATION": LocationStation,
	"POI":     LocationPOI,
	"ADDRESS": LocationAddress,
	"COORD":   LocationCoord,
}

func (t LocationType) String() string {
	switch t {
	case LocationStation:
		return "station"
	case LocationPOI:
		return "poi"
	case LocationAddress:
		return "address"
	case LocationCoord:
		return "coord"
	}
	return "any"
}

// LocationTypes is a set of location types used to filter queries.
type LocationTypes uint8

const (
	LocationsAny LocationTypes = 1 << iota
	LocationsStation
	LocationsPOI
	LocationsAddress
	LocationsCoord
)

var locationTypesConstants = []struct {
	bit  LocationTypes
	name string
}{
	{LocationsAny, "ANY"},
	{LocationsStation, "STATION"},
	{LocationsPOI, "POI"},
	{LocationsAddress, "ADDRESS"},
	{LocationsCoord, "COORD"},
}

func (t LocationTypes) String() string {
	var names []string
	for _, c := range locationTypesConstants {
		if t&c.bit != 0 {
			names = append(names, strings.ToLower(c.name))
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// ParseLocationTypes reads a comma separated list of type names such
// as "station,poi". The empty string means any.
func ParseLocationTypes(s string) (LocationTypes, error) {
	if strings.TrimSpace(s) == "" {
		return LocationsAny, nil
	}
	var out LocationTypes
	for _, name := range strings.Split(s, ",") {
		name = strings.ToUpper(strings.TrimSpace(name))
		found := false
		for _, c := range locationTypesConstants {
			if c.name == name {
				out |= c.bit
				found = true
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown location type %q", name)
		}
	}
	return out, nil
}

// locationTypesToJava builds a java.util.HashSet of LocationType.
func locationTypesToJava(rt *jvm.Runtime, env jni.Env, t LocationTypes) jni.Ref {
	sc := rt.Enter(len(locationTypesConstants) + 2)
	set := newHashSet(rt, env)
	for _, c := range locationTypesConstants {
		if t&c.bit != 0 {
			addTo(rt, env, set, rt.EnumConstant(env, classLocationType, c.name))
		}
	}
	return sc.LeaveWith(set)
}

// Location is a station, address, point of interest or bare coordinate.
// Every accessor reads the foreign object once and caches the value.
type Location struct {
	*jvm.Object
	coords   jvm.Lazy[jvm.Maybe[GeoPoint]]
	id       jvm.Lazy[jvm.Maybe[string]]
	name     jvm.Lazy[jvm.Maybe[string]]
	place    jvm.Lazy[jvm.Maybe[string]]
	products jvm.Lazy[Products]
	typ      jvm.Lazy[LocationType]
}

// NewLocation wraps a foreign Location. It returns nil for null.
func NewLocation(rt *jvm.Runtime, local jni.Ref) *Location {
	obj := jvm.Wrap(rt, local)
	if obj == nil {
		return nil
	}
	return &Location{Object: obj}
}

// LocationFromCoords creates a coordinate-only location. The caller owns
// the result.
func LocationFromCoords(rt *jvm.Runtime, p GeoPoint) *Location {
	sc := rt.Enter(2)
	defer sc.Leave()
	env := sc.Env()
	point := geoPointToJava(rt, env, p)
	created := rt.InvokeStatic(env, classLocation, "coord",
		"("+jni.ClassSig(classPoint)+")"+jni.ClassSig(classLocation), jni.Object(point)).Ref()
	return NewLocation(rt, created)
}

// LocationFromID creates a location known only by type and id, such as
// a station picked from an earlier result. The caller owns the result.
func LocationFromID(rt *jvm.Runtime, typ LocationType, id string) *Location {
	sc := rt.Enter(3)
	defer sc.Leave()
	env := sc.Env()
	name := "ANY"
	for constant, t := range locationTypeNames {
		if t == typ {
			name = constant
		}
	}
	created := rt.NewObject(env, classLocation, "("+jni.ClassSig(classLocationType)+sigString+")V",
		jni.Object(rt.EnumConstant(env, classLocationType, name)),
		jni.Object(env.NewString(id)))
	return NewLocation(rt, created)
}

// Coords returns the coordinate, if the location has one.
func (l *Location) Coords() (GeoPoint, bool) {
	return l.coords.Get(func() jvm.Maybe[GeoPoint] {
		rt := l.Runtime()
		return jvm.Scoped(rt, 1, func(env jni.Env) jvm.Maybe[GeoPoint] {
			point := rt.GetField(env, l.Ref(), classLocation, "coord", jni.ClassSig(classPoint)).Ref()
			if point == 0 {
				return jvm.Maybe[GeoPoint]{}
			}
			return jvm.Some(geoPointFromJava(rt, env, point))
		})
	}).Get()
}

// ID returns the provider-specific identifier.
func (l *Location) ID() (string, bool) {
	return l.id.Get(func() jvm.Maybe[string] {
		return fieldString(l.Object, classLocation, "id")
	}).Get()
}

// Name returns the display name.
func (l *Location) Name() (string, bool) {
	return l.name.Get(func() jvm.Maybe[string] {
		return fieldString(l.Object, classLocation, "name")
	}).Get()
}

// Place returns the town or area the location belongs to.
func (l *Location) Place() (string, bool) {
	return l.place.Get(func() jvm.Maybe[string] {
		return fieldString(l.Object, classLocation, "place")
	}).Get()
}

// Products returns the means of transport serving the location. Null
// reads as the empty set.
func (l *Location) Products() Products {
	return l.products.Get(func() Products {
		rt := l.Runtime()
		return jvm.Scoped(rt, 2, func(env jni.Env) Products {
			set := rt.GetField(env, l.Ref(), classLocation, "products", sigSet).Ref()
			return productsFromSet(rt, env, set)
		})
	})
}

// Type returns the location type.
func (l *Location) Type() LocationType {
	return l.typ.Get(func() LocationType {
		rt := l.Runtime()
		return jvm.Scoped(rt, 1, func(env jni.Env) LocationType {
			ref := rt.GetField(env, l.Ref(), classLocation, "type", jni.ClassSig(classLocationType)).Ref()
			return enumFrom(rt, ref, "LocationType", locationTypeNames, LocationAny)
		})
	})
}

// String returns "name, place", the bare name, the id or the coordinate,
// whichever is available first.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	name, ok := l.Name()
	if ok {
		if place, ok := l.Place(); ok && place != "" {
			return name + ", " + place
		}
		return name
	}
	if id, ok := l.ID(); ok {
		return id
	}
	if p, ok := l.Coords(); ok {
		return p.String()
	}
	return l.Type().String()
}
