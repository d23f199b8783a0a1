package ptesim

import (
	"math"
	"time"

	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jni/sim"
)

const (
	pkg = "de/schildbach/pte/"
	dto = pkg + "dto/"

	classProvider     = pkg + "NetworkProvider"
	classSimProvider  = pkg + "SimProvider"
	classCapability   = classProvider + "$Capability"
	classOptimize     = classProvider + "$Optimize"
	classWalkSpeed    = classProvider + "$WalkSpeed"
	classAccess       = classProvider + "$Accessibility"
	classTripFlag     = classProvider + "$TripFlag"
	classLanguage     = pkg + "NegentweeProvider$Language"
	classLocation     = dto + "Location"
	classLocationType = dto + "LocationType"
	classPoint        = dto + "Point"
	classProduct      = dto + "Product"
	classLine         = dto + "Line"
	classLineAttr     = dto + "Line$Attr"
	classStyle        = dto + "Style"
	classShape        = dto + "Style$Shape"
	classPosition     = dto + "Position"
	classStop         = dto + "Stop"
	classDeparture    = dto + "Departure"
	classStationDeps  = dto + "StationDepartures"
	classLineDest     = dto + "LineDestination"
	classFare         = dto + "Fare"
	classFareType     = dto + "Fare$Type"
	classTrip         = dto + "Trip"
	classLeg          = dto + "Trip$Leg"
	classIndividual   = dto + "Trip$Individual"
	classIndivType    = dto + "Trip$Individual$Type"
	classPublic       = dto + "Trip$Public"
	classTripOptions  = dto + "TripOptions"
	classTripsContext = dto + "QueryTripsContext"
	classDeparturesRs = dto + "QueryDeparturesResult"
	classTripsRs      = dto + "QueryTripsResult"
	classNearbyRs     = dto + "NearbyLocationsResult"
	classSuggestRs    = dto + "SuggestLocationsResult"

	sigObject = "Ljava/lang/Object;"
	sigString = "Ljava/lang/String;"
	sigDate   = "Ljava/util/Date;"
	sigList   = "Ljava/util/List;"
	sigSet    = "Ljava/util/Set;"
	sigLong   = "Ljava/lang/Long;"
	sigInt    = "Ljava/lang/Integer;"
)

var (
	sigLocation = jni.ClassSig(classLocation)
	sigPoint    = jni.ClassSig(classPoint)
	sigLine     = jni.ClassSig(classLine)
	sigStop     = jni.ClassSig(classStop)
	sigPosition = jni.ClassSig(classPosition)
	sigStyle    = jni.ClassSig(classStyle)
)

// Status constants of the result classes, in declaration order.
var (
	departuresStatuses = []string{"OK", "INVALID_STATION", "SERVICE_DOWN"}
	tripsStatuses      = []string{"OK", "AMBIGUOUS", "TOO_CLOSE", "UNKNOWN_FROM", "UNKNOWN_VIA", "UNKNOWN_TO",
		"UNKNOWN_LOCATION", "UNRESOLVABLE_ADDRESS", "NO_TRIPS", "INVALID_DATE", "SERVICE_DOWN"}
	nearbyStatuses  = []string{"OK", "INVALID_ID", "SERVICE_DOWN"}
	suggestStatuses = []string{"OK", "SERVICE_DOWN"}
)

// products maps product letters to their enum constants.
var products = []struct {
	code     rune
	constant string
}{
	{'I', "HIGH_SPEED_TRAIN"},
	{'R', "REGIONAL_TRAIN"},
	{'S', "SUBURBAN_TRAIN"},
	{'U', "SUBWAY"},
	{'T', "TRAM"},
	{'B', "BUS"},
	{'F', "FERRY"},
	{'C', "CABLECAR"},
	{'P', "ON_DEMAND"},
}

// times are the Go-side view of a leg or trip.
type times struct {
	dep, arr time.Time
}

func (t times) min() time.Time { return t.dep }
func (t times) max() time.Time { return t.arr }

// defineDTOs registers the data classes and enums of the library.
func defineDTOs(vm *sim.VM) {
	vm.DefineEnum(classLocationType, "ANY", "STATION", "POI", "ADDRESS", "COORD")
	vm.DefineEnum(classLineAttr, "CIRCLE_CLOCKWISE", "CIRCLE_ANTICLOCKWISE", "SERVICE_REPLACEMENT",
		"LINE_AIRPORT", "WHEEL_CHAIR_ACCESS", "BICYCLE_CARRIAGE")
	vm.DefineEnum(classShape, "RECT", "ROUNDED", "CIRCLE")
	vm.DefineEnum(classFareType, "ADULT", "BIKE", "CHILD", "DISABLED", "MILITARY", "SENIOR", "STUDENT", "YOUTH")
	vm.DefineEnum(classIndivType, "WALK", "BIKE", "CAR", "TRANSFER", "CHECK_IN", "CHECK_OUT")
	vm.DefineEnum(classCapability, "DEPARTURES", "NEARBY_LOCATIONS", "SUGGEST_LOCATIONS", "TRIPS", "TRIPS_VIA")
	vm.DefineEnum(classOptimize, "LEAST_DURATION", "LEAST_CHANGES", "LEAST_WALKING")
	vm.DefineEnum(classWalkSpeed, "SLOW", "NORMAL", "FAST")
	vm.DefineEnum(classAccess, "NEUTRAL", "LIMITED", "BARRIER_FREE")
	vm.DefineEnum(classTripFlag, "BIKE")
	vm.DefineEnum(classLanguage, "NL_NL", "EN_GB")
	vm.DefineEnum(classDeparturesRs+"$Status", departuresStatuses...)
	vm.DefineEnum(classTripsRs+"$Status", tripsStatuses...)
	vm.DefineEnum(classNearbyRs+"$Status", nearbyStatuses...)
	vm.DefineEnum(classSuggestRs+"$Status", suggestStatuses...)

	names := make([]string, len(products))
	for i, p := range products {
		names[i] = p.constant
	}
	product := vm.DefineEnum(classProduct, names...).Field("code", "C")
	for _, p := range products {
		product.Constant(p.constant).Set("code", uint16(p.code))
	}

	vm.DefineClass(classPoint, "").
		Field("lat", "I").
		Field("lon", "I").
		Static("fromDouble", "(DD)"+sigPoint, func(c *sim.Call) jni.Value {
			return c.Return(newPoint(vm, c.Args[0].Double(), c.Args[1].Double()))
		}).
		Method("getLatAsDouble", "()D", func(c *sim.Call) jni.Value {
			return jni.Double(float64(c.This.Get("lat").(int32)) / 1e6)
		}).
		Method("getLonAsDouble", "()D", func(c *sim.Call) jni.Value {
			return jni.Double(float64(c.This.Get("lon").(int32)) / 1e6)
		}).
		Method("equals", "("+sigObject+")Z", func(c *sim.Call) jni.Value {
			o := c.Object(0)
			return jni.Bool(o != nil && o.Class == c.This.Class &&
				o.Get("lat") == c.This.Get("lat") && o.Get("lon") == c.This.Get("lon"))
		})

	vm.DefineClass(classLocation, "").
		Field("type", jni.ClassSig(classLocationType)).
		Field("id", sigString).
		Field("coord", sigPoint).
		Field("place", sigString).
		Field("name", sigString).
		Field("products", sigSet).
		Method("<init>", "("+jni.ClassSig(classLocationType)+sigString+")V", func(c *sim.Call) jni.Value {
			if c.Object(0) == nil {
				return c.Throw("java/lang/NullPointerException", "type")
			}
			c.This.Set("type", c.Object(0))
			if id := c.Object(1); id != nil {
				c.This.Set("id", id)
			}
			return jni.Void()
		}).
		Static("coord", "("+sigPoint+")"+sigLocation, func(c *sim.Call) jni.Value {
			p := c.Object(0)
			if p == nil {
				return c.Throw("java/lang/NullPointerException", "coord")
			}
			return c.Return(vm.MustClass(classLocation).New(map[string]any{
				"type":  vm.MustClass(classLocationType).Constant("COORD"),
				"coord": p,
			}))
		}).
		Method("equals", "("+sigObject+")Z", func(c *sim.Call) jni.Value {
			return jni.Bool(sameLocation(c.This, c.Object(0)))
		}).
		Method("hashCode", "()I", func(c *sim.Call) jni.Value {
			if id, ok := c.This.Get("id").(*sim.Object); ok {
				return jni.Int(javaHash(id.String()))
			}
			return jni.Int(c.This.Hash())
		})

	vm.DefineClass(classStyle, "").
		Field("shape", jni.ClassSig(classShape)).
		Field("backgroundColor", "I").
		Field("backgroundColor2", "I").
		Field("foregroundColor", "I").
		Field("borderColor", "I")

	vm.DefineClass(classLine, "").
		Field("id", sigString).
		Field("network", sigString).
		Field("product", jni.ClassSig(classProduct)).
		Field("label", sigString).
		Field("name", sigString).
		Field("style", sigStyle).
		Field("attrs", sigSet).
		Field("message", sigString)

	vm.DefineClass(classPosition, "").
		Field("name", sigString).
		Field("section", sigString)

	stop := vm.DefineClass(classStop, "").
		Field("location", sigLocation).
		Field("plannedArrivalTime", sigDate).
		Field("predictedArrivalTime", sigDate).
		Field("plannedArrivalPosition", sigPosition).
		Field("predictedArrivalPosition", sigPosition).
		Field("plannedDepartureTime", sigDate).
		Field("predictedDepartureTime", sigDate).
		Field("plannedDeparturePosition", sigPosition).
		Field("predictedDeparturePosition", sigPosition)
	for _, dir := range []string{"Arrival", "Departure"} {
		planned, predicted := "planned"+dir, "predicted"+dir
		stop.
			Method("get"+dir+"Time", "()"+sigDate, func(c *sim.Call) jni.Value {
				return c.Return(preferred(c.This, predicted+"Time", planned+"Time"))
			}).
			Method("is"+dir+"TimePredicted", "()Z", func(c *sim.Call) jni.Value {
				return jni.Bool(c.This.Get(predicted+"Time") != nil)
			}).
			Method("get"+dir+"Delay", "()"+sigLong, func(c *sim.Call) jni.Value {
				p, _ := c.This.Get(planned + "Time").(*sim.Object)
				q, _ := c.This.Get(predicted + "Time").(*sim.Object)
				if p == nil || q == nil {
					return c.Return(nil)
				}
				return c.Return(vm.Long(sim.Millis(q) - sim.Millis(p)))
			}).
			Method("get"+dir+"Position", "()"+sigPosition, func(c *sim.Call) jni.Value {
				return c.Return(preferred(c.This, predicted+"Position", planned+"Position"))
			}).
			Method("is"+dir+"PositionPredicted", "()Z", func(c *sim.Call) jni.Value {
				return jni.Bool(c.This.Get(predicted+"Position") != nil)
			})
	}

	vm.DefineClass(classDeparture, "").
		Field("plannedTime", sigDate).
		Field("predictedTime", sigDate).
		Field("line", sigLine).
		Field("position", sigPosition).
		Field("destination", sigLocation).
		Field("message", sigString).
		Method("getTime", "()"+sigDate, func(c *sim.Call) jni.Value {
			return c.Return(preferred(c.This, "predictedTime", "plannedTime"))
		})

	vm.DefineClass(classLineDest, "").
		Field("line", sigLine).
		Field("destination", sigLocation)

	vm.DefineClass(classStationDeps, "").
		Field("location", sigLocation).
		Field("departures", sigList).
		Field("lines", sigList)

	vm.DefineClass(classFare, "").
		Field("name", sigString).
		Field("type", jni.ClassSig(classFareType)).
		Field("currency", "Ljava/util/Currency;").
		Field("fare", "F").
		Field("unitName", sigString).
		Field("units", sigString)

	legTimes := func(c *sim.Call) times { return c.This.Native.(times) }
	vm.DefineClass(classLeg, "").
		Field("departure", sigLocation).
		Field("arrival", sigLocation).
		Field("path", sigList).
		Method("getDepartureTime", "()"+sigDate, func(c *sim.Call) jni.Value {
			return c.Return(vm.Date(legTimes(c).dep))
		}).
		Method("getArrivalTime", "()"+sigDate, func(c *sim.Call) jni.Value {
			return c.Return(vm.Date(legTimes(c).arr))
		}).
		Method("getMinTime", "()"+sigDate, func(c *sim.Call) jni.Value {
			return c.Return(vm.Date(legTimes(c).min()))
		}).
		Method("getMaxTime", "()"+sigDate, func(c *sim.Call) jni.Value {
			return c.Return(vm.Date(legTimes(c).max()))
		})
	vm.DefineClass(classIndividual, classLeg).
		Field("type", jni.ClassSig(classIndivType)).
		Field("departureTime", sigDate).
		Field("arrivalTime", sigDate).
		Field("min", "I").
		Field("distance", "I")
	vm.DefineClass(classPublic, classLeg).
		Field("line", sigLine).
		Field("destination", sigLocation).
		Field("departureStop", sigStop).
		Field("arrivalStop", sigStop).
		Field("intermediateStops", sigList).
		Field("message", sigString)

	tripData := func(c *sim.Call) *trip { return c.This.Native.(*trip) }
	vm.DefineClass(classTrip, "").
		Field("id", sigString).
		Field("from", sigLocation).
		Field("to", sigLocation).
		Field("legs", sigList).
		Field("fares", sigList).
		Method("getNumChanges", "()"+sigInt, func(c *sim.Call) jni.Value {
			return c.Return(vm.Integer(int32(tripData(c).changes)))
		}).
		Method("getDuration", "()J", func(c *sim.Call) jni.Value {
			t := tripData(c)
			return jni.Long(t.arr.Sub(t.dep).Milliseconds())
		}).
		Method("getFirstPublicLeg", "()"+jni.ClassSig(classPublic), func(c *sim.Call) jni.Value {
			return c.Return(tripData(c).firstPublic)
		}).
		Method("getLastPublicLeg", "()"+jni.ClassSig(classPublic), func(c *sim.Call) jni.Value {
			return c.Return(tripData(c).lastPublic)
		}).
		Method("getFirstDepartureTime", "()"+sigDate, func(c *sim.Call) jni.Value {
			return c.Return(vm.Date(tripData(c).dep))
		}).
		Method("getLastArrivalTime", "()"+sigDate, func(c *sim.Call) jni.Value {
			return c.Return(vm.Date(tripData(c).arr))
		}).
		Method("getMinTime", "()"+sigDate, func(c *sim.Call) jni.Value {
			return c.Return(vm.Date(tripData(c).dep))
		}).
		Method("getMaxTime", "()"+sigDate, func(c *sim.Call) jni.Value {
			return c.Return(vm.Date(tripData(c).arr))
		}).
		Method("isTravelable", "()Z", func(c *sim.Call) jni.Value {
			return jni.Bool(tripData(c).travelable)
		}).
		Method("products", "()"+sigSet, func(c *sim.Call) jni.Value {
			return c.Return(productSet(vm, tripData(c).products))
		})

	vm.DefineClass(classTripOptions, "").
		Field("products", sigSet).
		Field("optimize", jni.ClassSig(classOptimize)).
		Field("walkSpeed", jni.ClassSig(classWalkSpeed)).
		Field("accessibility", jni.ClassSig(classAccess)).
		Field("flags", sigSet).
		Method("<init>", "("+sigSet+jni.ClassSig(classOptimize)+jni.ClassSig(classWalkSpeed)+jni.ClassSig(classAccess)+sigSet+")V",
			func(c *sim.Call) jni.Value {
				for i, name := range []string{"products", "optimize", "walkSpeed", "accessibility", "flags"} {
					if o := c.Object(i); o != nil {
						c.This.Set(name, o)
					}
				}
				return jni.Void()
			})

	ctxData := func(c *sim.Call) *pageContext { return c.This.Native.(*pageContext) }
	vm.DefineClass(classTripsContext, "").
		Method("canQueryEarlier", "()Z", func(c *sim.Call) jni.Value {
			return jni.Bool(ctxData(c).earlier)
		}).
		Method("canQueryLater", "()Z", func(c *sim.Call) jni.Value {
			return jni.Bool(ctxData(c).later)
		})

	status := func(class string) string { return jni.ClassSig(class + "$Status") }
	vm.DefineClass(classDeparturesRs, "").
		Field("status", status(classDeparturesRs)).
		Field("stationDepartures", sigList)
	vm.DefineClass(classTripsRs, "").
		Field("status", status(classTripsRs)).
		Field("from", sigLocation).
		Field("via", sigLocation).
		Field("to", sigLocation).
		Field("context", jni.ClassSig(classTripsContext)).
		Field("trips", sigList).
		Field("ambiguousFrom", sigList).
		Field("ambiguousVia", sigList).
		Field("ambiguousTo", sigList)
	vm.DefineClass(classNearbyRs, "").
		Field("status", status(classNearbyRs)).
		Field("locations", sigList)
	vm.DefineClass(classSuggestRs, "").
		Field("status", status(classSuggestRs)).
		Field("suggestedLocations", sigList).
		Method("getLocations", "()"+sigList, func(c *sim.Call) jni.Value {
			return c.Return(asObject(c.This.Get("suggestedLocations")))
		})
}

// preferred returns the first non-null object field of o.
func preferred(o *sim.Object, fields ...string) *sim.Object {
	for _, f := range fields {
		if v, ok := o.Get(f).(*sim.Object); ok && v != nil {
			return v
		}
	}
	return nil
}

func asObject(v any) *sim.Object {
	o, _ := v.(*sim.Object)
	return o
}

func newPoint(vm *sim.VM, lat, lon float64) *sim.Object {
	return vm.MustClass(classPoint).New(map[string]any{
		"lat": int32(math.Round(lat * 1e6)),
		"lon": int32(math.Round(lon * 1e6)),
	})
}

// sameLocation compares by type and id, or by coordinate for locations
// without an id.
func sameLocation(a, b *sim.Object) bool {
	if a == nil || b == nil || a.Class != b.Class {
		return a == b
	}
	if a.Get("type") != b.Get("type") {
		return false
	}
	ia, _ := a.Get("id").(*sim.Object)
	ib, _ := b.Get("id").(*sim.Object)
	if ia != nil || ib != nil {
		return ia != nil && ib != nil && ia.String() == ib.String()
	}
	pa, _ := a.Get("coord").(*sim.Object)
	pb, _ := b.Get("coord").(*sim.Object)
	return pa != nil && pb != nil && pa.Get("lat") == pb.Get("lat") && pa.Get("lon") == pb.Get("lon")
}

func productSet(vm *sim.VM, letters string) *sim.Object {
	enum := vm.MustClass(classProduct)
	var items []*sim.Object
	for _, r := range letters {
		for _, p := range products {
			if p.code == r {
				items = append(items, enum.Constant(p.constant))
			}
		}
	}
	return vm.NewSet(items...)
}

// javaHash is String.hashCode.
func javaHash(s string) int32 {
	var h int32
	for _, r := range s {
		h = 31*h + r
	}
	return h
}
