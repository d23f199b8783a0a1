package pte

import (
	"fmt"
	"math"

	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jvm"
)

// GeoPoint is a WGS84 coordinate in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

const earthRadius = 6371000.0

// Distance returns the great-circle distance to q in meters.
func (p GeoPoint) Distance(q GeoPoint) float64 {
	rad := math.Pi / 180
	dLat := (q.Lat - p.Lat) * rad
	dLon := (q.Lon - p.Lon) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(p.Lat*rad)*math.Cos(q.Lat*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadius * math.Asin(math.Sqrt(a))
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lon)
}

func geoPointFromJava(rt *jvm.Runtime, env jni.Env, point jni.Ref) GeoPoint {
	return GeoPoint{
		Lat: rt.Invoke(env, point, classPoint, "getLatAsDouble", "()D").Double(),
		Lon: rt.Invoke(env, point, classPoint, "getLonAsDouble", "()D").Double(),
	}
}

func geoPointToJava(rt *jvm.Runtime, env jni.Env, p GeoPoint) jni.Ref {
	return rt.InvokeStatic(env, classPoint, "fromDouble", "(DD)"+jni.ClassSig(classPoint),
		jni.Double(p.Lat), jni.Double(p.Lon)).Ref()
}

// geoPointsFromArray reads a Point[]; geoPointsFromList a List of Point.
func geoPointsFromArray(rt *jvm.Runtime, env jni.Env, arr jni.Ref) []GeoPoint {
	var out []GeoPoint
	arrayElements(env, arr, func(elem jni.Ref) {
		if elem != 0 {
			out = append(out, geoPointFromJava(rt, env, elem))
		}
	})
	return out
}

func geoPointsFromList(rt *jvm.Runtime, env jni.Env, list jni.Ref) []GeoPoint {
	var out []GeoPoint
	elements(rt, env, list, func(elem jni.Ref) {
		if elem != 0 {
			out = append(out, geoPointFromJava(rt, env, elem))
		}
	})
	return out
}
