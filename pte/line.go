package pte

import (
	"strings"

	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jvm"
)

// LineAttrs are properties of a line.
type LineAttrs uint8

const (
	LineCircleClockwise LineAttrs = 1 << iota
	LineCircleAnticlockwise
	LineServiceReplacement
	LineAirport
	LineWheelChairAccess
	LineBicycleCarriage
)

var lineAttrTable = []struct {
	bit      LineAttrs
	constant string
	name     string
}{
	{LineCircleClockwise, "CIRCLE_CLOCKWISE", "circle-clockwise"},
	{LineCircleAnticlockwise, "CIRCLE_ANTICLOCKWISE", "circle-anticlockwise"},
	{LineServiceReplacement, "SERVICE_REPLACEMENT", "service-replacement"},
	{LineAirport, "LINE_AIRPORT", "line-airport"},
	{LineWheelChairAccess, "WHEEL_CHAIR_ACCESS", "wheel-chair-access"},
	{LineBicycleCarriage, "BICYCLE_CARRIAGE", "bicycle-carriage"},
}

var lineAttrNames = func() map[string]LineAttrs {
	m := make(map[string]LineAttrs, len(lineAttrTable))
	for _, a := range lineAttrTable {
		m[a.constant] = a.bit
	}
	return m
}()

func (a LineAttrs) String() string {
	var names []string
	for _, e := range lineAttrTable {
		if a&e.bit != 0 {
			names = append(names, e.name)
		}
	}
	return strings.Join(names, ",")
}

// Line is a public transport line.
type Line struct {
	*jvm.Object
	id      jvm.Lazy[jvm.Maybe[string]]
	network jvm.Lazy[jvm.Maybe[string]]
	label   jvm.Lazy[jvm.Maybe[string]]
	name    jvm.Lazy[jvm.Maybe[string]]
	message jvm.Lazy[jvm.Maybe[string]]
	product jvm.Lazy[ProductCode]
	style   jvm.Lazy[*Style]
	attrs   jvm.Lazy[LineAttrs]
}

func newLine(rt *jvm.Runtime, local jni.Ref) *Line {
	obj := jvm.Wrap(rt, local)
	if obj == nil {
		return nil
	}
	return &Line{Object: obj}
}

func (l *Line) ID() (string, bool) {
	return l.id.Get(func() jvm.Maybe[string] { return fieldString(l.Object, classLine, "id") }).Get()
}

func (l *Line) Network() (string, bool) {
	return l.network.Get(func() jvm.Maybe[string] { return fieldString(l.Object, classLine, "network") }).Get()
}

// Label is the short name shown on badges, such as "U2".
func (l *Line) Label() (string, bool) {
	return l.label.Get(func() jvm.Maybe[string] { return fieldString(l.Object, classLine, "label") }).Get()
}

func (l *Line) Name() (string, bool) {
	return l.name.Get(func() jvm.Maybe[string] { return fieldString(l.Object, classLine, "name") }).Get()
}

func (l *Line) Message() (string, bool) {
	return l.message.Get(func() jvm.Maybe[string] { return fieldString(l.Object, classLine, "message") }).Get()
}

// Product returns the means of transport, ProductNone if unset.
func (l *Line) Product() ProductCode {
	return l.product.Get(func() ProductCode {
		rt := l.Runtime()
		return jvm.Scoped(rt, 1, func(env jni.Env) ProductCode {
			return productCodeFromJava(rt, env, rt.GetField(env, l.Ref(), classLine, "product", jni.ClassSig(classProduct)).Ref())
		})
	})
}

// Style returns the badge style, if the provider supplies one.
func (l *Line) Style() (*Style, bool) {
	s := l.style.Get(func() *Style {
		rt := l.Runtime()
		return jvm.Scoped(rt, 2, func(env jni.Env) *Style {
			return styleFromJava(rt, env, rt.GetField(env, l.Ref(), classLine, "style", jni.ClassSig(classStyle)).Ref())
		})
	})
	return s, s != nil
}

// Attrs returns the line attributes. Null reads as none.
func (l *Line) Attrs() LineAttrs {
	return l.attrs.Get(func() LineAttrs {
		rt := l.Runtime()
		return jvm.Scoped(rt, 3, func(env jni.Env) LineAttrs {
			var out LineAttrs
			set := rt.GetField(env, l.Ref(), classLine, "attrs", sigSet).Ref()
			elements(rt, env, set, func(elem jni.Ref) {
				out |= enumFrom(rt, elem, "Line.Attr", lineAttrNames, 0)
			})
			return out
		})
	})
}

func (l *Line) String() string {
	if label, ok := l.Label(); ok {
		return label
	}
	if name, ok := l.Name(); ok {
		return name
	}
	id, _ := l.ID()
	return id
}
