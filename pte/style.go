package pte

import (
	"fmt"

	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jvm"
)

// Shape is the outline of a line badge.
type Shape int

const (
	ShapeRect Shape = iota
	ShapeRounded
	ShapeCircle
)

var shapeNames = map[string]Shape{
	"RECT":    ShapeRect,
	"ROUNDED": ShapeRounded,
	"CIRCLE":  ShapeCircle,
}

func (s Shape) String() string {
	switch s {
	case ShapeRect:
		return "rect"
	case ShapeRounded:
		return "rounded"
	case ShapeCircle:
		return "circle"
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

// Color is an ARGB color.
type Color struct {
	A, R, G, B uint8
}

// ColorFromARGB splits a packed ARGB int as used by the library.
func ColorFromARGB(argb int32) Color {
	c := uint32(argb)
	return Color{A: uint8(c >> 24), R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c)}
}

// ARGB packs c back into an int.
func (c Color) ARGB() int32 {
	return int32(uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B))
}

// Hex renders the color as #rrggbb, ignoring alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Transparent reports a zero alpha channel.
func (c Color) Transparent() bool { return c.A == 0 }

// Style is the visual identity of a line. It is a plain value copied out
// of the foreign object.
type Style struct {
	Shape       Shape
	Background  Color
	Background2 Color
	Foreground  Color
	Border      Color
}

func styleFromJava(rt *jvm.Runtime, env jni.Env, style jni.Ref) *Style {
	if style == 0 {
		return nil
	}
	color := func(name string) Color {
		return ColorFromARGB(rt.GetField(env, style, classStyle, name, "I").Int())
	}
	shape := rt.GetField(env, style, classStyle, "shape", jni.ClassSig(classShape)).Ref()
	return &Style{
		Shape:       enumFrom(rt, shape, "Style.Shape", shapeNames, ShapeRect),
		Background:  color("backgroundColor"),
		Background2: color("backgroundColor2"),
		Foreground:  color("foregroundColor"),
		Border:      color("borderColor"),
	}
}
