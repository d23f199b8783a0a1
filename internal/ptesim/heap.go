package ptesim

import (
	"strings"
	"time"

	"github.com/wippyai/pte-bridge/jni/sim"
)

// heap builds library objects on the simulated VM.
type heap struct {
	vm *sim.VM
}

// obj allocates an instance of class from name/value pairs. Nil values
// are left unset.
func (h heap) obj(class string, kv ...any) *sim.Object {
	fields := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		v := kv[i+1]
		if o, ok := v.(*sim.Object); ok && o == nil {
			continue
		}
		if v == nil {
			continue
		}
		fields[kv[i].(string)] = v
	}
	return h.vm.MustClass(class).New(fields)
}

func (h heap) str(s string) *sim.Object {
	if s == "" {
		return nil
	}
	return h.vm.String(s)
}

func (h heap) date(t time.Time) *sim.Object {
	if t.IsZero() {
		return nil
	}
	return h.vm.Date(t)
}

func (h heap) enum(class, name string) *sim.Object {
	return h.vm.MustClass(class).Constant(name)
}

func (h heap) list(items []*sim.Object) *sim.Object {
	return h.vm.NewList(items...)
}

func (h heap) location(s *Station) *sim.Object {
	if s == nil {
		return nil
	}
	var prods *sim.Object
	if s.Type == "STATION" {
		prods = productSet(h.vm, s.Products)
	}
	return h.obj(classLocation,
		"type", h.enum(classLocationType, s.Type),
		"id", h.str(s.ID),
		"coord", newPoint(h.vm, s.Lat, s.Lon),
		"place", h.str(s.Place),
		"name", h.str(s.Name),
		"products", prods)
}

func (h heap) locations(stations []*Station) *sim.Object {
	items := make([]*sim.Object, 0, len(stations))
	for _, s := range stations {
		items = append(items, h.location(s))
	}
	return h.list(items)
}

func (h heap) productConstant(code rune) *sim.Object {
	for _, p := range products {
		if p.code == code {
			return h.enum(classProduct, p.constant)
		}
	}
	return nil
}

func (h heap) style(shape string, bg, fg, border uint32) *sim.Object {
	return h.obj(classStyle,
		"shape", h.enum(classShape, shape),
		"backgroundColor", int32(bg),
		"backgroundColor2", int32(0),
		"foregroundColor", int32(fg),
		"borderColor", int32(border))
}

func (l *Line) network() string {
	parts := strings.Split(l.ID, ":")
	if len(parts) < 2 {
		return ""
	}
	return strings.ToUpper(parts[1])
}

func (h heap) line(l *Line) *sim.Object {
	attrs := make([]*sim.Object, 0, len(l.Attrs))
	for _, a := range l.Attrs {
		attrs = append(attrs, h.enum(classLineAttr, a))
	}
	return h.obj(classLine,
		"id", h.str(l.ID),
		"network", h.str(l.network()),
		"product", h.productConstant(l.Product),
		"label", h.str(l.Label),
		"name", h.str(l.Name),
		"style", h.style(l.Shape, l.Background, l.Foreground, l.Border),
		"attrs", h.vm.NewSet(attrs...),
		"message", h.str(l.Message))
}

func (h heap) position(name string) *sim.Object {
	if name == "" {
		return nil
	}
	return h.obj(classPosition, "name", h.str(name))
}

// stopTimes are the planned times of a stop and the delay applied to
// the predicted ones. A negative delay means no prediction.
type stopTimes struct {
	arr, dep time.Time
	delay    time.Duration
	platform string
}

func (h heap) stop(s *Station, t stopTimes) *sim.Object {
	predicted := func(planned time.Time) *sim.Object {
		if planned.IsZero() || t.delay < 0 {
			return nil
		}
		return h.date(planned.Add(t.delay))
	}
	return h.obj(classStop,
		"location", h.location(s),
		"plannedArrivalTime", h.date(t.arr),
		"predictedArrivalTime", predicted(t.arr),
		"plannedArrivalPosition", h.position(t.platform),
		"plannedDepartureTime", h.date(t.dep),
		"predictedDepartureTime", predicted(t.dep),
		"plannedDeparturePosition", h.position(t.platform))
}

func (h heap) fares() *sim.Object {
	eur := h.vm.Currency("EUR", "€")
	return h.list([]*sim.Object{
		h.obj(classFare, "name", h.str("Berlin AB"), "type", h.enum(classFareType, "ADULT"),
			"currency", eur, "fare", float32(3.80)),
		h.obj(classFare, "name", h.str("Berlin AB"), "type", h.enum(classFareType, "CHILD"),
			"currency", eur, "fare", float32(2.40)),
	})
}
