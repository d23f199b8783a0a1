package ptesim

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jni/sim"
	"github.com/wippyai/pte-bridge/providers"
	"github.com/wippyai/pte-bridge/pte"
)

// trip is the Go-side state of a Trip object.
type trip struct {
	times
	changes     int
	products    string
	travelable  bool
	firstPublic *sim.Object
	lastPublic  *sim.Object
}

// pageContext is the Go-side state of a QueryTripsContext.
type pageContext struct {
	from, via, to   *Station
	first, last     time.Time
	earlier, later  bool
	allowedProducts string
}

// Created records one provider construction.
type Created struct {
	Class string
	Args  []string
}

var allProducts = "IRSUTBFCP"

// defineProviders registers NetworkProvider, the concrete SimProvider
// and one subclass of it per catalog entry.
func (n *Network) defineProviders() {
	vm := n.vm
	dtoSig := func(class string) string { return jni.ClassSig(class) }
	var (
		sigQueryDepartures = "(" + sigString + sigDate + "IZ)" + dtoSig(classDeparturesRs)
		sigQueryTrips      = "(" + sigLocation + sigLocation + sigLocation + sigDate + "Z" + dtoSig(classTripOptions) + ")" + dtoSig(classTripsRs)
		sigQueryMoreTrips  = "(" + dtoSig(classTripsContext) + "Z)" + dtoSig(classTripsRs)
		sigQueryNearby     = "(" + sigSet + sigLocation + "II)" + dtoSig(classNearbyRs)
		sigSuggest         = "(Ljava/lang/CharSequence;" + sigSet + "I)" + dtoSig(classSuggestRs)
		sigCapabilities    = "([" + dtoSig(classCapability) + ")Z"
		sigArea            = "()[" + sigPoint
		sigLineStyle       = "(" + sigString + dtoSig(classProduct) + sigString + ")" + sigStyle
	)

	vm.DefineClass(classProvider, "").
		Abstract("queryDepartures", sigQueryDepartures).
		Abstract("queryTrips", sigQueryTrips).
		Abstract("queryMoreTrips", sigQueryMoreTrips).
		Abstract("queryNearbyLocations", sigQueryNearby).
		Abstract("suggestLocations", sigSuggest).
		Abstract("defaultProducts", "()"+sigSet).
		Abstract("hasCapabilities", sigCapabilities).
		Abstract("getArea", sigArea).
		Abstract("lineStyle", sigLineStyle)

	record := func(c *sim.Call, args ...string) jni.Value {
		n.mu.Lock()
		n.created = append(n.created, Created{Class: c.This.Class.SimpleName(), Args: args})
		n.mu.Unlock()
		return jni.Void()
	}
	bytesArg := func(c *sim.Call, i int) string {
		return string(sim.Bytes(c.Object(i)))
	}
	vm.DefineClass(classSimProvider, classProvider).
		Method("<init>", "()V", func(c *sim.Call) jni.Value { return record(c) }).
		Method("<init>", "("+sigString+")V", func(c *sim.Call) jni.Value {
			auth, _ := c.String(0)
			return record(c, auth)
		}).
		Method("<init>", "("+sigString+"[B)V", func(c *sim.Call) jni.Value {
			auth, _ := c.String(0)
			return record(c, auth, bytesArg(c, 1))
		}).
		Method("<init>", "("+dtoSig(classLanguage)+")V", func(c *sim.Call) jni.Value {
			lang := c.Object(0)
			if lang == nil {
				return c.Throw("java/lang/NullPointerException", "language")
			}
			return record(c, lang.Get("name").(*sim.Object).String())
		}).
		Method("<init>", "([B)V", func(c *sim.Call) jni.Value { return record(c, bytesArg(c, 0)) }).
		Method("queryDepartures", sigQueryDepartures, n.queryDepartures).
		Method("queryTrips", sigQueryTrips, n.queryTrips).
		Method("queryMoreTrips", sigQueryMoreTrips, n.queryMoreTrips).
		Method("queryNearbyLocations", sigQueryNearby, n.queryNearby).
		Method("suggestLocations", sigSuggest, n.suggestLocations).
		Method("defaultProducts", "()"+sigSet, func(c *sim.Call) jni.Value {
			return c.Return(productSet(vm, allProducts))
		}).
		Method("hasCapabilities", sigCapabilities, func(c *sim.Call) jni.Value {
			n.mu.Lock()
			defer n.mu.Unlock()
			for _, k := range sim.Items(c.Object(0)) {
				if !n.caps[k.Get("name").(*sim.Object).String()] {
					return jni.Bool(false)
				}
			}
			return jni.Bool(true)
		}).
		Method("getArea", sigArea, func(c *sim.Call) jni.Value {
			return c.Return(vm.NewArray(vm.MustClass(classPoint),
				newPoint(vm, 52.6755, 13.0883),
				newPoint(vm, 52.6755, 13.7612),
				newPoint(vm, 52.3383, 13.7612),
				newPoint(vm, 52.3383, 13.0883)))
		}).
		Method("lineStyle", sigLineStyle, n.lineStyle)

	seen := map[string]bool{}
	for _, d := range providers.Catalog() {
		if seen[d.Class] {
			continue
		}
		seen[d.Class] = true
		vm.DefineClass(pkg+d.Class, classSimProvider)
	}
}

func (n *Network) heap() heap { return heap{vm: n.vm} }

func (n *Network) timeArg(c *sim.Call, i int) time.Time {
	if d := c.Object(i); d != nil {
		return time.UnixMilli(sim.Millis(d))
	}
	return n.base
}

func typesArg(c *sim.Call, i int) map[string]bool {
	out := map[string]bool{}
	for _, o := range sim.Items(c.Object(i)) {
		out[o.Get("name").(*sim.Object).String()] = true
	}
	return out
}

func productsArg(o *sim.Object) string {
	if o == nil {
		return ""
	}
	var s []rune
	for _, item := range sim.Items(o) {
		s = append(s, rune(item.Get("code").(uint16)))
	}
	return string(s)
}

func (n *Network) result(c *sim.Call, class, status string, kv ...any) jni.Value {
	h := n.heap()
	kv = append([]any{"status", h.enum(class+"$Status", status)}, kv...)
	return c.Return(h.obj(class, kv...))
}

func (n *Network) queryDepartures(c *sim.Call) jni.Value {
	status, ok := n.enter(c, OpDepartures)
	if !ok {
		return jni.Object(0)
	}
	if status != "" {
		return n.result(c, classDeparturesRs, status)
	}
	id, _ := c.String(0)
	at := n.timeArg(c, 1)
	max := int(c.Args[2].Int())
	if max <= 0 {
		max = 10
	}
	st, found := n.Station(id)
	if !found || st.Type != "STATION" {
		return n.result(c, classDeparturesRs, "INVALID_STATION")
	}

	stations := []*Station{st}
	if c.Args[3].Bool() {
		for _, other := range nearby(st.Point(), 1200, map[string]bool{"STATION": true}) {
			if other != st {
				stations = append(stations, other)
			}
		}
	}
	h := n.heap()
	var items []*sim.Object
	for _, s := range stations {
		items = append(items, n.stationDepartures(h, s, at, max))
	}
	return n.result(c, classDeparturesRs, "OK", "stationDepartures", h.list(items))
}

type departure struct {
	line     *Line
	planned  time.Time
	delay    time.Duration
	terminus string
	platform string
}

func (n *Network) stationDepartures(h heap, st *Station, at time.Time, max int) *sim.Object {
	var (
		deps  []departure
		dests []*sim.Object
	)
	for _, l := range servedBy(st.ID) {
		i := l.index(st.ID)
		for _, term := range []int{len(l.Stops) - 1, 0} {
			if i == term {
				continue
			}
			platform := "1"
			if term == 0 {
				platform = "2"
			}
			terminus, _ := n.Station(l.Stops[term])
			dests = append(dests, h.obj(classLineDest, "line", h.line(l), "destination", h.location(terminus)))
			t := slot(at, l.Offset+time.Duration(i)*hop)
			for k := 0; k < max; k++ {
				d := departure{line: l, planned: t.Add(time.Duration(k) * headway), terminus: terminus.ID, platform: platform, delay: -1}
				// The S-Bahn always runs late, everything else now and then.
				if l.Product == 'S' || k%3 == 1 {
					d.delay = 2 * time.Minute
				}
				deps = append(deps, d)
			}
		}
	}
	sort.SliceStable(deps, func(a, b int) bool { return deps[a].planned.Before(deps[b].planned) })
	if len(deps) > max {
		deps = deps[:max]
	}
	items := make([]*sim.Object, 0, len(deps))
	for _, d := range deps {
		terminus, _ := n.Station(d.terminus)
		var predicted *sim.Object
		if d.delay >= 0 {
			predicted = h.date(d.planned.Add(d.delay))
		}
		items = append(items, h.obj(classDeparture,
			"plannedTime", h.date(d.planned),
			"predictedTime", predicted,
			"line", h.line(d.line),
			"position", h.position(d.platform),
			"destination", h.location(terminus),
			"message", h.str(d.line.Message)))
	}
	return h.obj(classStationDeps,
		"location", h.location(st),
		"departures", h.list(items),
		"lines", h.list(dests))
}

// resolve maps a location argument onto a station. Locations without an
// ID resolve by coordinate; several candidates make it ambiguous.
func (n *Network) resolve(loc *sim.Object) (st *Station, candidates []*Station, ok bool) {
	if loc == nil {
		return nil, nil, false
	}
	if id, _ := loc.Get("id").(*sim.Object); id != nil {
		s, found := n.Station(id.String())
		if !found {
			return nil, nil, false
		}
		if s.Type != "STATION" {
			near := nearby(s.Point(), 1000, map[string]bool{"STATION": true})
			if len(near) == 0 {
				return nil, nil, false
			}
			return near[0], nil, true
		}
		return s, nil, true
	}
	p, _ := loc.Get("coord").(*sim.Object)
	if p == nil {
		return nil, nil, false
	}
	point := pte.GeoPoint{Lat: float64(p.Get("lat").(int32)) / 1e6, Lon: float64(p.Get("lon").(int32)) / 1e6}
	near := nearby(point, 1500, map[string]bool{"STATION": true})
	switch len(near) {
	case 0:
		return nil, nil, false
	case 1:
		return near[0], nil, true
	}
	return nil, near, true
}

func (n *Network) queryTrips(c *sim.Call) jni.Value {
	status, ok := n.enter(c, OpTrips)
	if !ok {
		return jni.Object(0)
	}
	if status != "" {
		return n.result(c, classTripsRs, status)
	}
	h := n.heap()
	from, ambFrom, okFrom := n.resolve(c.Object(0))
	if !okFrom {
		return n.result(c, classTripsRs, "UNKNOWN_FROM")
	}
	var (
		via    *Station
		ambVia []*Station
	)
	if c.Object(1) != nil {
		var okVia bool
		via, ambVia, okVia = n.resolve(c.Object(1))
		if !okVia {
			return n.result(c, classTripsRs, "UNKNOWN_VIA")
		}
	}
	to, ambTo, okTo := n.resolve(c.Object(2))
	if !okTo {
		return n.result(c, classTripsRs, "UNKNOWN_TO")
	}
	if ambFrom != nil || ambVia != nil || ambTo != nil {
		var kv []any
		if ambFrom != nil {
			kv = append(kv, "ambiguousFrom", h.locations(ambFrom))
		}
		if ambVia != nil {
			kv = append(kv, "ambiguousVia", h.locations(ambVia))
		}
		if ambTo != nil {
			kv = append(kv, "ambiguousTo", h.locations(ambTo))
		}
		return n.result(c, classTripsRs, "AMBIGUOUS", kv...)
	}
	if from == to {
		return n.result(c, classTripsRs, "TOO_CLOSE")
	}

	at := n.timeArg(c, 3)
	byDeparture := c.Args[4].Bool()
	allowed := allProducts
	if opts := c.Object(5); opts != nil {
		if p, _ := opts.Get("products").(*sim.Object); p != nil {
			allowed = productsArg(p)
		}
	}
	pc := &pageContext{from: from, via: via, to: to, earlier: true, later: true, allowedProducts: allowed}
	var conns []connection
	if byDeparture {
		conns = pc.page(at, false)
	} else {
		for _, conn := range pc.page(at, true) {
			if !conn.arr().After(at) {
				conns = append(conns, conn)
			}
		}
	}
	return n.tripsResult(c, pc, conns)
}

func (n *Network) queryMoreTrips(c *sim.Call) jni.Value {
	status, ok := n.enter(c, OpMoreTrips)
	if !ok {
		return jni.Object(0)
	}
	if status != "" {
		return n.result(c, classTripsRs, status)
	}
	ctx := c.Object(0)
	if ctx == nil {
		return c.Throw("java/lang/NullPointerException", "context")
	}
	prev := ctx.Native.(*pageContext)
	next := *prev
	var conns []connection
	if c.Args[1].Bool() {
		conns = prev.page(prev.last.Add(time.Second), false)
	} else {
		conns = prev.page(prev.first, true)
	}
	return n.tripsResult(c, &next, conns)
}

func (pc *pageContext) viaID() string {
	if pc.via == nil {
		return ""
	}
	return pc.via.ID
}

// page returns the connections next to t that only use allowed products.
func (pc *pageContext) page(t time.Time, earlier bool) []connection {
	return page(pc.from.ID, pc.viaID(), pc.to.ID, t, earlier, pc.allowedProducts)
}

func (n *Network) tripsResult(c *sim.Call, pc *pageContext, conns []connection) jni.Value {
	if len(conns) == 0 {
		return n.result(c, classTripsRs, "NO_TRIPS")
	}
	h := n.heap()
	pc.first, pc.last = conns[0].dep(), conns[len(conns)-1].dep()
	items := make([]*sim.Object, 0, len(conns))
	for _, conn := range conns {
		items = append(items, n.buildTrip(h, pc.from, pc.to, conn))
	}
	ctx := n.vm.MustClass(classTripsContext).New(nil)
	ctx.Native = pc
	return n.result(c, classTripsRs, "OK",
		"from", h.location(pc.from),
		"via", h.location(pc.via),
		"to", h.location(pc.to),
		"context", ctx,
		"trips", h.list(items))
}

func (n *Network) buildTrip(h heap, from, to *Station, conn connection) *sim.Object {
	// Every other departure runs two minutes late. Only the stop
	// predictions carry the delay.
	delay := time.Duration(-1)
	if conn.dep().Minute()/10%2 == 1 {
		delay = 2 * time.Minute
	}
	data := &trip{changes: len(conn.rides) - 1, travelable: true}
	var legs []*sim.Object
	for i, r := range conn.rides {
		stops := r.stops()
		if i > 0 {
			prev := conn.rides[i-1]
			at, _ := n.Station(stops[0])
			walk := h.obj(classIndividual,
				"type", h.enum(classIndivType, "TRANSFER"),
				"departure", h.location(at),
				"arrival", h.location(at),
				"departureTime", h.date(prev.arr),
				"arrivalTime", h.date(prev.arr.Add(transfer)),
				"min", int32(transfer/time.Minute),
				"distance", int32(120))
			walk.Native = times{dep: prev.arr, arr: prev.arr.Add(transfer)}
			legs = append(legs, walk)
		}
		leg := n.publicLeg(h, r, stops, delay)
		if data.firstPublic == nil {
			data.firstPublic = leg
		}
		data.lastPublic = leg
		legs = append(legs, leg)
		if !strings.ContainsRune(data.products, r.line.Product) {
			data.products += string(r.line.Product)
		}
	}
	data.times = times{dep: conn.dep(), arr: conn.arr()}

	o := h.obj(classTrip,
		"id", h.str("trip-"+strconv.FormatInt(conn.dep().Unix(), 10)),
		"from", h.location(from),
		"to", h.location(to),
		"legs", h.list(legs),
		"fares", h.fares())
	o.Native = data
	return o
}

func (n *Network) publicLeg(h heap, r ride, stops []string, delay time.Duration) *sim.Object {
	first, _ := n.Station(stops[0])
	last, _ := n.Station(stops[len(stops)-1])
	terminus, _ := n.Station(r.terminus())
	platform := "1"
	if r.from > r.to {
		platform = "2"
	}

	var (
		intermediate []*sim.Object
		path         = []*sim.Object{newPoint(n.vm, first.Lat, first.Lon)}
	)
	for k, id := range stops[1 : len(stops)-1] {
		s, _ := n.Station(id)
		t := r.dep.Add(time.Duration(k+1) * hop)
		intermediate = append(intermediate, h.stop(s, stopTimes{arr: t, dep: t, delay: delay, platform: platform}))
		path = append(path, newPoint(n.vm, s.Lat, s.Lon))
	}
	path = append(path, newPoint(n.vm, last.Lat, last.Lon))

	leg := h.obj(classPublic,
		"line", h.line(r.line),
		"destination", h.location(terminus),
		"departure", h.location(first),
		"arrival", h.location(last),
		"departureStop", h.stop(first, stopTimes{dep: r.dep, delay: delay, platform: platform}),
		"arrivalStop", h.stop(last, stopTimes{arr: r.arr, delay: delay, platform: platform}),
		"intermediateStops", h.list(intermediate),
		"path", h.list(path),
		"message", h.str(r.line.Message))
	leg.Native = times{dep: r.dep, arr: r.arr}
	return leg
}

func (n *Network) queryNearby(c *sim.Call) jni.Value {
	status, ok := n.enter(c, OpNearby)
	if !ok {
		return jni.Object(0)
	}
	if status != "" {
		return n.result(c, classNearbyRs, status)
	}
	loc := c.Object(1)
	if loc == nil {
		return c.Throw("java/lang/NullPointerException", "location")
	}
	var point pte.GeoPoint
	if id, _ := loc.Get("id").(*sim.Object); id != nil {
		s, found := n.Station(id.String())
		if !found {
			return n.result(c, classNearbyRs, "INVALID_ID")
		}
		point = s.Point()
	} else if p, _ := loc.Get("coord").(*sim.Object); p != nil {
		point = pte.GeoPoint{Lat: float64(p.Get("lat").(int32)) / 1e6, Lon: float64(p.Get("lon").(int32)) / 1e6}
	} else {
		return n.result(c, classNearbyRs, "INVALID_ID")
	}
	maxDistance := float64(c.Args[2].Int())
	if maxDistance <= 0 {
		maxDistance = 5000
	}
	max := int(c.Args[3].Int())
	if max <= 0 {
		max = math.MaxInt32
	}
	found := nearby(point, maxDistance, typesArg(c, 0))
	if len(found) > max {
		found = found[:max]
	}
	return n.result(c, classNearbyRs, "OK", "locations", n.heap().locations(found))
}

func (n *Network) suggestLocations(c *sim.Call) jni.Value {
	status, ok := n.enter(c, OpSuggest)
	if !ok {
		return jni.Object(0)
	}
	if status != "" {
		return n.result(c, classSuggestRs, status)
	}
	text, _ := c.String(0)
	max := int(c.Args[2].Int())
	if max <= 0 {
		max = 10
	}
	found := suggest(text, typesArg(c, 1))
	if len(found) > max {
		found = found[:max]
	}
	return n.result(c, classSuggestRs, "OK", "suggestedLocations", n.heap().locations(found))
}

func (n *Network) lineStyle(c *sim.Call) jni.Value {
	network, _ := c.String(0)
	label, _ := c.String(2)
	h := n.heap()
	for _, l := range lines {
		if l.Label == label && (network == "" || network == l.network()) {
			return c.Return(h.style(l.Shape, l.Background, l.Foreground, l.Border))
		}
	}
	product := c.Object(1)
	if product == nil {
		return c.Return(nil)
	}
	return c.Return(h.style("RECT", 0xff777777, 0xffffffff, 0))
}
