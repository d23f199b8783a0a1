package ptesim

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wippyai/pte-bridge/jni/sim"
	"github.com/wippyai/pte-bridge/pte"
)

// Operation names accepted by the hooks.
const (
	OpDepartures = "queryDepartures"
	OpTrips      = "queryTrips"
	OpMoreTrips  = "queryMoreTrips"
	OpNearby     = "queryNearbyLocations"
	OpSuggest    = "suggestLocations"
)

const (
	headway  = 10 * time.Minute
	hop      = 3 * time.Minute
	transfer = 4 * time.Minute
	pageSize = 4
)

// Station is a location of the simulated network.
type Station struct {
	ID       string
	Name     string
	Place    string
	Type     string
	Lat, Lon float64
	Products string
}

// Point returns the coordinate of the station.
func (s *Station) Point() pte.GeoPoint { return pte.GeoPoint{Lat: s.Lat, Lon: s.Lon} }

// Line is a line of the simulated network. Stops are station IDs in
// travel order; vehicles run both ways every ten minutes.
type Line struct {
	ID         string
	Label      string
	Name       string
	Product    rune
	Shape      string
	Background uint32
	Foreground uint32
	Border     uint32
	Attrs      []string
	Message    string
	Offset     time.Duration
	Stops      []string
}

var berlin = []*Station{
	{ID: "900100003", Name: "S+U Alexanderplatz", Place: "Berlin", Type: "STATION", Lat: 52.521508, Lon: 13.411267, Products: "RSUTB"},
	{ID: "900003201", Name: "S+U Berlin Hauptbahnhof", Place: "Berlin", Type: "STATION", Lat: 52.525592, Lon: 13.369545, Products: "IRSUTB"},
	{ID: "900100001", Name: "S+U Friedrichstr.", Place: "Berlin", Type: "STATION", Lat: 52.520268, Lon: 13.387149, Products: "RSUTB"},
	{ID: "900023201", Name: "S+U Zoologischer Garten", Place: "Berlin", Type: "STATION", Lat: 52.506920, Lon: 13.332711, Products: "RSUB"},
	{ID: "900120005", Name: "S Ostbahnhof", Place: "Berlin", Type: "STATION", Lat: 52.510972, Lon: 13.434567, Products: "IRSB"},
	{ID: "900058101", Name: "S Südkreuz", Place: "Berlin", Type: "STATION", Lat: 52.475465, Lon: 13.365575, Products: "IRSB"},
	{ID: "900007102", Name: "S+U Gesundbrunnen", Place: "Berlin", Type: "STATION", Lat: 52.548637, Lon: 13.388372, Products: "IRSUB"},
	{ID: "900100023", Name: "U Rosenthaler Platz", Place: "Berlin", Type: "STATION", Lat: 52.529781, Lon: 13.401393, Products: "UTB"},
	{ID: "poi-fernsehturm", Name: "Fernsehturm", Place: "Berlin", Type: "POI", Lat: 52.520817, Lon: 13.409446},
	{ID: "addr-alexanderplatz-1", Name: "Alexanderplatz 1", Place: "10178 Berlin", Type: "ADDRESS", Lat: 52.522605, Lon: 13.413044},
}

var lines = []*Line{
	{ID: "de:vbb:S5", Label: "S5", Name: "S-Bahn S5", Product: 'S', Shape: "ROUNDED",
		Background: 0xffff5a22, Foreground: 0xffffffff,
		Attrs: []string{"BICYCLE_CARRIAGE", "WHEEL_CHAIR_ACCESS"}, Offset: 2 * time.Minute,
		Stops: []string{"900023201", "900003201", "900100001", "900100003", "900120005"}},
	{ID: "de:vbb:S41", Label: "S41", Name: "Ringbahn S41", Product: 'S', Shape: "ROUNDED",
		Background: 0xffad5937, Foreground: 0xffffffff,
		Attrs: []string{"CIRCLE_CLOCKWISE"}, Offset: 5 * time.Minute,
		Stops: []string{"900058101", "900007102"}},
	{ID: "de:vbb:U2", Label: "U2", Name: "U-Bahn U2", Product: 'U', Shape: "RECT",
		Background: 0xffda421e, Foreground: 0xffffffff, Offset: 4 * time.Minute,
		Stops: []string{"900023201", "900100003"}},
	{ID: "de:vbb:U8", Label: "U8", Name: "U-Bahn U8", Product: 'U', Shape: "RECT",
		Background: 0xff224f86, Foreground: 0xffffffff, Offset: 7 * time.Minute,
		Stops: []string{"900007102", "900100023", "900100003"}},
	{ID: "de:vbb:M4", Label: "M4", Name: "Tram M4", Product: 'T', Shape: "RECT",
		Background: 0xffbe1414, Foreground: 0xffffffff, Offset: 1 * time.Minute,
		Stops: []string{"900100023", "900100003"}},
	{ID: "de:vbb:100", Label: "100", Name: "Bus 100", Product: 'B', Shape: "CIRCLE",
		Background: 0xffa5027d, Foreground: 0xffffffff,
		Attrs: []string{"WHEEL_CHAIR_ACCESS"}, Offset: 6 * time.Minute,
		Stops: []string{"900023201", "900003201", "900100003"}},
	{ID: "de:vbb:RE1", Label: "RE1", Name: "Regionalexpress RE1", Product: 'R', Shape: "RECT",
		Background: 0xffe3000f, Foreground: 0xffffffff, Offset: 8 * time.Minute,
		Message: "Bauarbeiten: Ersatzverkehr am Wochenende",
		Stops:   []string{"900023201", "900003201", "900100001", "900100003", "900120005"}},
	{ID: "de:db:ICE", Label: "ICE", Name: "ICE 1003", Product: 'I', Shape: "RECT",
		Background: 0xffffffff, Foreground: 0xffe3000f, Border: 0xffe3000f,
		Attrs: []string{"LINE_AIRPORT"}, Offset: 3 * time.Minute,
		Stops: []string{"900058101", "900003201", "900007102"}},
}

// hub is the transfer station for trips that no single line serves.
const hub = "900100003"

type throwSpec struct {
	class, message string
}

// Network is the simulated library state: a fixed timetable plus hooks
// that force statuses, raise exceptions or hold calls.
type Network struct {
	vm   *sim.VM
	base time.Time

	mu     sync.Mutex
	status map[string]string
	throws map[string]throwSpec
	gates  map[string]chan struct{}
	calls  map[string]int

	caps    map[string]bool
	created []Created
}

func newNetwork(vm *sim.VM, base time.Time) *Network {
	return &Network{
		vm:     vm,
		base:   base,
		status: make(map[string]string),
		throws: make(map[string]throwSpec),
		gates:  make(map[string]chan struct{}),
		calls:  make(map[string]int),
		caps: map[string]bool{
			"DEPARTURES": true, "NEARBY_LOCATIONS": true, "SUGGEST_LOCATIONS": true,
			"TRIPS": true, "TRIPS_VIA": true,
		},
	}
}

// SetCapability changes what hasCapabilities reports for the named
// capability constant.
func (n *Network) SetCapability(name string, on bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.caps[name] = on
}

// Created returns the providers constructed so far.
func (n *Network) Created() []Created {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Created(nil), n.created...)
}

// VM returns the simulated VM.
func (n *Network) VM() *sim.VM { return n.vm }

// Now returns the time used for queries without a time.
func (n *Network) Now() time.Time { return n.base }

// Stations returns the locations of the network.
func (n *Network) Stations() []*Station { return berlin }

// Lines returns the lines of the network.
func (n *Network) Lines() []*Line { return lines }

// Station looks up a location by ID.
func (n *Network) Station(id string) (*Station, bool) {
	for _, s := range berlin {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// SetStatus makes every following op return the named status without a
// payload. An empty name restores normal operation.
func (n *Network) SetStatus(op, name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if name == "" {
		delete(n.status, op)
		return
	}
	n.status[op] = name
}

// ThrowOn makes every following op raise an exception of class. An
// empty class restores normal operation.
func (n *Network) ThrowOn(op, class, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if class == "" {
		delete(n.throws, op)
		return
	}
	n.throws[op] = throwSpec{class: class, message: message}
}

// Gate holds every following op until the returned channel is closed
// or receives a value. Each value lets one call through.
func (n *Network) Gate(op string) chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	ch := make(chan struct{})
	n.gates[op] = ch
	return ch
}

// Ungate removes the gate of op.
func (n *Network) Ungate(op string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.gates, op)
}

// Calls returns how often op was invoked.
func (n *Network) Calls(op string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[op]
}

// enter runs the hooks of op. It reports false when the call raised.
func (n *Network) enter(c *sim.Call, op string) (status string, ok bool) {
	n.mu.Lock()
	n.calls[op]++
	gate := n.gates[op]
	throw, throws := n.throws[op]
	status = n.status[op]
	n.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if throws {
		c.Throw(throw.class, throw.message)
		return "", false
	}
	return status, true
}

// servedBy returns the lines stopping at id.
func servedBy(id string) []*Line {
	var out []*Line
	for _, l := range lines {
		if l.index(id) >= 0 {
			out = append(out, l)
		}
	}
	return out
}

func (l *Line) index(id string) int {
	for i, s := range l.Stops {
		if s == id {
			return i
		}
	}
	return -1
}

// ride is one vehicle run between two stops of a line.
type ride struct {
	line     *Line
	from, to int
	dep, arr time.Time
}

// direction returns the stops of a ride in travel order.
func (r ride) stops() []string {
	if r.from <= r.to {
		return r.line.Stops[r.from : r.to+1]
	}
	out := make([]string, 0, r.from-r.to+1)
	for i := r.from; i >= r.to; i-- {
		out = append(out, r.line.Stops[i])
	}
	return out
}

// terminus returns the last stop in the direction of the ride.
func (r ride) terminus() string {
	if r.from <= r.to {
		return r.line.Stops[len(r.line.Stops)-1]
	}
	return r.line.Stops[0]
}

func (r ride) hops() int {
	if r.from <= r.to {
		return r.to - r.from
	}
	return r.from - r.to
}

// nextRide returns the first run of l from a to b leaving at or after t.
func nextRide(l *Line, a, b string, t time.Time) (ride, bool) {
	i, j := l.index(a), l.index(b)
	if i < 0 || j < 0 || i == j {
		return ride{}, false
	}
	dep := slot(t, l.Offset+time.Duration(i)*hop)
	r := ride{line: l, from: i, to: j, dep: dep}
	r.arr = dep.Add(time.Duration(r.hops()) * hop)
	return r, true
}

// slot returns the first departure at or after t of a service leaving
// every headway at offset past the full ten minutes.
func slot(t time.Time, offset time.Duration) time.Time {
	base := t.Truncate(headway).Add(offset % headway)
	for base.Before(t) {
		base = base.Add(headway)
	}
	return base
}

// connection is a trip plan: one ride, or two rides with a transfer.
type connection struct {
	rides []ride
}

func (c connection) dep() time.Time { return c.rides[0].dep }
func (c connection) arr() time.Time { return c.rides[len(c.rides)-1].arr }

// plan finds the earliest connection from a to b leaving at or after t,
// changing at via when it is set, else at the hub if needed. Only lines
// whose product is in allowed are used; an empty allowed means all.
func plan(a, via, b string, t time.Time, allowed string) (connection, bool) {
	if via == "" {
		if c, ok := direct(a, b, t, allowed); ok {
			return c, true
		}
		via = hub
	}
	first, ok := direct(a, via, t, allowed)
	if !ok {
		return connection{}, false
	}
	second, ok := direct(via, b, first.arr().Add(transfer), allowed)
	if !ok {
		return connection{}, false
	}
	return connection{rides: append(first.rides, second.rides...)}, true
}

func direct(a, b string, t time.Time, allowed string) (connection, bool) {
	var (
		best  ride
		found bool
	)
	for _, l := range lines {
		if allowed != "" && !strings.ContainsRune(allowed, l.Product) {
			continue
		}
		r, ok := nextRide(l, a, b, t)
		if !ok {
			continue
		}
		if !found || r.arr.Before(best.arr) {
			best, found = r, true
		}
	}
	if !found {
		return connection{}, false
	}
	return connection{rides: []ride{best}}, true
}

// page returns up to pageSize connections leaving after t, or the ones
// leaving before t when earlier is set.
func page(a, via, b string, t time.Time, earlier bool, allowed string) []connection {
	var out []connection
	if earlier {
		start := t.Add(-pageSize * headway)
		for c, ok := plan(a, via, b, start, allowed); ok && c.dep().Before(t); c, ok = plan(a, via, b, c.dep().Add(time.Second), allowed) {
			out = append(out, c)
		}
		if len(out) > pageSize {
			out = out[len(out)-pageSize:]
		}
		return out
	}
	for c, ok := plan(a, via, b, t, allowed); ok && len(out) < pageSize; c, ok = plan(a, via, b, c.dep().Add(time.Second), allowed) {
		out = append(out, c)
	}
	return out
}

// suggest returns the locations whose name or place contains text.
func suggest(text string, types map[string]bool) []*Station {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return nil
	}
	var out []*Station
	for _, s := range berlin {
		if !typeAllowed(types, s.Type) {
			continue
		}
		if strings.Contains(strings.ToLower(s.Name), text) || strings.Contains(strings.ToLower(s.Place), text) {
			out = append(out, s)
		}
	}
	return out
}

// nearby returns the locations within maxDistance meters of p, closest
// first.
func nearby(p pte.GeoPoint, maxDistance float64, types map[string]bool) []*Station {
	var out []*Station
	for _, s := range berlin {
		if typeAllowed(types, s.Type) && p.Distance(s.Point()) <= maxDistance {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return p.Distance(out[i].Point()) < p.Distance(out[j].Point())
	})
	return out
}

func typeAllowed(types map[string]bool, typ string) bool {
	return len(types) == 0 || types["ANY"] || types[typ]
}
