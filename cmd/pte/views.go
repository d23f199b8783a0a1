package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.yaml.in/yaml/v3"
	"golang.org/x/term"

	"github.com/wippyai/pte-bridge/jvm"
	"github.com/wippyai/pte-bridge/pte"
)

// printer writes command results in the selected format.
type printer struct {
	w      io.Writer
	format string
	color  bool
}

func newPrinter(w io.Writer, format string) (*printer, error) {
	switch format {
	case "text", "json", "yaml":
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	p := &printer{w: w, format: format}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.color = true
	}
	return p, nil
}

// print writes v as json or yaml, or the result of text for the text
// format.
func (p *printer) print(v any, text func() string) error {
	switch p.format {
	case "json":
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	s := text()
	if s != "" && !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := io.WriteString(p.w, s)
	return err
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	stationStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	delayStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

func (p *printer) render(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

// badge renders a line label in the line's own colours.
func (p *printer) badge(label string, style *pte.Style) string {
	if !p.color || style == nil {
		return label
	}
	return badgeStyle(style).Render(label)
}

func badgeStyle(style *pte.Style) lipgloss.Style {
	s := lipgloss.NewStyle().
		Foreground(lipgloss.Color(style.Foreground.Hex())).
		Padding(0, 1)
	if !style.Background.Transparent() {
		s = s.Background(lipgloss.Color(style.Background.Hex()))
	}
	if style.Shape == pte.ShapeCircle {
		s = s.Bold(true)
	}
	return s
}

func (p *printer) table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	if p.color {
		t = t.StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	}
	return t.String()
}

func clock(t time.Time, ok bool) string {
	if !ok {
		return "--:--"
	}
	return t.Format("15:04")
}

type locationView struct {
	ID       string        `json:"id,omitempty" yaml:"id,omitempty"`
	Type     string        `json:"type" yaml:"type"`
	Name     string        `json:"name,omitempty" yaml:"name,omitempty"`
	Place    string        `json:"place,omitempty" yaml:"place,omitempty"`
	Coord    *pte.GeoPoint `json:"coord,omitempty" yaml:"coord,omitempty"`
	Products string        `json:"products,omitempty" yaml:"products,omitempty"`
}

func viewLocation(l *pte.Location) locationView {
	if l == nil {
		return locationView{Type: pte.LocationAny.String()}
	}
	v := locationView{Type: l.Type().String()}
	v.ID, _ = l.ID()
	v.Name, _ = l.Name()
	v.Place, _ = l.Place()
	if c, ok := l.Coords(); ok {
		v.Coord = &c
	}
	if p := l.Products(); p != 0 {
		v.Products = p.Letters()
	}
	return v
}

func (v locationView) label() string {
	switch {
	case v.Name != "" && v.Place != "" && !strings.Contains(v.Name, v.Place):
		return v.Name + ", " + v.Place
	case v.Name != "":
		return v.Name
	case v.Coord != nil:
		return v.Coord.String()
	}
	return v.ID
}

func viewLocations(list *jvm.List[*pte.Location]) []locationView {
	out := []locationView{}
	for _, l := range list.All() {
		out = append(out, viewLocation(l))
	}
	return out
}

func (p *printer) locationsText(views []locationView) string {
	if len(views) == 0 {
		return p.render(dimStyle, "no locations")
	}
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{v.ID, v.Type, v.Name, v.Place, v.Products})
	}
	return p.table([]string{"ID", "Type", "Name", "Place", "Products"}, rows)
}

type departureView struct {
	Time        string `json:"time" yaml:"time"`
	Planned     string `json:"planned" yaml:"planned"`
	Delay       string `json:"delay,omitempty" yaml:"delay,omitempty"`
	Line        string `json:"line" yaml:"line"`
	Product     string `json:"product" yaml:"product"`
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`
	Platform    string `json:"platform,omitempty" yaml:"platform,omitempty"`
	Message     string `json:"message,omitempty" yaml:"message,omitempty"`

	style *pte.Style
}

func viewDeparture(d *pte.Departure) departureView {
	planned, hasPlanned := d.PlannedTime()
	at, hasTime := d.Time()
	v := departureView{
		Time:    clock(at, hasTime),
		Planned: clock(planned, hasPlanned),
	}
	if predicted, ok := d.PredictedTime(); ok && hasPlanned && predicted.After(planned) {
		v.Delay = "+" + predicted.Sub(planned).String()
	}
	if line := d.Line(); line != nil {
		v.Line, _ = line.Label()
		v.Product = line.Product().String()
		v.style, _ = line.Style()
	}
	if dest := d.Destination(); dest != nil {
		v.Destination = viewLocation(dest).label()
	}
	if pos, ok := d.Position(); ok {
		v.Platform = pos.String()
	}
	v.Message, _ = d.Message()
	return v
}

type stationView struct {
	Station    locationView    `json:"station" yaml:"station"`
	Lines      []string        `json:"lines,omitempty" yaml:"lines,omitempty"`
	Departures []departureView `json:"departures" yaml:"departures"`
}

func viewStation(sd *pte.StationDepartures) stationView {
	v := stationView{Station: viewLocation(sd.Location()), Departures: []departureView{}}
	for _, ld := range sd.Lines() {
		label, _ := ld.Line.Label()
		if ld.Destination != nil {
			label += " > " + viewLocation(ld.Destination).label()
		}
		v.Lines = append(v.Lines, label)
	}
	for _, d := range sd.Departures().All() {
		v.Departures = append(v.Departures, viewDeparture(d))
	}
	return v
}

func (p *printer) stationsText(views []stationView) string {
	if len(views) == 0 {
		return p.render(dimStyle, "no departures")
	}
	var b strings.Builder
	for i, v := range views {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(p.render(stationStyle, v.Station.label()))
		b.WriteString("\n")
		rows := make([][]string, 0, len(v.Departures))
		for _, d := range v.Departures {
			at := d.Time
			if d.Delay != "" {
				at = d.Planned + " " + p.render(delayStyle, d.Delay)
			}
			rows = append(rows, []string{at, p.badge(d.Line, d.style), d.Destination, d.Platform})
		}
		b.WriteString(p.table([]string{"Time", "Line", "Destination", "Platform"}, rows))
		b.WriteString("\n")
	}
	return b.String()
}

type legView struct {
	Kind        string `json:"kind" yaml:"kind"`
	Line        string `json:"line,omitempty" yaml:"line,omitempty"`
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`
	From        string `json:"from" yaml:"from"`
	To          string `json:"to" yaml:"to"`
	Departure   string `json:"departure" yaml:"departure"`
	Arrival     string `json:"arrival" yaml:"arrival"`
	Platform    string `json:"platform,omitempty" yaml:"platform,omitempty"`
	Stops       int    `json:"stops,omitempty" yaml:"stops,omitempty"`
	Distance    int    `json:"distance,omitempty" yaml:"distance,omitempty"`

	style *pte.Style
}

func viewLeg(leg pte.TripLeg) legView {
	var v legView
	switch l := leg.(type) {
	case *pte.PublicLeg:
		v = legView{Kind: "public"}
		if line := l.Line(); line != nil {
			v.Line, _ = line.Label()
			v.style, _ = line.Style()
		}
		if dest := l.Destination(); dest != nil {
			v.Destination = viewLocation(dest).label()
		}
		if stop := l.DepartureStop(); stop != nil {
			if pos, _ := stop.DeparturePosition(); pos != nil {
				v.Platform = pos.String()
			}
		}
		v.Stops = l.IntermediateStops().Len()
		fillLeg(&v, l.Leg)
	case *pte.IndividualLeg:
		v = legView{Kind: l.Type().String(), Distance: l.Distance()}
		fillLeg(&v, l.Leg)
	case *pte.Leg:
		v = legView{Kind: "unknown"}
		fillLeg(&v, l)
	}
	return v
}

func fillLeg(v *legView, l *pte.Leg) {
	v.From = viewLocation(l.Departure()).label()
	v.To = viewLocation(l.Arrival()).label()
	v.Departure = clock(l.DepartureTime())
	v.Arrival = clock(l.ArrivalTime())
}

type fareView struct {
	Type     string  `json:"type" yaml:"type"`
	Name     string  `json:"name,omitempty" yaml:"name,omitempty"`
	Amount   float32 `json:"amount" yaml:"amount"`
	Currency string  `json:"currency" yaml:"currency"`
}

type tripView struct {
	Departure  string     `json:"departure" yaml:"departure"`
	Arrival    string     `json:"arrival" yaml:"arrival"`
	Duration   string     `json:"duration" yaml:"duration"`
	Changes    int        `json:"changes" yaml:"changes"`
	Products   string     `json:"products" yaml:"products"`
	Travelable bool       `json:"travelable" yaml:"travelable"`
	Legs       []legView  `json:"legs" yaml:"legs"`
	Fares      []fareView `json:"fares,omitempty" yaml:"fares,omitempty"`
}

func viewTrip(t *pte.Trip) tripView {
	v := tripView{
		Departure:  clock(t.FirstDepartureTime()),
		Arrival:    clock(t.LastArrivalTime()),
		Duration:   t.Duration().String(),
		Products:   t.Products().Letters(),
		Travelable: t.Travelable(),
		Legs:       []legView{},
	}
	v.Changes, _ = t.NumChanges()
	for _, leg := range t.Legs().All() {
		v.Legs = append(v.Legs, viewLeg(leg))
	}
	for _, f := range t.Fares().All() {
		fv := fareView{Type: f.Type().String(), Amount: f.Amount(), Currency: f.Currency().Code}
		fv.Name, _ = f.Name()
		v.Fares = append(v.Fares, fv)
	}
	return v
}

type tripsView struct {
	From  locationView  `json:"from" yaml:"from"`
	Via   *locationView `json:"via,omitempty" yaml:"via,omitempty"`
	To    locationView  `json:"to" yaml:"to"`
	Trips []tripView    `json:"trips" yaml:"trips"`
}

func viewTrips(trips *pte.Trips) tripsView {
	v := tripsView{From: viewLocation(trips.From()), To: viewLocation(trips.To()), Trips: []tripView{}}
	if via := trips.Via(); via != nil {
		lv := viewLocation(via)
		v.Via = &lv
	}
	for _, t := range trips.List().All() {
		v.Trips = append(v.Trips, viewTrip(t))
	}
	return v
}

func (p *printer) tripsText(v tripsView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s → %s\n", p.render(stationStyle, v.From.label()), p.render(stationStyle, v.To.label()))
	for i, t := range v.Trips {
		fmt.Fprintf(&b, "\n%s  %s–%s  %s, %d changes\n",
			p.render(headerStyle, fmt.Sprintf("#%d", i+1)), t.Departure, t.Arrival, t.Duration, t.Changes)
		for _, l := range t.Legs {
			if l.Kind == "public" {
				fmt.Fprintf(&b, "  %s %s  %s → %s  %s–%s",
					p.badge(l.Line, l.style), p.render(dimStyle, "> "+l.Destination), l.From, l.To, l.Departure, l.Arrival)
				if l.Platform != "" {
					fmt.Fprintf(&b, "  platform %s", l.Platform)
				}
				b.WriteString("\n")
				continue
			}
			fmt.Fprintf(&b, "  %s %dm at %s\n", p.render(dimStyle, l.Kind), l.Distance, l.From)
		}
		for _, f := range t.Fares {
			fmt.Fprintf(&b, "  %s %.2f %s\n", p.render(dimStyle, f.Type), f.Amount, f.Currency)
		}
	}
	if len(v.Trips) == 0 {
		b.WriteString(p.render(dimStyle, "no trips"))
	}
	return b.String()
}
