package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wippyai/pte-bridge/jvm"
	"github.com/wippyai/pte-bridge/providers"
	"github.com/wippyai/pte-bridge/pte"
)

// command declares its flags on fs and returns the function that runs
// it with the remaining positional arguments.
type command func(a *app, fs *flag.FlagSet) func(ctx context.Context, args []string) error

var commands = map[string]command{
	"suggest":    (*app).suggestCmd,
	"departures": (*app).departuresCmd,
	"nearby":     (*app).nearbyCmd,
	"trips":      (*app).tripsCmd,
	"batch":      (*app).batchCmd,
}

func listProviders(out *printer) error {
	type row struct {
		ID     string `json:"id" yaml:"id"`
		Class  string `json:"class" yaml:"class"`
		Family string `json:"family" yaml:"family"`
		Auth   bool   `json:"authorization" yaml:"authorization"`
	}
	var rows []row
	for _, id := range providers.IDs() {
		d, _ := providers.Lookup(id)
		rows = append(rows, row{ID: d.ID, Class: d.Class, Family: d.Family.String(), Auth: d.Family.NeedsAuthorization()})
	}
	return out.print(rows, func() string {
		cells := make([][]string, 0, len(rows))
		for _, r := range rows {
			auth := ""
			if r.Auth {
				auth = "required"
			}
			cells = append(cells, []string{r.ID, r.Class, r.Family, auth})
		}
		return out.table([]string{"ID", "Class", "Family", "Authorization"}, cells)
	})
}

// parseClock reads HH:MM as a time today. The empty string means now.
func parseClock(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("15:04", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, time.Local), nil
}

func (a *app) suggestCmd(fs *flag.FlagSet) func(context.Context, []string) error {
	types := fs.String("types", "", "Location types, e.g. station,poi")
	return func(_ context.Context, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("usage: suggest [-types t] <text>")
		}
		lt, err := pte.ParseLocationTypes(*types)
		if err != nil {
			return err
		}
		list, err := a.provider.SuggestLocations(strings.Join(args, " "), lt, a.max)
		if err != nil {
			return err
		}
		defer list.Release()
		views := viewLocations(list)
		return a.out.print(views, func() string { return a.out.locationsText(views) })
	}
}

func (a *app) departuresCmd(fs *flag.FlagSet) func(context.Context, []string) error {
	equivs := fs.Bool("equivs", false, "Include equivalent stations")
	at := fs.String("at", "", "Time as HH:MM")
	return func(_ context.Context, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("usage: departures [-equivs] [-at HH:MM] <station-id>")
		}
		when, err := parseClock(*at)
		if err != nil {
			return err
		}
		var flags pte.DeparturesFlags
		if *equivs {
			flags |= pte.QueryEquivs
		}
		list, err := a.provider.QueryDepartures(args[0], when, a.max, flags)
		if err != nil {
			return err
		}
		defer list.Release()
		views := []stationView{}
		for _, sd := range list.All() {
			views = append(views, viewStation(sd))
		}
		return a.out.print(views, func() string { return a.out.stationsText(views) })
	}
}

func (a *app) nearbyCmd(fs *flag.FlagSet) func(context.Context, []string) error {
	types := fs.String("types", "", "Location types, e.g. station,poi")
	distance := fs.Int("distance", 0, "Maximum distance in meters")
	return func(_ context.Context, args []string) error {
		if len(args) != 2 {
			return fmt.Errorf("usage: nearby [-types t] [-distance m] <lat> <lon>")
		}
		lat, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid latitude %q", args[0])
		}
		lon, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid longitude %q", args[1])
		}
		lt, err := pte.ParseLocationTypes(*types)
		if err != nil {
			return err
		}
		here := pte.LocationFromCoords(a.rt, pte.GeoPoint{Lat: lat, Lon: lon})
		defer here.Release()
		list, err := a.provider.QueryNearby(lt, here, *distance, a.max)
		if err != nil {
			return err
		}
		defer list.Release()
		views := viewLocations(list)
		return a.out.print(views, func() string { return a.out.locationsText(views) })
	}
}

func (a *app) tripsCmd(fs *flag.FlagSet) func(context.Context, []string) error {
	via := fs.String("via", "", "Station id to change at")
	at := fs.String("at", "", "Time as HH:MM")
	arrive := fs.Bool("arrive", false, "Treat -at as the arrival time")
	products := fs.String("products", "", "Allowed products, e.g. SU or bus,tram")
	earlier := fs.Bool("earlier", false, "Also fetch the earlier page")
	later := fs.Bool("later", false, "Also fetch the later page")
	return func(_ context.Context, args []string) error {
		if len(args) != 2 {
			return fmt.Errorf("usage: trips [-via id] [-at HH:MM] [-arrive] [-products p] [-earlier] [-later] <from-id> <to-id>")
		}
		when, err := parseClock(*at)
		if err != nil {
			return err
		}
		req := pte.TripsDeparture
		if *arrive {
			req = pte.TripsArrival
		}
		var opts *pte.TripOptions
		if *products != "" {
			p, err := pte.ParseProducts(*products)
			if err != nil {
				return err
			}
			opts = &pte.TripOptions{Products: p}
		}

		from := pte.LocationFromID(a.rt, pte.LocationStation, args[0])
		defer from.Release()
		to := pte.LocationFromID(a.rt, pte.LocationStation, args[1])
		defer to.Release()
		var viaLoc *pte.Location
		if *via != "" {
			viaLoc = pte.LocationFromID(a.rt, pte.LocationStation, *via)
			defer viaLoc.Release()
		}

		res, err := a.provider.QueryTrips(from, viaLoc, to, when, req, opts)
		if err != nil {
			return err
		}
		defer res.Release()
		if res.Kind() == pte.TripsAmbiguous {
			return a.printAmbiguous(res)
		}

		trips := res.Trips()
		if *earlier {
			if err := trips.QueryMore(pte.Earlier); err != nil {
				return fmt.Errorf("earlier trips: %w", err)
			}
		}
		if *later {
			if err := trips.QueryMore(pte.Later); err != nil {
				return fmt.Errorf("later trips: %w", err)
			}
		}
		v := viewTrips(trips)
		return a.out.print(v, func() string { return a.out.tripsText(v) })
	}
}

func (a *app) printAmbiguous(res *pte.TripsResult) error {
	type ambiguous struct {
		From []locationView `json:"from,omitempty" yaml:"from,omitempty"`
		Via  []locationView `json:"via,omitempty" yaml:"via,omitempty"`
		To   []locationView `json:"to,omitempty" yaml:"to,omitempty"`
	}
	collect := func(list *jvm.List[*pte.Location]) []locationView {
		if list == nil {
			return nil
		}
		return viewLocations(list)
	}
	v := ambiguous{
		From: collect(res.AmbiguousFrom()),
		Via:  collect(res.AmbiguousVia()),
		To:   collect(res.AmbiguousTo()),
	}
	err := a.out.print(v, func() string {
		var b strings.Builder
		for _, part := range []struct {
			name  string
			views []locationView
		}{{"from", v.From}, {"via", v.Via}, {"to", v.To}} {
			if len(part.views) == 0 {
				continue
			}
			fmt.Fprintf(&b, "Ambiguous %s:\n%s\n", part.name, a.out.locationsText(part.views))
		}
		return b.String()
	})
	if err != nil {
		return err
	}
	return fmt.Errorf("ambiguous locations, pick one of the ids above")
}

// batchCmd suggests for every argument concurrently on the pool. The
// lists are read back on the calling thread.
func (a *app) batchCmd(fs *flag.FlagSet) func(context.Context, []string) error {
	types := fs.String("types", "", "Location types, e.g. station,poi")
	return func(ctx context.Context, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("usage: batch [-types t] <text>...")
		}
		lt, err := pte.ParseLocationTypes(*types)
		if err != nil {
			return err
		}

		lists := make([]*jvm.List[*pte.Location], len(args))
		defer func() {
			for _, l := range lists {
				if l != nil {
					l.Release()
				}
			}
		}()
		g, gctx := errgroup.WithContext(ctx)
		for i, text := range args {
			g.Go(func() error {
				list, err := a.provider.SuggestLocationsAsync(gctx, a.pool, text, lt, a.max).Await(gctx)
				if err != nil {
					return fmt.Errorf("%s: %w", text, err)
				}
				lists[i] = list
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		type result struct {
			Text      string         `json:"text" yaml:"text"`
			Locations []locationView `json:"locations" yaml:"locations"`
		}
		results := make([]result, len(args))
		for i, text := range args {
			results[i] = result{Text: text, Locations: viewLocations(lists[i])}
		}
		return a.out.print(results, func() string {
			var b strings.Builder
			for _, r := range results {
				fmt.Fprintf(&b, "%s\n%s\n", a.out.render(stationStyle, r.Text), a.out.locationsText(r.Locations))
			}
			return b.String()
		})
	}
}
