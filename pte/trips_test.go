package pte_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/wippyai/pte-bridge/errors"
	"github.com/wippyai/pte-bridge/internal/ptesim"
	"github.com/wippyai/pte-bridge/jvm"
	"github.com/wippyai/pte-bridge/providers"
	"github.com/wippyai/pte-bridge/pte"
	"github.com/wippyai/pte-bridge/task"
)

// queryTrips runs a departure query from Zoo to Gesundbrunnen at Base.
func (f *fixture) queryTrips(t *testing.T, opts *pte.TripOptions) *pte.TripsResult {
	t.Helper()
	from := f.station(t, "Zoologischer")
	defer from.Release()
	to := f.station(t, "Gesundbrunnen")
	defer to.Release()
	res, err := f.provider.QueryTrips(from, nil, to, time.Time{}, pte.TripsDeparture, opts)
	if err != nil {
		t.Fatalf("QueryTrips: %v", err)
	}
	if res.Kind() != pte.TripsOK {
		res.Release()
		t.Fatalf("Kind = %v", res.Kind())
	}
	return res
}

func TestQueryTrips(t *testing.T) {
	f := setup(t)
	res := f.queryTrips(t, nil)
	defer res.Release()
	trips := res.Trips()

	if id, _ := trips.From().ID(); id != zoo {
		t.Errorf("From = %q", id)
	}
	if id, _ := trips.To().ID(); id != gesundbrunnen {
		t.Errorf("To = %q", id)
	}
	if trips.Via() != nil {
		t.Error("unexpected via")
	}
	if trips.Len() != 4 {
		t.Fatalf("%d trips, want 4", trips.Len())
	}

	trip, _ := trips.Item(0)
	dep, ok := trip.FirstDepartureTime()
	if !ok || dep.Before(ptesim.Base) {
		t.Errorf("first departure %v", dep)
	}
	arr, _ := trip.LastArrivalTime()
	if d := trip.Duration(); d != arr.Sub(dep) {
		t.Errorf("Duration = %v, want %v", d, arr.Sub(dep))
	}
	if n, ok := trip.NumChanges(); !ok || n != 1 {
		t.Errorf("NumChanges = %d, %v", n, ok)
	}
	if !trip.Travelable() {
		t.Error("trip not travelable")
	}

	legs := trip.Legs()
	if legs.Len() != 3 {
		t.Fatalf("%d legs, want 3", legs.Len())
	}
	first, _ := legs.Item(0)
	ride, ok := first.(*pte.PublicLeg)
	if !ok {
		t.Fatalf("leg 0 is %T", first)
	}
	if id, _ := ride.Departure().ID(); id != zoo {
		t.Errorf("first leg departs %q", id)
	}
	if stop := ride.DepartureStop(); stop == nil {
		t.Error("no departure stop")
	} else if _, _, ok := stop.DepartureTime(); !ok {
		t.Error("departure stop without time")
	}
	if len(ride.Path()) < 2 {
		t.Errorf("path has %d points", len(ride.Path()))
	}
	if trip.FirstPublicLeg() == nil || trip.LastPublicLeg() == nil {
		t.Error("missing public legs")
	}

	middle, _ := legs.Item(1)
	walk, ok := middle.(*pte.IndividualLeg)
	if !ok {
		t.Fatalf("leg 1 is %T", middle)
	}
	if walk.Type() != pte.IndividualTransfer || walk.Distance() != 120 {
		t.Errorf("transfer leg = %v, %dm", walk.Type(), walk.Distance())
	}
	if id, _ := walk.Departure().ID(); id != alexanderplatz {
		t.Errorf("transfer at %q", id)
	}

	fares := trip.Fares()
	if fares.Len() != 2 {
		t.Fatalf("%d fares", fares.Len())
	}
	adult, _ := fares.Item(0)
	if adult.Type() != pte.FareAdult || adult.Currency().Code != "EUR" || adult.Amount() != 3.80 {
		t.Errorf("fare = %v %v %v", adult.Type(), adult.Currency(), adult.Amount())
	}
}

func TestQueryTrips_Options(t *testing.T) {
	f := setup(t)
	from := f.station(t, "Zoologischer")
	defer from.Release()
	to := f.station(t, "Alexanderplatz")
	defer to.Release()

	res, err := f.provider.QueryTrips(from, nil, to, at(9, 0), pte.TripsDeparture, &pte.TripOptions{Products: pte.ProductsSubway})
	if err != nil {
		t.Fatal(err)
	}
	for _, trip := range res.Trips().List().All() {
		if p := trip.Products(); p != pte.ProductsSubway {
			t.Errorf("trip uses %v", p)
		}
	}
	res.Release()

	_, err = f.provider.QueryTrips(from, nil, to, at(9, 0), pte.TripsDeparture, &pte.TripOptions{Products: pte.ProductsFerry})
	if kind, _ := errors.KindOf(err); kind != errors.KindNoTrips {
		t.Errorf("ferry only: err = %v", err)
	}

	arriveBy := at(9, 0)
	res, err = f.provider.QueryTrips(from, nil, to, arriveBy, pte.TripsArrival, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Release()
	if res.Trips().Len() == 0 {
		t.Fatal("no trips arriving by 09:00")
	}
	for _, trip := range res.Trips().List().All() {
		if arr, _ := trip.LastArrivalTime(); arr.After(arriveBy) {
			t.Errorf("trip arrives %v, after %v", arr, arriveBy)
		}
	}
}

func TestQueryTrips_Statuses(t *testing.T) {
	f := setup(t)
	zooStation := f.station(t, "Zoologischer")
	defer zooStation.Release()
	nowhere := pte.LocationFromCoords(f.rt, pte.GeoPoint{Lat: 48.1372, Lon: 11.5755})
	defer nowhere.Release()

	tests := []struct {
		name     string
		from, to *pte.Location
		kind     errors.Kind
	}{
		{"same place", zooStation, zooStation, errors.KindTooClose},
		{"unknown origin", nowhere, zooStation, errors.KindUnknownFrom},
		{"unknown destination", zooStation, nowhere, errors.KindUnknownTo},
	}
	for _, tt := range tests {
		res, err := f.provider.QueryTrips(tt.from, nil, tt.to, time.Time{}, pte.TripsDeparture, nil)
		if err == nil {
			res.Release()
			t.Errorf("%s: no error", tt.name)
			continue
		}
		if kind, _ := errors.KindOf(err); kind != tt.kind {
			t.Errorf("%s: err = %v, want %s", tt.name, err, tt.kind)
		}
	}

	f.net.SetStatus(ptesim.OpTrips, "INVALID_DATE")
	if _, err := f.provider.QueryTrips(zooStation, nil, nowhere, time.Time{}, pte.TripsDeparture, nil); err == nil {
		t.Error("forced status ignored")
	} else if kind, _ := errors.KindOf(err); kind != errors.KindInvalidDate {
		t.Errorf("err = %v", err)
	}
}

func TestQueryTrips_Ambiguous(t *testing.T) {
	f := setup(t)
	between := pte.LocationFromCoords(f.rt, pte.GeoPoint{Lat: 52.5255, Lon: 13.4060})
	defer between.Release()
	to := f.station(t, "Zoologischer")
	defer to.Release()

	res, err := f.provider.QueryTrips(between, nil, to, time.Time{}, pte.TripsDeparture, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Release()
	if res.Kind() != pte.TripsAmbiguous {
		t.Fatalf("Kind = %v", res.Kind())
	}
	if n := res.AmbiguousFrom().Len(); n < 2 {
		t.Errorf("%d origin candidates", n)
	}
	if res.AmbiguousTo() != nil {
		t.Error("destination reported ambiguous")
	}

	defer func() {
		if recover() == nil {
			t.Error("Trips of an ambiguous result did not panic")
		}
	}()
	res.Trips()
}

func TestTrips_QueryMore(t *testing.T) {
	f := setup(t)
	res := f.queryTrips(t, nil)
	defer res.Release()
	trips := res.Trips()

	if !trips.CanQuery(pte.Earlier) || !trips.CanQuery(pte.Later) {
		t.Fatal("paging not offered")
	}
	var changes []jvm.Change
	cancel := trips.Subscribe(func(c jvm.Change) { changes = append(changes, c) })
	defer cancel()

	firstBefore, _ := trips.Item(0)
	firstDep, _ := firstBefore.FirstDepartureTime()

	if err := trips.QueryMore(pte.Later); err != nil {
		t.Fatal(err)
	}
	if err := trips.QueryMore(pte.Earlier); err != nil {
		t.Fatal(err)
	}
	if trips.Len() != 12 {
		t.Fatalf("%d trips after paging, want 12", trips.Len())
	}
	want := []jvm.Change{{Position: 4, Added: 4}, {Position: 0, Added: 4}}
	if len(changes) != len(want) || changes[0] != want[0] || changes[1] != want[1] {
		t.Errorf("changes = %+v, want %+v", changes, want)
	}

	var last time.Time
	for i, trip := range trips.List().All() {
		dep, _ := trip.FirstDepartureTime()
		if i > 0 && !dep.After(last) {
			t.Errorf("trip %d departs %v, not after %v", i, dep, last)
		}
		last = dep
	}
	moved, _ := trips.Item(4)
	if dep, _ := moved.FirstDepartureTime(); !dep.Equal(firstDep) {
		t.Errorf("original first trip moved to %v", dep)
	}

	f.net.SetStatus(ptesim.OpMoreTrips, "AMBIGUOUS")
	err := trips.QueryMore(pte.Later)
	if kind, _ := errors.KindOf(err); kind != errors.KindUnexpectedStatus {
		t.Errorf("err = %v, want unexpected status", err)
	}
	f.net.SetStatus(ptesim.OpMoreTrips, "NO_TRIPS")
	if err := trips.QueryMore(pte.Later); !stderrors.Is(err, errors.NoTrips()) {
		t.Errorf("err = %v", err)
	}
	if trips.Len() != 12 {
		t.Errorf("failed pages changed the list to %d", trips.Len())
	}
}

// waitCalls polls until op has been entered n times.
func waitCalls(t *testing.T, net *ptesim.Network, op string, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for net.Calls(op) < n {
		if time.Now().After(deadline) {
			t.Fatalf("%s entered %d times, want %d", op, net.Calls(op), n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestTrips_QueryMoreAsync_Supersede(t *testing.T) {
	f := setup(t)
	res := f.queryTrips(t, nil)
	defer res.Release()
	trips := res.Trips()
	pool := task.NewPool(2)
	ctx := context.Background()

	gate := f.net.Gate(ptesim.OpMoreTrips)
	stale := trips.QueryMoreAsync(ctx, pool, pte.Later)
	waitCalls(t, f.net, ptesim.OpMoreTrips, 1)
	fresh := trips.QueryMoreAsync(ctx, pool, pte.Later)
	waitCalls(t, f.net, ptesim.OpMoreTrips, 2)
	close(gate)
	f.net.Ungate(ptesim.OpMoreTrips)

	if ok, err := stale.Await(ctx); !task.IsDiscarded(err) || ok {
		t.Errorf("superseded page = %v, %v", ok, err)
	}
	if ok, err := fresh.Await(ctx); err != nil || !ok {
		t.Errorf("current page = %v, %v", ok, err)
	}
	if trips.Len() != 8 {
		t.Errorf("%d trips, want 8", trips.Len())
	}
	if f.logs.FilterMessage("page superseded").Len() != 1 {
		t.Error("superseded page not logged")
	}
}

func TestTrips_ReleaseCancelsPaging(t *testing.T) {
	f := setup(t)
	// Warm up the class and member caches.
	f.queryTrips(t, nil).Release()
	globals := f.vm.LiveGlobals()

	res := f.queryTrips(t, nil)
	trips := res.Trips()
	pool := task.NewPool(1)
	ctx := context.Background()

	gate := f.net.Gate(ptesim.OpMoreTrips)
	fut := trips.QueryMoreAsync(ctx, pool, pte.Earlier)
	waitCalls(t, f.net, ptesim.OpMoreTrips, 1)
	res.Release()

	// Callbacks run in registration order, so this one sees the list
	// already dropped.
	done := make(chan error, 1)
	fut.OnComplete(func(_ bool, err error) { done <- err })
	close(gate)
	f.net.Ungate(ptesim.OpMoreTrips)

	if err := <-done; !task.IsDiscarded(err) {
		t.Errorf("err = %v, want discarded", err)
	}
	if got := f.vm.LiveGlobals(); got != globals {
		t.Errorf("%d live globals after release, want %d", got, globals)
	}
}

func TestQueryAsync(t *testing.T) {
	f := setup(t)
	pool := task.NewPool(2)
	ctx := context.Background()

	suggest := f.provider.SuggestLocationsAsync(ctx, pool, "alex", pte.LocationsAny, 0)
	deps := f.provider.QueryDeparturesAsync(ctx, pool, alexanderplatz, time.Time{}, 3, 0)

	list, err := suggest.Await(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer list.Release()
	if list.Len() != 2 {
		t.Errorf("%d suggestions", list.Len())
	}
	d, err := deps.Await(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Release()
	if d.Len() != 1 {
		t.Errorf("%d stations", d.Len())
	}

	f.net.SetStatus(ptesim.OpSuggest, "SERVICE_DOWN")
	if _, err := f.provider.SuggestLocationsAsync(ctx, pool, "alex", pte.LocationsAny, 0).Await(ctx); !stderrors.Is(err, errors.ServiceDown()) {
		t.Errorf("err = %v", err)
	}
}

func TestTripsResult_AccessorsPanicOnWrongKind(t *testing.T) {
	f := setup(t)
	res := f.queryTrips(t, nil)
	defer res.Release()

	tests := []struct {
		name string
		call func()
	}{
		{"AmbiguousFrom", func() { res.AmbiguousFrom() }},
		{"AmbiguousVia", func() { res.AmbiguousVia() }},
		{"AmbiguousTo", func() { res.AmbiguousTo() }},
	}
	for _, tt := range tests {
		panicked := func() (p bool) {
			defer func() { p = recover() != nil }()
			tt.call()
			return false
		}()
		if !panicked {
			t.Errorf("%s of an ok result did not panic", tt.name)
		}
	}
}

func TestTrips_OutliveProvider(t *testing.T) {
	f := setup(t)
	p, err := providers.New(f.rt, "vrr", nil)
	if err != nil {
		t.Fatal(err)
	}
	from := f.station(t, "Zoologischer")
	defer from.Release()
	to := f.station(t, "Gesundbrunnen")
	defer to.Release()

	res, err := p.QueryTrips(from, nil, to, time.Time{}, pte.TripsDeparture, nil)
	p.Release()
	if err != nil {
		t.Fatal(err)
	}
	defer res.Release()

	trips := res.Trips()
	if err := trips.QueryMore(pte.Later); err != nil {
		t.Fatalf("QueryMore after provider release: %v", err)
	}
	if trips.Len() != 8 {
		t.Errorf("%d trips, want 8", trips.Len())
	}
}

func TestTrips_RetainKeepsPaging(t *testing.T) {
	f := setup(t)
	res := f.queryTrips(t, nil)
	trips := res.Trips().Retain()
	defer trips.Release()
	pool := task.NewPool(1)
	ctx := context.Background()

	gate := f.net.Gate(ptesim.OpMoreTrips)
	fut := trips.QueryMoreAsync(ctx, pool, pte.Later)
	waitCalls(t, f.net, ptesim.OpMoreTrips, 1)
	res.Release()
	close(gate)
	f.net.Ungate(ptesim.OpMoreTrips)

	if ok, err := fut.Await(ctx); err != nil || !ok {
		t.Fatalf("page = %v, %v", ok, err)
	}
	if trips.Len() != 8 {
		t.Errorf("%d trips, want 8", trips.Len())
	}
}

func TestTrips_SplicedPageSurvivesCancel(t *testing.T) {
	f := setup(t)
	res := f.queryTrips(t, nil)
	defer res.Release()
	trips := res.Trips()
	pool := task.NewPool(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The splice notification runs on the worker after the page is in the
	// list, so cancelling here lands between the splice and completion.
	stop := trips.Subscribe(func(jvm.Change) { cancel() })
	defer stop()

	ok, err := trips.QueryMoreAsync(ctx, pool, pte.Later).Await(context.Background())
	if err != nil || !ok {
		t.Errorf("page = %v, %v; want reported as applied", ok, err)
	}
	if trips.Len() != 8 {
		t.Errorf("%d trips, want 8", trips.Len())
	}
}
