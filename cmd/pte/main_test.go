package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"path/filepath"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"
)

// runPTE runs the command with the simulated backend and no configuration
// file. Each call boots and drops its own runtime.
func runPTE(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errb bytes.Buffer
	full := append([]string{"-config", filepath.Join(t.TempDir(), "none.toml"), "-backend", "sim"}, args...)
	code = run(full, &out, &errb)
	return out.String(), errb.String(), code
}

func TestRun_Providers(t *testing.T) {
	out, stderr, code := runPTE(t, "-format", "json", "providers")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	var rows []struct {
		ID     string `json:"id"`
		Family string `json:"family"`
		Auth   bool   `json:"authorization"`
	}
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 76 {
		t.Errorf("%d providers", len(rows))
	}
	for _, r := range rows {
		if r.ID == "db" && (r.Family != "hafas-complex" || !r.Auth) {
			t.Errorf("db = %+v", r)
		}
	}
}

func TestRun_Suggest(t *testing.T) {
	out, stderr, code := runPTE(t, "-format", "json", "suggest", "alex")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	var locs []locationView
	if err := json.Unmarshal([]byte(out), &locs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(locs) != 2 {
		t.Fatalf("%d locations, want 2", len(locs))
	}
	found := false
	for _, l := range locs {
		if l.ID == "900100003" && l.Type == "station" && l.Coord != nil {
			found = true
		}
	}
	if !found {
		t.Errorf("Alexanderplatz missing from %+v", locs)
	}

	text, _, code := runPTE(t, "suggest", "-types", "station", "alex")
	if code != 0 || !strings.Contains(text, "S+U Alexanderplatz") {
		t.Errorf("text output:\n%s", text)
	}
}

func TestRun_Departures(t *testing.T) {
	out, stderr, code := runPTE(t, "-format", "yaml", "-max", "3", "departures", "900100003")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	var boards []struct {
		Station    map[string]any   `yaml:"station"`
		Departures []map[string]any `yaml:"departures"`
	}
	if err := yaml.Unmarshal([]byte(out), &boards); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(boards) != 1 || len(boards[0].Departures) != 3 {
		t.Fatalf("boards = %+v", boards)
	}
	if boards[0].Station["name"] != "S+U Alexanderplatz" {
		t.Errorf("station = %v", boards[0].Station)
	}

	_, stderr, code = runPTE(t, "departures", "123")
	if code != 1 || !strings.Contains(stderr, "invalid-station") {
		t.Errorf("exit %d, stderr %q", code, stderr)
	}
}

func TestRun_Nearby(t *testing.T) {
	out, stderr, code := runPTE(t, "-format", "json", "nearby", "52.5215", "13.4113", "-distance", "500")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	var locs []locationView
	if err := json.Unmarshal([]byte(out), &locs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(locs) != 3 {
		t.Errorf("%d locations, want 3", len(locs))
	}
}

func TestRun_Trips(t *testing.T) {
	out, stderr, code := runPTE(t, "-format", "json", "trips", "900023201", "900007102", "-later")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	var v tripsView
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.From.ID != "900023201" || v.To.ID != "900007102" {
		t.Errorf("from %q to %q", v.From.ID, v.To.ID)
	}
	if len(v.Trips) != 8 {
		t.Fatalf("%d trips, want 8", len(v.Trips))
	}
	trip := v.Trips[0]
	if trip.Changes != 1 || len(trip.Legs) != 3 || trip.Legs[1].Kind != "transfer" {
		t.Errorf("trip = %+v", trip)
	}

	text, _, code := runPTE(t, "trips", "900023201", "900007102")
	if code != 0 || !strings.Contains(text, "#4") || strings.Contains(text, "#5") {
		t.Errorf("text output:\n%s", text)
	}
}

func TestRun_Batch(t *testing.T) {
	out, stderr, code := runPTE(t, "-format", "json", "batch", "alex", "zoo", "hamburg")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	var results []struct {
		Text      string         `json:"text"`
		Locations []locationView `json:"locations"`
	}
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("%d results", len(results))
	}
	if results[0].Text != "alex" || len(results[0].Locations) != 2 {
		t.Errorf("alex = %+v", results[0])
	}
	if len(results[2].Locations) != 0 {
		t.Errorf("hamburg = %+v", results[2])
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
		msg  string
	}{
		{"no command", nil, 2, "Usage"},
		{"unknown command", []string{"fly"}, 1, "unknown command"},
		{"unknown format", []string{"-format", "xml", "providers"}, 1, "unknown format"},
		{"unknown provider", []string{"-provider", "nope", "suggest", "x"}, 1, "invalid-id"},
		{"native backend", []string{"-backend", "native", "suggest", "x"}, 1, "-tags jni"},
		{"bad arguments", []string{"nearby", "north"}, 1, "usage: nearby"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, code := runPTE(t, tt.args...)
			if code != tt.code {
				t.Errorf("exit %d, want %d", code, tt.code)
			}
			if !strings.Contains(stderr, tt.msg) {
				t.Errorf("stderr %q does not mention %q", stderr, tt.msg)
			}
		})
	}
}

func TestParseInterspersed(t *testing.T) {
	tests := []struct {
		args []string
		want []string
		flag bool
	}{
		{[]string{"a", "b"}, []string{"a", "b"}, false},
		{[]string{"a", "-later", "b"}, []string{"a", "b"}, true},
		{[]string{"-later", "a"}, []string{"a"}, true},
		{[]string{"-33.86", "151.2"}, []string{"-33.86", "151.2"}, false},
	}
	for _, tt := range tests {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		later := fs.Bool("later", false, "")
		got, err := parseInterspersed(fs, tt.args)
		if err != nil {
			t.Errorf("%v: %v", tt.args, err)
			continue
		}
		if strings.Join(got, " ") != strings.Join(tt.want, " ") || *later != tt.flag {
			t.Errorf("%v: got %v later=%v", tt.args, got, *later)
		}
	}
}
