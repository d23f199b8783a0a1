package providers_test

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/wippyai/pte-bridge/errors"
	"github.com/wippyai/pte-bridge/internal/ptesim"
	"github.com/wippyai/pte-bridge/providers"
)

func TestCatalog(t *testing.T) {
	all := providers.Catalog()
	if len(all) != 76 {
		t.Errorf("catalog has %d providers, want 76", len(all))
	}
	seen := map[string]bool{}
	for _, d := range all {
		if seen[d.ID] {
			t.Errorf("duplicate id %q", d.ID)
		}
		seen[d.ID] = true
	}

	ids := providers.IDs()
	if !sort.StringsAreSorted(ids) {
		t.Error("IDs not sorted")
	}
	if ids[0] != "australia" || ids[len(ids)-1] != "zvv" {
		t.Errorf("IDs span %s..%s", ids[0], ids[len(ids)-1])
	}

	tests := []struct {
		id     string
		class  string
		family providers.Family
	}{
		{"db", "DbProvider", providers.HafasComplex},
		{"bvg", "BvgProvider", providers.Hafas},
		{"paris", "ParisProvider", providers.Navitia},
		{"vrr", "VrrProvider", providers.Efa},
		{"ns", "NsProvider", providers.HafasLegacy},
		{"negentwee", "NegentweeProvider", providers.Negentwee},
		{"vrs", "VrsProvider", providers.Vrs},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			d, ok := providers.Lookup(tt.id)
			if !ok {
				t.Fatalf("Lookup(%q) failed", tt.id)
			}
			if d.Class != tt.class || d.Family != tt.family {
				t.Errorf("got %s/%s, want %s/%s", d.Class, d.Family, tt.class, tt.family)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
provider = "vbb"

[providers.vbb]
authorization = "secret"
salt = "0a0b"

[providers.vrs]
client_cert = "vrs.pem"

[runtime]
class_path = "/opt/pte.jar"
options = ["-Xmx64m"]

[ui]
max_results = 25
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "vrs.pem"), []byte("CERT"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := providers.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Provider != "vbb" {
		t.Errorf("Provider = %q", cfg.Provider)
	}
	if cfg.Runtime.ClassPath != "/opt/pte.jar" || len(cfg.Runtime.Options) != 1 {
		t.Errorf("Runtime = %+v", cfg.Runtime)
	}
	if cfg.UI.MaxResults != 25 || cfg.UI.Workers != 4 {
		t.Errorf("UI = %+v", cfg.UI)
	}
	salt, err := cfg.Providers["vbb"].SaltBytes()
	if err != nil || len(salt) != 2 || salt[1] != 0x0b {
		t.Errorf("SaltBytes = %v, %v", salt, err)
	}
	cert, err := cfg.Providers["vrs"].ClientCertBytes(cfg.Dir)
	if err != nil || string(cert) != "CERT" {
		t.Errorf("ClientCertBytes = %q, %v", cert, err)
	}

	missing, err := providers.LoadConfig(filepath.Join(dir, "absent.toml"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if missing.UI.MaxResults != 10 {
		t.Errorf("default MaxResults = %d", missing.UI.MaxResults)
	}

	if err := os.WriteFile(path, []byte("provider = "), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := providers.LoadConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestNew(t *testing.T) {
	rt, network := ptesim.Boot(t)

	cfg := &providers.Config{
		Dir: t.TempDir(),
		Providers: map[string]providers.ProviderConfig{
			"db":        {Authorization: "key", Salt: "6869"},
			"bvg":       {Authorization: "bvg-key"},
			"negentwee": {Language: "en"},
		},
	}

	tests := []struct {
		id    string
		class string
		args  []string
	}{
		{"db", "DbProvider", []string{"key", "hi"}},
		{"bvg", "BvgProvider", []string{"bvg-key"}},
		{"vrr", "VrrProvider", nil},
		{"ns", "NsProvider", nil},
		{"negentwee", "NegentweeProvider", []string{"EN_GB"}},
		{"vrs", "VrsProvider", []string{""}},
	}
	// The runtime is bound to this goroutine, so cases run inline.
	for i, tt := range tests {
		p, err := providers.New(rt, tt.id, cfg)
		if err != nil {
			t.Errorf("%s: %v", tt.id, err)
			continue
		}
		if p.ID() != tt.id {
			t.Errorf("%s: ID = %q", tt.id, p.ID())
		}
		p.Release()

		created := network.Created()
		if len(created) != i+1 {
			t.Fatalf("%s: %d constructions recorded", tt.id, len(created))
		}
		got := created[i]
		if got.Class != tt.class {
			t.Errorf("%s: constructed %s", tt.id, got.Class)
		}
		if len(got.Args) != len(tt.args) {
			t.Errorf("%s: args %q, want %q", tt.id, got.Args, tt.args)
			continue
		}
		for j := range got.Args {
			if got.Args[j] != tt.args[j] {
				t.Errorf("%s: arg %d = %q, want %q", tt.id, j, got.Args[j], tt.args[j])
			}
		}
	}

	errorTests := []struct {
		id   string
		cfg  *providers.Config
		kind errors.Kind
	}{
		{"nope", cfg, errors.KindInvalidID},
		{"paris", cfg, errors.KindJvmInitFailed},
		{"db", nil, errors.KindJvmInitFailed},
		{"negentwee", &providers.Config{Providers: map[string]providers.ProviderConfig{
			"negentwee": {Language: "fr"},
		}}, errors.KindJvmInitFailed},
		{"vbb", &providers.Config{Providers: map[string]providers.ProviderConfig{
			"vbb": {Authorization: "x", Salt: "zz"},
		}}, errors.KindJvmInitFailed},
	}
	for _, tt := range errorTests {
		_, err := providers.New(rt, tt.id, tt.cfg)
		kind, ok := errors.KindOf(err)
		if !ok || kind != tt.kind {
			t.Errorf("%s: err = %v, want kind %s", tt.id, err, tt.kind)
		}
	}
}
