// Package providers is the catalog of network providers shipped with the
// public transport enabler library and builds them from configuration.
package providers

import (
	"sort"
)

// Family groups providers by the constructor their class exposes.
type Family int

const (
	// Navitia providers take an authorization string.
	Navitia Family = iota
	// Hafas providers take an api authorization string.
	Hafas
	// HafasComplex providers take an api authorization and a salt.
	HafasComplex
	// Efa providers take no arguments.
	Efa
	// HafasLegacy providers take no arguments.
	HafasLegacy
	// Negentwee takes a language constant.
	Negentwee
	// Vrs takes a client certificate.
	Vrs
)

var familyNames = [...]string{"navitia", "hafas", "hafas-complex", "efa", "hafas-legacy", "negentwee", "vrs"}

func (f Family) String() string {
	if int(f) < len(familyNames) {
		return familyNames[f]
	}
	return "unknown"
}

// NeedsAuthorization reports whether the family's constructor takes an
// authorization string.
func (f Family) NeedsAuthorization() bool {
	return f == Navitia || f == Hafas || f == HafasComplex
}

// Descriptor names a provider class and how to construct it.
type Descriptor struct {
	ID     string
	Class  string
	Family Family
}

var catalog = []Descriptor{
	{"australia", "AustraliaProvider", Navitia},
	{"avv_aachen", "AvvAachenProvider", Hafas},
	{"avv_augsburg", "AvvAugsburgProvider", Hafas},
	{"bart", "BartProvider", Hafas},
	{"bayern", "BayernProvider", Efa},
	{"brazil", "BrazilProvider", Navitia},
	{"british_columbia", "BritishColumbiaProvider", Navitia},
	{"bsvag", "BsvagProvider", Efa},
	{"bvg", "BvgProvider", Hafas},
	{"cmta", "CmtaProvider", Hafas},
	{"czech_republic", "CzechRepublicProvider", Navitia},
	{"db", "DbProvider", HafasComplex},
	{"ding", "DingProvider", Efa},
	{"dsb", "DsbProvider", Hafas},
	{"dub", "DubProvider", Efa},
	{"eireann", "EireannProvider", HafasLegacy},
	{"finland", "FinlandProvider", Navitia},
	{"france_ne", "FranceNorthEastProvider", Navitia},
	{"france_nw", "FranceNorthWestProvider", Navitia},
	{"france_se", "FranceSouthEastProvider", Navitia},
	{"france_sw", "FranceSouthWestProvider", Navitia},
	{"ghana", "GhanaProvider", Navitia},
	{"gvh", "GvhProvider", Efa},
	{"invg", "InvgProvider", HafasComplex},
	{"italy", "ItalyProvider", Navitia},
	{"kvv", "KvvProvider", Efa},
	{"linz", "LinzProvider", Efa},
	{"lu", "LuProvider", Hafas},
	{"massachusetts", "MassachusettsProvider", Navitia},
	{"mersey", "MerseyProvider", Efa},
	{"mvg", "MvgProvider", Efa},
	{"mvv", "MvvProvider", Efa},
	{"nasa", "NasaProvider", Hafas},
	{"negentwee", "NegentweeProvider", Negentwee},
	{"nicaragua", "NicaraguaProvider", Navitia},
	{"ns", "NsProvider", HafasLegacy},
	{"nvbw", "NvbwProvider", Efa},
	{"nvv", "NvvProvider", Hafas},
	{"nz", "NzProvider", Navitia},
	{"oebb", "OebbProvider", Hafas},
	{"ontario", "OntarioProvider", Navitia},
	{"ooevv", "OoevvProvider", Hafas},
	{"oregon", "OregonProvider", Navitia},
	{"paris", "ParisProvider", Navitia},
	{"pl_navitia", "PlNavitiaProvider", Navitia},
	{"pl", "PlProvider", Hafas},
	{"quebec", "QuebecProvider", Navitia},
	{"rta_chicago", "RtaChicagoProvider", Efa},
	{"rt", "RtProvider", HafasLegacy},
	{"se", "SeProvider", Hafas},
	{"sh", "ShProvider", Hafas},
	{"spain", "SpainProvider", Navitia},
	{"stv", "StvProvider", Efa},
	{"svv", "SvvProvider", Hafas},
	{"sydney", "SydneyProvider", Efa},
	{"tlem", "TlemProvider", Efa},
	{"vao", "VaoProvider", Hafas},
	{"vbb", "VbbProvider", HafasComplex},
	{"vbl", "VblProvider", Efa},
	{"vbn", "VbnProvider", HafasComplex},
	{"vgn", "VgnProvider", Efa},
	{"vgs", "VgsProvider", HafasComplex},
	{"vmobil", "VmobilProvider", Hafas},
	{"vmt", "VmtProvider", Hafas},
	{"vmv", "VmvProvider", Efa},
	{"vor", "VorProvider", Hafas},
	{"vrn", "VrnProvider", Efa},
	{"vrr", "VrrProvider", Efa},
	{"vrs", "VrsProvider", Vrs},
	{"vvm", "VvmProvider", Efa},
	{"vvo", "VvoProvider", Efa},
	{"vvs", "VvsProvider", Efa},
	{"vvt", "VvtProvider", Hafas},
	{"vvv", "VvvProvider", Efa},
	{"wien", "WienProvider", Efa},
	{"zvv", "ZvvProvider", Hafas},
}

// Catalog returns every known provider.
func Catalog() []Descriptor {
	return append([]Descriptor(nil), catalog...)
}

// Lookup returns the descriptor of id.
func Lookup(id string) (Descriptor, bool) {
	for _, d := range catalog {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// IDs returns the provider identifiers in sorted order.
func IDs() []string {
	ids := make([]string, len(catalog))
	for i, d := range catalog {
		ids[i] = d.ID
	}
	sort.Strings(ids)
	return ids
}
