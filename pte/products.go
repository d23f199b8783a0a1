package pte

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jvm"
)

// ProductCode is the single-letter code of a means of transport.
type ProductCode rune

const (
	ProductNone           ProductCode = 0
	ProductHighSpeedTrain ProductCode = 'I'
	ProductRegionalTrain  ProductCode = 'R'
	ProductSuburbanTrain  ProductCode = 'S'
	ProductSubway         ProductCode = 'U'
	ProductTram           ProductCode = 'T'
	ProductBus            ProductCode = 'B'
	ProductFerry          ProductCode = 'F'
	ProductCablecar       ProductCode = 'C'
	ProductOnDemand       ProductCode = 'P'
)

// Products is a set of means of transport.
type Products uint16

const (
	ProductsHighSpeedTrain Products = 1 << iota
	ProductsRegionalTrain
	ProductsSuburbanTrain
	ProductsSubway
	ProductsTram
	ProductsBus
	ProductsFerry
	ProductsCablecar
	ProductsOnDemand

	ProductsAny = ProductsOnDemand<<1 - 1
)

type productInfo struct {
	code     ProductCode
	bit      Products
	constant string
	name     string
	priority int
}

// productTable is ordered by priority.
var productTable = []productInfo{
	{ProductHighSpeedTrain, ProductsHighSpeedTrain, "HIGH_SPEED_TRAIN", "high-speed-train", 100},
	{ProductRegionalTrain, ProductsRegionalTrain, "REGIONAL_TRAIN", "regional-train", 80},
	{ProductSuburbanTrain, ProductsSuburbanTrain, "SUBURBAN_TRAIN", "suburban-train", 70},
	{ProductSubway, ProductsSubway, "SUBWAY", "subway", 50},
	{ProductTram, ProductsTram, "TRAM", "tram", 45},
	{ProductBus, ProductsBus, "BUS", "bus", 35},
	{ProductFerry, ProductsFerry, "FERRY", "ferry", 30},
	{ProductCablecar, ProductsCablecar, "CABLECAR", "cablecar", 20},
	{ProductOnDemand, ProductsOnDemand, "ON_DEMAND", "on-demand", 10},
}

func productByCode(c ProductCode) (productInfo, bool) {
	for _, p := range productTable {
		if p.code == c {
			return p, true
		}
	}
	return productInfo{}, false
}

// Priority orders products for display, higher first. Unknown codes and
// ProductNone give -1.
func (c ProductCode) Priority() int {
	if p, ok := productByCode(c); ok {
		return p.priority
	}
	return -1
}

// Products returns the set holding only c.
func (c ProductCode) Products() Products {
	p, _ := productByCode(c)
	return p.bit
}

func (c ProductCode) String() string {
	if p, ok := productByCode(c); ok {
		return p.name
	}
	if c == ProductNone {
		return "none"
	}
	return fmt.Sprintf("unknown(%c)", rune(c))
}

// Has reports whether c is in p.
func (p Products) Has(c ProductCode) bool {
	bit := c.Products()
	return bit != 0 && p&bit != 0
}

// Codes returns the members of p by descending priority.
func (p Products) Codes() []ProductCode {
	var out []ProductCode
	for _, info := range productTable {
		if p&info.bit != 0 {
			out = append(out, info.code)
		}
	}
	return out
}

// Letters returns the member codes as a string such as "SUT".
func (p Products) Letters() string {
	var b strings.Builder
	for _, c := range p.Codes() {
		b.WriteRune(rune(c))
	}
	return b.String()
}

func (p Products) String() string {
	if p == 0 {
		return "none"
	}
	if p&ProductsAny == ProductsAny {
		return "any"
	}
	codes := p.Codes()
	names := make([]string, len(codes))
	for i, c := range codes {
		names[i] = c.String()
	}
	return strings.Join(names, ",")
}

// ParseProducts reads a comma separated list of product names, a run of
// code letters such as "SUT", or "any".
func ParseProducts(s string) (Products, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "any") {
		return ProductsAny, nil
	}
	var out Products
	if !strings.Contains(s, ",") && strings.ToUpper(s) == s {
		for _, r := range s {
			p, ok := productByCode(ProductCode(r))
			if !ok {
				return 0, fmt.Errorf("unknown product code %q", r)
			}
			out |= p.bit
		}
		return out, nil
	}
	for _, name := range strings.Split(s, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		found := false
		for _, p := range productTable {
			if p.name == name {
				out |= p.bit
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown product %q", name)
		}
	}
	return out, nil
}

func productCodeFromJava(rt *jvm.Runtime, env jni.Env, product jni.Ref) ProductCode {
	if product == 0 {
		return ProductNone
	}
	return ProductCode(rt.GetField(env, product, classProduct, "code", "C").Char())
}

func productToJava(rt *jvm.Runtime, env jni.Env, c ProductCode) jni.Ref {
	p, ok := productByCode(c)
	if !ok {
		return 0
	}
	return rt.EnumConstant(env, classProduct, p.constant)
}

// productsFromSet reads a java.util.Set of Product. Unknown codes are
// logged and skipped.
func productsFromSet(rt *jvm.Runtime, env jni.Env, set jni.Ref) Products {
	var out Products
	elements(rt, env, set, func(elem jni.Ref) {
		code := productCodeFromJava(rt, env, elem)
		p, ok := productByCode(code)
		if !ok {
			Logger().Warn("unknown product code", zap.String("code", string(rune(code))))
			return
		}
		out |= p.bit
	})
	return out
}

// productsToJava builds a java.util.HashSet of Product as a local.
func productsToJava(rt *jvm.Runtime, env jni.Env, p Products) jni.Ref {
	sc := rt.Enter(len(productTable) + 2)
	set := newHashSet(rt, env)
	for _, info := range productTable {
		if p&info.bit != 0 {
			addTo(rt, env, set, rt.EnumConstant(env, classProduct, info.constant))
		}
	}
	return sc.LeaveWith(set)
}
