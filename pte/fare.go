package pte

import (
	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jvm"
)

// FareType is the passenger group a fare applies to.
type FareType int

const (
	FareAdult FareType = iota
	FareBike
	FareChild
	FareDisabled
	FareMilitary
	FareSenior
	FareStudent
	FareYouth
)

var fareTypeNames = map[string]FareType{
	"ADULT":    FareAdult,
	"BIKE":     FareBike,
	"CHILD":    FareChild,
	"DISABLED": FareDisabled,
	"MILITARY": FareMilitary,
	"SENIOR":   FareSenior,
	"STUDENT":  FareStudent,
	"YOUTH":    FareYouth,
}

func (t FareType) String() string {
	for k, v := range fareTypeNames {
		if v == t {
			return lowerName(k)
		}
	}
	return "unknown"
}

// Currency identifies the currency of a fare.
type Currency struct {
	Code   string `json:"code" yaml:"code"`
	Symbol string `json:"symbol" yaml:"symbol"`
}

// Fare is the price of a trip for one passenger group.
type Fare struct {
	*jvm.Object
	name     jvm.Lazy[jvm.Maybe[string]]
	typ      jvm.Lazy[FareType]
	currency jvm.Lazy[Currency]
	amount   jvm.Lazy[float32]
}

func newFare(rt *jvm.Runtime, local jni.Ref) *Fare {
	obj := jvm.Wrap(rt, local)
	if obj == nil {
		return nil
	}
	return &Fare{Object: obj}
}

func (f *Fare) Name() (string, bool) {
	return f.name.Get(func() jvm.Maybe[string] { return fieldString(f.Object, classFare, "name") }).Get()
}

func (f *Fare) Type() FareType {
	return f.typ.Get(func() FareType {
		rt := f.Runtime()
		return jvm.Scoped(rt, 1, func(env jni.Env) FareType {
			ref := rt.GetField(env, f.Ref(), classFare, "type", jni.ClassSig(classFareType)).Ref()
			return enumFrom(rt, ref, "Fare.Type", fareTypeNames, FareAdult)
		})
	})
}

func (f *Fare) Currency() Currency {
	return f.currency.Get(func() Currency {
		rt := f.Runtime()
		return jvm.Scoped(rt, 3, func(env jni.Env) Currency {
			cur := rt.GetField(env, f.Ref(), classFare, "currency", "Ljava/util/Currency;").Ref()
			if cur == 0 {
				return Currency{}
			}
			code, _ := jvm.GoString(env, rt.Invoke(env, cur, "java/util/Currency", "getCurrencyCode", "()"+sigString).Ref())
			symbol, _ := jvm.GoString(env, rt.Invoke(env, cur, "java/util/Currency", "getSymbol", "()"+sigString).Ref())
			return Currency{Code: code, Symbol: symbol}
		})
	})
}

// Amount is the price in units of the currency.
func (f *Fare) Amount() float32 {
	return f.amount.Get(func() float32 {
		rt := f.Runtime()
		return jvm.Scoped(rt, 0, func(env jni.Env) float32 {
			return rt.GetField(env, f.Ref(), classFare, "fare", "F").Float()
		})
	})
}
