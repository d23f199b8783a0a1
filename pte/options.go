package pte

import (
	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jvm"
)

// Optimize selects what a trip search minimizes. The zero value leaves
// the choice to the provider.
type Optimize int

const (
	OptimizeDefault Optimize = iota
	OptimizeLeastDuration
	OptimizeLeastChanges
	OptimizeLeastWalking
)

// WalkSpeed is the assumed walking pace for transfers.
type WalkSpeed int

const (
	WalkDefault WalkSpeed = iota
	WalkSlow
	WalkNormal
	WalkFast
)

// Accessibility restricts trips to accessible vehicles and stations.
type Accessibility int

const (
	AccessibilityDefault Accessibility = iota
	AccessibilityNeutral
	AccessibilityLimited
	AccessibilityBarrierFree
)

// TripFlags are additional trip search requirements.
type TripFlags uint8

const (
	TripFlagBike TripFlags = 1 << iota
)

// TripOptions refine a trip search. Zero fields leave the choice to
// the provider.
type TripOptions struct {
	Products      Products
	Optimize      Optimize
	WalkSpeed     WalkSpeed
	Accessibility Accessibility
	Flags         TripFlags
}

func (o Optimize) constant() string {
	switch o {
	case OptimizeLeastDuration:
		return "LEAST_DURATION"
	case OptimizeLeastChanges:
		return "LEAST_CHANGES"
	case OptimizeLeastWalking:
		return "LEAST_WALKING"
	}
	return ""
}

func (w WalkSpeed) constant() string {
	switch w {
	case WalkSlow:
		return "SLOW"
	case WalkNormal:
		return "NORMAL"
	case WalkFast:
		return "FAST"
	}
	return ""
}

func (a Accessibility) constant() string {
	switch a {
	case AccessibilityNeutral:
		return "NEUTRAL"
	case AccessibilityLimited:
		return "LIMITED"
	case AccessibilityBarrierFree:
		return "BARRIER_FREE"
	}
	return ""
}

// toJava builds a dto.TripOptions local. Nil options give null.
func (o *TripOptions) toJava(rt *jvm.Runtime, env jni.Env) jni.Ref {
	if o == nil {
		return 0
	}
	sc := rt.Enter(8)
	var products jni.Ref
	if o.Products != 0 {
		products = productsToJava(rt, env, o.Products)
	}
	optimize := enumTo(rt, env, classOptimize, o.Optimize.constant())
	walk := enumTo(rt, env, classWalkSpeed, o.WalkSpeed.constant())
	access := enumTo(rt, env, classAccess, o.Accessibility.constant())
	flags := newHashSet(rt, env)
	if o.Flags&TripFlagBike != 0 {
		addTo(rt, env, flags, rt.EnumConstant(env, classTripFlag, "BIKE"))
	}
	opts := rt.NewObject(env, classTripOptions,
		"("+sigSet+jni.ClassSig(classOptimize)+jni.ClassSig(classWalkSpeed)+jni.ClassSig(classAccess)+sigSet+")V",
		jni.Object(products), jni.Object(optimize), jni.Object(walk), jni.Object(access), jni.Object(flags))
	return sc.LeaveWith(opts)
}
