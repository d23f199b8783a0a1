package providers

import (
	"fmt"
	"strings"

	"github.com/wippyai/pte-bridge/errors"
	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jvm"
	"github.com/wippyai/pte-bridge/pte"
)

const (
	pkg           = "de/schildbach/pte/"
	classLanguage = pkg + "NegentweeProvider$Language"
	sigString     = "Ljava/lang/String;"
)

// Languages accepted by the negentwee provider.
var languages = map[string]string{
	"":      "NL_NL",
	"nl":    "NL_NL",
	"nl_nl": "NL_NL",
	"en":    "EN_GB",
	"en_gb": "EN_GB",
}

// New constructs the provider id with the arguments cfg holds for it.
func New(rt *jvm.Runtime, id string, cfg *Config) (*pte.Provider, error) {
	d, ok := Lookup(id)
	if !ok {
		return nil, errors.New(errors.DomainPte, errors.KindInvalidID).
			Detail("unknown provider %q", id).
			Build()
	}
	var pc ProviderConfig
	dir := ""
	if cfg != nil {
		pc = cfg.Providers[id]
		dir = cfg.Dir
	}
	if d.Family.NeedsAuthorization() && pc.Authorization == "" {
		return nil, errors.JvmInitFailed(fmt.Sprintf("provider %s needs an authorization", id), nil)
	}

	var (
		sig  string
		args []func(env jni.Env) jni.Value
	)
	str := func(s string) func(env jni.Env) jni.Value {
		return func(env jni.Env) jni.Value { return jni.Object(jvm.JavaString(env, s)) }
	}
	bytes := func(b []byte) func(env jni.Env) jni.Value {
		return func(env jni.Env) jni.Value { return jni.Object(env.NewByteArray(b)) }
	}
	switch d.Family {
	case Navitia, Hafas:
		sig = "(" + sigString + ")V"
		args = append(args, str(pc.Authorization))
	case HafasComplex:
		salt, err := pc.SaltBytes()
		if err != nil {
			return nil, errors.JvmInitFailed("provider "+id, err)
		}
		sig = "(" + sigString + "[B)V"
		args = append(args, str(pc.Authorization), bytes(salt))
	case Efa, HafasLegacy:
		sig = "()V"
	case Negentwee:
		lang, ok := languages[strings.ToLower(pc.Language)]
		if !ok {
			return nil, errors.JvmInitFailed(fmt.Sprintf("provider %s: unknown language %q", id, pc.Language), nil)
		}
		sig = "(" + jni.ClassSig(classLanguage) + ")V"
		args = append(args, func(env jni.Env) jni.Value {
			return jni.Object(rt.EnumConstant(env, classLanguage, lang))
		})
	case Vrs:
		cert, err := pc.ClientCertBytes(dir)
		if err != nil {
			return nil, errors.JvmInitFailed("provider "+id, err)
		}
		sig = "([B)V"
		args = append(args, bytes(cert))
	}

	sc := rt.Enter(len(args) + 3)
	defer sc.Leave()
	env := sc.Env()
	values := make([]jni.Value, len(args))
	for i, a := range args {
		values[i] = a(env)
	}
	local := rt.NewObject(env, pkg+d.Class, sig, values...)
	if err := rt.CheckException(); err != nil {
		return nil, err
	}
	return pte.NewProvider(rt, id, local), nil
}
