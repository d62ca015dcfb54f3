package provider

import "strings"

// Strategy is one way of finding a usable wallet object in the host
// environment. Detect must be side-effect free: it inspects the
// environment and type-asserts, never calls into the provider.
type Strategy struct {
	Kind   Kind
	Detect func(env Environment) (Signer, bool)
}

// DefaultStrategies returns the detection strategies in fixed priority
// order. First match wins; there is no ranking by capability.
//
// The mobile in-app browser is probed first because it is the most
// constrained environment: it injects the same standard object as desktop
// builds, so only the user-agent token distinguishes it.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Kind: KindMobileApp, Detect: detectMobileApp},
		{Kind: KindStandard, Detect: detectStandard},
		{Kind: KindDesktopExtension, Detect: detectExtensionFactory},
		{Kind: KindLegacy, Detect: detectAnySigner},
	}
}

func detectMobileApp(env Environment) (Signer, bool) {
	if !strings.Contains(strings.ToLower(env.UserAgent()), mobileUAToken) {
		return nil, false
	}
	return lookupSigner(env, ObjectStandard)
}

func detectStandard(env Environment) (Signer, bool) {
	return lookupSigner(env, ObjectStandard)
}

func detectExtensionFactory(env Environment) (Signer, bool) {
	obj, ok := env.Lookup(ObjectExtension)
	if !ok {
		return nil, false
	}
	factory, ok := obj.(SignerFactory)
	if !ok {
		return nil, false
	}
	signer := factory.NewSigner()
	return signer, signer != nil
}

// detectAnySigner is the last resort: any injected object that satisfies
// Signer, whatever it is registered as. The legacy global is checked
// first so known installs keep a stable detection result.
func detectAnySigner(env Environment) (Signer, bool) {
	if signer, ok := lookupSigner(env, ObjectLegacy); ok {
		return signer, true
	}
	for _, name := range env.Names() {
		if signer, ok := lookupSigner(env, name); ok {
			return signer, true
		}
	}
	return nil, false
}

func lookupSigner(env Environment, name string) (Signer, bool) {
	obj, ok := env.Lookup(name)
	if !ok {
		return nil, false
	}
	signer, ok := obj.(Signer)
	return signer, ok
}
