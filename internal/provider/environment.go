package provider

import "sort"

// Injected object names the detection strategies look for.
const (
	// ObjectStandard is the standard Connex-style injected object, present
	// in both the mobile in-app browser and current desktop builds.
	ObjectStandard = "vechain"

	// ObjectExtension is the desktop extension's injected object, which
	// exposes a signer factory rather than a ready signer.
	ObjectExtension = "veworld"

	// ObjectLegacy is the global object older wallet builds injected.
	ObjectLegacy = "connex"
)

// mobileUAToken marks the mobile in-app browser's user-agent string.
const mobileUAToken = "veworld"

// StaticEnvironment is a fixed, map-backed Environment. It backs the
// dev-mode harness and test fixtures; production callers wrap whatever
// host context actually carries the injected objects.
type StaticEnvironment struct {
	userAgent string
	objects   map[string]any
}

// NewStaticEnvironment creates an environment with a fixed user agent and
// object set.
func NewStaticEnvironment(userAgent string, objects map[string]any) *StaticEnvironment {
	copied := make(map[string]any, len(objects))
	for name, obj := range objects {
		copied[name] = obj
	}
	return &StaticEnvironment{userAgent: userAgent, objects: copied}
}

// UserAgent implements Environment.
func (e *StaticEnvironment) UserAgent() string {
	return e.userAgent
}

// Lookup implements Environment.
func (e *StaticEnvironment) Lookup(name string) (any, bool) {
	obj, ok := e.objects[name]
	return obj, ok
}

// Names implements Environment, in deterministic order.
func (e *StaticEnvironment) Names() []string {
	names := make([]string, 0, len(e.objects))
	for name := range e.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compile-time interface check
var _ Environment = (*StaticEnvironment)(nil)
