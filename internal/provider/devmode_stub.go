//go:build !devmode

package provider

// DevEnvironment returns nil in production builds. The simulated dev
// environment only exists under the devmode build tag.
func DevEnvironment() Environment {
	return nil
}
