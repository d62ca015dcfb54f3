// Package classify maps raw provider errors to a closed error taxonomy.
//
// Wallet providers are third-party code injected by the host environment;
// their failure messages share no common structure. Classification is a
// substring heuristic over the lower-cased error text, driven by an ordered
// rule table so the policy can be tuned or replaced without touching the
// transfer pipeline.
package classify

import (
	"fmt"
	"strings"
)

// Kind is the classified category of a provider error.
type Kind string

// Error kinds, from most to least specific.
const (
	UserRejection     Kind = "user_rejection"
	InsufficientFunds Kind = "insufficient_funds"
	Network           Kind = "network"
	Technical         Kind = "technical"
	Unknown           Kind = "unknown"
)

// String returns the kind identifier string.
func (k Kind) String() string {
	return string(k)
}

// Rule matches an error kind when any of its keywords appears in the
// error text. Rules are evaluated in order; the first match wins.
type Rule struct {
	Keywords []string
	Kind     Kind
}

// Classifier applies an ordered rule table to raw errors.
type Classifier struct {
	rules []Rule
}

// New creates a classifier from an ordered rule table.
func New(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Default returns the classifier with the standard rule table.
//
// Order matters because several keywords co-occur in real provider
// messages. Rejection keywords outrank everything. "revert" sits ahead of
// the funds keywords so that on-chain revert reasons mentioning balances
// ("execution reverted: ERC20 balance too low") classify as Technical
// rather than InsufficientFunds; a pre-flight balance failure never
// contains "revert" and still lands in InsufficientFunds.
func Default() *Classifier {
	return New([]Rule{
		{Keywords: []string{"reject", "denied", "cancel"}, Kind: UserRejection},
		{Keywords: []string{"revert"}, Kind: Technical},
		{Keywords: []string{"insufficient", "balance"}, Kind: InsufficientFunds},
		{Keywords: []string{"network", "timeout", "connection"}, Kind: Network},
		{Keywords: []string{"failed"}, Kind: Technical},
	})
}

// Classify maps an arbitrary error value to a Kind.
// A nil error classifies as Unknown.
func (c *Classifier) Classify(err error) Kind {
	if err == nil {
		return Unknown
	}
	return c.ClassifyText(err.Error())
}

// ClassifyValue maps any value (error, string, or arbitrary object) to a
// Kind using its string representation. Provider errors occasionally
// surface as bare values rather than error types.
func (c *Classifier) ClassifyValue(v any) Kind {
	switch t := v.(type) {
	case nil:
		return Unknown
	case error:
		return c.Classify(t)
	case string:
		return c.ClassifyText(t)
	default:
		return c.ClassifyText(fmt.Sprintf("%v", v))
	}
}

// ClassifyText classifies a raw error message.
func (c *Classifier) ClassifyText(text string) Kind {
	haystack := strings.ToLower(text)
	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(haystack, keyword) {
				return rule.Kind
			}
		}
	}
	return Unknown
}
