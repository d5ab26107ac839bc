// Package routerpool implements the multi-agent router (a pure function from
// message to agent name) and the agent pool (LRU cache of instances keyed by
// (name, sender)). Grounded in style on the source system's regex-caching
// router, generalized to the four strategies below.
package routerpool

import (
	"fmt"
	"regexp"
	"strings"
)

// Strategy selects how a Router picks an agent name.
type Strategy string

const (
	StrategyChannel Strategy = "channel"
	StrategySender  Strategy = "sender"
	StrategyContent Strategy = "content"
	StrategyPrefix  Strategy = "prefix"
)

// RoutableMessage is the subset of an inbound message the router needs.
// Text is a pointer so the prefix strategy can mutate it in place.
type RoutableMessage struct {
	Channel  string
	SenderID string
	Text     *string
}

// Rule is one ordered (key, agent name) mapping. For StrategyContent, Key is
// a regex pattern; for StrategyPrefix, Key is a literal prefix; for
// StrategyChannel/StrategySender, Key is the exact channel tag or sender id.
// Rule order matters for StrategyContent and StrategyPrefix: the first match
// wins.
type Rule struct {
	Key  string
	Name string
}

// Rules is an ordered list of routing rules.
type Rules []Rule

func (rs Rules) lookup(key string) (string, bool) {
	for _, r := range rs {
		if r.Key == key {
			return r.Name, true
		}
	}
	return "", false
}

// Router is a pure function message -> agent name, parameterized at
// construction.
type Router struct {
	strategy    Strategy
	rules       Rules
	defaultName string
	compiled    []compiledContentRule // only for StrategyContent, preserves rule order
}

type compiledContentRule struct {
	pattern *regexp.Regexp
	name    string
}

// New builds a Router. Invalid strategies are a construction-time error.
func New(strategy Strategy, rules Rules, defaultName string) (*Router, error) {
	r := &Router{strategy: strategy, rules: rules, defaultName: defaultName}

	switch strategy {
	case StrategyChannel, StrategySender, StrategyPrefix:
		return r, nil
	case StrategyContent:
		for _, rule := range rules {
			re, err := regexp.Compile("(?i)" + rule.Key)
			if err != nil {
				return nil, fmt.Errorf("invalid content rule pattern %q: %w", rule.Key, err)
			}
			r.compiled = append(r.compiled, compiledContentRule{pattern: re, name: rule.Name})
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown router strategy %q", strategy)
	}
}

// Route returns the agent name selected for msg. Unknown keys or no match
// fall back to the configured default.
func (r *Router) Route(msg RoutableMessage) string {
	switch r.strategy {
	case StrategyChannel:
		if name, ok := r.rules.lookup(msg.Channel); ok {
			return name
		}
		return r.defaultName

	case StrategySender:
		if name, ok := r.rules.lookup(msg.SenderID); ok {
			return name
		}
		return r.defaultName

	case StrategyContent:
		if msg.Text == nil {
			return r.defaultName
		}
		for _, rule := range r.compiled {
			if rule.pattern.MatchString(*msg.Text) {
				return rule.name
			}
		}
		return r.defaultName

	case StrategyPrefix:
		if msg.Text == nil {
			return r.defaultName
		}
		for _, rule := range r.rules {
			if strings.HasPrefix(*msg.Text, rule.Key) {
				*msg.Text = strings.TrimPrefix(*msg.Text, rule.Key)
				return rule.Name
			}
		}
		return r.defaultName
	}
	return r.defaultName
}
