// Package chat answers travel-assistant questions from a declarative table of
// trigger phrases and canned responses.
package chat

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// DefaultFallback is returned when no rule matches
const DefaultFallback = "I can help with hotel search, bookings, cancellations and travel tips. Could you rephrase your question?"

// Rule maps trigger phrases to a response
type Rule struct {
	Name     string   `yaml:"name" json:"name"`
	Triggers []string `yaml:"triggers" json:"triggers"`
	Response string   `yaml:"response" json:"response"`
}

// Table is the knowledge base
type Table struct {
	Fallback string `yaml:"fallback" json:"fallback"`
	Rules    []Rule `yaml:"rules" json:"rules"`
}

// Answer is the reply to one message
type Answer struct {
	Rule     string `json:"rule,omitempty"`
	Trigger  string `json:"trigger,omitempty"`
	Response string `json:"response"`
	Matched  bool   `json:"matched"`
}

// DefaultTable returns the rule table shipped with the binary
func DefaultTable() (*Table, error) {
	return Parse(defaultRules)
}

// LoadFile reads a rule table from a YAML file
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chat rules: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML rule table
func Parse(data []byte) (*Table, error) {
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse chat rules: %w", err)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if table.Fallback == "" {
		table.Fallback = DefaultFallback
	}
	return &table, nil
}

// Validate rejects rules that could never answer
func (t *Table) Validate() error {
	for i, rule := range t.Rules {
		if strings.TrimSpace(rule.Response) == "" {
			return fmt.Errorf("chat rule %d (%s) has no response", i, rule.Name)
		}
		if len(rule.Triggers) == 0 {
			return fmt.Errorf("chat rule %d (%s) has no triggers", i, rule.Name)
		}
		for _, trigger := range rule.Triggers {
			if strings.TrimSpace(trigger) == "" {
				return fmt.Errorf("chat rule %d (%s) has an empty trigger", i, rule.Name)
			}
		}
	}
	return nil
}

// Answer picks the rule whose trigger is the longest case-insensitive substring
// of message. Ties go to the earlier rule.
func (t *Table) Answer(message string) Answer {
	text := strings.ToLower(message)

	best, bestTrigger := -1, ""
	for i, rule := range t.Rules {
		for _, trigger := range rule.Triggers {
			trigger = strings.ToLower(strings.TrimSpace(trigger))
			if len(trigger) > len(bestTrigger) && strings.Contains(text, trigger) {
				best, bestTrigger = i, trigger
			}
		}
	}

	if best < 0 {
		return Answer{Response: t.Fallback}
	}
	return Answer{
		Rule:     t.Rules[best].Name,
		Trigger:  bestTrigger,
		Response: t.Rules[best].Response,
		Matched:  true,
	}
}
