package chat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	table, err := DefaultTable()
	require.NoError(t, err)
	assert.NotEmpty(t, table.Rules)
	assert.NotEmpty(t, table.Fallback)
}

func TestAnswer_LongestTriggerWins(t *testing.T) {
	table, err := DefaultTable()
	require.NoError(t, err)

	tests := []struct {
		message string
		rule    string
	}{
		{"Hello!", "greeting"},
		{"Can you find me a CHEAP HOTEL in Goa?", "cheap_hotels"},
		{"I want a hotel", "hotel_search"},
		{"Looking for a luxury hotel", "luxury_hotels"},
		{"How do I cancel?", "cancel_booking"},
		{"what is my booking status", "booking_status"},
		{"best time for jaipur", "jaipur"},
		{"thanks a lot", "thanks"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			answer := table.Answer(tt.message)
			assert.True(t, answer.Matched)
			assert.Equal(t, tt.rule, answer.Rule)
			assert.NotEmpty(t, answer.Response)
		})
	}
}

func TestAnswer_TiesGoToEarlierRule(t *testing.T) {
	table := &Table{Rules: []Rule{
		{Name: "first", Triggers: []string{"abc"}, Response: "one"},
		{Name: "second", Triggers: []string{"xyz"}, Response: "two"},
	}}
	answer := table.Answer("xyz abc")
	assert.Equal(t, "first", answer.Rule)
	assert.Equal(t, "abc", answer.Trigger)
}

func TestAnswer_Fallback(t *testing.T) {
	table, err := Parse([]byte("rules:\n  - name: a\n    triggers: [alpha]\n    response: A\n"))
	require.NoError(t, err)

	answer := table.Answer("something unrelated")
	assert.False(t, answer.Matched)
	assert.Equal(t, DefaultFallback, answer.Response)
	assert.Empty(t, answer.Rule)
}

func TestParse_RejectsIncompleteRules(t *testing.T) {
	_, err := Parse([]byte("rules:\n  - name: a\n    triggers: [x]\n"))
	assert.ErrorContains(t, err, "no response")

	_, err = Parse([]byte("rules:\n  - name: a\n    response: hi\n"))
	assert.ErrorContains(t, err, "no triggers")

	_, err = Parse([]byte("rules:\n  - name: a\n    triggers: ['  ']\n    response: hi\n"))
	assert.ErrorContains(t, err, "empty trigger")

	_, err = Parse([]byte("rules: [unclosed"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fallback: nope\nrules:\n  - name: visa\n    triggers: [visa]\n    response: Check the e-visa portal.\n"), 0644))

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "visa", table.Answer("Do I need a VISA?").Rule)
	assert.Equal(t, "nope", table.Answer("?").Response)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
