package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRule_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantErr bool
	}{
		{"valid", Rule{ID: "r", Conditions: []*Record{NewRecord("exists")}, Actions: []*Record{NewRecord(ActionDone)}}, false},
		{"no conditions", Rule{ID: "r", Actions: []*Record{NewRecord(ActionDone)}}, true},
		{"no actions", Rule{ID: "r", Conditions: []*Record{NewRecord(ConditionAlways)}}, true},
		{"two sentinels", Rule{ID: "r", Conditions: []*Record{NewRecord(ConditionAlways), NewRecord(ConditionAlways)}, Actions: []*Record{NewRecord(ActionDone)}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRule)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRule_IsFallback(t *testing.T) {
	fallback := Rule{Conditions: []*Record{NewRecord(ConditionAlways)}}
	assert.True(t, fallback.IsFallback())

	mixed := Rule{Conditions: []*Record{NewRecord(ConditionAlways), NewRecord("exists")}}
	assert.False(t, mixed.IsFallback())
}

func TestRuleSet_BindGoal(t *testing.T) {
	rs := &RuleSet{
		Name:   "open_file",
		Params: []Param{{Name: "file"}, {Name: "menu", Default: "File"}},
	}

	t.Run("Goal values and defaults", func(t *testing.T) {
		subs, err := rs.BindGoal(NewRecord("open_file", "file", "notes.txt"))
		require.NoError(t, err)
		assert.Equal(t, Substitutions{
			{Placeholder: "file", Value: "notes.txt"},
			{Placeholder: "menu", Value: "File"},
		}, subs)
	})

	t.Run("Positional attributes", func(t *testing.T) {
		subs, err := rs.BindGoal(NewRecord("open_file", "value", "a.txt", "menu", "Edit"))
		require.NoError(t, err)
		assert.Equal(t, "a.txt", subs[0].Value)
		assert.Equal(t, "Edit", subs[1].Value)
	})

	t.Run("Missing required parameter", func(t *testing.T) {
		_, err := rs.BindGoal(NewRecord("open_file"))
		assert.ErrorIs(t, err, ErrMissingParameter)
	})

	t.Run("Kind mismatch", func(t *testing.T) {
		_, err := rs.BindGoal(NewRecord("close_file", "file", "x"))
		assert.ErrorIs(t, err, ErrNoRuleSet)
	})
}

func TestSubstitutions_RoundTrip(t *testing.T) {
	subs := Substitutions{{Placeholder: "p1", Value: "foo"}}
	tmpl := NewRecord("exists", "target", "p1", "other", "p1x")

	once := subs.Apply(tmpl)
	assert.Equal(t, "foo", once.Value("target"))
	assert.Equal(t, "p1x", once.Value("other"), "substitution is a flat rename, not a pattern")
	assert.Equal(t, "p1", tmpl.Value("target"), "template must not be mutated")

	twice := subs.Apply(once)
	assert.True(t, once.Equal(twice), "repeated application must be idempotent")
	assert.True(t, once.Equal(tmpl.Substitute(subs)))
}
