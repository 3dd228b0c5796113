package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"mixed spacing keeps case", "Java, python , React", []string{"Java", "python", "React"}},
		{"stray commas", ",Go,, ,SQL,", []string{"Go", "SQL"}},
		{"only whitespace", "  ,   ", []string{}},
		{"empty", "", []string{}},
		{"duplicates kept", "go, Go, go", []string{"go", "Go", "go"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDenormalizeRoundTrip(t *testing.T) {
	raw := " Java ,python,, React "
	once := Denormalize(Normalize(raw))
	assert.Equal(t, "Java, python, React", once)
	assert.Equal(t, once, Denormalize(Normalize(once)))
}

func TestClean(t *testing.T) {
	assert.Equal(t, []string{"Go", "Rust"}, Clean([]string{" Go ", "", "  ", "Rust"}))
	assert.Equal(t, []string{}, Clean(nil))
}

func TestParseRequired(t *testing.T) {
	assert.Equal(t, []string{"java", "sql"}, ParseRequired(" JAVA , Sql "))
	assert.Empty(t, ParseRequired(" , ,"))
}

func TestContainsAll(t *testing.T) {
	have := []string{"Java", "SQL"}

	assert.True(t, ContainsAll(have, []string{"java"}))
	assert.True(t, ContainsAll(have, []string{"sql", "java"}))
	assert.False(t, ContainsAll(have, []string{"java", "python"}))
	assert.True(t, ContainsAll(have, nil), "no requirement is vacuously true")
	assert.False(t, ContainsAll(nil, []string{"java"}))
	assert.False(t, ContainsAll(have, []string{"jav"}), "containment is per token, not substring")
}
