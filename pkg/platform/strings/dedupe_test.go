package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, nil},
		{"trims and drops empties", []string{"  foo ", "", "   ", "bar"}, []string{"foo", "bar"}},
		{"keeps first occurrence", []string{"b", "a", " b", "a "}, []string{"b", "a"}},
		{"case sensitive", []string{"Foo", "foo"}, []string{"Foo", "foo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.in))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"redpanda:9092", "kafka:9092"}, SplitList(" redpanda:9092,kafka:9092,, redpanda:9092"))
	assert.Empty(t, SplitList(""))
}
