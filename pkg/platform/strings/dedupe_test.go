package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "trims and drops duplicates",
			input: []string{"  broker-a:9092 ", "broker-b:9092", "broker-a:9092", ""},
			want:  []string{"broker-a:9092", "broker-b:9092"},
		},
		{
			name:  "whitespace only elements removed",
			input: []string{"   ", "\t", "broker-a:9092"},
			want:  []string{"broker-a:9092"},
		},
		{
			name:  "order preserved",
			input: []string{"c", "a", "b", "a"},
			want:  []string{"c", "a", "b"},
		},
		{
			name:  "empty input",
			input: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.input))
		})
	}
}
