package util

// DCSO rdnscache
// Copyright (c) 2020, 2026, DCSO GmbH

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocessAddedFields(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		want   []string
	}{
		{
			name:   "empty fieldset",
			fields: map[string]string{},
			want:   []string{"}"},
		},
		{
			name: "fieldset present",
			fields: map[string]string{
				"sensor": "s1",
				"site":   "lab",
			},
			want: []string{
				`,"sensor":"s1","site":"lab"}`,
				`,"site":"lab","sensor":"s1"}`,
			},
		},
		{
			name: "quoted value",
			fields: map[string]string{
				"note": `say "hi"`,
			},
			want: []string{`,"note":"say \"hi\""}`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PreprocessAddedFields(tt.fields)
			require.NoError(t, err)
			assert.Contains(t, tt.want, got)
		})
	}
}

func TestPreprocessAddedFieldsValidJSON(t *testing.T) {
	snippet, err := PreprocessAddedFields(map[string]string{
		"host\tname": "a\\b\n",
	})
	require.NoError(t, err)
	line := `{"event_type":"flow"` + snippet

	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(line), &out))
	assert.Equal(t, "flow", out["event_type"])
	assert.Equal(t, "a\\b\n", out["host\tname"])
}

func TestEscapeJSON(t *testing.T) {
	for in, want := range map[string]string{
		"":             `""`,
		"host.example": `"host.example"`,
		`a"b`:          `"a\"b"`,
		"tab\there":    `"tab\there"`,
		"\x01ctrl":     `"\u0001ctrl"`,
	} {
		got, err := EscapeJSON(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}
