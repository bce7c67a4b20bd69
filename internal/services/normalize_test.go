package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeUsername(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"User.Name", "user.name"},
		{"@User.Name", "user.name"},
		{"  @User.Name  ", "user.name"},
		{"@", ""},
		{"", ""},
		{"  ", ""},
		{"BUDI_01", "budi_01"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeUsername(tc.in), "input %q", tc.in)
	}
}

func TestExtractUsername(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want string
	}{
		{"plain string", "@User.Name", "user.name"},
		{"object unique_id", map[string]interface{}{"unique_id": "@Budi"}, "budi"},
		{"object uniqueId", map[string]interface{}{"uniqueId": "Budi"}, "budi"},
		{"object username", map[string]interface{}{"username": "Budi"}, "budi"},
		{"nested user takes precedence", map[string]interface{}{
			"username": "outer",
			"user":     map[string]interface{}{"unique_id": "@Inner"},
		}, "inner"},
		{"nested user empty falls through", map[string]interface{}{
			"user":     map[string]interface{}{"unique_id": ""},
			"username": "Fallback",
		}, "fallback"},
		{"unique_id beats username", map[string]interface{}{
			"unique_id": "first",
			"username":  "second",
		}, "first"},
		{"number discarded", 42, ""},
		{"nil discarded", nil, ""},
		{"empty object discarded", map[string]interface{}{}, ""},
		{"non-string field discarded", map[string]interface{}{"username": 7}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractUsername(tc.in))
		})
	}
}

func TestExtractUsernameMatchesNormalizedDirectory(t *testing.T) {
	// A raw engagement entry and a directory value must land on the same
	// canonical form however either side is decorated.
	raw := map[string]interface{}{"user": map[string]interface{}{"unique_id": "@User.Name"}}
	assert.Equal(t, NormalizeUsername("  USER.NAME "), ExtractUsername(raw))
}
