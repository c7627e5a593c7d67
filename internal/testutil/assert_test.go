package testutil

import (
	"errors"
	"testing"
)

func TestAssertionsPass(t *testing.T) {
	AssertEqual(t, []int{1, 2, 3}, []int{1, 2, 3})
	AssertEqual(t, 42, 42, "value should be %d", 42)
	AssertNoError(t, nil, "operation should succeed")
	AssertErrorIs(t, errors.Join(errors.New("a"), errBoom), errBoom)
	AssertTrue(t, true)
	AssertFalse(t, false, "never true")
}

var errBoom = errors.New("boom")

func TestPrefix(t *testing.T) {
	tests := []struct {
		name string
		args []interface{}
		want string
	}{
		{"none", nil, ""},
		{"plain string", []interface{}{"fen"}, "fen: "},
		{"lone string is not a format", []interface{}{"100%"}, "100%: "},
		{"format with args", []interface{}{"ply %d %s", 3, "e4"}, "ply 3 e4: "},
		{"non-string value", []interface{}{42}, "42: "},
		{"non-string first ignores rest", []interface{}{42, "x"}, "42: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			AssertEqual(t, prefix(tt.args...), tt.want)
		})
	}
}
