// 指示: miu200521358
package merrors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/miu200521358/mu_retarget/pkg/shared/base/merr"
)

func TestUnsupportedCodificationIsMalformedInput(t *testing.T) {
	err := NewUnsupportedCodificationError("relations[0].offset[0].orientation", "spin", []string{"identity", "quaternion"})

	if !IsUnsupportedCodificationError(err) {
		t.Fatalf("expected unsupported codification error")
	}
	if !IsMalformedInputError(err) {
		t.Fatalf("unsupported codification should be malformed input")
	}
	if IsSelectionError(err) {
		t.Fatalf("unsupported codification should not be selection error")
	}
	if !strings.Contains(err.Error(), "identity, quaternion") {
		t.Fatalf("message should name allowed set: %s", err.Error())
	}
}

func TestWithSourceKeepsErrorID(t *testing.T) {
	base := NewMalformedInputError("relations", "配列ではありません")
	err := WithSource(base, "rules.yaml:3:12")

	if got := merr.ExtractErrorID(err); got != MalformedInputErrorID {
		t.Fatalf("error id mismatch: got=%s", got)
	}
	if !strings.HasPrefix(err.Error(), "rules.yaml:3:12: relations:") {
		t.Fatalf("source prefix mismatch: %s", err.Error())
	}
	if !IsMalformedInputError(err) {
		t.Fatalf("kind should survive source attachment")
	}
}

func TestWithSourceWrapsPlainError(t *testing.T) {
	plain := errors.New("plain")
	err := WithSource(plain, "scene.yaml")
	if !errors.Is(err, plain) {
		t.Fatalf("plain error should stay reachable")
	}
	if WithSource(nil, "scene.yaml") != nil {
		t.Fatalf("nil error should stay nil")
	}
}

func TestPredicatesThroughWrapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		is   func(error) bool
		id   string
	}{
		{"selection", NewSelectionError("選択数: %d", 1), IsSelectionError, SelectionErrorID},
		{"no armature", NewNoArmatureFoundError("Cube"), IsNoArmatureFoundError, NoArmatureFoundErrorID},
		{"same armature", NewSameArmatureError("Armature"), IsSameArmatureError, SameArmatureErrorID},
		{"no animation", NewNoAnimationError("Armature"), IsNoAnimationError, NoAnimationErrorID},
		{"no root", NewNoRootBoneError("Armature", "root"), IsNoRootBoneError, NoRootBoneErrorID},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("外側: %w", tc.err)
		if !tc.is(wrapped) {
			t.Fatalf("%s: predicate should match wrapped error", tc.name)
		}
		if got := merr.ExtractErrorID(wrapped); got != tc.id {
			t.Fatalf("%s: error id mismatch: got=%s want=%s", tc.name, got, tc.id)
		}
		if IsMalformedInputError(wrapped) {
			t.Fatalf("%s: should not be malformed input", tc.name)
		}
	}
}

func TestNoArmatureFoundNamesObject(t *testing.T) {
	err := NewNoArmatureFoundError("Origin")
	if !strings.Contains(err.Error(), "Origin") {
		t.Fatalf("message should name object: %s", err.Error())
	}
}
