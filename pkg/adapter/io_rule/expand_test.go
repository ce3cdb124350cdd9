// 指示: miu200521358
package io_rule

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_retarget/pkg/domain/retarget"
)

func relationPairs(relations []*retarget.Relation) [][2]string {
	pairs := make([][2]string, 0, len(relations))
	for _, relation := range relations {
		pairs = append(pairs, [2]string{relation.OriginName(), relation.TargetName()})
	}
	return pairs
}

func TestExpandBoneSpecCartesianOrder(t *testing.T) {
	spec := BoneSpec{
		Name: "finger",
		Suffixes: &SuffixSpec{
			Names:       []string{"s1", "s2"},
			Subsuffixes: &SuffixSpec{Names: []string{"a", "b"}},
		},
	}
	require.Equal(t, []string{"fingers1a", "fingers1b", "fingers2a", "fingers2b"}, ExpandBoneSpec(spec))
	require.Equal(t, []string{"hip"}, ExpandBoneSpec(BoneSpec{Name: "hip"}))
}

func TestParseExpandsSuffixGroupsInLockstep(t *testing.T) {
	data := []byte(`
relations:
  - origin:
      name: thumb
      suffixes:
        names: [_01, _02]
        subsuffixes: [_r, _l]
    target:
      name: Thumb
      suffixes:
        names: [1, 2]
        subsuffixes: [R, L]
  - origin: hip
`)
	ruleSet, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, [][2]string{
		{"thumb_01_r", "Thumb1R"},
		{"thumb_01_l", "Thumb1L"},
		{"thumb_02_r", "Thumb2R"},
		{"thumb_02_l", "Thumb2L"},
		{"hip", "hip"},
	}, relationPairs(ruleSet.Relations))
	require.Empty(t, ruleSet.Warnings)
	require.False(t, ruleSet.Relations[0].HasOffset())
}

func TestParseRejectsCountMismatch(t *testing.T) {
	data := []byte(`{"relations": [{
		"origin": {"name": "index", "suffixes": ["_01_r", "_01_l"]},
		"target": {"name": "Index", "suffixes": ["_01"]}
	}]}`)
	_, err := Parse(data)
	require.Error(t, err)
	require.True(t, merrors.IsMalformedInputError(err), "err=%v", err)
	require.Contains(t, err.Error(), "origin=2 target=1")
}

func TestParseRejectsRelationsNotList(t *testing.T) {
	_, err := Parse([]byte(`{"relations": "not-a-list"}`))
	require.True(t, merrors.IsMalformedInputError(err), "err=%v", err)
	require.Contains(t, err.Error(), "relations [1:")

	_, err = Parse([]byte(`{"other": []}`))
	require.True(t, merrors.IsMalformedInputError(err), "err=%v", err)

	_, err = Parse([]byte(``))
	require.True(t, merrors.IsMalformedInputError(err), "err=%v", err)

	_, err = Parse([]byte(`[1, 2]`))
	require.True(t, merrors.IsMalformedInputError(err), "err=%v", err)
}

func TestParseReportsFieldPath(t *testing.T) {
	data := []byte(`relations:
  - origin:
      suffixes: [_r]
`)
	_, err := Parse(data)
	require.True(t, merrors.IsMalformedInputError(err), "err=%v", err)
	require.Contains(t, err.Error(), "relations[0].origin.name [3:7]")
}

func TestParseRejectsDuplicateKeys(t *testing.T) {
	data := []byte(`relations:
  - origin:
      name: hip
      name: spine
`)
	_, err := Parse(data)
	require.True(t, merrors.IsMalformedInputError(err), "err=%v", err)
	require.Contains(t, err.Error(), "relations[0].origin.name [4:7]")
	require.Contains(t, err.Error(), "キーが重複しています")

	_, err = Parse([]byte(`{"relations": [{"origin": "hip"}], "relations": []}`))
	require.True(t, merrors.IsMalformedInputError(err), "err=%v", err)

	ruleSet, err := Parse([]byte(`relations:
  - origin: {name: hip}
  - origin: {name: hip}
`))
	require.NoError(t, err)
	require.Equal(t, 2, ruleSet.Len())
}

func TestParseRejectsSuffixGroupWithoutNames(t *testing.T) {
	data := []byte(`relations:
  - origin:
      name: hand
      suffixes:
        subsuffixes: [_r]
`)
	_, err := Parse(data)
	require.True(t, merrors.IsMalformedInputError(err), "err=%v", err)
	require.Contains(t, err.Error(), "relations[0].origin.suffixes.names")
}

func TestParseOffsetsWithWarnings(t *testing.T) {
	data := []byte(`relations:
  - origin:
      name: hand
      suffixes: [_r, _l]
    target:
      name: Hand
      suffixes: [R, L]
    offset:
      - position: [0, 1, 0]
      - orientation:
          codification: axis_angle
          values:
            - [[0, 0, 1], pi/2]
            - [1, 0, 0, 0]
            - [0, 1, 0, rad(0)]
`)
	ruleSet, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, ruleSet.Relations, 2)
	require.Len(t, ruleSet.Warnings, 2)
	require.Equal(t, model.WarningOffsetOrientationDefaulted, ruleSet.Warnings[0].ID)
	require.Contains(t, ruleSet.Warnings[0].Message, "relations[0].offset[0].orientation")
	require.Equal(t, model.WarningOffsetPositionDefaulted, ruleSet.Warnings[1].ID)

	first := ruleSet.Relations[0].Offset()
	translation, ok := first.Translation()
	require.True(t, ok)
	require.True(t, translation.NearEquals(mmath.NewVec3(0, 1, 0), 1e-12))

	second := ruleSet.Relations[1].Offset()
	rotation, ok := second.Rotation()
	require.True(t, ok)
	require.True(t, rotation.NearEquals(mmath.NewMat3RotationZ(math.Pi/2), 1e-12), "rotation=%s", rotation)
}

func TestParseRejectsOffsetCountMismatch(t *testing.T) {
	data := []byte(`relations:
  - origin:
      name: foot
      suffixes: [_r, _l]
    offset:
      - orientation: identity
`)
	_, err := Parse(data)
	require.True(t, merrors.IsMalformedInputError(err), "err=%v", err)
	require.Contains(t, err.Error(), "offset=1 bones=2")
}

func TestParseRejectsOffsetNotList(t *testing.T) {
	_, err := Parse([]byte(`{"relations": [{"origin": "hip", "offset": {"position": [0, 0, 0]}}]}`))
	require.True(t, merrors.IsMalformedInputError(err), "err=%v", err)
	require.Contains(t, err.Error(), "relations[0].offset")
}

func TestParseUnsupportedCodificationKeepsKind(t *testing.T) {
	data := []byte(`relations:
  - origin: hip
    offset:
      - position: [0, 0, 0]
        orientation:
          codification: spin
          values: [1]
`)
	_, err := Parse(data)
	require.True(t, merrors.IsUnsupportedCodificationError(err), "err=%v", err)
	require.True(t, merrors.IsMalformedInputError(err))
	require.Contains(t, err.Error(), "relations[0].offset[0].orientation")
}

func TestParseRejectsBadPosition(t *testing.T) {
	_, err := Parse([]byte(`{"relations": [{"origin": "hip", "offset": [{"position": [0, 0]}]}]}`))
	require.True(t, merrors.IsMalformedInputError(err), "err=%v", err)

	_, err = Parse([]byte(`{"relations": [{"origin": "hip", "offset": [{"position": [0, "abc", 0]}]}]}`))
	require.True(t, merrors.IsMalformedInputError(err), "err=%v", err)
}

func TestParseRPYMapping(t *testing.T) {
	data := []byte(`{"relations": [{"origin": "hip", "offset": [{
		"position": [0, 0, 0],
		"orientation": {"codification": "rpy", "values": {"roll": "pi", "pitch": 0, "yaw": 0}}
	}]}]}`)
	ruleSet, err := Parse(data)
	require.NoError(t, err)
	rotation, _ := ruleSet.Relations[0].Offset().Rotation()
	require.True(t, rotation.NearEquals(mmath.NewMat3RotationX(math.Pi), 1e-12), "rotation=%s", rotation)
}

func TestEvaluateNumber(t *testing.T) {
	cases := map[string]float64{
		"pi/2":        math.Pi / 2,
		"rad(180)":    math.Pi,
		"deg(pi)":     180,
		"-1.5":        -1.5,
		"tau - pi":    math.Pi,
		"sqrt(4) * 2": 4,
	}
	for expression, want := range cases {
		got, err := EvaluateNumber(expression)
		require.NoError(t, err, expression)
		require.InDelta(t, want, got, 1e-12, expression)
	}
	for _, expression := range []string{"", "roll", "1 >", "1 > 0"} {
		_, err := EvaluateNumber(expression)
		require.Error(t, err, expression)
	}
}

func TestLoadRuleFileAttachesPath(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"relations": [{"origin": "hip"}]}`), 0o644))

	ruleSet, err := LoadRuleFile(good)
	require.NoError(t, err)
	require.Equal(t, 1, ruleSet.Len())

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("relations: 3\n"), 0o644))
	_, err = LoadRuleFile(bad)
	require.True(t, merrors.IsMalformedInputError(err), "err=%v", err)
	require.True(t, strings.HasPrefix(err.Error(), bad+": "), "err=%v", err)

	unsupported := filepath.Join(dir, "rules.txt")
	_, err = LoadRuleFile(unsupported)
	require.True(t, merrors.IsMalformedInputError(err), "err=%v", err)
	require.True(t, strings.HasPrefix(err.Error(), unsupported+": "), "err=%v", err)
	require.Contains(t, err.Error(), ".txt")
	require.False(t, NewRuleRepository().CanLoad("rules.txt"))
}
