// 指示: miu200521358
package model

import (
	"math"
	"sort"

	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
)

// Channel はキーフレームを記録する姿勢チャンネルを表す。
type Channel string

const (
	// CHANNEL_LOCATION は移動チャンネル。
	CHANNEL_LOCATION Channel = "location"
	// CHANNEL_ROTATION は回転チャンネル。
	CHANNEL_ROTATION Channel = "rotation"
)

// LocationKeyframe は移動キーフレームを表す。
type LocationKeyframe struct {
	Frame float64
	Value mmath.Vec3
}

// RotationKeyframe は回転キーフレームを表す。
type RotationKeyframe struct {
	Frame float64
	Value mmath.Quaternion
}

// BoneTrack は1ボーン分のキーフレーム列を表す。キーはフレーム昇順で保持する。
type BoneTrack struct {
	BoneName  string
	Locations []LocationKeyframe
	Rotations []RotationKeyframe
}

// SetLocation は移動キーを追加し、同一フレームのキーは置き換える。
func (t *BoneTrack) SetLocation(frame float64, value mmath.Vec3) {
	index := sort.Search(len(t.Locations), func(i int) bool { return t.Locations[i].Frame >= frame })
	if index < len(t.Locations) && t.Locations[index].Frame == frame {
		t.Locations[index].Value = value
		return
	}
	t.Locations = append(t.Locations, LocationKeyframe{})
	copy(t.Locations[index+1:], t.Locations[index:])
	t.Locations[index] = LocationKeyframe{Frame: frame, Value: value}
}

// SetRotation は回転キーを追加し、同一フレームのキーは置き換える。
func (t *BoneTrack) SetRotation(frame float64, value mmath.Quaternion) {
	index := sort.Search(len(t.Rotations), func(i int) bool { return t.Rotations[i].Frame >= frame })
	if index < len(t.Rotations) && t.Rotations[index].Frame == frame {
		t.Rotations[index].Value = value
		return
	}
	t.Rotations = append(t.Rotations, RotationKeyframe{})
	copy(t.Rotations[index+1:], t.Rotations[index:])
	t.Rotations[index] = RotationKeyframe{Frame: frame, Value: value}
}

// LocationAt はフレーム位置の移動量を線形補間で返す。キーが無い場合は false を返す。
func (t *BoneTrack) LocationAt(frame float64) (mmath.Vec3, bool) {
	keys := t.Locations
	if len(keys) == 0 {
		return mmath.ZERO_VEC3, false
	}
	if frame <= keys[0].Frame {
		return keys[0].Value, true
	}
	last := keys[len(keys)-1]
	if frame >= last.Frame {
		return last.Value, true
	}
	next := sort.Search(len(keys), func(i int) bool { return keys[i].Frame > frame })
	prev := keys[next-1]
	ratio := (frame - prev.Frame) / (keys[next].Frame - prev.Frame)
	return prev.Value.Lerp(keys[next].Value, ratio), true
}

// RotationAt はフレーム位置の回転を球面線形補間で返す。キーが無い場合は false を返す。
func (t *BoneTrack) RotationAt(frame float64) (mmath.Quaternion, bool) {
	keys := t.Rotations
	if len(keys) == 0 {
		return mmath.NewQuaternion(), false
	}
	if frame <= keys[0].Frame {
		return keys[0].Value, true
	}
	last := keys[len(keys)-1]
	if frame >= last.Frame {
		return last.Value, true
	}
	next := sort.Search(len(keys), func(i int) bool { return keys[i].Frame > frame })
	prev := keys[next-1]
	ratio := (frame - prev.Frame) / (keys[next].Frame - prev.Frame)
	return prev.Value.Slerp(keys[next].Value, ratio), true
}

// Animation はボーンごとのキーフレーム列を保持するアクションを表す。
type Animation struct {
	Name   string
	Tracks []*BoneTrack
}

// NewAnimation はAnimationを生成する。
func NewAnimation(name string) *Animation {
	return &Animation{Name: name}
}

// Track はボーン名一致のトラックを返す。
func (a *Animation) Track(boneName string) (*BoneTrack, bool) {
	if a == nil {
		return nil, false
	}
	for _, track := range a.Tracks {
		if track != nil && track.BoneName == boneName {
			return track, true
		}
	}
	return nil, false
}

// EnsureTrack はボーン名一致のトラックを返し、無ければ追加する。
func (a *Animation) EnsureTrack(boneName string) *BoneTrack {
	if track, ok := a.Track(boneName); ok {
		return track
	}
	track := &BoneTrack{BoneName: boneName}
	a.Tracks = append(a.Tracks, track)
	return track
}

// FrameRange は全キーフレームの最小・最大フレームを返す。キーが無い場合は (0, 0) を返す。
func (a *Animation) FrameRange() (float64, float64) {
	if a == nil {
		return 0, 0
	}
	start := math.Inf(1)
	end := math.Inf(-1)
	for _, track := range a.Tracks {
		if track == nil {
			continue
		}
		for _, key := range track.Locations {
			start = math.Min(start, key.Frame)
			end = math.Max(end, key.Frame)
		}
		for _, key := range track.Rotations {
			start = math.Min(start, key.Frame)
			end = math.Max(end, key.Frame)
		}
	}
	if math.IsInf(start, 1) {
		return 0, 0
	}
	return start, end
}

// KeyframeCount は全チャンネルのキーフレーム数を返す。
func (a *Animation) KeyframeCount() int {
	if a == nil {
		return 0
	}
	count := 0
	for _, track := range a.Tracks {
		if track != nil {
			count += len(track.Locations) + len(track.Rotations)
		}
	}
	return count
}
