// 指示: miu200521358
// Package moutput はユースケースが依存する外部ポートの契約を提供する。
package moutput

import (
	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/domain/retarget"
)

// ISkeletonHost はボーン階層・姿勢・キーフレームを保持するホストの契約を表す。
// 現在フレームはホスト全体で1つだけ持つ。
type ISkeletonHost interface {
	// SelectedObjects は選択中オブジェクト名を返す。
	SelectedObjects() []string
	// ActiveObject はアクティブオブジェクト名を返す。
	ActiveObject() (string, bool)
	// ResolveArmature はオブジェクトから対応するアーマチュア名を解決する。
	ResolveArmature(objectName string) (string, bool)
	// BoneNames はアーマチュアのボーン名を内部順で返す。
	BoneNames(armature string) ([]string, error)
	// AnimationFrameRange はアクティブアニメーションのフレーム範囲を返す。アニメーションが無い場合は false を返す。
	AnimationFrameRange(armature string) (float64, float64, bool)
	// ClearAnimation はアクティブアニメーションを破棄する。
	ClearAnimation(armature string) error
	// SetPoseMode はレスト/ポーズ表示モードを切り替える。
	SetPoseMode(armature string, mode model.PoseMode) error
	// PoseMatrix は現在モードで評価したボーンのアーマチュア空間行列を返す。
	PoseMatrix(armature, bone string) (mmath.Mat4, error)
	// DetachBone はボーンと直下の子ボーンの親接続を外す。
	DetachBone(armature, bone string) error
	// SetRestMatrix はボーンのアーマチュア空間レスト行列を設定する。
	SetRestMatrix(armature, bone string, matrix mmath.Mat4) error
	// CurrentFrame は現在フレームを返す。
	CurrentFrame() int
	// SetCurrentFrame は現在フレームを設定し、アニメーションを評価する。
	SetCurrentFrame(frame int)
	// PoseTranslation はポーズボーンのローカル移動量を返す。
	PoseTranslation(armature, bone string) (mmath.Vec3, error)
	// PoseRotation はポーズボーンのローカル回転を返す。
	PoseRotation(armature, bone string) (mmath.Quaternion, error)
	// SetPoseTranslation はポーズボーンのローカル移動量を設定する。
	SetPoseTranslation(armature, bone string, value mmath.Vec3) error
	// SetPoseRotation はポーズボーンのローカル回転を設定する。
	SetPoseRotation(armature, bone string, value mmath.Quaternion) error
	// InsertKeyframe は現在のチャンネル値をキーフレームとして記録する。
	InsertKeyframe(armature, bone string, channel model.Channel, frame int) error
}

// SaveOptions は保存時のオプションを表す。
type SaveOptions struct {
	// Overwrite は既存ファイルの上書きを許可する。
	Overwrite bool
}

// ISceneReader はシーン読み込みの契約を表す。
type ISceneReader interface {
	// CanLoad は読み込み可能な拡張子か判定する。
	CanLoad(path string) bool
	// Load はシーンを読み込む。
	Load(path string) (*model.Scene, error)
}

// ISceneWriter はシーン保存の契約を表す。
type ISceneWriter interface {
	// Save はシーンを保存する。
	Save(path string, scene *model.Scene, opts SaveOptions) error
}

// IRuleReader はボーン対応ルール読み込みの契約を表す。
type IRuleReader interface {
	// Load はルール文書を読み込み、展開済みルールを返す。
	Load(path string) (*retarget.RuleSet, error)
}
