// 指示: miu200521358
// Package host はメモリ上のシーンを操作するスケルトンホスト実装を提供する。
package host

import (
	"fmt"

	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_retarget/pkg/shared/base/logging"
)

// SceneHost は model.Scene を保持し、ボーン姿勢・キーフレーム操作を提供する。
// 単一の呼び出し元からの利用を前提とし、排他制御は行わない。
type SceneHost struct {
	scene *model.Scene
}

// NewSceneHost はSceneHostを生成する。scene が nil の場合は空シーンを使う。
func NewSceneHost(scene *model.Scene) *SceneHost {
	if scene == nil {
		scene = model.NewScene("")
	}
	return &SceneHost{scene: scene}
}

// Scene は保持しているシーンを返す。
func (h *SceneHost) Scene() *model.Scene {
	return h.scene
}

// SelectedObjects は選択中オブジェクト名を返す。
func (h *SceneHost) SelectedObjects() []string {
	return append([]string(nil), h.scene.Selected...)
}

// ActiveObject はアクティブオブジェクト名を返す。
func (h *SceneHost) ActiveObject() (string, bool) {
	if h.scene.Active == "" {
		return "", false
	}
	if _, ok := h.scene.ObjectByName(h.scene.Active); !ok {
		return "", false
	}
	return h.scene.Active, true
}

// ResolveArmature はオブジェクト自身・親アーマチュア・子孫の順でアーマチュアを探す。
func (h *SceneHost) ResolveArmature(objectName string) (string, bool) {
	return h.resolveArmature(objectName, map[string]struct{}{})
}

// resolveArmature は循環を避けながら子孫を深さ優先で探索する。
func (h *SceneHost) resolveArmature(objectName string, visited map[string]struct{}) (string, bool) {
	if _, seen := visited[objectName]; seen {
		return "", false
	}
	visited[objectName] = struct{}{}

	object, ok := h.scene.ObjectByName(objectName)
	if !ok {
		return "", false
	}
	if object.IsArmature() {
		return object.Name, true
	}
	if object.Type == model.OBJECT_TYPE_MESH && object.Parent != "" {
		if parent, ok := h.scene.ObjectByName(object.Parent); ok && parent.IsArmature() {
			return parent.Name, true
		}
	}
	for _, child := range h.scene.Children(object.Name) {
		if name, ok := h.resolveArmature(child.Name, visited); ok {
			return name, true
		}
	}
	return "", false
}

// BoneNames はアーマチュアのボーン名を登録順で返す。
func (h *SceneHost) BoneNames(armatureName string) ([]string, error) {
	armature, err := h.armature(armatureName)
	if err != nil {
		return nil, err
	}
	return armature.BoneNames(), nil
}

// AnimationFrameRange はアクティブアニメーションのフレーム範囲を返す。
func (h *SceneHost) AnimationFrameRange(armatureName string) (float64, float64, bool) {
	armature, err := h.armature(armatureName)
	if err != nil || armature.Animation == nil {
		return 0, 0, false
	}
	start, end := armature.Animation.FrameRange()
	return start, end, true
}

// ClearAnimation はアクティブアニメーションを破棄する。現在の姿勢値は保持する。
func (h *SceneHost) ClearAnimation(armatureName string) error {
	armature, err := h.armature(armatureName)
	if err != nil {
		return err
	}
	armature.Animation = nil
	return nil
}

// SetPoseMode はレスト/ポーズ表示モードを切り替える。
func (h *SceneHost) SetPoseMode(armatureName string, mode model.PoseMode) error {
	armature, err := h.armature(armatureName)
	if err != nil {
		return err
	}
	switch mode {
	case model.POSE_MODE_POSE, model.POSE_MODE_REST:
		armature.PoseMode = mode
		return nil
	default:
		return merrors.NewHostOperationFailedError("姿勢モードが不正です: %s", mode)
	}
}

// PoseMatrix は現在モードで評価したボーンのアーマチュア空間行列を返す。
func (h *SceneHost) PoseMatrix(armatureName, boneName string) (mmath.Mat4, error) {
	armature, bone, err := h.bone(armatureName, boneName)
	if err != nil {
		return mmath.NewMat4(), err
	}
	if armature.PoseMode == model.POSE_MODE_REST {
		return bone.Rest, nil
	}
	return evaluatePoseMatrix(armature, bone, len(armature.Bones))
}

// DetachBone はボーンと直下の子ボーンの親接続を外す。
func (h *SceneHost) DetachBone(armatureName, boneName string) error {
	armature, bone, err := h.bone(armatureName, boneName)
	if err != nil {
		return err
	}
	bone.Connected = false
	for _, child := range armature.ChildBones(bone.Name) {
		child.Connected = false
	}
	return nil
}

// SetRestMatrix はレスト行列を設定する。親に接続された子ボーンは同じ差分だけ追従する。
func (h *SceneHost) SetRestMatrix(armatureName, boneName string, matrix mmath.Mat4) error {
	armature, bone, err := h.bone(armatureName, boneName)
	if err != nil {
		return err
	}
	delta := matrix.Muled(bone.Rest.Inverted())
	bone.Rest = matrix
	followConnectedChildren(armature, bone.Name, delta, len(armature.Bones))
	logHostDebug("レスト行列更新: %s/%s", armatureName, boneName)
	return nil
}

// CurrentFrame は現在フレームを返す。
func (h *SceneHost) CurrentFrame() int {
	return h.scene.CurrentFrame
}

// SetCurrentFrame は現在フレームを設定し、全アーマチュアのアニメーションを評価する。
func (h *SceneHost) SetCurrentFrame(frame int) {
	h.scene.CurrentFrame = frame
	for _, object := range h.scene.ArmatureObjects() {
		evaluateAnimation(object.Armature, float64(frame))
	}
}

// PoseTranslation はポーズボーンのローカル移動量を返す。
func (h *SceneHost) PoseTranslation(armatureName, boneName string) (mmath.Vec3, error) {
	_, bone, err := h.bone(armatureName, boneName)
	if err != nil {
		return mmath.ZERO_VEC3, err
	}
	return bone.Location, nil
}

// PoseRotation はポーズボーンのローカル回転を返す。
func (h *SceneHost) PoseRotation(armatureName, boneName string) (mmath.Quaternion, error) {
	_, bone, err := h.bone(armatureName, boneName)
	if err != nil {
		return mmath.NewQuaternion(), err
	}
	return bone.Rotation, nil
}

// SetPoseTranslation はポーズボーンのローカル移動量を設定する。
func (h *SceneHost) SetPoseTranslation(armatureName, boneName string, value mmath.Vec3) error {
	_, bone, err := h.bone(armatureName, boneName)
	if err != nil {
		return err
	}
	bone.Location = value
	return nil
}

// SetPoseRotation はポーズボーンのローカル回転を設定する。
func (h *SceneHost) SetPoseRotation(armatureName, boneName string, value mmath.Quaternion) error {
	_, bone, err := h.bone(armatureName, boneName)
	if err != nil {
		return err
	}
	bone.Rotation = value
	return nil
}

// InsertKeyframe は現在のチャンネル値をキーフレームとして記録する。アニメーションが無い場合は生成する。
func (h *SceneHost) InsertKeyframe(armatureName, boneName string, channel model.Channel, frame int) error {
	armature, bone, err := h.bone(armatureName, boneName)
	if err != nil {
		return err
	}
	if armature.Animation == nil {
		armature.Animation = model.NewAnimation(armature.Name + "Action")
	}
	track := armature.Animation.EnsureTrack(bone.Name)
	switch channel {
	case model.CHANNEL_LOCATION:
		track.SetLocation(float64(frame), bone.Location)
	case model.CHANNEL_ROTATION:
		track.SetRotation(float64(frame), bone.Rotation)
	default:
		return merrors.NewHostOperationFailedError("キーフレームのチャンネルが不正です: %s", channel)
	}
	return nil
}

// armature は名前一致のアーマチュアを返す。
func (h *SceneHost) armature(name string) (*model.Armature, error) {
	object, ok := h.scene.ObjectByName(name)
	if !ok || !object.IsArmature() {
		return nil, merrors.NewHostOperationFailedError("アーマチュアが見つかりません: %s", name)
	}
	return object.Armature, nil
}

// bone は名前一致のアーマチュアとボーンを返す。
func (h *SceneHost) bone(armatureName, boneName string) (*model.Armature, *model.Bone, error) {
	armature, err := h.armature(armatureName)
	if err != nil {
		return nil, nil, err
	}
	bone, ok := armature.BoneByName(boneName)
	if !ok {
		return nil, nil, merrors.NewHostOperationFailedError("ボーンが見つかりません: %s/%s", armatureName, boneName)
	}
	return armature, bone, nil
}

// evaluatePoseMatrix は親のポーズ行列・親基準のレスト差分・ローカル姿勢を合成する。
// depth は親参照の循環を打ち切るための残り段数。
func evaluatePoseMatrix(armature *model.Armature, bone *model.Bone, depth int) (mmath.Mat4, error) {
	local := mmath.NewMat4FromTranslationRotation(bone.Location, bone.Rotation)
	if bone.Parent == "" {
		return bone.Rest.Muled(local), nil
	}
	parent, ok := armature.BoneByName(bone.Parent)
	if !ok {
		return bone.Rest.Muled(local), nil
	}
	if depth <= 0 {
		return mmath.NewMat4(), merrors.NewHostOperationFailedError("ボーン階層が循環しています: %s", bone.Name)
	}
	parentPose, err := evaluatePoseMatrix(armature, parent, depth-1)
	if err != nil {
		return mmath.NewMat4(), err
	}
	relativeRest := parent.Rest.Inverted().Muled(bone.Rest)
	return parentPose.Muled(relativeRest).Muled(local), nil
}

// followConnectedChildren は接続された子ボーンへレスト行列の差分を伝播する。
func followConnectedChildren(armature *model.Armature, parentName string, delta mmath.Mat4, depth int) {
	if depth <= 0 {
		return
	}
	for _, child := range armature.ChildBones(parentName) {
		if !child.Connected {
			continue
		}
		child.Rest = delta.Muled(child.Rest)
		followConnectedChildren(armature, child.Name, delta, depth-1)
	}
}

// evaluateAnimation はキーを持つボーンの姿勢をフレーム位置の値へ更新する。
func evaluateAnimation(armature *model.Armature, frame float64) {
	if armature == nil || armature.Animation == nil {
		return
	}
	for _, track := range armature.Animation.Tracks {
		bone, ok := armature.BoneByName(track.BoneName)
		if !ok {
			continue
		}
		if location, ok := track.LocationAt(frame); ok {
			bone.Location = location
		}
		if rotation, ok := track.RotationAt(frame); ok {
			bone.Rotation = rotation
		}
	}
}

// logHostDebug はホスト操作のDEBUGログを出力する。
func logHostDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// String は表示用文字列を返す。
func (h *SceneHost) String() string {
	return fmt.Sprintf("SceneHost(%s, frame=%d)", h.scene.Name, h.scene.CurrentFrame)
}
