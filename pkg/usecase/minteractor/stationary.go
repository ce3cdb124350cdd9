// 指示: miu200521358
package minteractor

import (
	"github.com/google/uuid"

	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_retarget/pkg/domain/retarget"
)

// DefaultRootName はルートボーン名の既定の接尾辞。
const DefaultRootName = "root"

// MakeStationary はアクティブアーマチュアのルートボーンの移動量を全フレームで0にする。
func (uc *RetargetUsecase) MakeStationary(request StationaryRequest) (*StationaryResult, error) {
	result := &StationaryResult{
		RunID:    uuid.NewString(),
		Status:   RetargetStatusFinished,
		Warnings: make([]model.Warning, 0),
	}
	logRetargetInfo("ルート固定開始: run=%s", result.RunID)

	host := request.Host
	if host == nil {
		return cancelStationary(result, merrors.NewHostOperationFailedError("ホストが設定されていません"))
	}
	active, ok := host.ActiveObject()
	if !ok {
		return cancelStationary(result, merrors.NewSelectionError("アクティブオブジェクトがありません"))
	}
	armature, ok := host.ResolveArmature(active)
	if !ok {
		return cancelStationary(result, merrors.NewNoArmatureFoundError(active))
	}
	result.Armature = armature

	_, end, ok := host.AnimationFrameRange(armature)
	if !ok {
		return cancelStationary(result, merrors.NewNoAnimationError(armature))
	}

	rootName := request.RootName
	if rootName == "" {
		rootName = DefaultRootName
	}
	rootBone, err := findRootBone(host.BoneNames, armature, rootName)
	if err != nil {
		return cancelStationary(result, err)
	}
	result.RootBone = rootBone

	selectedFrame := host.CurrentFrame()
	lastFrame := lastFrameOf(end)
	for frame := 0; frame < lastFrame+1; frame++ {
		host.SetCurrentFrame(frame)
		if err := host.SetPoseTranslation(armature, rootBone, mmath.ZERO_VEC3); err != nil {
			return cancelStationary(result, err)
		}
		if err := host.InsertKeyframe(armature, rootBone, model.CHANNEL_LOCATION, frame); err != nil {
			return cancelStationary(result, err)
		}
		result.KeyframeCount++
	}
	result.FrameCount = lastFrame + 1
	host.SetCurrentFrame(selectedFrame)

	logRetargetInfo("ルート固定完了: run=%s armature=%s bone=%s frames=%d", result.RunID, armature, rootBone, result.FrameCount)
	return result, nil
}

// findRootBone は接尾辞が rootName に一致する最初のボーンを返す。
func findRootBone(boneNames func(string) ([]string, error), armature, rootName string) (string, error) {
	pattern, err := retarget.NewRelation(rootName, rootName, nil)
	if err != nil {
		return "", err
	}
	names, err := boneNames(armature)
	if err != nil {
		return "", err
	}
	for _, name := range names {
		if pattern.MatchesOrigin(name) {
			return name, nil
		}
	}
	return "", merrors.NewNoRootBoneError(armature, rootName)
}

// cancelStationary は結果を中断状態にしてエラーと共に返す。
func cancelStationary(result *StationaryResult, err error) (*StationaryResult, error) {
	logRetargetWarn("ルート固定中断: run=%s reason=%v", result.RunID, err)
	result.Status = RetargetStatusCancelled
	result.Reason = err.Error()
	return result, err
}
