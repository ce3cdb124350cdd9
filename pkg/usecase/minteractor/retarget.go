// 指示: miu200521358
package minteractor

import (
	"math"

	"github.com/google/uuid"

	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_retarget/pkg/domain/retarget"
	"github.com/miu200521358/mu_retarget/pkg/usecase/port/moutput"
)

// retargetPlan は照合までで確定した移植計画を表す。
type retargetPlan struct {
	host           moutput.ISkeletonHost
	relations      []*retarget.Relation
	originArmature string
	targetArmature string
	matches        []retarget.Match
	lastFrame      int
}

// Retarget は選択中の2オブジェクト間でアニメーションを移植する。
// 非アクティブ側を移植元、アクティブ側を移植先とする。
// 照合までの失敗ではホストを変更しない。補正・複写中の失敗は途中までの変更を戻さない。
func (uc *RetargetUsecase) Retarget(request RetargetRequest) (*RetargetResult, error) {
	result := newRetargetResult(request.RuleSet)
	logRetargetInfo("移植開始: run=%s", result.RunID)

	plan, err := uc.planRetarget(request, result)
	if err != nil {
		return cancelRetarget(result, err)
	}
	host := plan.host
	selectedFrame := host.CurrentFrame()

	if err := host.ClearAnimation(plan.targetArmature); err != nil {
		return cancelRetarget(result, err)
	}

	result.State = RetargetStateCorrectingRestPose
	reportRetargetProgress(request.ProgressReporter, RetargetProgressEvent{
		State:      result.State,
		MatchCount: len(plan.matches),
		FrameTotal: plan.lastFrame + 1,
	})
	if err := correctRestPose(plan); err != nil {
		return cancelRetarget(result, err)
	}

	result.State = RetargetStateCopyingFrames
	for i, match := range plan.matches {
		keyframes, err := copyFrames(plan, match)
		result.KeyframeCount += keyframes
		if err != nil {
			return cancelRetarget(result, err)
		}
		reportRetargetProgress(request.ProgressReporter, RetargetProgressEvent{
			State:      result.State,
			MatchCount: len(plan.matches),
			MatchDone:  i + 1,
			FrameTotal: plan.lastFrame + 1,
		})
	}
	result.FrameCount = plan.lastFrame + 1

	host.SetCurrentFrame(selectedFrame)
	result.State = RetargetStateDone
	result.Status = RetargetStatusFinished
	reportRetargetProgress(request.ProgressReporter, RetargetProgressEvent{
		State:      result.State,
		MatchCount: len(plan.matches),
		MatchDone:  len(plan.matches),
		FrameTotal: result.FrameCount,
	})
	logRetargetInfo(
		"移植完了: run=%s origin=%s target=%s matches=%d frames=%d keyframes=%d warnings=%d",
		result.RunID,
		result.OriginArmature,
		result.TargetArmature,
		len(result.Matches),
		result.FrameCount,
		result.KeyframeCount,
		len(result.Warnings),
	)
	return result, nil
}

// DryRun は照合までを実行し、ホストを変更せずに対応結果を返す。
func (uc *RetargetUsecase) DryRun(request RetargetRequest) (*RetargetResult, error) {
	result := newRetargetResult(request.RuleSet)
	result.DryRun = true
	logRetargetInfo("照合のみ実行: run=%s", result.RunID)

	plan, err := uc.planRetarget(request, result)
	if err != nil {
		return cancelRetarget(result, err)
	}
	result.FrameCount = plan.lastFrame + 1
	result.State = RetargetStateDone
	result.Status = RetargetStatusFinished
	return result, nil
}

// planRetarget は選択検証・アーマチュア解決・照合を行う。
func (uc *RetargetUsecase) planRetarget(request RetargetRequest, result *RetargetResult) (*retargetPlan, error) {
	host := request.Host
	if host == nil {
		return nil, merrors.NewHostOperationFailedError("ホストが設定されていません")
	}

	result.State = RetargetStateSelectingObjects
	reportRetargetProgress(request.ProgressReporter, RetargetProgressEvent{State: result.State})
	originObject, targetObject, err := resolveSelection(host)
	if err != nil {
		return nil, err
	}
	result.OriginObject = originObject
	result.TargetObject = targetObject

	result.State = RetargetStateResolvingArmatures
	reportRetargetProgress(request.ProgressReporter, RetargetProgressEvent{State: result.State})
	originArmature, ok := host.ResolveArmature(originObject)
	if !ok {
		return nil, merrors.NewNoArmatureFoundError(originObject)
	}
	targetArmature, ok := host.ResolveArmature(targetObject)
	if !ok {
		return nil, merrors.NewNoArmatureFoundError(targetObject)
	}
	if originArmature == targetArmature {
		return nil, merrors.NewSameArmatureError(originArmature)
	}
	result.OriginArmature = originArmature
	result.TargetArmature = targetArmature

	result.State = RetargetStateMatching
	reportRetargetProgress(request.ProgressReporter, RetargetProgressEvent{State: result.State})
	_, end, ok := host.AnimationFrameRange(originArmature)
	if !ok {
		return nil, merrors.NewNoAnimationError(originArmature)
	}
	originBones, err := host.BoneNames(originArmature)
	if err != nil {
		return nil, err
	}
	targetBones, err := host.BoneNames(targetArmature)
	if err != nil {
		return nil, err
	}

	relations := uc.resolveRelations(request.RuleSet)
	matches := retarget.FindMatches(relations, originBones, targetBones, request.MatchOptions)
	result.Matches = matches
	if len(matches) == 0 {
		warning := model.NewWarning(model.WarningNoMatches, "対応するボーンが見つかりませんでした: %s -> %s", originArmature, targetArmature)
		result.Warnings = append(result.Warnings, warning)
		logRetargetWarn("%s", warning.Message)
	}
	for _, match := range matches {
		logRetargetDebug("照合: rule=%d %s -> %s", match.RelationIndex, match.OriginBone, match.TargetBone)
	}

	return &retargetPlan{
		host:           host,
		relations:      relations,
		originArmature: originArmature,
		targetArmature: targetArmature,
		matches:        matches,
		lastFrame:      lastFrameOf(end),
	}, nil
}

// lastFrameOf は終端フレームを切り上げた最終フレームを返す。終端が負ならフレーム数0となる -1 を返す。
func lastFrameOf(end float64) int {
	return max(int(math.Ceil(end)), -1)
}

// resolveRelations はルール未指定の場合に組み込み対応表を使う。
func (uc *RetargetUsecase) resolveRelations(ruleSet *retarget.RuleSet) []*retarget.Relation {
	if ruleSet != nil {
		return ruleSet.Relations
	}
	if uc != nil && uc.legacyTable != nil {
		return uc.legacyTable.Relations()
	}
	return nil
}

// resolveSelection は選択中の2オブジェクトから移植元と移植先を決める。
func resolveSelection(host moutput.ISkeletonHost) (string, string, error) {
	selected := make([]string, 0, 2)
	seen := make(map[string]struct{})
	for _, name := range host.SelectedObjects() {
		if _, exists := seen[name]; exists {
			continue
		}
		seen[name] = struct{}{}
		selected = append(selected, name)
	}
	if len(selected) != 2 {
		return "", "", merrors.NewSelectionError("オブジェクトを2つ選択してください: 選択数=%d", len(selected))
	}
	active, ok := host.ActiveObject()
	if !ok {
		return "", "", merrors.NewSelectionError("アクティブオブジェクトがありません")
	}
	switch active {
	case selected[0]:
		return selected[1], active, nil
	case selected[1]:
		return selected[0], active, nil
	default:
		return "", "", merrors.NewSelectionError("アクティブオブジェクトが選択されていません: %s", active)
	}
}

// correctRestPose はレスト表示で移植先ボーンのレスト行列へオフセットを合成する。
func correctRestPose(plan *retargetPlan) error {
	host := plan.host
	for _, armature := range []string{plan.originArmature, plan.targetArmature} {
		if err := host.SetPoseMode(armature, model.POSE_MODE_REST); err != nil {
			return err
		}
	}
	for _, match := range plan.matches {
		offset := plan.relations[match.RelationIndex].Offset()
		current, err := host.PoseMatrix(plan.targetArmature, match.TargetBone)
		if err != nil {
			return err
		}
		if err := host.DetachBone(plan.targetArmature, match.TargetBone); err != nil {
			return err
		}
		if err := host.SetRestMatrix(plan.targetArmature, match.TargetBone, offset.ApplyTo(current)); err != nil {
			return err
		}
		logRetargetDebug("レスト補正: %s/%s", plan.targetArmature, match.TargetBone)
	}
	for _, armature := range []string{plan.originArmature, plan.targetArmature} {
		if err := host.SetPoseMode(armature, model.POSE_MODE_POSE); err != nil {
			return err
		}
	}
	return nil
}

// copyFrames は0から最終フレームまで移植元の姿勢を移植先へ複写し、キーフレームを記録する。
// 戻り値は記録したキーフレーム数。
func copyFrames(plan *retargetPlan, match retarget.Match) (int, error) {
	host := plan.host
	keyframes := 0
	for frame := 0; frame < plan.lastFrame+1; frame++ {
		host.SetCurrentFrame(frame)

		location, err := host.PoseTranslation(plan.originArmature, match.OriginBone)
		if err != nil {
			return keyframes, err
		}
		if err := host.SetPoseTranslation(plan.targetArmature, match.TargetBone, location); err != nil {
			return keyframes, err
		}
		rotation, err := host.PoseRotation(plan.originArmature, match.OriginBone)
		if err != nil {
			return keyframes, err
		}
		if err := host.SetPoseRotation(plan.targetArmature, match.TargetBone, rotation); err != nil {
			return keyframes, err
		}

		if err := host.InsertKeyframe(plan.targetArmature, match.TargetBone, model.CHANNEL_LOCATION, frame); err != nil {
			return keyframes, err
		}
		keyframes++
		if err := host.InsertKeyframe(plan.targetArmature, match.TargetBone, model.CHANNEL_ROTATION, frame); err != nil {
			return keyframes, err
		}
		keyframes++
	}
	return keyframes, nil
}

// newRetargetResult は実行IDとルール展開時の警告を持つ結果を生成する。
func newRetargetResult(ruleSet *retarget.RuleSet) *RetargetResult {
	result := &RetargetResult{
		RunID:    uuid.NewString(),
		Status:   RetargetStatusFinished,
		State:    RetargetStateSelectingObjects,
		Matches:  make([]retarget.Match, 0),
		Warnings: make([]model.Warning, 0),
	}
	if ruleSet != nil {
		result.Warnings = append(result.Warnings, ruleSet.Warnings...)
	}
	return result
}

// cancelRetarget は結果を中断状態にしてエラーと共に返す。
func cancelRetarget(result *RetargetResult, err error) (*RetargetResult, error) {
	logRetargetWarn("移植中断: run=%s state=%s reason=%v", result.RunID, result.State, err)
	result.Status = RetargetStatusCancelled
	result.State = RetargetStateAborted
	result.Reason = err.Error()
	return result, err
}
