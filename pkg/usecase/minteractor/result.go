// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/domain/retarget"
	"github.com/miu200521358/mu_retarget/pkg/usecase/port/moutput"
)

// RetargetState は移植処理の状態を表す。
type RetargetState string

const (
	// RetargetStateSelectingObjects は選択オブジェクト検証中を表す。
	RetargetStateSelectingObjects RetargetState = "selecting_objects"
	// RetargetStateResolvingArmatures はアーマチュア解決中を表す。
	RetargetStateResolvingArmatures RetargetState = "resolving_armatures"
	// RetargetStateMatching はボーン照合中を表す。
	RetargetStateMatching RetargetState = "matching"
	// RetargetStateCorrectingRestPose はレスト姿勢補正中を表す。
	RetargetStateCorrectingRestPose RetargetState = "correcting_rest_pose"
	// RetargetStateCopyingFrames はフレーム複写中を表す。
	RetargetStateCopyingFrames RetargetState = "copying_frames"
	// RetargetStateDone は完了を表す。
	RetargetStateDone RetargetState = "done"
	// RetargetStateAborted は中断を表す。
	RetargetStateAborted RetargetState = "aborted"
)

// RetargetStatus は呼び出し元へ返す処理結果を表す。
type RetargetStatus string

const (
	// RetargetStatusFinished は正常終了を表す。
	RetargetStatusFinished RetargetStatus = "FINISHED"
	// RetargetStatusCancelled は中断を表す。
	RetargetStatusCancelled RetargetStatus = "CANCELLED"
)

// RetargetProgressEvent は移植処理の進捗イベントを表す。
type RetargetProgressEvent struct {
	State      RetargetState
	MatchCount int
	MatchDone  int
	FrameTotal int
}

// IRetargetProgressReporter は移植処理の進捗通知契約を表す。
type IRetargetProgressReporter interface {
	// ReportRetargetProgress は移植処理進捗を通知する。
	ReportRetargetProgress(event RetargetProgressEvent)
}

// RetargetRequest はアニメーション移植要求を表す。
type RetargetRequest struct {
	Host             moutput.ISkeletonHost
	RuleSet          *retarget.RuleSet
	MatchOptions     retarget.MatchOptions
	ProgressReporter IRetargetProgressReporter
}

// RetargetResult はアニメーション移植結果を表す。
type RetargetResult struct {
	RunID          string
	Status         RetargetStatus
	State          RetargetState
	Reason         string
	DryRun         bool
	OriginObject   string
	TargetObject   string
	OriginArmature string
	TargetArmature string
	Matches        []retarget.Match
	FrameCount     int
	KeyframeCount  int
	Warnings       []model.Warning
}

// StationaryRequest はルートボーン固定要求を表す。
type StationaryRequest struct {
	Host moutput.ISkeletonHost
	// RootName はルートボーン名の接尾辞。空の場合は "root" を使う。
	RootName string
}

// StationaryResult はルートボーン固定結果を表す。
type StationaryResult struct {
	RunID         string
	Status        RetargetStatus
	Reason        string
	Armature      string
	RootBone      string
	FrameCount    int
	KeyframeCount int
	Warnings      []model.Warning
}

// reportRetargetProgress は移植処理の進捗を通知する。
func reportRetargetProgress(reporter IRetargetProgressReporter, event RetargetProgressEvent) {
	if reporter == nil {
		return
	}
	reporter.ReportRetargetProgress(event)
}
