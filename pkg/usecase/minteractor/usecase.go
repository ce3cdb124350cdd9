// 指示: miu200521358
// Package minteractor はアニメーション移植のユースケースを提供する。
package minteractor

import (
	"github.com/miu200521358/mu_retarget/pkg/domain/retarget"
	"github.com/miu200521358/mu_retarget/pkg/shared/base/logging"
	"github.com/miu200521358/mu_retarget/pkg/usecase/port/moutput"
)

// RetargetUsecaseDeps はアニメーション移植ユースケースの依存を表す。
type RetargetUsecaseDeps struct {
	// SceneReaders は拡張子ごとのシーン読み込みリポジトリ。先頭から CanLoad で選ぶ。
	SceneReaders []moutput.ISceneReader
	SceneWriter  moutput.ISceneWriter
	RuleReader   moutput.IRuleReader
	// LegacyTable はルール文書未指定時に使う組み込み対応表。
	LegacyTable *retarget.LegacyRelationTable
}

// RetargetUsecase はシーン読込・ルール読込・移植・保存をまとめたユースケースを表す。
type RetargetUsecase struct {
	sceneReaders []moutput.ISceneReader
	sceneWriter  moutput.ISceneWriter
	ruleReader   moutput.IRuleReader
	legacyTable  *retarget.LegacyRelationTable
}

// NewRetargetUsecase はアニメーション移植ユースケースを生成する。
func NewRetargetUsecase(deps RetargetUsecaseDeps) *RetargetUsecase {
	return &RetargetUsecase{
		sceneReaders: append([]moutput.ISceneReader(nil), deps.SceneReaders...),
		sceneWriter:  deps.SceneWriter,
		ruleReader:   deps.RuleReader,
		legacyTable:  deps.LegacyTable,
	}
}

// logRetargetInfo は移植処理のINFOログを出力する。
func logRetargetInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logRetargetDebug は移植処理のDEBUGログを出力する。
func logRetargetDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// logRetargetWarn は移植処理の警告ログを出力する。
func logRetargetWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}
