// 指示: miu200521358
// Package messages はCLI表示に使うメッセージキーと翻訳カタログを提供する。
package messages

// メッセージキー一覧。
const (
	HelpUsageTitle = "使い方"
	HelpUsage      = "使い方説明"

	LabelScene      = "シーン入力"
	LabelRules      = "ルール入力"
	LabelOutput     = "シーン出力"
	LabelOrigin     = "移植元"
	LabelTarget     = "移植先"
	LabelStationary = "ルート固定"

	MessageLoadFailed        = "読み込み失敗"
	MessageSaveFailed        = "保存失敗"
	MessageRetargetFailed    = "移植失敗"
	MessageStationaryFailed  = "ルート固定失敗"
	MessageSceneRequired     = "シーンファイルを指定してください (-scene)"
	MessageOutputExtInvalid  = "出力拡張子が .yaml/.yml/.json ではありません: %s"
	MessageSelectionConflict = "移植元と移植先に同じオブジェクトは指定できません: %s"

	LogLoadSuccess       = "シーン読み込み成功: %s"
	LogRulesLoaded       = "ルール読み込み成功: relations=%d"
	LogRetargetFinished  = "移植完了: %s -> %s matches=%d frames=%d keyframes=%d"
	LogDryRunFinished    = "照合のみ完了: %s -> %s matches=%d frames=%d"
	LogStationaryDone    = "ルート固定完了: %s bone=%s frames=%d"
	LogSaveSuccess       = "シーン保存成功: %s"
	LogWarning           = "警告: %s"
	LogMatch             = "対応: rule=%d %s -> %s"
	LogCancelled         = "中断: %s"
	LogBatchSummary      = "バッチ移植サマリ: total=%d succeeded=%d failed=%d dry_run=%d"
	LogBatchEntryStarted = "[%d/%d] 移植開始: rules=%s"
)
