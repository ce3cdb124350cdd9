// 指示: miu200521358
package messages

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// supportedLanguages は翻訳を持つ言語。先頭が既定言語。
var supportedLanguages = []language.Tag{language.Japanese, language.English}

// japaneseTexts はキーと異なる日本語表示文言。
var japaneseTexts = map[string]string{
	HelpUsage: "2つのオブジェクトを選択し、非アクティブ側のアニメーションをアクティブ側へ移植します。\n" +
		"-scene で読み込むシーン(.yaml/.json/.glb/.gltf/.vrm)を指定します。",

	LabelScene:      "入力シーンファイルパス(.yaml/.json/.glb/.gltf/.vrm)。複数指定可",
	LabelRules:      "ボーン対応ルール文書パス。未指定時は組み込み対応表",
	LabelOutput:     "出力シーンファイルパス(.yaml/.json)",
	LabelOrigin:     "移植元オブジェクト名",
	LabelTarget:     "移植先オブジェクト名(アクティブ)",
	LabelStationary: "指定名のルートボーン移動を固定する(移植は行わない)",
}

// englishTexts は英語表示文言。
var englishTexts = map[string]string{
	HelpUsageTitle: "Usage",
	HelpUsage: "Select two objects and copy the animation of the inactive one onto the active one.\n" +
		"Use -scene to load scenes (.yaml/.json/.glb/.gltf/.vrm).",

	LabelScene:      "Input scene file (.yaml/.json/.glb/.gltf/.vrm); repeatable",
	LabelRules:      "Bone relation rule file; the built-in table when omitted",
	LabelOutput:     "Output scene file (.yaml/.json)",
	LabelOrigin:     "Origin object name",
	LabelTarget:     "Target object name (active)",
	LabelStationary: "Pin the location of the named root bone instead of retargeting",

	MessageLoadFailed:        "Load failed",
	MessageSaveFailed:        "Save failed",
	MessageRetargetFailed:    "Retarget failed",
	MessageStationaryFailed:  "Stationary failed",
	MessageSceneRequired:     "Specify at least one scene file (-scene)",
	MessageOutputExtInvalid:  "Output extension is not .yaml/.yml/.json: %s",
	MessageSelectionConflict: "Origin and target must be different objects: %s",

	LogLoadSuccess:       "Scene loaded: %s",
	LogRulesLoaded:       "Rules loaded: relations=%d",
	LogRetargetFinished:  "Retarget finished: %s -> %s matches=%d frames=%d keyframes=%d",
	LogDryRunFinished:    "Dry run finished: %s -> %s matches=%d frames=%d",
	LogStationaryDone:    "Stationary finished: %s bone=%s frames=%d",
	LogSaveSuccess:       "Scene saved: %s",
	LogWarning:           "Warning: %s",
	LogMatch:             "Match: rule=%d %s -> %s",
	LogCancelled:         "Cancelled: %s",
	LogBatchSummary:      "Batch summary: total=%d succeeded=%d failed=%d dry_run=%d",
	LogBatchEntryStarted: "[%d/%d] Retarget started: rules=%s",
}

// Keys は定義済みのメッセージキーを返す。
func Keys() []string {
	return []string{
		HelpUsageTitle, HelpUsage,
		LabelScene, LabelRules, LabelOutput, LabelOrigin, LabelTarget, LabelStationary,
		MessageLoadFailed, MessageSaveFailed, MessageRetargetFailed, MessageStationaryFailed,
		MessageSceneRequired, MessageOutputExtInvalid, MessageSelectionConflict,
		LogLoadSuccess, LogRulesLoaded, LogRetargetFinished, LogDryRunFinished, LogStationaryDone,
		LogSaveSuccess, LogWarning, LogMatch, LogCancelled, LogBatchSummary, LogBatchEntryStarted,
	}
}

// NewCatalog は日本語・英語の翻訳を登録したカタログを生成する。
func NewCatalog() (catalog.Catalog, error) {
	builder := catalog.NewBuilder(catalog.Fallback(language.Japanese))
	for _, key := range Keys() {
		japanese, ok := japaneseTexts[key]
		if !ok {
			japanese = key
		}
		if err := builder.SetString(language.Japanese, key, japanese); err != nil {
			return nil, err
		}
		if english, ok := englishTexts[key]; ok {
			if err := builder.SetString(language.English, key, english); err != nil {
				return nil, err
			}
		}
	}
	return builder, nil
}

// ResolveLanguage は言語指定文字列から対応言語を選ぶ。解決できない場合は日本語を返す。
func ResolveLanguage(lang string) language.Tag {
	if lang == "" {
		return supportedLanguages[0]
	}
	matcher := language.NewMatcher(supportedLanguages)
	_, index := language.MatchStrings(matcher, lang)
	return supportedLanguages[index]
}

// NewPrinter は言語指定に応じたメッセージプリンタを生成する。
func NewPrinter(lang string) (*message.Printer, error) {
	cat, err := NewCatalog()
	if err != nil {
		return nil, err
	}
	return message.NewPrinter(ResolveLanguage(lang), message.Catalog(cat)), nil
}
