// 指示: miu200521358
package model

import "fmt"

const (
	// WarningOffsetPositionDefaulted はオフセット位置省略によるゼロ補完警告。
	WarningOffsetPositionDefaulted = "WarningOffsetPositionDefaulted"
	// WarningOffsetOrientationDefaulted はオフセット回転省略による単位回転補完警告。
	WarningOffsetOrientationDefaulted = "WarningOffsetOrientationDefaulted"
	// WarningNoMatches はボーン対応が1件も見つからなかった警告。
	WarningNoMatches = "WarningNoMatches"
	// WarningLegacyRelations はルール未指定で組み込み対応表を使った警告。
	WarningLegacyRelations = "WarningLegacyRelations"
	// WarningGltfAnimationMissing はglTFにアニメーションが無い警告。
	WarningGltfAnimationMissing = "WarningGltfAnimationMissing"
	// WarningGltfChannelSkipped はglTFの未対応チャンネルを読み飛ばした警告。
	WarningGltfChannelSkipped = "WarningGltfChannelSkipped"
)

// Warning は処理を止めない注意事項を表す。
type Warning struct {
	ID      string
	Message string
}

// NewWarning は書式付きメッセージでWarningを生成する。
func NewWarning(id string, format string, params ...any) Warning {
	message := format
	if len(params) > 0 {
		message = fmt.Sprintf(format, params...)
	}
	return Warning{ID: id, Message: message}
}

// String は表示用文字列を返す。
func (w Warning) String() string {
	return w.Message
}
