// 指示: miu200521358
// Package merrors はリターゲット処理で使うエラーIDとエラー生成関数を提供する。
package merrors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/miu200521358/mu_retarget/pkg/shared/base/merr"
)

const (
	// SelectionErrorID は選択オブジェクト不正のエラーID。
	SelectionErrorID = "21101"
	// NoArmatureFoundErrorID はアーマチュア未検出のエラーID。
	NoArmatureFoundErrorID = "21102"
	// SameArmatureErrorID は移植元と移植先が同一アーマチュアのエラーID。
	SameArmatureErrorID = "21103"
	// NoAnimationErrorID はアニメーション未設定のエラーID。
	NoAnimationErrorID = "21104"
	// NoRootBoneErrorID はルートボーン未検出のエラーID。
	NoRootBoneErrorID = "21105"
	// MalformedInputErrorID は入力構造不正のエラーID。
	MalformedInputErrorID = "22101"
	// UnsupportedCodificationErrorID は未対応の回転表現のエラーID。
	UnsupportedCodificationErrorID = "22102"
	// ModelLoadFailedErrorID はモデル読み込み失敗のエラーID。
	ModelLoadFailedErrorID = "23101"
	// SceneSaveFailedErrorID はシーン保存失敗のエラーID。
	SceneSaveFailedErrorID = "23102"
	// HostOperationFailedErrorID はホスト操作失敗のエラーID。
	HostOperationFailedErrorID = "23201"
)

var (
	// ErrSelection は選択オブジェクト不正の判定用エラー。
	ErrSelection = merr.NewCommonError(SelectionErrorID, merr.ErrorKindValidate, "選択が不正です", nil)
	// ErrNoArmatureFound はアーマチュア未検出の判定用エラー。
	ErrNoArmatureFound = merr.NewCommonError(NoArmatureFoundErrorID, merr.ErrorKindNotFound, "アーマチュアが見つかりません", nil)
	// ErrSameArmature は同一アーマチュアの判定用エラー。
	ErrSameArmature = merr.NewCommonError(SameArmatureErrorID, merr.ErrorKindValidate, "移植元と移植先が同じアーマチュアです", nil)
	// ErrNoAnimation はアニメーション未設定の判定用エラー。
	ErrNoAnimation = merr.NewCommonError(NoAnimationErrorID, merr.ErrorKindNotFound, "アニメーションがありません", nil)
	// ErrNoRootBone はルートボーン未検出の判定用エラー。
	ErrNoRootBone = merr.NewCommonError(NoRootBoneErrorID, merr.ErrorKindNotFound, "ルートボーンが見つかりません", nil)
	// ErrMalformedInput は入力構造不正の判定用エラー。
	ErrMalformedInput = merr.NewCommonError(MalformedInputErrorID, merr.ErrorKindValidate, "入力が不正です", nil)
	// ErrUnsupportedCodification は未対応の回転表現の判定用エラー。
	ErrUnsupportedCodification = merr.NewCommonError(UnsupportedCodificationErrorID, merr.ErrorKindValidate, "未対応の回転表現です", nil)
)

// NewSelectionError は選択オブジェクト不正エラーを生成する。
func NewSelectionError(format string, params ...any) error {
	return merr.NewCommonError(SelectionErrorID, merr.ErrorKindValidate, formatMessage(format, params...), nil)
}

// NewNoArmatureFoundError はオブジェクト名付きのアーマチュア未検出エラーを生成する。
func NewNoArmatureFoundError(objectName string) error {
	return merr.NewCommonError(
		NoArmatureFoundErrorID,
		merr.ErrorKindNotFound,
		fmt.Sprintf("アーマチュアが見つかりません: %s", objectName),
		nil,
	)
}

// NewSameArmatureError は同一アーマチュアエラーを生成する。
func NewSameArmatureError(armatureName string) error {
	return merr.NewCommonError(
		SameArmatureErrorID,
		merr.ErrorKindValidate,
		fmt.Sprintf("移植元と移植先が同じアーマチュアです: %s", armatureName),
		nil,
	)
}

// NewNoAnimationError はアーマチュア名付きのアニメーション未設定エラーを生成する。
func NewNoAnimationError(armatureName string) error {
	return merr.NewCommonError(
		NoAnimationErrorID,
		merr.ErrorKindNotFound,
		fmt.Sprintf("アニメーションがありません: %s", armatureName),
		nil,
	)
}

// NewNoRootBoneError はルートボーン未検出エラーを生成する。
func NewNoRootBoneError(armatureName, rootName string) error {
	return merr.NewCommonError(
		NoRootBoneErrorID,
		merr.ErrorKindNotFound,
		fmt.Sprintf("ルートボーンが見つかりません: %s (%s)", armatureName, rootName),
		nil,
	)
}

// NewMalformedInputError はフィールドパス付きの入力構造不正エラーを生成する。
func NewMalformedInputError(field string, format string, params ...any) error {
	return merr.NewCommonError(
		MalformedInputErrorID,
		merr.ErrorKindValidate,
		withField(field, formatMessage(format, params...)),
		nil,
	)
}

// NewUnsupportedCodificationError は許可された表現一覧付きの未対応回転表現エラーを生成する。
func NewUnsupportedCodificationError(field, codification string, allowed []string) error {
	return merr.NewCommonError(
		UnsupportedCodificationErrorID,
		merr.ErrorKindValidate,
		withField(field, fmt.Sprintf(
			"未対応の回転表現です: %q (対応: %s)",
			codification,
			strings.Join(allowed, ", "),
		)),
		nil,
	)
}

// NewModelLoadFailedError はモデル読み込み失敗エラーを生成する。
func NewModelLoadFailedError(path string, cause error) error {
	return merr.NewCommonError(
		ModelLoadFailedErrorID,
		merr.ErrorKindInternal,
		fmt.Sprintf("モデル読み込みに失敗しました: %s", path),
		cause,
	)
}

// NewSceneSaveFailedError はシーン保存失敗エラーを生成する。
func NewSceneSaveFailedError(path string, cause error) error {
	return merr.NewCommonError(
		SceneSaveFailedErrorID,
		merr.ErrorKindInternal,
		fmt.Sprintf("シーン保存に失敗しました: %s", path),
		cause,
	)
}

// NewHostOperationFailedError はホスト操作失敗エラーを生成する。
func NewHostOperationFailedError(format string, params ...any) error {
	return merr.NewCommonError(HostOperationFailedErrorID, merr.ErrorKindInternal, formatMessage(format, params...), nil)
}

// WithSource はエラーIDと分類を保ったまま入力元の情報をメッセージ先頭へ付与する。
func WithSource(err error, source string) error {
	if err == nil || source == "" {
		return err
	}
	var common *merr.CommonError
	if !errors.As(err, &common) {
		return fmt.Errorf("%s: %w", source, err)
	}
	return merr.NewCommonError(
		common.ErrorID(),
		common.Kind(),
		fmt.Sprintf("%s: %s", source, common.Message()),
		common.Unwrap(),
	)
}

// IsSelectionError は選択オブジェクト不正エラーか判定する。
func IsSelectionError(err error) bool {
	return errors.Is(err, ErrSelection)
}

// IsNoArmatureFoundError はアーマチュア未検出エラーか判定する。
func IsNoArmatureFoundError(err error) bool {
	return errors.Is(err, ErrNoArmatureFound)
}

// IsSameArmatureError は同一アーマチュアエラーか判定する。
func IsSameArmatureError(err error) bool {
	return errors.Is(err, ErrSameArmature)
}

// IsNoAnimationError はアニメーション未設定エラーか判定する。
func IsNoAnimationError(err error) bool {
	return errors.Is(err, ErrNoAnimation)
}

// IsNoRootBoneError はルートボーン未検出エラーか判定する。
func IsNoRootBoneError(err error) bool {
	return errors.Is(err, ErrNoRootBone)
}

// IsMalformedInputError は入力構造不正エラーか判定する。未対応の回転表現も入力構造不正に含む。
func IsMalformedInputError(err error) bool {
	return errors.Is(err, ErrMalformedInput) || errors.Is(err, ErrUnsupportedCodification)
}

// IsUnsupportedCodificationError は未対応の回転表現エラーか判定する。
func IsUnsupportedCodificationError(err error) bool {
	return errors.Is(err, ErrUnsupportedCodification)
}

// formatMessage は引数がある場合のみ書式展開する。
func formatMessage(format string, params ...any) string {
	if len(params) == 0 {
		return format
	}
	return fmt.Sprintf(format, params...)
}

// withField はフィールドパスをメッセージへ付与する。
func withField(field, message string) string {
	if field == "" {
		return message
	}
	return fmt.Sprintf("%s: %s", field, message)
}
