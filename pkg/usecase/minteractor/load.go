// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_retarget/pkg/domain/retarget"
	"github.com/miu200521358/mu_retarget/pkg/usecase/port/moutput"
)

// LoadScene はパスごとに対応するリポジトリで読み込み、1つのシーンへ統合する。
// 選択状態は最初に選択を持つシーンのものを使う。
func (uc *RetargetUsecase) LoadScene(paths ...string) (*model.Scene, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("シーンファイルが未指定です")
	}
	var merged *model.Scene
	for _, path := range paths {
		reader, err := uc.sceneReaderFor(path)
		if err != nil {
			return nil, err
		}
		scene, err := reader.Load(path)
		if err != nil {
			return nil, err
		}
		if merged == nil {
			merged = scene
			continue
		}
		if conflicts := merged.Merge(scene); len(conflicts) > 0 {
			return nil, merrors.NewMalformedInputError(path, "オブジェクト名が重複しています: %s", strings.Join(conflicts, ", "))
		}
		if merged.Active == "" && len(merged.Selected) == 0 {
			merged.Select(scene.Active, scene.Selected...)
		}
	}
	logRetargetInfo("シーン読込完了: files=%d objects=%d", len(paths), len(merged.Objects))
	return merged, nil
}

// LoadRuleSet はルール文書を読み込む。パスが空の場合は組み込み対応表を使い、警告を付ける。
func (uc *RetargetUsecase) LoadRuleSet(path string) (*retarget.RuleSet, error) {
	if strings.TrimSpace(path) == "" {
		if uc.legacyTable == nil {
			return nil, fmt.Errorf("組み込み対応表が設定されていません")
		}
		ruleSet := retarget.NewLegacyRuleSet(uc.legacyTable)
		ruleSet.Warnings = append(ruleSet.Warnings, model.NewWarning(
			model.WarningLegacyRelations,
			"ルール文書が未指定のため組み込み対応表を使います: relations=%d",
			ruleSet.Len(),
		))
		return ruleSet, nil
	}
	if uc.ruleReader == nil {
		return nil, fmt.Errorf("ルール読み込みリポジトリが設定されていません")
	}
	return uc.ruleReader.Load(path)
}

// sceneReaderFor はパスを読み込めるリポジトリを返す。
func (uc *RetargetUsecase) sceneReaderFor(path string) (moutput.ISceneReader, error) {
	for _, reader := range uc.sceneReaders {
		if reader != nil && reader.CanLoad(path) {
			return reader, nil
		}
	}
	return nil, merrors.NewModelLoadFailedError(path, fmt.Errorf("対応する読み込みリポジトリがありません"))
}
