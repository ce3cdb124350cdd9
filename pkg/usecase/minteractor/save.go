// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/usecase/port/moutput"
)

// SaveScene はシーンを保存する。
func (uc *RetargetUsecase) SaveScene(path string, scene *model.Scene, opts moutput.SaveOptions) error {
	if uc.sceneWriter == nil {
		return fmt.Errorf("シーン保存リポジトリが設定されていません")
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("保存先パスが未指定です")
	}
	if scene == nil {
		return fmt.Errorf("保存対象シーンが未設定です")
	}
	return uc.sceneWriter.Save(path, scene, opts)
}
