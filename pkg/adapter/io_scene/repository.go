// 指示: miu200521358
package io_scene

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_retarget/pkg/shared/base/logging"
	"github.com/miu200521358/mu_retarget/pkg/usecase/port/moutput"
)

// SceneRepository はシーン文書ファイルを読み書きする。
type SceneRepository struct{}

// NewSceneRepository はSceneRepositoryを生成する。
func NewSceneRepository() *SceneRepository {
	return &SceneRepository{}
}

// CanLoad は対応拡張子か判定する。
func (r *SceneRepository) CanLoad(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Load はシーン文書を読み込む。JSONはYAMLの部分集合として同じ経路で解析する。
func (r *SceneRepository) Load(path string) (*model.Scene, error) {
	if !r.CanLoad(path) {
		return nil, merrors.NewModelLoadFailedError(path, merrors.NewMalformedInputError("", "未対応の拡張子です: %s", filepath.Ext(path)))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, merrors.NewModelLoadFailedError(path, err)
	}
	scene, err := Parse(data)
	if err != nil {
		return nil, merrors.WithSource(err, path)
	}
	if scene.Name == "" {
		scene.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	logSceneInfo("シーン読み込み: %s objects=%d armatures=%d", path, len(scene.Objects), len(scene.ArmatureObjects()))
	return scene, nil
}

// Save はシーンを拡張子に応じた形式で保存する。上書きしない指定で既存ファイルがある場合はエラーを返す。
func (r *SceneRepository) Save(path string, scene *model.Scene, opts moutput.SaveOptions) error {
	if !r.CanLoad(path) {
		return merrors.NewSceneSaveFailedError(path, merrors.NewMalformedInputError("", "未対応の拡張子です: %s", filepath.Ext(path)))
	}
	if !opts.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return merrors.NewSceneSaveFailedError(path, os.ErrExist)
		}
	}
	data, err := Marshal(scene, strings.EqualFold(filepath.Ext(path), ".json"))
	if err != nil {
		return merrors.NewSceneSaveFailedError(path, err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return merrors.NewSceneSaveFailedError(path, err)
	}
	tempPath := tempFile.Name()
	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return merrors.NewSceneSaveFailedError(path, err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return merrors.NewSceneSaveFailedError(path, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return merrors.NewSceneSaveFailedError(path, err)
	}
	logSceneInfo("シーン保存: %s bytes=%d", path, len(data))
	return nil
}

// Parse はシーン文書のバイト列を解析する。未知のキーは無視する。
func Parse(data []byte) (*model.Scene, error) {
	document := SceneDocument{}
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, merrors.NewMalformedInputError("", "シーン文書の解析に失敗しました: %v", err)
	}
	return document.ToScene()
}

// Marshal はシーンを文書のバイト列へ変換する。
func Marshal(scene *model.Scene, asJSON bool) ([]byte, error) {
	document := NewSceneDocument(scene)
	if asJSON {
		data, err := json.MarshalIndent(document, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	return yaml.Marshal(document)
}

// logSceneInfo はシーン入出力のINFOログを出力する。
func logSceneInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}
