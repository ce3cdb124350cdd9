// 指示: miu200521358
package minteractor

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_retarget/pkg/shared/base/merr"
	"github.com/miu200521358/mu_retarget/pkg/usecase/port/moutput"
)

// stubSceneReader は拡張子ごとに決まったシーンを返す。
type stubSceneReader struct {
	ext    string
	scenes map[string]*model.Scene
}

// CanLoad は拡張子が一致するか判定する。
func (r *stubSceneReader) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), r.ext)
}

// Load は登録済みのシーンを返す。
func (r *stubSceneReader) Load(path string) (*model.Scene, error) {
	scene, ok := r.scenes[path]
	if !ok {
		return nil, errors.New("not found")
	}
	return scene, nil
}

// stubSceneWriter は保存要求を記録する。
type stubSceneWriter struct {
	path  string
	scene *model.Scene
	opts  moutput.SaveOptions
}

// Save は保存要求を記録する。
func (w *stubSceneWriter) Save(path string, scene *model.Scene, opts moutput.SaveOptions) error {
	w.path = path
	w.scene = scene
	w.opts = opts
	return nil
}

func newSceneWithObjectsForTest(active string, names ...string) *model.Scene {
	scene := model.NewScene("scene")
	for _, name := range names {
		scene.AddObject(&model.SceneObject{Name: name, Type: model.OBJECT_TYPE_ARMATURE, Armature: model.NewArmature(name)})
	}
	if active != "" {
		scene.Select(active, names...)
	}
	return scene
}

func TestLoadSceneMergesFiles(t *testing.T) {
	yamlReader := &stubSceneReader{ext: ".yaml", scenes: map[string]*model.Scene{
		"a.yaml": newSceneWithObjectsForTest("", "source"),
	}}
	glbReader := &stubSceneReader{ext: ".glb", scenes: map[string]*model.Scene{
		"b.glb": newSceneWithObjectsForTest("target", "target"),
	}}
	uc := NewRetargetUsecase(RetargetUsecaseDeps{SceneReaders: []moutput.ISceneReader{yamlReader, glbReader}})

	scene, err := uc.LoadScene("a.yaml", "b.glb")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(scene.Objects) != 2 {
		t.Fatalf("object count mismatch: %d", len(scene.Objects))
	}
	if scene.Active != "target" {
		t.Fatalf("selection should come from the second scene: %q", scene.Active)
	}
}

func TestLoadSceneRejectsConflictsAndUnknownFormats(t *testing.T) {
	reader := &stubSceneReader{ext: ".yaml", scenes: map[string]*model.Scene{
		"a.yaml": newSceneWithObjectsForTest("", "rig"),
		"b.yaml": newSceneWithObjectsForTest("", "rig"),
	}}
	uc := NewRetargetUsecase(RetargetUsecaseDeps{SceneReaders: []moutput.ISceneReader{reader}})

	if _, err := uc.LoadScene("a.yaml", "b.yaml"); !merrors.IsMalformedInputError(err) {
		t.Fatalf("expected malformed input, got %v", err)
	}
	_, err := uc.LoadScene("a.fbx")
	if merr.ExtractErrorID(err) != merrors.ModelLoadFailedErrorID {
		t.Fatalf("expected load failure, got %v", err)
	}
	if _, err := uc.LoadScene(); err == nil {
		t.Fatalf("expected error for empty paths")
	}
}

func TestSaveSceneDelegatesToWriter(t *testing.T) {
	writer := &stubSceneWriter{}
	uc := NewRetargetUsecase(RetargetUsecaseDeps{SceneWriter: writer})
	scene := model.NewScene("out")

	if err := uc.SaveScene("out.yaml", scene, moutput.SaveOptions{Overwrite: true}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if writer.path != "out.yaml" || writer.scene != scene || !writer.opts.Overwrite {
		t.Fatalf("writer mismatch: %+v", writer)
	}
	if err := uc.SaveScene("", scene, moutput.SaveOptions{}); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
