// 指示: miu200521358
// Package model はシーン・アーマチュア・アニメーションのドメインモデルを提供する。
package model

import "github.com/tiendc/go-deepcopy"

// ObjectType はシーンオブジェクトの種別を表す。
type ObjectType string

const (
	// OBJECT_TYPE_ARMATURE はアーマチュアオブジェクト。
	OBJECT_TYPE_ARMATURE ObjectType = "ARMATURE"
	// OBJECT_TYPE_MESH はメッシュオブジェクト。
	OBJECT_TYPE_MESH ObjectType = "MESH"
	// OBJECT_TYPE_EMPTY は空オブジェクト。
	OBJECT_TYPE_EMPTY ObjectType = "EMPTY"
)

// SceneObject はシーン内のオブジェクトを表す。
type SceneObject struct {
	Name     string
	Type     ObjectType
	Parent   string
	Armature *Armature
}

// IsArmature はアーマチュアを持つアーマチュアオブジェクトか判定する。
func (o *SceneObject) IsArmature() bool {
	return o != nil && o.Type == OBJECT_TYPE_ARMATURE && o.Armature != nil
}

// Scene はオブジェクト集合と選択状態・現在フレームを保持する。
type Scene struct {
	Name         string
	Fps          float64
	CurrentFrame int
	Objects      []*SceneObject
	Selected     []string
	Active       string
}

// NewScene はSceneを生成する。
func NewScene(name string) *Scene {
	return &Scene{Name: name, Fps: 30}
}

// AddObject はオブジェクトを追加する。
func (s *Scene) AddObject(object *SceneObject) {
	if s == nil || object == nil {
		return
	}
	s.Objects = append(s.Objects, object)
}

// ObjectByName は名前一致のオブジェクトを返す。
func (s *Scene) ObjectByName(name string) (*SceneObject, bool) {
	if s == nil {
		return nil, false
	}
	for _, object := range s.Objects {
		if object != nil && object.Name == name {
			return object, true
		}
	}
	return nil, false
}

// Children は親名が一致するオブジェクトを登録順で返す。
func (s *Scene) Children(parent string) []*SceneObject {
	if s == nil {
		return nil
	}
	children := make([]*SceneObject, 0)
	for _, object := range s.Objects {
		if object != nil && object.Parent == parent && object.Name != parent {
			children = append(children, object)
		}
	}
	return children
}

// Select は選択状態とアクティブオブジェクトを設定する。
func (s *Scene) Select(active string, selected ...string) {
	if s == nil {
		return
	}
	s.Active = active
	s.Selected = append([]string(nil), selected...)
}

// ArmatureObjects はアーマチュアオブジェクトを登録順で返す。
func (s *Scene) ArmatureObjects() []*SceneObject {
	if s == nil {
		return nil
	}
	armatures := make([]*SceneObject, 0)
	for _, object := range s.Objects {
		if object.IsArmature() {
			armatures = append(armatures, object)
		}
	}
	return armatures
}

// Clone はシーン全体を深いコピーで複製する。
func (s *Scene) Clone() (*Scene, error) {
	if s == nil {
		return nil, nil
	}
	var cloned Scene
	if err := deepcopy.Copy(&cloned, *s); err != nil {
		return nil, err
	}
	return &cloned, nil
}

// Merge は other のオブジェクトを取り込む。名前が衝突したオブジェクトは取り込まず、その名前を返す。
func (s *Scene) Merge(other *Scene) []string {
	if s == nil || other == nil {
		return nil
	}
	conflicts := make([]string, 0)
	for _, object := range other.Objects {
		if object == nil {
			continue
		}
		if _, exists := s.ObjectByName(object.Name); exists {
			conflicts = append(conflicts, object.Name)
			continue
		}
		s.AddObject(object)
	}
	return conflicts
}
