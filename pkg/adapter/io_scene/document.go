// 指示: miu200521358
// Package io_scene はシーン文書(JSON/YAML)の読み書きを提供する。
package io_scene

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/domain/model/merrors"
)

// SceneDocument はシーン文書の最上位を表す。
type SceneDocument struct {
	Name         string           `json:"name" yaml:"name"`
	Fps          float64          `json:"fps,omitempty" yaml:"fps,omitempty"`
	CurrentFrame int              `json:"current_frame" yaml:"current_frame"`
	Active       string           `json:"active,omitempty" yaml:"active,omitempty"`
	Selected     []string         `json:"selected,omitempty" yaml:"selected,omitempty"`
	Objects      []ObjectDocument `json:"objects" yaml:"objects"`
}

// ObjectDocument はシーンオブジェクトを表す。
type ObjectDocument struct {
	Name     string            `json:"name" yaml:"name"`
	Type     string            `json:"type,omitempty" yaml:"type,omitempty"`
	Parent   string            `json:"parent,omitempty" yaml:"parent,omitempty"`
	Armature *ArmatureDocument `json:"armature,omitempty" yaml:"armature,omitempty"`
}

// ArmatureDocument はアーマチュアを表す。
type ArmatureDocument struct {
	Name      string             `json:"name,omitempty" yaml:"name,omitempty"`
	PoseMode  string             `json:"pose_mode,omitempty" yaml:"pose_mode,omitempty"`
	Bones     []BoneDocument     `json:"bones" yaml:"bones"`
	Animation *AnimationDocument `json:"animation,omitempty" yaml:"animation,omitempty"`
}

// BoneDocument はボーンを表す。Head と RestRotation でアーマチュア空間のレスト行列を表す。
type BoneDocument struct {
	Name         string    `json:"name" yaml:"name"`
	Parent       string    `json:"parent,omitempty" yaml:"parent,omitempty"`
	Connected    bool      `json:"connected,omitempty" yaml:"connected,omitempty"`
	Head         []float64 `json:"head,omitempty" yaml:"head,omitempty,flow"`
	RestRotation []float64 `json:"rest_rotation,omitempty" yaml:"rest_rotation,omitempty,flow"`
	Location     []float64 `json:"location,omitempty" yaml:"location,omitempty,flow"`
	Rotation     []float64 `json:"rotation,omitempty" yaml:"rotation,omitempty,flow"`
}

// AnimationDocument はアニメーションを表す。
type AnimationDocument struct {
	Name   string          `json:"name" yaml:"name"`
	Tracks []TrackDocument `json:"tracks" yaml:"tracks"`
}

// TrackDocument は1ボーン分のキーフレーム列を表す。
type TrackDocument struct {
	Bone     string             `json:"bone" yaml:"bone"`
	Location []KeyframeDocument `json:"location,omitempty" yaml:"location,omitempty"`
	Rotation []KeyframeDocument `json:"rotation,omitempty" yaml:"rotation,omitempty"`
}

// KeyframeDocument は1キーフレームを表す。
type KeyframeDocument struct {
	Frame float64   `json:"frame" yaml:"frame"`
	Value []float64 `json:"value" yaml:"value,flow"`
}

// ToScene は文書を検証してシーンへ変換する。
func (d *SceneDocument) ToScene() (*model.Scene, error) {
	if d == nil {
		return nil, merrors.NewMalformedInputError("", "シーン文書が空です")
	}
	scene := model.NewScene(d.Name)
	if d.Fps < 0 {
		return nil, merrors.NewMalformedInputError("fps", "フレームレートが不正です: %f", d.Fps)
	}
	if d.Fps > 0 {
		scene.Fps = d.Fps
	}
	scene.CurrentFrame = d.CurrentFrame

	for i, objectDoc := range d.Objects {
		path := fmt.Sprintf("objects[%d]", i)
		object, err := objectDoc.toObject(path)
		if err != nil {
			return nil, err
		}
		if _, exists := scene.ObjectByName(object.Name); exists {
			return nil, merrors.NewMalformedInputError(path+".name", "オブジェクト名が重複しています: %s", object.Name)
		}
		scene.AddObject(object)
	}

	for i, name := range d.Selected {
		if _, ok := scene.ObjectByName(name); !ok {
			return nil, merrors.NewMalformedInputError(fmt.Sprintf("selected[%d]", i), "オブジェクトが見つかりません: %s", name)
		}
	}
	if d.Active != "" {
		if _, ok := scene.ObjectByName(d.Active); !ok {
			return nil, merrors.NewMalformedInputError("active", "オブジェクトが見つかりません: %s", d.Active)
		}
	}
	scene.Select(d.Active, d.Selected...)
	return scene, nil
}

// toObject はオブジェクト文書を変換する。
func (d ObjectDocument) toObject(path string) (*model.SceneObject, error) {
	if d.Name == "" {
		return nil, merrors.NewMalformedInputError(path+".name", "名前がありません")
	}
	objectType, err := parseObjectType(d.Type, d.Armature != nil)
	if err != nil {
		return nil, merrors.WithSource(err, path+".type")
	}
	object := &model.SceneObject{Name: d.Name, Type: objectType, Parent: d.Parent}
	if d.Armature != nil {
		if objectType != model.OBJECT_TYPE_ARMATURE {
			return nil, merrors.NewMalformedInputError(path+".armature", "アーマチュア以外にボーンは設定できません")
		}
		armature, err := d.Armature.toArmature(d.Name, path+".armature")
		if err != nil {
			return nil, err
		}
		object.Armature = armature
	}
	return object, nil
}

// toArmature はアーマチュア文書を変換する。
func (d *ArmatureDocument) toArmature(objectName, path string) (*model.Armature, error) {
	name := d.Name
	if name == "" {
		name = objectName
	}
	armature := model.NewArmature(name)
	switch strings.ToUpper(d.PoseMode) {
	case "", string(model.POSE_MODE_POSE):
		armature.PoseMode = model.POSE_MODE_POSE
	case string(model.POSE_MODE_REST):
		armature.PoseMode = model.POSE_MODE_REST
	default:
		return nil, merrors.NewMalformedInputError(path+".pose_mode", "姿勢モードが不正です: %s", d.PoseMode)
	}

	for i, boneDoc := range d.Bones {
		bonePath := fmt.Sprintf("%s.bones[%d]", path, i)
		bone, err := boneDoc.toBone(bonePath)
		if err != nil {
			return nil, err
		}
		if _, exists := armature.BoneByName(bone.Name); exists {
			return nil, merrors.NewMalformedInputError(bonePath+".name", "ボーン名が重複しています: %s", bone.Name)
		}
		armature.AddBone(bone)
	}
	for i, bone := range armature.Bones {
		if bone.Parent == "" {
			continue
		}
		if _, ok := armature.BoneByName(bone.Parent); !ok {
			return nil, merrors.NewMalformedInputError(fmt.Sprintf("%s.bones[%d].parent", path, i), "親ボーンが見つかりません: %s", bone.Parent)
		}
	}

	if d.Animation != nil {
		animation, err := d.Animation.toAnimation(armature, path+".animation")
		if err != nil {
			return nil, err
		}
		armature.Animation = animation
	}
	return armature, nil
}

// toBone はボーン文書を変換する。
func (d BoneDocument) toBone(path string) (*model.Bone, error) {
	if d.Name == "" {
		return nil, merrors.NewMalformedInputError(path+".name", "名前がありません")
	}
	head, err := vec3OrDefault(d.Head, mmath.ZERO_VEC3, path+".head")
	if err != nil {
		return nil, err
	}
	restRotation, err := quaternionOrDefault(d.RestRotation, path+".rest_rotation")
	if err != nil {
		return nil, err
	}
	bone := model.NewBone(d.Name, d.Parent, mmath.NewMat4FromTranslationRotation(head, restRotation))
	bone.Connected = d.Connected
	if bone.Location, err = vec3OrDefault(d.Location, mmath.ZERO_VEC3, path+".location"); err != nil {
		return nil, err
	}
	if bone.Rotation, err = quaternionOrDefault(d.Rotation, path+".rotation"); err != nil {
		return nil, err
	}
	return bone, nil
}

// toAnimation はアニメーション文書を変換する。
func (d *AnimationDocument) toAnimation(armature *model.Armature, path string) (*model.Animation, error) {
	animation := model.NewAnimation(d.Name)
	for i, trackDoc := range d.Tracks {
		trackPath := fmt.Sprintf("%s.tracks[%d]", path, i)
		if _, ok := armature.BoneByName(trackDoc.Bone); !ok {
			return nil, merrors.NewMalformedInputError(trackPath+".bone", "ボーンが見つかりません: %s", trackDoc.Bone)
		}
		track := animation.EnsureTrack(trackDoc.Bone)
		for k, key := range trackDoc.Location {
			if key.Value == nil {
				return nil, merrors.NewMalformedInputError(fmt.Sprintf("%s.location[%d].value", trackPath, k), "値がありません")
			}
			value, err := vec3OrDefault(key.Value, mmath.ZERO_VEC3, fmt.Sprintf("%s.location[%d].value", trackPath, k))
			if err != nil {
				return nil, err
			}
			track.SetLocation(key.Frame, value)
		}
		for k, key := range trackDoc.Rotation {
			if key.Value == nil {
				return nil, merrors.NewMalformedInputError(fmt.Sprintf("%s.rotation[%d].value", trackPath, k), "値がありません")
			}
			value, err := quaternionOrDefault(key.Value, fmt.Sprintf("%s.rotation[%d].value", trackPath, k))
			if err != nil {
				return nil, err
			}
			track.SetRotation(key.Frame, value)
		}
	}
	return animation, nil
}

// NewSceneDocument はシーンを文書へ変換する。
func NewSceneDocument(scene *model.Scene) *SceneDocument {
	if scene == nil {
		return &SceneDocument{}
	}
	d := &SceneDocument{
		Name:         scene.Name,
		Fps:          scene.Fps,
		CurrentFrame: scene.CurrentFrame,
		Active:       scene.Active,
		Selected:     append([]string(nil), scene.Selected...),
		Objects:      make([]ObjectDocument, 0, len(scene.Objects)),
	}
	for _, object := range scene.Objects {
		if object == nil {
			continue
		}
		objectDoc := ObjectDocument{Name: object.Name, Type: string(object.Type), Parent: object.Parent}
		if object.Armature != nil {
			objectDoc.Armature = newArmatureDocument(object.Armature)
		}
		d.Objects = append(d.Objects, objectDoc)
	}
	return d
}

// newArmatureDocument はアーマチュアを文書へ変換する。
func newArmatureDocument(armature *model.Armature) *ArmatureDocument {
	d := &ArmatureDocument{
		Name:     armature.Name,
		PoseMode: string(armature.PoseMode),
		Bones:    make([]BoneDocument, 0, len(armature.Bones)),
	}
	for _, bone := range armature.Bones {
		if bone == nil {
			continue
		}
		d.Bones = append(d.Bones, BoneDocument{
			Name:         bone.Name,
			Parent:       bone.Parent,
			Connected:    bone.Connected,
			Head:         bone.Rest.Translation().Slice(),
			RestRotation: bone.Rest.Rotation().Slice(),
			Location:     bone.Location.Slice(),
			Rotation:     bone.Rotation.Slice(),
		})
	}
	if armature.Animation != nil {
		animation := &AnimationDocument{
			Name:   armature.Animation.Name,
			Tracks: make([]TrackDocument, 0, len(armature.Animation.Tracks)),
		}
		for _, track := range armature.Animation.Tracks {
			if track == nil {
				continue
			}
			trackDoc := TrackDocument{Bone: track.BoneName}
			for _, key := range track.Locations {
				trackDoc.Location = append(trackDoc.Location, KeyframeDocument{Frame: key.Frame, Value: key.Value.Slice()})
			}
			for _, key := range track.Rotations {
				trackDoc.Rotation = append(trackDoc.Rotation, KeyframeDocument{Frame: key.Frame, Value: key.Value.Slice()})
			}
			animation.Tracks = append(animation.Tracks, trackDoc)
		}
		d.Animation = animation
	}
	return d
}

// parseObjectType はオブジェクト種別を解釈する。省略時はアーマチュアの有無で決める。
func parseObjectType(value string, hasArmature bool) (model.ObjectType, error) {
	switch strings.ToUpper(value) {
	case "":
		if hasArmature {
			return model.OBJECT_TYPE_ARMATURE, nil
		}
		return model.OBJECT_TYPE_EMPTY, nil
	case string(model.OBJECT_TYPE_ARMATURE):
		return model.OBJECT_TYPE_ARMATURE, nil
	case string(model.OBJECT_TYPE_MESH):
		return model.OBJECT_TYPE_MESH, nil
	case string(model.OBJECT_TYPE_EMPTY):
		return model.OBJECT_TYPE_EMPTY, nil
	default:
		return "", merrors.NewMalformedInputError("", "オブジェクト種別が不正です: %s", value)
	}
}

// vec3OrDefault は3要素の配列をVec3へ変換する。空の場合は既定値を返す。
func vec3OrDefault(values []float64, defaultValue mmath.Vec3, path string) (mmath.Vec3, error) {
	if len(values) == 0 {
		return defaultValue, nil
	}
	v, err := mmath.NewVec3FromSlice(values)
	if err != nil {
		return mmath.ZERO_VEC3, merrors.NewMalformedInputError(path, "%v", err)
	}
	return v, nil
}

// quaternionOrDefault は [x, y, z, w] をクォータニオンへ変換する。空の場合は恒等回転を返す。
func quaternionOrDefault(values []float64, path string) (mmath.Quaternion, error) {
	if len(values) == 0 {
		return mmath.NewQuaternion(), nil
	}
	if len(values) != 4 {
		return mmath.NewQuaternion(), merrors.NewMalformedInputError(path, "クォータニオンの要素数が不正です: %d", len(values))
	}
	q := mmath.NewQuaternionByValues(values[0], values[1], values[2], values[3])
	if q.Length() == 0 {
		return mmath.NewQuaternion(), merrors.NewMalformedInputError(path, "クォータニオンの長さが0です")
	}
	return q.Normalized(), nil
}
