// 指示: miu200521358
package model

import "github.com/miu200521358/mu_retarget/pkg/domain/mmath"

// PoseMode はアーマチュアの姿勢表示モードを表す。
type PoseMode string

const (
	// POSE_MODE_POSE はアニメーション姿勢を評価するモード。
	POSE_MODE_POSE PoseMode = "POSE"
	// POSE_MODE_REST はレスト姿勢を評価するモード。
	POSE_MODE_REST PoseMode = "REST"
)

// Bone はアーマチュア内のボーンを表す。
// Rest はアーマチュア空間のレスト行列、Location/Rotation はレスト基準のローカル姿勢を表す。
type Bone struct {
	Name      string
	Parent    string
	Connected bool
	Rest      mmath.Mat4
	Location  mmath.Vec3
	Rotation  mmath.Quaternion
}

// NewBone はレスト行列を指定してBoneを生成する。
func NewBone(name, parent string, rest mmath.Mat4) *Bone {
	return &Bone{
		Name:     name,
		Parent:   parent,
		Rest:     rest,
		Location: mmath.ZERO_VEC3,
		Rotation: mmath.NewQuaternion(),
	}
}

// Armature はボーン木とアクティブアニメーションを保持する。
type Armature struct {
	Name      string
	PoseMode  PoseMode
	Bones     []*Bone
	Animation *Animation
}

// NewArmature はArmatureを生成する。
func NewArmature(name string) *Armature {
	return &Armature{Name: name, PoseMode: POSE_MODE_POSE}
}

// AddBone はボーンを追加する。
func (a *Armature) AddBone(bone *Bone) {
	if a == nil || bone == nil {
		return
	}
	a.Bones = append(a.Bones, bone)
}

// BoneByName は名前一致のボーンを返す。
func (a *Armature) BoneByName(name string) (*Bone, bool) {
	if a == nil {
		return nil, false
	}
	for _, bone := range a.Bones {
		if bone != nil && bone.Name == name {
			return bone, true
		}
	}
	return nil, false
}

// BoneNames はボーン名を登録順で返す。
func (a *Armature) BoneNames() []string {
	if a == nil {
		return nil
	}
	names := make([]string, 0, len(a.Bones))
	for _, bone := range a.Bones {
		if bone != nil {
			names = append(names, bone.Name)
		}
	}
	return names
}

// ChildBones は直下の子ボーンを登録順で返す。
func (a *Armature) ChildBones(parent string) []*Bone {
	if a == nil {
		return nil
	}
	children := make([]*Bone, 0)
	for _, bone := range a.Bones {
		if bone != nil && bone.Parent == parent && bone.Name != parent {
			children = append(children, bone)
		}
	}
	return children
}
