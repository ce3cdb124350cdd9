// 指示: miu200521358
// Package retarget はボーン対応ルール・オフセット変換・ボーン照合のドメインロジックを提供する。
package retarget

import "github.com/miu200521358/mu_retarget/pkg/domain/mmath"

// Transform は回転と平行移動の組を表す不変値。nil の成分は恒等として扱う。
type Transform struct {
	rotation    *mmath.Mat3
	translation *mmath.Vec3
}

// NewTransform は回転と平行移動からTransformを生成する。nil は恒等成分を表す。
func NewTransform(rotation *mmath.Mat3, translation *mmath.Vec3) Transform {
	transform := Transform{}
	if rotation != nil {
		r := *rotation
		transform.rotation = &r
	}
	if translation != nil {
		t := *translation
		transform.translation = &t
	}
	return transform
}

// NewIdentityTransform は単位回転とゼロ移動を明示したTransformを生成する。
func NewIdentityTransform() Transform {
	rotation := mmath.NewMat3()
	translation := mmath.ZERO_VEC3
	return NewTransform(&rotation, &translation)
}

// Rotation は回転成分を返す。未設定の場合は単位行列と false を返す。
func (t Transform) Rotation() (mmath.Mat3, bool) {
	if t.rotation == nil {
		return mmath.NewMat3(), false
	}
	return *t.rotation, true
}

// Translation は平行移動成分を返す。未設定の場合はゼロベクトルと false を返す。
func (t Transform) Translation() (mmath.Vec3, bool) {
	if t.translation == nil {
		return mmath.ZERO_VEC3, false
	}
	return *t.translation, true
}

// IsEmpty は回転・平行移動ともに未設定か判定する。
func (t Transform) IsEmpty() bool {
	return t.rotation == nil && t.translation == nil
}

// BuildMatrix は Translation(t) * Rotation(R) の同次変換行列を返す。
func (t Transform) BuildMatrix() mmath.Mat4 {
	rotation, _ := t.Rotation()
	translation, _ := t.Translation()
	return translation.ToMat4().Muled(rotation.ToMat4())
}

// ApplyTo は現在の姿勢行列へオフセットを右から掛けた補正後レスト行列を返す。
func (t Transform) ApplyTo(current mmath.Mat4) mmath.Mat4 {
	return current.Muled(t.BuildMatrix())
}
