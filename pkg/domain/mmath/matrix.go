// 指示: miu200521358
package mmath

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mat3 は列優先の3x3行列を表す。
type Mat3 mgl64.Mat3

// Mat4 は列優先の4x4同次変換行列を表す。
type Mat4 mgl64.Mat4

// NewMat3 は単位行列を生成する。
func NewMat3() Mat3 {
	return Mat3(mgl64.Ident3())
}

// NewMat3FromRows は行ベクトルから3x3行列を生成する。
func NewMat3FromRows(row0, row1, row2 Vec3) Mat3 {
	return Mat3(mgl64.Mat3FromRows(row0.toMgl(), row1.toMgl(), row2.toMgl()))
}

// NewMat3RotationX はX軸回りの回転行列を生成する。
func NewMat3RotationX(angle float64) Mat3 {
	return Mat3(mgl64.Rotate3DX(angle))
}

// NewMat3RotationY はY軸回りの回転行列を生成する。
func NewMat3RotationY(angle float64) Mat3 {
	return Mat3(mgl64.Rotate3DY(angle))
}

// NewMat3RotationZ はZ軸回りの回転行列を生成する。
func NewMat3RotationZ(angle float64) Mat3 {
	return Mat3(mgl64.Rotate3DZ(angle))
}

// NewMat3FromAxisAngle は軸と角度(ラジアン)から回転行列を生成する。軸が長さ0の場合は単位行列を返す。
func NewMat3FromAxisAngle(axis Vec3, angle float64) Mat3 {
	return NewQuaternionFromAxisAngle(axis, angle).ToMat3()
}

// At は row 行 col 列の要素を返す。
func (m Mat3) At(row, col int) float64 {
	return m.toMgl().At(row, col)
}

// Muled は m * other を返す。
func (m Mat3) Muled(other Mat3) Mat3 {
	return Mat3(m.toMgl().Mul3(other.toMgl()))
}

// MulVec3 は m * v を返す。
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return vec3FromMgl(m.toMgl().Mul3x1(v.toMgl()))
}

// ToMat4 は同次変換行列へ拡張する。
func (m Mat3) ToMat4() Mat4 {
	return Mat4(m.toMgl().Mat4())
}

// NearEquals は各要素が許容誤差内で一致するか判定する。
func (m Mat3) NearEquals(other Mat3, epsilon float64) bool {
	return m.toMgl().ApproxFuncEqual(other.toMgl(), absoluteEqualFunc(epsilon))
}

// String は表示用文字列を返す。
func (m Mat3) String() string {
	return fmt.Sprintf("[%.6f %.6f %.6f; %.6f %.6f %.6f; %.6f %.6f %.6f]",
		m.At(0, 0), m.At(0, 1), m.At(0, 2),
		m.At(1, 0), m.At(1, 1), m.At(1, 2),
		m.At(2, 0), m.At(2, 1), m.At(2, 2))
}

// toMgl はmgl64の行列へ変換する。
func (m Mat3) toMgl() mgl64.Mat3 {
	return mgl64.Mat3(m)
}

// NewMat4 は単位行列を生成する。
func NewMat4() Mat4 {
	return Mat4(mgl64.Ident4())
}

// NewMat4FromTranslationRotation は T * R の同次変換行列を生成する。
func NewMat4FromTranslationRotation(translation Vec3, rotation Quaternion) Mat4 {
	return translation.ToMat4().Muled(rotation.ToMat4())
}

// At は row 行 col 列の要素を返す。
func (m Mat4) At(row, col int) float64 {
	return m.toMgl().At(row, col)
}

// Muled は m * other を返す。
func (m Mat4) Muled(other Mat4) Mat4 {
	return Mat4(m.toMgl().Mul4(other.toMgl()))
}

// Inverted は逆行列を返す。特異行列の場合はゼロ行列になる。
func (m Mat4) Inverted() Mat4 {
	return Mat4(m.toMgl().Inv())
}

// MulVec3 は点 v を変換した座標を返す。
func (m Mat4) MulVec3(v Vec3) Vec3 {
	return vec3FromMgl(mgl64.TransformCoordinate(v.toMgl(), m.toMgl()))
}

// Translation は平行移動成分を返す。
func (m Mat4) Translation() Vec3 {
	return vec3FromMgl(m.toMgl().Col(3).Vec3())
}

// Mat3 は回転(線形)成分を返す。
func (m Mat4) Mat3() Mat3 {
	return Mat3(m.toMgl().Mat3())
}

// Rotation は回転成分をクォータニオンで返す。
func (m Mat4) Rotation() Quaternion {
	return NewQuaternionFromMat3(m.Mat3()).Normalized()
}

// NearEquals は各要素が許容誤差内で一致するか判定する。
func (m Mat4) NearEquals(other Mat4, epsilon float64) bool {
	return m.toMgl().ApproxFuncEqual(other.toMgl(), absoluteEqualFunc(epsilon))
}

// absoluteEqualFunc は差の絶対値が epsilon 以下なら一致とみなす比較関数を返す。
func absoluteEqualFunc(epsilon float64) func(float64, float64) bool {
	return func(a, b float64) bool {
		return math.Abs(a-b) <= epsilon
	}
}

// String は表示用文字列を返す。
func (m Mat4) String() string {
	return fmt.Sprintf("%v", m.toMgl().String())
}

// toMgl はmgl64の行列へ変換する。
func (m Mat4) toMgl() mgl64.Mat4 {
	return mgl64.Mat4(m)
}
