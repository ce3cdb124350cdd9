// 指示: miu200521358
// Package mmath はボーン姿勢計算に使うベクトル・回転・行列の値型を提供する。
package mmath

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 は3次元ベクトルを表す。
type Vec3 struct {
	r3.Vec
}

var (
	// ZERO_VEC3 はゼロベクトル。
	ZERO_VEC3 = Vec3{}
	// ONE_VEC3 は全要素1のベクトル。
	ONE_VEC3 = Vec3{Vec: r3.Vec{X: 1, Y: 1, Z: 1}}
	// UNIT_X_VEC3 はX軸単位ベクトル。
	UNIT_X_VEC3 = Vec3{Vec: r3.Vec{X: 1}}
	// UNIT_Y_VEC3 はY軸単位ベクトル。
	UNIT_Y_VEC3 = Vec3{Vec: r3.Vec{Y: 1}}
	// UNIT_Z_VEC3 はZ軸単位ベクトル。
	UNIT_Z_VEC3 = Vec3{Vec: r3.Vec{Z: 1}}
)

// NewVec3 は要素からVec3を生成する。
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{Vec: r3.Vec{X: x, Y: y, Z: z}}
}

// NewVec3FromSlice はスライスからVec3を生成する。要素数が3でない場合はエラーを返す。
func NewVec3FromSlice(values []float64) (Vec3, error) {
	if len(values) != 3 {
		return ZERO_VEC3, fmt.Errorf("ベクトルの要素数が不正です: %d", len(values))
	}
	return NewVec3(values[0], values[1], values[2]), nil
}

// Added は加算結果を返す。
func (v Vec3) Added(other Vec3) Vec3 {
	return Vec3{Vec: r3.Add(v.Vec, other.Vec)}
}

// Subed は減算結果を返す。
func (v Vec3) Subed(other Vec3) Vec3 {
	return Vec3{Vec: r3.Sub(v.Vec, other.Vec)}
}

// MuledScalar はスカラー倍を返す。
func (v Vec3) MuledScalar(s float64) Vec3 {
	return Vec3{Vec: r3.Scale(s, v.Vec)}
}

// Dot は内積を返す。
func (v Vec3) Dot(other Vec3) float64 {
	return r3.Dot(v.Vec, other.Vec)
}

// Cross は外積を返す。
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{Vec: r3.Cross(v.Vec, other.Vec)}
}

// Length は長さを返す。
func (v Vec3) Length() float64 {
	return r3.Norm(v.Vec)
}

// Normalized は正規化したベクトルを返す。長さ0の場合はゼロベクトルを返す。
func (v Vec3) Normalized() Vec3 {
	if v.Length() == 0 {
		return ZERO_VEC3
	}
	return Vec3{Vec: r3.Unit(v.Vec)}
}

// NearEquals は各要素が許容誤差内で一致するか判定する。
func (v Vec3) NearEquals(other Vec3, epsilon float64) bool {
	return math.Abs(v.X-other.X) <= epsilon &&
		math.Abs(v.Y-other.Y) <= epsilon &&
		math.Abs(v.Z-other.Z) <= epsilon
}

// Slice は要素をスライスで返す。
func (v Vec3) Slice() []float64 {
	return []float64{v.X, v.Y, v.Z}
}

// Lerp は線形補間結果を返す。
func (v Vec3) Lerp(other Vec3, t float64) Vec3 {
	return v.Added(other.Subed(v).MuledScalar(t))
}

// ToMat4 は平行移動行列を返す。
func (v Vec3) ToMat4() Mat4 {
	return Mat4(mgl64.Translate3D(v.X, v.Y, v.Z))
}

// ToScaleMat4 は拡大縮小行列を返す。
func (v Vec3) ToScaleMat4() Mat4 {
	return Mat4(mgl64.Scale3D(v.X, v.Y, v.Z))
}

// String は表示用文字列を返す。
func (v Vec3) String() string {
	return fmt.Sprintf("[x=%.6f, y=%.6f, z=%.6f]", v.X, v.Y, v.Z)
}

// toMgl はmgl64のベクトルへ変換する。
func (v Vec3) toMgl() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// vec3FromMgl はmgl64のベクトルから変換する。
func vec3FromMgl(v mgl64.Vec3) Vec3 {
	return NewVec3(v[0], v[1], v[2])
}
