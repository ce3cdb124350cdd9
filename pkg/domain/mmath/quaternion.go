// 指示: miu200521358
package mmath

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Quaternion は回転を表すクォータニオンを表す。
type Quaternion struct {
	X float64
	Y float64
	Z float64
	W float64
}

// NewQuaternion は恒等回転を生成する。
func NewQuaternion() Quaternion {
	return Quaternion{W: 1}
}

// NewQuaternionByValues は x, y, z, w からクォータニオンを生成する。
func NewQuaternionByValues(x, y, z, w float64) Quaternion {
	return Quaternion{X: x, Y: y, Z: z, W: w}
}

// NewQuaternionFromAxisAngle は軸と角度(ラジアン)から回転を生成する。軸が長さ0の場合は恒等回転を返す。
func NewQuaternionFromAxisAngle(axis Vec3, angle float64) Quaternion {
	if axis.Length() == 0 {
		return NewQuaternion()
	}
	return quaternionFromMgl(mgl64.QuatRotate(angle, axis.Normalized().toMgl()))
}

// NewQuaternionFromMat3 は回転行列から回転を生成する。
func NewQuaternionFromMat3(m Mat3) Quaternion {
	return quaternionFromMgl(mgl64.Mat4ToQuat(m.ToMat4().toMgl()))
}

// Length はノルムを返す。
func (q Quaternion) Length() float64 {
	return q.toMgl().Len()
}

// Normalized は正規化したクォータニオンを返す。ノルム0の場合は恒等回転を返す。
func (q Quaternion) Normalized() Quaternion {
	if q.Length() == 0 {
		return NewQuaternion()
	}
	return quaternionFromMgl(q.toMgl().Normalize())
}

// Inverted は逆回転を返す。
func (q Quaternion) Inverted() Quaternion {
	return quaternionFromMgl(q.toMgl().Inverse())
}

// Muled は q * other を返す。
func (q Quaternion) Muled(other Quaternion) Quaternion {
	return quaternionFromMgl(q.toMgl().Mul(other.toMgl()))
}

// MulVec3 はベクトルを回転する。
func (q Quaternion) MulVec3(v Vec3) Vec3 {
	return vec3FromMgl(q.Normalized().toMgl().Rotate(v.toMgl()))
}

// ToMat3 は回転行列を返す。
func (q Quaternion) ToMat3() Mat3 {
	return Mat3(q.Normalized().toMgl().Mat4().Mat3())
}

// ToMat4 は同次回転行列を返す。
func (q Quaternion) ToMat4() Mat4 {
	return Mat4(q.Normalized().toMgl().Mat4())
}

// Slerp は球面線形補間結果を返す。
func (q Quaternion) Slerp(other Quaternion, t float64) Quaternion {
	from := q.toMgl()
	target := other.toMgl()
	if from.Dot(target) < 0 {
		target = target.Scale(-1)
	}
	return quaternionFromMgl(mgl64.QuatSlerp(from, target, t))
}

// NearEquals は同一回転か許容誤差内で判定する。q と -q は同一回転として扱う。
func (q Quaternion) NearEquals(other Quaternion, epsilon float64) bool {
	if q.nearEqualsComponents(other, epsilon) {
		return true
	}
	negated := Quaternion{X: -other.X, Y: -other.Y, Z: -other.Z, W: -other.W}
	return q.nearEqualsComponents(negated, epsilon)
}

// nearEqualsComponents は各成分が許容誤差内で一致するか判定する。
func (q Quaternion) nearEqualsComponents(other Quaternion, epsilon float64) bool {
	return math.Abs(q.X-other.X) <= epsilon &&
		math.Abs(q.Y-other.Y) <= epsilon &&
		math.Abs(q.Z-other.Z) <= epsilon &&
		math.Abs(q.W-other.W) <= epsilon
}

// Slice は [x, y, z, w] を返す。
func (q Quaternion) Slice() []float64 {
	return []float64{q.X, q.Y, q.Z, q.W}
}

// String は表示用文字列を返す。
func (q Quaternion) String() string {
	return fmt.Sprintf("[x=%.6f, y=%.6f, z=%.6f, w=%.6f]", q.X, q.Y, q.Z, q.W)
}

// toMgl はmgl64のクォータニオンへ変換する。
func (q Quaternion) toMgl() mgl64.Quat {
	return mgl64.Quat{W: q.W, V: mgl64.Vec3{q.X, q.Y, q.Z}}
}

// quaternionFromMgl はmgl64のクォータニオンから変換する。
func quaternionFromMgl(q mgl64.Quat) Quaternion {
	return Quaternion{X: q.V[0], Y: q.V[1], Z: q.V[2], W: q.W}
}
