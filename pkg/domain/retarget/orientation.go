// 指示: miu200521358
package retarget

import (
	"fmt"
	"math"

	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_retarget/pkg/domain/model/merrors"
)

const (
	// CodificationIdentity は単位回転。
	CodificationIdentity = "identity"
	// CodificationQuaternion は [qx, qy, qz, qw] のクォータニオン。
	CodificationQuaternion = "quaternion"
	// CodificationRPY は roll/pitch/yaw のマッピング。
	CodificationRPY = "rpy"
	// CodificationEuler は [phi, theta, psi] の ZXZ オイラー角。
	CodificationEuler = "euler"
	// CodificationAxisAngle は3つの軸角度の連鎖。
	CodificationAxisAngle = "axis_angle"
	// CodificationRotationMatrix は3x3回転行列の行リスト。
	CodificationRotationMatrix = "rotation_matrix"
)

// AllowedCodifications は対応する回転表現の一覧を返す。
func AllowedCodifications() []string {
	return []string{
		CodificationIdentity,
		CodificationQuaternion,
		CodificationRPY,
		CodificationEuler,
		CodificationAxisAngle,
		CodificationRotationMatrix,
	}
}

// DecodeOrientation は回転表現と値から回転行列を復元する。
// values は float64・[]any・map[string]any からなるJSON相当の値を受け付ける。
func DecodeOrientation(codification string, values any) (mmath.Mat3, error) {
	switch codification {
	case CodificationIdentity:
		return mmath.NewMat3(), nil
	case CodificationQuaternion:
		return decodeQuaternion(values)
	case CodificationRPY:
		return decodeRPY(values)
	case CodificationEuler:
		return decodeEuler(values)
	case CodificationAxisAngle:
		return decodeAxisAngle(values)
	case CodificationRotationMatrix:
		return decodeRotationMatrix(values)
	default:
		return mmath.NewMat3(), merrors.NewUnsupportedCodificationError("codification", codification, AllowedCodifications())
	}
}

// EulerZXZToMatrix は Rz(phi)*Rx(theta) の姿勢へ Rz(psi) を重ねた回転行列を返す。
func EulerZXZToMatrix(phi, theta, psi float64) mmath.Mat3 {
	base := mmath.NewMat3RotationZ(phi).Muled(mmath.NewMat3RotationX(theta))
	return mmath.NewMat3RotationZ(psi).Muled(base)
}

// RPYToMatrix は Rx(roll)*Ry(pitch)*Rz(yaw) の回転行列を返す。
func RPYToMatrix(roll, pitch, yaw float64) mmath.Mat3 {
	return mmath.NewMat3RotationX(roll).
		Muled(mmath.NewMat3RotationY(pitch)).
		Muled(mmath.NewMat3RotationZ(yaw))
}

// decodeQuaternion は [qx, qy, qz, qw] を回転行列へ変換する。
func decodeQuaternion(values any) (mmath.Mat3, error) {
	numbers, err := numberList(values, 4, "values")
	if err != nil {
		return mmath.NewMat3(), merrors.NewMalformedInputError(
			"values", "quaternion は [qx, qy, qz, qw] の4要素で指定してください: %v", err)
	}
	q := mmath.NewQuaternionByValues(numbers[0], numbers[1], numbers[2], numbers[3])
	if q.Length() == 0 {
		return mmath.NewMat3(), merrors.NewMalformedInputError("values", "quaternion の長さが0です")
	}
	return q.ToMat3(), nil
}

// decodeRPY は roll/pitch/yaw マッピングを回転行列へ変換する。
func decodeRPY(values any) (mmath.Mat3, error) {
	mapping, ok := values.(map[string]any)
	if !ok {
		return mmath.NewMat3(), merrors.NewMalformedInputError(
			"values", "rpy は roll, pitch, yaw を持つマッピングで指定してください")
	}
	angles := make([]float64, 0, 3)
	for _, key := range []string{"roll", "pitch", "yaw"} {
		raw, exists := mapping[key]
		if !exists {
			return mmath.NewMat3(), merrors.NewMalformedInputError("values."+key, "rpy の %s がありません", key)
		}
		angle, ok := toFloat(raw)
		if !ok {
			return mmath.NewMat3(), merrors.NewMalformedInputError("values."+key, "rpy の %s が数値ではありません", key)
		}
		angles = append(angles, angle)
	}
	return RPYToMatrix(angles[0], angles[1], angles[2]), nil
}

// decodeEuler は [phi, theta, psi] を回転行列へ変換する。
func decodeEuler(values any) (mmath.Mat3, error) {
	numbers, err := numberList(values, 3, "values")
	if err != nil {
		return mmath.NewMat3(), merrors.NewMalformedInputError(
			"values", "euler は [phi (Z), theta (X), psi (Z)] の3要素で指定してください: %v", err)
	}
	return EulerZXZToMatrix(numbers[0], numbers[1], numbers[2]), nil
}

// decodeAxisAngle は3つの軸角度を先頭から右へ掛け合わせた回転行列へ変換する。
func decodeAxisAngle(values any) (mmath.Mat3, error) {
	entries, ok := values.([]any)
	if !ok || len(entries) != 3 {
		return mmath.NewMat3(), merrors.NewMalformedInputError(
			"values", "axis_angle は [[axis], angle] または [x, y, z, angle] を3要素で指定してください")
	}
	rotation := mmath.NewMat3()
	for i, entry := range entries {
		axis, angle, err := axisAngleEntry(entry)
		if err != nil {
			return mmath.NewMat3(), merrors.NewMalformedInputError(
				fmt.Sprintf("values[%d]", i), "axis_angle の要素が不正です: %v", err)
		}
		rotation = rotation.Muled(mmath.NewMat3FromAxisAngle(axis, angle))
	}
	return rotation, nil
}

// axisAngleEntry は軸角度の1要素を解釈する。
func axisAngleEntry(entry any) (mmath.Vec3, float64, error) {
	items, ok := entry.([]any)
	if !ok {
		return mmath.ZERO_VEC3, 0, fmt.Errorf("リストではありません")
	}
	switch len(items) {
	case 4:
		numbers, err := numberList(items, 4, "entry")
		if err != nil {
			return mmath.ZERO_VEC3, 0, err
		}
		return mmath.NewVec3(numbers[0], numbers[1], numbers[2]), numbers[3], nil
	case 2:
		axisValues, err := numberList(items[0], 3, "axis")
		if err != nil {
			return mmath.ZERO_VEC3, 0, err
		}
		angle, ok := toFloat(items[1])
		if !ok {
			return mmath.ZERO_VEC3, 0, fmt.Errorf("角度が数値ではありません")
		}
		return mmath.NewVec3(axisValues[0], axisValues[1], axisValues[2]), angle, nil
	default:
		return mmath.ZERO_VEC3, 0, fmt.Errorf("要素数が不正です: %d", len(items))
	}
}

// decodeRotationMatrix は3行3列の行リストを回転行列へ変換する。
func decodeRotationMatrix(values any) (mmath.Mat3, error) {
	rows, ok := values.([]any)
	if !ok || len(rows) != 3 {
		return mmath.NewMat3(), merrors.NewMalformedInputError("values", "rotation_matrix は3行で指定してください")
	}
	vectors := make([]mmath.Vec3, 0, 3)
	for i, row := range rows {
		numbers, err := numberList(row, 3, "row")
		if err != nil {
			return mmath.NewMat3(), merrors.NewMalformedInputError(
				fmt.Sprintf("values[%d]", i), "rotation_matrix の行は3要素で指定してください: %v", err)
		}
		vectors = append(vectors, mmath.NewVec3(numbers[0], numbers[1], numbers[2]))
	}
	return mmath.NewMat3FromRows(vectors[0], vectors[1], vectors[2]), nil
}

// numberList は数値リストを要素数付きで取り出す。
func numberList(values any, expected int, label string) ([]float64, error) {
	var items []any
	switch typed := values.(type) {
	case []any:
		items = typed
	case []float64:
		numbers := append([]float64(nil), typed...)
		if len(numbers) != expected {
			return nil, fmt.Errorf("%s の要素数が不正です: got=%d want=%d", label, len(numbers), expected)
		}
		return numbers, nil
	default:
		return nil, fmt.Errorf("%s がリストではありません", label)
	}
	if len(items) != expected {
		return nil, fmt.Errorf("%s の要素数が不正です: got=%d want=%d", label, len(items), expected)
	}
	numbers := make([]float64, 0, expected)
	for i, item := range items {
		number, ok := toFloat(item)
		if !ok {
			return nil, fmt.Errorf("%s[%d] が数値ではありません", label, i)
		}
		numbers = append(numbers, number)
	}
	return numbers, nil
}

// toFloat は数値型をfloat64へ変換する。
func toFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, !math.IsNaN(typed)
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case int32:
		return float64(typed), true
	default:
		return 0, false
	}
}
