// 指示: miu200521358
package gltf

import (
	"fmt"
	"math"

	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/domain/model/merrors"
)

const (
	nodeStateUnvisited = iota
	nodeStateVisiting
	nodeStateResolved
)

// skinArmature はskinから構築したアーマチュアとnode対応を表す。
type skinArmature struct {
	object    *model.SceneObject
	nodeBones map[int]string
}

// sceneBuilder はglTF documentからシーンを構築する。
type sceneBuilder struct {
	doc               *gltfDocument
	binChunk          []byte
	fps               float64
	warn              func(model.Warning)
	parents           []int
	state             []int
	worldMats         []mmath.Mat4
	worldRotations    []mmath.Quaternion
	localTranslations []mmath.Vec3
	localRotations    []mmath.Quaternion
}

// newSceneBuilder はsceneBuilderを生成する。
func newSceneBuilder(doc *gltfDocument, binChunk []byte, fps float64, warn func(model.Warning)) *sceneBuilder {
	if fps <= 0 {
		fps = defaultFps
	}
	if warn == nil {
		warn = func(model.Warning) {}
	}
	return &sceneBuilder{doc: doc, binChunk: binChunk, fps: fps, warn: warn}
}

// build はskinをアーマチュア、スキンメッシュを子オブジェクト、最初のanimationをアニメーションとして構築する。
func (b *sceneBuilder) build(name string, onSkinDone func(done int)) (*model.Scene, error) {
	parents, err := buildNodeParentIndexes(b.doc.Nodes)
	if err != nil {
		return nil, err
	}
	b.parents = parents
	if err := b.resolveNodeTransforms(); err != nil {
		return nil, err
	}

	scene := model.NewScene(name)
	scene.Fps = b.fps
	usedNames := make(map[string]int)

	armatures := make([]*skinArmature, 0, len(b.doc.Skins))
	armatureNames := make([]string, 0, len(b.doc.Skins))
	for skinIndex, skin := range b.doc.Skins {
		built, err := b.buildArmature(skinIndex, skin, usedNames)
		if err != nil {
			return nil, err
		}
		scene.AddObject(built.object)
		armatures = append(armatures, built)
		armatureNames = append(armatureNames, built.object.Name)
		if onSkinDone != nil {
			onSkinDone(skinIndex + 1)
		}
	}

	for nodeIndex, node := range b.doc.Nodes {
		if node.Skin == nil || node.Mesh == nil {
			continue
		}
		if *node.Skin < 0 || *node.Skin >= len(armatures) {
			return nil, merrors.NewMalformedInputError(fmt.Sprintf("nodes[%d].skin", nodeIndex), "skin index が不正です: %d", *node.Skin)
		}
		scene.AddObject(&model.SceneObject{
			Name:   ensureUniqueName(b.meshObjectName(nodeIndex, node), usedNames),
			Type:   model.OBJECT_TYPE_MESH,
			Parent: armatures[*node.Skin].object.Name,
		})
	}

	if len(b.doc.Animations) == 0 {
		if len(armatures) > 0 {
			b.warn(model.NewWarning(model.WarningGltfAnimationMissing, "アニメーションがありません: %s", name))
		}
	} else if err := b.applyAnimation(0, armatures); err != nil {
		return nil, err
	}

	if len(armatureNames) > 0 {
		scene.Select(armatureNames[0], armatureNames...)
	}
	return scene, nil
}

// buildArmature はskinのjointからアーマチュアを構築する。
func (b *sceneBuilder) buildArmature(skinIndex int, skin gltfSkin, usedNames map[string]int) (*skinArmature, error) {
	joints := make(map[int]struct{}, len(skin.Joints))
	for _, joint := range skin.Joints {
		if joint < 0 || joint >= len(b.doc.Nodes) {
			return nil, merrors.NewMalformedInputError(fmt.Sprintf("skins[%d].joints", skinIndex), "joint index が不正です: %d", joint)
		}
		joints[joint] = struct{}{}
	}

	armatureName := skin.Name
	if armatureName == "" {
		armatureName = "Armature"
	}
	armatureName = ensureUniqueName(armatureName, usedNames)
	armature := model.NewArmature(armatureName)

	nodeBones := make(map[int]string, len(skin.Joints))
	usedBoneNames := make(map[string]int, len(skin.Joints))
	for _, joint := range skin.Joints {
		if _, exists := nodeBones[joint]; exists {
			continue
		}
		nodeBones[joint] = ensureUniqueName(resolveNodeBoneName(joint, b.doc.Nodes[joint].Name), usedBoneNames)
	}
	for _, joint := range skin.Joints {
		boneName := nodeBones[joint]
		if _, exists := armature.BoneByName(boneName); exists {
			continue
		}
		parentName := ""
		for parent := b.parents[joint]; parent >= 0; parent = b.parents[parent] {
			if _, ok := joints[parent]; ok {
				parentName = nodeBones[parent]
				break
			}
		}
		rest := mmath.NewMat4FromTranslationRotation(b.worldMats[joint].Translation(), b.worldRotations[joint])
		armature.AddBone(model.NewBone(boneName, parentName, rest))
	}
	logGltfDebug("glTF読込ステップ: アーマチュア構築 name=%s bones=%d", armatureName, len(armature.Bones))

	return &skinArmature{
		object: &model.SceneObject{
			Name:     armatureName,
			Type:     model.OBJECT_TYPE_ARMATURE,
			Armature: armature,
		},
		nodeBones: nodeBones,
	}, nil
}

// applyAnimation はanimationのtranslation/rotationチャンネルをレスト基準のキーフレームへ変換する。
func (b *sceneBuilder) applyAnimation(animationIndex int, armatures []*skinArmature) error {
	animation := b.doc.Animations[animationIndex]
	animationName := animation.Name
	if animationName == "" {
		animationName = fmt.Sprintf("animation_%d", animationIndex)
	}

	for channelIndex, channel := range animation.Channels {
		field := fmt.Sprintf("animations[%d].channels[%d]", animationIndex, channelIndex)
		if channel.Target.Node == nil {
			continue
		}
		nodeIndex := *channel.Target.Node
		if nodeIndex < 0 || nodeIndex >= len(b.doc.Nodes) {
			return merrors.NewMalformedInputError(field, "target.node が不正です: %d", nodeIndex)
		}
		owner, boneName, ok := findBoneForNode(armatures, nodeIndex)
		if !ok {
			b.warn(model.NewWarning(model.WarningGltfChannelSkipped, "%s: ボーンではないnodeのチャンネルを読み飛ばしました: %d", field, nodeIndex))
			continue
		}
		if channel.Target.Path != "translation" && channel.Target.Path != "rotation" {
			b.warn(model.NewWarning(model.WarningGltfChannelSkipped, "%s: 未対応のチャンネルを読み飛ばしました: %s", field, channel.Target.Path))
			continue
		}
		if channel.Sampler < 0 || channel.Sampler >= len(animation.Samplers) {
			return merrors.NewMalformedInputError(field, "sampler index が不正です: %d", channel.Sampler)
		}
		times, values, err := b.readSampler(animation.Samplers[channel.Sampler])
		if err != nil {
			return merrors.WithSource(err, field)
		}

		armature := owner.object.Armature
		if armature.Animation == nil {
			armature.Animation = model.NewAnimation(animationName)
		}
		track := armature.Animation.EnsureTrack(boneName)
		restRotation := b.localRotations[nodeIndex]
		inverseRest := restRotation.Inverted()
		for i, seconds := range times {
			frame := seconds * b.fps
			switch channel.Target.Path {
			case "translation":
				if len(values[i]) != 3 {
					return merrors.NewMalformedInputError(field, "translation の要素数が不正です: %d", len(values[i]))
				}
				animated := mmath.NewVec3(values[i][0], values[i][1], values[i][2])
				track.SetLocation(frame, inverseRest.MulVec3(animated.Subed(b.localTranslations[nodeIndex])))
			case "rotation":
				if len(values[i]) != 4 {
					return merrors.NewMalformedInputError(field, "rotation の要素数が不正です: %d", len(values[i]))
				}
				animated := mmath.NewQuaternionByValues(values[i][0], values[i][1], values[i][2], values[i][3]).Normalized()
				track.SetRotation(frame, inverseRest.Muled(animated).Normalized())
			}
		}
	}
	return nil
}

// readSampler はsamplerの時刻と値を読み取る。CUBICSPLINE は接線を除いた値のみ返す。
func (b *sceneBuilder) readSampler(sampler gltfAnimationSampler) ([]float64, [][]float64, error) {
	inputs, err := readAccessorFloatValues(b.doc, sampler.Input, b.binChunk)
	if err != nil {
		return nil, nil, err
	}
	outputs, err := readAccessorFloatValues(b.doc, sampler.Output, b.binChunk)
	if err != nil {
		return nil, nil, err
	}
	times := make([]float64, len(inputs))
	for i, row := range inputs {
		if len(row) != 1 {
			return nil, nil, merrors.NewMalformedInputError("sampler.input", "時刻はSCALARである必要があります")
		}
		times[i] = row[0]
	}

	switch sampler.Interpolation {
	case "CUBICSPLINE":
		if len(outputs) != len(times)*3 {
			return nil, nil, merrors.NewMalformedInputError("sampler.output", "CUBICSPLINE の出力数が不正です: input=%d output=%d", len(times), len(outputs))
		}
		values := make([][]float64, len(times))
		for i := range times {
			values[i] = outputs[i*3+1]
		}
		return times, values, nil
	default:
		if len(outputs) != len(times) {
			return nil, nil, merrors.NewMalformedInputError("sampler.output", "出力数が不正です: input=%d output=%d", len(times), len(outputs))
		}
		return times, outputs, nil
	}
}

// resolveNodeTransforms は全nodeのローカルTRとワールド行列を解決する。
func (b *sceneBuilder) resolveNodeTransforms() error {
	count := len(b.doc.Nodes)
	b.state = make([]int, count)
	b.worldMats = make([]mmath.Mat4, count)
	b.worldRotations = make([]mmath.Quaternion, count)
	b.localTranslations = make([]mmath.Vec3, count)
	b.localRotations = make([]mmath.Quaternion, count)
	for i := range b.doc.Nodes {
		if err := b.resolveNodeWorldMatrix(i); err != nil {
			return err
		}
	}
	return nil
}

// resolveNodeWorldMatrix はnodeのワールド行列を再帰的に解決する。
func (b *sceneBuilder) resolveNodeWorldMatrix(nodeIndex int) error {
	if nodeIndex < 0 || nodeIndex >= len(b.doc.Nodes) {
		return merrors.NewMalformedInputError("nodes", "node index が不正です: %d", nodeIndex)
	}
	switch b.state[nodeIndex] {
	case nodeStateResolved:
		return nil
	case nodeStateVisiting:
		return merrors.NewMalformedInputError("nodes", "node親子関係に循環があります: %d", nodeIndex)
	}
	b.state[nodeIndex] = nodeStateVisiting

	local, translation, rotation, err := nodeLocalTransform(nodeIndex, b.doc.Nodes[nodeIndex])
	if err != nil {
		return err
	}
	b.localTranslations[nodeIndex] = translation
	b.localRotations[nodeIndex] = rotation

	parentIndex := b.parents[nodeIndex]
	if parentIndex >= 0 {
		if err := b.resolveNodeWorldMatrix(parentIndex); err != nil {
			return err
		}
		b.worldMats[nodeIndex] = b.worldMats[parentIndex].Muled(local)
		b.worldRotations[nodeIndex] = b.worldRotations[parentIndex].Muled(rotation).Normalized()
	} else {
		b.worldMats[nodeIndex] = local
		b.worldRotations[nodeIndex] = rotation
	}
	b.state[nodeIndex] = nodeStateResolved
	return nil
}

// meshObjectName はスキンメッシュnodeのオブジェクト名を返す。
func (b *sceneBuilder) meshObjectName(nodeIndex int, node gltfNode) string {
	if node.Name != "" {
		return node.Name
	}
	if node.Mesh != nil && *node.Mesh >= 0 && *node.Mesh < len(b.doc.Meshes) && b.doc.Meshes[*node.Mesh].Name != "" {
		return b.doc.Meshes[*node.Mesh].Name
	}
	return fmt.Sprintf("mesh_%03d", nodeIndex)
}

// findBoneForNode はnodeに対応するボーンを持つアーマチュアを返す。
func findBoneForNode(armatures []*skinArmature, nodeIndex int) (*skinArmature, string, bool) {
	for _, armature := range armatures {
		if boneName, ok := armature.nodeBones[nodeIndex]; ok {
			return armature, boneName, true
		}
	}
	return nil, "", false
}

// buildNodeParentIndexes はnode配列から親インデックス配列を生成する。
func buildNodeParentIndexes(nodes []gltfNode) ([]int, error) {
	parentIndexes := make([]int, len(nodes))
	for i := range parentIndexes {
		parentIndexes[i] = -1
	}
	for parentIndex, node := range nodes {
		for _, childIndex := range node.Children {
			if childIndex < 0 || childIndex >= len(nodes) {
				return nil, merrors.NewMalformedInputError(fmt.Sprintf("nodes[%d].children", parentIndex), "node index が不正です: %d", childIndex)
			}
			if parentIndexes[childIndex] == -1 {
				parentIndexes[childIndex] = parentIndex
			}
		}
	}
	return parentIndexes, nil
}

// nodeLocalTransform はnode要素からローカル行列と平行移動・回転成分を生成する。
func nodeLocalTransform(nodeIndex int, node gltfNode) (mmath.Mat4, mmath.Vec3, mmath.Quaternion, error) {
	field := fmt.Sprintf("nodes[%d]", nodeIndex)
	if len(node.Matrix) > 0 {
		if len(node.Matrix) != 16 {
			return mmath.NewMat4(), mmath.ZERO_VEC3, mmath.NewQuaternion(),
				merrors.NewMalformedInputError(field+".matrix", "要素数が不正です: %d", len(node.Matrix))
		}
		mat := mmath.NewMat4()
		for i := 0; i < 16; i++ {
			mat[i] = node.Matrix[i]
		}
		return mat, mat.Translation(), rotationWithoutScale(mat), nil
	}

	translation, err := parseVec3(node.Translation, mmath.ZERO_VEC3, field+".translation")
	if err != nil {
		return mmath.NewMat4(), mmath.ZERO_VEC3, mmath.NewQuaternion(), err
	}
	scale, err := parseVec3(node.Scale, mmath.ONE_VEC3, field+".scale")
	if err != nil {
		return mmath.NewMat4(), mmath.ZERO_VEC3, mmath.NewQuaternion(), err
	}
	rotation, err := parseQuaternion(node.Rotation, field+".rotation")
	if err != nil {
		return mmath.NewMat4(), mmath.ZERO_VEC3, mmath.NewQuaternion(), err
	}
	local := translation.ToMat4().Muled(rotation.ToMat4()).Muled(scale.ToScaleMat4())
	return local, translation, rotation, nil
}

// rotationWithoutScale は行列の各軸を正規化して回転成分を取り出す。
func rotationWithoutScale(m mmath.Mat4) mmath.Quaternion {
	linear := m.Mat3()
	for col := 0; col < 3; col++ {
		length := math.Sqrt(linear[col*3]*linear[col*3] + linear[col*3+1]*linear[col*3+1] + linear[col*3+2]*linear[col*3+2])
		if length == 0 {
			continue
		}
		for row := 0; row < 3; row++ {
			linear[col*3+row] /= length
		}
	}
	return mmath.NewQuaternionFromMat3(linear).Normalized()
}

// parseVec3 はスライスをVec3へ変換する。
func parseVec3(values []float64, defaultValue mmath.Vec3, label string) (mmath.Vec3, error) {
	if len(values) == 0 {
		return defaultValue, nil
	}
	if len(values) != 3 {
		return mmath.ZERO_VEC3, merrors.NewMalformedInputError(label, "要素数が不正です: %d", len(values))
	}
	return mmath.NewVec3(values[0], values[1], values[2]), nil
}

// parseQuaternion はスライスをQuaternionへ変換する。
func parseQuaternion(values []float64, label string) (mmath.Quaternion, error) {
	if len(values) == 0 {
		return mmath.NewQuaternion(), nil
	}
	if len(values) != 4 {
		return mmath.NewQuaternion(), merrors.NewMalformedInputError(label, "要素数が不正です: %d", len(values))
	}
	return mmath.NewQuaternionByValues(values[0], values[1], values[2], values[3]).Normalized(), nil
}

// resolveNodeBoneName はnode名が空の場合にindex由来の名前を返す。
func resolveNodeBoneName(nodeIndex int, nodeName string) string {
	if nodeName != "" {
		return nodeName
	}
	return fmt.Sprintf("node_%03d", nodeIndex)
}

// ensureUniqueName は重複時に連番を付与した名前を返す。
func ensureUniqueName(name string, used map[string]int) string {
	count, exists := used[name]
	if !exists {
		used[name] = 1
		return name
	}
	for {
		count++
		candidate := fmt.Sprintf("%s.%03d", name, count-1)
		if _, taken := used[candidate]; !taken {
			used[name] = count
			used[candidate] = 1
			return candidate
		}
	}
}
