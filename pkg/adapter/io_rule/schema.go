// 指示: miu200521358
// Package io_rule はボーン対応ルール文書(JSON/YAML)の読み込みと展開を提供する。
package io_rule

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_retarget/pkg/domain/retarget"
)

// RuleDocument はルール文書の最上位を表す。
type RuleDocument struct {
	Relations []RelationRule
}

// RelationRule は展開前の対応ルールを表す。
type RelationRule struct {
	Path   string
	Origin BoneSpec
	// Target は省略時 nil となり、移植元と同じ名前を使う。
	Target *BoneSpec
	// Offset は省略時 nil となり、全組に恒等オフセットを使う。
	Offset []OffsetSpec
}

// BoneSpec はボーン名指定を表す。Suffixes が nil の場合は Name をそのまま使う。
type BoneSpec struct {
	Path     string
	Name     string
	Suffixes *SuffixSpec
}

// SuffixSpec は接尾辞グループを表す。Subsuffixes があれば直積で連結する。
type SuffixSpec struct {
	Path        string
	Names       []string
	Subsuffixes *SuffixSpec
}

// OffsetSpec は1組分のオフセット指定を表す。
type OffsetSpec struct {
	Path        string
	Position    *mmath.Vec3
	Orientation *OrientationSpec
}

// OrientationSpec は回転表現と値を表す。
type OrientationSpec struct {
	Path         string
	Codification string
	Values       any
}

// DecodeRuleDocument はJSON/YAMLのバイト列をルール文書へ変換する。
// 構造不正はフィールドパスと行・列を含む MalformedInput エラーとして返す。
func DecodeRuleDocument(data []byte) (*RuleDocument, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, merrors.NewMalformedInputError("", "ルール文書を解析できません: %v", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, merrors.NewMalformedInputError("relations", "relations がありません")
	}
	document := root.Content[0]
	if document.Kind != yaml.MappingNode {
		return nil, malformedAt(document, "$", "ルール文書はマッピングで指定してください")
	}
	if err := rejectDuplicateKeys(document, ""); err != nil {
		return nil, err
	}

	relationsNode, ok := mappingValue(document, "relations")
	if !ok {
		return nil, malformedAt(document, "relations", "relations がありません")
	}
	if relationsNode.Kind != yaml.SequenceNode {
		return nil, malformedAt(relationsNode, "relations", "relations は配列で指定してください")
	}

	rules := make([]RelationRule, 0, len(relationsNode.Content))
	for i, relationNode := range relationsNode.Content {
		rule, err := decodeRelationRule(relationNode, fmt.Sprintf("relations[%d]", i))
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return &RuleDocument{Relations: rules}, nil
}

// decodeRelationRule は対応ルール1件を変換する。
func decodeRelationRule(node *yaml.Node, path string) (RelationRule, error) {
	node = resolveAlias(node)
	if node.Kind != yaml.MappingNode {
		return RelationRule{}, malformedAt(node, path, "対応ルールはマッピングで指定してください")
	}
	rule := RelationRule{Path: path}

	originNode, ok := mappingValue(node, "origin")
	if !ok {
		return RelationRule{}, malformedAt(node, path+".origin", "origin がありません")
	}
	origin, err := decodeBoneSpec(originNode, path+".origin")
	if err != nil {
		return RelationRule{}, err
	}
	rule.Origin = origin

	if targetNode, ok := mappingValue(node, "target"); ok && !isNull(targetNode) {
		target, err := decodeBoneSpec(targetNode, path+".target")
		if err != nil {
			return RelationRule{}, err
		}
		rule.Target = &target
	}

	if offsetNode, ok := mappingValue(node, "offset"); ok && !isNull(offsetNode) {
		offsetNode = resolveAlias(offsetNode)
		if offsetNode.Kind != yaml.SequenceNode {
			return RelationRule{}, malformedAt(offsetNode, path+".offset", "offset は配列で指定してください")
		}
		offsets := make([]OffsetSpec, 0, len(offsetNode.Content))
		for i, entry := range offsetNode.Content {
			offset, err := decodeOffsetSpec(entry, fmt.Sprintf("%s.offset[%d]", path, i))
			if err != nil {
				return RelationRule{}, err
			}
			offsets = append(offsets, offset)
		}
		rule.Offset = offsets
	}
	return rule, nil
}

// decodeBoneSpec はボーン名指定を変換する。
func decodeBoneSpec(node *yaml.Node, path string) (BoneSpec, error) {
	node = resolveAlias(node)
	switch node.Kind {
	case yaml.ScalarNode:
		return BoneSpec{Path: path, Name: node.Value}, nil
	case yaml.MappingNode:
		nameNode, ok := mappingValue(node, "name")
		if !ok {
			return BoneSpec{}, malformedAt(node, path+".name", "name がありません")
		}
		name, err := scalarString(nameNode, path+".name")
		if err != nil {
			return BoneSpec{}, err
		}
		spec := BoneSpec{Path: path, Name: name}
		if suffixNode, ok := mappingValue(node, "suffixes"); ok && !isNull(suffixNode) {
			suffixes, err := decodeSuffixSpec(suffixNode, path+".suffixes")
			if err != nil {
				return BoneSpec{}, err
			}
			spec.Suffixes = suffixes
		}
		return spec, nil
	default:
		return BoneSpec{}, malformedAt(node, path, "ボーン名は文字列または name を持つマッピングで指定してください")
	}
}

// decodeSuffixSpec は接尾辞グループを再帰的に変換する。
func decodeSuffixSpec(node *yaml.Node, path string) (*SuffixSpec, error) {
	node = resolveAlias(node)
	switch node.Kind {
	case yaml.SequenceNode:
		names, err := scalarStrings(node, path)
		if err != nil {
			return nil, err
		}
		return &SuffixSpec{Path: path, Names: names}, nil
	case yaml.MappingNode:
		namesNode, ok := mappingValue(node, "names")
		if !ok {
			return nil, malformedAt(node, path+".names", "接尾辞グループに names がありません")
		}
		namesNode = resolveAlias(namesNode)
		if namesNode.Kind != yaml.SequenceNode {
			return nil, malformedAt(namesNode, path+".names", "names は配列で指定してください")
		}
		names, err := scalarStrings(namesNode, path+".names")
		if err != nil {
			return nil, err
		}
		spec := &SuffixSpec{Path: path, Names: names}
		if subNode, ok := mappingValue(node, "subsuffixes"); ok && !isNull(subNode) {
			sub, err := decodeSuffixSpec(subNode, path+".subsuffixes")
			if err != nil {
				return nil, err
			}
			spec.Subsuffixes = sub
		}
		return spec, nil
	default:
		return nil, malformedAt(node, path, "接尾辞は配列または names を持つマッピングで指定してください")
	}
}

// decodeOffsetSpec はオフセット指定1件を変換する。
func decodeOffsetSpec(node *yaml.Node, path string) (OffsetSpec, error) {
	node = resolveAlias(node)
	if node.Kind != yaml.MappingNode {
		return OffsetSpec{}, malformedAt(node, path, "オフセットはマッピングで指定してください")
	}
	spec := OffsetSpec{Path: path}

	if positionNode, ok := mappingValue(node, "position"); ok && !isNull(positionNode) {
		values, err := numberSequence(positionNode, path+".position")
		if err != nil {
			return OffsetSpec{}, err
		}
		position, err := mmath.NewVec3FromSlice(values)
		if err != nil {
			return OffsetSpec{}, malformedAt(positionNode, path+".position", "position は [x, y, z] で指定してください")
		}
		spec.Position = &position
	}

	if orientationNode, ok := mappingValue(node, "orientation"); ok && !isNull(orientationNode) {
		orientation, err := decodeOrientationSpec(orientationNode, path+".orientation")
		if err != nil {
			return OffsetSpec{}, err
		}
		spec.Orientation = orientation
	}
	return spec, nil
}

// decodeOrientationSpec は回転指定を変換する。文字列は identity のみ受け付ける。
func decodeOrientationSpec(node *yaml.Node, path string) (*OrientationSpec, error) {
	node = resolveAlias(node)
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value != retarget.CodificationIdentity {
			return nil, malformedAt(node, path, "orientation の文字列指定は identity のみです: %q", node.Value)
		}
		return &OrientationSpec{Path: path, Codification: retarget.CodificationIdentity}, nil
	case yaml.MappingNode:
		codificationNode, ok := mappingValue(node, "codification")
		if !ok {
			return nil, malformedAt(node, path+".codification", "codification がありません")
		}
		codification, err := scalarString(codificationNode, path+".codification")
		if err != nil {
			return nil, err
		}
		spec := &OrientationSpec{Path: path, Codification: codification}
		valuesNode, ok := mappingValue(node, "values")
		if !ok {
			if codification == retarget.CodificationIdentity {
				return spec, nil
			}
			return nil, malformedAt(node, path+".values", "values がありません")
		}
		values, err := nodeValue(valuesNode)
		if err != nil {
			return nil, malformedAt(valuesNode, path+".values", "values を解釈できません: %v", err)
		}
		spec.Values = values
		return spec, nil
	default:
		return nil, malformedAt(node, path, "orientation は identity または codification を持つマッピングで指定してください")
	}
}

// rejectDuplicateKeys は同一マッピング内でキーが重複していれば MalformedInput エラーを返す。
// エイリアスは参照先の定義位置で検査済みのため辿らない。
func rejectDuplicateKeys(node *yaml.Node, path string) error {
	switch node.Kind {
	case yaml.MappingNode:
		seen := make(map[string]struct{}, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			childPath := key
			if path != "" {
				childPath = path + "." + key
			}
			if _, ok := seen[key]; ok {
				return malformedAt(node.Content[i], childPath, "キーが重複しています: %s", key)
			}
			seen[key] = struct{}{}
			if err := rejectDuplicateKeys(node.Content[i+1], childPath); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		for i, child := range node.Content {
			if err := rejectDuplicateKeys(child, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

// mappingValue はマッピングノードからキー一致の値ノードを返す。
func mappingValue(node *yaml.Node, key string) (*yaml.Node, bool) {
	node = resolveAlias(node)
	if node.Kind != yaml.MappingNode {
		return nil, false
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return resolveAlias(node.Content[i+1]), true
		}
	}
	return nil, false
}

// scalarString は文字列スカラーを取り出す。
func scalarString(node *yaml.Node, path string) (string, error) {
	node = resolveAlias(node)
	if node.Kind != yaml.ScalarNode || isNull(node) {
		return "", malformedAt(node, path, "文字列で指定してください")
	}
	return node.Value, nil
}

// scalarStrings は文字列配列を取り出す。
func scalarStrings(node *yaml.Node, path string) ([]string, error) {
	values := make([]string, 0, len(node.Content))
	for i, item := range node.Content {
		value, err := scalarString(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

// numberSequence は数値配列を取り出す。文字列要素は数式として評価する。
func numberSequence(node *yaml.Node, path string) ([]float64, error) {
	node = resolveAlias(node)
	if node.Kind != yaml.SequenceNode {
		return nil, malformedAt(node, path, "数値の配列で指定してください")
	}
	values := make([]float64, 0, len(node.Content))
	for i, item := range node.Content {
		value, err := scalarNumber(item)
		if err != nil {
			return nil, malformedAt(item, fmt.Sprintf("%s[%d]", path, i), "数値ではありません: %v", err)
		}
		values = append(values, value)
	}
	return values, nil
}

// nodeValue はノードを float64・string・[]any・map[string]any の値へ変換する。
// 数値として解釈できる文字列スカラーは数式評価した値にする。
func nodeValue(node *yaml.Node) (any, error) {
	node = resolveAlias(node)
	switch node.Kind {
	case yaml.ScalarNode:
		if isNull(node) {
			return nil, nil
		}
		if value, err := scalarNumber(node); err == nil {
			return value, nil
		}
		return node.Value, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			value, err := nodeValue(item)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
		}
		return items, nil
	case yaml.MappingNode:
		mapping := make(map[string]any, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			value, err := nodeValue(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			mapping[node.Content[i].Value] = value
		}
		return mapping, nil
	default:
		return nil, fmt.Errorf("未対応のノード種別です: %v", node.Kind)
	}
}

// scalarNumber は数値スカラー、または数式文字列を数値へ変換する。
func scalarNumber(node *yaml.Node) (float64, error) {
	node = resolveAlias(node)
	if node.Kind != yaml.ScalarNode {
		return 0, fmt.Errorf("スカラーではありません")
	}
	switch node.Tag {
	case "!!int", "!!float":
		var value float64
		if err := node.Decode(&value); err != nil {
			return 0, err
		}
		return value, nil
	case "!!str":
		return EvaluateNumber(node.Value)
	default:
		return 0, fmt.Errorf("数値ではありません: %s", node.Value)
	}
}

// resolveAlias はエイリアスノードを参照先へ解決する。
func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

// isNull は null スカラーか判定する。
func isNull(node *yaml.Node) bool {
	node = resolveAlias(node)
	return node == nil || (node.Kind == yaml.ScalarNode && node.Tag == "!!null")
}

// malformedAt はノード位置付きの MalformedInput エラーを生成する。
func malformedAt(node *yaml.Node, path string, format string, params ...any) error {
	field := path
	if node != nil && node.Line > 0 {
		field = fmt.Sprintf("%s [%d:%d]", path, node.Line, node.Column)
	}
	return merrors.NewMalformedInputError(strings.TrimSpace(field), format, params...)
}
