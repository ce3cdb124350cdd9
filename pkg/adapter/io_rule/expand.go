// 指示: miu200521358
package io_rule

import (
	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_retarget/pkg/domain/retarget"
)

// ExpandBoneSpec はボーン名指定を具体的なボーン名一覧へ展開する。
// 接尾辞グループは左から順に直積で連結し、先頭に name を付ける。
func ExpandBoneSpec(spec BoneSpec) []string {
	suffixes := []string{""}
	for group := spec.Suffixes; group != nil; group = group.Subsuffixes {
		combined := make([]string, 0, len(suffixes)*len(group.Names))
		for _, head := range suffixes {
			for _, tail := range group.Names {
				combined = append(combined, head+tail)
			}
		}
		suffixes = combined
	}

	names := make([]string, 0, len(suffixes))
	for _, suffix := range suffixes {
		names = append(names, spec.Name+suffix)
	}
	return names
}

// ExpandOffsetSpec はオフセット指定一覧を変換一覧へ展開する。
// position 省略はゼロ移動、orientation 省略は単位回転とし、それぞれ警告を返す。
func ExpandOffsetSpec(specs []OffsetSpec) ([]retarget.Transform, []model.Warning, error) {
	transforms := make([]retarget.Transform, 0, len(specs))
	warnings := make([]model.Warning, 0)
	for _, spec := range specs {
		position := mmath.ZERO_VEC3
		if spec.Position != nil {
			position = *spec.Position
		} else {
			warnings = append(warnings, model.NewWarning(
				model.WarningOffsetPositionDefaulted,
				"%s.position が未指定のため移動オフセットなしとして扱います", spec.Path,
			))
		}

		rotation := mmath.NewMat3()
		if spec.Orientation != nil {
			decoded, err := retarget.DecodeOrientation(spec.Orientation.Codification, spec.Orientation.Values)
			if err != nil {
				return nil, nil, merrors.WithSource(err, spec.Orientation.Path)
			}
			rotation = decoded
		} else {
			warnings = append(warnings, model.NewWarning(
				model.WarningOffsetOrientationDefaulted,
				"%s.orientation が未指定のため回転オフセットなしとして扱います", spec.Path,
			))
		}
		transforms = append(transforms, retarget.NewTransform(&rotation, &position))
	}
	return transforms, warnings, nil
}

// ExpandRule は対応ルール1件をRelation一覧へ展開する。
func ExpandRule(rule RelationRule) ([]*retarget.Relation, []model.Warning, error) {
	originNames := ExpandBoneSpec(rule.Origin)
	targetNames := originNames
	if rule.Target != nil {
		targetNames = ExpandBoneSpec(*rule.Target)
	}
	if len(originNames) != len(targetNames) {
		return nil, nil, merrors.NewMalformedInputError(
			rule.Path,
			"移植元と移植先のボーン数が一致しません: origin=%d target=%d",
			len(originNames), len(targetNames),
		)
	}

	var offsets []retarget.Transform
	warnings := make([]model.Warning, 0)
	if rule.Offset != nil {
		expanded, offsetWarnings, err := ExpandOffsetSpec(rule.Offset)
		if err != nil {
			return nil, nil, err
		}
		if len(expanded) != len(originNames) {
			return nil, nil, merrors.NewMalformedInputError(
				rule.Path+".offset",
				"オフセット数がボーン数と一致しません: offset=%d bones=%d (変換不要の組は identity を指定してください)",
				len(expanded), len(originNames),
			)
		}
		offsets = expanded
		warnings = append(warnings, offsetWarnings...)
	}

	relations := make([]*retarget.Relation, 0, len(originNames))
	for i := range originNames {
		var offset *retarget.Transform
		if offsets != nil {
			offset = &offsets[i]
		}
		relation, err := retarget.NewRelation(originNames[i], targetNames[i], offset)
		if err != nil {
			return nil, nil, merrors.WithSource(err, rule.Path)
		}
		relations = append(relations, relation)
	}
	return relations, warnings, nil
}

// Expand はルール文書全体をRuleSetへ展開する。最初の構造エラーで全体を中断する。
func Expand(document *RuleDocument) (*retarget.RuleSet, error) {
	if document == nil {
		return nil, merrors.NewMalformedInputError("relations", "relations がありません")
	}
	ruleSet := &retarget.RuleSet{
		Relations: make([]*retarget.Relation, 0),
		Warnings:  make([]model.Warning, 0),
	}
	for _, rule := range document.Relations {
		relations, warnings, err := ExpandRule(rule)
		if err != nil {
			return nil, err
		}
		ruleSet.Relations = append(ruleSet.Relations, relations...)
		ruleSet.Warnings = append(ruleSet.Warnings, warnings...)
	}
	return ruleSet, nil
}
