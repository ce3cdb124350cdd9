// 指示: miu200521358
package retarget

import (
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Match はルール番号と移植元・移植先ボーン名の組を表す。
type Match struct {
	RelationIndex int
	OriginBone    string
	TargetBone    string
}

// MatchOptions は照合時のオプションを表す。
type MatchOptions struct {
	// NormalizeNames は照合前にボーン名へ NFKC 正規化と全角半角の統一を行う。
	NormalizeNames bool
}

// FindMatches はルールごとに一致する移植元・移植先ボーンの全組み合わせを返す。
// 結果はルール順、移植元ボーン順、移植先ボーン順に並ぶ。
func FindMatches(relations []*Relation, originBones, targetBones []string, opts MatchOptions) []Match {
	originKeys := matchKeys(originBones, opts)
	targetKeys := matchKeys(targetBones, opts)

	matches := make([]Match, 0)
	for relationIndex, relation := range relations {
		if relation == nil {
			continue
		}
		for originIndex, originKey := range originKeys {
			if !relation.MatchesOrigin(originKey) {
				continue
			}
			for targetIndex, targetKey := range targetKeys {
				if !relation.MatchesTarget(targetKey) {
					continue
				}
				matches = append(matches, Match{
					RelationIndex: relationIndex,
					OriginBone:    originBones[originIndex],
					TargetBone:    targetBones[targetIndex],
				})
			}
		}
	}
	return matches
}

// NormalizeBoneName はボーン名を照合用に正規化する。
func NormalizeBoneName(name string) string {
	return norm.NFKC.String(width.Fold.String(name))
}

// matchKeys は照合に使うボーン名列を返す。
func matchKeys(names []string, opts MatchOptions) []string {
	if !opts.NormalizeNames {
		return names
	}
	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = NormalizeBoneName(name)
	}
	return keys
}
