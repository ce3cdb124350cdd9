// 指示: miu200521358
package retarget

import "github.com/miu200521358/mu_retarget/pkg/domain/model"

// RuleSet は展開済みルールと展開時の警告を表す。
type RuleSet struct {
	Relations []*Relation
	Warnings  []model.Warning
}

// NewLegacyRuleSet は組み込み対応表からRuleSetを生成する。
func NewLegacyRuleSet(table *LegacyRelationTable) *RuleSet {
	return &RuleSet{Relations: table.Relations()}
}

// Len はルール数を返す。
func (s *RuleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Relations)
}
