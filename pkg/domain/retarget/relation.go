// 指示: miu200521358
package retarget

import (
	"regexp"

	"github.com/miu200521358/mu_retarget/pkg/domain/model/merrors"
)

// Relation は移植元ボーン名パターン・移植先ボーン名パターン・オフセットの組を表す。
// パターンは名前の末尾一致 `^(.*)NAME$` として扱う。
type Relation struct {
	originName string
	targetName string
	origin     *regexp.Regexp
	target     *regexp.Regexp
	offset     *Transform
}

// NewRelation はRelationを生成する。offset が nil の場合は恒等オフセットを使う。
func NewRelation(originName, targetName string, offset *Transform) (*Relation, error) {
	origin, err := compileSuffixPattern(originName)
	if err != nil {
		return nil, merrors.NewMalformedInputError("origin", "ボーン名パターンが不正です: %q: %v", originName, err)
	}
	target, err := compileSuffixPattern(targetName)
	if err != nil {
		return nil, merrors.NewMalformedInputError("target", "ボーン名パターンが不正です: %q: %v", targetName, err)
	}
	relation := &Relation{
		originName: originName,
		targetName: targetName,
		origin:     origin,
		target:     target,
	}
	if offset != nil {
		copied := *offset
		relation.offset = &copied
	}
	return relation, nil
}

// OriginName は移植元のボーン名を返す。
func (r *Relation) OriginName() string {
	return r.originName
}

// TargetName は移植先のボーン名を返す。
func (r *Relation) TargetName() string {
	return r.targetName
}

// MatchesOrigin は移植元パターンに一致するか判定する。
func (r *Relation) MatchesOrigin(boneName string) bool {
	return r.origin.MatchString(boneName)
}

// MatchesTarget は移植先パターンに一致するか判定する。
func (r *Relation) MatchesTarget(boneName string) bool {
	return r.target.MatchString(boneName)
}

// Offset はオフセット変換を返す。未指定の場合は恒等変換を返す。
func (r *Relation) Offset() Transform {
	if r.offset == nil {
		return NewIdentityTransform()
	}
	return *r.offset
}

// HasOffset はオフセットが明示されているか判定する。
func (r *Relation) HasOffset() bool {
	return r.offset != nil
}

// String は表示用文字列を返す。
func (r *Relation) String() string {
	return r.originName + " -> " + r.targetName
}

// compileSuffixPattern は名前末尾一致の正規表現を生成する。
func compileSuffixPattern(name string) (*regexp.Regexp, error) {
	return regexp.Compile("^(.*)" + name + "$")
}
