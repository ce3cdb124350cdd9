// 指示: miu200521358
package retarget

import "regexp"

// legacyBoneNames は組み込み対応表の体幹・四肢ボーン名。
var legacyBoneNames = []string{
	"root", "hip", "spine_01", "spine_02", "spine_03",
	"head", "head_end", "jaw", "jaw_end", "neck",
	"eye_r", "eye_end_r", "eyelid_r", "eyelid_end_r", "eyebrow_r", "mouth_r",
	"eye_l", "eye_end_l", "eyelid_l", "eyelid_end_l", "eyebrow_l", "mouth_l",
	"shoulder_r", "upperarm_r", "upperarm_twist_r", "lowerarm_r", "lowerarm_twist_r", "hand_r",
	"shoulder_l", "upperarm_l", "upperarm_twist_l", "lowerarm_l", "lowerarm_twist_l", "hand_l",
	"upperleg_r", "upperleg_twist_r", "lowerleg_r", "lowerleg_twist_r", "foot_r", "ball_r", "foot_end_r",
	"upperleg_l", "upperleg_twist_l", "lowerleg_l", "lowerleg_twist_l", "foot_l", "ball_l", "foot_end_l",
}

// legacyFingerNames は組み込み対応表の指名。
var legacyFingerNames = []string{"thumb", "index", "middle", "ring", "pinky"}

// legacyFingerPartNames は組み込み対応表の指関節接尾辞。
var legacyFingerPartNames = []string{"_01_r", "_01_l", "_02_r", "_02_l", "_03_r", "_03_l", "_end_r", "_end_l"}

// LegacyRelationTable は同名ボーン同士を対応付ける組み込み対応表を表す。生成後は変更しない。
type LegacyRelationTable struct {
	boneNames []string
	relations []*Relation
}

// NewLegacyRelationTable は組み込みボーン名と指の組み合わせから対応表を生成する。
// プロセス起動時に一度だけ生成し、リターゲット処理へ渡して使い回す。
func NewLegacyRelationTable() *LegacyRelationTable {
	names := make([]string, 0, len(legacyBoneNames)+len(legacyFingerNames)*len(legacyFingerPartNames))
	names = append(names, legacyBoneNames...)
	for _, finger := range legacyFingerNames {
		for _, part := range legacyFingerPartNames {
			names = append(names, finger+part)
		}
	}

	relations := make([]*Relation, 0, len(names))
	for _, name := range names {
		pattern := regexp.MustCompile("^(.*)" + name + "$")
		relations = append(relations, &Relation{
			originName: name,
			targetName: name,
			origin:     pattern,
			target:     pattern,
		})
	}
	return &LegacyRelationTable{boneNames: names, relations: relations}
}

// Relations は対応表のルール一覧の複製を返す。
func (t *LegacyRelationTable) Relations() []*Relation {
	if t == nil {
		return nil
	}
	return append([]*Relation(nil), t.relations...)
}

// BoneNames は対応表のボーン名一覧の複製を返す。
func (t *LegacyRelationTable) BoneNames() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.boneNames...)
}

// Len はルール数を返す。
func (t *LegacyRelationTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.relations)
}
