// 指示: miu200521358
package retarget

import "testing"

func TestLegacyRelationTableContents(t *testing.T) {
	table := NewLegacyRelationTable()
	if table.Len() != 88 {
		t.Fatalf("legacy relation count mismatch: got=%d want=88", table.Len())
	}

	names := table.BoneNames()
	index := map[string]int{}
	for i, name := range names {
		if _, exists := index[name]; exists {
			t.Fatalf("duplicate legacy bone name: %s", name)
		}
		index[name] = i
	}
	for _, name := range []string{"root", "foot_end_r", "upperleg_l", "thumb_01_r", "pinky_end_l"} {
		if _, ok := index[name]; !ok {
			t.Fatalf("legacy bone name missing: %s", name)
		}
	}
	if names[len(names)-1] != "pinky_end_l" {
		t.Fatalf("finger combinations should come last: %s", names[len(names)-1])
	}
}

func TestLegacyRelationsAreSelfPairing(t *testing.T) {
	table := NewLegacyRelationTable()
	for _, relation := range table.Relations() {
		if relation.OriginName() != relation.TargetName() {
			t.Fatalf("legacy relation should pair same name: %s", relation)
		}
		if relation.HasOffset() {
			t.Fatalf("legacy relation should not carry explicit offset: %s", relation)
		}
	}
	matches := FindMatches(table.Relations(), []string{"mixamorig:hip"}, []string{"Armature_hip"}, MatchOptions{})
	if len(matches) != 1 || matches[0].RelationIndex != 1 {
		t.Fatalf("legacy hip match mismatch: %v", matches)
	}
}

func TestLegacyRelationsReturnsCopy(t *testing.T) {
	table := NewLegacyRelationTable()
	relations := table.Relations()
	relations[0] = nil
	if table.Relations()[0] == nil {
		t.Fatalf("table should not be mutated through returned slice")
	}
}
