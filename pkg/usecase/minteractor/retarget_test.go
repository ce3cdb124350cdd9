// 指示: miu200521358
package minteractor

import (
	"testing"

	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_retarget/pkg/domain/retarget"
	"github.com/miu200521358/mu_retarget/pkg/infra/host"
)

// progressRecorder は進捗イベントを記録する。
type progressRecorder struct {
	states []RetargetState
}

// ReportRetargetProgress は進捗イベントの状態を記録する。
func (r *progressRecorder) ReportRetargetProgress(event RetargetProgressEvent) {
	r.states = append(r.states, event.State)
}

// buildRetargetSceneForTest は移植元(source)と移植先(target)を持つシーンを構築する。
// 移植元 hip はフレーム0..3でキーを持つ。
func buildRetargetSceneForTest(t *testing.T) *model.Scene {
	t.Helper()
	scene := model.NewScene("test")

	source := model.NewArmature("source")
	source.AddBone(model.NewBone("mixamorig:root", "", mmath.NewMat4()))
	source.AddBone(model.NewBone("mixamorig:hip", "mixamorig:root", mmath.NewVec3(0, 1, 0).ToMat4()))
	source.Animation = model.NewAnimation("walk")
	hipTrack := source.Animation.EnsureTrack("mixamorig:hip")
	rootTrack := source.Animation.EnsureTrack("mixamorig:root")
	for frame := 0; frame <= 3; frame++ {
		f := float64(frame)
		hipTrack.SetLocation(f, mmath.NewVec3(0, 0, f))
		hipTrack.SetRotation(f, mmath.NewQuaternionFromAxisAngle(mmath.UNIT_Y_VEC3, 0.1*f))
		rootTrack.SetLocation(f, mmath.NewVec3(f, 0, 0))
	}
	scene.AddObject(&model.SceneObject{Name: "source", Type: model.OBJECT_TYPE_ARMATURE, Armature: source})

	target := model.NewArmature("target")
	target.AddBone(model.NewBone("root", "", mmath.NewMat4()))
	target.AddBone(model.NewBone("hip", "root", mmath.NewVec3(0, 0.9, 0).ToMat4()))
	target.Animation = model.NewAnimation("old")
	target.Animation.EnsureTrack("hip").SetLocation(10, mmath.NewVec3(5, 5, 5))
	scene.AddObject(&model.SceneObject{Name: "target", Type: model.OBJECT_TYPE_ARMATURE, Armature: target})
	scene.AddObject(&model.SceneObject{Name: "body", Type: model.OBJECT_TYPE_MESH, Parent: "target"})
	scene.AddObject(&model.SceneObject{Name: "lamp", Type: model.OBJECT_TYPE_EMPTY})

	scene.Select("target", "source", "target")
	return scene
}

// newRuleSetForTest は名前の組からRuleSetを生成する。
func newRuleSetForTest(t *testing.T, pairs ...[2]string) *retarget.RuleSet {
	t.Helper()
	ruleSet := &retarget.RuleSet{}
	for _, pair := range pairs {
		relation, err := retarget.NewRelation(pair[0], pair[1], nil)
		if err != nil {
			t.Fatalf("relation failed: %v", err)
		}
		ruleSet.Relations = append(ruleSet.Relations, relation)
	}
	return ruleSet
}

// armatureForTest はシーンからアーマチュアを取り出す。
func armatureForTest(t *testing.T, scene *model.Scene, name string) *model.Armature {
	t.Helper()
	object, ok := scene.ObjectByName(name)
	if !ok || !object.IsArmature() {
		t.Fatalf("armature not found: %s", name)
	}
	return object.Armature
}

func TestRetargetCopiesFramesAndRestoresCurrentFrame(t *testing.T) {
	scene := buildRetargetSceneForTest(t)
	sceneHost := host.NewSceneHost(scene)
	sceneHost.SetCurrentFrame(2)
	recorder := &progressRecorder{}

	uc := NewRetargetUsecase(RetargetUsecaseDeps{})
	result, err := uc.Retarget(RetargetRequest{
		Host:             sceneHost,
		RuleSet:          newRuleSetForTest(t, [2]string{"root", "root"}, [2]string{"hip", "hip"}),
		ProgressReporter: recorder,
	})
	if err != nil {
		t.Fatalf("retarget failed: %v", err)
	}
	if result.Status != RetargetStatusFinished || result.State != RetargetStateDone {
		t.Fatalf("status mismatch: %s %s", result.Status, result.State)
	}
	if result.OriginArmature != "source" || result.TargetArmature != "target" {
		t.Fatalf("armature mismatch: %s -> %s", result.OriginArmature, result.TargetArmature)
	}
	if len(result.Matches) != 2 || result.Matches[1] != (retarget.Match{RelationIndex: 1, OriginBone: "mixamorig:hip", TargetBone: "hip"}) {
		t.Fatalf("matches mismatch: %+v", result.Matches)
	}
	if result.FrameCount != 4 || result.KeyframeCount != 16 {
		t.Fatalf("count mismatch: frames=%d keyframes=%d", result.FrameCount, result.KeyframeCount)
	}
	if result.RunID == "" {
		t.Fatalf("run id is empty")
	}
	if sceneHost.CurrentFrame() != 2 {
		t.Fatalf("current frame not restored: %d", sceneHost.CurrentFrame())
	}

	source := armatureForTest(t, scene, "source")
	target := armatureForTest(t, scene, "target")
	if target.Animation == nil {
		t.Fatalf("target animation missing")
	}
	if _, _, ok := sceneHost.AnimationFrameRange("target"); !ok {
		t.Fatalf("target animation range missing")
	}
	start, end := target.Animation.FrameRange()
	if start != 0 || end != 3 {
		t.Fatalf("old target keys should be discarded: %f..%f", start, end)
	}
	sourceTrack, _ := source.Animation.Track("mixamorig:hip")
	targetTrack, ok := target.Animation.Track("hip")
	if !ok {
		t.Fatalf("target hip track missing")
	}
	if len(targetTrack.Locations) != 4 || len(targetTrack.Rotations) != 4 {
		t.Fatalf("target key count mismatch: %d %d", len(targetTrack.Locations), len(targetTrack.Rotations))
	}
	for frame := 0; frame <= 3; frame++ {
		f := float64(frame)
		wantLocation, _ := sourceTrack.LocationAt(f)
		wantRotation, _ := sourceTrack.RotationAt(f)
		if got := targetTrack.Locations[frame]; got.Frame != f || !got.Value.NearEquals(wantLocation, 1e-9) {
			t.Fatalf("location mismatch at %d: %+v", frame, got)
		}
		if got := targetTrack.Rotations[frame]; got.Frame != f || !got.Value.NearEquals(wantRotation, 1e-9) {
			t.Fatalf("rotation mismatch at %d: %+v", frame, got)
		}
	}

	wantStates := []RetargetState{
		RetargetStateSelectingObjects,
		RetargetStateResolvingArmatures,
		RetargetStateMatching,
		RetargetStateCorrectingRestPose,
		RetargetStateCopyingFrames,
		RetargetStateCopyingFrames,
		RetargetStateDone,
	}
	if len(recorder.states) != len(wantStates) {
		t.Fatalf("progress mismatch: %v", recorder.states)
	}
	for i := range wantStates {
		if recorder.states[i] != wantStates[i] {
			t.Fatalf("progress mismatch at %d: %v", i, recorder.states)
		}
	}
}

func TestRetargetAppliesOffsetToTargetRest(t *testing.T) {
	scene := buildRetargetSceneForTest(t)
	sceneHost := host.NewSceneHost(scene)
	translation := mmath.NewVec3(0, 0.5, 0)
	offset := retarget.NewTransform(nil, &translation)
	relation, err := retarget.NewRelation("hip", "hip", &offset)
	if err != nil {
		t.Fatalf("relation failed: %v", err)
	}

	uc := NewRetargetUsecase(RetargetUsecaseDeps{})
	if _, err := uc.Retarget(RetargetRequest{
		Host:    sceneHost,
		RuleSet: &retarget.RuleSet{Relations: []*retarget.Relation{relation}},
	}); err != nil {
		t.Fatalf("retarget failed: %v", err)
	}

	target := armatureForTest(t, scene, "target")
	hip, _ := target.BoneByName("hip")
	if got := hip.Rest.Translation(); !got.NearEquals(mmath.NewVec3(0, 1.4, 0), 1e-9) {
		t.Fatalf("rest translation mismatch: %s", got)
	}
	if target.PoseMode != model.POSE_MODE_POSE || armatureForTest(t, scene, "source").PoseMode != model.POSE_MODE_POSE {
		t.Fatalf("pose mode should be restored")
	}
}

func TestRetargetWithoutMatchesWarnsAndFinishes(t *testing.T) {
	scene := buildRetargetSceneForTest(t)
	uc := NewRetargetUsecase(RetargetUsecaseDeps{})

	result, err := uc.Retarget(RetargetRequest{
		Host:    host.NewSceneHost(scene),
		RuleSet: newRuleSetForTest(t, [2]string{"tail", "tail"}),
	})
	if err != nil {
		t.Fatalf("retarget failed: %v", err)
	}
	if result.Status != RetargetStatusFinished || len(result.Matches) != 0 || result.KeyframeCount != 0 {
		t.Fatalf("result mismatch: %+v", result)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].ID != model.WarningNoMatches {
		t.Fatalf("warning mismatch: %v", result.Warnings)
	}
}

func TestRetargetCarriesRuleWarnings(t *testing.T) {
	scene := buildRetargetSceneForTest(t)
	ruleSet := newRuleSetForTest(t, [2]string{"hip", "hip"})
	ruleSet.Warnings = []model.Warning{model.NewWarning(model.WarningOffsetPositionDefaulted, "position省略")}

	result, err := NewRetargetUsecase(RetargetUsecaseDeps{}).Retarget(RetargetRequest{
		Host:    host.NewSceneHost(scene),
		RuleSet: ruleSet,
	})
	if err != nil {
		t.Fatalf("retarget failed: %v", err)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].ID != model.WarningOffsetPositionDefaulted {
		t.Fatalf("warning mismatch: %v", result.Warnings)
	}
}

func TestRetargetPreconditionFailuresDoNotMutate(t *testing.T) {
	cases := []struct {
		name     string
		active   string
		selected []string
		check    func(error) bool
	}{
		{name: "single selection", active: "target", selected: []string{"target"}, check: merrors.IsSelectionError},
		{name: "duplicated selection", active: "target", selected: []string{"target", "target"}, check: merrors.IsSelectionError},
		{name: "three selected", active: "target", selected: []string{"source", "target", "lamp"}, check: merrors.IsSelectionError},
		{name: "no active", active: "", selected: []string{"source", "target"}, check: merrors.IsSelectionError},
		{name: "active outside selection", active: "lamp", selected: []string{"source", "target"}, check: merrors.IsSelectionError},
		{name: "no armature", active: "target", selected: []string{"lamp", "target"}, check: merrors.IsNoArmatureFoundError},
		{name: "same armature", active: "target", selected: []string{"body", "target"}, check: merrors.IsSameArmatureError},
		{name: "origin without armature", active: "source", selected: []string{"source", "lamp"}, check: merrors.IsNoArmatureFoundError},
	}
	for _, tc := range cases {
		scene := buildRetargetSceneForTest(t)
		scene.Select(tc.active, tc.selected...)

		result, err := NewRetargetUsecase(RetargetUsecaseDeps{}).Retarget(RetargetRequest{
			Host:    host.NewSceneHost(scene),
			RuleSet: newRuleSetForTest(t, [2]string{"hip", "hip"}),
		})
		if !tc.check(err) {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if result.Status != RetargetStatusCancelled || result.Reason == "" {
			t.Fatalf("%s: result mismatch: %+v", tc.name, result)
		}
		target := armatureForTest(t, scene, "target")
		if _, end := target.Animation.FrameRange(); end != 10 {
			t.Fatalf("%s: target animation should be untouched", tc.name)
		}
	}
}

func TestRetargetRequiresOriginAnimation(t *testing.T) {
	scene := buildRetargetSceneForTest(t)
	armatureForTest(t, scene, "source").Animation = nil

	result, err := NewRetargetUsecase(RetargetUsecaseDeps{}).Retarget(RetargetRequest{
		Host:    host.NewSceneHost(scene),
		RuleSet: newRuleSetForTest(t, [2]string{"hip", "hip"}),
	})
	if !merrors.IsNoAnimationError(err) {
		t.Fatalf("expected no animation, got %v", err)
	}
	if result.Status != RetargetStatusCancelled {
		t.Fatalf("status mismatch: %s", result.Status)
	}
	if armatureForTest(t, scene, "target").Animation == nil {
		t.Fatalf("target animation should be untouched")
	}
}

func TestRetargetUsesLegacyTableWhenRuleSetMissing(t *testing.T) {
	scene := buildRetargetSceneForTest(t)
	uc := NewRetargetUsecase(RetargetUsecaseDeps{LegacyTable: retarget.NewLegacyRelationTable()})

	result, err := uc.DryRun(RetargetRequest{Host: host.NewSceneHost(scene)})
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if len(result.Matches) == 0 {
		t.Fatalf("expected legacy matches")
	}
}

func TestDryRunDoesNotMutateHost(t *testing.T) {
	scene := buildRetargetSceneForTest(t)
	sceneHost := host.NewSceneHost(scene)
	sceneHost.SetCurrentFrame(1)

	result, err := NewRetargetUsecase(RetargetUsecaseDeps{}).DryRun(RetargetRequest{
		Host:    sceneHost,
		RuleSet: newRuleSetForTest(t, [2]string{"root", "root"}, [2]string{"hip", "hip"}),
	})
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if !result.DryRun || len(result.Matches) != 2 || result.FrameCount != 4 || result.KeyframeCount != 0 {
		t.Fatalf("dry run result mismatch: %+v", result)
	}
	target := armatureForTest(t, scene, "target")
	if _, end := target.Animation.FrameRange(); end != 10 {
		t.Fatalf("target animation should be untouched")
	}
	if sceneHost.CurrentFrame() != 1 {
		t.Fatalf("current frame changed: %d", sceneHost.CurrentFrame())
	}
}

func TestLoadRuleSetFallsBackToLegacyTable(t *testing.T) {
	uc := NewRetargetUsecase(RetargetUsecaseDeps{LegacyTable: retarget.NewLegacyRelationTable()})

	ruleSet, err := uc.LoadRuleSet("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if ruleSet.Len() != 88 {
		t.Fatalf("legacy relation count mismatch: %d", ruleSet.Len())
	}
	if len(ruleSet.Warnings) != 1 || ruleSet.Warnings[0].ID != model.WarningLegacyRelations {
		t.Fatalf("warning mismatch: %v", ruleSet.Warnings)
	}
}

// shiftSourceAnimationForTest は移植元のキーを全て負のフレームへ置き換える。
func shiftSourceAnimationForTest(t *testing.T, scene *model.Scene) {
	t.Helper()
	source := armatureForTest(t, scene, "source")
	source.Animation = model.NewAnimation("negative")
	hipTrack := source.Animation.EnsureTrack("mixamorig:hip")
	rootTrack := source.Animation.EnsureTrack("mixamorig:root")
	for _, frame := range []float64{-3, -2} {
		hipTrack.SetLocation(frame, mmath.NewVec3(0, 0, frame))
		rootTrack.SetLocation(frame, mmath.NewVec3(frame, 0, 0))
	}
}

func TestRetargetClampsFrameCountForNegativeRange(t *testing.T) {
	scene := buildRetargetSceneForTest(t)
	shiftSourceAnimationForTest(t, scene)
	uc := NewRetargetUsecase(RetargetUsecaseDeps{})
	ruleSet := newRuleSetForTest(t, [2]string{"root", "root"}, [2]string{"hip", "hip"})

	result, err := uc.Retarget(RetargetRequest{Host: host.NewSceneHost(scene), RuleSet: ruleSet})
	if err != nil {
		t.Fatalf("retarget failed: %v", err)
	}
	if result.FrameCount != 0 || result.KeyframeCount != 0 {
		t.Fatalf("count mismatch: frames=%d keyframes=%d", result.FrameCount, result.KeyframeCount)
	}

	dryRun, err := uc.DryRun(RetargetRequest{Host: host.NewSceneHost(scene), RuleSet: ruleSet})
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if dryRun.FrameCount != 0 {
		t.Fatalf("dry run frame count mismatch: %d", dryRun.FrameCount)
	}
}

func TestLastFrameOf(t *testing.T) {
	cases := map[float64]int{3: 3, 2.2: 3, 0: 0, -0.5: 0, -1: -1, -2: -1, -7.5: -1}
	for end, want := range cases {
		if got := lastFrameOf(end); got != want {
			t.Fatalf("last frame mismatch for %f: %d", end, got)
		}
	}
}
