// 指示: miu200521358
package minteractor

import (
	"testing"

	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_retarget/pkg/infra/host"
)

func TestMakeStationaryZeroesRootLocation(t *testing.T) {
	scene := buildRetargetSceneForTest(t)
	scene.Select("source", "source")
	sceneHost := host.NewSceneHost(scene)
	sceneHost.SetCurrentFrame(3)

	result, err := NewRetargetUsecase(RetargetUsecaseDeps{}).MakeStationary(StationaryRequest{Host: sceneHost})
	if err != nil {
		t.Fatalf("stationary failed: %v", err)
	}
	if result.Armature != "source" || result.RootBone != "mixamorig:root" {
		t.Fatalf("result mismatch: %+v", result)
	}
	if result.FrameCount != 4 || result.KeyframeCount != 4 {
		t.Fatalf("count mismatch: frames=%d keyframes=%d", result.FrameCount, result.KeyframeCount)
	}
	if sceneHost.CurrentFrame() != 3 {
		t.Fatalf("current frame not restored: %d", sceneHost.CurrentFrame())
	}

	track, _ := armatureForTest(t, scene, "source").Animation.Track("mixamorig:root")
	for _, key := range track.Locations {
		if !key.Value.NearEquals(mmath.ZERO_VEC3, 1e-12) {
			t.Fatalf("root location not zeroed at %f: %s", key.Frame, key.Value)
		}
	}
	hipTrack, _ := armatureForTest(t, scene, "source").Animation.Track("mixamorig:hip")
	if got, _ := hipTrack.LocationAt(2); !got.NearEquals(mmath.NewVec3(0, 0, 2), 1e-12) {
		t.Fatalf("hip should be untouched: %s", got)
	}
}

func TestMakeStationaryFailures(t *testing.T) {
	scene := buildRetargetSceneForTest(t)
	scene.Select("source", "source")
	uc := NewRetargetUsecase(RetargetUsecaseDeps{})

	result, err := uc.MakeStationary(StationaryRequest{Host: host.NewSceneHost(scene), RootName: "pelvis"})
	if !merrors.IsNoRootBoneError(err) {
		t.Fatalf("expected no root bone, got %v", err)
	}
	if result.Status != RetargetStatusCancelled {
		t.Fatalf("status mismatch: %s", result.Status)
	}

	armatureForTest(t, scene, "target").Animation = nil
	scene.Select("body", "body")
	if _, err := uc.MakeStationary(StationaryRequest{Host: host.NewSceneHost(scene)}); !merrors.IsNoAnimationError(err) {
		t.Fatalf("expected no animation, got %v", err)
	}

	scene.Select("lamp", "lamp")
	if _, err := uc.MakeStationary(StationaryRequest{Host: host.NewSceneHost(scene)}); !merrors.IsNoArmatureFoundError(err) {
		t.Fatalf("expected no armature, got %v", err)
	}

	scene.Select("")
	if _, err := uc.MakeStationary(StationaryRequest{Host: host.NewSceneHost(scene)}); !merrors.IsSelectionError(err) {
		t.Fatalf("expected selection error, got %v", err)
	}
}

func TestMakeStationaryClampsFrameCountForNegativeRange(t *testing.T) {
	scene := buildRetargetSceneForTest(t)
	shiftSourceAnimationForTest(t, scene)
	scene.Select("source", "source")

	result, err := NewRetargetUsecase(RetargetUsecaseDeps{}).MakeStationary(StationaryRequest{Host: host.NewSceneHost(scene)})
	if err != nil {
		t.Fatalf("stationary failed: %v", err)
	}
	if result.FrameCount != 0 || result.KeyframeCount != 0 {
		t.Fatalf("count mismatch: frames=%d keyframes=%d", result.FrameCount, result.KeyframeCount)
	}
}
