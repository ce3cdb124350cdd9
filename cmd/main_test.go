// 指示: miu200521358
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/message"

	"github.com/miu200521358/mu_retarget/pkg/adapter/io_scene"
	"github.com/miu200521358/mu_retarget/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
)

const cliSceneYAML = `
name: cli
active: target
selected: [source, target]
objects:
  - name: source
    armature:
      bones:
        - name: mixamorig:Hips
          head: [0, 1, 0]
      animation:
        name: walk
        tracks:
          - bone: mixamorig:Hips
            location:
              - {frame: 0, value: [0, 0, 0]}
              - {frame: 2, value: [0, 0, 2]}
  - name: target
    armature:
      bones:
        - name: Hips
          head: [0, 0.9, 0]
`

const cliRulesYAML = `
relations:
  - origin: {name: Hips}
`

// writeFileForTest は一時ディレクトリへファイルを書き出す。
func writeFileForTest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	return path
}

// newPrinterForTest は指定言語のメッセージプリンタを生成する。
func newPrinterForTest(t *testing.T, lang string) *message.Printer {
	t.Helper()
	printer, err := messages.NewPrinter(lang)
	if err != nil {
		t.Fatalf("printer failed: %v", err)
	}
	return printer
}

func TestParseOptionsWithFlags(t *testing.T) {
	errBuf := bytes.NewBuffer(nil)
	opts, err := parseOptions([]string{
		"-scene", "a.yaml", "-scene", "b.glb", "-rules", "rules.yaml", "-out", "out.json",
		"-origin", "source", "-target", "target", "-normalize", "-fps", "60", "-log-level", "debug",
	}, newPrinterForTest(t, "ja"), errBuf)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(opts.scenePaths) != 2 || opts.scenePaths[1] != "b.glb" {
		t.Fatalf("scenePaths mismatch: %v", opts.scenePaths)
	}
	if opts.rulesPath != "rules.yaml" || opts.outputPath != "out.json" {
		t.Fatalf("path mismatch: %+v", opts)
	}
	if !opts.normalizeNames || opts.fps != 60 || opts.originObject != "source" || opts.targetObject != "target" {
		t.Fatalf("options mismatch: %+v", opts)
	}
}

func TestParseOptionsWithPositionals(t *testing.T) {
	opts, err := parseOptions([]string{"a.yaml", "b.yaml"}, newPrinterForTest(t, "ja"), bytes.NewBuffer(nil))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(opts.scenePaths) != 2 {
		t.Fatalf("scenePaths mismatch: %v", opts.scenePaths)
	}
}

func TestParseOptionsRejectsInvalidInput(t *testing.T) {
	cases := [][]string{
		{},
		{"-scene", "a.yaml", "-out", "out.pmx"},
		{"-scene", "a.yaml", "-origin", "rig", "-target", "rig"},
		{"-scene", "a.yaml", "-fps", "0"},
		{"-scene", "a.yaml", "-log-level", "verbose"},
	}
	for _, args := range cases {
		if _, err := parseOptions(args, newPrinterForTest(t, "ja"), bytes.NewBuffer(nil)); err == nil {
			t.Fatalf("expected error: %v", args)
		}
	}
}

func TestParseOptionsLocalizesMessages(t *testing.T) {
	_, err := parseOptions([]string{"-scene", "a.yaml", "-origin", "rig", "-target", "rig"}, newPrinterForTest(t, "en"), bytes.NewBuffer(nil))
	if err == nil || err.Error() != "Origin and target must be different objects: rig" {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = parseOptions([]string{}, newPrinterForTest(t, "ja"), bytes.NewBuffer(nil))
	if err == nil || err.Error() != messages.MessageSceneRequired {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = parseOptions([]string{"-scene", "a.yaml", "-out", "out.pmx"}, newPrinterForTest(t, "en"), bytes.NewBuffer(nil))
	if err == nil || !strings.Contains(err.Error(), "Output extension is not") {
		t.Fatalf("unexpected error: %v", err)
	}

	errBuf := bytes.NewBuffer(nil)
	if _, err := parseOptions([]string{"-help"}, newPrinterForTest(t, "en"), errBuf); err == nil {
		t.Fatalf("expected help error")
	}
	if !strings.Contains(errBuf.String(), "Usage:") || !strings.Contains(errBuf.String(), "Origin object name") {
		t.Fatalf("usage mismatch: %s", errBuf.String())
	}
}

func TestLangFromArgs(t *testing.T) {
	cases := map[string][]string{
		"en": {"-scene", "a.yaml", "-lang", "en"},
		"ja": {"--lang=ja"},
		"":   {"-scene", "lang"},
	}
	for want, args := range cases {
		if got := langFromArgs(args); got != want {
			t.Fatalf("lang mismatch for %v: %q", args, got)
		}
	}
}

func TestResolveOutputPathDefault(t *testing.T) {
	out := resolveOutputPath(filepath.Join("work", "dance.glb"), "")
	if out != filepath.Join("work", "dance_retarget.yaml") {
		t.Fatalf("default output mismatch: %s", out)
	}
	if got := resolveOutputPath("dance.glb", "x.json"); got != "x.json" {
		t.Fatalf("explicit output mismatch: %s", got)
	}
}

func TestApplySelection(t *testing.T) {
	scene := model.NewScene("s")
	applySelection(scene, options{originObject: "a", targetObject: "b"})
	if scene.Active != "b" || len(scene.Selected) != 2 || scene.Selected[0] != "a" {
		t.Fatalf("selection mismatch: %s %v", scene.Active, scene.Selected)
	}
	applySelection(scene, options{originObject: "c"})
	if scene.Active != "b" || scene.Selected[0] != "c" {
		t.Fatalf("origin replacement mismatch: %s %v", scene.Active, scene.Selected)
	}
}

func TestRunRetargetsAndSavesScene(t *testing.T) {
	dir := t.TempDir()
	scenePath := writeFileForTest(t, dir, "scene.yaml", cliSceneYAML)
	rulesPath := writeFileForTest(t, dir, "rules.yaml", cliRulesYAML)
	outputPath := filepath.Join(dir, "out", "result.yaml")
	out := bytes.NewBuffer(nil)

	err := run([]string{"-scene", scenePath, "-rules", rulesPath, "-out", outputPath, "-lang", "en", "-log-level", "error"}, out, bytes.NewBuffer(nil))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out.String(), "Retarget finished: source -> target matches=1 frames=3 keyframes=6") {
		t.Fatalf("unexpected output: %s", out.String())
	}

	saved, err := io_scene.NewSceneRepository().Load(outputPath)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	target, _ := saved.ObjectByName("target")
	if target.Armature.Animation == nil || target.Armature.Animation.KeyframeCount() != 6 {
		t.Fatalf("saved animation mismatch: %+v", target.Armature.Animation)
	}

	err = run([]string{"-scene", scenePath, "-rules", rulesPath, "-out", outputPath, "-log-level", "error"}, bytes.NewBuffer(nil), bytes.NewBuffer(nil))
	if err == nil {
		t.Fatalf("expected overwrite refusal")
	}
}

func TestRunDryRunDoesNotSave(t *testing.T) {
	dir := t.TempDir()
	scenePath := writeFileForTest(t, dir, "scene.yaml", cliSceneYAML)
	out := bytes.NewBuffer(nil)

	if err := run([]string{"-scene", scenePath, "-dry-run", "-dump", "-lang", "en", "-log-level", "error"}, out, bytes.NewBuffer(nil)); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out.String(), "Dry run finished") {
		t.Fatalf("unexpected output: %s", out.String())
	}
	if !strings.Contains(out.String(), "Warning: ") {
		t.Fatalf("legacy rule warning expected: %s", out.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "scene_retarget.yaml")); !os.IsNotExist(err) {
		t.Fatalf("dry run should not save: %v", err)
	}
}

func TestRunStationary(t *testing.T) {
	dir := t.TempDir()
	scenePath := writeFileForTest(t, dir, "scene.yaml", cliSceneYAML)
	outputPath := filepath.Join(dir, "stationary.json")

	err := run([]string{"-scene", scenePath, "-target", "source", "-stationary", "Hips", "-out", outputPath, "-log-level", "error"}, bytes.NewBuffer(nil), bytes.NewBuffer(nil))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	saved, err := io_scene.NewSceneRepository().Load(outputPath)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	source, _ := saved.ObjectByName("source")
	track, ok := source.Armature.Animation.Track("mixamorig:Hips")
	if !ok || len(track.Locations) != 3 {
		t.Fatalf("track mismatch: %+v", track)
	}
	for _, key := range track.Locations {
		if key.Value.Length() != 0 {
			t.Fatalf("root should be stationary: %+v", key)
		}
	}
}
