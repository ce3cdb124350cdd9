// 指示: miu200521358
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"golang.org/x/text/message"

	"github.com/miu200521358/mu_retarget/pkg/adapter/io_model/gltf"
	"github.com/miu200521358/mu_retarget/pkg/adapter/io_rule"
	"github.com/miu200521358/mu_retarget/pkg/adapter/io_scene"
	"github.com/miu200521358/mu_retarget/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/domain/retarget"
	"github.com/miu200521358/mu_retarget/pkg/infra/base/mlogging"
	"github.com/miu200521358/mu_retarget/pkg/infra/host"
	"github.com/miu200521358/mu_retarget/pkg/shared/base/logging"
	"github.com/miu200521358/mu_retarget/pkg/usecase/minteractor"
	"github.com/miu200521358/mu_retarget/pkg/usecase/port/moutput"
)

// sceneList は複数指定可能なシーンパスを保持する。
type sceneList []string

// String はフラグ表示用文字列を返す。
func (s *sceneList) String() string {
	return strings.Join(*s, ",")
}

// Set はシーンパスを追加する。
func (s *sceneList) Set(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("シーンパスが空です")
	}
	*s = append(*s, value)
	return nil
}

// options はCLI引数を保持する。
type options struct {
	scenePaths     []string
	rulesPath      string
	outputPath     string
	overwrite      bool
	originObject   string
	targetObject   string
	normalizeNames bool
	dryRun         bool
	fps            float64
	stationaryRoot string
	lang           string
	logLevel       logging.LogLevel
	dump           bool
}

// main はアニメーション移植を実行する。
func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run はCLI処理全体を実行する。
func run(args []string, out io.Writer, errOut io.Writer) error {
	printer, err := messages.NewPrinter(langFromArgs(args))
	if err != nil {
		return err
	}
	opts, err := parseOptions(args, printer, errOut)
	if err != nil {
		return err
	}

	logger := mlogging.NewLogger(errOut)
	logger.SetLevel(opts.logLevel)
	logging.SetDefaultLogger(logger)

	loadWarnings := make([]model.Warning, 0)
	gltfRepository := gltf.NewGltfRepository()
	gltfRepository.SetFps(opts.fps)
	gltfRepository.SetWarningReporter(func(warning model.Warning) {
		loadWarnings = append(loadWarnings, warning)
	})
	sceneRepository := io_scene.NewSceneRepository()
	usecase := minteractor.NewRetargetUsecase(minteractor.RetargetUsecaseDeps{
		SceneReaders: []moutput.ISceneReader{sceneRepository, gltfRepository},
		SceneWriter:  sceneRepository,
		RuleReader:   io_rule.NewRuleRepository(),
		LegacyTable:  retarget.NewLegacyRelationTable(),
	})

	scene, err := usecase.LoadScene(opts.scenePaths...)
	if err != nil {
		return fmt.Errorf("%s: %w", printer.Sprintf(messages.MessageLoadFailed), err)
	}
	printer.Fprintf(out, messages.LogLoadSuccess, strings.Join(opts.scenePaths, ", "))
	fmt.Fprintln(out)
	printWarnings(out, printer, loadWarnings)
	applySelection(scene, opts)
	sceneHost := host.NewSceneHost(scene)

	if opts.stationaryRoot != "" {
		if err := runStationary(out, printer, usecase, sceneHost, opts); err != nil {
			return err
		}
	} else {
		if err := runRetarget(out, printer, usecase, sceneHost, opts); err != nil {
			return err
		}
	}
	if opts.dryRun {
		return nil
	}

	outputPath := resolveOutputPath(opts.scenePaths[0], opts.outputPath)
	if err := ensureOutputDir(outputPath); err != nil {
		return err
	}
	if err := usecase.SaveScene(outputPath, scene, moutput.SaveOptions{Overwrite: opts.overwrite}); err != nil {
		return fmt.Errorf("%s: %w", printer.Sprintf(messages.MessageSaveFailed), err)
	}
	printer.Fprintf(out, messages.LogSaveSuccess, outputPath)
	fmt.Fprintln(out)
	return nil
}

// runRetarget はルールを読み込んで移植(または照合のみ)を実行し、結果を表示する。
func runRetarget(
	out io.Writer,
	printer *message.Printer,
	usecase *minteractor.RetargetUsecase,
	sceneHost *host.SceneHost,
	opts options,
) error {
	ruleSet, err := usecase.LoadRuleSet(opts.rulesPath)
	if err != nil {
		return fmt.Errorf("%s: %w", printer.Sprintf(messages.MessageLoadFailed), err)
	}
	printer.Fprintf(out, messages.LogRulesLoaded, ruleSet.Len())
	fmt.Fprintln(out)

	request := minteractor.RetargetRequest{
		Host:         sceneHost,
		RuleSet:      ruleSet,
		MatchOptions: retarget.MatchOptions{NormalizeNames: opts.normalizeNames},
	}
	var result *minteractor.RetargetResult
	if opts.dryRun {
		result, err = usecase.DryRun(request)
	} else {
		result, err = usecase.Retarget(request)
	}
	if result != nil {
		printWarnings(out, printer, result.Warnings)
	}
	if err != nil {
		printer.Fprintf(out, messages.LogCancelled, err.Error())
		fmt.Fprintln(out)
		return fmt.Errorf("%s: %w", printer.Sprintf(messages.MessageRetargetFailed), err)
	}

	for _, match := range result.Matches {
		printer.Fprintf(out, messages.LogMatch, match.RelationIndex, match.OriginBone, match.TargetBone)
		fmt.Fprintln(out)
	}
	if opts.dump {
		dumpConfig().Fdump(out, result)
	}
	if opts.dryRun {
		printer.Fprintf(out, messages.LogDryRunFinished, result.OriginArmature, result.TargetArmature, len(result.Matches), result.FrameCount)
	} else {
		printer.Fprintf(out, messages.LogRetargetFinished, result.OriginArmature, result.TargetArmature, len(result.Matches), result.FrameCount, result.KeyframeCount)
	}
	fmt.Fprintln(out)
	return nil
}

// runStationary はアクティブアーマチュアのルート移動を固定する。
func runStationary(
	out io.Writer,
	printer *message.Printer,
	usecase *minteractor.RetargetUsecase,
	sceneHost *host.SceneHost,
	opts options,
) error {
	if opts.dryRun {
		return nil
	}
	result, err := usecase.MakeStationary(minteractor.StationaryRequest{Host: sceneHost, RootName: opts.stationaryRoot})
	if err != nil {
		return fmt.Errorf("%s: %w", printer.Sprintf(messages.MessageStationaryFailed), err)
	}
	if opts.dump {
		dumpConfig().Fdump(out, result)
	}
	printer.Fprintf(out, messages.LogStationaryDone, result.Armature, result.RootBone, result.FrameCount)
	fmt.Fprintln(out)
	return nil
}

// langFromArgs は引数から -lang の値だけを先に取り出す。使い方表示とエラー文言の言語に使う。
func langFromArgs(args []string) string {
	for i, arg := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !strings.HasPrefix(arg, "-") || name != "lang" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// parseOptions はCLI引数を解析する。使い方とエラー文言は printer の言語で出力する。
func parseOptions(args []string, printer *message.Printer, errOut io.Writer) (options, error) {
	fs := flag.NewFlagSet("mu_retarget", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintf(errOut, "%s:\n%s\n\n", printer.Sprintf(messages.HelpUsageTitle), printer.Sprintf(messages.HelpUsage))
		fs.PrintDefaults()
	}

	var scenes sceneList
	fs.Var(&scenes, "scene", printer.Sprintf(messages.LabelScene))
	rules := fs.String("rules", "", printer.Sprintf(messages.LabelRules))
	out := fs.String("out", "", printer.Sprintf(messages.LabelOutput))
	overwrite := fs.Bool("overwrite", false, "既存の出力ファイルを上書きする")
	origin := fs.String("origin", "", printer.Sprintf(messages.LabelOrigin))
	target := fs.String("target", "", printer.Sprintf(messages.LabelTarget))
	normalize := fs.Bool("normalize", false, "ボーン名を正規化して照合する")
	dryRun := fs.Bool("dry-run", false, "照合のみ行い、シーンを変更しない")
	fps := fs.Float64("fps", 30, "glTF読み込み時のフレームレート")
	stationary := fs.String("stationary", "", printer.Sprintf(messages.LabelStationary))
	lang := fs.String("lang", "", "表示言語(ja/en)")
	logLevel := fs.String("log-level", "info", "ログレベル(debug/info/warn/error)")
	dump := fs.Bool("dump", false, "結果の詳細を出力する")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	for _, arg := range fs.Args() {
		if err := scenes.Set(arg); err != nil {
			return options{}, err
		}
	}
	if len(scenes) == 0 {
		return options{}, errors.New(printer.Sprintf(messages.MessageSceneRequired))
	}
	if *origin != "" && *origin == *target {
		return options{}, errors.New(printer.Sprintf(messages.MessageSelectionConflict, *origin))
	}
	if *fps <= 0 {
		return options{}, fmt.Errorf("フレームレートが不正です: %v", *fps)
	}
	if *out != "" && !isSceneOutputExt(*out) {
		return options{}, errors.New(printer.Sprintf(messages.MessageOutputExtInvalid, *out))
	}
	level, err := logging.ParseLogLevel(*logLevel)
	if err != nil {
		return options{}, err
	}

	return options{
		scenePaths:     scenes,
		rulesPath:      *rules,
		outputPath:     *out,
		overwrite:      *overwrite,
		originObject:   *origin,
		targetObject:   *target,
		normalizeNames: *normalize,
		dryRun:         *dryRun,
		fps:            *fps,
		stationaryRoot: *stationary,
		lang:           *lang,
		logLevel:       level,
		dump:           *dump,
	}, nil
}

// applySelection は -origin/-target 指定でシーンの選択状態を置き換える。
// -target のみ指定された場合はアクティブだけを差し替える。
func applySelection(scene *model.Scene, opts options) {
	switch {
	case opts.originObject != "" && opts.targetObject != "":
		scene.Select(opts.targetObject, opts.originObject, opts.targetObject)
	case opts.targetObject != "":
		scene.Select(opts.targetObject, scene.Selected...)
	case opts.originObject != "" && scene.Active != "":
		scene.Select(scene.Active, opts.originObject, scene.Active)
	}
}

// printWarnings は警告を1行ずつ表示する。
func printWarnings(out io.Writer, printer *message.Printer, warnings []model.Warning) {
	for _, warning := range warnings {
		printer.Fprintf(out, messages.LogWarning, warning.Message)
		fmt.Fprintln(out)
	}
}

// dumpConfig は詳細出力用の設定を返す。
func dumpConfig() *spew.ConfigState {
	return &spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
}

// isSceneOutputExt はシーン文書として保存できる拡張子か判定する。
func isSceneOutputExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}

// resolveOutputPath は出力シーンパスを解決する。未指定時は入力と同じ場所へ _retarget.yaml を付けて保存する。
func resolveOutputPath(inputPath string, outputPath string) string {
	if strings.TrimSpace(outputPath) != "" {
		return outputPath
	}
	dir := filepath.Dir(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(dir, base+"_retarget.yaml")
}

// ensureOutputDir は出力先ディレクトリを作成する。
func ensureOutputDir(outputPath string) error {
	dir := filepath.Dir(outputPath)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("出力先ディレクトリの作成に失敗しました: %w", err)
	}
	return nil
}
