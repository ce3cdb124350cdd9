// 指示: miu200521358
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

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

const (
	batchOutputDirMode = 0o755
)

// batchConfig はバッチ移植の実行設定を表す。
type batchConfig struct {
	ScenePaths []string
	RulePaths  []string
	OutputRoot string
	DryRun     bool
	FailFast   bool
	Lang       string
}

// retargetEntry は1ルール分の移植入力情報を表す。
type retargetEntry struct {
	Index      int
	RulePath   string
	RuleName   string
	OutputPath string
}

// retargetEntryResult は1ルール分の移植結果を表す。
type retargetEntryResult struct {
	Entry         retargetEntry
	Status        string
	Duration      time.Duration
	Err           error
	MatchCount    int
	KeyframeCount int
	ProgressInfo  string
}

// retargetProgressCollector は移植処理の進捗イベントを収集する。
type retargetProgressCollector struct {
	stateCounts map[minteractor.RetargetState]int
	matchMax    int
	frameMax    int
}

// main は同じシーンに対して複数のルール文書で移植を一括実行する。
func main() {
	os.Exit(run())
}

// run は実行設定を解決して一括移植を実行し、終了コードを返す。
func run() int {
	config, err := parseBatchConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定解析に失敗しました: %v\n", err)
		return 2
	}
	logging.SetDefaultLogger(mlogging.NewLogger(os.Stderr))
	printer, err := messages.NewPrinter(config.Lang)
	if err != nil {
		fmt.Fprintf(os.Stderr, "メッセージ初期化に失敗しました: %v\n", err)
		return 2
	}

	entries := buildRetargetEntries(config.OutputRoot, config.RulePaths)
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "移植対象ルールがありません")
		return 2
	}

	results, err := executeBatchRetarget(printer, config, entries)
	if err != nil {
		fmt.Fprintf(os.Stderr, "シーン読み込みに失敗しました: %v\n", err)
		return 2
	}
	printBatchSummary(printer, results)

	for _, result := range results {
		if result.Status == "failed" {
			return 1
		}
	}
	return 0
}

// parseBatchConfig はコマンドライン引数から実行設定を構築する。
func parseBatchConfig() (batchConfig, error) {
	defaultOutputRoot, err := resolveDefaultOutputRoot()
	if err != nil {
		return batchConfig{}, err
	}
	scenes := flag.String("scenes", "", "入力シーンファイルパス(カンマ区切り)")
	rules := flag.String("rules", "", "ルール文書パス(カンマ区切り)。空要素は組み込み対応表")
	outputRoot := flag.String("output-root", defaultOutputRoot, "移植結果の出力ルートディレクトリ")
	dryRun := flag.Bool("dry-run", false, "照合のみ行い、保存しない")
	failFast := flag.Bool("fail-fast", false, "失敗時に即時終了する")
	lang := flag.String("lang", "", "表示言語(ja/en)")
	flag.Parse()

	scenePaths := splitPaths(*scenes)
	if len(scenePaths) == 0 {
		return batchConfig{}, errors.New("scenes が空です")
	}
	rulePaths := strings.Split(*rules, ",")
	for i := range rulePaths {
		rulePaths[i] = normalizeInputPath(rulePaths[i])
	}
	trimmedOutputRoot := strings.TrimSpace(*outputRoot)
	if trimmedOutputRoot == "" {
		return batchConfig{}, errors.New("output-root が空です")
	}
	return batchConfig{
		ScenePaths: scenePaths,
		RulePaths:  rulePaths,
		OutputRoot: filepath.Clean(trimmedOutputRoot),
		DryRun:     *dryRun,
		FailFast:   *failFast,
		Lang:       *lang,
	}, nil
}

// resolveDefaultOutputRoot はスクリプト配置ディレクトリ基準の既定出力先を返す。
func resolveDefaultOutputRoot() (string, error) {
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("実行ファイル位置を取得できません")
	}
	currentDir := filepath.Dir(currentFilePath)
	return filepath.Join(currentDir, "output"), nil
}

// buildRetargetEntries はルールパス一覧から移植対象エントリを生成する。
func buildRetargetEntries(outputRoot string, rulePaths []string) []retargetEntry {
	entries := make([]retargetEntry, 0, len(rulePaths))
	for i, rulePath := range rulePaths {
		ruleName := resolveRuleName(rulePath)
		caseDirName := fmt.Sprintf("%03d_%s", i+1, sanitizePathComponent(ruleName))
		entries = append(entries, retargetEntry{
			Index:      i + 1,
			RulePath:   rulePath,
			RuleName:   ruleName,
			OutputPath: filepath.Join(outputRoot, caseDirName, "scene.yaml"),
		})
	}
	return entries
}

// executeBatchRetarget はシーンを1度だけ読み込み、ルールごとに複製したシーンへ移植する。
func executeBatchRetarget(printer *message.Printer, config batchConfig, entries []retargetEntry) ([]retargetEntryResult, error) {
	sceneRepository := io_scene.NewSceneRepository()
	gltfRepository := gltf.NewGltfRepository()
	gltfRepository.SetWarningReporter(func(warning model.Warning) {
		fmt.Printf("読み込み警告: %s\n", warning.Message)
	})
	usecase := minteractor.NewRetargetUsecase(minteractor.RetargetUsecaseDeps{
		SceneReaders: []moutput.ISceneReader{sceneRepository, gltfRepository},
		SceneWriter:  sceneRepository,
		RuleReader:   io_rule.NewRuleRepository(),
		LegacyTable:  retarget.NewLegacyRelationTable(),
	})
	baseScene, err := usecase.LoadScene(config.ScenePaths...)
	if err != nil {
		return nil, err
	}

	results := make([]retargetEntryResult, 0, len(entries))
	total := len(entries)
	for _, entry := range entries {
		printer.Printf(messages.LogBatchEntryStarted, entry.Index, total, entry.RuleName)
		fmt.Println()
		result := retargetEntryScene(usecase, config, baseScene, entry)
		results = append(results, result)
		switch result.Status {
		case "succeeded":
			fmt.Printf("[%d/%d] 移植成功: rules=%s matches=%d keyframes=%d output=%s elapsed=%s\n", entry.Index, total, entry.RuleName, result.MatchCount, result.KeyframeCount, entry.OutputPath, result.Duration.Round(time.Millisecond))
			if strings.TrimSpace(result.ProgressInfo) != "" {
				fmt.Printf("[%d/%d] 進捗: %s\n", entry.Index, total, result.ProgressInfo)
			}
		case "dry_run":
			fmt.Printf("[%d/%d] DRY-RUN: rules=%s matches=%d output=%s\n", entry.Index, total, entry.RuleName, result.MatchCount, entry.OutputPath)
		default:
			fmt.Printf("[%d/%d] 移植失敗: rules=%s reason=%v\n", entry.Index, total, entry.RuleName, result.Err)
			if config.FailFast {
				return results, nil
			}
		}
	}
	return results, nil
}

// retargetEntryScene は1ルール分の移植を実行する。元シーンは変更しない。
func retargetEntryScene(usecase *minteractor.RetargetUsecase, config batchConfig, baseScene *model.Scene, entry retargetEntry) retargetEntryResult {
	result := retargetEntryResult{
		Entry:  entry,
		Status: "failed",
	}
	ruleSet, err := usecase.LoadRuleSet(entry.RulePath)
	if err != nil {
		result.Err = fmt.Errorf("LoadRuleSetに失敗しました: %w", err)
		return result
	}
	scene, err := baseScene.Clone()
	if err != nil {
		result.Err = fmt.Errorf("シーン複製に失敗しました: %w", err)
		return result
	}

	startedAt := time.Now()
	progressCollector := newRetargetProgressCollector()
	request := minteractor.RetargetRequest{
		Host:             host.NewSceneHost(scene),
		RuleSet:          ruleSet,
		ProgressReporter: progressCollector,
	}
	if config.DryRun {
		retargeted, err := usecase.DryRun(request)
		if err != nil {
			result.Err = fmt.Errorf("DryRunに失敗しました: %w", err)
			return result
		}
		result.Status = "dry_run"
		result.MatchCount = len(retargeted.Matches)
		return result
	}
	retargeted, err := usecase.Retarget(request)
	if err != nil {
		result.Err = fmt.Errorf("Retargetに失敗しました: %w", err)
		return result
	}
	if err := os.MkdirAll(filepath.Dir(entry.OutputPath), batchOutputDirMode); err != nil {
		result.Err = fmt.Errorf("出力ディレクトリ作成に失敗しました: %w", err)
		return result
	}
	if err := usecase.SaveScene(entry.OutputPath, scene, moutput.SaveOptions{Overwrite: true}); err != nil {
		result.Err = fmt.Errorf("SaveSceneに失敗しました: %w", err)
		return result
	}

	result.Status = "succeeded"
	result.Duration = time.Since(startedAt)
	result.MatchCount = len(retargeted.Matches)
	result.KeyframeCount = retargeted.KeyframeCount
	result.ProgressInfo = progressCollector.Summary()
	return result
}

// printBatchSummary は移植結果の集計を標準出力へ表示する。
func printBatchSummary(printer *message.Printer, results []retargetEntryResult) {
	succeeded := 0
	failed := 0
	dryRun := 0
	for _, result := range results {
		switch result.Status {
		case "succeeded":
			succeeded++
		case "dry_run":
			dryRun++
		default:
			failed++
		}
	}
	printer.Printf(messages.LogBatchSummary, len(results), succeeded, failed, dryRun)
	fmt.Println()
}

// resolveRuleName はルールパスから拡張子を除いた名前を返す。空パスは組み込み対応表を表す。
func resolveRuleName(path string) string {
	if strings.TrimSpace(path) == "" {
		return "legacy"
	}
	base := strings.TrimSpace(filepath.Base(path))
	name := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if name == "" {
		return "rules"
	}
	return name
}

// splitPaths はカンマ区切りのパスを分割し、空要素を除いて正規化する。
func splitPaths(value string) []string {
	paths := make([]string, 0)
	for _, raw := range strings.Split(value, ",") {
		if path := normalizeInputPath(raw); path != "" {
			paths = append(paths, path)
		}
	}
	return paths
}

// normalizeInputPath は入力パスを実行環境向けに正規化する。
func normalizeInputPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	return filepath.Clean(convertWindowsPathToWsl(path))
}

// convertWindowsPathToWsl は Linux 実行時に Windows パスを WSL パスへ変換する。
func convertWindowsPathToWsl(path string) string {
	trimmed := strings.TrimSpace(path)
	if runtime.GOOS != "linux" {
		return trimmed
	}
	if len(trimmed) < 2 || trimmed[1] != ':' {
		return trimmed
	}
	drive := strings.ToLower(trimmed[:1])
	rest := strings.ReplaceAll(trimmed[2:], "\\", "/")
	if rest == "" {
		return filepath.ToSlash(filepath.Join("/mnt", drive))
	}
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return filepath.ToSlash(filepath.Join("/mnt", drive) + rest)
}

// sanitizePathComponent は出力ディレクトリ名に使えない文字を置換する。
func sanitizePathComponent(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "rules"
	}
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		default:
			if r < 0x20 {
				return '_'
			}
			return r
		}
	}, trimmed)
	replaced = strings.Trim(replaced, " .")
	if replaced == "" {
		return "rules"
	}
	return replaced
}

// newRetargetProgressCollector は移植進捗収集器を生成する。
func newRetargetProgressCollector() *retargetProgressCollector {
	return &retargetProgressCollector{
		stateCounts: map[minteractor.RetargetState]int{},
	}
}

// ReportRetargetProgress は移植処理の進捗イベントを収集する。
func (collector *retargetProgressCollector) ReportRetargetProgress(event minteractor.RetargetProgressEvent) {
	if collector == nil {
		return
	}
	if collector.stateCounts == nil {
		collector.stateCounts = map[minteractor.RetargetState]int{}
	}
	collector.stateCounts[event.State]++
	if event.MatchCount > collector.matchMax {
		collector.matchMax = event.MatchCount
	}
	if event.FrameTotal > collector.frameMax {
		collector.frameMax = event.FrameTotal
	}
}

// Summary は収集した進捗の要約文字列を返す。
func (collector *retargetProgressCollector) Summary() string {
	if collector == nil || len(collector.stateCounts) == 0 {
		return ""
	}
	states := make([]string, 0, len(collector.stateCounts))
	for state := range collector.stateCounts {
		states = append(states, string(state))
	}
	sort.Strings(states)
	return fmt.Sprintf(
		"states=%d matchMax=%d frameMax=%d stages=%s",
		len(collector.stateCounts),
		collector.matchMax,
		collector.frameMax,
		strings.Join(states, ","),
	)
}
