// 指示: miu200521358
// Package gltf はglTF/GLB/VRMからアーマチュアとアニメーションを読み込む。
package gltf

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_retarget/pkg/shared/base/logging"
)

const (
	glbHeaderLength   = 12
	glbChunkHeadSize  = 8
	glbMagic          = 0x46546C67
	glbJSONChunkType  = 0x4E4F534A
	glbBINChunkType   = 0x004E4942
	glbMinValidLength = glbHeaderLength + glbChunkHeadSize

	defaultFps = 30.0
)

// LoadProgressEventType はglTF読込進捗イベント種別を表す。
type LoadProgressEventType string

const (
	// LoadProgressEventTypeFileReadComplete はファイル読込完了イベントを表す。
	LoadProgressEventTypeFileReadComplete LoadProgressEventType = "file_read_complete"
	// LoadProgressEventTypeJsonParsed はJSON解析完了イベントを表す。
	LoadProgressEventTypeJsonParsed LoadProgressEventType = "json_parsed"
	// LoadProgressEventTypeSkinProcessed はスキン変換進行イベントを表す。
	LoadProgressEventTypeSkinProcessed LoadProgressEventType = "skin_processed"
	// LoadProgressEventTypeCompleted はglTF読込完了イベントを表す。
	LoadProgressEventTypeCompleted LoadProgressEventType = "completed"
)

// LoadProgressEvent はglTF読込進捗イベントを表す。
type LoadProgressEvent struct {
	Type           LoadProgressEventType
	FileSizeBytes  int
	NodeCount      int
	AccessorCount  int
	SkinTotal      int
	SkinDone       int
	AnimationCount int
}

// GltfRepository はglTF入力の読み込み契約を表す。
type GltfRepository struct {
	fps                  float64
	loadProgressReporter func(LoadProgressEvent)
	warningReporter      func(model.Warning)
}

// NewGltfRepository はGltfRepositoryを生成する。
func NewGltfRepository() *GltfRepository {
	return &GltfRepository{fps: defaultFps}
}

// SetFps はキーフレーム時刻をフレーム番号へ変換するフレームレートを設定する。0以下は既定値に戻す。
func (r *GltfRepository) SetFps(fps float64) {
	if r == nil {
		return
	}
	if fps <= 0 {
		fps = defaultFps
	}
	r.fps = fps
}

// SetLoadProgressReporter は読込進捗受信コールバックを設定する。
func (r *GltfRepository) SetLoadProgressReporter(reporter func(LoadProgressEvent)) {
	if r == nil {
		return
	}
	r.loadProgressReporter = reporter
}

// SetWarningReporter は読込時の警告受信コールバックを設定する。
func (r *GltfRepository) SetWarningReporter(reporter func(model.Warning)) {
	if r == nil {
		return
	}
	r.warningReporter = reporter
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *GltfRepository) CanLoad(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".vrm", ".gltf":
		return true
	default:
		return false
	}
}

// InferName はパスから表示名を推定する。
func (r *GltfRepository) InferName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

// Load はglTFを読み込みシーンを構築する。
func (r *GltfRepository) Load(path string) (*model.Scene, error) {
	if !r.CanLoad(path) {
		return nil, merrors.NewModelLoadFailedError(path, merrors.NewMalformedInputError("", "未対応の拡張子です: %s", filepath.Ext(path)))
	}
	loadTargetName := filepath.Base(path)
	logGltfInfo("glTF読込開始: file=%s", loadTargetName)

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, merrors.NewModelLoadFailedError(path, err)
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:          LoadProgressEventTypeFileReadComplete,
		FileSizeBytes: len(b),
	})
	logGltfDebug("glTF読込ステップ: ファイル読み取り完了 bytes=%d", len(b))

	jsonChunk, binChunk, err := r.splitChunks(path, b)
	if err != nil {
		return nil, merrors.WithSource(err, path)
	}

	doc := gltfDocument{}
	if err := json.Unmarshal(jsonChunk, &doc); err != nil {
		return nil, merrors.WithSource(merrors.NewMalformedInputError("json", "JSONの解析に失敗しました: %v", err), path)
	}
	if binChunk == nil {
		binChunk, err = loadExternalBuffer(path, doc.Buffers)
		if err != nil {
			return nil, merrors.WithSource(err, path)
		}
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:           LoadProgressEventTypeJsonParsed,
		FileSizeBytes:  len(b),
		NodeCount:      len(doc.Nodes),
		AccessorCount:  len(doc.Accessors),
		SkinTotal:      len(doc.Skins),
		AnimationCount: len(doc.Animations),
	})
	logGltfInfo(
		"glTF読込ステップ: JSON解析完了 nodes=%d skins=%d animations=%d accessors=%d",
		len(doc.Nodes),
		len(doc.Skins),
		len(doc.Animations),
		len(doc.Accessors),
	)

	builder := newSceneBuilder(&doc, binChunk, r.fps, r.reportWarning)
	scene, err := builder.build(r.InferName(path), func(done int) {
		r.reportLoadProgress(LoadProgressEvent{
			Type:           LoadProgressEventTypeSkinProcessed,
			FileSizeBytes:  len(b),
			NodeCount:      len(doc.Nodes),
			AccessorCount:  len(doc.Accessors),
			SkinTotal:      len(doc.Skins),
			SkinDone:       done,
			AnimationCount: len(doc.Animations),
		})
	})
	if err != nil {
		return nil, merrors.WithSource(err, path)
	}

	r.reportLoadProgress(LoadProgressEvent{
		Type:           LoadProgressEventTypeCompleted,
		FileSizeBytes:  len(b),
		NodeCount:      len(doc.Nodes),
		AccessorCount:  len(doc.Accessors),
		SkinTotal:      len(doc.Skins),
		SkinDone:       len(doc.Skins),
		AnimationCount: len(doc.Animations),
	})
	logGltfInfo("glTF読込完了: file=%s objects=%d armatures=%d", loadTargetName, len(scene.Objects), len(scene.ArmatureObjects()))
	return scene, nil
}

// splitChunks は拡張子に応じてJSONとBINを取り出す。.gltf はBINを返さない。
func (r *GltfRepository) splitChunks(path string, b []byte) ([]byte, []byte, error) {
	if strings.EqualFold(filepath.Ext(path), ".gltf") {
		return b, nil, nil
	}
	return parseGLBChunks(b)
}

// reportLoadProgress は読込進捗イベントを通知する。
func (r *GltfRepository) reportLoadProgress(event LoadProgressEvent) {
	if r == nil || r.loadProgressReporter == nil {
		return
	}
	r.loadProgressReporter(event)
}

// reportWarning は警告をログへ出力し、コールバックへ通知する。
func (r *GltfRepository) reportWarning(warning model.Warning) {
	logGltfWarn("%s", warning.Message)
	if r == nil || r.warningReporter == nil {
		return
	}
	r.warningReporter(warning)
}

// logGltfInfo はglTF読込のINFOログを出力する。
func logGltfInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logGltfDebug はglTF読込のデバッグログを出力する。
func logGltfDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// logGltfWarn はglTF読込の警告ログを出力する。
func logGltfWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}

// parseGLBChunks はGLBからJSONチャンクと最初のBINチャンクを取り出す。
func parseGLBChunks(b []byte) ([]byte, []byte, error) {
	if len(b) < glbMinValidLength {
		return nil, nil, merrors.NewMalformedInputError("glb", "GLBヘッダが不足しています")
	}
	if binary.LittleEndian.Uint32(b[0:4]) != glbMagic {
		return nil, nil, merrors.NewMalformedInputError("glb", "GLBマジックが不正です")
	}
	if version := binary.LittleEndian.Uint32(b[4:8]); version != 2 {
		return nil, nil, merrors.NewMalformedInputError("glb", "GLBバージョンが未対応です: %d", version)
	}
	totalLength := int(binary.LittleEndian.Uint32(b[8:12]))
	if totalLength <= 0 || totalLength > len(b) {
		return nil, nil, merrors.NewMalformedInputError("glb", "GLB全体長が不正です")
	}

	var jsonChunk []byte
	var binChunk []byte
	offset := glbHeaderLength
	for offset+glbChunkHeadSize <= totalLength {
		chunkLength := int(binary.LittleEndian.Uint32(b[offset : offset+4]))
		chunkType := binary.LittleEndian.Uint32(b[offset+4 : offset+8])
		chunkStart := offset + glbChunkHeadSize
		chunkEnd := chunkStart + chunkLength
		if chunkLength < 0 || chunkEnd > totalLength {
			return nil, nil, merrors.NewMalformedInputError("glb", "GLBチャンク長が不正です")
		}
		switch chunkType {
		case glbJSONChunkType:
			if jsonChunk == nil {
				jsonChunk = b[chunkStart:chunkEnd]
			}
		case glbBINChunkType:
			if binChunk == nil {
				binChunk = b[chunkStart:chunkEnd]
			}
		}
		offset = chunkEnd
	}
	if len(jsonChunk) == 0 {
		return nil, nil, merrors.NewMalformedInputError("glb", "GLB JSONチャンクが見つかりません")
	}
	return jsonChunk, binChunk, nil
}

// loadExternalBuffer は.gltfのbuffers[0]をdata URIまたは相対パスから読み込む。
func loadExternalBuffer(path string, buffers []gltfBuffer) ([]byte, error) {
	if len(buffers) == 0 || buffers[0].URI == "" {
		return nil, nil
	}
	uri := buffers[0].URI
	if strings.HasPrefix(uri, "data:") {
		comma := strings.Index(uri, ",")
		if comma < 0 || !strings.Contains(uri[:comma], ";base64") {
			return nil, merrors.NewMalformedInputError("buffers[0].uri", "data URIが不正です")
		}
		decoded, err := base64.StdEncoding.DecodeString(uri[comma+1:])
		if err != nil {
			return nil, merrors.NewMalformedInputError("buffers[0].uri", "base64の解析に失敗しました: %v", err)
		}
		return decoded, nil
	}
	if filepath.IsAbs(uri) || strings.Contains(uri, "://") {
		return nil, merrors.NewMalformedInputError("buffers[0].uri", "相対パス以外のURIは未対応です: %s", uri)
	}
	data, err := os.ReadFile(filepath.Join(filepath.Dir(path), filepath.FromSlash(uri)))
	if err != nil {
		return nil, merrors.NewModelLoadFailedError(uri, err)
	}
	return data, nil
}
