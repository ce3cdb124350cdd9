// 指示: miu200521358
package io_rule

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_retarget/pkg/domain/retarget"
	"github.com/miu200521358/mu_retarget/pkg/shared/base/logging"
)

// RuleRepository はルール文書ファイルを読み込む。
type RuleRepository struct{}

// NewRuleRepository はRuleRepositoryを生成する。
func NewRuleRepository() *RuleRepository {
	return &RuleRepository{}
}

// CanLoad は対応拡張子か判定する。
func (r *RuleRepository) CanLoad(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Load はルール文書を読み込み、展開済みRuleSetを返す。
// ファイルは展開前に読み切って閉じる。
func (r *RuleRepository) Load(path string) (*retarget.RuleSet, error) {
	if !r.CanLoad(path) {
		return nil, merrors.WithSource(
			merrors.NewMalformedInputError("", "ルール文書の拡張子が未対応です: %s", filepath.Ext(path)),
			path,
		)
	}
	data, err := readAll(path)
	if err != nil {
		return nil, err
	}
	ruleSet, err := Parse(data)
	if err != nil {
		return nil, merrors.WithSource(err, path)
	}
	logRuleInfo("ルール読み込み: %s relations=%d warnings=%d", path, ruleSet.Len(), len(ruleSet.Warnings))
	return ruleSet, nil
}

// LoadRuleFile はルール文書を読み込んで展開する。
func LoadRuleFile(path string) (*retarget.RuleSet, error) {
	return NewRuleRepository().Load(path)
}

// Parse はルール文書のバイト列を解析して展開する。
func Parse(data []byte) (*retarget.RuleSet, error) {
	document, err := DecodeRuleDocument(data)
	if err != nil {
		return nil, err
	}
	return Expand(document)
}

// readAll はファイルを開いて全体を読み、閉じる。
func readAll(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ルール文書を開けません: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("ルール文書を読み込めません: %w", err)
	}
	return data, nil
}

// logRuleInfo はルール読み込みのINFOログを出力する。
func logRuleInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}
