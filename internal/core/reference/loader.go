package reference

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ingredient-canonicalizer/internal/infrastructure/config"
	"ingredient-canonicalizer/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// 快照固定檔名
const (
	fileIngredients      = "ingredients.json"
	fileForms            = "forms.json"
	fileDensities        = "densities.json"
	fileMeaningTokens    = "meaning_tokens.txt"
	fileCategoryDefaults = "category_defaults.json"
)

// LoadSnapshot 載入參照資料快照。
// base 為本地目錄路徑，或 http(s) base URL（經 resty 抓取）。
func LoadSnapshot(cfg config.ReferenceConfig) (*Snapshot, error) {
	fetch, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{}

	data, err := fetch(fileIngredients, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredient table: %w", err)
	}
	if err := common.ParseJSONBytes(data, &snap.Ingredients); err != nil {
		return nil, fmt.Errorf("failed to parse ingredient table: %w", err)
	}

	data, err = fetch(fileForms, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load form table: %w", err)
	}
	if err := common.ParseJSONBytes(data, &snap.Forms); err != nil {
		return nil, fmt.Errorf("failed to parse form table: %w", err)
	}

	data, err = fetch(fileDensities, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load density table: %w", err)
	}
	if err := common.ParseJSONBytes(data, &snap.Densities); err != nil {
		return nil, fmt.Errorf("failed to parse density table: %w", err)
	}

	data, err = fetch(fileMeaningTokens, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load meaning token allow-list: %w", err)
	}
	snap.MeaningTokens = parseTokenList(data)

	// 類別預設形態為可選檔案
	data, err = fetch(fileCategoryDefaults, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load category defaults: %w", err)
	}
	if data != nil {
		if err := common.ParseJSONBytes(data, &snap.CategoryDefaults); err != nil {
			return nil, fmt.Errorf("failed to parse category defaults: %w", err)
		}
	}

	// 舊版快照以分號分隔別名欄位
	for i := range snap.Ingredients {
		ing := &snap.Ingredients[i]
		if len(ing.Aliases) == 0 && ing.AliasesRaw != "" {
			for _, alias := range strings.Split(ing.AliasesRaw, ";") {
				if alias = strings.TrimSpace(alias); alias != "" {
					ing.Aliases = append(ing.Aliases, alias)
				}
			}
		}
	}

	common.LogInfo("參照資料已載入",
		zap.String("base", cfg.Base),
		zap.Int("ingredients", len(snap.Ingredients)),
		zap.Int("forms", len(snap.Forms)),
		zap.Int("densities", len(snap.Densities)),
		zap.Int("meaning_tokens", len(snap.MeaningTokens)),
	)

	return snap, nil
}

// newFetcher 依據 base 建立檔案抓取函式。
// required=false 且檔案不存在時回傳 (nil, nil)。
func newFetcher(cfg config.ReferenceConfig) (func(name string, required bool) ([]byte, error), error) {
	base := strings.TrimRight(cfg.Base, "/")

	if strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://") {
		client := resty.New().
			SetTimeout(cfg.Timeout).
			SetRetryCount(2)

		return func(name string, required bool) ([]byte, error) {
			resp, err := client.R().Get(base + "/" + name)
			if err != nil {
				return nil, err
			}
			if resp.StatusCode() == 404 && !required {
				return nil, nil
			}
			if resp.IsError() {
				return nil, fmt.Errorf("fetch %s: unexpected status %d", name, resp.StatusCode())
			}
			return resp.Body(), nil
		}, nil
	}

	info, err := os.Stat(base)
	if err != nil {
		return nil, fmt.Errorf("reference base not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("reference base is not a directory: %s", base)
	}

	return func(name string, required bool) ([]byte, error) {
		data, err := os.ReadFile(filepath.Join(base, name))
		if os.IsNotExist(err) && !required {
			return nil, nil
		}
		return data, err
	}, nil
}

// parseTokenList 解析允許清單文字檔：一行一 token，# 開頭為註解
func parseTokenList(data []byte) []string {
	var tokens []string
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens = append(tokens, strings.ToLower(line))
	}
	return tokens
}
