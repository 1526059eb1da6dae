package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"ingredient-canonicalizer/internal/core/pipeline"
	"ingredient-canonicalizer/internal/core/reference"
	"ingredient-canonicalizer/internal/infrastructure/config"
	"ingredient-canonicalizer/internal/pkg/common"

	"go.uber.org/zap"
)

// 批次處理器：逐行讀取 NDJSON、worker 池並行處理、按輸入順序寫出。
// 管線本身無狀態，順序重組只在收集端做。

// Processor 批次處理器
type Processor struct {
	config  *config.Config
	pipe    *pipeline.Pipeline
	store   IdempotencyStore
	tracker *ErrorTracker
}

// NewProcessor 創建批次處理器
func NewProcessor(cfg *config.Config, repo *reference.Repository, store IdempotencyStore) *Processor {
	return &Processor{
		config:  cfg,
		pipe:    pipeline.New(repo, cfg.Pipeline),
		store:   store,
		tracker: NewErrorTracker(),
	}
}

type job struct {
	index int
	row   pipeline.InputRow
	bad   bool // 無法解碼的輸入列
	raw   string
}

type result struct {
	index int
	rec   pipeline.Record
}

// Run 執行整個批次。輸出行序與輸入行序一致。
func (p *Processor) Run(ctx context.Context) error {
	start := time.Now()
	runID := common.GenerateUUID()

	in, err := openInput(p.config.Batch.InputFile)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(p.config.Batch.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	common.LogInfo("啟動批次處理",
		zap.String("run_id", runID),
		zap.String("input", p.config.Batch.InputFile),
		zap.String("output", p.config.Batch.OutputFile),
		zap.Int("workers", p.config.Batch.Workers),
	)

	jobs := make(chan job, p.config.Batch.MaxQueueSize)
	results := make(chan result, p.config.Batch.MaxQueueSize)

	var wg sync.WaitGroup
	for i := 0; i < p.config.Batch.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(jobs, results)
		}()
	}

	// 收集端：亂序結果按 index 重組後寫出
	writerDone := make(chan error, 1)
	lineSeqs := make(map[string][]int)
	go func() {
		writerDone <- p.collect(ctx, results, out, lineSeqs)
	}()

	total, readErr := p.feed(ctx, in, jobs)
	close(jobs)
	wg.Wait()
	close(results)

	if err := <-writerDone; err != nil {
		return err
	}
	if readErr != nil {
		return readErr
	}

	p.scanSequenceGaps(lineSeqs)

	report := p.tracker.Build(runID)
	if p.config.Batch.ErrorTxtFile != "" {
		if err := report.WriteText(p.config.Batch.ErrorTxtFile); err != nil {
			return fmt.Errorf("failed to write text report: %w", err)
		}
	}
	if p.config.Batch.ErrorJSONFile != "" {
		if err := report.WriteJSON(p.config.Batch.ErrorJSONFile); err != nil {
			return fmt.Errorf("failed to write json report: %w", err)
		}
	}

	common.LogInfo("批次處理完成",
		zap.String("run_id", runID),
		zap.Int("total", total),
		zap.Int("rejected", report.RejectedRows),
		zap.Int("duplicates", report.DuplicateRows),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// feed 逐行讀取輸入並送入隊列，回傳讀取的總行數
func (p *Processor) feed(ctx context.Context, in io.Reader, jobs chan<- job) (int, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	index := 0
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}

		j := job{index: index, raw: line}
		if err := common.ParseJSON(line, &j.row); err != nil {
			j.bad = true
			common.LogWarn("輸入列解碼失敗",
				zap.Int("line", index+1),
				zap.Error(err),
			)
		}

		select {
		case jobs <- j:
		case <-ctx.Done():
			return index, ctx.Err()
		}
		index++
	}
	if err := scanner.Err(); err != nil {
		return index, fmt.Errorf("failed to read input: %w", err)
	}
	return index, nil
}

// worker 處理隊列中的列。worker 之間無共享狀態，冪等鍵裁決留給收集端。
func (p *Processor) worker(jobs <-chan job, results chan<- result) {
	for j := range jobs {
		var rec pipeline.Record
		if j.bad {
			rec = pipeline.Record{
				RejectCode:        common.RejectTypeMismatch,
				PackageMultiplier: 1.0,
				BridgeRequired:    pipeline.BridgeNone,
			}
		} else {
			rec = p.pipe.Process(j.row)
		}
		results <- result{index: j.index, rec: rec}
	}
}

// collect 按輸入順序重組並寫出，同時蒐集各食譜的行號序列。
// 冪等鍵在這裡按輸入順序裁決：重複鍵永遠是後到的那份被略過，與排程無關。
func (p *Processor) collect(ctx context.Context, results <-chan result, out io.Writer, lineSeqs map[string][]int) error {
	w := bufio.NewWriter(out)
	enc := json.NewEncoder(w)

	pending := make(map[int]result)
	next := 0
	var writeErr error
	// 寫入失敗後仍需把 results 讀完，否則 worker 會卡在發送端
	for res := range results {
		pending[res.index] = res
		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++

			if r.rec.RejectCode == "" && r.rec.IdempotencyKey != "" {
				first, err := p.store.MarkProcessed(ctx, r.rec.IdempotencyKey)
				if err != nil {
					common.LogWarn("冪等鍵存儲失敗", zap.Error(err))
				} else if !first {
					p.tracker.TrackDuplicate()
					continue
				}
			}

			p.tracker.Track(&r.rec)
			if writeErr == nil {
				if err := enc.Encode(r.rec); err != nil {
					writeErr = fmt.Errorf("failed to write record: %w", err)
				}
			}
			if r.rec.RejectCode == "" && r.rec.RecipeID != "" {
				lineSeqs[r.rec.RecipeID] = append(lineSeqs[r.rec.RecipeID], r.rec.IngredientLineNumber)
			}
		}
	}
	if writeErr != nil {
		return writeErr
	}
	return w.Flush()
}

// scanSequenceGaps 檢查各食譜行號是否連續
func (p *Processor) scanSequenceGaps(lineSeqs map[string][]int) {
	recipes := make([]string, 0, len(lineSeqs))
	for recipeID := range lineSeqs {
		recipes = append(recipes, recipeID)
	}
	sort.Strings(recipes)

	for _, recipeID := range recipes {
		lines := lineSeqs[recipeID]
		sort.Ints(lines)
		prev := 0
		for _, n := range lines {
			if n == prev {
				continue // 重送的同一列不算斷檔
			}
			for missing := prev + 1; missing < n; missing++ {
				p.tracker.TrackSequenceGap(recipeID, missing)
			}
			prev = n
		}
	}
}

// openInput 打開輸入：- 表示標準輸入
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	return f, nil
}
