package watcher

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/audio"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/scanner"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

// Processor 为单个文件生成字幕
type Processor interface {
	ProcessAndReport(ctx context.Context, input string, kind models.SourceKind, outputPath string) (*models.Result, error)
}

// MediaWatcher 监控目录，为新出现的媒体文件在同目录生成同名字幕。
// 文件按到达顺序逐个处理。
type MediaWatcher struct {
	dir       string
	debounce  time.Duration
	processor Processor
	scanner   *scanner.MediaScanner

	ctx       context.Context
	mu        sync.Mutex           // 串行处理
	stateMu   sync.Mutex
	processed map[string]time.Time // 路径 -> 处理时的修改时间
	failed    int
}

// NewMediaWatcher 创建媒体文件监控器
func NewMediaWatcher(dir string, cfg *models.Config, processor Processor) *MediaWatcher {
	return &MediaWatcher{
		dir:       dir,
		debounce:  time.Duration(cfg.WatchDebounceMs) * time.Millisecond,
		processor: processor,
		scanner:   scanner.NewMediaScanner(cfg.WatchExtensions, audio.DefaultVideoExtensions),
		ctx:       context.Background(),
		processed: make(map[string]time.Time),
	}
}

// Run 先处理目录中已有但没有字幕的文件，然后监控新文件直到ctx取消
func (w *MediaWatcher) Run(ctx context.Context) error {
	w.ctx = ctx

	monitor, err := NewFolderMonitor(w.dir, w.scanner.Match, w, w.debounce)
	if err != nil {
		return err
	}
	if err := monitor.Start(); err != nil {
		return err
	}
	defer monitor.Stop()

	files, err := w.scanner.ScanDirectory(w.dir)
	if err != nil {
		return err
	}
	for _, file := range w.scanner.FilterPending(files) {
		if ctx.Err() != nil {
			break
		}
		w.OnFileReady(file.Path)
	}

	utils.Info("媒体文件监控已启动，按 Ctrl+C 停止")
	<-ctx.Done()
	utils.Info("媒体文件监控已停止")
	return nil
}

// OnFileReady 为文件生成字幕，同一版本的文件只处理一次
func (w *MediaWatcher) OnFileReady(filePath string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ctx.Err() != nil {
		return
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return
	}

	w.stateMu.Lock()
	last, seen := w.processed[filePath]
	w.stateMu.Unlock()
	if seen && last.Equal(info.ModTime()) {
		utils.Debug("文件未变化，跳过: %s", filePath)
		return
	}

	_, err = w.processor.ProcessAndReport(w.ctx, filePath, models.SourceLocal, scanner.SubtitlePath(filePath))

	w.stateMu.Lock()
	// 失败的文件也记录，避免同一版本反复重试
	w.processed[filePath] = info.ModTime()
	if err != nil {
		w.failed++
	}
	w.stateMu.Unlock()
}

// OnFileRemoved 删除的文件再次出现时重新处理
func (w *MediaWatcher) OnFileRemoved(filePath string) {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	delete(w.processed, filePath)
}

// Stats 返回已处理和失败的文件数
func (w *MediaWatcher) Stats() (processed, failed int) {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	return len(w.processed), w.failed
}
