package controller

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ccp-p/asr-media-cli/speaker-srt/internal/ui"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/asr"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/audio"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/diarize"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/export"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/merge"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/processor"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

// 处理阶段，顺序即执行顺序
const (
	StageAcquire   = "acquire"
	StageProbe     = "probe"
	StageRecognize = "recognize"
	StageDiarize   = "diarize"
	StageEmit      = "emit"
)

var stageLabels = map[string]string{
	StageAcquire:   "获取音频",
	StageProbe:     "读取媒体信息",
	StageRecognize: "语音识别",
	StageDiarize:   "说话人分离",
	StageEmit:      "生成字幕",
}

var stageOrder = []string{StageAcquire, StageProbe, StageRecognize, StageDiarize, StageEmit}

// MediaProber 读取音频时长等信息
type MediaProber interface {
	GetMediaInfo(ctx context.Context, path string) (*processor.MediaInfo, error)
}

// SpeechRecognizer 按服务名识别音频
type SpeechRecognizer interface {
	RunWithService(ctx context.Context, audioPath, serviceName string) ([]models.Segment, string, error)
	GetStats() map[string]map[string]interface{}
}

// ProcessorController 处理器控制器，按顺序执行获取、识别、分离、合并和导出
type ProcessorController struct {
	Config *models.Config

	// 处理组件
	Sources      map[models.SourceKind]audio.Provider
	Prober       MediaProber
	Recognizer   SpeechRecognizer
	Diarizer     diarize.Diarizer // 为nil时所有片段标记为UNKNOWN
	SRTExporter  *export.SRTExporter
	JSONExporter *export.JSONExporter

	// UI组件
	Terminal        *ui.TerminalManager
	ProgressManager *ui.ProgressManager
	ErrorHandler    *utils.ErrorHandler

	// 状态数据
	Stats struct {
		StartTime       time.Time
		TotalFiles      int
		SuccessfulFiles int
		FailedFiles     int
	}

	cleanup []func() // 清理函数列表
	mu      sync.Mutex
}

// NewProcessorController 按配置创建控制器和全部处理组件
func NewProcessorController(cfg *models.Config, term *ui.TerminalManager) *ProcessorController {
	extractor := audio.NewAudioExtractor(cfg.FFmpegCommand)

	pc := &ProcessorController{
		Config: cfg,
		Sources: map[models.SourceKind]audio.Provider{
			models.SourceLocal:   audio.NewLocalSource(extractor, cfg.TempDir),
			models.SourceYouTube: audio.NewYouTubeSource(cfg.YtDlpCommand, cfg.TempDir),
		},
		Prober:          processor.NewMediaProcessor(cfg.FFprobeCommand),
		Recognizer:      asr.NewDefaultSelector(cfg, nil),
		SRTExporter:     export.NewSRTExporter(),
		JSONExporter:    export.NewJSONExporter(cfg.WhisperX.Language),
		Terminal:        term,
		ProgressManager: ui.NewProgressManager(term, cfg.ShowProgress),
		ErrorHandler:    utils.NewErrorHandler(),
	}
	if cfg.Diarize.Enabled {
		pc.Diarizer = diarize.NewPyannoteDiarizer(cfg.Diarize, cfg.HFToken())
	} else {
		utils.Warn("说话人分离已关闭，所有字幕将标记为 %s", models.UnknownSpeaker)
	}

	if pc.ProgressManager.Enabled() {
		// 进度条占用终端时日志只写文件
		utils.EnableTerminalProgress()
		pc.addCleanup(utils.DisableTerminalProgress)
	}
	pc.Stats.StartTime = time.Now()
	return pc
}

// Process 处理一个输入并把字幕写入outputPath。
// 获取的临时音频在任何退出路径上都会被清理。
func (pc *ProcessorController) Process(ctx context.Context, input string, kind models.SourceKind, outputPath string) (result *models.Result, err error) {
	start := time.Now()
	runID := uuid.NewString()
	result = models.NewResult(runID, input, kind)
	log := utils.WithFields(logrus.Fields{"run_id": runID, "input": input, "source": kind})

	pc.mu.Lock()
	pc.Stats.TotalFiles++
	pc.mu.Unlock()

	barID := "run_" + runID
	pc.ProgressManager.CreateProgressBar(barID, len(stageOrder), "处理", "准备中")
	defer func() {
		pc.mu.Lock()
		if err != nil {
			pc.Stats.FailedFiles++
		} else {
			pc.Stats.SuccessfulFiles++
		}
		pc.mu.Unlock()

		status := "完成"
		if err != nil {
			status = "失败"
		}
		pc.ProgressManager.CompleteProgressBar(barID, status)
		result.ProcessTimeMs = time.Since(start).Milliseconds()
		log.WithField("elapsed", time.Since(start).Round(time.Millisecond).String()).Infof("处理%s", status)
	}()

	source, ok := pc.Sources[kind]
	if !ok {
		return result, utils.ValidationError(StageAcquire, "不支持的输入类型: "+string(kind), nil)
	}

	step := 0
	runStage := func(stage string, fn func() error) error {
		step++
		pc.ProgressManager.UpdateProgressBar(barID, step-1, stageLabels[stage])
		stageStart := time.Now()
		log.WithField("stage", stage).Debugf("开始%s", stageLabels[stage])

		if err := ctx.Err(); err != nil {
			return utils.NewError(utils.KindCanceled, stage, "处理已取消", err)
		}
		if err := pc.ErrorHandler.SafeExecute(stage, fn, nil); err != nil {
			return err
		}

		pc.ProgressManager.UpdateProgressBar(barID, step, stageLabels[stage])
		log.WithFields(logrus.Fields{
			"stage":   stage,
			"elapsed": time.Since(stageStart).Round(time.Millisecond).String(),
		}).Infof("%s完成", stageLabels[stage])
		return nil
	}

	var acquired *audio.Audio
	defer func() {
		// Release 在成功、失败和取消时都会执行
		acquired.Release()
	}()

	if err := runStage(StageAcquire, func() error {
		var err error
		acquired, err = source.Acquire(ctx, input)
		return err
	}); err != nil {
		return result, err
	}
	result.AudioPath = acquired.Path

	var info *processor.MediaInfo
	if err := runStage(StageProbe, func() error {
		var err error
		info, err = pc.Prober.GetMediaInfo(ctx, acquired.Path)
		return err
	}); err != nil {
		return result, err
	}
	result.DurationMs = int64(info.Duration * 1000)

	var segments []models.Segment
	if err := runStage(StageRecognize, func() error {
		var err error
		segments, result.Recognizer, err = pc.Recognizer.RunWithService(ctx, acquired.Path, pc.Config.Recognizer)
		return err
	}); err != nil {
		return result, err
	}

	var spans []models.DiarizationSpan
	if err := runStage(StageDiarize, func() error {
		if pc.Diarizer == nil || len(segments) == 0 {
			return nil
		}
		var err error
		spans, err = pc.Diarizer.Diarize(ctx, acquired.Path, info.Duration)
		return err
	}); err != nil {
		return result, err
	}

	if err := runStage(StageEmit, func() error {
		labeled, err := merge.AssignSpeakers(segments, spans)
		if err != nil {
			return err
		}
		count, err := pc.SRTExporter.ExportSRT(labeled, outputPath)
		if err != nil {
			return err
		}
		result.OutputFiles["srt"] = outputPath
		result.SegmentCount = count
		result.SpeakerCounts, result.SpeakerTime = merge.SpeakerStats(labeled)

		if pc.Config.ExportJSON {
			jsonPath := utils.ReplaceExt(outputPath, ".json")
			if err := pc.JSONExporter.ExportJSON(labeled, jsonPath); err != nil {
				return err
			}
			result.OutputFiles["json"] = jsonPath
		}
		return nil
	}); err != nil {
		return result, err
	}

	return result, nil
}

// PrintSummary 打印本次会话的处理统计
func (pc *ProcessorController) PrintSummary() {
	pc.mu.Lock()
	total, ok, failed := pc.Stats.TotalFiles, pc.Stats.SuccessfulFiles, pc.Stats.FailedFiles
	pc.mu.Unlock()
	if total == 0 {
		return
	}

	utils.Info("处理完成: 共 %d 个, 成功 %d 个, 失败 %d 个, 用时 %s",
		total, ok, failed, utils.FormatChineseTimeDuration(time.Since(pc.Stats.StartTime).Seconds()))

	if pc.Recognizer != nil {
		stats := pc.Recognizer.GetStats()
		names := make([]string, 0, len(stats))
		for name := range stats {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			stat := stats[name]
			if stat["count"] == 0 {
				continue
			}
			utils.Info("识别服务 %s: 调用次数=%v, 成功率=%v, 可用=%v",
				name, stat["count"], stat["success_rate"], stat["available"])
		}
	}
	pc.ErrorHandler.PrintErrorStats()
}

// 添加清理函数
func (pc *ProcessorController) addCleanup(cleanup func()) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.cleanup = append(pc.cleanup, cleanup)
}

// Cleanup 逆序执行所有清理函数
func (pc *ProcessorController) Cleanup() {
	if pc.ProgressManager != nil {
		pc.ProgressManager.CloseAll("已中止")
	}

	pc.mu.Lock()
	cleanup := pc.cleanup
	pc.cleanup = nil
	pc.mu.Unlock()

	for i := len(cleanup) - 1; i >= 0; i-- {
		cleanup[i]()
	}
}

// SignalContext 返回收到SIGINT/SIGTERM时取消的上下文
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(c)
		select {
		case <-c:
			utils.Info("接收到中断信号，正在停止...")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// IsCanceled 判断错误是否由取消导致
func IsCanceled(err error) bool {
	return utils.KindOf(err) == utils.KindCanceled || errors.Is(err, context.Canceled)
}
