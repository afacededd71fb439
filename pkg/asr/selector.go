package asr

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

// ServiceCreator 是创建识别服务实例的函数类型，服务不可用时返回错误
type ServiceCreator func() (Recognizer, error)

// ServiceStats 服务统计数据
type ServiceStats struct {
	SuccessCount int
	TotalCount   int
	Available    bool
}

// ASRSelector 语音服务选择器，按名称或优先级选择识别服务
type ASRSelector struct {
	mu          sync.RWMutex
	services    map[string]ServiceCreator // 服务创建函数
	weights     map[string]int            // 优先级，越大越优先
	counters    map[string]int            // 使用计数
	stats       map[string]*ServiceStats  // 统计信息
	serviceList []string                  // 服务名称列表，按注册顺序
	cache       *Cache
	cacheParams map[string][]string // 服务名 -> 参与缓存键的参数
}

// NewASRSelector 创建新的识别服务选择器，cache为nil时不使用缓存
func NewASRSelector(cache *Cache) *ASRSelector {
	return &ASRSelector{
		services:    make(map[string]ServiceCreator),
		weights:     make(map[string]int),
		counters:    make(map[string]int),
		stats:       make(map[string]*ServiceStats),
		serviceList: make([]string, 0),
		cache:       cache,
		cacheParams: make(map[string][]string),
	}
}

// SetCacheParams 设置服务的缓存键参数，参数变化后不会命中旧的缓存
func (s *ASRSelector) SetCacheParams(name string, params ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cacheParams[name] = params
}

// NewDefaultSelector 按配置注册WhisperX和快手识别服务
func NewDefaultSelector(cfg *models.Config, run utils.CommandRunner) *ASRSelector {
	var cache *Cache
	if cfg.UseCache {
		cache = NewCache(cfg.CacheDir)
	}
	s := NewASRSelector(cache)

	s.RegisterService(models.RecognizerWhisperX, func() (Recognizer, error) {
		w := NewWhisperX(cfg.WhisperX,
			WithWhisperXRunner(run),
			WithHFToken(cfg.HFToken()),
			WithTempDir(cfg.TempDir),
		)
		if !w.Available() {
			return nil, fmt.Errorf("未找到命令: %s", cfg.WhisperX.Command)
		}
		return w, nil
	}, 10)
	s.SetCacheParams(models.RecognizerWhisperX, cfg.WhisperX.Model, cfg.WhisperX.Language)

	s.RegisterService(models.RecognizerKuaishou, func() (Recognizer, error) {
		return NewKuaiShouASR(cfg.KuaishouURL), nil
	}, 5)

	return s
}

// RegisterService 注册识别服务
func (s *ASRSelector) RegisterService(name string, creator ServiceCreator, weight int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.services[name]; !exists {
		s.serviceList = append(s.serviceList, name)
	}
	s.services[name] = creator
	s.weights[name] = weight
	s.counters[name] = 0
	s.stats[name] = &ServiceStats{Available: true}

	utils.Debug("注册识别服务: %s, 优先级: %d", name, weight)
}

// ReportResult 报告服务调用结果
func (s *ASRSelector) ReportResult(serviceName string, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stat, exists := s.stats[serviceName]
	if !exists {
		return
	}
	if success {
		stat.SuccessCount++
	}
	stat.TotalCount++

	// 更新服务可用性
	if !success && stat.TotalCount > 5 && float64(stat.SuccessCount)/float64(stat.TotalCount) < 0.2 {
		stat.Available = false
		utils.Warn("识别服务 %s 成功率过低，自动选择时跳过", serviceName)
	} else if success && !stat.Available {
		stat.Available = true
		utils.Info("识别服务 %s 恢复可用", serviceName)
	}
}

// candidates 返回可用服务，按优先级从高到低，优先级相同时按注册顺序
func (s *ASRSelector) candidates() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.serviceList))
	for _, name := range s.serviceList {
		if s.stats[name].Available {
			names = append(names, name)
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		return s.weights[names[i]] > s.weights[names[j]]
	})
	return names
}

// SelectService 选择优先级最高且能创建成功的服务
func (s *ASRSelector) SelectService() (string, Recognizer, error) {
	for _, name := range s.candidates() {
		s.mu.RLock()
		creator := s.services[name]
		s.mu.RUnlock()

		recognizer, err := creator()
		if err != nil {
			utils.Warn("识别服务 %s 不可用: %v", name, err)
			continue
		}
		return name, recognizer, nil
	}
	return "", nil, utils.CollaboratorError("transcribe", "没有可用的识别服务", nil)
}

// create 根据名称创建服务，"auto" 时自动选择
func (s *ASRSelector) create(serviceName string) (string, Recognizer, error) {
	if serviceName == models.RecognizerAuto || serviceName == "" {
		return s.SelectService()
	}

	s.mu.RLock()
	creator, ok := s.services[serviceName]
	s.mu.RUnlock()
	if !ok {
		return "", nil, utils.ValidationError("transcribe", "未知的识别服务: "+serviceName, nil)
	}

	recognizer, err := creator()
	if err != nil {
		return serviceName, nil, utils.CollaboratorError("transcribe", "创建识别服务失败: "+serviceName, err)
	}
	return serviceName, recognizer, nil
}

// RunWithService 使用指定服务或自动选择的服务识别音频，返回片段和实际使用的服务名。
// 失败不会换用其他服务重试。
func (s *ASRSelector) RunWithService(ctx context.Context, audioPath, serviceName string) ([]models.Segment, string, error) {
	name, recognizer, err := s.create(serviceName)
	if err != nil {
		return nil, name, err
	}

	var cacheKey string
	if s.cache != nil {
		s.mu.RLock()
		params := s.cacheParams[name]
		s.mu.RUnlock()
		if cacheKey, err = s.cache.Key(name, audioPath, params...); err != nil {
			utils.Warn("计算缓存键失败: %v", err)
		} else if segments, ok := s.cache.Load(cacheKey); ok {
			utils.Info("从缓存加载识别结果: %s", cacheKey)
			return segments, name, nil
		}
	}

	s.mu.Lock()
	s.counters[name]++
	s.mu.Unlock()

	segments, err := recognizer.Transcribe(ctx, audioPath)
	s.ReportResult(name, err == nil)
	if err != nil {
		return nil, name, err
	}

	if s.cache != nil && cacheKey != "" {
		if err := s.cache.Save(cacheKey, segments); err != nil {
			utils.Warn("保存识别结果到缓存失败: %v", err)
		}
	}
	return segments, name, nil
}

// GetStats 获取服务使用统计信息
func (s *ASRSelector) GetStats() map[string]map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]map[string]interface{})
	for name, stat := range s.stats {
		successRate := 0.0
		if stat.TotalCount > 0 {
			successRate = float64(stat.SuccessCount) / float64(stat.TotalCount) * 100
		}

		result[name] = map[string]interface{}{
			"count":        s.counters[name],
			"success_rate": fmt.Sprintf("%.1f%%", successRate),
			"available":    stat.Available,
			"weight":       s.weights[name],
		}
	}
	return result
}
