package watcher

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

// FileEventHandler 是处理文件事件的接口
type FileEventHandler interface {
	// OnFileReady 文件在去抖时间内没有再变化
	OnFileReady(filePath string)
	// OnFileRemoved 文件被删除或移走
	OnFileRemoved(filePath string)
}

// FolderMonitor 监控文件夹变化，同一文件的连续写入只触发一次
type FolderMonitor struct {
	watcher      *fsnotify.Watcher
	folderPath   string
	match        func(string) bool
	handler      FileEventHandler
	debounceTime time.Duration
	pendingFiles map[string]*time.Timer
	mutex        sync.Mutex
	stopChan     chan struct{}
	done         chan struct{}
	stopOnce     sync.Once
}

// NewFolderMonitor 创建新的文件夹监控器，match为nil时接受所有文件
func NewFolderMonitor(folderPath string, match func(string) bool, handler FileEventHandler, debounceTime time.Duration) (*FolderMonitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监控器失败: %w", err)
	}

	return &FolderMonitor{
		watcher:      watcher,
		folderPath:   folderPath,
		match:        match,
		handler:      handler,
		debounceTime: debounceTime,
		pendingFiles: make(map[string]*time.Timer),
		stopChan:     make(chan struct{}),
		done:         make(chan struct{}),
	}, nil
}

// Start 开始监控文件夹
func (m *FolderMonitor) Start() error {
	info, err := os.Stat(m.folderPath)
	if err != nil {
		m.watcher.Close()
		return utils.ValidationError("watch", "监控目录不存在: "+m.folderPath, err)
	}
	if !info.IsDir() {
		m.watcher.Close()
		return utils.ValidationError("watch", "监控路径不是目录: "+m.folderPath, nil)
	}

	if err := m.watcher.Add(m.folderPath); err != nil {
		m.watcher.Close()
		return utils.IOError("watch", "添加监控文件夹失败", err)
	}

	go m.watchLoop()

	utils.Info("开始监控文件夹: %s", m.folderPath)
	return nil
}

// Stop 停止监控并取消所有待处理的定时器，可重复调用
func (m *FolderMonitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
		m.watcher.Close()
		<-m.done

		m.mutex.Lock()
		for path, timer := range m.pendingFiles {
			timer.Stop()
			delete(m.pendingFiles, path)
		}
		m.mutex.Unlock()

		utils.Info("停止监控文件夹: %s", m.folderPath)
	})
}

func (m *FolderMonitor) watchLoop() {
	defer close(m.done)
	for {
		select {
		case <-m.stopChan:
			return
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			m.handleFileEvent(event)
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			utils.Error("监控文件夹时出错: %v", err)
		}
	}
}

func (m *FolderMonitor) handleFileEvent(event fsnotify.Event) {
	filePath := event.Name
	if m.match != nil && !m.match(filePath) {
		return
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		if timer, exists := m.pendingFiles[filePath]; exists {
			timer.Stop()
			delete(m.pendingFiles, filePath)
		}
		if m.handler != nil {
			m.handler.OnFileRemoved(filePath)
		}
		return
	}

	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	// 重新计时
	if timer, exists := m.pendingFiles[filePath]; exists {
		timer.Stop()
	}
	m.pendingFiles[filePath] = time.AfterFunc(m.debounceTime, func() {
		m.fileReady(filePath)
	})

	utils.Debug("检测到文件变化: %s", filePath)
}

func (m *FolderMonitor) fileReady(filePath string) {
	m.mutex.Lock()
	delete(m.pendingFiles, filePath)
	m.mutex.Unlock()

	select {
	case <-m.stopChan:
		return
	default:
	}

	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		return
	}

	utils.Info("准备处理文件: %s", filePath)
	if m.handler != nil {
		m.handler.OnFileReady(filePath)
	}
}

// PendingCount 返回还在去抖中的文件数
func (m *FolderMonitor) PendingCount() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.pendingFiles)
}
