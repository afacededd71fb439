package utils

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrorKind 区分错误来源，交互循环据此决定提示方式
type ErrorKind int

const (
	// KindUnknown 未分类错误
	KindUnknown ErrorKind = iota
	// KindValidation 输入校验失败（文件不存在、时间戳非法等）
	KindValidation
	// KindCollaborator 外部工具或服务失败（下载、识别、说话人分离）
	KindCollaborator
	// KindIO 文件读写失败
	KindIO
	// KindCanceled 用户中断
	KindCanceled
)

// String 返回错误类型的中文名称
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "输入错误"
	case KindCollaborator:
		return "外部服务错误"
	case KindIO:
		return "文件读写错误"
	case KindCanceled:
		return "已取消"
	default:
		return "未知错误"
	}
}

// PipelineError 是处理流程中的类型化错误
type PipelineError struct {
	Kind    ErrorKind
	Op      string
	Message string
	Cause   error
}

// Error 实现error接口
func (e *PipelineError) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", msg, e.Cause.Error())
	}
	return msg
}

// Unwrap 支持error chain
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// NewError 创建一个新的PipelineError
func NewError(kind ErrorKind, op, message string, cause error) error {
	return &PipelineError{
		Kind:    kind,
		Op:      op,
		Message: message,
		Cause:   cause,
	}
}

// ValidationError 创建输入校验错误
func ValidationError(op, message string, cause error) error {
	return NewError(KindValidation, op, message, cause)
}

// CollaboratorError 创建外部协作方错误，上下文取消时归类为KindCanceled
func CollaboratorError(op, message string, cause error) error {
	if errors.Is(cause, context.Canceled) {
		return NewError(KindCanceled, op, message, cause)
	}
	return NewError(KindCollaborator, op, message, cause)
}

// IOError 创建文件读写错误
func IOError(op, message string, cause error) error {
	return NewError(KindIO, op, message, cause)
}

// KindOf 返回错误链中第一个PipelineError的类型
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	return KindUnknown
}

// ErrorHandler 执行带清理的操作并统计错误
type ErrorHandler struct {
	mu         sync.Mutex
	ErrorStats map[string]map[string]int // 操作 -> 错误信息 -> 计数
}

// NewErrorHandler 创建新的错误处理器
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{
		ErrorStats: make(map[string]map[string]int),
	}
}

// SafeExecute 执行函数，失败时先执行清理再返回错误。
// 已分类的PipelineError原样返回，其余错误包装为未知错误。
func (h *ErrorHandler) SafeExecute(operation string, fn func() error, cleanup func()) error {
	err := fn()
	if err == nil {
		return nil
	}

	h.Record(operation, err)

	if cleanup != nil {
		Debug("执行清理操作: %s", operation)
		cleanup()
	}

	var pe *PipelineError
	if errors.As(err, &pe) {
		return err
	}
	return NewError(KindOf(err), operation, "操作失败", err)
}

// Record 记录一次错误
func (h *ErrorHandler) Record(operation string, err error) {
	if err == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ErrorStats[operation] == nil {
		h.ErrorStats[operation] = make(map[string]int)
	}
	h.ErrorStats[operation][err.Error()]++
}

// GetErrorStats 获取错误统计信息的副本
func (h *ErrorHandler) GetErrorStats() map[string]map[string]int {
	h.mu.Lock()
	defer h.mu.Unlock()

	stats := make(map[string]map[string]int, len(h.ErrorStats))
	for op, errs := range h.ErrorStats {
		inner := make(map[string]int, len(errs))
		for msg, count := range errs {
			inner[msg] = count
		}
		stats[op] = inner
	}
	return stats
}

// PrintErrorStats 打印错误统计信息
func (h *ErrorHandler) PrintErrorStats() {
	stats := h.GetErrorStats()
	if len(stats) == 0 {
		Debug("没有错误记录")
		return
	}

	ops := make([]string, 0, len(stats))
	for op := range stats {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	Info("错误统计:")
	for _, op := range ops {
		Info("操作: %s", op)
		for errMsg, count := range stats[op] {
			Info("  - %s: %d次", errMsg, count)
		}
	}
}
