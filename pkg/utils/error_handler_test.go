package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineErrorFormatting(t *testing.T) {
	cause := errors.New("exit status 1")
	err := CollaboratorError("diarize", "说话人分离失败", cause)

	assert.Equal(t, "diarize: 说话人分离失败: exit status 1", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindCollaborator, KindOf(err))

	plain := ValidationError("", "路径不能为空", nil)
	assert.Equal(t, "路径不能为空", plain.Error())
	assert.Equal(t, KindValidation, KindOf(plain))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindCanceled, KindOf(context.Canceled))
	assert.Equal(t, KindCanceled, KindOf(CollaboratorError("asr", "识别失败", context.Canceled)))

	wrapped := fmt.Errorf("outer: %w", IOError("write", "写入失败", io.ErrShortWrite))
	assert.Equal(t, KindIO, KindOf(wrapped))
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "输入错误", KindValidation.String())
	assert.Equal(t, "外部服务错误", KindCollaborator.String())
	assert.Equal(t, "文件读写错误", KindIO.String())
	assert.Equal(t, "已取消", KindCanceled.String())
	assert.Equal(t, "未知错误", KindUnknown.String())
}

func TestSafeExecute(t *testing.T) {
	InitLogger(LogLevelNormal, "")
	handler := NewErrorHandler()

	// 成功执行不调用清理函数
	executed := false
	cleaned := false
	err := handler.SafeExecute("test_safe_success", func() error {
		executed = true
		return nil
	}, func() {
		cleaned = true
	})
	assert.NoError(t, err)
	assert.True(t, executed)
	assert.False(t, cleaned)

	// 失败执行调用清理函数并保留错误类型
	cleaned = false
	typed := IOError("write", "写入失败", errors.New("disk full"))
	err = handler.SafeExecute("test_safe_fail", func() error {
		return typed
	}, func() {
		cleaned = true
	})
	require.Error(t, err)
	assert.True(t, cleaned)
	assert.Same(t, typed, err)

	// 未分类错误被包装
	err = handler.SafeExecute("test_untyped", func() error {
		return errors.New("预期错误")
	}, nil)
	require.Error(t, err)
	var pe *PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "test_untyped", pe.Op)

	stats := handler.GetErrorStats()
	assert.Equal(t, 1, stats["test_untyped"]["预期错误"])
	assert.Len(t, stats, 2)
}

func TestErrorStats(t *testing.T) {
	InitLogger(LogLevelNormal, "")
	handler := NewErrorHandler()

	handler.Record("op1", errors.New("err1"))
	handler.Record("op1", errors.New("err1"))
	handler.Record("op1", errors.New("err2"))
	handler.Record("op2", errors.New("err3"))
	handler.Record("op3", nil)

	stats := handler.GetErrorStats()
	assert.Equal(t, 2, len(stats))
	assert.Equal(t, 2, stats["op1"]["err1"])
	assert.Equal(t, 1, stats["op1"]["err2"])
	assert.Equal(t, 1, stats["op2"]["err3"])

	// 返回的是副本
	stats["op1"]["err1"] = 100
	assert.Equal(t, 2, handler.GetErrorStats()["op1"]["err1"])

	handler.PrintErrorStats()
}
