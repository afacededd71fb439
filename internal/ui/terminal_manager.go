package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// TerminalManager 管理终端输出，确保进度条和消息不会混乱
type TerminalManager struct {
	mu          sync.Mutex
	out         io.Writer
	interactive bool // 输出是否为终端
	colored     bool
	progressing bool // 当前行是否是进度条

	cyan   *color.Color
	green  *color.Color
	yellow *color.Color
	red    *color.Color
}

// IsTerminal 判断w是否连接到终端
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NewTerminalManager 创建终端管理器，输出不是终端或noColor时不使用颜色
func NewTerminalManager(out io.Writer, noColor bool) *TerminalManager {
	interactive := IsTerminal(out)
	tm := &TerminalManager{
		out:         out,
		interactive: interactive,
		colored:     interactive && !noColor,
		cyan:        color.New(color.FgCyan, color.Bold),
		green:       color.New(color.FgGreen),
		yellow:      color.New(color.FgYellow),
		red:         color.New(color.FgRed),
	}
	if !tm.colored {
		for _, c := range []*color.Color{tm.cyan, tm.green, tm.yellow, tm.red} {
			c.DisableColor()
		}
	} else {
		for _, c := range []*color.Color{tm.cyan, tm.green, tm.yellow, tm.red} {
			c.EnableColor()
		}
	}
	return tm
}

// Interactive 返回输出是否为终端
func (tm *TerminalManager) Interactive() bool {
	return tm.interactive
}

// Writer 返回底层输出
func (tm *TerminalManager) Writer() io.Writer {
	return tm.out
}

// PrintMsg 安全地打印一行消息
func (tm *TerminalManager) PrintMsg(format string, args ...interface{}) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.printLine(nil, format, args...)
}

// Info 青色消息
func (tm *TerminalManager) Info(format string, args ...interface{}) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.printLine(tm.cyan, format, args...)
}

// Success 绿色消息
func (tm *TerminalManager) Success(format string, args ...interface{}) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.printLine(tm.green, format, args...)
}

// Warn 黄色消息
func (tm *TerminalManager) Warn(format string, args ...interface{}) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.printLine(tm.yellow, format, args...)
}

// Error 红色消息
func (tm *TerminalManager) Error(format string, args ...interface{}) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.printLine(tm.red, format, args...)
}

// Prompt 打印不换行的提示符
func (tm *TerminalManager) Prompt(prompt string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.clearProgress()
	fmt.Fprint(tm.out, prompt)
}

// UpdateProgress 在当前行重绘进度，非终端输出时忽略
func (tm *TerminalManager) UpdateProgress(line string) {
	if !tm.interactive {
		return
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()

	fmt.Fprint(tm.out, "\033[2K\r")
	fmt.Fprint(tm.out, tm.cyan.Sprint(line))
	tm.progressing = true
}

// EndProgress 结束进度行
func (tm *TerminalManager) EndProgress() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if tm.progressing {
		fmt.Fprintln(tm.out)
		tm.progressing = false
	}
}

// Banner 打印程序标题
func (tm *TerminalManager) Banner(title, subtitle string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.printLine(tm.cyan, "=== %s ===", title)
	if subtitle != "" {
		tm.printLine(nil, "%s", subtitle)
	}
}

func (tm *TerminalManager) clearProgress() {
	if tm.progressing {
		// 清除当前行，以防止与进度条冲突
		fmt.Fprint(tm.out, "\033[2K\r")
		tm.progressing = false
	}
}

func (tm *TerminalManager) printLine(c *color.Color, format string, args ...interface{}) {
	tm.clearProgress()
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	if c != nil {
		msg = c.Sprint(msg)
	}
	fmt.Fprintln(tm.out, msg)
}
