package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

const clearLine = "\033[2K\r"

// TerminalManager 管理终端输出，确保进度条和消息不会混乱
type TerminalManager struct {
	mu          sync.Mutex
	out         io.Writer
	interactive bool
	onProgress  bool // 当前行是否为进度条
}

// NewTerminalManager 创建终端管理器，out 为终端时才输出控制字符
func NewTerminalManager(out io.Writer) *TerminalManager {
	return &TerminalManager{
		out:         out,
		interactive: IsTerminal(out),
	}
}

// IsTerminal 判断 w 是否连接到终端
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Interactive 输出是否为终端
func (tm *TerminalManager) Interactive() bool {
	return tm.interactive
}

// PrintMsg 安全地打印一行消息，会先清除当前的进度条
func (tm *TerminalManager) PrintMsg(format string, args ...interface{}) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.clearProgress()
	fmt.Fprintf(tm.out, format+"\n", args...)
}

// UpdateProgress 在当前行重绘进度，非终端输出时不显示
func (tm *TerminalManager) UpdateProgress(line string) {
	if !tm.interactive {
		return
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()

	fmt.Fprint(tm.out, clearLine+line)
	tm.onProgress = true
}

// Write 实现 io.Writer，供日志输出使用
func (tm *TerminalManager) Write(p []byte) (int, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.clearProgress()
	return tm.out.Write(p)
}

func (tm *TerminalManager) clearProgress() {
	if tm.onProgress {
		fmt.Fprint(tm.out, clearLine)
		tm.onProgress = false
	}
}
