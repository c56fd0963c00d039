package services

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace 任务级临时目录，所有中间文件写入其中，任务结束后整体删除
type Workspace struct {
	dir string
}

// NewWorkspace 在系统临时目录下创建独立的工作目录
func NewWorkspace() (*Workspace, error) {
	dir, err := os.MkdirTemp("", "tinmesh-*")
	if err != nil {
		return nil, fmt.Errorf("创建临时工作目录失败: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Path 返回工作目录内的文件路径
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// Dir 工作目录根路径
func (w *Workspace) Dir() string {
	return w.dir
}

// Close 删除工作目录及全部中间文件，可重复调用
func (w *Workspace) Close() error {
	if w.dir == "" {
		return nil
	}
	err := os.RemoveAll(w.dir)
	w.dir = ""
	return err
}
