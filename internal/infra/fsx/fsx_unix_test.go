//go:build unix

package fsx

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"
)

func TestWriteFile_CrossDeviceKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "movie.nfo")
	if err := os.WriteFile(target, []byte("old"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}

	old := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}
	defer func() { renameFunc = old }()

	err := WriteFile(target, []byte("new"))
	if !IsCrossDevice(err) {
		t.Fatalf("期望 CrossDeviceError，实际：%T %v", err, err)
	}

	b, err := os.ReadFile(target)
	if err != nil || string(b) != "old" {
		t.Fatalf("跨盘失败后应保留旧内容：%q %v", b, err)
	}
	// 临时文件必须清理掉。
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("读取目录失败：%v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("期望只剩目标文件，实际 %d 个条目", len(entries))
	}
}
