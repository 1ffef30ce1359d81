// Package journal 把保存结果记录到 SQLite，供 CLI 的 history 查询。
//
// 每条记录的扩展字段（候选路径、extrathumbs、内容摘要）以 CBOR 存在 detail 列，
// 以便字段演进时不必迁移表结构。
package journal

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	_ "modernc.org/sqlite"

	"github.com/John-Robertt/NFOSaver/internal/domain"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const schema = `
CREATE TABLE IF NOT EXISTS saves (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session     TEXT NOT NULL,
	op_id       TEXT NOT NULL,
	item        TEXT NOT NULL,
	kind        TEXT NOT NULL,
	saver       TEXT NOT NULL,
	path        TEXT NOT NULL,
	status      TEXT NOT NULL,
	skip_reason TEXT NOT NULL,
	error_code  TEXT NOT NULL,
	error_msg   TEXT NOT NULL,
	detail      BLOB,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_saves_path ON saves(path);
`

// Detail 是 detail 列的 CBOR 内容。
type Detail struct {
	Candidates    []string `cbor:"1,keyasint,omitempty"`
	ExtraThumbs   []string `cbor:"2,keyasint,omitempty"`
	Warning       string   `cbor:"3,keyasint,omitempty"`
	ContentSHA256 string   `cbor:"4,keyasint,omitempty"`
	ContentSize   int      `cbor:"5,keyasint,omitempty"`
	DryRun        bool     `cbor:"6,keyasint,omitempty"`
}

// Entry 是一条保存记录。
type Entry struct {
	ID        int64
	Session   string
	OpID      string
	Item      string
	Kind      string
	Saver     string
	Path      string
	Status    string
	Skip      string
	ErrorCode string
	ErrorMsg  string
	Detail    Detail
	CreatedAt time.Time
}

// Journal 是 SQLite 记录存储。
type Journal struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open 打开（必要时创建）数据库文件。
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("创建 journal 目录失败：%w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("打开 sqlite 失败：%w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("应用 pragma %q 失败：%w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("初始化表结构失败：%w", err)
	}
	return &Journal{db: db, path: path, now: time.Now}, nil
}

// Path 返回数据库文件路径。
func (j *Journal) Path() string { return j.path }

// Close 关闭数据库连接。
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record 写入一条保存结果。content 只用于计算摘要，不落库。
func (j *Journal) Record(ctx context.Context, session string, dryRun bool, r domain.ItemResult, content []byte) error {
	d := Detail{
		Candidates:  r.Candidates,
		ExtraThumbs: r.ExtraThumbs,
		Warning:     r.Warning,
		DryRun:      dryRun,
	}
	if len(content) > 0 {
		sum := sha256.Sum256(content)
		d.ContentSHA256 = hex.EncodeToString(sum[:])
		d.ContentSize = len(content)
	}
	blob, err := cbor.Marshal(d)
	if err != nil {
		return fmt.Errorf("编码 detail 失败：%w", err)
	}

	return retryOnBusy(ctx, func() error {
		_, err := j.db.ExecContext(ctx, `INSERT INTO saves
			(session, op_id, item, kind, saver, path, status, skip_reason, error_code, error_msg, detail, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			session, r.OpID, r.Item, r.Kind, r.Saver, r.Path, r.Status, r.SkipReason, r.ErrorCode, r.ErrorMsg,
			blob, j.now().UTC().Format(time.RFC3339Nano))
		return err
	})
}

// Query 是 Recent 的过滤条件。
type Query struct {
	Limit int
	// Path 非空时只返回该输出路径的记录。
	Path string
	// Status 非空时只返回该状态的记录。
	Status string
}

// Recent 按时间倒序返回记录。
func (j *Journal) Recent(ctx context.Context, q Query) ([]Entry, error) {
	if q.Limit <= 0 {
		q.Limit = 20
	}
	var (
		where []string
		args  []any
	)
	if q.Path != "" {
		where = append(where, "path = ?")
		args = append(args, q.Path)
	}
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, q.Status)
	}
	query := `SELECT id, session, op_id, item, kind, saver, path, status, skip_reason, error_code, error_msg, detail, created_at FROM saves`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, q.Limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			blob    []byte
			created string
		)
		if err := rows.Scan(&e.ID, &e.Session, &e.OpID, &e.Item, &e.Kind, &e.Saver, &e.Path,
			&e.Status, &e.Skip, &e.ErrorCode, &e.ErrorMsg, &blob, &created); err != nil {
			return nil, err
		}
		if len(blob) > 0 {
			if err := cbor.Unmarshal(blob, &e.Detail); err != nil {
				return nil, fmt.Errorf("解码 detail 失败（id=%d）：%w", e.ID, err)
			}
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
