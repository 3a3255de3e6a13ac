// Package testutil 测试用的数据库与数据构造工具
package testutil

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"news-cms/config"
	"news-cms/internal/model"
	"news-cms/pkg/db"
)

// NewDB 打开一个临时 SQLite 文件库并迁移全部表
// 连接数限制为 1，并发用例在连接上串行执行
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(config.DatabaseConfig{
		Driver:  db.DriverSQLite,
		DSN:     filepath.Join(t.TempDir(), "test.db"),
		MaxOpen: 1,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gdb, model.All()...))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

// Clock 可手动推进的测试时钟
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start.UTC()}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// CreateUser 插入一个用户
func CreateUser(t testing.TB, gdb *gorm.DB, email, role string) *model.User {
	t.Helper()
	u := &model.User{FullName: "Test " + email, Email: email, Role: role}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

// CreateNews 插入一篇文章，approved 控制是否已审核
func CreateNews(t testing.TB, gdb *gorm.DB, authorID uint, approved bool) *model.News {
	t.Helper()
	n := &model.News{Title: "headline", Content: "body", AuthorID: authorID, IsApproved: approved}
	require.NoError(t, gdb.Create(n).Error)
	return n
}
