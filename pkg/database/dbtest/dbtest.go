package dbtest

import (
	"fmt"
	"skillnest_backend/pkg/database"
	"sync/atomic"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var memSeq atomic.Int64

// Open 打开一个独立的内存 sqlite 库并完成迁移，供各包测试使用
func Open() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:skillnest_%d?mode=memory&cache=shared&_busy_timeout=5000", memSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// 内存库单连接，写操作串行化
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// MustOpen 测试辅助，失败直接终止
func MustOpen(t interface {
	Helper()
	Fatalf(format string, args ...any)
}) *gorm.DB {
	t.Helper()
	db, err := Open()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	return db
}
