package dispatch

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// SequenceAllocator 签发按年份严格递增的人类可读请求单号。
// 同一年份的并发调用绝不重号。
type SequenceAllocator interface {
	Allocate(ctx context.Context, year int) (string, error)
}

// FormatRequestNumber 单号格式：<prefix>-<year>-<5位补零序号>。
func FormatRequestNumber(prefix string, year int, seq int64) string {
	if prefix == "" {
		prefix = "TOW"
	}
	return fmt.Sprintf("%s-%d-%05d", prefix, year, seq)
}

// MySQLSequenceAllocator 基于 tow_request_sequences 表的实现。
// 自增必须落在存储层原子语句上，应用层读后写会导致并发重号。
type MySQLSequenceAllocator struct {
	db     *gorm.DB
	prefix string
}

func NewMySQLSequenceAllocator(db *gorm.DB, prefix string) *MySQLSequenceAllocator {
	return &MySQLSequenceAllocator{db: db, prefix: prefix}
}

func (a *MySQLSequenceAllocator) Allocate(ctx context.Context, year int) (string, error) {
	if a == nil || a.db == nil {
		return "", fmt.Errorf("allocator db is nil")
	}

	var seq int64
	// LAST_INSERT_ID(expr) 把本次计数绑定在当前连接会话上；
	// 两条语句放在同一事务里，保证走同一个连接。
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"INSERT INTO tow_request_sequences (year, last_seq) VALUES (?, LAST_INSERT_ID(1)) "+
				"ON DUPLICATE KEY UPDATE last_seq = LAST_INSERT_ID(last_seq + 1)",
			year,
		).Error; err != nil {
			return err
		}
		return tx.Raw("SELECT LAST_INSERT_ID()").Scan(&seq).Error
	})
	if err != nil {
		return "", fmt.Errorf("allocate request number for year %d: %w", year, err)
	}

	return FormatRequestNumber(a.prefix, year, seq), nil
}
