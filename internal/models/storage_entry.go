package models

import "time"

// StorageEntry 会话级键值存储记录（替代浏览器本地存储）
type StorageEntry struct {
	Key       string    `gorm:"primarykey;type:varchar(191)" json:"key"` // 存储键（session:<id>:<name>）
	Value     []byte    `gorm:"not null" json:"value"`                   // JSON 内容
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                 // 最近写入时间
}

// TableName 指定表名
func (StorageEntry) TableName() string {
	return "storage_entries"
}
