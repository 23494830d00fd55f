package models

import "time"

type AuditLog struct {
	UUID    string    `json:"uuid" gorm:"primaryKey;type:varchar(36)"`
	IP      string    `json:"ip" gorm:"type:varchar(64)"`
	Actor   string    `json:"actor" gorm:"type:varchar(191)"`
	Message string    `json:"message" gorm:"type:text"`
	Level   string    `json:"level" gorm:"type:varchar(16);default:'info'"` // info, warn, error
	Time    time.Time `json:"time"`
}
