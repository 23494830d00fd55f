package auditlog

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/psource-dev/psman/internal/database/models"
	"github.com/psource-dev/psman/internal/dbcore"
)

// Log writes one admin-action record. Failures are logged, never propagated:
// audit logging must not break the action it describes.
func Log(ip, actor, message, level string) {
	db := dbcore.GetDBInstance()
	if db == nil {
		return
	}
	if level == "" {
		level = "info"
	}
	entry := models.AuditLog{
		UUID:    uuid.New().String(),
		IP:      ip,
		Actor:   actor,
		Message: message,
		Level:   level,
		Time:    time.Now().UTC(),
	}
	if err := db.Create(&entry).Error; err != nil {
		slog.Warn("failed to write audit log", slog.Any("error", err))
	}
}

// Recent returns up to limit newest entries.
func Recent(limit int) ([]models.AuditLog, error) {
	db := dbcore.GetDBInstance()
	var logs []models.AuditLog
	if limit <= 0 {
		limit = 100
	}
	err := db.Model(&models.AuditLog{}).Order("time desc").Limit(limit).Find(&logs).Error
	return logs, err
}

// RemoveOldLogs keeps only the newest 1000 entries.
func RemoveOldLogs() {
	db := dbcore.GetDBInstance()
	if db == nil {
		return
	}
	var count int64
	db.Model(&models.AuditLog{}).Count(&count)
	if count <= 1000 {
		return
	}
	var cutoff models.AuditLog
	if err := db.Model(&models.AuditLog{}).Order("time desc").Offset(999).First(&cutoff).Error; err != nil {
		return
	}
	db.Delete(&models.AuditLog{}, "time < ?", cutoff.Time)
}
