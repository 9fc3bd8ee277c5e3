// Package upload реализует пайплайн обработки файловых загрузок.
//
// Каждая загрузка проходит стандартную процедуру (SOP):
// валидация, резервная копия, копирование в рабочий каталог,
// сжатие, генерация метаданных, архивирование устаревших файлов.
// Итоговая запись сохраняется в <upload_dir>/records/<id>.json.
package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Runbook/internal/config"
	"github.com/shaiso/Runbook/internal/domain"
	"github.com/shaiso/Runbook/internal/util"
)

const (
	recordsDirName = "records"
	archiveDirName = "archive"

	// largeFileThreshold — порог тега large_file.
	largeFileThreshold = 10 * 1024 * 1024

	// archiveAge — возраст загрузки, после которого файл уходит в архив.
	archiveAge = 30 * 24 * time.Hour
)

// Manager обрабатывает загрузки по конфигурации UploadConfig.
type Manager struct {
	config config.UploadConfig
	logger *slog.Logger
}

// New создаёт новый Manager.
func New(cfg config.UploadConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{config: cfg, logger: logger}
}

// ProcessUpload обрабатывает файл по полному пайплайну и возвращает
// запись загрузки. Context проверяется между шагами пайплайна.
func (m *Manager) ProcessUpload(ctx context.Context, uploadPath string) (*domain.UploadInfo, error) {
	if _, err := os.Stat(uploadPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, uploadPath)
	}

	uploadID := uuid.New()
	m.logger.Info("processing upload", "upload_id", uploadID, "path", uploadPath)

	if err := m.validateUpload(uploadPath); err != nil {
		return nil, err
	}

	info, err := m.buildUploadInfo(uploadID, uploadPath)
	if err != nil {
		return nil, err
	}

	if err := m.executeSOP(ctx, info); err != nil {
		info.ProcessingStatus = domain.ProcessingStatusFailed
		return nil, err
	}

	if err := m.saveUploadRecord(info); err != nil {
		return nil, err
	}

	m.logger.Info("upload processed", "upload_id", uploadID, "status", info.ProcessingStatus)
	return info, nil
}

// validateUpload проверяет размер, расширение и читаемость файла.
func (m *Manager) validateUpload(path string) error {
	size, err := util.FileSize(path)
	if err != nil {
		return err
	}
	if size > m.config.MaxFileSize {
		return fmt.Errorf("%w: %d > %d", ErrFileTooLarge, size, m.config.MaxFileSize)
	}

	if ext := util.FileExtension(path); ext != "" {
		if !slices.Contains(m.config.AllowedExtensions, ext) {
			return fmt.Errorf("%w: %q", ErrExtensionNotAllowed, ext)
		}
	}

	if !util.IsFileReadable(path) {
		return fmt.Errorf("%w: %s", ErrFileNotReadable, path)
	}
	return nil
}

func (m *Manager) buildUploadInfo(uploadID uuid.UUID, path string) (*domain.UploadInfo, error) {
	size, err := util.FileSize(path)
	if err != nil {
		return nil, err
	}

	checksum, err := util.FileHash(path)
	if err != nil {
		return nil, err
	}

	filename := filepath.Base(path)
	return &domain.UploadInfo{
		ID:               uploadID,
		Filename:         filename,
		OriginalPath:     path,
		ProcessedPath:    filepath.Join(m.config.UploadDir, filename),
		FileSize:         size,
		MimeType:         detectMimeType(path),
		UploadTimestamp:  time.Now().UTC(),
		ProcessingStatus: domain.ProcessingStatusPending,
		Metadata: domain.UploadMetadata{
			Checksum: checksum,
		},
	}, nil
}

// executeSOP выполняет шаги стандартной процедуры обработки по порядку.
func (m *Manager) executeSOP(ctx context.Context, info *domain.UploadInfo) error {
	info.ProcessingStatus = domain.ProcessingStatusProcessing

	steps := []func(*domain.UploadInfo) error{
		m.createBackup,
		m.copyToUploadDir,
		m.compressFile,
		m.generateMetadata,
		m.archiveIfNeeded,
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step(info); err != nil {
			return err
		}
	}

	// archiveIfNeeded выставляет ARCHIVED сам.
	if info.ProcessingStatus == domain.ProcessingStatusProcessing {
		info.ProcessingStatus = domain.ProcessingStatusCompleted
	}
	return nil
}

// createBackup копирует исходный файл в backup_dir как <id>_<ts>.bak.
func (m *Manager) createBackup(info *domain.UploadInfo) error {
	if !m.config.BackupEnabled {
		return nil
	}

	backupName := fmt.Sprintf("%s_%s.bak", info.ID, info.UploadTimestamp.Format("20060102_150405"))
	backupPath := filepath.Join(m.config.BackupDir, backupName)

	if _, err := util.CopyFile(info.OriginalPath, backupPath); err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	info.Metadata.BackupPath = backupPath

	m.logger.Info("backup created", "upload_id", info.ID, "backup_path", backupPath)
	return nil
}

func (m *Manager) copyToUploadDir(info *domain.UploadInfo) error {
	if _, err := util.CopyFile(info.OriginalPath, info.ProcessedPath); err != nil {
		return fmt.Errorf("copy to upload dir: %w", err)
	}
	return nil
}

// compressFile сжимает обработанный файл в gzip и переносит
// processed_path на сжатую копию.
func (m *Manager) compressFile(info *domain.UploadInfo) error {
	if !m.config.CompressionEnabled {
		return nil
	}

	compressedPath := replaceExtension(info.ProcessedPath, ".gz")
	ratio, err := util.CompressFileGzip(info.ProcessedPath, compressedPath)
	if err != nil {
		return fmt.Errorf("compress upload: %w", err)
	}

	info.ProcessedPath = compressedPath
	info.Metadata.CompressionRatio = &ratio

	m.logger.Info("upload compressed", "upload_id", info.ID, "ratio", ratio)
	return nil
}

// generateMetadata добавляет автоматические теги: расширение,
// размер и дата загрузки.
func (m *Manager) generateMetadata(info *domain.UploadInfo) error {
	if ext := util.FileExtension(info.ProcessedPath); ext != "" {
		info.Metadata.Tags = append(info.Metadata.Tags, "ext:"+ext)
	}
	if info.FileSize > largeFileThreshold {
		info.Metadata.Tags = append(info.Metadata.Tags, "large_file")
	}
	info.Metadata.Tags = append(info.Metadata.Tags,
		"uploaded:"+info.UploadTimestamp.Format("2006-01-02"))
	return nil
}

// archiveIfNeeded перемещает загрузки старше 30 дней в подкаталог archive.
func (m *Manager) archiveIfNeeded(info *domain.UploadInfo) error {
	if time.Since(info.UploadTimestamp) < archiveAge {
		return nil
	}

	archiveDir := filepath.Join(m.config.UploadDir, archiveDirName)
	if err := util.EnsureDir(archiveDir); err != nil {
		return err
	}

	archivePath := filepath.Join(archiveDir, filepath.Base(info.ProcessedPath))
	if err := os.Rename(info.ProcessedPath, archivePath); err != nil {
		return fmt.Errorf("archive upload: %w", err)
	}

	info.ProcessedPath = archivePath
	info.ProcessingStatus = domain.ProcessingStatusArchived

	m.logger.Info("upload archived", "upload_id", info.ID, "archive_path", archivePath)
	return nil
}

func (m *Manager) saveUploadRecord(info *domain.UploadInfo) error {
	recordsDir := filepath.Join(m.config.UploadDir, recordsDirName)
	if err := util.EnsureDir(recordsDir); err != nil {
		return err
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal upload record: %w", err)
	}

	recordPath := filepath.Join(recordsDir, info.ID.String()+".json")
	if err := os.WriteFile(recordPath, data, 0o644); err != nil {
		return fmt.Errorf("write upload record: %w", err)
	}
	return nil
}

// ListUploads возвращает все сохранённые записи загрузок.
// Файлы, которые не удалось разобрать, пропускаются.
func (m *Manager) ListUploads() ([]domain.UploadInfo, error) {
	recordsDir := filepath.Join(m.config.UploadDir, recordsDirName)
	files, err := util.ListFilesRecursively(recordsDir)
	if err != nil {
		return nil, err
	}

	uploads := make([]domain.UploadInfo, 0, len(files))
	for _, path := range files {
		if filepath.Ext(path) != ".json" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var info domain.UploadInfo
		if err := json.Unmarshal(data, &info); err != nil {
			m.logger.Warn("skipping unparseable upload record", "path", path, "error", err)
			continue
		}
		uploads = append(uploads, info)
	}
	return uploads, nil
}

// GetUpload возвращает запись загрузки по идентификатору.
func (m *Manager) GetUpload(uploadID uuid.UUID) (*domain.UploadInfo, error) {
	recordPath := filepath.Join(m.config.UploadDir, recordsDirName, uploadID.String()+".json")

	data, err := os.ReadFile(recordPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrUploadNotFound, uploadID)
		}
		return nil, fmt.Errorf("read upload record: %w", err)
	}

	var info domain.UploadInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse upload record %s: %w", recordPath, err)
	}
	return &info, nil
}

// DeleteUpload удаляет обработанный файл, резервную копию и запись.
func (m *Manager) DeleteUpload(uploadID uuid.UUID) error {
	info, err := m.GetUpload(uploadID)
	if err != nil {
		return err
	}

	if err := util.RemoveFileSafely(info.ProcessedPath); err != nil {
		return err
	}
	if info.Metadata.BackupPath != "" {
		if err := util.RemoveFileSafely(info.Metadata.BackupPath); err != nil {
			return err
		}
	}

	recordPath := filepath.Join(m.config.UploadDir, recordsDirName, uploadID.String()+".json")
	if err := util.RemoveFileSafely(recordPath); err != nil {
		return err
	}

	m.logger.Info("upload deleted", "upload_id", uploadID)
	return nil
}

// detectMimeType определяет MIME-тип по расширению файла.
func detectMimeType(path string) string {
	switch util.FileExtension(path) {
	case "txt":
		return "text/plain"
	case "pdf":
		return "application/pdf"
	case "doc", "docx":
		return "application/msword"
	case "zip":
		return "application/zip"
	case "tar":
		return "application/x-tar"
	case "gz":
		return "application/gzip"
	case "json":
		return "application/json"
	case "yaml", "yml":
		return "application/x-yaml"
	default:
		return "application/octet-stream"
	}
}

// replaceExtension заменяет расширение пути на заданное (с точкой).
func replaceExtension(path, newExt string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + newExt
}
