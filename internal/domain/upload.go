package domain

import (
	"time"

	"github.com/google/uuid"
)

// UploadInfo — запись об обработанной загрузке.
//
// Сохраняется как неизменяемая запись в <upload_dir>/records/<id>.json
// после прохождения всех шагов пайплайна обработки.
type UploadInfo struct {
	// ID — уникальный идентификатор загрузки.
	ID uuid.UUID `json:"id"`

	// Filename — имя исходного файла.
	Filename string `json:"filename"`

	// OriginalPath — путь к исходному файлу.
	OriginalPath string `json:"original_path"`

	// ProcessedPath — путь к обработанному файлу (после copy/compress/archive).
	ProcessedPath string `json:"processed_path"`

	// FileSize — размер исходного файла в байтах.
	FileSize uint64 `json:"file_size"`

	// MimeType — MIME-тип, определённый по расширению.
	MimeType string `json:"mime_type"`

	// UploadTimestamp — время приёма загрузки.
	UploadTimestamp time.Time `json:"upload_timestamp"`

	// ProcessingStatus — статус обработки.
	ProcessingStatus ProcessingStatus `json:"processing_status"`

	// Metadata — контрольная сумма, теги, backup и т.д.
	Metadata UploadMetadata `json:"metadata"`
}

// UploadMetadata — метаданные загрузки.
type UploadMetadata struct {
	// Checksum — контрольная сумма содержимого файла.
	Checksum string `json:"checksum"`

	// CompressionRatio — коэффициент сжатия (original/compressed).
	// Nil, если сжатие не выполнялось.
	CompressionRatio *float64 `json:"compression_ratio,omitempty"`

	// BackupPath — путь к резервной копии, если backup включён.
	BackupPath string `json:"backup_path,omitempty"`

	// Tags — автоматически сгенерированные теги.
	Tags []string `json:"tags,omitempty"`

	// Notes — произвольные заметки оператора.
	Notes string `json:"notes,omitempty"`
}

// ProcessingStatus — статус обработки загрузки.
//
// Жизненный цикл:
//
//	PENDING → PROCESSING → COMPLETED
//	                     ↘ FAILED
//	COMPLETED → ARCHIVED (для старых файлов)
type ProcessingStatus string

const (
	// ProcessingStatusPending — загрузка принята, обработка не начата.
	ProcessingStatusPending ProcessingStatus = "PENDING"

	// ProcessingStatusProcessing — пайплайн обработки выполняется.
	ProcessingStatusProcessing ProcessingStatus = "PROCESSING"

	// ProcessingStatusCompleted — обработка успешно завершена.
	ProcessingStatusCompleted ProcessingStatus = "COMPLETED"

	// ProcessingStatusFailed — обработка завершилась с ошибкой.
	ProcessingStatusFailed ProcessingStatus = "FAILED"

	// ProcessingStatusArchived — файл перемещён в архив.
	ProcessingStatusArchived ProcessingStatus = "ARCHIVED"
)
