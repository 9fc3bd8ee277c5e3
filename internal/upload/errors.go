package upload

import "errors"

var (
	// ErrUploadNotFound — запись загрузки не найдена.
	ErrUploadNotFound = errors.New("upload not found")

	// ErrFileNotFound — исходный файл не существует.
	ErrFileNotFound = errors.New("upload path does not exist")

	// ErrFileTooLarge — размер файла превышает max_file_size.
	ErrFileTooLarge = errors.New("file size exceeds maximum allowed size")

	// ErrExtensionNotAllowed — расширение файла вне allowed_extensions.
	ErrExtensionNotAllowed = errors.New("file extension is not allowed")

	// ErrFileNotReadable — файл не удалось открыть на чтение.
	ErrFileNotReadable = errors.New("file is not readable")
)
