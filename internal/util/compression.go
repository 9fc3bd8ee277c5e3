package util

import (
	"archive/zip"
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// CompressFileGzip сжимает файл в gzip и возвращает коэффициент сжатия
// (исходный размер, делённый на сжатый).
func CompressFileGzip(inputPath, outputPath string) (float64, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", inputPath, err)
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", outputPath, err)
	}

	enc := gzip.NewWriter(out)
	if _, err := io.Copy(enc, bufio.NewReader(in)); err != nil {
		enc.Close()
		out.Close()
		return 0, fmt.Errorf("compress %s: %w", inputPath, err)
	}
	if err := enc.Close(); err != nil {
		out.Close()
		return 0, fmt.Errorf("finish gzip stream: %w", err)
	}
	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", outputPath, err)
	}

	originalSize, err := FileSize(inputPath)
	if err != nil {
		return 0, err
	}
	compressedSize, err := FileSize(outputPath)
	if err != nil {
		return 0, err
	}
	return float64(originalSize) / float64(compressedSize), nil
}

// DecompressFileGzip распаковывает gzip-файл.
func DecompressFileGzip(inputPath, outputPath string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", inputPath, err)
	}
	defer in.Close()

	dec, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("read gzip header of %s: %w", inputPath, err)
	}
	defer dec.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outputPath, err)
	}

	w := bufio.NewWriter(out)
	if _, err := io.Copy(w, dec); err != nil {
		out.Close()
		return fmt.Errorf("decompress %s: %w", inputPath, err)
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return fmt.Errorf("flush %s: %w", outputPath, err)
	}
	return out.Close()
}

// CreateZipArchive собирает zip-архив из файлов.
// Несуществующие файлы пропускаются; вложенность не сохраняется,
// в архив попадают только базовые имена.
func CreateZipArchive(files []string, outputPath string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outputPath, err)
	}

	zw := zip.NewWriter(out)
	for _, path := range files {
		in, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			zw.Close()
			out.Close()
			return fmt.Errorf("open %s: %w", path, err)
		}

		w, err := zw.Create(filepath.Base(path))
		if err == nil {
			_, err = io.Copy(w, in)
		}
		in.Close()
		if err != nil {
			zw.Close()
			out.Close()
			return fmt.Errorf("add %s to archive: %w", path, err)
		}
	}

	if err := zw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("finish archive %s: %w", outputPath, err)
	}
	return out.Close()
}

// ExtractZipArchive распаковывает zip-архив в каталог.
// Записи с путём, выходящим за пределы каталога, отклоняются.
func ExtractZipArchive(inputPath, outputDir string) error {
	archive, err := zip.OpenReader(inputPath)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", inputPath, err)
	}
	defer archive.Close()

	for _, entry := range archive.File {
		outPath := filepath.Join(outputDir, entry.Name)
		if !strings.HasPrefix(outPath, filepath.Clean(outputDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes output directory", entry.Name)
		}

		if entry.FileInfo().IsDir() {
			if err := EnsureDir(outPath); err != nil {
				return err
			}
			continue
		}

		if err := EnsureDir(filepath.Dir(outPath)); err != nil {
			return err
		}

		in, err := entry.Open()
		if err != nil {
			return fmt.Errorf("open archive entry %q: %w", entry.Name, err)
		}

		out, err := os.Create(outPath)
		if err == nil {
			_, err = io.Copy(out, in)
			if closeErr := out.Close(); err == nil {
				err = closeErr
			}
		}
		in.Close()
		if err != nil {
			return fmt.Errorf("extract %q: %w", entry.Name, err)
		}
	}
	return nil
}
