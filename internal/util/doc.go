// Package util содержит файловые утилиты и функции сжатия,
// используемые пайплайном загрузок.
package util
