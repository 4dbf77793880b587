// Package sl содержит вспомогательные функции для работы с логгером slog.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и текстом ошибки.
//
// Пример:
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
