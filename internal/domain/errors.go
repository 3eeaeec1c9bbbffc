package domain

import "errors"

// Классы ошибок ядра. Конкретные ошибки оборачивают их через %w
// и различаются с помощью errors.Is.
var (
	// ErrTransport - сетевой сбой, таймаут, неуспешный статус или слишком короткий ответ.
	ErrTransport = errors.New("transport error")
	// ErrParse - документ не удалось разобрать как XML-ленту.
	ErrParse = errors.New("parse error")
	// ErrExtractionEmpty - ни одна стратегия не нашла заголовков.
	ErrExtractionEmpty = errors.New("no headlines extracted")
	// ErrConfigMissing - отсутствует список слотов, фраз или источников.
	ErrConfigMissing = errors.New("config missing")
)
