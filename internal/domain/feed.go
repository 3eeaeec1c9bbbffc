package domain

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// FeedSource описывает удалённый источник новостей (RSS/Atom-ленту).
// Список источников задаётся конфигурацией и используется только для чтения.
type FeedSource struct {
	Name    string `json:"name" toml:"name"`
	URL     string `json:"url" toml:"url"`
	Enabled bool   `json:"enabled" toml:"enabled"`
}

// UnmarshalJSON считает источник включённым, если поле enabled не указано.
func (s *FeedSource) UnmarshalJSON(data []byte) error {
	type plain FeedSource
	src := plain{Enabled: true}
	if err := json.Unmarshal(data, &src); err != nil {
		return err
	}
	*s = FeedSource(src)
	return nil
}

// UnmarshalTOML делает то же для TOML-таблицы [[feeds.sources]].
func (s *FeedSource) UnmarshalTOML(data any) error {
	table, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("feed source must be a table, got %T", data)
	}
	*s = FeedSource{Enabled: true}
	if v, ok := table["name"].(string); ok {
		s.Name = v
	}
	if v, ok := table["url"].(string); ok {
		s.URL = v
	}
	if v, ok := table["enabled"].(bool); ok {
		s.Enabled = v
	}
	return nil
}

// Headline представляет один заголовок, извлечённый из ленты.
type Headline struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// String возвращает заголовок в том виде, в котором он выводится на экран.
func (h Headline) String() string {
	return h.Source + ": " + h.Text
}

// Document - сырой ответ транспорта на GET-запрос.
type Document struct {
	URL        string
	StatusCode int
	Location   string
	Body       []byte
	Truncated  bool
}

// IsRedirect сообщает, является ли ответ перенаправлением с известным адресом.
func (d *Document) IsRedirect() bool {
	switch d.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return d.Location != ""
	}
	return false
}

// IsSuccess сообщает, завершился ли запрос статусом 2xx.
func (d *Document) IsSuccess() bool {
	return d.StatusCode >= 200 && d.StatusCode < 300
}
