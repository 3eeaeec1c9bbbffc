package parser

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"ticker/internal/domain"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

// MinTitleLength - заголовки такой длины и короче (в символах) отбрасываются.
const MinTitleLength = 5

var (
	namespaceTag  = regexp.MustCompile(`<(/?)(?:media|atom|content|dc|feedburner|slash):`)
	escapes       = strings.NewReplacer("<![CDATA[", "", "]]>", "", "&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'")
	titleOpenTag  = []byte("<title")
	titleCloseTag = []byte("</title>")
)

type itemXML struct {
	Titles    []string `xml:"title"`
	PubDate   string   `xml:"pubDate"`
	Published string   `xml:"published"`
	Updated   string   `xml:"updated"`
	Date      string   `xml:"date"`
}

func (it *itemXML) title() string {
	for _, t := range it.Titles {
		if strings.TrimSpace(t) != "" {
			return t
		}
	}
	return ""
}

func (it *itemXML) date() string {
	for _, d := range []string{it.PubDate, it.Published, it.Updated, it.Date} {
		if strings.TrimSpace(d) != "" {
			return d
		}
	}
	return ""
}

// shape описывает, где в документе лежат элементы ленты.
type shape struct {
	item      string
	container string
}

// XMLParser извлекает заголовки из RSS 2.0, RSS 1.0 (RDF) и Atom документов.
// Если maxAge больше нуля, элементы старше maxAge пропускаются.
type XMLParser struct {
	log    *slog.Logger
	maxAge time.Duration
	now    func() time.Time
}

func NewXMLParser(log *slog.Logger, maxAge time.Duration) *XMLParser {
	return &XMLParser{
		log:    log.With(slog.String("component", "parser")),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// NormalizeNamespaces убирает известные префиксы пространств имён из имён тегов,
// чтобы media:title, dc:date и т.п. сопоставлялись как title и date.
func NormalizeNamespaces(body []byte) []byte {
	return namespaceTag.ReplaceAll(body, []byte("<$1"))
}

// Normalize реализует usecase.FeedParser через NormalizeNamespaces.
func (p *XMLParser) Normalize(body []byte) []byte {
	return NormalizeNamespaces(body)
}

// Sanitize удаляет обёртки CDATA и экранирование разметки, обрезает пробелы.
func Sanitize(s string) string {
	return strings.TrimSpace(escapes.Replace(s))
}

func acceptable(title string) bool {
	return utf8.RuneCountInString(title) > MinTitleLength
}

func hasURLScheme(title string) bool {
	return strings.HasPrefix(strings.ToLower(title), "http")
}

// Parse разбирает документ как XML и возвращает очищенные заголовки элементов
// в порядке документа, но не больше limit (limit <= 0 снимает ограничение).
// Документ, оборванный после хотя бы одного принятого заголовка, не считается ошибкой.
// Ошибки разбора оборачивают domain.ErrParse.
func (p *XMLParser) Parse(ctx context.Context, body []byte, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	decoder := xml.NewDecoder(bytes.NewReader(body))
	decoder.Entity = xml.HTMLEntity
	decoder.CharsetReader = charsetReader

	root, err := rootElement(decoder)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode XML: %w", domain.ErrParse, err)
	}
	var sh shape
	switch root.Name.Local {
	case "rss":
		sh = shape{item: "item", container: "channel"}
	case "feed":
		sh = shape{item: "entry", container: root.Name.Local}
	case "RDF":
		sh = shape{item: "item", container: root.Name.Local}
	default:
		return nil, fmt.Errorf("%w: no channel or feed element found, root is <%s>", domain.ErrParse, root.Name.Local)
	}

	titles := make([]string, 0, max(limit, 0))
	path := []string{root.Name.Local}
	for len(path) > 0 && (limit <= 0 || len(titles) < limit) {
		tok, err := decoder.Token()
		if err != nil {
			if len(titles) > 0 {
				p.log.Warn("Document ended early, keeping parsed items",
					slog.Int("items_parsed", len(titles)),
					slog.Any("error", err),
				)
				return titles, nil
			}
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("%w: failed to decode XML: %w", domain.ErrParse, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != sh.item || path[len(path)-1] != sh.container {
				path = append(path, t.Name.Local)
				continue
			}
			var item itemXML
			if err := decoder.DecodeElement(&item, &t); err != nil {
				if len(titles) > 0 {
					p.log.Warn("Broken item, keeping parsed items",
						slog.Int("items_parsed", len(titles)),
						slog.Any("error", err),
					)
					return titles, nil
				}
				return nil, fmt.Errorf("%w: failed to decode item: %w", domain.ErrParse, err)
			}
			if title, ok := p.accept(&item); ok {
				titles = append(titles, title)
			}
		case xml.EndElement:
			path = path[:len(path)-1]
		}
	}
	return titles, nil
}

func (p *XMLParser) accept(item *itemXML) (string, bool) {
	title := Sanitize(item.title())
	if !acceptable(title) {
		return "", false
	}
	if p.maxAge > 0 {
		raw := item.date()
		if raw == "" {
			return title, true
		}
		published, err := parsePubDate(raw)
		if err != nil {
			p.log.Debug("Could not parse item date, keeping item",
				slog.String("date", raw),
				slog.String("headline", title),
			)
			return title, true
		}
		if p.now().Sub(published) > p.maxAge {
			p.log.Debug("Skipping stale item",
				slog.String("headline", title),
				slog.Time("published", published),
			)
			return "", false
		}
	}
	return title, true
}

// Scan - лексический разбор для документов, которые не удалось разобрать как XML.
// Ищет пары <title>...</title> в сыром тексте и применяет те же правила длины и
// лимита, дополнительно отбрасывая строки, начинающиеся со схемы URL.
func (p *XMLParser) Scan(body []byte, limit int) []string {
	var titles []string
	rest := body
	for limit <= 0 || len(titles) < limit {
		open := bytes.Index(rest, titleOpenTag)
		if open < 0 {
			break
		}
		rest = rest[open+len(titleOpenTag):]
		if len(rest) == 0 {
			break
		}
		if c := rest[0]; c != '>' && c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			continue
		}
		gt := bytes.IndexByte(rest, '>')
		if gt < 0 {
			break
		}
		rest = rest[gt+1:]
		end := bytes.Index(rest, titleCloseTag)
		if end < 0 {
			break
		}
		title := Sanitize(string(rest[:end]))
		rest = rest[end+len(titleCloseTag):]
		if acceptable(title) && !hasURLScheme(title) {
			titles = append(titles, title)
		}
	}
	return titles
}

func rootElement(decoder *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := decoder.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

// parsePubDate - вспомогательная функция для парсинга даты в разных форматах.
func parsePubDate(dateStr string) (time.Time, error) {
	formats := []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC822Z,
		time.RFC822,
		time.RFC3339,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 MST",
		"2006-01-02T15:04:05",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, strings.TrimSpace(dateStr)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse date in any known format: %q", dateStr)
}
