package domain

// ContentKind - тип слота ротации.
type ContentKind int

const (
	ContentHeadlines ContentKind = iota
	ContentTime
	ContentDate
	ContentQuote
	ContentFunFact
	ContentCustomText
)

var contentKindNames = []string{"headlines", "time", "date", "quote", "fact", "custom"}

func (k ContentKind) String() string { return enumName("ContentKind", contentKindNames, int(k)) }

func (k ContentKind) MarshalText() ([]byte, error) {
	return marshalEnum("content type", contentKindNames, int(k))
}

func (k *ContentKind) UnmarshalText(text []byte) error {
	v, err := parseEnum("content type", contentKindNames, text)
	if err != nil {
		return err
	}
	*k = ContentKind(v)
	return nil
}

// ContentSlot - одна позиция в расписании ротации.
// Порядок слотов в конфигурации задаёт порядок показа.
// Text используется только для ContentCustomText.
type ContentSlot struct {
	Kind    ContentKind `json:"type" toml:"type"`
	Name    string      `json:"name,omitempty" toml:"name"`
	Enabled bool        `json:"enabled" toml:"enabled"`
	Text    string      `json:"text,omitempty" toml:"text"`
}

// DefaultSlots возвращает встроенный набор слотов, который подставляется,
// если в конфигурации список пуст.
func DefaultSlots() []ContentSlot {
	return []ContentSlot{
		{Kind: ContentTime, Name: "Current Time", Enabled: true},
		{Kind: ContentDate, Name: "Current Date", Enabled: true},
		{Kind: ContentHeadlines, Name: "RSS Headlines", Enabled: true},
		{Kind: ContentQuote, Name: "Quote of the Day", Enabled: false},
		{Kind: ContentFunFact, Name: "Fun Facts", Enabled: false},
	}
}
