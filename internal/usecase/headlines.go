package usecase

import "ticker/internal/domain"

// HeadlineReader предоставляет снимок текущего буфера заголовков.
type HeadlineReader interface {
	Snapshot() []domain.Headline
}

// HeadlinesUseCase отдаёт заголовки для API статуса.
type HeadlinesUseCase struct {
	reader HeadlineReader
}

func NewHeadlinesUseCase(r HeadlineReader) *HeadlinesUseCase {
	return &HeadlinesUseCase{reader: r}
}

// GetHeadlines возвращает не больше limit самых новых заголовков, от старых к новым.
// limit <= 0 возвращает весь буфер.
func (us *HeadlinesUseCase) GetHeadlines(limit int) []domain.Headline {
	all := us.reader.Snapshot()
	if limit > 0 && len(all) > limit {
		return all[len(all)-limit:]
	}
	return all
}
