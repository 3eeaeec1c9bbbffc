package render

import "ticker/internal/domain"

// VerticalMargin - сколько строк пикселей текст проходит за краем панели
// при вертикальной прокрутке, прежде чем появиться с другой стороны.
const VerticalMargin = 10

// Advance сдвигает позицию прокрутки на один шаг и применяет правила переноса.
// textWidth - ширина текста в пикселях, width и height - размеры панели.
func Advance(pos int, dir domain.Direction, textWidth, width, height int) int {
	switch dir {
	case domain.DirectionLeft:
		pos++
		if pos >= textWidth+width {
			pos = 0
		}
	case domain.DirectionRight:
		pos--
		if pos <= -(textWidth + width) {
			pos = width
		}
	case domain.DirectionUp:
		pos++
		if pos >= height+VerticalMargin {
			pos = -VerticalMargin
		}
	case domain.DirectionDown:
		pos--
		if pos <= -(height + VerticalMargin) {
			pos = height
		}
	}
	return pos
}

// Origin возвращает левый верхний угол текста на панели.
func Origin(pos int, dir domain.Direction, scrolling bool, textWidth, textHeight, width, height int) (x, y int) {
	centreX := max((width-textWidth)/2, 0)
	centreY := max((height-textHeight)/2, 0)
	if !scrolling {
		return centreX, centreY
	}
	switch dir {
	case domain.DirectionLeft:
		return width - pos, centreY
	case domain.DirectionRight:
		return pos, centreY
	case domain.DirectionUp:
		return centreX, height - pos
	case domain.DirectionDown:
		return centreX, pos
	default:
		return centreX, centreY
	}
}
