package canvas

// Line glyphs used when stroking connections.
const (
	GlyphHorizontal = '─'
	GlyphVertical   = '│'
	GlyphRising     = '╱'
	GlyphFalling    = '╲'
	GlyphCross      = '┼'
	GlyphDiagCross  = '╳'
)

// CharacterMerger decides what a cell shows when two line glyphs meet.
type CharacterMerger struct {
	rules map[[2]rune]rune
}

// NewCharacterMerger creates a merger with the connection line rules.
func NewCharacterMerger() *CharacterMerger {
	m := &CharacterMerger{rules: make(map[[2]rune]rune)}
	m.add(GlyphHorizontal, GlyphVertical, GlyphCross)
	m.add(GlyphRising, GlyphFalling, GlyphDiagCross)
	m.add(GlyphHorizontal, GlyphCross, GlyphCross)
	m.add(GlyphVertical, GlyphCross, GlyphCross)
	m.add(GlyphRising, GlyphDiagCross, GlyphDiagCross)
	m.add(GlyphFalling, GlyphDiagCross, GlyphDiagCross)
	m.add('-', '|', '+')
	m.add('/', '\\', 'X')
	return m
}

func (m *CharacterMerger) add(a, b, result rune) {
	m.rules[[2]rune{a, b}] = result
	m.rules[[2]rune{b, a}] = result
}

// Merge combines the glyph already in a cell with a new one. Unknown
// combinations keep the newer glyph.
func (m *CharacterMerger) Merge(existing, incoming rune) rune {
	if existing == ' ' || existing == 0 || existing == incoming {
		return incoming
	}
	if merged, ok := m.rules[[2]rune{existing, incoming}]; ok {
		return merged
	}
	return incoming
}

// lineGlyph picks the glyph for a segment with the given cell deltas.
// Screen y grows downward, so a positive slope falls to the right.
func lineGlyph(dx, dy int, ascii bool) rune {
	adx, ady := abs(dx), abs(dy)
	var g rune
	switch {
	case ady*2 <= adx:
		g = GlyphHorizontal
	case adx*2 <= ady:
		g = GlyphVertical
	case (dx > 0) == (dy > 0):
		g = GlyphFalling
	default:
		g = GlyphRising
	}
	if ascii {
		return asciiGlyph(g)
	}
	return g
}

func asciiGlyph(g rune) rune {
	switch g {
	case GlyphHorizontal:
		return '-'
	case GlyphVertical:
		return '|'
	case GlyphRising:
		return '/'
	case GlyphFalling:
		return '\\'
	case GlyphCross:
		return '+'
	case GlyphDiagCross:
		return 'X'
	}
	return g
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
