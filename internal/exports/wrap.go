package exports

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type measurer interface {
	MeasureTextWidth(text string) (float64, error)
}

// wrapText breaks text into lines no wider than width. Whitespace runs are
// kept as written, so column-aligned labels and indentation survive; a line
// only breaks at a run, which is consumed by the break. A word is split only
// when it is wider than a whole line. Empty text is one empty line.
func wrapText(m measurer, text string, width float64) ([]string, error) {
	if text == "" {
		return []string{""}, nil
	}

	var (
		lines []string
		cur   string
	)
	for _, tok := range tokenize(text) {
		w, err := m.MeasureTextWidth(cur + tok)
		if err != nil {
			return nil, err
		}
		if w <= width {
			cur += tok
			continue
		}

		if isSpaceRun(tok) {
			if cur != "" {
				lines = append(lines, cur)
			}
			cur = ""
			continue
		}

		if trimmed := strings.TrimRightFunc(cur, unicode.IsSpace); trimmed != "" {
			lines = append(lines, trimmed)
		}
		cur = ""

		ww, err := m.MeasureTextWidth(tok)
		if err != nil {
			return nil, err
		}
		if ww <= width {
			cur = tok
			continue
		}
		pieces, err := splitWord(m, tok, width)
		if err != nil {
			return nil, err
		}
		lines = append(lines, pieces[:len(pieces)-1]...)
		cur = pieces[len(pieces)-1]
	}
	if cur != "" || len(lines) == 0 {
		lines = append(lines, cur)
	}
	return lines, nil
}

// tokenize splits text into alternating runs of whitespace and non-whitespace.
func tokenize(text string) []string {
	var (
		toks  []string
		start int
		space bool
	)
	for i, r := range text {
		s := unicode.IsSpace(r)
		if i > 0 && s != space {
			toks = append(toks, text[start:i])
			start = i
		}
		space = s
	}
	return append(toks, text[start:])
}

func isSpaceRun(tok string) bool {
	r, _ := utf8.DecodeRuneInString(tok)
	return unicode.IsSpace(r)
}

func splitWord(m measurer, word string, width float64) ([]string, error) {
	var pieces []string
	for word != "" {
		cut := len(word)
		for {
			w, err := m.MeasureTextWidth(word[:cut])
			if err != nil {
				return nil, err
			}
			if w <= width {
				break
			}
			_, size := utf8.DecodeLastRuneInString(word[:cut])
			if cut-size == 0 {
				// a single rune wider than the line still goes out alone
				break
			}
			cut -= size
		}
		pieces = append(pieces, word[:cut])
		word = word[cut:]
	}
	return pieces, nil
}
