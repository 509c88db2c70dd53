package store

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// cellEscape prefixes escaped runes in workbook text. It sits in the Private
// Use Area, so XML accepts it and YouTube text practically never carries it.
//
//	escape + escape     literal escape rune
//	escape + 4 hex      rune XML would reject (control chars, CR, U+FFFE/U+FFFF)
//	escape alone        non-nil empty string; an empty cell is nil
const cellEscape = '\uE000'

func encodeOpt(s *string) string {
	if s == nil {
		return ""
	}
	if *s == "" {
		return string(cellEscape)
	}
	return encodeText(*s)
}

func decodeOpt(cell string) *string {
	if cell == "" {
		return nil
	}
	if cell == string(cellEscape) {
		empty := ""
		return &empty
	}
	v := decodeText(cell)
	return &v
}

func encodeText(s string) string {
	if !needsEscape(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch {
		case r == cellEscape:
			b.WriteRune(cellEscape)
			b.WriteRune(cellEscape)
		case xmlForbidden(r):
			b.WriteRune(cellEscape)
			fmt.Fprintf(&b, "%04X", r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// decodeText is lenient: an escape rune that does not start a valid
// sequence is kept as-is, which covers workbooks written by other tools.
func decodeText(cell string) string {
	if !strings.ContainsRune(cell, cellEscape) {
		return cell
	}
	var b strings.Builder
	b.Grow(len(cell))
	for i := 0; i < len(cell); {
		r, size := utf8.DecodeRuneInString(cell[i:])
		if r != cellEscape {
			b.WriteString(cell[i : i+size])
			i += size
			continue
		}
		rest := cell[i+size:]
		if next, n := utf8.DecodeRuneInString(rest); next == cellEscape {
			b.WriteRune(cellEscape)
			i += size + n
			continue
		}
		if len(rest) >= 4 {
			if v, err := strconv.ParseUint(rest[:4], 16, 32); err == nil {
				b.WriteRune(rune(v))
				i += size + 4
				continue
			}
		}
		b.WriteRune(cellEscape)
		i += size
	}
	return b.String()
}

func needsEscape(s string) bool {
	for _, r := range s {
		if r == cellEscape || xmlForbidden(r) {
			return true
		}
	}
	return false
}

// xmlForbidden reports runes that do not survive an XML 1.0 text node.
// CR is included because parsers normalise it away.
func xmlForbidden(r rune) bool {
	switch {
	case r == '\t' || r == '\n':
		return false
	case r < 0x20:
		return true
	case r == 0xFFFE || r == 0xFFFF:
		return true
	}
	return false
}
