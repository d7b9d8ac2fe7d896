package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	defaultCategoryCode = "GEN"
	defaultNameCode     = "PROD"
)

// asciiLetters quita acentos (Café -> Cafe) y deja solo letras A-Z en mayúsculas.
func asciiLetters(s string, max int) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	for _, r := range folded {
		if b.Len() == max {
			break
		}
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// CodePrefix prefijo CAT-NAME- del código de producto: hasta 4 letras de la categoría y
// hasta 4 letras de cada una de las dos primeras palabras del nombre.
func CodePrefix(category, name string) string {
	cat := asciiLetters(category, 4)
	if cat == "" {
		cat = defaultCategoryCode
	}
	var parts []string
	for _, word := range strings.Fields(name) {
		if len(parts) == 2 {
			break
		}
		if p := asciiLetters(word, 4); p != "" {
			parts = append(parts, p)
		}
	}
	nameCode := strings.Join(parts, "-")
	if nameCode == "" {
		nameCode = defaultNameCode
	}
	return cat + "-" + nameCode + "-"
}

// NextCode siguiente código secuencial tras last (vacío = primero del prefijo).
func NextCode(prefix, last string) string {
	next := 1
	if last != "" {
		if n, err := strconv.Atoi(last[strings.LastIndex(last, "-")+1:]); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%03d", prefix, next)
}
