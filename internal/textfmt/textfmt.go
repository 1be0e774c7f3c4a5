// Package textfmt formats signer data for artifacts drawn with the core PDF fonts,
// which only cover ASCII.
package textfmt

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var months = [...]string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

// dotless ı has no decomposition, so it is mapped before mark removal.
var dotless = runes.Map(func(r rune) rune {
	if r == 'ı' {
		return 'i'
	}
	return r
})

// AsciiSafe folds Turkish letters and circumflexed vowels to their ASCII base letters.
// Runes outside that set pass through unchanged.
func AsciiSafe(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < unicode.MaxASCII || !turkish(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteString(fold(string(r)))
	}
	return b.String()
}

func turkish(r rune) bool {
	return strings.ContainsRune("İışŞğĞüÜöÖçÇâîû", r)
}

func fold(s string) string {
	t := transform.Chain(dotless, norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Truncate cuts s after n runes and appends "...". Strings of n runes or fewer are returned as-is.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// Clip cuts s after n runes without a marker.
func Clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// FormatDate renders t in loc as a long Turkish date, e.g. "17 Şubat 2026 14:05".
func FormatDate(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%d %s %d %02d:%02d", t.Day(), months[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

// FormatShortDate renders t in loc as dd.MM.yyyy.
func FormatShortDate(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("02.01.2006")
}

// SafeName keeps letters and whitespace from name and falls back to "Kullanici".
func SafeName(name string) string {
	kept := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, name)

	kept = strings.TrimSpace(kept)
	if kept == "" {
		return "Kullanici"
	}
	return kept
}

// Digits strips everything but decimal digits.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// ArtifactName builds "<SafeName> <Digits(id)><suffix>" with whitespace runs collapsed.
func ArtifactName(name, id, suffix string) string {
	raw := SafeName(name) + " " + Digits(id) + suffix
	return strings.Join(strings.Fields(raw), " ")
}
