package fields

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pbaptista/diesp/internal/layout"
)

var (
	commaDecimalRe = regexp.MustCompile(`^(\d{1,3}(?:\.\d{3})*|\d+),(\d{2})$`)
	cleanMoneyRe   = regexp.MustCompile(`^\d+\.\d{2}$`)
	artifactRe     = regexp.MustCompile(`^(\d{5,6})\.00$`)
	slashDateRe    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})$`)
	dashDateRe     = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)
	writtenDateRe  = regexp.MustCompile(`^(\d{1,2})\s+de\s+(\p{L}+)\s+de\s+(\d{4})$`)
	honorificRe    = regexp.MustCompile(`^(?i)(dr|dra|doutor|doutora|perit[oa]|sr|sra|senhor|senhora)\.?\s+`)
	nonDigitRe     = regexp.MustCompile(`\D`)
)

// CleanMoney normalizes a monetary mention to fixed two-decimal form
// with a dot separator ("1234.56"). It accepts the pt-BR comma-decimal
// form first, then plain digit runs. A digit run with no separator
// whose value exceeds 1000 lost its decimal separator upstream and is
// divided by 100, as is the 5-6 digit ".00" artifact. Cleaning an
// already-clean value returns it unchanged.
func CleanMoney(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.Trim(s, ".,")
	if s == "" {
		return "", false
	}

	if m := artifactRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return "", false
		}
		return fmt.Sprintf("%d.%02d", n/100, n%100), true
	}
	if cleanMoneyRe.MatchString(s) {
		return s, true
	}
	if m := commaDecimalRe.FindStringSubmatch(s); m != nil {
		return strings.ReplaceAll(m[1], ".", "") + "." + m[2], true
	}

	hadSeparator := strings.ContainsAny(s, ".,")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return "", false
	}
	if !hadSeparator && v > 1000 {
		v /= 100
	}
	return fmt.Sprintf("%.2f", v), true
}

// CleanCPF strips punctuation and re-punctuates an 11-digit run as
// 000.000.000-00. Anything else comes back digits-only (and fails
// validation downstream).
func CleanCPF(raw string) (string, bool) {
	digits := nonDigitRe.ReplaceAllString(raw, "")
	if digits == "" {
		return "", false
	}
	if len(digits) != 11 {
		return digits, true
	}
	return digits[0:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:11], true
}

// nameConnectives stay lower-cased inside a title-cased name.
var nameConnectives = map[string]struct{}{
	"da": {}, "de": {}, "do": {}, "das": {}, "dos": {}, "e": {},
}

var titleCaser = cases.Title(language.BrazilianPortuguese)

// CleanPersonName drops a leading honorific and a trailing
// "- perito ..." style suffix, then title-cases the rest.
func CleanPersonName(raw string) (string, bool) {
	s := layout.NormalizeSpace(raw)
	s = honorificRe.ReplaceAllString(s, "")
	for _, sep := range []string{"–", "—", " - "} {
		if i := strings.Index(s, sep); i > 0 {
			s = s[:i]
		}
	}
	s = strings.Trim(s, " ,.-–")
	if s == "" {
		return "", false
	}
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		if _, conn := nameConnectives[w]; conn && i > 0 {
			continue
		}
		words[i] = titleCaser.String(w)
	}
	return strings.Join(words, " "), true
}

// months maps folded Portuguese month names to their number.
var months = map[string]time.Month{
	"janeiro": time.January, "fevereiro": time.February, "marco": time.March,
	"abril": time.April, "maio": time.May, "junho": time.June,
	"julho": time.July, "agosto": time.August, "setembro": time.September,
	"outubro": time.October, "novembro": time.November, "dezembro": time.December,
}

// CleanDate parses dd/mm/yyyy (2- or 4-digit year), dd-mm-yyyy, ISO,
// and written-out Portuguese dates, and normalizes to yyyy-MM-dd.
// Years before 1990 or more than one year in the future are rejected.
func CleanDate(raw string) (string, bool) {
	s := layout.NormalizeSpace(raw)

	if isoDateRe.MatchString(s) {
		t, err := time.Parse("2006-01-02", s)
		if err != nil || !plausibleYear(t.Year()) {
			return "", false
		}
		return s, true
	}
	if m := slashDateRe.FindStringSubmatch(s); m != nil {
		return buildDate(m[3], m[2], m[1])
	}
	if m := dashDateRe.FindStringSubmatch(s); m != nil {
		return buildDate(m[3], m[2], m[1])
	}
	if m := writtenDateRe.FindStringSubmatch(layout.Fold(s)); m != nil {
		month, ok := months[m[2]]
		if !ok {
			return "", false
		}
		return buildDate(m[3], strconv.Itoa(int(month)), m[1])
	}
	return "", false
}

func buildDate(year, month, day string) (string, bool) {
	y, _ := strconv.Atoi(year)
	if len(year) == 2 {
		// Two-digit years pivot at 90: 90-99 are the 1990s, the rest
		// the 2000s.
		if y >= 90 {
			y += 1900
		} else {
			y += 2000
		}
	}
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	if m < 1 || m > 12 || d < 1 || d > 31 || !plausibleYear(y) {
		return "", false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// Rejects impossible dates like 31/02 that roll over.
	if t.Day() != d || int(t.Month()) != m {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

func plausibleYear(y int) bool {
	return y >= 1990 && y <= time.Now().Year()+1
}

// CleanProcess keeps digits and process punctuation only.
func CleanProcess(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, ".,;")
	if s == "" {
		return "", false
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9') && r != '.' && r != '-' && r != '/' {
			return "", false
		}
	}
	return s, true
}

// CleanText trims and collapses whitespace.
func CleanText(raw string) (string, bool) {
	s := layout.NormalizeSpace(raw)
	s = strings.Trim(s, " ,.;:-–")
	return s, s != ""
}

// CleanDigits keeps the digit run only.
func CleanDigits(raw string) (string, bool) {
	digits := nonDigitRe.ReplaceAllString(raw, "")
	return digits, digits != ""
}
