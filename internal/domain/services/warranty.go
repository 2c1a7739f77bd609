package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// WarrantyDates is the parser output. Each field is an ISO YYYY-MM-DD date or
// nil. All three are nil when no purchase date can be established and no
// explicit expiry could be parsed on its own.
type WarrantyDates struct {
	WarrantyStart     *string
	WarrantyExpiresAt *string
	AutoDeleteAfter   *string
}

// Purchase-date anchors, Hebrew and English. The dotted קניה pattern survives
// OCR output that inserts periods between letters.
var purchaseKeywords = []string{
	`תאריך\s*ק\.?נ\.?י\.?ה`,
	`תאריך\s*רכישה`,
	`תאריך\s*קניה`,
	`תאריך\s*קנייה`,
	`תאריך\s*הקניה`,
	`תאריך\s*הקנייה`,
	`תאריך\s*חשבונית`,
	`ת\.?\s*חשבונית`,
	`תאריך\s*תעודת\s*משלוח`,
	`תאריך\s*משלוח`,
	`תאריך\s*אספקה`,
	`תאריך\s*מסירה`,
	`נמסר\s*בתאריך`,
	`נרכש\s*בתאריך`,
	`purchase\s*date`,
	`date\s*of\s*purchase`,
	`invoice\s*date`,
	`buy\s*date`,
}

var expiryKeywords = []string{
	`תוקף\s*אחריות`,
	`תוקף\s*האחריות`,
	`האחריות\s*בתוקף\s*עד`,
	`בתוקף\s*עד`,
	`אחריות\s*עד`,
	`warranty\s*until`,
	`warranty\s*expiry`,
	`warranty\s*expires`,
	`valid\s*until`,
	`expiry\s*date`,
	`expiration\s*date`,
}

// The three recognized date shapes: D?D sep D?D sep Y{2,4}, YYYY sep M?M sep
// D?D, and "D?D monthname Y{2,4}". A separator is any single character that
// is not a digit, latin letter or Hebrew letter.
const dateShapes = `\d{1,2}[^0-9a-zA-Zא-ת]\d{1,2}[^0-9a-zA-Zא-ת]\d{2,4}` +
	`|\d{4}[^0-9a-zA-Zא-ת]\d{1,2}[^0-9a-zA-Zא-ת]\d{1,2}` +
	`|\d{1,2}\s+[a-zא-ת]+\s+\d{2,4}`

var (
	anyDateRegex    = regexp.MustCompile(`(?i)(` + dateShapes + `)`)
	headDateRegex   = regexp.MustCompile(`(\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4})`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	nonDateCharRe   = regexp.MustCompile(`[^0-9a-zA-Zא-ת]+`)
	ymdShapeRegex   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	keywordDateRegexes map[string]*regexp.Regexp
)

func init() {
	keywordDateRegexes = make(map[string]*regexp.Regexp)
	for _, kw := range append(append([]string{}, purchaseKeywords...), expiryKeywords...) {
		keywordDateRegexes[kw] = regexp.MustCompile(`(?i)` + kw + `[ \t:]*(` + dateShapes + `)`)
	}
}

var monthNames = map[string]int{
	"jan": 1, "january": 1, "feb": 2, "february": 2, "mar": 3, "march": 3,
	"apr": 4, "april": 4, "may": 5, "jun": 6, "june": 6, "jul": 7, "july": 7,
	"aug": 8, "august": 8, "sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10, "nov": 11, "november": 11, "dec": 12, "december": 12,
	"ינואר": 1, "פברואר": 2, "מרץ": 3, "מרס": 3, "אפריל": 4, "מאי": 5,
	"יוני": 6, "יולי": 7, "אוגוסט": 8, "ספטמבר": 9, "אוקטובר": 10,
	"נובמבר": 11, "דצמבר": 12,
}

// validYMD checks both the shape and the calendar: time.Date normalizes
// overflow (Feb 30 becomes Mar 1), so the constructed date must round-trip to
// the same components.
func validYMD(ymd string) bool {
	if !ymdShapeRegex.MatchString(ymd) {
		return false
	}
	y, _ := strconv.Atoi(ymd[0:4])
	m, _ := strconv.Atoi(ymd[5:7])
	d, _ := strconv.Atoi(ymd[8:10])
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return false
	}
	dt := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return dt.Year() == y && int(dt.Month()) == m && dt.Day() == d
}

func expandTwoDigitYear(yy int) int {
	if yy < 50 {
		return 2000 + yy
	}
	return 1900 + yy
}

func formatYMD(y, m, d int) string {
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

// normalizeDateGuess turns a raw captured date into YYYY-MM-DD or "" when it
// cannot be resolved to a valid calendar date. Month-name dates win over
// purely numeric shapes; numeric shapes try YYYY-M-D, then D-M-YYYY, then
// D-M-YY in that priority order.
func normalizeDateGuess(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, ",", " ")
	s = nonDateCharRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	tokens := strings.Split(s, "-")
	hasMonthName := false
	for _, t := range tokens {
		if _, ok := monthNames[t]; ok {
			hasMonthName = true
			break
		}
	}
	if hasMonthName {
		day, month, year := 0, 0, 0
		for _, t := range tokens {
			if m, ok := monthNames[t]; ok {
				month = m
				continue
			}
			if n, err := strconv.Atoi(t); err == nil {
				switch {
				case len(t) <= 2 && n <= 31 && day == 0:
					day = n
				case len(t) == 4 && year == 0:
					year = n
				case len(t) == 2 && year == 0:
					year = expandTwoDigitYear(n)
				}
			}
		}
		if day > 0 && month > 0 && year > 0 {
			if ymd := formatYMD(year, month, day); validYMD(ymd) {
				return ymd
			}
		}
		return ""
	}

	if len(tokens) != 3 {
		return ""
	}
	a, errA := strconv.Atoi(tokens[0])
	b, errB := strconv.Atoi(tokens[1])
	c, errC := strconv.Atoi(tokens[2])
	if errA != nil || errB != nil || errC != nil {
		return ""
	}

	// YYYY-M-D
	if len(tokens[0]) == 4 {
		if ymd := formatYMD(a, b, c); validYMD(ymd) {
			return ymd
		}
		return ""
	}
	// D-M-YYYY
	if len(tokens[2]) == 4 {
		if ymd := formatYMD(c, b, a); validYMD(ymd) {
			return ymd
		}
		return ""
	}
	// D-M-YY
	if len(tokens[2]) == 2 {
		if ymd := formatYMD(expandTwoDigitYear(c), b, a); validYMD(ymd) {
			return ymd
		}
	}
	return ""
}

// findDateAfterKeywords returns the first valid date captured right after any
// of the anchor keywords, or "".
func findDateAfterKeywords(keywords []string, text string) string {
	for _, kw := range keywords {
		re := keywordDateRegexes[kw]
		m := re.FindStringSubmatch(text)
		if len(m) > 1 {
			if ymd := normalizeDateGuess(m[1]); ymd != "" {
				return ymd
			}
		}
	}
	return ""
}

// ExtractWarranty parses free-form text (OCR output, decoded bytes or a plain
// string) for purchase and expiry dates.
//
// Search order for the purchase date: keyword-anchored, then the first
// date-shaped token within the first 500 characters (line by line), then a
// whole-document scan that is accepted only when exactly one distinct valid
// date exists (two or more distinct dates mean "can't tell"). A missing
// expiry defaults to purchase + 12 months; the auto-delete date is purchase +
// 7 years whenever a purchase date exists.
func ExtractWarranty(rawText string) WarrantyDates {
	rawLower := strings.ToLower(rawText)
	cleaned := strings.TrimSpace(whitespaceRegex.ReplaceAllString(rawText, " "))
	lower := strings.ToLower(cleaned)

	warrantyStart := findDateAfterKeywords(purchaseKeywords, lower)
	warrantyExpires := findDateAfterKeywords(expiryKeywords, lower)

	if warrantyStart == "" {
		head := rawLower
		if len(head) > 500 {
			head = head[:500]
		}
		for _, line := range strings.Split(head, "\n") {
			m := headDateRegex.FindStringSubmatch(line)
			if len(m) > 1 {
				if ymd := normalizeDateGuess(m[1]); ymd != "" {
					warrantyStart = ymd
					break
				}
			}
		}
	}

	if warrantyStart == "" {
		seen := make(map[string]struct{})
		for _, m := range anyDateRegex.FindAllStringSubmatch(rawLower, -1) {
			if ymd := normalizeDateGuess(m[1]); ymd != "" {
				seen[ymd] = struct{}{}
			}
		}
		if len(seen) == 1 {
			for ymd := range seen {
				warrantyStart = ymd
			}
		}
	}

	if warrantyExpires == "" && warrantyStart != "" {
		warrantyExpires = shiftYMD(warrantyStart, 0, 12)
	}

	autoDelete := ""
	if warrantyStart != "" {
		autoDelete = shiftYMD(warrantyStart, 7, 0)
	}

	return WarrantyDates{
		WarrantyStart:     optionalYMD(warrantyStart),
		WarrantyExpiresAt: optionalYMD(warrantyExpires),
		AutoDeleteAfter:   optionalYMD(autoDelete),
	}
}

// shiftYMD adds years/months with AddDate overflow semantics (Feb 29 + 12
// months lands on Mar 1 of a non-leap year).
func shiftYMD(ymd string, years, months int) string {
	t, err := time.Parse("2006-01-02", ymd)
	if err != nil {
		return ""
	}
	t = t.AddDate(years, months, 0)
	return t.Format("2006-01-02")
}

func optionalYMD(ymd string) *string {
	if ymd == "" || !validYMD(ymd) {
		return nil
	}
	return &ymd
}
