package services

import (
	"regexp"
	"strings"
)

// Fixed category set. Order matters: ties in keyword scoring resolve to the
// category enumerated first.
const (
	CategoryFinance     = "כלכלה"
	CategoryMedical     = "רפואה"
	CategoryWork        = "עבודה"
	CategoryHome        = "בית"
	CategoryWarranty    = "אחריות"
	CategoryCertificate = "תעודות"
	CategoryBusiness    = "עסק"
	CategoryOther       = "אחר"
)

var Categories = []string{
	CategoryFinance,
	CategoryMedical,
	CategoryWork,
	CategoryHome,
	CategoryWarranty,
	CategoryCertificate,
	CategoryBusiness,
	CategoryOther,
}

var categoryKeywords = map[string][]string{
	CategoryFinance: {
		"חשבון", "חשבונית", "חשבונית מס", "חשבוניתמס", "חשבוניתמס קבלה", "קבלה", "קבלות",
		"ארנונה", "ארנונה מגורים", "ארנונה לבית", "סכום לתשלום", "סכום לתשלום מיידי",
		"בנק", "בנק הפועלים", "בנק לאומי", "בנק דיסקונט", "יתרה", "מאזן", "עובר ושב", "עו\"ש",
		"אשראי", "כרטיס אשראי", "פירוט אשראי", "פירוט כרטיס", "חיוב אשראי",
		"תשלום", "תשלומים", "הוראת קבע", "הוראתקבע", "חיוב חודשי", "חיוב חודשי לכרטיס",
		"משכנתא", "הלוואה", "הלוואות", "יתרת הלוואה", "פירעון", "ריבית", "ריביות",
		"משכורת", "משכורת חודשית", "משכורת נטו", "שכר", "שכר עבודה", "שכר חודשי", "שכר נטו",
		"תלוש", "תלוש שכר", "תלושי שכר", "תלושמשכורת", "תלושמשכורת חודשי",
		"ביטוח לאומי", "ביטוחלאומי", "ביטוח לאמי", "ביטוח לאומי ישראל",
		"דמי אבטלה", "אבטלה", "מענק", "גמלה", "קצבה", "קיצבה", "קיצבה חודשית", "פנסיה", "קרן פנסיה", "קרןפנסיה",
		"קופת גמל", "קופתגמל", "גמל", "פנסיוני", "פנסיונית",
		"מס הכנסה", "מסהכנסה", "מס הכנסה שנתי", "דו\"ח שנתי", "דו\"ח מס", "דוח מס", "מס שנתי",
		"החזר מס", "החזרי מס", "החזרמס", "מע\"מ", "מעמ", "דיווח מע\"מ", "דוח מע\"מ", "דו\"ח מע\"מ",
		"ביטוח רכב", "ביטוח רכב חובה", "ביטוח חובה", "ביטוח מקיף", "ביטוחהדירה", "ביטוח הדירה", "פרמיה", "פרמיית ביטוח",
		"פוליסה", "פוליסת ביטוח", "פרמיה לתשלום", "חוב לתשלום", "הודעת חיוב",
	},
	CategoryMedical: {
		"רפואה", "רפואי", "רפואית", "מסמך רפואי", "מכתב רפואי", "דוח רפואי",
		"מרפאה", "מרפאה מומחה", "מרפאת מומחים", "מרפאת נשים", "מרפאת ילדים",
		"קופת חולים", "קופתחולים", "קופה", "קופת חולים כללית", "כללית", "מכבי", "מאוחדת", "לאומית",
		"רופא", "רופאה", "רופא משפחה", "רופאת משפחה", "רופא ילדים", "רופאת ילדים",
		"סיכום ביקור", "סיכוםביקור", "סיכום מחלה", "סיכום אשפוז", "סיכום אשפוז ושחרור",
		"מכתב שחרור", "שחרור מבית חולים", "שחרור מבית\"ח", "שחרור מבית חולים כללי",
		"בדיקת דם", "בדיקות דם", "בדיקות המים", "בדיקה דם", "בדיקות מעבדה", "מעבדה",
		"אבחנה", "אבחון", "אבחנה רפואית", "דיאגנוזה", "דיאגניזה", "דיאגנוזה רפואית",
		"הפניה", "הפניית", "הפניה לבדיקות", "הפניית לרופא מומחה", "הפניה לרופא מומחה",
		"תור לרופא", "תור לרופאה", "זימון תור", "זימון בדיקה", "זימון בדיקות",
		"מרשם", "מרשם תרופות", "רשימת תרופות", "תרופות", "תרופה", "טיפול תרופתי",
		"טיפול", "טיפול רגשי", "טיפול פסיכולוגי", "פסיכולוג", "פסיכולוגית", "טיפול נפשי",
		"חיסון", "חיסוני", "תעודת התחסנות", "פנקס חיסוני", "כרטיס חיסוני", "תעודת חיסוני",
		"אשפוז", "אשפוז יום", "מחלקה", "בית חולים", "ביתחולים", "בי\"ח", "ביה\"ח",
		"אישור מחלה", "אישור מחלה לעבודה", "אישור מחלה לבית ספר",
		"אישור רפואי", "אישור כשירות", "אישור כשירות רפואית",
		"טופס התחייבות", "טופס 17", "טופס17", "התחייבות", "התחיבות", "התחיבות קופה", "התחייבות קופה",
		"בדיקת קורונה", "קורונה חיובי", "קורונה שלילי", "PCR", "covid", "בדיקת הריון", "US", "אולטרסאונד",
		"נכות רפואית", "ועדה רפואית", "קביעת נכות",
	},
	CategoryWork: {
		"חוזה העסקה", "חוזה העסקה אישי", "חוזה עבודה", "חוזה העסקה לעובד", "חוזה העסקה לעובדת",
		"מכתב קבלה לעבודה", "קבלה לעבודה", "מכתב התחלת עבודה", "ברוכים הבאים לחברה",
		"אישור העסקה", "אישור העסקה רשמי", "אישור העסקה לעובד", "אישור ותק", "אישור שנות ותק", "אישור ניסיון תעסוקתי",
		"תלוש שכר", "תלוששכר", "תלוש משכורת", "תלושי שכר", "תלושי משכורת", "שעות נוספות", "שעותנוספות", "רשימת משמרות", "משמרות",
		"שכר עבודה", "שכר לשעה", "שכר חודשי", "טופס שעות", "אישור תשלום",
		"הצהרת מעסיק", "טופס למעסיק", "אישור מעסיק", "אישור העסקה לצורך ביטוח לאומי",
		"מכתב פיטורין", "מכתב סיום העסקה", "הודעה מוקדמת", "שימוע לפני פיטורין", "פיטורין",
		"סיום העסקה", "סיום יחסי עובד מעביד", "יחסי עובד מעביד", "עובד", "מעסיק", "מעסיקה",
		"הערכת עובד", "הערכת ביצועים", "דו\"ח ביצועים", "חוות דעת מנהל", "משוב עובד",
	},
	CategoryHome: {
		"חוזה שכירות", "חוזהשכירות", "הסכם שכירות", "הסכםשכירות", "שוכר", "שוכרת", "שוכרים", "משכיר", "משכירה", "דירה",
		"נכס", "נכס מגורים", "כתובת מגורים", "מגורים קבועים", "עדכון כתובת", "הצהרת מגורים",
		"ועד בית", "ועדבית", "ועד בית חודשי", "תשלום ועד בית", "גביית ועד בית", "ועד בנין",
		"חברת חשמל", "חברת החשמל", "חשמל", "חשבון חשמל", "קריאת מונה", "מונה חשמל",
		"גז", "חברת גז", "קריאת מונה גז", "מים", "תאגיד מים", "חשבון מים", "מים חודשי",
		"אינטרנט", "ספק אינטרנט", "ראוטר", "נתב", "חשבונית אינטרנט", "הוט", "יס", "HOT", "yes", "סיגיב", "סיגיב אופטייס",
		"ארנונה", "ארנונה מגורים", "חוב ארנונה", "הרשת תשלום ארנונה", "ארנונה עירייה", "עירייה",
		"גירושין", "הסכם גירושין", "צו גירושין", "משמורת", "צו משמורת", "משמורת ילדים",
		"הסדרי ראייה", "הסדרי ראיה", "מזונות", "דמי מזונות", "תשלום מזונות", "משפחה", "משפחתי", "הורה משמורן", "הורה משמורנית",
	},
	CategoryWarranty: {
		"אחריות", "אחריות למוצר", "אחריות מוצר", "אחריות יצרן", "אחריות יבואן", "אחריות יבואן רשמי",
		"אחריות יבואן מורשה", "אחריות לשנה", "אחריות לשנתיים", "אחריות ל12 חודשים", "אחריות ל-12 חודשים",
		"אחריות ל24 חודשים", "אחריות ל-24 חודשים", "שנת אחריות", "שנתיים אחריות", "תוך אחריות",
		"תאריך אחריות", "תוך תקופת האחריות", "סיומה של האחריות", "פג תוקף אחריות", "פג תוקף האחריות",
		"תעודת אחריות", "ת.אחריות", "ת. אחריות", "תעודת-אחריות", "כרטיס אחריות",
		"הוכחת קנייה", "הוכחת קניה", "אישור רכישה", "חשבונית קנייה", "תעודת משלוח", "תעודת מסירה",
		"מספר סידורי", "serial number", "imei", "rma", "repair ticket", "repair order",
	},
	CategoryCertificate: {
		"תעודת זהות", "ת.ז", "תז", "תעודת לידה", "ספח", "ספח תעודת זהות", "ספח ת.ז",
		"רישיון נהיגה", "רישיון רכב", "דרכון", "passport", "דרכון ביומטרי",
		"תעודת התחסנות", "כרטיס חיסוני", "אישור לימודים", "אישור סטודנט", "אישור תלמיד",
		"אישור מגורים", "אישור כתובת", "אישור תושבות",
	},
	CategoryBusiness: {
		"עוסק מורשה", "עוסק פטור", "תיק עוסק", "חשבונית מס", "דיווח מע\"ם", "עוסק מורשה פעיל",
		"חברה בע\"מ", "ח.פ", "מספר עוסק", "הצעת מחיר", "חשבונית ללקוח", "ספק",
	},
	CategoryOther: {},
}

var (
	tokenSplitRegex = regexp.MustCompile(`[\s_\-]+`)
	extensionRegex  = regexp.MustCompile(`\.[^/.]+$`)
	wordPunctRegex  = regexp.MustCompile(`[",.():\[\]{}]`)
)

// normalizeWord trims, lowercases, strips one leading vav conjunction and
// drops punctuation, so "וחשבונית," matches the keyword "חשבונית".
func normalizeWord(word string) string {
	w := strings.ToLower(strings.TrimSpace(word))
	if r := []rune(w); len(r) > 1 && r[0] == 'ו' {
		w = string(r[1:])
	}
	return wordPunctRegex.ReplaceAllString(w, "")
}

// GuessCategory scores the filename against every category's keyword list and
// returns the best match, or CategoryOther when nothing matches. A token and
// a keyword match when either normalized form contains the other. This is a
// heuristic: false positives are expected, and callers may override.
func GuessCategory(fileName string) string {
	base := extensionRegex.ReplaceAllString(fileName, "")
	parts := tokenSplitRegex.Split(base, -1)

	scores := make(map[string]int)
	for _, raw := range parts {
		word := normalizeWord(raw)
		if word == "" {
			continue
		}
		for cat, keywords := range categoryKeywords {
			for _, kw := range keywords {
				clean := normalizeWord(kw)
				if strings.Contains(word, clean) || strings.Contains(clean, word) {
					scores[cat]++
				}
			}
		}
	}

	best := CategoryOther
	bestScore := 0
	for _, cat := range Categories {
		if sc := scores[cat]; sc > bestScore {
			best = cat
			bestScore = sc
		}
	}
	return best
}

// KnownCategory reports whether name is one of the fixed categories.
func KnownCategory(name string) bool {
	for _, cat := range Categories {
		if cat == name {
			return true
		}
	}
	return false
}
