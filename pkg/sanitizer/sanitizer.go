package sanitizer

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// DefaultRegion is used for numbers written without a country code.
const DefaultRegion = "KE"

func trim(s string) string {
	return strings.TrimSpace(s)
}

func lower(s string) string {
	return strings.ToLower(s)
}

func dropControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// collapseSpaces turns every run of whitespace into a single space.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// collapseInlineSpaces collapses whitespace within each line but keeps line breaks.
func collapseInlineSpaces(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		out = append(out, collapseSpaces(line))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func TrimAndNormalize(s string) string {
	return Pipeline{trim, dropControl, collapseSpaces}.Apply(s)
}

func SanitizeName(name string) string {
	return TrimAndNormalize(name)
}

func SanitizeEmail(email string) string {
	return Pipeline{trim, lower}.Apply(email)
}

// SanitizeFreeText cleans multi-line text such as special requests.
func SanitizeFreeText(text string) string {
	return Pipeline{
		func(s string) string { return strings.ReplaceAll(s, "\r\n", "\n") },
		dropControl,
		collapseInlineSpaces,
	}.Apply(text)
}

func SanitizeAmenity(label string) string {
	return Pipeline{trim, dropControl, collapseSpaces, lower}.Apply(label)
}

func SanitizeAmenities(labels []string) []string {
	return SanitizeSlice(labels, SanitizeAmenity)
}

// SanitizePhone formats a parseable number as E.164. Anything else is
// returned trimmed so that validation can reject it.
func SanitizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	parsed, err := phonenumbers.Parse(phone, DefaultRegion)
	if err != nil || !phonenumbers.IsPossibleNumber(parsed) {
		return phone
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

func SanitizeSlice(values []string, strategy Strategy) []string {
	seen := make(map[string]struct{})
	out := []string{}

	for _, v := range values {
		s := strategy(v)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}

// SanitizeURL lowercases scheme and host and strips utm_* parameters.
// Path case is preserved since object storage keys are case sensitive.
func SanitizeURL(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return s
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	q := u.Query()
	for k := range q {
		if strings.HasPrefix(strings.ToLower(k), "utm_") {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()

	return u.String()
}
