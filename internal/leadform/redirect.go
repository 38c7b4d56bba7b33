package leadform

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultSource tags redirects that do not name the page they came from.
const DefaultSource = "website"

var fieldOrder = []string{
	FieldTripType, FieldDestination, FieldDeparture, FieldReturn,
	FieldAdults, FieldChildren, FieldBudget, FieldFlexibility,
	FieldName, FieldEmail, FieldPhone, FieldContactMethod, FieldMessage,
}

// RedirectURL builds the prefilled hosted form URL. fieldMap maps form fields to
// hosted-form parameters (entry.N for Google Forms); unmapped fields are left out.
func (f *Form) RedirectURL(hostedURL string, fieldMap map[string]string, source string) (string, error) {
	if !f.Complete() {
		return "", ErrIncomplete
	}
	return PrefillURL(hostedURL, fieldMap, f.Values, source)
}

// PrefillURL encodes values onto hostedURL without validating them.
func PrefillURL(hostedURL string, fieldMap map[string]string, values map[string]string, source string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(hostedURL))
	if err != nil || !u.IsAbs() {
		return "", fmt.Errorf("leadform: invalid hosted form url %q", hostedURL)
	}
	q := u.Query()
	prefilled := false
	for _, field := range fieldOrder {
		param := strings.TrimSpace(fieldMap[field])
		v := strings.TrimSpace(values[field])
		if param == "" || v == "" {
			continue
		}
		q.Set(param, v)
		prefilled = true
	}
	if prefilled && strings.Contains(u.Host, "google.com") {
		q.Set("usp", "pp_url")
	}
	source = strings.TrimSpace(source)
	if source == "" {
		source = DefaultSource
	}
	q.Set("utm_source", "nexttripanywhere")
	q.Set("utm_medium", "booking_form")
	q.Set("utm_campaign", source)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
