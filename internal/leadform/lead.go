package leadform

import (
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Lead is a validated quick-form submission. Leads are relayed, never stored.
type Lead struct {
	Reference     string    `json:"reference"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	TripType      string    `json:"tripType"`
	DepartureDate string    `json:"departureDate,omitempty"`
	ReturnDate    string    `json:"returnDate,omitempty"`
	Budget        string    `json:"budget,omitempty"`
	Message       string    `json:"message,omitempty"`
	Source        string    `json:"source,omitempty"`
	SubmittedAt   time.Time `json:"timestamp"`
}

// Quick validates a quick lead form post and stamps it with a reference.
func Quick(values url.Values, now time.Time) (Lead, FieldErrors) {
	get := func(field string) string { return strings.TrimSpace(values.Get(field)) }
	lead := Lead{
		Name:          get(FieldName),
		Email:         get(FieldEmail),
		Phone:         get(FieldPhone),
		TripType:      get(FieldTripType),
		DepartureDate: get(FieldDeparture),
		ReturnDate:    get(FieldReturn),
		Budget:        get(FieldBudget),
		Message:       get(FieldMessage),
		Source:        get("source"),
		SubmittedAt:   now.UTC(),
	}

	errs := FieldErrors{}
	validateContact(errs, lead.Name, lead.Email, lead.Phone)
	validateOption(errs, FieldTripType, lead.TripType, TripTypes, true)
	validateDates(errs, lead.DepartureDate, lead.ReturnDate)
	validateOption(errs, FieldBudget, lead.Budget, Budgets, false)
	validateMessage(errs, lead.Message)
	for field, v := range map[string]string{
		FieldName:      lead.Name,
		FieldEmail:     lead.Email,
		FieldPhone:     lead.Phone,
		FieldTripType:  lead.TripType,
		FieldDeparture: lead.DepartureDate,
		FieldReturn:    lead.ReturnDate,
		FieldBudget:    lead.Budget,
	} {
		if !Fits(field, v) {
			errs[field] = tooLongKey(field)
		}
	}
	if len(errs) > 0 {
		return Lead{}, errs
	}
	if lead.Source == "" {
		lead.Source = DefaultSource
	}
	if len(lead.Source) > MaxSourceLength {
		lead.Source = lead.Source[:MaxSourceLength]
	}
	lead.Reference = NewReference(now)
	return lead, nil
}

// NewReference returns a sortable lead reference.
func NewReference(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
}
