package leadform

import (
	"encoding/json"
	"errors"
	"net/mail"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Field names shared by the booking form, the quick form and the hosted form mapping.
const (
	FieldTripType      = "trip_type"
	FieldDestination   = "destination"
	FieldDeparture     = "departure_date"
	FieldReturn        = "return_date"
	FieldAdults        = "adults"
	FieldChildren      = "children"
	FieldBudget        = "budget"
	FieldFlexibility   = "flexibility"
	FieldName          = "name"
	FieldEmail         = "email"
	FieldPhone         = "phone"
	FieldContactMethod = "contact_method"
	FieldMessage       = "message"
)

const (
	StepTrip      = 1
	StepTravelers = 2
	StepContact   = 3

	dateLayout       = "2006-01-02"
	maxMessageLength = 1000
	maxTravelers     = 20

	// defaultFieldLimit bounds dates, counts and select values.
	defaultFieldLimit = 32
	// MaxSourceLength bounds the campaign slug kept with a form or lead.
	MaxSourceLength = 64
)

// fieldLimits caps each stored value in JSON-encoded bytes. The booking form
// lives in the session cookie, which browsers drop past 4096 bytes.
var fieldLimits = map[string]int{
	FieldDestination: 200,
	FieldName:        100,
	FieldEmail:       254,
	FieldPhone:       40,
	FieldMessage:     maxMessageLength,
}

// MaxStored returns the largest encoded size accepted for field.
func MaxStored(field string) int {
	if n, ok := fieldLimits[field]; ok {
		return n
	}
	return defaultFieldLimit
}

// Fits reports whether value may be stored for field.
func Fits(field, value string) bool {
	return storedLen(value) <= MaxStored(field)
}

func storedLen(value string) int {
	b, err := json.Marshal(value)
	if err != nil {
		return len(value)
	}
	return len(b) - 2
}

func tooLongKey(field string) string {
	if field == FieldMessage {
		return "form.error.message_length"
	}
	return "form.error.too_long"
}

var (
	// ErrStepLocked is returned when moving past a step whose fields do not validate.
	ErrStepLocked = errors.New("leadform: earlier step is incomplete")
	// ErrIncomplete is returned when redirecting a form with invalid steps.
	ErrIncomplete = errors.New("leadform: form is incomplete")
)

// Option is a select choice rendered by the form templates.
type Option struct {
	Value    string
	LabelKey string
}

var TripTypes = []Option{
	{Value: "flight", LabelKey: "form.trip_type.flight"},
	{Value: "cruise", LabelKey: "form.trip_type.cruise"},
	{Value: "package", LabelKey: "form.trip_type.package"},
	{Value: "hotel", LabelKey: "form.trip_type.hotel"},
	{Value: "allinclusive", LabelKey: "form.trip_type.allinclusive"},
	{Value: "custom", LabelKey: "form.trip_type.custom"},
}

var Budgets = []Option{
	{Value: "under-1000", LabelKey: "form.budget.under_1000"},
	{Value: "1000-2500", LabelKey: "form.budget.1000_2500"},
	{Value: "2500-5000", LabelKey: "form.budget.2500_5000"},
	{Value: "5000-10000", LabelKey: "form.budget.5000_10000"},
	{Value: "over-10000", LabelKey: "form.budget.over_10000"},
}

var Flexibility = []Option{
	{Value: "exact", LabelKey: "form.flexibility.exact"},
	{Value: "few-days", LabelKey: "form.flexibility.few_days"},
	{Value: "flexible", LabelKey: "form.flexibility.flexible"},
}

var ContactMethods = []Option{
	{Value: "email", LabelKey: "form.contact_method.email"},
	{Value: "phone", LabelKey: "form.contact_method.phone"},
	{Value: "text", LabelKey: "form.contact_method.text"},
}

// Step describes one page of the booking form.
type Step struct {
	Number   int
	Name     string
	TitleKey string
	Fields   []string
}

var Steps = []Step{
	{Number: StepTrip, Name: "trip", TitleKey: "form.step.trip", Fields: []string{FieldTripType, FieldDestination, FieldDeparture, FieldReturn}},
	{Number: StepTravelers, Name: "travelers", TitleKey: "form.step.travelers", Fields: []string{FieldAdults, FieldChildren, FieldBudget, FieldFlexibility}},
	{Number: StepContact, Name: "contact", TitleKey: "form.step.contact", Fields: []string{FieldName, FieldEmail, FieldPhone, FieldContactMethod, FieldMessage}},
}

// FieldErrors maps a field name to an i18n message key.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "leadform: invalid fields: " + strings.Join(fields, ", ")
}

// Has reports whether field failed validation.
func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Form is the booking form state kept in the session between steps.
type Form struct {
	Step   int               `json:"step"`
	Values map[string]string `json:"values,omitempty"`
}

// New returns a form positioned at the first step.
func New() *Form {
	return &Form{Step: StepTrip, Values: map[string]string{}}
}

// Current returns the definition of the active step.
func (f *Form) Current() Step {
	return Steps[clampStep(f.Step)-1]
}

// Value returns the stored value of field.
func (f *Form) Value(field string) string {
	if f == nil || f.Values == nil {
		return ""
	}
	return f.Values[field]
}

// Apply stores the step's fields from values and validates them.
// Values for other steps are ignored and oversized values are never stored.
func (f *Form) Apply(step int, values url.Values) FieldErrors {
	if step < StepTrip || step > StepContact {
		return FieldErrors{"step": "form.error.step"}
	}
	if f.Values == nil {
		f.Values = map[string]string{}
	}
	rejected := FieldErrors{}
	for _, field := range Steps[step-1].Fields {
		v := strings.TrimSpace(values.Get(field))
		switch {
		case v == "":
			delete(f.Values, field)
		case !Fits(field, v):
			delete(f.Values, field)
			rejected[field] = tooLongKey(field)
		default:
			f.Values[field] = v
		}
	}
	errs := ValidateStep(step, f.Values)
	if len(rejected) == 0 {
		return errs
	}
	if errs == nil {
		errs = FieldErrors{}
	}
	for field, key := range rejected {
		errs[field] = key
	}
	return errs
}

// Prefill stores field when it belongs to the first step and fits.
// It reports whether the form changed.
func (f *Form) Prefill(field, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" || !Fits(field, value) || !stepHas(StepTrip, field) {
		return false
	}
	if f.Values == nil {
		f.Values = map[string]string{}
	}
	if f.Values[field] == value {
		return false
	}
	f.Values[field] = value
	return true
}

func stepHas(step int, field string) bool {
	for _, name := range Steps[step-1].Fields {
		if name == field {
			return true
		}
	}
	return false
}

// Next advances when the current step validates.
func (f *Form) Next() error {
	f.Step = clampStep(f.Step)
	if errs := ValidateStep(f.Step, f.Values); len(errs) > 0 {
		return errs
	}
	if f.Step < StepContact {
		f.Step++
	}
	return nil
}

// Back moves to the previous step. It never fails.
func (f *Form) Back() {
	f.Step = clampStep(f.Step)
	if f.Step > StepTrip {
		f.Step--
	}
}

// Goto jumps to step unless an earlier step is invalid, in which case the form
// lands on the first invalid step and ErrStepLocked is returned.
func (f *Form) Goto(step int) error {
	step = clampStep(step)
	for s := StepTrip; s < step; s++ {
		if len(ValidateStep(s, f.Values)) > 0 {
			f.Step = s
			return ErrStepLocked
		}
	}
	f.Step = step
	return nil
}

// Complete reports whether every step validates.
func (f *Form) Complete() bool {
	for _, s := range Steps {
		if len(ValidateStep(s.Number, f.Values)) > 0 {
			return false
		}
	}
	return true
}

// Progress returns the active step as a percentage for the progress bar.
func (f *Form) Progress() int {
	return clampStep(f.Step) * 100 / len(Steps)
}

// Reset clears all values and returns to the first step.
func (f *Form) Reset() {
	f.Step = StepTrip
	f.Values = map[string]string{}
}

func clampStep(step int) int {
	switch {
	case step < StepTrip:
		return StepTrip
	case step > StepContact:
		return StepContact
	default:
		return step
	}
}

// ValidateStep checks the fields belonging to step.
func ValidateStep(step int, values map[string]string) FieldErrors {
	errs := FieldErrors{}
	get := func(field string) string { return strings.TrimSpace(values[field]) }

	switch step {
	case StepTrip:
		validateOption(errs, FieldTripType, get(FieldTripType), TripTypes, true)
		validateDates(errs, get(FieldDeparture), get(FieldReturn))
	case StepTravelers:
		adults := get(FieldAdults)
		if adults == "" {
			errs[FieldAdults] = "form.error.required"
		} else if n, err := strconv.Atoi(adults); err != nil || n < 1 || n > maxTravelers {
			errs[FieldAdults] = "form.error.adults"
		}
		if children := get(FieldChildren); children != "" {
			if n, err := strconv.Atoi(children); err != nil || n < 0 || n > maxTravelers {
				errs[FieldChildren] = "form.error.children"
			}
		}
		validateOption(errs, FieldBudget, get(FieldBudget), Budgets, false)
		validateOption(errs, FieldFlexibility, get(FieldFlexibility), Flexibility, false)
	case StepContact:
		validateContact(errs, get(FieldName), get(FieldEmail), get(FieldPhone))
		validateOption(errs, FieldContactMethod, get(FieldContactMethod), ContactMethods, false)
		validateMessage(errs, get(FieldMessage))
	default:
		errs["step"] = "form.error.step"
		return errs
	}
	for _, field := range Steps[step-1].Fields {
		if v := get(field); v != "" && !Fits(field, v) {
			errs[field] = tooLongKey(field)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateOption(errs FieldErrors, field, value string, options []Option, required bool) {
	if value == "" {
		if required {
			errs[field] = "form.error.required"
		}
		return
	}
	for _, o := range options {
		if o.Value == value {
			return
		}
	}
	errs[field] = "form.error.option"
}

func validateDates(errs FieldErrors, departure, ret string) {
	var dep, back time.Time
	var err error
	if departure != "" {
		if dep, err = time.Parse(dateLayout, departure); err != nil {
			errs[FieldDeparture] = "form.error.date"
		}
	}
	if ret != "" {
		if back, err = time.Parse(dateLayout, ret); err != nil {
			errs[FieldReturn] = "form.error.date"
		}
	}
	if !dep.IsZero() && !back.IsZero() && back.Before(dep) {
		errs[FieldReturn] = "form.error.return_before_departure"
	}
}

func validateContact(errs FieldErrors, name, email, phone string) {
	if name == "" {
		errs[FieldName] = "form.error.required"
	} else if utf8.RuneCountInString(name) < 2 {
		errs[FieldName] = "form.error.name"
	}
	if email == "" {
		errs[FieldEmail] = "form.error.required"
	} else if !ValidEmail(email) {
		errs[FieldEmail] = "form.error.email"
	}
	if phone == "" {
		errs[FieldPhone] = "form.error.required"
	} else if len(digits(phone)) < 10 {
		errs[FieldPhone] = "form.error.phone"
	}
}

func validateMessage(errs FieldErrors, message string) {
	if utf8.RuneCountInString(message) > maxMessageLength || !Fits(FieldMessage, message) {
		errs[FieldMessage] = "form.error.message_length"
	}
}

// ValidEmail accepts a bare address with a dotted domain.
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	if at < 1 {
		return false
	}
	domain := email[at+1:]
	dot := strings.LastIndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
