package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"nexttripanywhere.com/web/internal/catalog"
	"nexttripanywhere.com/web/internal/leadform"
	"nexttripanywhere.com/web/internal/metrics"
	mw "nexttripanywhere.com/web/internal/middleware"
	"nexttripanywhere.com/web/internal/nav"
	"nexttripanywhere.com/web/internal/observability"
)

// Form actions posted by the step buttons.
const (
	actionNext   = "next"
	actionBack   = "back"
	actionSubmit = "submit"
)

// QuoteView drives the booking form partial.
type QuoteView struct {
	Form           *leadform.Form
	Step           leadform.Step
	Steps          []leadform.Step
	Errors         leadform.FieldErrors
	TripTypes      []leadform.Option
	Budgets        []leadform.Option
	Flexibility    []leadform.Option
	ContactMethods []leadform.Option
	Source         string
}

func newQuoteView(f *leadform.Form, source string, errs leadform.FieldErrors) QuoteView {
	return QuoteView{
		Form:           f,
		Step:           f.Current(),
		Steps:          leadform.Steps,
		Errors:         errs,
		TripTypes:      leadform.TripTypes,
		Budgets:        leadform.Budgets,
		Flexibility:    leadform.Flexibility,
		ContactMethods: leadform.ContactMethods,
		Source:         source,
	}
}

// Quote renders the current booking form step. ?source= tags the redirect,
// step-one fields may be prefilled from the query and ?step= jumps to a step
// no later than the first invalid one.
func (a *App) Quote(w http.ResponseWriter, r *http.Request) {
	sess := mw.GetSession(r)
	f := sess.QuoteForm()
	q := r.URL.Query()

	if src := sourceSlug(q.Get("source")); src != "" && src != sess.Source {
		sess.Source = src
		sess.MarkDirty()
	}
	for _, field := range leadform.Steps[0].Fields {
		if f.Prefill(field, q.Get(field)) {
			sess.MarkDirty()
		}
	}
	if raw := q.Get("step"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			_ = f.Goto(n)
			sess.MarkDirty()
		}
	}
	a.renderQuote(w, r, http.StatusOK, f, nil)
}

// QuoteStep handles the next, back and submit buttons.
func (a *App) QuoteStep(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	sess := mw.GetSession(r)
	f := sess.QuoteForm()
	step := f.Current().Number
	errs := f.Apply(step, r.PostForm)
	sess.MarkDirty()

	switch r.PostFormValue("action") {
	case actionBack:
		f.Back()
		a.renderQuote(w, r, http.StatusOK, f, nil)
		return
	case actionSubmit:
		if len(errs) > 0 {
			a.renderQuote(w, r, http.StatusUnprocessableEntity, f, errs)
			return
		}
		if !f.Complete() {
			_ = f.Goto(leadform.StepContact)
			a.renderQuote(w, r, http.StatusUnprocessableEntity, f, leadform.ValidateStep(f.Step, f.Values))
			return
		}
		a.redirectToBooking(w, r, sess)
		return
	default:
		if len(errs) > 0 {
			a.renderQuote(w, r, http.StatusUnprocessableEntity, f, errs)
			return
		}
		_ = f.Next()
		a.renderQuote(w, r, http.StatusOK, f, nil)
	}
}

// QuoteRedirect sends a completed form to the hosted booking form.
func (a *App) QuoteRedirect(w http.ResponseWriter, r *http.Request) {
	sess := mw.GetSession(r)
	if sess.Quote == nil || !sess.Quote.Complete() {
		http.Redirect(w, r, "/quote", http.StatusSeeOther)
		return
	}
	a.redirectToBooking(w, r, sess)
}

func (a *App) redirectToBooking(w http.ResponseWriter, r *http.Request, sess *mw.SessionData) {
	target, err := sess.Quote.RedirectURL(a.cfg.Booking.FormURL, a.cfg.Booking.Fields, sess.Source)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	observability.FromContext(r.Context()).Info("booking redirect",
		zap.String("trip_type", sess.Quote.Value(leadform.FieldTripType)),
		zap.String("source", sess.Source),
	)
	metrics.LeadsSubmitted.WithLabelValues("booking", "redirected").Inc()
	metrics.BookingRedirects.Inc()
	sess.ClearQuote()

	if mw.IsHTMX(r.Context()) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func sourceSlug(raw string) string {
	src := catalog.Slugify(raw)
	if len(src) > leadform.MaxSourceLength {
		src = strings.TrimRight(src[:leadform.MaxSourceLength], "-")
	}
	return src
}

func (a *App) renderQuote(w http.ResponseWriter, r *http.Request, status int, f *leadform.Form, errs leadform.FieldErrors) {
	sess := mw.GetSession(r)
	meta := a.identity.Page(
		"Get a Free Travel Quote | "+a.identity.Name,
		"Tell us about your trip in three quick steps and an Essex County travel agent will build your personalized quote.",
		"/quote",
		"travel quote", "vacation quote nj", "cruise quote",
	)
	vm := a.page(r, meta, nav.Trail(nav.Crumb{Href: "/quote", LabelKey: "nav.quote", Label: "Get a Quote"}))
	vm.CSRFToken = mw.CSRFToken(r)
	vm.Page = newQuoteView(f, sess.Source, errs)
	if mw.IsHTMX(r.Context()) {
		a.renderTemplate(w, r, status, "quote_form", vm)
		return
	}
	a.renderPage(w, r, status, "quote", vm)
}
