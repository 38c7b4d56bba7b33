package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"nexttripanywhere.com/web/internal/catalog"
	"nexttripanywhere.com/web/internal/leadform"
	"nexttripanywhere.com/web/internal/metrics"
	mw "nexttripanywhere.com/web/internal/middleware"
	"nexttripanywhere.com/web/internal/nav"
	"nexttripanywhere.com/web/internal/observability"
)

// ContactView drives the quick lead form.
type ContactView struct {
	Values      map[string]string
	Errors      leadform.FieldErrors
	TripTypes   []leadform.Option
	Budgets     []leadform.Option
	Source      string
	Reference   string
	RelayFailed bool
}

// Contact renders the contact page with the quick lead form.
func (a *App) Contact(w http.ResponseWriter, r *http.Request) {
	sess := mw.GetSession(r)
	view := a.contactView(r, nil, nil)
	if r.URL.Query().Get("sent") == "1" {
		view.Reference = sess.LastLead
	}
	a.renderContact(w, r, http.StatusOK, view)
}

// SubmitLead validates the quick form and relays the lead. Nothing is stored
// beyond the reference kept in the session for the thank-you message.
func (a *App) SubmitLead(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	lead, errs := leadform.Quick(r.PostForm, a.now())
	if len(errs) > 0 {
		metrics.LeadsSubmitted.WithLabelValues("quick", "invalid").Inc()
		a.renderContact(w, r, http.StatusUnprocessableEntity, a.contactView(r, r.PostForm, errs))
		return
	}

	logger := observability.FromContext(r.Context())
	if err := a.notifier.Notify(r.Context(), lead); err != nil {
		logger.Error("lead relay failed",
			zap.String("reference", lead.Reference),
			zap.String("relay", a.notifier.Name()),
			zap.Error(err),
		)
		metrics.LeadRelayFailures.WithLabelValues(a.notifier.Name()).Inc()
		metrics.LeadsSubmitted.WithLabelValues("quick", "relay_failed").Inc()
		view := a.contactView(r, r.PostForm, nil)
		view.RelayFailed = true
		a.renderContact(w, r, http.StatusBadGateway, view)
		return
	}
	metrics.LeadsSubmitted.WithLabelValues("quick", "ok").Inc()
	logger.Info("lead relayed", zap.String("reference", lead.Reference), zap.String("source", lead.Source))

	sess := mw.GetSession(r)
	sess.LastLead = lead.Reference
	sess.MarkDirty()

	if mw.IsHTMX(r.Context()) {
		view := a.contactView(r, nil, nil)
		view.Reference = lead.Reference
		a.renderContact(w, r, http.StatusOK, view)
		return
	}
	http.Redirect(w, r, "/contact?sent=1", http.StatusSeeOther)
}

func (a *App) contactView(r *http.Request, values map[string][]string, errs leadform.FieldErrors) ContactView {
	source := catalog.Slugify(r.URL.Query().Get("source"))
	if source == "" {
		source = mw.GetSession(r).Source
	}
	flat := map[string]string{}
	for k, v := range values {
		if len(v) > 0 && k != mw.CSRFFormField {
			flat[k] = v[0]
		}
	}
	if s := flat["source"]; s != "" {
		source = s
	}
	return ContactView{
		Values:    flat,
		Errors:    errs,
		TripTypes: leadform.TripTypes,
		Budgets:   leadform.Budgets,
		Source:    source,
	}
}

func (a *App) renderContact(w http.ResponseWriter, r *http.Request, status int, view ContactView) {
	meta := a.identity.Page(
		"Contact Our Essex County Travel Agents | "+a.identity.Name,
		"Call, email or send a quick message to Next Trip Anywhere. Local travel agents serving Belleville, Nutley, Bloomfield and all of Essex County, NJ.",
		"/contact",
		"contact travel agent", "essex county travel agency phone",
	)
	vm := a.page(r, meta, nav.Trail(nav.Crumb{Href: "/contact", LabelKey: "nav.contact", Label: "Contact"}),
		a.identity.LocalBusiness(nil))
	vm.CSRFToken = mw.CSRFToken(r)
	vm.Page = view
	if mw.IsHTMX(r.Context()) {
		a.renderTemplate(w, r, status, "lead_form", vm)
		return
	}
	a.renderPage(w, r, status, "contact", vm)
}
