package handlers

import (
	"net/http"

	"nexttripanywhere.com/web/internal/calculator"
	mw "nexttripanywhere.com/web/internal/middleware"
	"nexttripanywhere.com/web/internal/nav"
)

// CalculatorView is the cruise price calculator form and its estimate.
type CalculatorView struct {
	Input    calculator.Input
	Estimate calculator.Estimate
	Cabins   []calculator.Cabin
	AddOns   []calculator.AddOn
	Lines    []calculator.Line
	LineName string
	Days     []int
	// QuoteURL carries the estimate into the booking form.
	QuoteURL string
}

// Tools lists the planning tools.
func (a *App) Tools(w http.ResponseWriter, r *http.Request) {
	meta := a.identity.Page(
		"Free Travel Planning Tools | "+a.identity.Name,
		"Free planning tools from Essex County travel agents, including a cruise price calculator for sailings from New Jersey.",
		"/tools",
		"cruise price calculator", "travel planning tools",
	)
	crumbs := nav.Trail(nav.Crumb{Href: "/tools", LabelKey: "nav.tools", Label: "Tools"})
	vm := a.page(r, meta, crumbs)
	a.renderPage(w, r, http.StatusOK, "tools", vm)
}

// CruiseCalculator prices a cruise from GET parameters. htmx requests get
// only the estimate fragment.
func (a *App) CruiseCalculator(w http.ResponseWriter, r *http.Request) {
	in := calculator.Parse(r.URL.Query())
	view := CalculatorView{
		Input:    in,
		Estimate: calculator.Calculate(in),
		Cabins:   calculator.Cabins,
		AddOns:   calculator.AddOns,
		Lines:    calculator.Lines,
		LineName: calculator.LineName(in.Line),
		QuoteURL: "/quote?trip_type=cruise&source=cruise-calculator",
	}
	for d := calculator.MinDays; d <= calculator.MaxDays; d++ {
		view.Days = append(view.Days, d)
	}

	meta := a.identity.Page(
		"Cruise Price Calculator | "+a.identity.Name,
		"Estimate your cruise cost from New Jersey by cabin, cruise line, length and add-ons, with the Essex County resident discount.",
		"/tools/cruise-price-calculator",
		"cruise price calculator", "cruise cost estimator", "how much does a cruise cost",
	)
	crumbs := nav.Trail(
		nav.Crumb{Href: "/tools", LabelKey: "nav.tools", Label: "Tools"},
		nav.Crumb{Href: "/tools/cruise-price-calculator", LabelKey: "calc.title", Label: "Cruise Price Calculator"},
	)
	vm := a.page(r, meta, crumbs,
		a.identity.Service("Cruise Price Calculator", meta.Description, "Cruise Price Estimate", "/tools/cruise-price-calculator"),
	)
	vm.Page = view
	if mw.IsHTMX(r.Context()) {
		a.renderTemplate(w, r, http.StatusOK, "calculator_result", vm)
		return
	}
	a.renderPage(w, r, http.StatusOK, "cruise_calculator", vm)
}
