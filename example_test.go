package goGate_test

import (
	"fmt"
	"net/http"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/middleware"
)

// ExampleNew demonstrates engine construction with the default route table.
func ExampleNew() {
	cfg := goGate.DefaultConfig()
	cfg.Session.BaseURL = "https://api.agrinews.example"

	engine, err := goGate.New().WithConfig(cfg).Build()
	if err != nil {
		panic(err)
	}
	defer engine.Close()

	site := http.NewServeMux()
	_ = middleware.Guard(engine)(site)
}

// ExampleDecide shows the pure decision table.
func ExampleDecide() {
	table := goGate.DefaultRoleTable()
	classifier := goGate.NewClassifier(goGate.DefaultConfig().Routes, table)
	company := &goGate.Session{ID: "42", Role: goGate.RoleCompany}

	for _, p := range []string{"/about", "/login", "/intranet/student/dashboard", "/intranet/company/offers"} {
		d := goGate.Decide(table, "/login", company, classifier.Classify(p), p)
		if d.Location == "" {
			fmt.Println(p, d.Kind)
			continue
		}
		fmt.Println(p, d.Kind, d.Location)
	}

	d := goGate.Decide(table, "/login", nil, classifier.Classify("/intranet/student/offers"), "/intranet/student/offers")
	fmt.Println(d.Kind, d.Callback)

	// Output:
	// /about allow
	// /login redirect_dashboard /intranet/company/dashboard
	// /intranet/student/dashboard redirect_dashboard /intranet/company/dashboard
	// /intranet/company/offers allow
	// redirect_login /intranet/student/offers
}
