// SPDX-License-Identifier: MIT

package config

import (
	"math"

	"github.com/go-playground/validator/v10"
)

// validate is shared by every document; a *validator.Validate caches
// struct metadata and is safe for concurrent use.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("finite", validateFinite)
	validate.RegisterStructValidation(documentRules, Document{})
}

// validateFinite rejects NaN and infinite floats.
func validateFinite(fl validator.FieldLevel) bool {
	f := fl.Field().Float()

	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// documentRules ties the rate block to the diffuser kind and the rate
// lists to their pairing.
func documentRules(sl validator.StructLevel) {
	d := sl.Current().Interface().(Document)
	switch d.Diffuser.Kind {
	case KindVacancy:
		if d.Sites != nil {
			sl.ReportError(d.Sites, "Sites", "sites", "excluded_for_vacancy", "")
		}
	case KindInterstitial:
		if d.Vacancy != nil {
			sl.ReportError(d.Vacancy, "Vacancy", "vacancy", "excluded_for_interstitial", "")
		}
		if d.Diffuser.NThermo != 0 {
			sl.ReportError(d.Diffuser.NThermo, "NThermo", "nthermo", "eq0_for_interstitial", "")
		}
	}
	if s := d.Sites; s != nil {
		if len(s.Pre) != len(s.Ene) {
			sl.ReportError(s.Ene, "Ene", "ene", "len_pre", "")
		}
		if len(s.PreT) != len(s.EneT) {
			sl.ReportError(s.EneT, "EneT", "eneT", "len_preT", "")
		}
		if len(s.Dipole) > 0 && len(s.Dipole) != len(s.Pre) {
			sl.ReportError(s.Dipole, "Dipole", "dipole", "len_pre", "")
		}
		if len(s.DipoleT) > 0 && len(s.DipoleT) != len(s.PreT) {
			sl.ReportError(s.DipoleT, "DipoleT", "dipoleT", "len_preT", "")
		}
	}
	if v := d.Vacancy; v != nil && v.Mode == ModeTracer {
		if len(v.PreEne.PreT0) == 0 || len(v.PreEne.PreT0) != len(v.PreEne.EneT0) {
			sl.ReportError(v.PreEne.EneT0, "EneT0", "eneT0", "tracer_bare", "")
		}
	}
}
