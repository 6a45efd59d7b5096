// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sohamch/Onsager/crystal"
	"github.com/sohamch/Onsager/jumpnet"
	"github.com/sohamch/Onsager/transport"
)

// CurrentVersion is the document version written by Encode.
const CurrentVersion = 1

// Diffuser kinds.
const (
	KindVacancy      = "vacancy"
	KindInterstitial = "interstitial"
)

// Vacancy rate modes.
const (
	// ModeExplicit takes every prefactor and energy from the document.
	ModeExplicit = "explicit"
	// ModeTracer takes only the bare transition states (preT0, eneT0).
	ModeTracer = "tracer"
	// ModeLIMB fills the omega1 and omega2 transition states by linear
	// interpolation of the migration barrier.
	ModeLIMB = "limb"
)

// Document is one calculation.
type Document struct {
	Version  int           `yaml:"version" validate:"eq=1"`
	Crystal  Crystal       `yaml:"crystal"`
	Diffuser Diffuser      `yaml:"diffuser"`
	Vacancy  *VacancyRates `yaml:"vacancy,omitempty"`
	Sites    *SiteRates    `yaml:"sites,omitempty"`
}

// Crystal names a stock crystal or spells one out; exactly one is set.
type Crystal struct {
	Stock string        `yaml:"stock,omitempty" validate:"required_without=Spec,excluded_with=Spec,omitempty,oneof=sc bcc fcc hcp square triangular honeycomb"`
	Spec  *crystal.Spec `yaml:"spec,omitempty" validate:"required_without=Stock,omitempty"`
}

// Diffuser selects the defect network.
type Diffuser struct {
	Kind    string  `yaml:"kind" validate:"required,oneof=vacancy interstitial"`
	Chem    int     `yaml:"chem" validate:"gte=0"`
	Cutoff  float64 `yaml:"cutoff" validate:"gt=0,finite"`
	NThermo int     `yaml:"nthermo" validate:"gte=0,lte=6"`
	// Select keeps only the listed jump classes (in generation order).
	Select        []int   `yaml:"select,omitempty" validate:"omitempty,unique,dive,gte=0"`
	HostRadius    float64 `yaml:"host_radius,omitempty" validate:"gte=0,finite"`
	PartnerRadius float64 `yaml:"partner_radius,omitempty" validate:"gte=0,finite"`
}

// VacancyRates is the rate input of a vacancy-mediated calculation.
type VacancyRates struct {
	KT     float64          `yaml:"kT" validate:"gt=0,finite"`
	Mode   string           `yaml:"mode" validate:"required,oneof=explicit tracer limb"`
	PreEne transport.PreEne `yaml:"preene"`
}

// SiteRates is the rate input of an interstitial calculation, one entry
// per Wyckoff set (Pre, Ene, Dipole) and per jump class (PreT, EneT,
// DipoleT). The elastic dipoles are optional; when present both lists
// are given, in energy units.
type SiteRates struct {
	KT      float64        `yaml:"kT" validate:"gt=0,finite"`
	Pre     []float64      `yaml:"pre" validate:"required,dive,gt=0,finite"`
	Ene     []float64      `yaml:"ene" validate:"required,dive,finite"`
	PreT    []float64      `yaml:"preT" validate:"required,dive,gt=0,finite"`
	EneT    []float64      `yaml:"eneT" validate:"required,dive,finite"`
	Dipole  []crystal.Mat3 `yaml:"dipole,omitempty" validate:"required_with=DipoleT,omitempty,dive,dive,dive,finite"`
	DipoleT []crystal.Mat3 `yaml:"dipoleT,omitempty" validate:"required_with=Dipole,omitempty,dive,dive,dive,finite"`
}

// Decode reads and validates a document. Unknown keys are errors.
//
// Errors: ErrInvalid.
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var d Document
	if err := dec.Decode(&d); err != nil {
		return nil, configErrorf(opDecode, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	if err := d.Validate(); err != nil {
		return nil, configErrorf(opDecode, err)
	}

	return &d, nil
}

// Load decodes the document at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, configErrorf(opLoad, err)
	}
	defer f.Close()

	return Decode(f)
}

// Encode writes d as YAML with two-space indentation.
func (d *Document) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return configErrorf(opEncode, err)
	}
	if err := enc.Close(); err != nil {
		return configErrorf(opEncode, err)
	}

	return nil
}

// Validate checks d against its struct tags and cross-field rules.
//
// Errors: ErrInvalid wrapping the validator errors.
func (d *Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return nil
}

// Hash returns the hex SHA-256 of the canonical YAML of the crystal and
// diffuser. Rates do not enter the hash.
func (d *Document) Hash() (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	if err := enc.Encode(struct {
		Version  int      `yaml:"version"`
		Crystal  Crystal  `yaml:"crystal"`
		Diffuser Diffuser `yaml:"diffuser"`
	}{d.Version, d.Crystal, d.Diffuser}); err != nil {
		return "", configErrorf(opHash, err)
	}
	if err := enc.Close(); err != nil {
		return "", configErrorf(opHash, err)
	}
	sum := sha256.Sum256(buf.Bytes())

	return hex.EncodeToString(sum[:]), nil
}

// Build returns the crystal.
func (c Crystal) Build() (*crystal.Crystal, error) {
	if c.Stock != "" {
		crys, ok := crystal.Stock(c.Stock)
		if !ok {
			return nil, fmt.Errorf("%w: unknown stock crystal %q", ErrInvalid, c.Stock)
		}

		return crys, nil
	}
	if c.Spec == nil {
		return nil, fmt.Errorf("%w: no crystal", ErrInvalid)
	}

	return crystal.FromSpec(*c.Spec)
}

// FromCrystal returns the explicit form of crys.
func FromCrystal(crys *crystal.Crystal) Crystal {
	s := crys.Spec()

	return Crystal{Spec: &s}
}

// Network builds the crystal and the defect site network of the diffuser,
// restricted to Select when it is set.
func (d *Document) Network(log *slog.Logger) (*jumpnet.Network, error) {
	crys, err := d.Crystal.Build()
	if err != nil {
		return nil, configErrorf(opNetwork, err)
	}
	df := d.Diffuser
	if df.Chem >= crys.NumChem() {
		return nil, configErrorf(opNetwork, fmt.Errorf("%w: chemistry %d of %d", ErrInvalid, df.Chem, crys.NumChem()))
	}
	net, err := jumpnet.Sites(crys, df.Chem, df.Cutoff,
		jumpnet.WithCollision(df.HostRadius, df.PartnerRadius), jumpnet.WithLogger(log))
	if err != nil {
		return nil, configErrorf(opNetwork, err)
	}
	if len(df.Select) > 0 {
		if net, err = net.Regenerate(df.Select); err != nil {
			return nil, configErrorf(opNetwork, err)
		}
	}

	return net, nil
}

// BetaFree returns the scaled free energies of the vacancy rates for vm.
//
// Errors: ErrNoRates, and the errors of the transport free-energy helpers.
func (v *VacancyRates) BetaFree(vm *transport.VacancyMediated) (transport.BetaFree, error) {
	if v == nil {
		return transport.BetaFree{}, configErrorf(opRates, ErrNoRates)
	}
	pe := v.PreEne
	var err error
	switch v.Mode {
	case ModeTracer:
		pe, err = vm.MakeTracerPreEne(pe.PreT0, pe.EneT0)
	case ModeLIMB:
		pe, err = vm.MakeLIMBPreEne(pe)
	}
	if err != nil {
		return transport.BetaFree{}, configErrorf(opRates, err)
	}
	bf, err := transport.PreEne2BetaFree(v.KT, pe)
	if err != nil {
		return transport.BetaFree{}, configErrorf(opRates, err)
	}

	return bf, nil
}

// Scaled returns the site and transition-state prefactors with energies
// divided by kT, in the argument order of transport.Interstitial.
func (s *SiteRates) Scaled() (pre, betaene, preT, betaeneT []float64, err error) {
	if s == nil {
		return nil, nil, nil, nil, configErrorf(opRates, ErrNoRates)
	}
	scale := func(xs []float64) []float64 {
		out := make([]float64, len(xs))
		for i, x := range xs {
			out[i] = x / s.KT
		}

		return out
	}

	return s.Pre, scale(s.Ene), s.PreT, scale(s.EneT), nil
}

// HasDipoles reports whether s carries elastic dipoles.
func (s *SiteRates) HasDipoles() bool {
	return s != nil && len(s.Dipole) > 0
}

// ScaledDipoles returns the site and transition-state elastic dipoles
// divided by kT, in the argument order of Interstitial.ElastoDiffusion.
//
// Errors: ErrNoRates when s is nil or carries no dipoles.
func (s *SiteRates) ScaledDipoles() (dipole, dipoleT []crystal.Mat3, err error) {
	if !s.HasDipoles() {
		return nil, nil, configErrorf(opRates, ErrNoRates)
	}
	scale := func(ps []crystal.Mat3) []crystal.Mat3 {
		out := make([]crystal.Mat3, len(ps))
		for i, p := range ps {
			out[i] = p.ScaleM(1 / s.KT)
		}

		return out
	}

	return scale(s.Dipole), scale(s.DipoleT), nil
}
