package mocks

import "github.com/vfg2006/covid-insights/infrastructure/integrator/owid"

var _ owid.OWIDIntegrator = (*MockOWIDIntegrator)(nil)
