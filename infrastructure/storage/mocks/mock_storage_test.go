package mocks

import "github.com/vfg2006/covid-insights/infrastructure/storage"

var _ storage.ObjectStore = (*MockObjectStore)(nil)
