package mocks

import "github.com/vfg2006/covid-insights/infrastructure/repository"

var _ repository.RecordRepository = (*MockRecordRepository)(nil)
