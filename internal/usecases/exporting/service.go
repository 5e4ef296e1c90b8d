// Package exporting grava as métricas em Parquet e o manifesto da execução
package exporting

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/vfg2006/covid-insights/internal/domain"
	"github.com/vfg2006/covid-insights/pkg/log"
)

const (
	MetricsFileName  = "metrics.parquet"
	ManifestFileName = "manifest.json"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Exporter interface {
	ExportMetrics(ctx context.Context, ms *domain.MetricSet) (*domain.Figure, error)
	WriteManifest(ctx context.Context, summary *domain.RunSummary) (*domain.Figure, error)
}

// metricRow é uma linha do arquivo Parquet (formato longo)
type metricRow struct {
	Country string  `parquet:"name=country, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Metric  string  `parquet:"name=metric, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Date    int32   `parquet:"name=date, type=INT32, convertedtype=DATE"`
	Value   float64 `parquet:"name=value, type=DOUBLE"`
	Defined bool    `parquet:"name=defined, type=BOOLEAN"`
}

type Service struct {
	dir string
}

func NewService(dir string) *Service {
	return &Service{dir: dir}
}

func (s *Service) ExportMetrics(ctx context.Context, ms *domain.MetricSet) (*domain.Figure, error) {
	content, rows, err := encodeMetrics(ms)
	if err != nil {
		return nil, err
	}

	figure, err := s.write(MetricsFileName, "application/vnd.apache.parquet", content)
	if err != nil {
		return nil, err
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"stage": "exporting",
		"path":  figure.Path,
		"rows":  rows,
	}).Info("Métricas exportadas")

	return figure, nil
}

func (s *Service) WriteManifest(ctx context.Context, summary *domain.RunSummary) (*domain.Figure, error) {
	content, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("erro ao serializar o manifesto: %w", err)
	}

	figure, err := s.write(ManifestFileName, "application/json", content)
	if err != nil {
		return nil, err
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"stage": "exporting",
		"path":  figure.Path,
	}).Info("Manifesto gravado")

	return figure, nil
}

func encodeMetrics(ms *domain.MetricSet) ([]byte, int64, error) {
	buf := &bytes.Buffer{}
	pfw := writerfile.NewWriterFile(buf)

	pw, err := writer.NewParquetWriter(pfw, new(metricRow), 4)
	if err != nil {
		return nil, 0, fmt.Errorf("erro ao criar o writer parquet: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	var rows int64
	for _, key := range ms.Keys() {
		series, _ := ms.Series(key.Country, key.Name)
		for _, p := range series {
			row := metricRow{
				Country: key.Country,
				Metric:  key.Name,
				Date:    epochDays(p.Date),
				Value:   p.Value,
				Defined: p.Defined,
			}
			if err := pw.Write(row); err != nil {
				_ = pw.WriteStop()
				_ = pfw.Close()
				return nil, rows, fmt.Errorf("erro ao gravar linha parquet: %w", err)
			}
			rows++
		}
	}

	if err := pw.WriteStop(); err != nil {
		_ = pfw.Close()
		return nil, rows, fmt.Errorf("erro ao finalizar parquet: %w", err)
	}
	_ = pfw.Close()

	return buf.Bytes(), rows, nil
}

// epochDays converte a data para dias desde 1970-01-01 (tipo DATE do Parquet).
// Divisão arredondada para baixo, para datas anteriores a 1970.
func epochDays(t time.Time) int32 {
	const secondsPerDay = int64(24 * time.Hour / time.Second)
	secs := t.UTC().Unix()
	days := secs / secondsPerDay
	if secs%secondsPerDay != 0 && secs < 0 {
		days--
	}
	return int32(days)
}

func (s *Service) write(name, contentType string, content []byte) (*domain.Figure, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, err
	}

	return &domain.Figure{
		Name:        name,
		Kind:        domain.FigureKindExport,
		Path:        path,
		ContentType: contentType,
		Bytes:       int64(len(content)),
	}, nil
}
