// Package loading lê o conjunto de dados da primeira fonte disponível
package loading

import (
	"context"
	"encoding/hex"
	"io"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"

	"github.com/vfg2006/covid-insights/infrastructure/database/postgres"
	"github.com/vfg2006/covid-insights/infrastructure/integrator/owid"
	"github.com/vfg2006/covid-insights/infrastructure/repository"
	"github.com/vfg2006/covid-insights/internal/config"
	"github.com/vfg2006/covid-insights/internal/domain"
	"github.com/vfg2006/covid-insights/pkg/log"
)

type Loader interface {
	Load(ctx context.Context) (*domain.LoadResult, error)
}

// RepositoryOpener abre o repositório de registros para um DSN postgres
type RepositoryOpener func(ctx context.Context, dsn string) (repository.RecordRepository, io.Closer, error)

type Service struct {
	sources        []string
	delimiter      rune
	backupPath     string
	filters        repository.RecordFilters
	owid           owid.OWIDIntegrator
	openRepository RepositoryOpener
}

func NewService(cfg *config.Config, integrator owid.OWIDIntegrator, opener RepositoryOpener) *Service {
	delimiter := ','
	if runes := []rune(cfg.Source.Delimiter); len(runes) == 1 {
		delimiter = runes[0]
	}

	return &Service{
		sources:    cfg.Sources(),
		delimiter:  delimiter,
		backupPath: cfg.Source.BackupPath,
		filters: repository.RecordFilters{
			Countries: cfg.Cleaning.Countries,
			StartDate: cfg.Cleaning.StartDate,
			EndDate:   cfg.Cleaning.EndDate,
		},
		owid:           integrator,
		openRepository: opener,
	}
}

// NewPostgresOpener conecta no banco e monta o repositório de registros
func NewPostgresOpener(cfg config.Database) RepositoryOpener {
	return func(ctx context.Context, dsn string) (repository.RecordRepository, io.Closer, error) {
		conn, err := postgres.NewConnection(ctx, cfg, dsn)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRecordRepository(conn, cfg.Table), conn, nil
	}
}

// Load tenta cada fonte em ordem. Apenas falhas de leitura passam para a
// próxima fonte; conteúdo fora do esquema encerra o carregamento.
func (s *Service) Load(ctx context.Context) (*domain.LoadResult, error) {
	logger := log.ForContext(ctx)
	attempts := make([]Attempt, 0, len(s.sources))

	for _, source := range s.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := s.loadSource(ctx, source)
		if err == nil {
			logger.WithFields(log.Fields{
				"stage":  "loading",
				"source": source,
				"rows":   result.Dataset.Len(),
			}).Info("Dados carregados")
			return result, nil
		}

		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			parseErr.Source = source
			return nil, parseErr
		}

		logger.WithFields(log.Fields{
			"stage":  "loading",
			"source": source,
			"error":  err.Error(),
		}).Warn("Falha ao ler a fonte, tentando a próxima")
		attempts = append(attempts, Attempt{Source: source, Err: err})
	}

	return nil, &IOError{Err: ErrSourceUnavailable, Attempts: attempts}
}

func (s *Service) loadSource(ctx context.Context, source string) (*domain.LoadResult, error) {
	switch {
	case isRemote(source):
		return s.loadRemote(ctx, source)
	case isDatabase(source):
		return s.loadDatabase(ctx, source)
	default:
		return s.loadFile(source)
	}
}

func (s *Service) loadFile(path string) (*domain.LoadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Wrapf(err, "erro ao ler %s", path)
	}

	return s.fromBytes(path, data)
}

func (s *Service) loadRemote(ctx context.Context, url string) (*domain.LoadResult, error) {
	if s.owid == nil {
		return nil, errors.New("cliente http não configurado")
	}

	data, err := s.owid.FetchCSV(ctx, url)
	if err != nil {
		return nil, err
	}

	result, err := s.fromBytes(url, data)
	if err != nil {
		return nil, err
	}

	if err := s.owid.SaveBackup(data, s.backupPath); err != nil {
		log.ForContext(ctx).WithFields(log.Fields{
			"path":  s.backupPath,
			"error": err.Error(),
		}).Warn("Não foi possível salvar a cópia local")
	}

	return result, nil
}

func (s *Service) loadDatabase(ctx context.Context, dsn string) (*domain.LoadResult, error) {
	if s.openRepository == nil {
		return nil, errors.New("repositório não configurado")
	}

	repo, closer, err := s.openRepository(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao conectar no banco")
	}
	if closer != nil {
		defer closer.Close()
	}

	records, err := repo.ListRecords(ctx, s.filters)
	if err != nil {
		return nil, err
	}

	for i, r := range records {
		if r.Country == "" {
			return nil, newParseError(i+1, columnCountry, "", "país vazio")
		}
		for _, field := range domain.AllCountFields {
			if c := r.Count(field); c.Valid && c.Int64 < 0 {
				return nil, newParseError(i+1, string(field), "", errNegativeCount.Error())
			}
		}
	}

	raw, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(records)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao serializar registros")
	}

	return &domain.LoadResult{
		Dataset:     domain.NewDataset(records),
		Source:      redactDSN(dsn),
		Fingerprint: Fingerprint(raw),
	}, nil
}

func (s *Service) fromBytes(source string, data []byte) (*domain.LoadResult, error) {
	records, err := parseCSV(data, s.delimiter)
	if err != nil {
		return nil, err
	}

	return &domain.LoadResult{
		Dataset:     domain.NewDataset(records),
		Source:      source,
		Fingerprint: Fingerprint(data),
		RawBytes:    data,
	}, nil
}

// Fingerprint identifica o conteúdo carregado (blake2b-256 em hexadecimal)
func Fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func isDatabase(source string) bool {
	return strings.HasPrefix(source, "postgres://") || strings.HasPrefix(source, "postgresql://")
}

// redactDSN remove a senha do DSN antes de registrar a fonte
func redactDSN(dsn string) string {
	schemeEnd := strings.Index(dsn, "://")
	at := strings.LastIndex(dsn, "@")
	if schemeEnd < 0 || at < schemeEnd {
		return dsn
	}
	userInfo := dsn[schemeEnd+3 : at]
	if colon := strings.Index(userInfo, ":"); colon >= 0 {
		userInfo = userInfo[:colon] + ":***"
	}
	return dsn[:schemeEnd+3] + userInfo + dsn[at:]
}
