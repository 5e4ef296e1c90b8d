package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"github.com/vfg2006/covid-insights/internal/config"
	"github.com/vfg2006/covid-insights/internal/domain"
	"github.com/vfg2006/covid-insights/internal/usecases/loading"
)

const batchSize = 500

func setupLogger() {
	// Configura o logger para incluir data, hora e arquivo
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Iniciando script de migração...")
}

func createTableStatement(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	country          TEXT    NOT NULL,
	iso_code         TEXT    NOT NULL DEFAULT '',
	continent        TEXT    NOT NULL DEFAULT '',
	date             DATE    NOT NULL,
	confirmed_cases  BIGINT,
	new_cases        BIGINT,
	deaths           BIGINT,
	vaccinated       BIGINT,
	fully_vaccinated BIGINT,
	population       BIGINT,
	PRIMARY KEY (country, date)
)`, table)
}

// buildInsert monta um INSERT em lote; linhas repetidas sobrescrevem as existentes
func buildInsert(table string, records []domain.Record) (string, []interface{}, error) {
	builder := squirrel.Insert(table).
		Columns(
			"country", "iso_code", "continent", "date",
			"confirmed_cases", "new_cases", "deaths",
			"vaccinated", "fully_vaccinated", "population",
		).
		PlaceholderFormat(squirrel.Dollar)

	for _, r := range records {
		builder = builder.Values(
			r.Country, r.ISOCode, r.Continent, r.Date.Format(time.DateOnly),
			r.ConfirmedCases, r.NewCases, r.Deaths,
			r.Vaccinated, r.FullyVaccinated, r.Population,
		)
	}

	return builder.Suffix(`ON CONFLICT (country, date) DO UPDATE SET
		iso_code = EXCLUDED.iso_code,
		continent = EXCLUDED.continent,
		confirmed_cases = EXCLUDED.confirmed_cases,
		new_cases = EXCLUDED.new_cases,
		deaths = EXCLUDED.deaths,
		vaccinated = EXCLUDED.vaccinated,
		fully_vaccinated = EXCLUDED.fully_vaccinated,
		population = EXCLUDED.population`).ToSql()
}

// dedupeRecords mantém o último registro de cada (país, data). Um mesmo lote
// não pode repetir a chave do ON CONFLICT. Espera registros ordenados por
// país e data, como devolve o Dataset.
func dedupeRecords(records []domain.Record) ([]domain.Record, int) {
	out := make([]domain.Record, 0, len(records))
	duplicates := 0
	for _, r := range records {
		n := len(out)
		if n > 0 && out[n-1].Country == r.Country && out[n-1].Date.Equal(r.Date) {
			out[n-1] = r
			duplicates++
			continue
		}
		out = append(out, r)
	}
	return out, duplicates
}

// batches divide os registros em fatias de no máximo size elementos
func batches(records []domain.Record, size int) [][]domain.Record {
	var out [][]domain.Record
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		out = append(out, records[start:end])
	}
	return out
}

func insertRecords(tx *sql.Tx, table string, records []domain.Record) error {
	records, duplicates := dedupeRecords(records)
	if duplicates > 0 {
		log.Printf("AVISO: %d registros duplicados para o mesmo país e data; mantido o último", duplicates)
	}

	log.Printf("Iniciando inserção de %d registros...", len(records))
	startTime := time.Now()

	parts := batches(records, batchSize)
	for i, part := range parts {
		query, args, err := buildInsert(table, part)
		if err != nil {
			return fmt.Errorf("montando lote %d: %w", i+1, err)
		}

		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("inserindo lote %d/%d: %w", i+1, len(parts), err)
		}

		if i > 0 && i%10 == 0 {
			log.Printf("Progresso: %d/%d lotes processados", i+1, len(parts))
		}
	}

	log.Printf("Inserção concluída em %v. Registros: %d, Lotes: %d", time.Since(startTime), len(records), len(parts))
	return nil
}

func main() {
	setupLogger()

	flag.Parse()
	if flag.NArg() < 1 {
		log.Fatal("uso: script <arquivo.csv>")
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("ERRO ao carregar configuração: %v", err)
	}

	// Apenas o arquivo informado é lido; nada de download ou backup
	cfg.Source.InputPath = flag.Arg(0)
	cfg.Source.URLs = nil
	cfg.Source.BackupPath = ""

	ctx := context.Background()
	result, err := loading.NewService(cfg, nil, nil).Load(ctx)
	if err != nil {
		log.Fatalf("ERRO ao ler %s: %v", flag.Arg(0), err)
	}

	log.Println("Conectando ao banco de dados...")
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("ERRO ao conectar ao banco de dados: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("ERRO ao verificar conexão com o banco: %v", err)
	}

	if _, err := db.ExecContext(ctx, createTableStatement(cfg.Database.Table)); err != nil {
		log.Fatalf("ERRO ao criar tabela %s: %v", cfg.Database.Table, err)
	}
	log.Printf("Tabela %s pronta", cfg.Database.Table)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Fatalf("ERRO ao iniciar transação: %v", err)
	}

	if err := insertRecords(tx, cfg.Database.Table, result.Dataset.Records()); err != nil {
		_ = tx.Rollback()
		log.Fatalf("ERRO na migração, transação desfeita: %v", err)
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("ERRO ao confirmar transação: %v", err)
	}

	log.Printf("Migração concluída. Fonte: %s, fingerprint: %s", result.Source, result.Fingerprint)
}
