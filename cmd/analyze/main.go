package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vfg2006/covid-insights/internal/config"
	"github.com/vfg2006/covid-insights/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Inicializa configuração de logs
	configureLogger()

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "uso: %s [arquivo.csv | url | postgres://dsn]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		return fail(err)
	}

	// O argumento posicional tem precedência sobre INPUT_PATH
	if input := flag.Arg(0); input != "" {
		cfg.Source.InputPath = input
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Debugf("Nível de log configurado para: %s", logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runner, err := pipeline.NewFromConfig(cfg)
	if err != nil {
		return fail(err)
	}

	summary, err := runner.Run(ctx)
	if err != nil {
		return fail(err)
	}

	for _, artifact := range summary.Artifacts {
		logrus.WithField("path", artifact.Path).Info("Artefato gerado")
	}
	for _, uri := range summary.Published {
		logrus.WithField("path", uri).Info("Artefato publicado")
	}

	return 0
}

// fail registra o erro e escreve o diagnóstico em stderr
func fail(err error) int {
	logrus.WithField("error", err.Error()).Error("Execução interrompida")
	return diagnose(err).Write(os.Stderr)
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}
