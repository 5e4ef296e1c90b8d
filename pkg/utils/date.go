package utils

import (
	"fmt"
	"strings"
	"time"
)

// Formatos aceitos para datas vindas de arquivos externos, na ordem de tentativa
var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02/01/2006",
}

func ParseDate(dateStr string) (*time.Time, error) {
	var date time.Time

	if dateStr != "" {
		incomingDate, err := time.Parse(time.DateOnly, dateStr)
		if err != nil {
			return nil, err
		}

		date = incomingDate
	}

	return &date, nil
}

// ParseFlexibleDate interpreta a data em qualquer um dos formatos conhecidos e
// devolve apenas o dia (meia-noite UTC)
func ParseFlexibleDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, dateStr); err == nil {
			return TruncateToDay(parsed), nil
		}
	}
	return time.Time{}, fmt.Errorf("data em formato não reconhecido: %q", dateStr)
}

// TruncateToDay descarta hora e fuso, mantendo o dia do calendário
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
