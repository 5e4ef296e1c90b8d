package utils

import (
	"fmt"
	"math"
)

func RoundWithTwoDecimalPlace(f float64) float64 {
	if f == 0 {
		return 0
	}

	return math.Round(f*100) / 100
}

// FormatShortNotation formata valores grandes para rótulos de eixo (1.2k, 3.40M)
func FormatShortNotation(value float64) string {
	absValue := math.Abs(value)
	sign := ""
	if value < 0 {
		sign = "-"
	}

	switch {
	case absValue >= 1_000_000_000:
		return fmt.Sprintf("%s%.2fB", sign, absValue/1_000_000_000)
	case absValue >= 1_000_000:
		return fmt.Sprintf("%s%.2fM", sign, absValue/1_000_000)
	case absValue >= 10_000:
		return fmt.Sprintf("%s%.0fk", sign, math.Floor(absValue/1_000))
	case absValue >= 1_000:
		return fmt.Sprintf("%s%.1fk", sign, absValue/1_000)
	case absValue >= 1 || absValue == 0:
		return fmt.Sprintf("%s%.0f", sign, absValue)
	default:
		return fmt.Sprintf("%s%.2f", sign, absValue)
	}
}

// FormatThousands formata inteiros com separador de milhar (1,234,567)
func FormatThousands(value int64) string {
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}

	digits := fmt.Sprintf("%d", value)
	out := make([]byte, 0, len(digits)+len(digits)/3)
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	return sign + string(out)
}
