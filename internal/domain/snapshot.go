package domain

import "time"

// Snapshot é a fotografia mais recente de um país (último registro e últimas métricas)
type Snapshot struct {
	Country   string             `json:"country"`
	ISOCode   string             `json:"iso_code,omitempty"`
	Continent string             `json:"continent,omitempty"`
	Date      time.Time          `json:"date"`
	Record    Record             `json:"record"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Metric retorna o valor da métrica se ela estiver definida para o país
func (s Snapshot) Metric(name string) (float64, bool) {
	v, ok := s.Metrics[name]
	return v, ok
}

// Ranking é a posição de um país na comparação de uma métrica
type Ranking struct {
	Country          string  `json:"country"`
	Metric           string  `json:"metric"`
	Value            float64 `json:"value"`
	Position         int     `json:"position"`
	PositionChange   int     `json:"position_change"` // Positivo = subiu, negativo = desceu, 0 = manteve
	PreviousPosition int     `json:"previous_position"`
}
