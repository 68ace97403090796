package model

import "time"

// Band classifies a composite score into one of four ordered difficulty
// categories. The four bands partition [0,100] with no overlap and no gaps.
type Band string

// Difficulty bands, in ascending order.
const (
	BandRoutine  Band = "routine"         // composite < 40
	BandModerate Band = "moderate"        // 40 <= composite < 55
	BandHigh     Band = "high_difficulty" // 55 <= composite < 70
	BandElite    Band = "elite"           // composite >= 70
)

// Band thresholds on the 0-100 composite scale.
const (
	BandModerateFloor = 40.0
	BandHighFloor     = 55.0
	BandEliteFloor    = 70.0

	// EliteThreshold marks moments counted as elite in event summaries.
	EliteThreshold = BandEliteFloor
)

// BandFor maps a composite score to its band.
func BandFor(composite float64) Band {
	switch {
	case composite >= BandEliteFloor:
		return BandElite
	case composite >= BandHighFloor:
		return BandHigh
	case composite >= BandModerateFloor:
		return BandModerate
	default:
		return BandRoutine
	}
}

// Components holds the five raw component scores of one moment. Leverage is
// bounded to [0,5]; the other four to [0,100].
type Components struct {
	Leverage  float64 `json:"leverage"`
	Pressure  float64 `json:"pressure"`
	Fatigue   float64 `json:"fatigue"`
	Execution float64 `json:"execution"`
	Bio       float64 `json:"bio"`
}

// Moment is the unit of output and persistence: one scored instant of one
// game. Immutable once written; the store keeps an append-only history per
// event and per pitcher.
type Moment struct {
	ID                 string     `json:"id"`
	EventID            string     `json:"event_id"`
	SubjectID          string     `json:"subject_id"`
	Kind               string     `json:"kind"`
	Composite          float64    `json:"composite"`
	Band               Band       `json:"band"`
	Components         Components `json:"components"`
	Situation          Situation  `json:"situation"`
	CalibrationVersion string     `json:"calibration_version"`
	Stale              bool       `json:"stale,omitempty"` // served from a stale cache entry
	CreatedAt          time.Time  `json:"created_at"`
}

// EventSummary is the derived aggregate over all moments of one event.
// Maintained incrementally on every append; recomputable from the moment
// log when the store and summary ever disagree.
type EventSummary struct {
	EventID       string    `json:"event_id"`
	Count         int64     `json:"count"`
	MaxComposite  float64   `json:"max_composite"`
	MeanComposite float64   `json:"mean_composite"`
	EliteCount    int64     `json:"elite_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Merge folds one new composite into the summary using an incremental
// mean update, so concurrent appends can merge without re-reading the log.
func (s *EventSummary) Merge(composite float64, at time.Time) {
	s.Count++
	s.MeanComposite += (composite - s.MeanComposite) / float64(s.Count)
	if composite > s.MaxComposite || s.Count == 1 {
		s.MaxComposite = composite
	}
	if composite >= EliteThreshold {
		s.EliteCount++
	}
	s.UpdatedAt = at
}
