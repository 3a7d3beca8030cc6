package training

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// DefaultGroupSize is how many records of one level are folded into a single
// record of the next level.
const DefaultGroupSize = 100

// GameRecord describes one game, or a group of games once compressed.
type GameRecord struct {
	StartTime        time.Time `json:"startTime"`
	EndTime          time.Time `json:"endTime"`
	Score            int       `json:"score"`
	Frames           int       `json:"frames"`
	CompressionIndex int       `json:"compressionIndex"` // 0 for single games
	GamesCount       int       `json:"gamesCount"`
	AverageScore     float64   `json:"averageScore"`
	MaxScore         int       `json:"maxScore"`
	MinScore         int       `json:"minScore"`
	AverageFrames    float64   `json:"averageFrames"`
	AverageDuration  float64   `json:"averageDuration"` // seconds
}

// Stats is the score history of a run. Old records are folded into groups
// so the history stays small over long runs.
type Stats struct {
	RunID  string       `json:"runId"`
	Record int          `json:"record"`
	Games  []GameRecord `json:"games"`

	groupSize int
}

func NewStats(runID string) *Stats {
	return &Stats{
		RunID:     runID,
		Games:     make([]GameRecord, 0),
		groupSize: DefaultGroupSize,
	}
}

// AddGame records a finished game and reports whether it set a new record.
func (s *Stats) AddGame(score, frames int, startTime, endTime time.Time) bool {
	duration := endTime.Sub(startTime).Seconds()
	s.Games = append(s.Games, GameRecord{
		StartTime:       startTime,
		EndTime:         endTime,
		Score:           score,
		Frames:          frames,
		GamesCount:      1,
		AverageScore:    float64(score),
		MaxScore:        score,
		MinScore:        score,
		AverageFrames:   float64(frames),
		AverageDuration: duration,
	})
	s.compact()

	if score > s.Record {
		s.Record = score
		return true
	}
	return false
}

// compact folds the oldest groupSize records of a level into one record of
// the next level, cascading upwards.
func (s *Stats) compact() {
	if s.groupSize < 2 {
		return
	}
	for level := 0; ; level++ {
		var idx []int
		for i, g := range s.Games {
			if g.CompressionIndex == level {
				idx = append(idx, i)
			}
		}
		if len(idx) < s.groupSize {
			return
		}

		group := idx[:s.groupSize]
		members := make([]GameRecord, 0, len(group))
		inGroup := make(map[int]bool, len(group))
		for _, i := range group {
			members = append(members, s.Games[i])
			inGroup[i] = true
		}
		merged := mergeRecords(members, level+1)

		games := make([]GameRecord, 0, len(s.Games)-len(group)+1)
		for i, g := range s.Games {
			if i == group[0] {
				games = append(games, merged)
			}
			if !inGroup[i] {
				games = append(games, g)
			}
		}
		s.Games = games
	}
}

func mergeRecords(group []GameRecord, level int) GameRecord {
	scores := make([]float64, len(group))
	frames := make([]float64, len(group))
	durations := make([]float64, len(group))
	weights := make([]float64, len(group))

	merged := GameRecord{
		StartTime:        group[0].StartTime,
		EndTime:          group[0].EndTime,
		CompressionIndex: level,
		MaxScore:         group[0].MaxScore,
		MinScore:         group[0].MinScore,
	}
	for i, g := range group {
		scores[i] = g.AverageScore
		frames[i] = g.AverageFrames
		durations[i] = g.AverageDuration
		weights[i] = float64(g.GamesCount)

		merged.GamesCount += g.GamesCount
		merged.MaxScore = max(merged.MaxScore, g.MaxScore)
		merged.MinScore = min(merged.MinScore, g.MinScore)
		if g.StartTime.Before(merged.StartTime) {
			merged.StartTime = g.StartTime
		}
		if g.EndTime.After(merged.EndTime) {
			merged.EndTime = g.EndTime
		}
	}
	merged.AverageScore = stat.Mean(scores, weights)
	merged.AverageFrames = stat.Mean(frames, weights)
	merged.AverageDuration = stat.Mean(durations, weights)
	merged.Score = merged.MaxScore
	merged.Frames = int(merged.AverageFrames)
	return merged
}

func (s *Stats) GamesPlayed() int {
	total := 0
	for _, g := range s.Games {
		total += g.GamesCount
	}
	return total
}

// MeanScore is the average score over every game of the run.
func (s *Stats) MeanScore() float64 {
	if len(s.Games) == 0 {
		return 0
	}
	scores := make([]float64, len(s.Games))
	weights := make([]float64, len(s.Games))
	for i, g := range s.Games {
		scores[i] = g.AverageScore
		weights[i] = float64(g.GamesCount)
	}
	return stat.Mean(scores, weights)
}

// SaveToFile writes the stats as JSON, creating parent directories.
func (s *Stats) SaveToFile(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return errors.Wrap(err, "create stats directory")
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal stats")
	}
	return errors.Wrap(os.WriteFile(filename, data, 0644), "write stats")
}

// LoadStats reads a file written by SaveToFile. A missing file yields empty
// stats for runID.
func LoadStats(filename, runID string) (*Stats, error) {
	s := NewStats(runID)
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Wrap(err, "read stats")
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, errors.Wrap(err, "unmarshal stats")
	}
	return s, nil
}
