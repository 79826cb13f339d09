package snapshot

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mmtigers/questboard/internal/model"
)

//go:embed fallback.yaml
var fallbackYAML []byte

type fallbackQuest struct {
	ID        int64  `yaml:"id"`
	Title     string `yaml:"title"`
	Type      string `yaml:"type"`
	Days      []int  `yaml:"days"`
	Exp       int    `yaml:"exp"`
	Gold      int    `yaml:"gold"`
	StartTime string `yaml:"start_time"`
	EndTime   string `yaml:"end_time"`
}

type fallbackCatalog struct {
	Quests []fallbackQuest `yaml:"quests"`
}

// Fallback returns the built-in default catalog used before the game server
// has ever answered.
func Fallback() model.Snapshot {
	quests, err := parseFallback(fallbackYAML)
	if err != nil {
		panic(fmt.Sprintf("snapshot: embedded fallback catalog: %v", err))
	}
	return model.Snapshot{
		Users:     []model.User{},
		Quests:    quests,
		Completed: []model.HistoryEntry{},
		Pending:   []model.HistoryEntry{},
		Fallback:  true,
	}
}

func parseFallback(data []byte) ([]model.Quest, error) {
	var cat fallbackCatalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse fallback catalog: %w", err)
	}

	quests := make([]model.Quest, 0, len(cat.Quests))
	for _, fq := range cat.Quests {
		q := model.Quest{
			ID:         fq.ID,
			Title:      fq.Title,
			Type:       model.QuestType(fq.Type),
			Target:     model.TargetAll,
			StartTime:  fq.StartTime,
			EndTime:    fq.EndTime,
			ExpReward:  fq.Exp,
			GoldReward: fq.Gold,
		}
		for _, d := range fq.Days {
			if d >= 0 && d <= 6 {
				q.Days = append(q.Days, time.Weekday(d))
			}
		}
		quests = append(quests, q)
	}
	return quests, nil
}
