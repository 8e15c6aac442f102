package domain

import (
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

// GameArchive is the durable record written once when a game reaches
// its terminal state: the full final snapshot plus denormalized
// metadata for querying.
type GameArchive struct {
	ArchiveID     string    `gorm:"primaryKey;type:varchar(64)" json:"archive_id"`
	GameKey       string    `gorm:"index;type:varchar(64);not null" json:"game_key"`
	GameID        string    `gorm:"index;type:varchar(64);not null" json:"game_id"`
	CompetitionID string    `gorm:"index;type:varchar(64)" json:"competition_id"`
	GameOverAt    time.Time `gorm:"not null" json:"game_over_at"`
	Snapshot      string    `gorm:"type:text;not null" json:"snapshot"` // final Game as JSON
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName overrides the table name.
func (GameArchive) TableName() string {
	return "game_archives"
}

// PlayerScore is one player's final score row, written alongside the
// archive so the leaderboard query never unpacks snapshots.
type PlayerScore struct {
	ArchiveID     string    `gorm:"primaryKey;type:varchar(64)" json:"archive_id"`
	Seat          int       `gorm:"primaryKey" json:"seat"`
	GameID        string    `gorm:"index;type:varchar(64);not null" json:"game_id"`
	CompetitionID string    `gorm:"type:varchar(64)" json:"competition_id"`
	Name          string    `gorm:"type:varchar(256)" json:"name"`
	Email         string    `gorm:"type:varchar(256)" json:"email"`
	Score         int       `gorm:"not null;index:idx_player_scores_score" json:"score"`
	GameOverAt    time.Time `gorm:"not null" json:"game_over_at"`
}

// TableName overrides the table name.
func (PlayerScore) TableName() string {
	return "player_scores"
}

// GameScore is a leaderboard entry.
type GameScore struct {
	GameID        string    `json:"game_id"`
	CompetitionID string    `json:"competition_id"`
	GameOverAt    time.Time `json:"game_over_at"`
	Name          string    `json:"name"`
	Score         int       `json:"score"`
}

var (
	archiveNode *snowflake.Node
	archiveOnce sync.Once
)

func initSnowflake() {
	var err error
	archiveNode, err = snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
}

// NewArchiveID generates a unique, time-ordered archive identifier.
func NewArchiveID() string {
	archiveOnce.Do(initSnowflake)
	return archiveNode.Generate().String()
}
