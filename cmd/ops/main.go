// Ops is a small diagnostics server for a running deployment. It talks
// to Postgres and Redis directly so it keeps working even when the game
// monolith is down, which is exactly when you need it.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/jannikanker/OhHellCardGame/pkg/logger"
)

const liveGamePrefix = "game:"

type opsServer struct {
	db  *sql.DB
	rdb *redis.Client
}

func main() {
	logger.InitWithFile("logs/ops/server.log", getEnv("LOG_LEVEL", "info"), "json")
	defer logger.Flush()

	ctx := context.Background()

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "cardgame_user"),
		getEnv("DB_PASSWORD", "cardgame_pass"),
		getEnv("DB_NAME", "cardgame_db"),
	)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to open Postgres connection")
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(time.Hour)

	rdb := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", getEnv("REDIS_HOST", "localhost"), getEnv("REDIS_PORT", "6379")),
	})

	srv := &opsServer{db: db, rdb: rdb}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware())

	api := r.Group("/api")
	{
		api.GET("/health", srv.handleHealth)
		api.GET("/stats", srv.handleStats)
		api.GET("/live", srv.handleListLiveGames)
		api.DELETE("/live/:id", srv.handleDropLiveGame)
		api.GET("/archives", srv.handleListArchives)
	}

	port := getEnv("OPS_PORT", "8080")
	logger.Info(ctx).Str("port", port).Msg("Ops server starting")
	if err := r.Run(":" + port); err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to start ops server")
	}
}

// handleHealth pings both backends and reports per-dependency status.
// Returns 503 when either is unreachable so it can back a liveness check.
func (s *opsServer) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := gin.H{}

	if err := s.db.PingContext(ctx); err != nil {
		deps["postgres"] = err.Error()
		status = http.StatusServiceUnavailable
	} else {
		deps["postgres"] = "ok"
	}

	if err := s.rdb.Ping(ctx).Err(); err != nil {
		deps["redis"] = err.Error()
		status = http.StatusServiceUnavailable
	} else {
		deps["redis"] = "ok"
	}

	c.JSON(status, gin.H{"status": http.StatusText(status), "deps": deps})
}

func (s *opsServer) handleStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	tables := []string{"users", "game_registries", "game_archives", "player_scores"}
	counts := gin.H{}
	for _, table := range tables {
		var n int64
		// Table names come from the fixed list above, never from input.
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			c.JSON(500, gin.H{"error": fmt.Sprintf("count %s: %v", table, err)})
			return
		}
		counts[table] = n
	}

	live, err := s.liveGameIDs(ctx)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	counts["live_games"] = len(live)

	c.JSON(200, counts)
}

func (s *opsServer) handleListLiveGames(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	ids, err := s.liveGameIDs(ctx)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	type liveGame struct {
		ID  string `json:"id"`
		TTL string `json:"ttl"`
	}
	games := make([]liveGame, 0, len(ids))
	for _, id := range ids {
		ttl, err := s.rdb.TTL(ctx, liveGamePrefix+id).Result()
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		games = append(games, liveGame{ID: id, TTL: ttl.String()})
	}

	c.JSON(200, games)
}

// handleDropLiveGame removes a stuck live game from Redis. The archive,
// if the game ever finished, stays in Postgres.
func (s *opsServer) handleDropLiveGame(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	id := c.Param("id")
	removed, err := s.rdb.Del(ctx, liveGamePrefix+id).Result()
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	if removed == 0 {
		c.JSON(404, gin.H{"error": fmt.Sprintf("live game '%s' not found", id)})
		return
	}

	logger.Warn(c.Request.Context()).Str("game_id", id).Msg("Live game dropped by operator")
	c.JSON(200, gin.H{"success": true, "game_id": id})
}

func (s *opsServer) handleListArchives(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	limit := 20
	if v := c.Query("limit"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &limit); err != nil || limit < 1 || limit > 200 {
			c.JSON(400, gin.H{"error": "limit must be between 1 and 200"})
			return
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT archive_id, game_key, game_id, competition_id, game_over_at
		FROM game_archives
		ORDER BY game_over_at DESC
		LIMIT $1`, limit)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	defer rows.Close()

	type archiveRow struct {
		ArchiveID     string    `json:"archive_id"`
		GameKey       string    `json:"game_key"`
		GameID        string    `json:"game_id"`
		CompetitionID string    `json:"competition_id"`
		GameOverAt    time.Time `json:"game_over_at"`
	}
	archives := []archiveRow{}
	for rows.Next() {
		var a archiveRow
		if err := rows.Scan(&a.ArchiveID, &a.GameKey, &a.GameID, &a.CompetitionID, &a.GameOverAt); err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		archives = append(archives, a)
	}
	if err := rows.Err(); err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, archives)
}

// liveGameIDs scans Redis for live game keys and strips the prefix.
func (s *opsServer) liveGameIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	iter := s.rdb.Scan(ctx, 0, liveGamePrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, iter.Val()[len(liveGamePrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan live games: %w", err)
	}
	return ids, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
