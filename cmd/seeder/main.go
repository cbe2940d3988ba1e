package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mauv0809/squad-ladder/internal/database"
	"github.com/mauv0809/squad-ladder/internal/game"
	"github.com/mauv0809/squad-ladder/internal/ladder"
	"github.com/mauv0809/squad-ladder/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type seederConfig struct {
	DBName     string `env:"DB_NAME" envDefault:"ladder.db"`
	PrimaryURL string `env:"TURSO_PRIMARY_URL"`
	AuthToken  string `env:"TURSO_AUTH_TOKEN"`
	GuildID    string `env:"GUILD_ID" envDefault:"default"`
	Players    int    `env:"SEED_PLAYERS" envDefault:"16"`
	Games      int    `env:"SEED_GAMES" envDefault:"500"`
}

var teamNames = []string{"Lions", "Tigers", "Bears"}

var tribeFlairs = map[string]string{"Imperius": ":crown:", "Bardur": ":evergreen_tree:", "Oumaji": ":camel:", "Kickoo": ":ocean:"}

// seedRoster gives every seeded player a fixed team label. Some players get
// none so that mixed Home vs Away games show up too.
type seedRoster struct {
	labels map[string][]string
}

func (r seedRoster) TeamLabels(ctx context.Context, externalID string) ([]string, error) {
	return r.labels[externalID], nil
}

func main() {
	log.Info("Starting database seeder...")
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}
	var cfg seederConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("Failed to parse config: %s", err)
	}
	if cfg.Players < 2 {
		log.Fatalf("SEED_PLAYERS must be at least 2, got %d", cfg.Players)
	}

	db, teardown, err := database.InitDB(cfg.DBName, cfg.PrimaryURL, cfg.AuthToken)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	ctx := context.Background()
	roster := seedRoster{labels: make(map[string][]string)}
	svc := game.New(ladder.New(db), roster, metrics.NewService(prometheus.NewRegistry()), nil)

	for _, name := range teamNames {
		if _, err := svc.RegisterTeam(ctx, cfg.GuildID, name, "", ""); err != nil {
			log.Fatalf("Failed to register team %s: %s", name, err)
		}
	}

	tribeNames := make([]string, 0, len(tribeFlairs))
	for name, emoji := range tribeFlairs {
		if _, err := svc.SetTribeFlair(ctx, cfg.GuildID, name, emoji); err != nil {
			log.Fatalf("Failed to register tribe %s: %s", name, err)
		}
		tribeNames = append(tribeNames, name)
	}

	players := make([]game.Participant, cfg.Players)
	for i := range players {
		id := "seed-" + uuid.NewString()
		players[i] = game.Participant{ExternalID: id, Name: fmt.Sprintf("Seeder Player %d", i+1)}
		if i%4 != 3 {
			roster.labels[id] = []string{teamNames[i%len(teamNames)]}
		}
	}
	log.Info("Prepared players", "count", len(players))

	startTime := time.Now()
	for i := 0; i < cfg.Games; i++ {
		size := 1 + rand.IntN(min(3, len(players)/2))
		picked := rand.Perm(len(players))[:2*size]
		req := game.CreateGameRequest{
			GuildID:  cfg.GuildID,
			PlayedAt: time.Now().Add(-time.Duration(rand.IntN(365*24)) * time.Hour),
		}
		for j, idx := range picked {
			p := players[idx]
			// Roughly one pick in four is left without a tribe.
			if rand.IntN(4) > 0 {
				p.Tribe = tribeNames[rand.IntN(len(tribeNames))]
			}
			if j < size {
				req.Home = append(req.Home, p)
			} else {
				req.Away = append(req.Away, p)
			}
		}

		g, err := svc.CreateGame(ctx, req)
		if err != nil {
			log.Fatalf("Failed to create game: %s", err)
		}
		winner := ladder.SideHome
		if rand.IntN(2) == 1 {
			winner = ladder.SideAway
		}
		if _, err := svc.DeclareWinner(ctx, g.ID, winner); err != nil {
			log.Fatalf("Failed to declare winner of game %d: %s", g.ID, err)
		}
		if (i+1)%100 == 0 {
			log.Info("Seeded games", "completed", i+1, "total", cfg.Games)
		}
	}

	log.Info("Successfully seeded games.", "count", cfg.Games, "duration", time.Since(startTime))
}
