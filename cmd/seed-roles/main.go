package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/fadilmartias/resume-analyzer/internal/config"
	"github.com/fadilmartias/resume-analyzer/internal/database"
	"github.com/fadilmartias/resume-analyzer/internal/repository"
	"github.com/fadilmartias/resume-analyzer/internal/service"
	"github.com/fadilmartias/resume-analyzer/internal/usecase"
	"github.com/joho/godotenv"
)

// seed-roles embeds the role catalogue used for role suggestions.
//
//	go run ./cmd/seed-roles [-force] [-file roles.json]
//
// roles.json is an array of {"title": ..., "content": ...} objects; without
// it the built-in catalogue is loaded.
func main() {
	force := flag.Bool("force", false, "re-embed roles that already exist")
	file := flag.String("file", "", "JSON file with roles to load instead of the built-in list")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall deadline")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Info("config.dotenv_missing")
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	roles := usecase.DefaultRoles
	if *file != "" {
		var err error
		if roles, err = loadRoles(*file); err != nil {
			log.Error("roles.load_failed", "file", *file, "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := database.Connect(config.LoadDBConfig(), config.LoadAppConfig())
	if err != nil {
		log.Error("db.connect_failed", "error", err)
		os.Exit(1)
	}
	gemini, err := service.NewGeminiService(ctx, config.LoadGeminiConfig(), log)
	if err != nil {
		log.Error("inference.init_failed", "error", err)
		os.Exit(1)
	}

	jobs := repository.NewJobRepository(db)
	uc := usecase.NewRoleUsecase(nil, jobs, gemini, 0, log)
	n, err := uc.SeedRoles(ctx, roles, *force)
	if err != nil {
		log.Error("roles.seed_failed", "written", n, "error", err)
		os.Exit(1)
	}

	total, err := jobs.CountJobs(ctx)
	if err != nil {
		log.Warn("roles.count_failed", "error", err)
	}
	log.Info("roles.seed_done", "written", n, "total", total)
}

func loadRoles(path string) ([]usecase.RoleSeed, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	roles := make([]usecase.RoleSeed, 0, len(raw))
	for _, r := range raw {
		if r.Title == "" {
			continue
		}
		roles = append(roles, usecase.RoleSeed{Title: r.Title, Content: r.Content})
	}
	return roles, nil
}
