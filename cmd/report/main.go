// Command report prints the analytics dashboards as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"grievance/internal/engine/analytics"
	"grievance/internal/pkg/logger"
	"grievance/internal/platform/config"
	"grievance/internal/platform/database"
	"grievance/internal/platform/models"
	"grievance/internal/platform/repositories"
)

type report struct {
	GeneratedAt time.Time                 `json:"generatedAt"`
	Insights    []analytics.Insight       `json:"insights"`
	Scorecards  []analytics.Scorecard     `json:"scorecards,omitempty"`
	Overview    *analytics.Overview       `json:"overview,omitempty"`
	Workflow    *analytics.WorkflowReport `json:"workflow,omitempty"`
}

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	orgID := flag.String("org", "", "Organization ID; limits the report to one organization")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	ctx := context.Background()
	complaints := repositories.NewComplaintRepository(db, nil)
	now := time.Now().UTC()

	var out report
	if *orgID != "" {
		list, err := complaints.List(ctx, models.ComplaintFilter{OrgID: *orgID})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list complaints")
		}
		workflow := analytics.WorkflowInsights(list, now, cfg.Analytics.StuckAfter)
		out = report{GeneratedAt: now, Insights: analytics.GenerateInsights(list), Workflow: &workflow}
	} else {
		list, err := complaints.List(ctx, models.ComplaintFilter{})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list complaints")
		}
		orgs, err := repositories.NewOrganizationRepository(db, nil).List(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list organizations")
		}
		users, err := repositories.NewUserRepository(db, nil).List(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list users")
		}
		overview := analytics.BuildOverview(orgs, list)
		out = report{
			GeneratedAt: now,
			Insights:    analytics.GenerateInsights(list),
			Scorecards:  analytics.Scorecards(users, orgs, list),
			Overview:    &overview,
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal().Err(err).Msg("Failed to write report")
	}
}
