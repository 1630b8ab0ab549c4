package handler

import (
	"net/http"
	"time"

	"gamestracker/backend/internal/config"
	"gamestracker/backend/internal/database"
	"gamestracker/backend/internal/notify"
	"gamestracker/backend/internal/pipeline"
	"gamestracker/backend/internal/scraper"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// IngestInput defines the structure for triggering an ingestion run.
type IngestInput struct {
	// Date of releases to ingest, YYYY-MM-DD. Defaults to today.
	Date string `json:"date" example:"2025-07-14"`
	// SkipNotifications suppresses the genre digest emails for this run.
	SkipNotifications bool `json:"skip_notifications"`
}

// SourceStatsResponse reports one store's contribution to a run.
type SourceStatsResponse struct {
	Scraped    int `json:"scraped"`
	Duplicates int `json:"duplicates"`
	Invalid    int `json:"invalid"`
}

// IngestResponse defines the structure returned after an ingestion run.
type IngestResponse struct {
	Date      string                         `json:"date"`
	PerSource map[string]SourceStatsResponse `json:"per_source"`
	Uploaded  int                            `json:"uploaded"`
	Skipped   int                            `json:"skipped"`
}

// endregion

// TriggerIngest godoc
// @Summary      Run the ingestion pipeline
// @Description  Scrapes Steam, GOG and Epic for the given day, uploads new releases and sends genre digests.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body IngestInput false "Run options"
// @Success      200  {object}  IngestResponse
// @Failure      400  {object}  ErrorResponse "Invalid date"
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      500  {object}  ErrorResponse "Run failed"
// @Router       /admin/ingest [post]
func TriggerIngest(c *gin.Context) {
	var input IngestInput
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date := time.Now()
	if input.Date != "" {
		parsed, err := time.Parse("2006-01-02", input.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Date must be in YYYY-MM-DD format"})
			return
		}
		date = parsed
	}

	runner := pipeline.NewRunner(database.DB,
		scraper.NewSteam(""),
		scraper.NewGOG(""),
		scraper.NewEpic(""),
	)

	result, err := runner.Run(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ingestion run failed"})
		return
	}

	if !input.SkipNotifications && len(result.Records) > 0 {
		cfg := config.AppConfig
		mailer := notify.NewMailer(notify.SmtpConfig{
			Host:     cfg.SmtpHost,
			Port:     cfg.SmtpPort,
			Username: cfg.SmtpUsername,
			Password: cfg.SmtpPassword,
			Sender:   cfg.SenderEmail,
		})
		notifier := notify.NewNotifier(database.DB, mailer, cfg.TopicPrefix)
		if err := notifier.SendGenreDigests(c.Request.Context(), result.Records); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Run uploaded but notifications failed"})
			return
		}
	}

	c.JSON(http.StatusOK, newIngestResponse(result.Summary))
}

func newIngestResponse(summary pipeline.RunSummary) IngestResponse {
	perSource := make(map[string]SourceStatsResponse, len(summary.PerSource))
	for platform, stats := range summary.PerSource {
		perSource[platform] = SourceStatsResponse{
			Scraped:    stats.Scraped,
			Duplicates: stats.Duplicates,
			Invalid:    stats.Invalid,
		}
	}
	return IngestResponse{
		Date:      summary.Date.Format("2006-01-02"),
		PerSource: perSource,
		Uploaded:  summary.Uploaded,
		Skipped:   summary.Skipped,
	}
}
