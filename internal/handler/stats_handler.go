package handler

import (
	"net/http"
	"strconv"

	"gamestracker/backend/internal/database"
	"gamestracker/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// DailyReleaseCount counts one platform's releases on one date.
type DailyReleaseCount struct {
	ReleaseDate string `json:"release_date"`
	Platform    string `json:"platform"`
	Count       int    `json:"count"`
}

// GenreReleaseCount counts releases per genre.
type GenreReleaseCount struct {
	Genre string `json:"genre_name"`
	Count int    `json:"game_count"`
}

// DailyGameCount counts distinct game titles per release date.
type DailyGameCount struct {
	ReleaseDate string `json:"release_date"`
	TotalGames  int    `json:"total_games"`
}

// GetDailyReleases godoc
// @Summary      Per-platform daily release counts
// @Description  Counts releases on each platform per day between the chosen dates.
// @Tags         stats
// @Produce      json
// @Param        nsfw       query  bool    false  "Include NSFW games" default(false)
// @Param        start_date query  string  false  "Range start (YYYY-MM-DD)"
// @Param        end_date   query  string  false  "Range end (YYYY-MM-DD)"
// @Success      200  {array}   DailyReleaseCount
// @Failure      400  {object}  ErrorResponse
// @Router       /stats/daily-releases [get]
func GetDailyReleases(c *gin.Context) {
	showNSFW, _ := strconv.ParseBool(c.DefaultQuery("nsfw", "false"))
	start, end, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date range, expected YYYY-MM-DD"})
		return
	}

	query := database.DB.Model(&models.Game{}).
		Select("games.release_date AS release_date, platforms.name AS platform, COUNT(*) AS count").
		Joins("JOIN game_listings ON game_listings.game_id = games.id").
		Joins("JOIN platforms ON platforms.id = game_listings.platform_id").
		Where("games.release_date >= ? AND games.release_date < ?", dayStart(start), dayStart(end).AddDate(0, 0, 1)).
		Group("games.release_date, platforms.name").
		Order("games.release_date")
	if !showNSFW {
		query = query.Where("games.is_nsfw = ?", false)
	}

	var rows []DailyReleaseCount
	if err := query.Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load release counts"})
		return
	}
	if rows == nil {
		rows = []DailyReleaseCount{}
	}

	c.JSON(http.StatusOK, rows)
}

// GetGenreStats godoc
// @Summary      Most frequent genres
// @Description  Counts releases of the ten most frequent genres between the chosen dates.
// @Tags         stats
// @Produce      json
// @Param        nsfw       query  bool    false  "Include NSFW games" default(false)
// @Param        start_date query  string  false  "Range start (YYYY-MM-DD)"
// @Param        end_date   query  string  false  "Range end (YYYY-MM-DD)"
// @Success      200  {array}   GenreReleaseCount
// @Failure      400  {object}  ErrorResponse
// @Router       /stats/genres [get]
func GetGenreStats(c *gin.Context) {
	showNSFW, _ := strconv.ParseBool(c.DefaultQuery("nsfw", "false"))
	start, end, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date range, expected YYYY-MM-DD"})
		return
	}

	query := database.DB.Model(&models.Game{}).
		Select("genres.name AS genre, COUNT(games.id) AS count").
		Joins("JOIN game_genre_assignments ON game_genre_assignments.game_id = games.id").
		Joins("JOIN genres ON genres.id = game_genre_assignments.genre_id").
		Where("games.release_date >= ? AND games.release_date < ?", dayStart(start), dayStart(end).AddDate(0, 0, 1)).
		Group("genres.name").
		Order("count DESC").
		Limit(10)
	if !showNSFW {
		query = query.Where("games.is_nsfw = ?", false)
	}

	var rows []GenreReleaseCount
	if err := query.Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load genre counts"})
		return
	}
	if rows == nil {
		rows = []GenreReleaseCount{}
	}

	c.JSON(http.StatusOK, rows)
}

// GetDailyCounts godoc
// @Summary      Distinct game titles per release date
// @Description  Counts distinct game titles for every release date on record.
// @Tags         stats
// @Produce      json
// @Success      200  {array}  DailyGameCount
// @Router       /stats/daily-counts [get]
func GetDailyCounts(c *gin.Context) {
	var rows []DailyGameCount
	err := database.DB.Model(&models.Game{}).
		Select("games.release_date AS release_date, COUNT(DISTINCT games.title) AS total_games").
		Group("games.release_date").
		Order("games.release_date").
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load game counts"})
		return
	}
	if rows == nil {
		rows = []DailyGameCount{}
	}

	c.JSON(http.StatusOK, rows)
}
