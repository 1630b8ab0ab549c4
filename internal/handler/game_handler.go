package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"gamestracker/backend/internal/database"
	"gamestracker/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// AllOperatingSystems is the sentinel meaning "no OS filter".
const AllOperatingSystems = "-All-"

// region --- DTOs ---

// GameRow is a denormalized dashboard row. Prices come back in pounds; the
// store keeps pennies.
type GameRow struct {
	Title            string  `json:"game_name"`
	Genres           string  `json:"game_genres"`
	ReleaseDate      string  `json:"release_date"`
	Platform         string  `json:"platform"`
	ReleasePrice     float64 `json:"release_price"`
	ListingURL       string  `json:"listing_url"`
	OperatingSystems string  `json:"os_name"`
}

func newGameRows(game models.Game) []GameRow {
	genreNames := make([]string, 0, len(game.Genres))
	for _, genre := range game.Genres {
		genreNames = append(genreNames, genre.Name)
	}
	osNames := make([]string, 0, len(game.OperatingSystems))
	for _, os := range game.OperatingSystems {
		osNames = append(osNames, os.Name)
	}

	var rows []GameRow
	for _, listing := range game.Listings {
		rows = append(rows, GameRow{
			Title:            game.Title,
			Genres:           strings.Join(genreNames, ", "),
			ReleaseDate:      game.ReleaseDate.Format("2006-01-02"),
			Platform:         listing.Platform.Name,
			ReleasePrice:     float64(listing.ReleasePrice) / 100,
			ListingURL:       listing.ListingURL,
			OperatingSystems: strings.Join(osNames, ", "),
		})
	}
	return rows
}

// endregion

// GetGames godoc
// @Summary      Get dashboard game rows
// @Description  Retrieves denormalized game rows filtered by NSFW flag, date range, operating system and free-text search.
// @Tags         games
// @Produce      json
// @Param        nsfw       query  bool    false  "Include NSFW games"            default(false)
// @Param        start_date query  string  false  "Range start (YYYY-MM-DD)"
// @Param        end_date   query  string  false  "Range end (YYYY-MM-DD)"
// @Param        os         query  string  false  "Operating system or -All-"     default(-All-)
// @Param        q          query  string  false  "Search over title, genre and platform"
// @Success      200  {array}   GameRow
// @Failure      400  {object}  ErrorResponse
// @Router       /games [get]
func GetGames(c *gin.Context) {
	showNSFW, _ := strconv.ParseBool(c.DefaultQuery("nsfw", "false"))
	osSelection := c.DefaultQuery("os", AllOperatingSystems)
	searchQuery := c.Query("q")

	start, end, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date range, expected YYYY-MM-DD"})
		return
	}

	query := database.DB.
		Preload("Genres").
		Preload("OperatingSystems").
		Preload("Listings.Platform").
		Where("release_date >= ? AND release_date < ?", dayStart(start), dayStart(end).AddDate(0, 0, 1)).
		Order("release_date DESC")
	if !showNSFW {
		query = query.Where("is_nsfw = ?", false)
	}

	var games []models.Game
	if err := query.Find(&games).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load games"})
		return
	}

	rows := []GameRow{}
	for _, game := range games {
		if osSelection != AllOperatingSystems && !gameHasOS(game, osSelection) {
			continue
		}
		for _, row := range newGameRows(game) {
			if searchQuery == "" || rowMatchesSearch(row, searchQuery) {
				rows = append(rows, row)
			}
		}
	}

	c.JSON(http.StatusOK, rows)
}

func parseDateRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	start := now.AddDate(0, 0, -7)
	end := now

	if s := c.Query("start_date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return start, end, err
		}
		start = parsed
	}
	if s := c.Query("end_date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return start, end, err
		}
		end = parsed
	}
	return start, end, nil
}

// dayStart truncates to UTC midnight so the range binds the same way the
// uploader writes release dates.
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func gameHasOS(game models.Game, name string) bool {
	for _, os := range game.OperatingSystems {
		if strings.EqualFold(os.Name, name) {
			return true
		}
	}
	return false
}

func rowMatchesSearch(row GameRow, query string) bool {
	needle := strings.ToLower(query)
	return strings.Contains(strings.ToLower(row.Title), needle) ||
		strings.Contains(strings.ToLower(row.Genres), needle) ||
		strings.Contains(strings.ToLower(row.Platform), needle)
}
