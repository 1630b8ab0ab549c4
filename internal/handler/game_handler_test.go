package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"gamestracker/backend/internal/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func gamesRouter() *gin.Engine {
	router := gin.New()
	router.GET("/api/v1/games", GetGames)
	router.GET("/api/v1/genres", GetGenres)
	router.GET("/api/v1/stats/daily-releases", GetDailyReleases)
	router.GET("/api/v1/stats/genres", GetGenreStats)
	router.GET("/api/v1/stats/daily-counts", GetDailyCounts)
	return router
}

func TestGetGames(t *testing.T) {
	db := setupHandlerTest(t)
	day := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)

	uploadTestRecords(t, db,
		pipeline.Record{
			Platform: "Steam", Title: "Game A", URL: "https://steam.example/a",
			PriceMinor: 1999, ReleaseDate: day,
			Genres: []string{"Action"}, OperatingSystems: []string{"Windows"},
		},
		pipeline.Record{
			Platform: "GOG", Title: "Spicy Game", URL: "https://gog.example/b",
			PriceMinor: 0, ReleaseDate: day, NSFW: true,
			Genres: []string{"Action"}, OperatingSystems: []string{"Linux"},
		},
	)

	router := gamesRouter()

	t.Run("hides NSFW by default", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/v1/games?start_date=2025-07-14&end_date=2025-07-14", "")
		body := jsonBody(t, w, http.StatusOK)

		var rows []GameRow
		require.NoError(t, json.Unmarshal([]byte(body), &rows))
		require.Len(t, rows, 1)
		require.Equal(t, "Game A", rows[0].Title)
		require.Equal(t, "Steam", rows[0].Platform)
		require.InDelta(t, 19.99, rows[0].ReleasePrice, 0.001)
		require.Equal(t, "Action", rows[0].Genres)
		require.Equal(t, "Windows", rows[0].OperatingSystems)
		require.Equal(t, "2025-07-14", rows[0].ReleaseDate)
	})

	t.Run("nsfw flag includes everything", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/v1/games?nsfw=true&start_date=2025-07-14&end_date=2025-07-14", "")
		var rows []GameRow
		require.NoError(t, json.Unmarshal([]byte(jsonBody(t, w, http.StatusOK)), &rows))
		require.Len(t, rows, 2)
	})

	t.Run("os filter", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/v1/games?nsfw=true&os=Linux&start_date=2025-07-14&end_date=2025-07-14", "")
		var rows []GameRow
		require.NoError(t, json.Unmarshal([]byte(jsonBody(t, w, http.StatusOK)), &rows))
		require.Len(t, rows, 1)
		require.Equal(t, "Spicy Game", rows[0].Title)
	})

	t.Run("search over title genre platform", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/v1/games?q=spicy&nsfw=true&start_date=2025-07-14&end_date=2025-07-14", "")
		var rows []GameRow
		require.NoError(t, json.Unmarshal([]byte(jsonBody(t, w, http.StatusOK)), &rows))
		require.Len(t, rows, 1)
		require.Equal(t, "Spicy Game", rows[0].Title)
	})

	t.Run("date range excludes", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/v1/games?start_date=2025-01-01&end_date=2025-01-02", "")
		var rows []GameRow
		require.NoError(t, json.Unmarshal([]byte(jsonBody(t, w, http.StatusOK)), &rows))
		require.Empty(t, rows)
	})

	t.Run("bad date is rejected", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/v1/games?start_date=tomorrow", "")
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetGenres(t *testing.T) {
	db := setupHandlerTest(t)
	day := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)

	uploadTestRecords(t, db, pipeline.Record{
		Platform: "Steam", Title: "Game A", URL: "https://steam.example/a",
		ReleaseDate: day, Genres: []string{"Indie", "Action"},
	})

	w := performRequest(gamesRouter(), http.MethodGet, "/api/v1/genres", "")
	var genres []string
	require.NoError(t, json.Unmarshal([]byte(jsonBody(t, w, http.StatusOK)), &genres))
	require.Equal(t, []string{"Action", "Indie"}, genres)
}

func TestGetStats(t *testing.T) {
	db := setupHandlerTest(t)
	day := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)

	uploadTestRecords(t, db,
		pipeline.Record{
			Platform: "Steam", Title: "Game A", URL: "https://steam.example/a",
			ReleaseDate: day, Genres: []string{"Action"},
		},
		pipeline.Record{
			Platform: "Steam", Title: "Game B", URL: "https://steam.example/b",
			ReleaseDate: day, Genres: []string{"Action", "Indie"},
		},
		pipeline.Record{
			Platform: "GOG", Title: "Game C", URL: "https://gog.example/c",
			ReleaseDate: day.AddDate(0, 0, 1),
		},
	)

	router := gamesRouter()

	t.Run("daily releases per platform", func(t *testing.T) {
		w := performRequest(router, http.MethodGet,
			"/api/v1/stats/daily-releases?start_date=2025-07-14&end_date=2025-07-15", "")
		var rows []DailyReleaseCount
		require.NoError(t, json.Unmarshal([]byte(jsonBody(t, w, http.StatusOK)), &rows))
		require.Len(t, rows, 2)

		counts := make(map[string]int)
		for _, row := range rows {
			counts[row.Platform] += row.Count
		}
		require.Equal(t, map[string]int{"Steam": 2, "GOG": 1}, counts)
	})

	t.Run("genre counts", func(t *testing.T) {
		w := performRequest(router, http.MethodGet,
			"/api/v1/stats/genres?start_date=2025-07-14&end_date=2025-07-15", "")
		var rows []GenreReleaseCount
		require.NoError(t, json.Unmarshal([]byte(jsonBody(t, w, http.StatusOK)), &rows))

		counts := make(map[string]int)
		for _, row := range rows {
			counts[row.Genre] = row.Count
		}
		require.Equal(t, map[string]int{"Action": 2, "Indie": 1}, counts)
	})

	t.Run("daily distinct title counts", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/v1/stats/daily-counts", "")
		var rows []DailyGameCount
		require.NoError(t, json.Unmarshal([]byte(jsonBody(t, w, http.StatusOK)), &rows))
		require.Len(t, rows, 2)
		require.Equal(t, 2, rows[0].TotalGames)
		require.Equal(t, 1, rows[1].TotalGames)
	})
}
