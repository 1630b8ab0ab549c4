package handler

import (
	"net/http"

	"gamestracker/backend/internal/database"
	"gamestracker/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// GetGenres godoc
// @Summary      List genres
// @Description  Retrieves all genres seen across tracked releases, for use in subscription forms and dashboard filters.
// @Tags         genres
// @Produce      json
// @Success      200  {array}   string
// @Failure      500  {object}  ErrorResponse
// @Router       /genres [get]
func GetGenres(c *gin.Context) {
	var names []string
	err := database.DB.Model(&models.Genre{}).Order("name").Pluck("name", &names).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load genres"})
		return
	}

	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, names)
}
