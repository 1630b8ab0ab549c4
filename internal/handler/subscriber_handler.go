package handler

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"gamestracker/backend/internal/database"
	"gamestracker/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// Regex for validating subscriber emails at the boundary.
var emailPattern = regexp.MustCompile(`^[\w\.-]+@[\w\.-]+\.\w+$`)

// region --- DTOs ---

// SubscribeInput defines the structure for subscribing to release updates.
type SubscribeInput struct {
	Name         string   `json:"name" example:"Alex"`
	Email        string   `json:"email" binding:"required" example:"alex@example.com"`
	Genres       []string `json:"genres" example:"Action,Indie"`
	WeeklyReport bool     `json:"weekly_report"`
	IncludeNSFW  bool     `json:"include_nsfw"`
}

// SubscriberResponse defines the structure returned for a subscriber.
type SubscriberResponse struct {
	ID           uint     `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Genres       []string `json:"genres"`
	WeeklyReport bool     `json:"weekly_report"`
	IncludeNSFW  bool     `json:"include_nsfw"`
}

func newSubscriberResponse(sub models.Subscriber) SubscriberResponse {
	genres := make([]string, 0, len(sub.Genres))
	for _, genre := range sub.Genres {
		genres = append(genres, genre.Name)
	}
	return SubscriberResponse{
		ID:           sub.ID,
		Name:         sub.Name,
		Email:        sub.Email,
		Genres:       genres,
		WeeklyReport: sub.WeeklyReport,
		IncludeNSFW:  sub.IncludeNSFW,
	}
}

// endregion

// Subscribe godoc
// @Summary      Subscribe to release updates
// @Description  Creates or updates a subscriber with their genre selections, weekly report and NSFW preferences.
// @Tags         subscribers
// @Accept       json
// @Produce      json
// @Param        input body SubscribeInput true "Subscription Info"
// @Success      201  {object}  SubscriberResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse "Invalid email address"
// @Router       /subscribers [post]
func Subscribe(c *gin.Context) {
	var input SubscribeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !emailPattern.MatchString(input.Email) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Please enter a valid email address."})
		return
	}

	genres, err := findGenresByName(input.Genres)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up genres"})
		return
	}

	var sub models.Subscriber
	if err := database.DB.Where("email = ?", input.Email).First(&sub).Error; err == nil {
		// Re-subscribing replaces the previous preferences.
		sub.Name = input.Name
		sub.WeeklyReport = input.WeeklyReport
		sub.IncludeNSFW = input.IncludeNSFW
		if err := database.DB.Model(&sub).Association("Genres").Replace(genres); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subscription"})
			return
		}
		database.DB.Save(&sub)
		database.DB.Preload("Genres").First(&sub, sub.ID)
		c.JSON(http.StatusOK, newSubscriberResponse(sub))
		return
	}

	sub = models.Subscriber{
		Name:         input.Name,
		Email:        input.Email,
		WeeklyReport: input.WeeklyReport,
		IncludeNSFW:  input.IncludeNSFW,
		Genres:       genres,
	}
	if err := database.DB.Create(&sub).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subscription"})
		return
	}

	c.JSON(http.StatusCreated, newSubscriberResponse(sub))
}

// Unsubscribe godoc
// @Summary      Unsubscribe from release updates
// @Description  Removes a subscriber and all their genre subscriptions.
// @Tags         subscribers
// @Produce      json
// @Param        email path string true "Subscriber email"
// @Success      200  {object}  map[string]string "{"message": "Unsubscribed"}"
// @Failure      404  {object}  ErrorResponse "Subscriber not found"
// @Failure      422  {object}  ErrorResponse "Invalid email address"
// @Router       /subscribers/{email} [delete]
func Unsubscribe(c *gin.Context) {
	email := c.Param("email")
	if !emailPattern.MatchString(email) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Please enter a valid email address."})
		return
	}

	var sub models.Subscriber
	if err := database.DB.Where("email = ?", email).First(&sub).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subscriber not found"})
		return
	}

	if err := database.DB.Select("Genres").Delete(&sub).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unsubscribe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unsubscribed"})
}

// ListSubscribers godoc
// @Summary      List subscribers
// @Description  Retrieves a paginated list of subscribers.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page  query  int  false  "Page number"    default(1)
// @Param        limit query  int  false  "Items per page" default(10)
// @Success      200  {object}  PaginatedResponse[SubscriberResponse]
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Router       /admin/subscribers [get]
func ListSubscribers(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100 // Max limit
	}

	result, err := Paginate[models.Subscriber](database.DB.Preload("Genres").Order("id"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscribers"})
		return
	}

	responses := make([]SubscriberResponse, 0, len(result.Data))
	for _, sub := range result.Data {
		responses = append(responses, newSubscriberResponse(sub))
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(responses, result.Meta.TotalItems, page, limit))
}

func findGenresByName(names []string) ([]*models.Genre, error) {
	if len(names) == 0 {
		return nil, nil
	}

	lowered := make([]string, len(names))
	for i, name := range names {
		lowered[i] = strings.ToLower(strings.TrimSpace(name))
	}

	var genres []*models.Genre
	err := database.DB.Where("LOWER(name) IN ?", lowered).Find(&genres).Error
	return genres, err
}
