package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"bazario/internal/domain"
	"bazario/internal/middleware"
	"bazario/internal/models"
	"bazario/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ListingHandler struct {
	listingRepo *repository.ListingRepository
}

func NewListingHandler(listingRepo *repository.ListingRepository) *ListingHandler {
	return &ListingHandler{listingRepo: listingRepo}
}

func (h *ListingHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Title       string                 `json:"title" binding:"required"`
		Description string                 `json:"description"`
		PricePaise  int64                  `json:"price_paise" binding:"required,min=1"`
		Images      []string               `json:"images"`
		Attributes  map[string]interface{} `json:"attributes"`
		Location    map[string]interface{} `json:"location"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	listing := models.Listing{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		PricePaise:  req.PricePaise,
		Status:      domain.ListingStatusActive,
		Images:      toJSON(req.Images),
		Attributes:  toJSON(req.Attributes),
		Location:    toJSON(req.Location),
	}
	if err := h.listingRepo.Create(&listing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing create failed"})
		return
	}
	c.JSON(http.StatusCreated, listing)
}

func (h *ListingHandler) Get(c *gin.Context) {
	listingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing id"})
		return
	}
	listing, err := h.listingRepo.GetByID(uint(listingID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing error"})
		return
	}
	c.JSON(http.StatusOK, listing)
}

// ListMine returns the current user's listings.
func (h *ListingHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := pagination(c)
	listings, err := h.listingRepo.ListByUser(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listings error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

func toJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
