package api

import (
	"context"
	"net/http"

	"github.com/coverwing/membership/internal/geo"
	"github.com/gin-gonic/gin"
)

// Country is the static country list served to the wizard. IDs are the
// country identifiers members reference in country_of_residence.
type Country struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortCode string `json:"short_code"`
	PhoneCode int    `json:"phone_code"`
}

var countries = []Country{
	{ID: "2f1a54f6-9e1a-4bfa-9c5e-0d8f54a1b001", Name: "United Kingdom", ShortCode: "GB", PhoneCode: 44},
	{ID: "2f1a54f6-9e1a-4bfa-9c5e-0d8f54a1b002", Name: "United States", ShortCode: "US", PhoneCode: 1},
	{ID: "2f1a54f6-9e1a-4bfa-9c5e-0d8f54a1b003", Name: "Germany", ShortCode: "DE", PhoneCode: 49},
	{ID: "2f1a54f6-9e1a-4bfa-9c5e-0d8f54a1b004", Name: "France", ShortCode: "FR", PhoneCode: 33},
	{ID: "2f1a54f6-9e1a-4bfa-9c5e-0d8f54a1b005", Name: "Spain", ShortCode: "ES", PhoneCode: 34},
	{ID: "2f1a54f6-9e1a-4bfa-9c5e-0d8f54a1b006", Name: "Australia", ShortCode: "AU", PhoneCode: 61},
	{ID: "2f1a54f6-9e1a-4bfa-9c5e-0d8f54a1b007", Name: "Canada", ShortCode: "CA", PhoneCode: 1},
	{ID: "2f1a54f6-9e1a-4bfa-9c5e-0d8f54a1b008", Name: "Singapore", ShortCode: "SG", PhoneCode: 65},
}

// Geo abstracts the address-lookup provider for testing; satisfied by
// geo.Client.
type Geo interface {
	Autocomplete(ctx context.Context, query string) ([]geo.Prediction, error)
	PlaceDetails(ctx context.Context, placeID string) (*geo.Place, error)
}

type CountryHandler struct {
	geo Geo
}

func NewCountryHandler(g Geo) *CountryHandler {
	return &CountryHandler{geo: g}
}

func (h *CountryHandler) Register(router *gin.Engine) {
	router.GET("/countries", h.list)
	router.GET("/geo/autocomplete", h.autocomplete)
	router.GET("/geo/place/:id", h.place)
}

func (h *CountryHandler) list(c *gin.Context) {
	c.JSON(http.StatusOK, countries)
}

func (h *CountryHandler) autocomplete(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	predictions, err := h.geo.Autocomplete(c.Request.Context(), query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, predictions)
}

func (h *CountryHandler) place(c *gin.Context) {
	place, err := h.geo.PlaceDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, place)
}
