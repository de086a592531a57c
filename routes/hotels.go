package routes

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"

	"hotel-recommender/internal/logger"
	"hotel-recommender/internal/recommend"
	"hotel-recommender/models"
	"hotel-recommender/services"
	"hotel-recommender/utils"

	"github.com/gin-gonic/gin"
)

// HotelLister is the catalog as seen by the handlers.
type HotelLister interface {
	List(ctx context.Context) ([]models.HotelSummary, error)
}

// Recommender answers similar-hotel queries.
type Recommender interface {
	Similar(ctx context.Context, hotelName string, topN int) ([]models.SimilarHotel, error)
}

func SetupHotelRoutes(api *gin.RouterGroup, catalog HotelLister, recommender Recommender) {
	api.GET("/hotels", handleListHotels(catalog))
	api.GET("/hotels/export", handleExportHotels(catalog))
	api.GET("/similar_hotels", handleSimilarHotels(recommender))
}

func handleListHotels(catalog HotelLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		hotels, err := catalog.List(ctx)
		if err != nil {
			logger.Error("Failed to list hotels", "error", err)
			utils.RespondWithInternalError(c, "Failed to load hotel data", nil)
			return
		}
		if hotels == nil {
			hotels = []models.HotelSummary{}
		}
		c.JSON(http.StatusOK, hotels)
	}
}

func handleExportHotels(catalog HotelLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		format, err := services.ParseExportFormat(c.Query("format"))
		if err != nil {
			utils.RespondWithBadRequest(c, "format must be xlsx or csv", gin.H{"format": c.Query("format")})
			return
		}

		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		hotels, err := catalog.List(ctx)
		if err != nil {
			logger.Error("Failed to list hotels for export", "error", err)
			utils.RespondWithInternalError(c, "Failed to load hotel data", nil)
			return
		}

		var buf bytes.Buffer
		if err := services.ExportHotels(&buf, format, hotels); err != nil {
			logger.Error("Failed to export hotels", "format", format, "error", err)
			utils.RespondWithInternalError(c, "Failed to export hotels", nil)
			return
		}

		c.Header("Content-Disposition", `attachment; filename="hotels.`+string(format)+`"`)
		c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
	}
}

func handleSimilarHotels(recommender Recommender) gin.HandlerFunc {
	return func(c *gin.Context) {
		hotelName := c.Query("hotel_name")
		if hotelName == "" {
			utils.RespondWithBadRequest(c, "hotel_name is required", nil)
			return
		}

		topN := recommend.DefaultTopN
		if raw, ok := c.GetQuery("top_n"); ok {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				utils.RespondWithBadRequest(c, "top_n must be a positive integer", gin.H{"top_n": raw})
				return
			}
			topN = n
		}

		results, err := recommender.Similar(c.Request.Context(), hotelName, topN)
		if errors.Is(err, recommend.ErrInvalidTopN) {
			utils.RespondWithBadRequest(c, "top_n must be a positive integer", nil)
			return
		}
		if err != nil {
			logger.Error("Failed to compute similar hotels", "hotel_name", hotelName, "error", err)
			utils.RespondWithInternalError(c, "Failed to compute recommendations", nil)
			return
		}
		if results == nil {
			results = []models.SimilarHotel{}
		}
		c.JSON(http.StatusOK, results)
	}
}
