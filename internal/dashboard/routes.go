package dashboard

import (
	"io/fs"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// listLimit caps the number of leads shown on the index page.
const listLimit = 100

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, db *gorm.DB) {
	// Embedded static assets (served from assets/ subdir of the embed.FS).
	staticFS, _ := fs.Sub(assetsFS, "assets")
	router.StaticFS("/static", http.FS(staticFS))

	// Pages.
	router.GET("/", handleIndex(db))
	router.GET("/leads/:id", handleLeadDetail(db))

	// JSON API.
	router.GET("/api/summary", handleAPISummary(db))
	router.GET("/api/leads", handleAPILeads(db))
	router.GET("/api/leads/:id", handleAPILeadDetail(db))
}

func handleIndex(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := StatusSummary(db)
		if err != nil {
			c.String(http.StatusInternalServerError, "summary query failed")
			return
		}
		leads, err := LeadList(db, listLimit)
		if err != nil {
			c.String(http.StatusInternalServerError, "lead query failed")
			return
		}
		c.HTML(http.StatusOK, "index.html", gin.H{
			"Summary": summary,
			"Leads":   leads,
		})
	}
}

func handleLeadDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.String(http.StatusBadRequest, "bad lead id")
			return
		}
		detail, err := GetLeadDetail(db, uint(id))
		if err == ErrNotFound {
			c.String(http.StatusNotFound, "lead not found")
			return
		}
		if err != nil {
			c.String(http.StatusInternalServerError, "lead query failed")
			return
		}
		c.HTML(http.StatusOK, "lead.html", gin.H{
			"Lead": detail,
		})
	}
}

func handleAPISummary(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := StatusSummary(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "summary query failed"})
			return
		}
		counts := make(map[string]int64, len(summary.Statuses))
		for _, sc := range summary.Statuses {
			counts[sc.Status] = sc.Count
		}
		c.JSON(http.StatusOK, gin.H{
			"counts": counts,
			"total":  summary.Total,
		})
	}
}

func handleAPILeads(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		leads, err := LeadList(db, listLimit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lead query failed"})
			return
		}
		c.JSON(http.StatusOK, leads)
	}
}

func handleAPILeadDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad lead id"})
			return
		}
		detail, err := GetLeadDetail(db, uint(id))
		if err == ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lead query failed"})
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}
