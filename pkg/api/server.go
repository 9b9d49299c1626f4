// Package api provides the REST API server for carillon2asm
package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/james-see/carillon2asm/pkg/converter"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Carillon2ASM API
// @version 1.0
// @description API for converting Carillon Editor savefiles to RGBDS music data
// @host localhost:8080
// @BasePath /api/v1

// StartServer starts the API server on the specified port
func StartServer(port int) error {
	return NewRouter().Run(fmt.Sprintf(":%d", port))
}

// NewRouter builds the gin engine with all routes registered
func NewRouter() *gin.Engine {
	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/decode", handleDecode)
		v1.POST("/export/midi", handleExportMIDI)
		v1.POST("/export/sample/:index", handleExportSample)
		v1.GET("/formats", listFormats)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "carillon2asm",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns the accepted inputs and produced outputs
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":     []string{"sav", "bin", "crlmod", "midi", "wav"},
		"conversions": converter.GetSupportedConversions(),
	})
}

func readUpload(c *gin.Context, field string) ([]byte, *multipart.FileHeader, error) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = file.Close() }()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, err
	}
	return data, header, nil
}

// loadBanks accepts either a combined "file" upload or a "music" upload
// with an optional "sample" upload.
func loadBanks(c *gin.Context) (*converter.Banks, string, error) {
	if data, header, err := readUpload(c, "file"); err == nil {
		banks, err := converter.SplitSav(data)
		return banks, header.Filename, err
	}

	music, header, err := readUpload(c, "music")
	if err != nil {
		return nil, "", converter.ErrNoMusicSource
	}
	sample, _, err := readUpload(c, "sample")
	if err != nil {
		sample = nil
	}
	banks, err := converter.NewBanks(music, sample)
	return banks, header.Filename, err
}

// setWarningHeaders reports decode warnings, one header value each
func setWarningHeaders(c *gin.Context, warnings []converter.Warning) {
	for _, w := range warnings {
		c.Writer.Header().Add("X-Carillon-Warning", w.Message)
	}
}

// handleDecode godoc
// @Summary Convert a savefile to RGBDS music data
// @Description Upload a .sav file (or music/sample banks) and receive a .crlmod file
// @Tags convert
// @Accept multipart/form-data
// @Produce text/plain
// @Param file formData file false "Combined .sav file"
// @Param music formData file false "Music bank dump"
// @Param sample formData file false "Sample bank dump"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/decode [post]
func handleDecode(c *gin.Context) {
	banks, name, err := loadBanks(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := converter.New().ConvertBanks(banks)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	setWarningHeaders(c, res.Warnings)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", converter.DefaultOutputPath(name, converter.ModuleExt)))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", res.Output)
}

// handleExportMIDI godoc
// @Summary Export a savefile's song as MIDI
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file false "Combined .sav file"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/export/midi [post]
func handleExportMIDI(c *gin.Context) {
	banks, name, err := loadBanks(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conv := converter.New()
	song, err := converter.Decode(banks)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	setWarningHeaders(c, song.Warnings)
	result, err := conv.SongToMIDI(song)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", converter.DefaultOutputPath(name, ".mid")))
	c.Data(http.StatusOK, "audio/midi", result)
}

// handleExportSample godoc
// @Summary Export one sample slot as WAV
// @Tags convert
// @Accept multipart/form-data
// @Produce audio/wav
// @Param index path int true "Sample slot (0-15)"
// @Param file formData file false "Combined .sav file"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/export/sample/{index} [post]
func handleExportSample(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil || idx < 0 || idx >= converter.SampleSlots {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sample index"})
		return
	}

	banks, name, err := loadBanks(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	song, err := converter.Decode(banks)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	setWarningHeaders(c, song.Warnings)
	s := song.Samples[idx]
	if s == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Sample #%X is not defined", idx)})
		return
	}

	// the WAV encoder needs to seek back to patch chunk sizes
	tmp, err := os.CreateTemp("", "carillon-sample-*.wav")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()
	if err := converter.EncodeSampleWAV(tmp, s); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	data, err := os.ReadFile(tmp.Name())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", converter.SampleFileName(name, idx)))
	c.Data(http.StatusOK, "audio/wav", data)
}
