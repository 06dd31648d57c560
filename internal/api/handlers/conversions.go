package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Conceptual-Machines/tabseq-api/internal/config"
	"github.com/Conceptual-Machines/tabseq-api/internal/logger"
	"github.com/Conceptual-Machines/tabseq-api/internal/metrics"
	"github.com/Conceptual-Machines/tabseq-api/internal/midifile"
	"github.com/Conceptual-Machines/tabseq-api/internal/models"
	"github.com/Conceptual-Machines/tabseq-api/internal/render"
	"github.com/Conceptual-Machines/tabseq-api/internal/sequencer"
)

const (
	formatJSON = "json"
	formatPd   = "pd"

	defaultHistoryLimit = 50
)

// ConversionHandler serves MIDI-to-table conversions and their history.
// db may be nil; the service then runs stateless and history endpoints 404.
type ConversionHandler struct {
	cfg        *config.Config
	db         *gorm.DB
	cloudwatch *metrics.Client
	sentry     *metrics.SentryMetrics
}

func NewConversionHandler(cfg *config.Config, db *gorm.DB, cw *metrics.Client) *ConversionHandler {
	return &ConversionHandler{
		cfg:        cfg,
		db:         db,
		cloudwatch: cw,
		sentry:     metrics.NewSentryMetrics(),
	}
}

// VoiceTables is one voice rendered as the parallel arrays the playback
// target loads. All three arrays share the conversion's table length.
type VoiceTables struct {
	Pitch      []float64 `json:"pitch"`
	Velocity   []float64 `json:"velocity"`
	DurationMs []float64 `json:"duration_ms"`
	OnsetMs    []float64 `json:"onset_ms"`
}

// ConversionResponse is the JSON body for a successful conversion.
type ConversionResponse struct {
	ID        string  `json:"id"`
	Filename  string  `json:"filename"`
	NoteCount int     `json:"note_count"`
	PPQ       int     `json:"ppq"`
	BPM       float64 `json:"bpm"`
	MetroMs   float64 `json:"metro_ms"`
	TableLen  int     `json:"table_len"`
	MaxVoices int     `json:"max_voices"`

	Voices []VoiceTables `json:"voices"`

	PitchAxis    sequencer.AxisSpec `json:"pitch_axis"`
	VelocityAxis sequencer.AxisSpec `json:"velocity_axis"`
	DurationAxis sequencer.AxisSpec `json:"duration_axis"`
	OnsetAxis    sequencer.AxisSpec `json:"onset_axis"`
}

// Create converts an uploaded MIDI file into voice tables.
// Multipart fields: "file" (required), "max_voices" (optional).
// ?format=pd returns the rendered PlugData init message instead of JSON.
func (h *ConversionHandler) Create(c *gin.Context) {
	start := time.Now()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUploadBytes)

	maxVoices, err := h.maxVoicesParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing MIDI upload in form field 'file'"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload: " + err.Error()})
		return
	}
	defer f.Close()

	events, ppq, err := midifile.Parse(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid MIDI file: " + err.Error()})
		return
	}

	result, err := sequencer.Convert(events, ppq, maxVoices)
	if err != nil {
		h.recordConversion(c, nil, time.Since(start))
		if errors.Is(err, sequencer.ErrNoNotes) {
			// Terminal for the run: nothing is persisted, no partial
			// tables are emitted.
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.recordConversion(c, result, time.Since(start))

	id := uuid.New().String()
	h.persist(c, id, fileHeader.Filename, maxVoices, result)

	logger.Info("Conversion completed", logger.Fields{
		"request_id": c.GetString("request_id"),
		"filename":   fileHeader.Filename,
		"notes":      result.NoteCount,
		"voices":     maxVoices,
		"table_len":  result.TableLen,
	})

	if c.DefaultQuery("format", formatJSON) == formatPd {
		c.Header("Content-Disposition", "attachment; filename=init_msg.txt")
		c.String(http.StatusOK, render.InitMessage(result))
		return
	}

	c.JSON(http.StatusOK, toResponse(id, fileHeader.Filename, maxVoices, result))
}

// List returns recent conversion summaries, newest first.
func (h *ConversionHandler) List(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversion history is not enabled"})
		return
	}

	var conversions []models.Conversion
	if err := h.db.Order("created_at DESC").Limit(defaultHistoryLimit).Find(&conversions).Error; err != nil {
		logger.Error("Failed to list conversions", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list conversions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversions": conversions})
}

// Get returns one conversion summary by id.
func (h *ConversionHandler) Get(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversion history is not enabled"})
		return
	}

	var conversion models.Conversion
	if err := h.db.First(&conversion, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversion not found"})
			return
		}
		logger.Error("Failed to load conversion", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversion"})
		return
	}

	c.JSON(http.StatusOK, conversion)
}

func (h *ConversionHandler) maxVoicesParam(c *gin.Context) (int, error) {
	raw := c.PostForm("max_voices")
	if raw == "" {
		raw = c.Query("max_voices")
	}
	if raw == "" {
		return h.cfg.DefaultMaxVoices, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("max_voices must be an integer")
	}
	if n < 1 || n > h.cfg.MaxVoicesLimit {
		return 0, errors.New("max_voices must be between 1 and " + strconv.Itoa(h.cfg.MaxVoicesLimit))
	}
	return n, nil
}

func (h *ConversionHandler) recordConversion(c *gin.Context, result *sequencer.Result, duration time.Duration) {
	success := result != nil
	noteCount := 0
	tableLen := 0
	if success {
		noteCount = result.NoteCount
		tableLen = result.TableLen
	}

	if h.cloudwatch != nil {
		h.cloudwatch.RecordConversion(noteCount, tableLen, duration, success)
	}
	h.sentry.RecordConversionDuration(c.Request.Context(), duration, noteCount, success)
}

// persist writes the history row. Failure to persist never fails the
// request; the conversion result is already computed and valid.
func (h *ConversionHandler) persist(c *gin.Context, id, filename string, maxVoices int, result *sequencer.Result) {
	if h.db == nil {
		return
	}

	conversion := models.Conversion{
		ID:        id,
		Filename:  filename,
		MaxVoices: maxVoices,
		NoteCount: result.NoteCount,
		TableLen:  result.TableLen,
		PPQ:       result.PPQ,
		BPM:       result.BPM,
		MetroMs:   result.MetroMs,
	}
	if err := h.db.Create(&conversion).Error; err != nil {
		logger.Error("Failed to persist conversion", err, logger.WithContext(c))
	}
}

func toResponse(id, filename string, maxVoices int, result *sequencer.Result) ConversionResponse {
	voices := make([]VoiceTables, len(result.Voices))
	for i, v := range result.Voices {
		voices[i] = VoiceTables{
			Pitch:      v.Pitches(),
			Velocity:   v.Velocities(),
			DurationMs: v.Durations(),
			OnsetMs:    v.Onsets(),
		}
	}

	return ConversionResponse{
		ID:           id,
		Filename:     filename,
		NoteCount:    result.NoteCount,
		PPQ:          result.PPQ,
		BPM:          result.BPM,
		MetroMs:      result.MetroMs,
		TableLen:     result.TableLen,
		MaxVoices:    maxVoices,
		Voices:       voices,
		PitchAxis:    result.PitchAxis,
		VelocityAxis: result.VelocityAxis,
		DurationAxis: result.DurationAxis,
		OnsetAxis:    result.OnsetAxis,
	}
}
