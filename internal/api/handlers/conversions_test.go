package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/Conceptual-Machines/tabseq-api/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:      "test",
		DefaultMaxVoices: 3,
		MaxVoicesLimit:   16,
		MaxUploadBytes:   4 << 20,
	}
}

func setupConversionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	h := NewConversionHandler(testConfig(), nil, nil)
	v1 := router.Group("/api/v1")
	v1.POST("/conversions", h.Create)
	v1.GET("/conversions", h.List)
	v1.GET("/conversions/:id", h.Get)

	return router
}

// twoNoteMIDI is a minimal single-track file: C4 for a quarter note, then
// E4 for an eighth, at 120 BPM and 480 PPQ.
func twoNoteMIDI(t *testing.T) []byte {
	t.Helper()

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(480)

	var track smf.Track
	track.Add(0, smf.MetaTempo(120))
	track.Add(0, midi.NoteOn(0, 60, 100))
	track.Add(480, midi.NoteOff(0, 60))
	track.Add(0, midi.NoteOn(0, 64, 90))
	track.Add(240, midi.NoteOff(0, 64))
	track.Close(0)
	require.NoError(t, sm.Add(track))

	var buf bytes.Buffer
	_, err := sm.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

// emptyMIDI has a tempo track but no notes.
func emptyMIDI(t *testing.T) []byte {
	t.Helper()

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(480)

	var track smf.Track
	track.Add(0, smf.MetaTempo(120))
	track.Close(0)
	require.NoError(t, sm.Add(track))

	var buf bytes.Buffer
	_, err := sm.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func multipartUpload(t *testing.T, midiBytes []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "test.mid")
	require.NoError(t, err)
	_, err = part.Write(midiBytes)
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestCreateConversionJSON(t *testing.T) {
	router := setupConversionRouter()

	body, contentType := multipartUpload(t, twoNoteMIDI(t), nil)
	req := httptest.NewRequest("POST", "/api/v1/conversions", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ConversionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "test.mid", resp.Filename)
	assert.Equal(t, 2, resp.NoteCount)
	assert.Equal(t, 480, resp.PPQ)
	assert.Equal(t, 120.0, resp.BPM)
	assert.Equal(t, 500.0, resp.MetroMs)
	assert.Equal(t, 3, resp.MaxVoices)
	require.Len(t, resp.Voices, 3)
	assert.Equal(t, []float64{60, 64}, resp.Voices[0].Pitch)
	assert.Equal(t, []float64{100, 90}, resp.Voices[0].Velocity)
	assert.Equal(t, []float64{500, 250}, resp.Voices[0].DurationMs)
	assert.Equal(t, []float64{0, 500}, resp.Voices[0].OnsetMs)
	assert.Equal(t, 127.0, resp.PitchAxis.ValueMax)
	assert.Equal(t, 500.0, resp.OnsetAxis.ValueMax)
}

func TestCreateConversionPdFormat(t *testing.T) {
	router := setupConversionRouter()

	body, contentType := multipartUpload(t, twoNoteMIDI(t), nil)
	req := httptest.NewRequest("POST", "/api/v1/conversions?format=pd", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=init_msg.txt", w.Header().Get("Content-Disposition"))

	text := w.Body.String()
	assert.Contains(t, text, "; seq_size 0 2")
	assert.Contains(t, text, "; seq_metro 0 500")
	assert.Contains(t, text, "; seq_pitch_0 0 60 64")
	assert.Contains(t, text, " \\\n")
}

func TestCreateConversionMaxVoicesField(t *testing.T) {
	router := setupConversionRouter()

	body, contentType := multipartUpload(t, twoNoteMIDI(t), map[string]string{"max_voices": "5"})
	req := httptest.NewRequest("POST", "/api/v1/conversions", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ConversionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.MaxVoices)
	assert.Len(t, resp.Voices, 5)
}

func TestCreateConversionMaxVoicesValidation(t *testing.T) {
	router := setupConversionRouter()

	tests := []struct {
		name  string
		value string
	}{
		{"zero", "0"},
		{"negative", "-1"},
		{"over limit", "17"},
		{"non numeric", "many"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartUpload(t, twoNoteMIDI(t), map[string]string{"max_voices": tt.value})
			req := httptest.NewRequest("POST", "/api/v1/conversions", body)
			req.Header.Set("Content-Type", contentType)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCreateConversionMissingFile(t *testing.T) {
	router := setupConversionRouter()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/v1/conversions", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateConversionInvalidMIDI(t *testing.T) {
	router := setupConversionRouter()

	body, contentType := multipartUpload(t, []byte("definitely not midi"), nil)
	req := httptest.NewRequest("POST", "/api/v1/conversions", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateConversionNoNotes(t *testing.T) {
	router := setupConversionRouter()

	body, contentType := multipartUpload(t, emptyMIDI(t), nil)
	req := httptest.NewRequest("POST", "/api/v1/conversions", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "no notes")
}

func TestHistoryWithoutDatabase(t *testing.T) {
	router := setupConversionRouter()

	for _, path := range []string{"/api/v1/conversions", "/api/v1/conversions/some-id"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}
