package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/james-see/carillon2asm/pkg/converter"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func uploadRequest(t *testing.T, path string, files map[string][]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for field, data := range files {
		part, err := w.CreateFormFile(field, field+".sav")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	NewRouter().ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := serve(httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("GET %s invalid json: %v", path, err)
		}
		if body["service"] != "carillon2asm" {
			t.Errorf("service = %q", body["service"])
		}
	}
}

func TestListFormats(t *testing.T) {
	rec := serve(httptest.NewRequest(http.MethodGet, "/api/v1/formats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "sav -\\u003e crlmod") && !strings.Contains(rec.Body.String(), "sav -> crlmod") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	rec := serve(httptest.NewRequest(http.MethodOptions, "/api/v1/decode", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestDecodeSav(t *testing.T) {
	req := uploadRequest(t, "/api/v1/decode", map[string][]byte{"file": make([]byte, 2*converter.BankSize)})
	rec := serve(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "MACRO loadOrderTable") {
		t.Error("response is not rendered module source")
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "file.crlmod") {
		t.Errorf("Content-Disposition = %q", rec.Header().Get("Content-Disposition"))
	}
}

func TestDecodeBanksWithWarnings(t *testing.T) {
	music := make([]byte, converter.BankSize)
	music[converter.PatternDataOffset+4] = converter.SampleTriggerMarker
	music[converter.PatternDataOffset+5] = 1

	req := uploadRequest(t, "/api/v1/decode", map[string][]byte{"music": music})
	rec := serve(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	warnings := rec.Header().Values("X-Carillon-Warning")
	if len(warnings) != 1 || !strings.Contains(warnings[0], "Sample #1") {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestDecodeNoUpload(t *testing.T) {
	req := uploadRequest(t, "/api/v1/decode", nil)
	rec := serve(req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestExportMIDI(t *testing.T) {
	req := uploadRequest(t, "/api/v1/export/midi", map[string][]byte{"file": make([]byte, converter.BankSize)})
	rec := serve(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("MThd")) {
		t.Error("response is not a MIDI file")
	}
}

func TestExportSample(t *testing.T) {
	sav := make([]byte, 2*converter.BankSize)
	sav[converter.SampleInfoOffset] = 0x41
	sav[converter.SampleInfoOffset+1] = 1

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"defined", "/api/v1/export/sample/0", http.StatusOK},
		{"undefined", "/api/v1/export/sample/1", http.StatusNotFound},
		{"out of range", "/api/v1/export/sample/16", http.StatusBadRequest},
		{"not a number", "/api/v1/export/sample/x", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(uploadRequest(t, tt.path, map[string][]byte{"file": sav}))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status == http.StatusOK && !bytes.HasPrefix(rec.Body.Bytes(), []byte("RIFF")) {
				t.Error("response is not a WAV file")
			}
		})
	}
}

func TestExportWarnings(t *testing.T) {
	music := make([]byte, converter.BankSize)
	music[converter.PatternDataOffset+4] = converter.SampleTriggerMarker
	music[converter.PatternDataOffset+5] = 2

	tests := []struct {
		path   string
		status int
	}{
		{"/api/v1/export/midi", http.StatusOK},
		{"/api/v1/export/sample/2", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := serve(uploadRequest(t, tt.path, map[string][]byte{"music": music}))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			warnings := rec.Header().Values("X-Carillon-Warning")
			if len(warnings) != 1 || !strings.Contains(warnings[0], "Sample #2") {
				t.Errorf("warnings = %v", warnings)
			}
		})
	}
}
