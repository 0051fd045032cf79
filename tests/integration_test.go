package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"calmmate/internal/application"
	"calmmate/internal/infra/elevenlabs"
	"calmmate/internal/infra/groq"
	"calmmate/internal/infra/httpapi"
	"calmmate/internal/infra/huggingface"
	"calmmate/internal/infra/media"
	"calmmate/internal/infra/storage"
)

// The full pipeline against vendor doubles: upload a clip whose direct
// transcription is rejected, watch the fallback conversion carry it through,
// then speak the reply.
func TestPipeline_EndToEnd(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// Whisper double: rejects the webm container, recognizes the wav retry.
	whisperCalls := 0
	whisperSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		whisperCalls++
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		_, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		if strings.HasSuffix(header.Filename, ".webm") {
			http.Error(w, `{"error":"could not process file"}`, http.StatusBadRequest)
			return
		}
		w.Write([]byte("I feel anxious today"))
	}))
	defer whisperSrv.Close()

	emotionSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[[{"label":"fear","score":0.82}]]`))
	}))
	defer emotionSrv.Close()

	chatSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"I hear that fear is close by today. What might bring you a little ease?"}}]}`))
	}))
	defer chatSrv.Close()

	ttsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("fake mp3"))
	}))
	defer ttsSrv.Close()

	uploads, err := storage.NewStore(t.TempDir(), "webm")
	if err != nil {
		t.Fatal(err)
	}
	replies, err := storage.NewStore(t.TempDir(), "mp3")
	if err != nil {
		t.Fatal(err)
	}

	scripts := t.TempDir()
	ffprobe := filepath.Join(scripts, "ffprobe.sh")
	if err := os.WriteFile(ffprobe, []byte("#!/bin/sh\necho \"5.2\"\n"), 0755); err != nil {
		t.Fatal(err)
	}
	ffmpeg := filepath.Join(scripts, "ffmpeg.sh")
	if err := os.WriteFile(ffmpeg, []byte("#!/bin/sh\ncp \"$2\" \"$7\"\n"), 0755); err != nil {
		t.Fatal(err)
	}

	prober := media.NewProber(ffprobe, 5*time.Second)
	transcoder := media.NewTranscoder(ffmpeg, 5*time.Second)

	normalizer := application.NewNormalizer(prober, transcoder, 1.0, logger)
	transcriber := application.NewTranscriber(
		groq.NewWhisperClientWithURL("test-key", "whisper-test", whisperSrv.URL),
		normalizer,
		logger,
	)
	emotions := application.NewEmotionAnalyzer(
		huggingface.NewClassifierWithURL("test-key", "m", emotionSrv.URL),
		logger,
	)
	composer := application.NewReplyComposer(
		groq.NewChatClientWithURL("test-key", "chat-test", chatSrv.URL),
	)
	therapist := application.NewTherapist(uploads, normalizer, transcriber, emotions, composer, logger)
	voice := application.NewVoiceReplies(
		elevenlabs.NewClientWithURL("test-key", "voice-1", "", ttsSrv.URL),
		replies,
		logger,
	)

	server := httpapi.NewServer(":0", uploads, therapist, voice, replies.Dir(), nil, logger)
	handler := server.Handler()

	// 1) Upload.
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "recording.webm")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("five seconds of webm"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload_audio", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("upload status: %d, body %s", rec.Code, rec.Body.String())
	}
	var uploadResp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &uploadResp); err != nil {
		t.Fatal(err)
	}
	fileID := uploadResp["file_id"]
	if fileID == "" {
		t.Fatal("no file_id in upload response")
	}
	if !uploads.Exists(fileID) {
		t.Fatal("uploaded artifact missing from store")
	}

	// 2) Analyze.
	req = httptest.NewRequest(http.MethodGet, "/analyze_audio/"+fileID, nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("analyze status: %d, body %s", rec.Code, rec.Body.String())
	}

	var analyzeResp struct {
		Transcript string  `json:"transcript"`
		Emotion    string  `json:"emotion"`
		Confidence float64 `json:"confidence"`
		Reply      string  `json:"reply"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &analyzeResp); err != nil {
		t.Fatal(err)
	}

	if analyzeResp.Transcript != "I feel anxious today" {
		t.Errorf("transcript: got %q", analyzeResp.Transcript)
	}
	if analyzeResp.Emotion != "fear" || analyzeResp.Confidence != 0.82 {
		t.Errorf("emotion: got (%s, %v)", analyzeResp.Emotion, analyzeResp.Confidence)
	}
	if !strings.Contains(analyzeResp.Reply, "fear") {
		t.Errorf("reply should reference the detected state: %q", analyzeResp.Reply)
	}
	if whisperCalls != 2 {
		t.Errorf("whisper calls: got %d, want primary + fallback", whisperCalls)
	}

	// 3) Speak the reply.
	req = httptest.NewRequest(http.MethodPost, "/speak", strings.NewReader(`{"text":"`+analyzeResp.Reply+`"}`))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("speak status: %d, body %s", rec.Code, rec.Body.String())
	}
	var speakResp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &speakResp); err != nil {
		t.Fatal(err)
	}
	if !replies.Exists(speakResp["file_id"]) {
		t.Error("voice reply artifact missing from store")
	}
}

// Sweeping must not disturb artifacts inside the retention window.
func TestPipeline_SweepLeavesFreshUploads(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	uploads, err := storage.NewStore(t.TempDir(), "webm")
	if err != nil {
		t.Fatal(err)
	}

	id, err := uploads.Put([]byte("audio"), "webm")
	if err != nil {
		t.Fatal(err)
	}

	sweeper := storage.NewSweeper(24*time.Hour, logger)
	sweeper.SweepAll(uploads)

	if !uploads.Exists(id) {
		t.Error("fresh upload swept away")
	}
}
