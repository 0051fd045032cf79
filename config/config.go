package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig     `yaml:"server"`
	Storage     StorageConfig    `yaml:"storage"`
	Media       MediaConfig      `yaml:"media"`
	Groq        GroqConfig       `yaml:"groq"`
	HuggingFace HFConfig         `yaml:"huggingface"`
	ElevenLabs  ElevenLabsConfig `yaml:"elevenlabs"`
	Log         LogConfig        `yaml:"log"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type StorageConfig struct {
	UploadDir     string `yaml:"upload_dir"`
	ReplyDir      string `yaml:"reply_dir"`
	Retention     string `yaml:"retention"`
	SweepInterval string `yaml:"sweep_interval"`
}

type MediaConfig struct {
	FFprobePath      string  `yaml:"ffprobe_path"`
	FFmpegPath       string  `yaml:"ffmpeg_path"`
	ProbeTimeout     string  `yaml:"probe_timeout"`
	TranscodeTimeout string  `yaml:"transcode_timeout"`
	MinDuration      float64 `yaml:"min_duration"`
}

type GroqConfig struct {
	APIKey       string `yaml:"api_key"`
	WhisperModel string `yaml:"whisper_model"`
	ChatModel    string `yaml:"chat_model"`
}

type HFConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type ElevenLabsConfig struct {
	APIKey  string `yaml:"api_key"`
	VoiceID string `yaml:"voice_id"`
	Model   string `yaml:"model"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	if c.Storage.UploadDir == "" {
		c.Storage.UploadDir = "uploaded_audio"
	}
	if c.Storage.ReplyDir == "" {
		c.Storage.ReplyDir = "voice_replies"
	}
	if c.Storage.Retention == "" {
		c.Storage.Retention = "24h"
	}
	if c.Storage.SweepInterval == "" {
		c.Storage.SweepInterval = "0"
	}
	if c.Media.FFprobePath == "" {
		c.Media.FFprobePath = "ffprobe"
	}
	if c.Media.FFmpegPath == "" {
		c.Media.FFmpegPath = "ffmpeg"
	}
	if c.Media.ProbeTimeout == "" {
		c.Media.ProbeTimeout = "10s"
	}
	if c.Media.TranscodeTimeout == "" {
		c.Media.TranscodeTimeout = "30s"
	}
	if c.Media.MinDuration == 0 {
		c.Media.MinDuration = 1.0
	}
	if c.Groq.WhisperModel == "" {
		c.Groq.WhisperModel = "whisper-large-v3-turbo"
	}
	if c.Groq.ChatModel == "" {
		c.Groq.ChatModel = "llama-3.3-70b-versatile"
	}
	if c.HuggingFace.Model == "" {
		c.HuggingFace.Model = "j-hartmann/emotion-english-distilroberta-base"
	}
	if c.ElevenLabs.VoiceID == "" {
		c.ElevenLabs.VoiceID = "21m00Tcm4TlvDq8ikWAM"
	}
	if c.ElevenLabs.Model == "" {
		c.ElevenLabs.Model = "eleven_turbo_v2"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}
