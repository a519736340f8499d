package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"os"

	"github.com/joho/godotenv"

	"opscloud/sheets"
)

type Config struct {
	AppName    string `json:"app_name"`
	ListenIP   string `json:"listen_ip"`
	ListenPort int    `json:"listen_port"`
	SessionKey string `json:"session_key"`
	ScriptURL  string `json:"script_url"`
}

var AppConfig Config

func LoadConfig(path string) error {
	// .env is optional; plain environment variables work the same way
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&AppConfig); err != nil {
		return err
	}

	// Override with environment variables if present
	if envKey := os.Getenv("OPSCLOUD_SESSION_KEY"); envKey != "" {
		AppConfig.SessionKey = envKey
	}
	if envURL := os.Getenv("OPSCLOUD_SCRIPT_URL"); envURL != "" {
		AppConfig.ScriptURL = envURL
	}

	// Without a configured deployment the app runs against demo fixtures.
	if AppConfig.ScriptURL == "" {
		AppConfig.ScriptURL = sheets.DefaultScriptURL
	}

	// If no key is provided or it's the placeholder, generate a secure random one
	if AppConfig.SessionKey == "" || AppConfig.SessionKey == "CHANGE_ME_IN_PRODUCTION" {
		log.Println("WARNING: No session key configured. Generating a random key. Sessions will be invalidated on restart.")
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err != nil {
			return err
		}
		AppConfig.SessionKey = hex.EncodeToString(randomKey)
	}

	return nil
}
