package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries all runtime settings. It is passed explicitly into the
// collaborators; nothing reads the environment after Load returns, which
// keeps the parser and aggregator testable without credentials.
type Config struct {
	Port        string
	DatabaseURL string

	// Mail fetching
	MailProvider    string // "gmail" or "imap"
	CredentialsFile string
	CredentialsJSON string // inline alternative to CredentialsFile
	TokenFile       string
	AltitudeLabel   string
	ImapServer      string
	ImapPort        int
	ImapUsername    string
	ImapPassword    string
	ImapFolder      string

	// Parsing
	CaregiverSignature string
	Timezone           string

	// Delivery
	NotifierProvider string // "gmail" or "smtp"
	SenderName       string
	SenderEmail      string
	RecipientEmail   string
	SMTPServer       string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string

	// Trigger auth
	CronSecret string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		MailProvider:    getEnv("MAIL_PROVIDER", "gmail"),
		CredentialsFile: getEnv("GMAIL_CREDENTIALS_FILE", "credentials.json"),
		CredentialsJSON: getEnv("GMAIL_CREDENTIALS_JSON", ""),
		TokenFile:       getEnv("GMAIL_TOKEN_FILE", "token.json"),
		AltitudeLabel:   getEnv("ALTITUDE_LABEL", "altitude"),
		ImapServer:      getEnv("IMAP_SERVER", ""),
		ImapPort:        getIntEnv("IMAP_PORT", 993),
		ImapUsername:    getEnv("IMAP_USERNAME", ""),
		ImapPassword:    getEnv("IMAP_PASSWORD", ""),
		ImapFolder:      getEnv("IMAP_FOLDER", "INBOX"),

		CaregiverSignature: getEnv("CAREGIVER_SIGNATURE", "Kavitha"),
		Timezone:           getEnv("TIMEZONE", "Local"),

		NotifierProvider: getEnv("NOTIFIER_PROVIDER", "gmail"),
		SenderName:       getEnv("SENDER_NAME", "Altitude Summary"),
		SenderEmail:      getEnv("SENDER_EMAIL", ""),
		RecipientEmail:   getEnv("RECIPIENT_EMAIL", ""),
		SMTPServer:       getEnv("SMTP_SERVER", "smtp.gmail.com"),
		SMTPPort:         getIntEnv("SMTP_PORT", 587),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),

		CronSecret: getEnv("CRON_SECRET", ""),
	}
}

// Location resolves the configured timezone, falling back to local time.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
