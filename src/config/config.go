package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

var API_ENV = os.Getenv("API_ENV")

// Snapshot holds operator-set values resolved once at startup. It is passed
// explicitly into the engine, allocator and sweeps instead of being re-read
// from the environment on every run.
type Snapshot struct {
	CodeLength         int
	OfflineWaitingDays int
	PendingTTL         time.Duration
	ReminderWindow     time.Duration
	ExpirySweepEvery   time.Duration
	StuckSweepEvery    time.Duration
	ReminderSweepEvery time.Duration
	CodeGenSweepEvery  time.Duration
	ExpirySweepOff     bool
	StuckSweepOff      bool
	ReminderSweepOff   bool
	CodeGenSweepOff    bool
}

func LoadSnapshot() Snapshot {
	return Snapshot{
		CodeLength:         envInt("SPECIAL_CODE_LENGTH", 6),
		OfflineWaitingDays: envInt("OFFLINE_PAYMENT_WAITING_DAYS", 14),
		PendingTTL:         envDuration("RESERVATION_PENDING_TTL", 30*time.Minute),
		ReminderWindow:     envDuration("OFFLINE_REMINDER_WINDOW", 48*time.Hour),
		ExpirySweepEvery:   envDuration("SWEEP_EXPIRY_INTERVAL", 30*time.Second),
		StuckSweepEvery:    envDuration("SWEEP_STUCK_INTERVAL", 30*time.Second),
		ReminderSweepEvery: envDuration("SWEEP_REMINDER_INTERVAL", 30*time.Minute),
		CodeGenSweepEvery:  envDuration("SWEEP_CODEGEN_INTERVAL", 30*time.Second),
		ExpirySweepOff:     envBool("SWEEP_EXPIRY_DISABLED"),
		StuckSweepOff:      envBool("SWEEP_STUCK_DISABLED"),
		ReminderSweepOff:   envBool("SWEEP_REMINDER_DISABLED"),
		CodeGenSweepOff:    envBool("SWEEP_CODEGEN_DISABLED"),
	}
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	atoi, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return atoi
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envBool(key string) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return false
	}
	return b
}
