package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/brainink/hub/internal/setup/config"
	"github.com/brainink/hub/internal/setup/telemetry/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// sessionDirLayout names each run's log directory.
const sessionDirLayout = "2006-01-02_15-04-05"

// Manager handles the creation and management of log files and directories.
// Every run writes into its own timestamped session directory.
type Manager struct {
	instanceID        string // Unique identifier for this program instance
	currentSessionDir string // Path to the current session's log directory
	logDir            string // Base directory for all logs
	level             string // Logging level (debug, info, warn, error)
	maxLogsToKeep     int    // Maximum number of log sessions to retain
	maxLogLines       int    // Maximum number of lines to keep in each log file
}

// NewManager creates a new Manager instance.
func NewManager(logDir string, debugCfg *config.Debug) *Manager {
	return &Manager{
		instanceID:    uuid.New().String(),
		logDir:        logDir,
		level:         debugCfg.LogLevel,
		maxLogsToKeep: debugCfg.MaxLogsToKeep,
		maxLogLines:   debugCfg.MaxLogLines,
	}
}

// GetLogger initializes the main application logger.
func (lm *Manager) GetLogger() (*zap.Logger, error) {
	if err := lm.setupLogDirectories(); err != nil {
		return nil, err
	}

	mainLogger, err := lm.initLogger(filepath.Join(lm.currentSessionDir, "main.log"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize main logger: %w", err)
	}

	return mainLogger.With(zap.String("instanceID", lm.instanceID)), nil
}

// GetInstanceID returns the unique instance identifier for this program run.
func (lm *Manager) GetInstanceID() string {
	return lm.instanceID
}

// GetCurrentSessionDir returns the current session directory.
func (lm *Manager) GetCurrentSessionDir() string {
	return lm.currentSessionDir
}

// setupLogDirectories ensures the base directory exists, rotates old sessions,
// and creates a new session directory.
func (lm *Manager) setupLogDirectories() error {
	if err := os.MkdirAll(lm.logDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	// The new session counts toward the limit
	if err := lm.rotateLogSessions(lm.maxLogsToKeep - 1); err != nil {
		return fmt.Errorf("failed to rotate log sessions: %w", err)
	}

	lm.currentSessionDir = filepath.Join(lm.logDir, time.Now().Format(sessionDirLayout))
	if err := os.MkdirAll(lm.currentSessionDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	return nil
}

// initLogger creates a zap logger writing to a line-bounded file with an
// OpenTelemetry core for error entries.
func (lm *Manager) initLogger(path string) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(lm.level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file %s: %w", path, err)
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	fileCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(logger.NewRotator(file, lm.maxLogLines, path)),
		zapLevel,
	)

	return zap.New(
		zapcore.NewTee(fileCore, NewCore(zapcore.ErrorLevel)),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

// rotateLogSessions removes the oldest session directories until at most keep remain.
func (lm *Manager) rotateLogSessions(keep int) error {
	sessions, err := filepath.Glob(filepath.Join(lm.logDir, "*"))
	if err != nil {
		return err
	}

	keep = max(keep, 0)
	if len(sessions) <= keep {
		return nil
	}

	// Sort sessions by modification time (oldest first)
	sort.Slice(sessions, func(i, j int) bool {
		iInfo, _ := os.Stat(sessions[i])
		jInfo, _ := os.Stat(sessions[j])

		return iInfo.ModTime().Before(jInfo.ModTime())
	})

	for _, session := range sessions[:len(sessions)-keep] {
		if err := os.RemoveAll(session); err != nil {
			return err
		}
	}

	return nil
}
