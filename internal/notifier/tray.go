package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/finlit/internal/constants"
	"github.com/julianstephens/finlit/internal/logger"
	"github.com/julianstephens/finlit/internal/models"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

var ErrTrayNotRunning = errors.New(constants.TrayExecutablePrefix + " is not running")

// TrayPayload is the body the tray app's local webhook accepts.
type TrayPayload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
	Event      Event  `json:"event"`
}

// TraySink shows toast notifications through the companion tray app. The
// tray publishes "port|pid|secret" in a lockfile; the pid is checked
// against the process table before anything is sent.
type TraySink struct {
	lockfileDir string
	client      *http.Client
	retries     int
	retryDelay  time.Duration
}

// NewTraySink reads the lockfile from dir, or from the tray app's own
// config directory when dir is empty.
func NewTraySink(dir string) *TraySink {
	return &TraySink{
		lockfileDir: dir,
		client:      &http.Client{Timeout: 5 * time.Second},
		retries:     constants.NotifyMaxRetries,
		retryDelay:  constants.NotifyRetryDelay,
	}
}

func (s *TraySink) Notify(ctx context.Context, r models.Reminder) error {
	dir := s.lockfileDir
	if dir == "" {
		var err error
		if dir, err = TrayConfigDir(); err != nil {
			return err
		}
	}

	port, secret, err := readTrayLockfile(filepath.Join(dir, constants.NotifierLockfileName))
	if err != nil {
		return err
	}

	payload := TrayPayload{
		Text:       Message(r),
		DurationMs: constants.NotificationDurationMs,
		Event:      NewEvent(r),
	}

	for attempt := 1; ; attempt++ {
		err = s.post(ctx, port, secret, payload)
		if err == nil || attempt >= s.retries {
			return err
		}
		logger.Debug("Tray notification failed, retrying", "reminder_id", r.ID, "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.retryDelay):
		}
	}
}

// TrayConfigDir returns where the tray app keeps its lockfile. The tray's
// settings.json may redirect it with settings.lockfile_dir.
func TrayConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	trayDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	data, err := os.ReadFile(filepath.Join(trayDir, "settings.json"))
	if err != nil {
		return trayDir, nil
	}
	var doc struct {
		Settings struct {
			LockfileDir *string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(data, &doc); err == nil && doc.Settings.LockfileDir != nil && *doc.Settings.LockfileDir != "" {
		return *doc.Settings.LockfileDir, nil
	}
	return trayDir, nil
}

func readTrayLockfile(path string) (port string, secret string, err error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", "", ErrTrayNotRunning
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return "", "", errors.New("lockfile is malformed")
	}

	port = strings.TrimSpace(parts[0])
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return "", "", errors.New("invalid port number in lockfile")
	}
	if portNum < 1 || portNum > 65535 {
		return "", "", fmt.Errorf("port number %d is outside valid range (1-65535)", portNum)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", "", errors.New("invalid process ID in lockfile")
	}

	secret = strings.TrimSpace(parts[2])
	if secret == "" {
		return "", "", errors.New("secret in lockfile is empty")
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return "", "", ErrTrayNotRunning
	}
	if !strings.HasPrefix(process.Executable(), constants.TrayExecutablePrefix) {
		return "", "", fmt.Errorf("process with PID %d is not %s (is %s)", pid, constants.TrayExecutablePrefix, process.Executable())
	}

	return port, secret, nil
}

func (s *TraySink) post(ctx context.Context, port, secret string, payload TrayPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://127.0.0.1:"+port, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Finlit-Secret", secret)

	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
}
