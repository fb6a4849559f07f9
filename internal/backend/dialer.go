package backend

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Dialer places a plain voice call through a local client when no telephony
// provider is configured. It cannot speak a message.
type Dialer interface {
	Name() string
	Dial(ctx context.Context, phone string) (string, error)
}

// ============================================================
// Skype
// ============================================================

// SkypeDialer hands a skype: call URI to the desktop.
type SkypeDialer struct {
	Launcher Launcher
}

func (s SkypeDialer) Name() string { return "skype" }

func (s SkypeDialer) Dial(ctx context.Context, phone string) (string, error) {
	if s.Launcher == nil {
		return "", errors.New("no launcher for skype")
	}
	if err := s.Launcher.OpenURL(ctx, "skype:"+phone+"?call"); err != nil {
		return "", fmt.Errorf("skype call failed: %w", err)
	}
	return fmt.Sprintf("Attempting to call %s via Skype", phone), nil
}

// ============================================================
// Android (adb)
// ============================================================

type outputFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// ADBDialer starts a call on an Android device attached over USB debugging.
type ADBDialer struct {
	output outputFunc
	logger *zap.Logger
}

// NewADBDialer creates a dialer that runs the adb binary from PATH.
func NewADBDialer(logger *zap.Logger) *ADBDialer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ADBDialer{output: commandOutput, logger: logger.Named("adb")}
}

func (a *ADBDialer) Name() string { return "adb" }

func (a *ADBDialer) Dial(ctx context.Context, phone string) (string, error) {
	out, err := a.output(ctx, "adb", "devices")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", errors.New("adb not found, install Android platform tools")
		}
		return "", fmt.Errorf("adb devices: %w", err)
	}
	if !hasDevice(out) {
		return "", errors.New("no Android device connected, connect via USB and enable USB debugging")
	}

	a.logger.Debug("dialing", zap.String("phone", phone))
	if _, err := a.output(ctx, "adb", "shell", "am", "start",
		"-a", "android.intent.action.CALL", "-d", "tel:"+phone); err != nil {
		return "", fmt.Errorf("adb call: %w", err)
	}
	return fmt.Sprintf("Calling %s on connected Android device", phone), nil
}

// hasDevice reports whether `adb devices` lists an authorized device.
func hasDevice(out []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 2 && fields[1] == "device" {
			return true
		}
	}
	return false
}

func commandOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return out, fmt.Errorf("%w: %s", err, msg)
		}
		return out, err
	}
	return out, nil
}
