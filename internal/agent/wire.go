package agent

import (
	"time"

	"go.uber.org/zap"

	"github.com/flynn-ai/deskpilot/internal/backend"
	"github.com/flynn-ai/deskpilot/internal/classifier"
	"github.com/flynn-ai/deskpilot/internal/config"
	"github.com/flynn-ai/deskpilot/internal/executor"
	"github.com/flynn-ai/deskpilot/internal/history"
	"github.com/flynn-ai/deskpilot/internal/messaging"
	"github.com/flynn-ai/deskpilot/internal/stats"
	"github.com/flynn-ai/deskpilot/internal/telephony"
)

// Options adjusts Build.
type Options struct {
	// NoHistory skips opening the history database
	NoHistory bool

	// Backends replaces the OS backends built from the configuration
	Backends *backend.Set
}

// Build assembles an assistant from the loaded configuration: the desktop
// launcher, the messaging services and their scheduler, Twilio and the
// history store. The scheduler is running when Build returns; Close stops it.
func Build(cfg *config.Config, logger *zap.Logger, opts Options) (*Assistant, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		backends  backend.Set
		scheduler *messaging.Scheduler
	)
	if opts.Backends != nil {
		backends = *opts.Backends
	} else {
		desktop := backend.NewDesktop(logger)
		whatsapp := messaging.NewWhatsApp(messaging.WhatsAppConfig{
			Mode: cfg.WhatsApp.Mode,
			Wait: time.Duration(cfg.WhatsApp.WaitSeconds) * time.Second,
		}, desktop, logger)
		email := messaging.NewEmail(messaging.EmailConfig{
			Address:    cfg.Email.Address,
			Password:   cfg.Email.Password,
			SMTPServer: cfg.Email.SMTPServer,
			SMTPPort:   cfg.Email.SMTPPort,
		}, logger)
		scheduler = messaging.NewScheduler(whatsapp, logger)

		backends = backend.Set{
			Launcher:  desktop,
			Files:     backend.OSFileSystem{},
			Messenger: messaging.NewService(whatsapp, email),
			Scheduler: scheduler,
			Telephony: telephony.New(telephony.Config{
				AccountSID:      cfg.Telephony.TwilioAccountSID,
				AuthToken:       cfg.Telephony.TwilioAuthToken,
				PhoneNumber:     cfg.Telephony.TwilioPhoneNumber,
				DefaultTwiMLURL: cfg.Telephony.DefaultTwiMLURL,
			}, logger),
			Dialers: []backend.Dialer{
				backend.SkypeDialer{Launcher: desktop},
				backend.NewADBDialer(logger),
			},
		}
	}

	var store *history.Store
	if !opts.NoHistory && cfg.Paths.HistoryDB != "" {
		s, err := history.Open(cfg.Paths.HistoryDB)
		if err != nil {
			return nil, err
		}
		store = s
	}

	var onClose func()
	if scheduler != nil {
		scheduler.Start()
		onClose = scheduler.Stop
	}

	return NewAssistant(&Config{
		Parser: classifier.NewParser(&classifier.Config{
			CountryCode: cfg.Assistant.CountryCode,
			Logger:      logger,
		}),
		Dispatcher: executor.NewDispatcher(executor.NewConfig(cfg, backends, logger)),
		History:    store,
		Stats:      stats.NewCollector(),
		Logger:     logger,
		OnClose:    onClose,
	}), nil
}
