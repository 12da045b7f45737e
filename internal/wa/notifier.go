package wa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"wa-cart/internal/metrics"

	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
	_ "modernc.org/sqlite"
)

// Config holds configuration for the operator notifier.
type Config struct {
	StorePath   string
	LogLevel    string
	OperatorJID string
	Metrics     *metrics.Metrics
}

// Notifier pushes order summaries to the store operator over WhatsApp. It is
// strictly best-effort: send failures are logged and counted, never returned
// to the order-intent flow.
type Notifier struct {
	client   *whatsmeow.Client
	operator types.JID
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewNotifier creates a send-only WhatsApp client backed by an SQLite store.
func NewNotifier(ctx context.Context, cfg Config, logger *slog.Logger) (*Notifier, error) {
	if cfg.StorePath == "" {
		return nil, errors.New("store path is required")
	}
	operator, err := types.ParseJID(cfg.OperatorJID)
	if err != nil {
		return nil, fmt.Errorf("parse operator jid: %w", err)
	}

	if err := ensureDir(filepath.Dir(cfg.StorePath)); err != nil {
		return nil, fmt.Errorf("ensure store dir: %w", err)
	}

	storeLogger := waLog.Stdout("whatsmeow/sqlstore", cfg.LogLevel, true)
	container, err := sqlstore.New(ctx, "sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout=10000&_pragma=foreign_keys(ON)", cfg.StorePath), storeLogger)
	if err != nil {
		return nil, fmt.Errorf("create sqlstore: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("get device: %w", err)
	}

	waLogger := waLog.Stdout("whatsmeow/client", cfg.LogLevel, true)
	client := whatsmeow.NewClient(deviceStore, waLogger)

	n := &Notifier{
		client:   client,
		operator: operator,
		logger:   logger.With("component", "wa"),
		metrics:  cfg.Metrics,
	}
	client.AddEventHandler(n.handleEvent)

	return n, nil
}

// Start connects the client and handles the QR pairing flow on first run.
func (n *Notifier) Start(ctx context.Context) error {
	if n.client.Store.ID == nil {
		n.logger.Info("pairing required, waiting for QR scan")
		qrChan, err := n.client.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("get qr channel: %w", err)
		}

		go func() {
			for evt := range qrChan {
				if evt.Event == "code" {
					n.logger.Info("scan the QR code with WhatsApp", "qr", evt.Code)
				} else {
					n.logger.Info("pairing event received", "event", evt.Event)
				}
			}
		}()
	}

	if err := n.client.Connect(); err != nil {
		return fmt.Errorf("connect wa client: %w", err)
	}

	n.logger.Info("whatsapp notifier connected", "operator", n.operator.String())
	return nil
}

// Close disconnects the WhatsApp client.
func (n *Notifier) Close() {
	if n.client != nil {
		n.client.Disconnect()
	}
}

// Notify sends a plain text message to the operator. Never fails visibly.
func (n *Notifier) Notify(ctx context.Context, text string) {
	msg := &waProto.Message{
		Conversation: proto.String(text),
	}
	if _, err := n.client.SendMessage(ctx, n.operator, msg); err != nil {
		n.logger.Warn("operator notification failed", "error", err)
		if n.metrics != nil {
			n.metrics.WANotifications.WithLabelValues("error").Inc()
		}
		return
	}
	if n.metrics != nil {
		n.metrics.WANotifications.WithLabelValues("sent").Inc()
	}
}

func (n *Notifier) handleEvent(evt interface{}) {
	switch evt.(type) {
	case *events.Connected:
		n.logger.Info("device connected")
	case *events.Disconnected:
		n.logger.Warn("device disconnected")
	}
}

func ensureDir(dir string) error {
	if dir == "." || dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}
