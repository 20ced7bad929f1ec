package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	appconfig "github.com/Rodhackgang/KaboreTech-sub000/internal/config"

	_ "github.com/mattn/go-sqlite3"
	"github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
)

// ErrUnavailable is returned while the WhatsApp link is down. Callers treat
// it as non-fatal: the channel is best-effort.
var ErrUnavailable = errors.New("whatsapp channel unavailable")

const reconnectDelay = 5 * time.Second

// Client owns the single WhatsApp connection for the process. The session
// survives restarts in the sqlite store; a missing session triggers the QR
// pairing flow at startup.
type Client struct {
	wa  *whatsmeow.Client
	cfg appconfig.WhatsAppConfig
	log *zap.Logger
}

func New(ctx context.Context, cfg appconfig.WhatsAppConfig, log *zap.Logger) (*Client, error) {
	container, err := sqlstore.New(ctx, "sqlite3",
		fmt.Sprintf("file:%s?_foreign_keys=on", cfg.SessionPath), waLog.Noop)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load device: %w", err)
	}

	c := &Client{
		wa:  whatsmeow.NewClient(device, waLog.Noop),
		cfg: cfg,
		log: log,
	}
	// reconnection is owned by the watchdog, not the library
	c.wa.EnableAutoReconnect = false
	c.wa.AddEventHandler(c.handleEvent)
	return c, nil
}

// Connect brings the link up. Without a stored session the pairing QR code
// is written to disk for the operator to scan; the call returns immediately
// and the session becomes usable once scanned.
func (c *Client) Connect(ctx context.Context) error {
	if c.wa.Store.ID == nil {
		qrChan, err := c.wa.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("failed to open qr channel: %w", err)
		}
		go c.handlePairing(qrChan)
	}

	if err := c.wa.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	return nil
}

// Send delivers one text message. Phone numbers are reduced to digits
// before addressing.
func (c *Client) Send(phone, text string) error {
	if !c.wa.IsConnected() || !c.wa.IsLoggedIn() {
		return ErrUnavailable
	}

	jid := types.NewJID(digitsOnly(phone), types.DefaultUserServer)
	_, err := c.wa.SendMessage(context.Background(), jid, &waE2E.Message{
		Conversation: proto.String(text),
	})
	if err != nil {
		return fmt.Errorf("failed to send to %s: %w", jid, err)
	}
	return nil
}

func (c *Client) Disconnect() {
	c.wa.Disconnect()
}

func (c *Client) handlePairing(qrChan <-chan whatsmeow.QRChannelItem) {
	for evt := range qrChan {
		switch evt.Event {
		case "code":
			if err := qrcode.WriteFile(evt.Code, qrcode.Medium, 256, c.cfg.QRCodePath); err != nil {
				c.log.Error("failed to write pairing qr code", zap.Error(err))
				continue
			}
			c.log.Info("scan the pairing qr code with WhatsApp",
				zap.String("path", c.cfg.QRCodePath))
		case "success":
			c.log.Info("whatsapp pairing complete")
		default:
			c.log.Warn("whatsapp pairing event", zap.String("event", evt.Event))
		}
	}
}

func (c *Client) handleEvent(evt interface{}) {
	switch evt.(type) {
	case *events.Connected:
		c.log.Info("whatsapp connected")
	case *events.Disconnected, *events.StreamError:
		c.log.Warn("whatsapp disconnected, watchdog will reconnect")
		go c.reconnect()
	case *events.LoggedOut:
		c.log.Error("whatsapp session logged out, delete the session store and re-pair")
	}
}

// reconnect retries until the link is back, with no upper bound. Sends made
// in the meantime fail fast with ErrUnavailable.
func (c *Client) reconnect() {
	for {
		time.Sleep(reconnectDelay)
		if c.wa.IsConnected() {
			return
		}
		if err := c.wa.Connect(); err != nil {
			c.log.Warn("whatsapp reconnect failed", zap.Error(err))
			continue
		}
		return
	}
}

func digitsOnly(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
