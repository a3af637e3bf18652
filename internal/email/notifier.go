package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"sync"
	"time"

	"github.com/savethebee/honeyweb/internal/metrics"
	"github.com/savethebee/honeyweb/internal/models"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	KindOrderConfirmation = "order_confirmation"
	KindOrderStatus       = "order_status"
	KindAdminOrder        = "admin_order"
	KindContact           = "contact"
	KindNewsletter        = "newsletter"
)

const defaultSendTimeout = 30 * time.Second

var statusMessages = map[models.OrderStatus]string{
	models.OrderProcessing: "Your order has been received and is being processed.",
	models.OrderPrepared:   "Your order is prepared and ready to ship.",
	models.OrderShipped:    "Your order has been shipped and is on its way to you.",
	models.OrderCompleted:  "Your order was delivered successfully. Thank you!",
}

// StatusMessage is the customer-facing sentence for an order status.
func StatusMessage(s models.OrderStatus) string {
	if msg, ok := statusMessages[s]; ok {
		return msg
	}
	return "The status of your order has been updated."
}

type ContactForm struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Notifier renders the notification templates and hands them to a Sender.
// Background sends started with Go are tracked so shutdown can wait for them.
type Notifier struct {
	sender     Sender
	adminEmail string
	baseURL    string
	tmpl       *template.Template
	timeout    time.Duration
	wg         sync.WaitGroup
}

func NewNotifier(sender Sender, adminEmail, baseURL string) (*Notifier, error) {
	funcs := template.FuncMap{
		"money": func(d decimal.Decimal) string { return d.StringFixed(2) + " лв" },
		"date":  func(t time.Time) string { return t.Format("02.01.2006 15:04") },
	}
	tmpl, err := template.New("email").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &Notifier{
		sender:     sender,
		adminEmail: adminEmail,
		baseURL:    baseURL,
		tmpl:       tmpl,
		timeout:    defaultSendTimeout,
	}, nil
}

func (n *Notifier) AdminEmail() string {
	return n.adminEmail
}

func (n *Notifier) render(name string, data map[string]interface{}) (string, error) {
	data["AdminEmail"] = n.adminEmail
	data["BaseURL"] = n.baseURL
	var buf bytes.Buffer
	if err := n.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func (n *Notifier) send(ctx context.Context, kind string, msg Message, data map[string]interface{}) error {
	html, err := n.render(kind, data)
	if err == nil {
		msg.HTML = html
		err = n.sender.Send(ctx, msg)
	}
	metrics.RecordEmail(kind, err)
	if err != nil {
		slog.Warn("Failed to send email", "kind", kind, "to", msg.To, "error", err)
	}
	return err
}

func (n *Notifier) OrderConfirmation(ctx context.Context, o *models.Order) error {
	return n.send(ctx, KindOrderConfirmation, Message{
		To:      []string{o.Email},
		Subject: "Order confirmation - Save The Bee Bulgaria",
	}, map[string]interface{}{"Order": o})
}

func (n *Notifier) OrderStatusUpdate(ctx context.Context, o *models.Order) error {
	return n.send(ctx, KindOrderStatus, Message{
		To:      []string{o.Email},
		Subject: fmt.Sprintf("Order %s status update - Save The Bee Bulgaria", o.ID),
	}, map[string]interface{}{
		"Order":         o,
		"StatusMessage": StatusMessage(o.Status),
		"Now":           time.Now().UTC(),
	})
}

func (n *Notifier) AdminOrderAlert(ctx context.Context, o *models.Order) error {
	return n.send(ctx, KindAdminOrder, Message{
		To:      []string{n.adminEmail},
		Subject: fmt.Sprintf("New order #%s - Save The Bee Bulgaria Admin", o.ID),
		ReplyTo: o.Email,
	}, map[string]interface{}{"Order": o})
}

func (n *Notifier) Contact(ctx context.Context, c ContactForm) error {
	return n.send(ctx, KindContact, Message{
		To:      []string{n.adminEmail},
		Subject: "Contact form: " + c.Subject,
		ReplyTo: c.Email,
	}, map[string]interface{}{"Contact": c})
}

func (n *Notifier) Newsletter(ctx context.Context, to, subject, body, unsubscribeURL string) error {
	return n.send(ctx, KindNewsletter, Message{
		To:      []string{to},
		Subject: subject,
	}, map[string]interface{}{
		"Subject":        subject,
		"Body":           body,
		"UnsubscribeURL": unsubscribeURL,
	})
}

// Go runs fn in the background with its own timeout. Panics and errors are
// logged; nothing is reported back to the caller.
func (n *Notifier) Go(name string, fn func(ctx context.Context) error) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Background email panicked", "task", name, "panic", r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			slog.Warn("Background email failed", "task", name, "error", err)
		}
	}()
}

// Wait blocks until background sends finish or ctx is done.
func (n *Notifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
