// Package notifications renders status-change message templates and
// delivers them over HTTP, honoring global/per-user mute windows and the
// duty roster (spec.md §4.3).
package notifications

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/netwatch-io/netwatch/internal/models"
	"github.com/netwatch-io/netwatch/internal/storage"
	"github.com/rs/zerolog/log"
)

// Dispatcher delivers outbound webhook notifications on device status
// transitions. It implements statusengine.Dispatcher.
type Dispatcher struct {
	store               storage.Store
	client              *http.Client
	allowedPrivateCIDRs []*net.IPNet
}

// NewDispatcher returns a Dispatcher backed by store.
func NewDispatcher(store storage.Store) *Dispatcher {
	d := &Dispatcher{store: store}
	d.client = newSecureWebhookClient(d.allowedPrivateCIDRs)
	return d
}

// UpdateAllowedPrivateCIDRs allowlists the given comma-separated CIDR list
// for otherwise-blocked private/loopback dial targets (used by operators
// who self-host their notification receiver, and by tests talking to
// httptest servers on 127.0.0.0/8).
func (d *Dispatcher) UpdateAllowedPrivateCIDRs(csv string) {
	d.allowedPrivateCIDRs = parseCIDRs(csv)
	d.client = newSecureWebhookClient(d.allowedPrivateCIDRs)
}

// Dispatch fetches device's subscriptions and delivers each enabled one,
// after consulting the global mute and duty-roster per-user mutes.
func (d *Dispatcher) Dispatch(ctx context.Context, device *models.Device, previous, newStatus models.Status) error {
	subs, err := d.store.GetNotificationsForDevice(ctx, device.ID)
	if err != nil {
		return fmt.Errorf("load notifications for device %s: %w", device.ID, err)
	}
	if len(subs) == 0 {
		return nil
	}

	suppressed, err := isSuppressed(ctx, d.store, time.Now())
	if err != nil {
		log.Warn().Err(err).Msg("failed to evaluate mute/duty roster, proceeding with dispatch")
	} else if suppressed {
		log.Debug().Str("deviceId", device.ID).Msg("notification dispatch suppressed by mute")
		return nil
	}

	tctx := ContextFor(device, previous, newStatus)
	for _, sub := range subs {
		if !sub.Enabled {
			continue
		}
		if err := d.deliver(ctx, sub, tctx); err != nil {
			// Non-2xx and transport failures are logged, never retried
			// (spec.md §4.3, §7).
			log.Warn().Err(err).Str("deviceId", device.ID).Str("notificationId", sub.ID).Msg("notification delivery failed")
		}
	}
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, sub *storage.Notification, tctx TemplateContext) error {
	message := RenderTemplate(sub.MessageTemplate, tctx)

	var req *http.Request
	var err error
	switch strings.ToUpper(sub.Method) {
	case "POST":
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, sub.URL, strings.NewReader(message))
		if err == nil {
			req.Header.Set("Content-Type", "text/plain")
		}
	default: // GET, per spec.md §4.3 defaulting to GET for any other value
		// The operator's URL is expected to already end in "...=" (spec.md
		// §9 Open Question); we only append the encoded message.
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, sub.URL+url.QueryEscape(message), nil)
	}
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("non-2xx response: %d", resp.StatusCode)
	}
	return nil
}
