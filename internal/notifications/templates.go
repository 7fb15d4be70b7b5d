package notifications

import (
	"strings"

	"github.com/netwatch-io/netwatch/internal/models"
)

// TemplateContext carries the values substitutable into a message template
// (spec.md §4.3). Unrecognized tokens are left verbatim — Design Notes §9
// deliberately specifies "a trivial tokenizer; no expression evaluation".
type TemplateContext struct {
	DeviceName     string
	DeviceAddress  string
	DeviceIdentity string
	DeviceType     string
	NewStatus      models.Status
	OldStatus      models.Status
}

// ContextFor builds the rendering context for one status transition.
func ContextFor(device *models.Device, previous, newStatus models.Status) TemplateContext {
	return TemplateContext{
		DeviceName:     device.Name,
		DeviceAddress:  device.IPAddress,
		DeviceIdentity: device.DeviceData.Identity,
		DeviceType:     string(device.Type),
		NewStatus:      newStatus,
		OldStatus:      previous,
	}
}

// RenderTemplate substitutes the fixed token set into tmpl. It is
// idempotent: rendering the same (tmpl, ctx) pair twice produces
// byte-identical output (spec.md §8 testable property), since it performs
// nothing but literal string replacement.
func RenderTemplate(tmpl string, ctx TemplateContext) string {
	r := strings.NewReplacer(
		"[Device.Name]", ctx.DeviceName,
		"[Device.Address]", ctx.DeviceAddress,
		"[Device.Identity]", ctx.DeviceIdentity,
		"[Device.Type]", ctx.DeviceType,
		"[Service.Status]", string(ctx.NewStatus),
		"[Status.Old]", string(ctx.OldStatus),
		"[Status.New]", string(ctx.NewStatus),
	)
	return r.Replace(tmpl)
}
