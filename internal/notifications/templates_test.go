package notifications

import (
	"testing"

	"github.com/netwatch-io/netwatch/internal/models"
)

func TestRenderTemplateSubstitutesKnownTokens(t *testing.T) {
	ctx := TemplateContext{
		DeviceName:     "core-switch",
		DeviceAddress:  "10.0.0.1",
		DeviceIdentity: "CCR2004",
		DeviceType:     string(models.DeviceTypeMikrotikRouter),
		NewStatus:      models.StatusOffline,
		OldStatus:      models.StatusOnline,
	}
	tmpl := "[Device.Name] ([Device.Address]) went from [Status.Old] to [Status.New]"
	got := RenderTemplate(tmpl, ctx)
	want := "core-switch (10.0.0.1) went from online to offline"
	if got != want {
		t.Errorf("RenderTemplate() = %q, want %q", got, want)
	}
}

func TestRenderTemplateLeavesUnknownTokensVerbatim(t *testing.T) {
	got := RenderTemplate("[Device.Name] [Unknown.Token]", TemplateContext{DeviceName: "x"})
	want := "x [Unknown.Token]"
	if got != want {
		t.Errorf("RenderTemplate() = %q, want %q", got, want)
	}
}

func TestRenderTemplateIsIdempotent(t *testing.T) {
	ctx := ContextFor(&models.Device{Name: "d1", IPAddress: "1.2.3.4"}, models.StatusOnline, models.StatusOffline)
	tmpl := "[Device.Name] [Status.Old] [Status.New]"
	a := RenderTemplate(tmpl, ctx)
	b := RenderTemplate(tmpl, ctx)
	if a != b {
		t.Errorf("rendering twice produced different output: %q vs %q", a, b)
	}
}
