package redis

import "testing"

func TestKeys(t *testing.T) {
	if got := PreviewKey("default", 800, 600); got != "preview:default:800x600" {
		t.Errorf("PreviewKey = %q", got)
	}
	if got := PreviewPattern("club"); got != "preview:club:*" {
		t.Errorf("PreviewPattern = %q", got)
	}
	if got := LoginRateKey("admin"); got != "login_rate:admin" {
		t.Errorf("LoginRateKey = %q", got)
	}
}
