package main

import (
	"fmt"
	"net/url"

	"github.com/waftester/wafcharset/pkg/config"
	"github.com/waftester/wafcharset/pkg/defaults"
	"github.com/waftester/wafcharset/pkg/rawhttp"
	"github.com/waftester/wafcharset/pkg/sender"
)

// resolveTarget picks where variants are sent. -host and -port win; the
// template's Host header fills what they leave out, and the port falls
// back to the scheme default.
func resolveTarget(cfg *config.Config, tpl *rawhttp.Template) (sender.Target, error) {
	t := sender.Target{Host: cfg.Host, Port: cfg.Port, UseTLS: cfg.HTTPS}
	if t.Host == "" {
		t.Host = tpl.Host
		if t.Port == 0 && tpl.HasPort {
			t.Port = tpl.Port
		}
	}
	if t.Host == "" {
		return t, fmt.Errorf("%w: no target host (set -host or a Host header)", config.ErrMissingRequired)
	}
	if t.Port == 0 {
		t.Port = defaults.PortFor(t.UseTLS)
	}
	return t, nil
}

// redactProxy hides proxy credentials in banners and events.
func redactProxy(proxy string) string {
	if proxy == "" {
		return ""
	}
	u, err := url.Parse(proxy)
	if err != nil {
		return proxy
	}
	return u.Redacted()
}
