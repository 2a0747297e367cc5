package cmd

import (
	"fmt"

	"github.com/okibe/mangasrc/internal/config"
	"github.com/okibe/mangasrc/internal/fetch"
	"github.com/okibe/mangasrc/internal/profiles"
	"github.com/okibe/mangasrc/internal/source"
	"github.com/okibe/mangasrc/internal/ui"
)

// session bundles what every scraping command needs: merged config, the
// resolved profile, a fetch client and the adapter on top of it.
type session struct {
	cfg     *config.Config
	adapter *source.Adapter
	client  *fetch.Client
	log     *ui.Logger
}

func newSession() (*session, error) {
	cfg, _, err := config.LoadMerged(config.Options{
		IgnoreConfig: flagIgnoreConfig,
		Debug:        flagDebug,
		Source:       flagSource,
		Bypass:       flagBypass,
		UserAgent:    flagUserAgent,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Source == "" {
		return nil, fmt.Errorf("no source selected: pass --source or run `mangasrc sources switch`")
	}

	profile, err := profiles.Resolve(cfg.Source, cfg.ProfileDir)
	if err != nil {
		return nil, err
	}

	log := ui.NewLogger(cfg.Debug)

	cookies, err := fetch.OpenCookieStore(config.CookieFile())
	if err != nil {
		return nil, fmt.Errorf("cookie store: %w", err)
	}

	client := fetch.NewClient(fetch.ClientOptions{
		UserAgent:    fetch.DefaultUserAgent(cfg.UserAgent),
		Referer:      profile.Referer,
		Cookies:      cookies,
		Bypass:       cfg.Bypass,
		Interceptors: []fetch.Interceptor{fetch.ForceHTTPS()},
		DebugLogger:  log,
	})

	return &session{
		cfg:     cfg,
		adapter: source.New(profile, client, log),
		client:  client,
		log:     log,
	}, nil
}

// explain turns a fetch failure into an actionable message; bot challenges
// get the cookie-recovery hint instead of a bare status code.
func explain(err error) error {
	if fetch.IsBotChallenge(err) {
		return fmt.Errorf("%w\nThe site is challenging automated clients. Solve the challenge in a "+
			"browser, then store the clearance cookie:\n  mangasrc cookies set <domain> cf_clearance=<value>\n"+
			"and retry with --bypass", err)
	}

	return err
}
