// internal/browser/authstate.go
package browser

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// AuthSnapshot is the persisted session credential bundle: the cookie set
// plus per-origin storage. The file shape matches what earlier tooling
// around this console wrote, so existing auth/state.json files keep working.
type AuthSnapshot struct {
	Cookies []SnapshotCookie `json:"cookies"`
	Origins []OriginState    `json:"origins"`
}

// SnapshotCookie is one persisted cookie.
type SnapshotCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// OriginState is the persisted localStorage of one origin.
type OriginState struct {
	Origin       string        `json:"origin"`
	LocalStorage []StorageItem `json:"localStorage"`
}

// StorageItem is one localStorage entry.
type StorageItem struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LoadSnapshot reads a persisted snapshot. A missing file is not an error;
// it just means the session starts cold.
func LoadSnapshot(path string) (*AuthSnapshot, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read auth state: %w", err)
	}
	var snap AuthSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse auth state: %w", err)
	}
	return &snap, nil
}

// SaveSnapshot writes the snapshot atomically, creating parent directories
// as needed. A crash mid-write never corrupts an existing state file.
func SaveSnapshot(path string, snap *AuthSnapshot) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create auth state directory: %w", err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode auth state: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write auth state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace auth state: %w", err)
	}
	return nil
}

// applySnapshot seeds the tab's cookie jar from the snapshot. Origin
// storage can only be written once the tab is on the matching origin, so it
// is applied later, after the first navigation.
func (s *Session) applySnapshot(ctx context.Context, snap *AuthSnapshot) error {
	s.seed = snap
	if len(snap.Cookies) == 0 {
		return nil
	}

	params := make([]*network.CookieParam, 0, len(snap.Cookies))
	for _, c := range snap.Cookies {
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.SameSite != "" {
			p.SameSite = network.CookieSameSite(c.SameSite)
		}
		if c.Expires > 0 {
			exp := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
			p.Expires = &exp
		}
		params = append(params, p)
	}

	return s.runActions(ctx, chromedp.ActionFunc(func(c context.Context) error {
		return network.SetCookies(params).Do(c)
	}))
}

// applySeedStorage restores persisted localStorage for the origin the tab
// is currently on. Best effort; a storage-disabled page is not fatal.
func (s *Session) applySeedStorage(ctx context.Context) {
	if s.seed == nil || len(s.seed.Origins) == 0 {
		return
	}
	loc, err := s.Location(ctx)
	if err != nil {
		return
	}
	origin := originOf(loc)

	for _, o := range s.seed.Origins {
		if !strings.EqualFold(o.Origin, origin) {
			continue
		}
		for _, item := range o.LocalStorage {
			script := fmt.Sprintf(`try { localStorage.setItem(%q, %q); } catch (e) {}`, item.Name, item.Value)
			if err := s.runActions(ctx, chromedp.Evaluate(script, nil)); err != nil {
				s.logger.Debug("Could not restore localStorage item.", zap.String("key", item.Name), zap.Error(err))
			}
		}
	}
}

// captureSnapshot collects the live cookie set and the current origin's
// localStorage into a fresh snapshot.
func (s *Session) captureSnapshot(ctx context.Context) (*AuthSnapshot, error) {
	snap := &AuthSnapshot{}

	var cookies []*network.Cookie
	err := s.runActions(ctx, chromedp.ActionFunc(func(c context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(c)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("collect cookies: %w", err)
	}
	for _, c := range cookies {
		snap.Cookies = append(snap.Cookies, SnapshotCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}

	loc, err := s.Location(ctx)
	if err != nil {
		return snap, nil
	}
	var items map[string]string
	storageJS := `(function() {
		let items = {};
		try {
			for (let i = 0; i < localStorage.length; i++) {
				const k = localStorage.key(i);
				if (k) { items[k] = localStorage.getItem(k); }
			}
		} catch (e) { /* SecurityError or storage disabled */ }
		return items;
	})()`
	if err := s.runActions(ctx, chromedp.Evaluate(storageJS, &items)); err != nil {
		s.logger.Debug("Could not capture localStorage.", zap.Error(err))
		return snap, nil
	}
	if len(items) > 0 {
		origin := OriginState{Origin: originOf(loc)}
		for k, v := range items {
			origin.LocalStorage = append(origin.LocalStorage, StorageItem{Name: k, Value: v})
		}
		snap.Origins = append(snap.Origins, origin)
	}
	return snap, nil
}

func originOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return rawURL
	}
	return u.Scheme + "://" + u.Host
}
