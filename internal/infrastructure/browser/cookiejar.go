package browser

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-league-scraper/internal/session"
)

// cookieJarFile is the on-disk form of a saved session. It never holds
// credentials.
type cookieJarFile struct {
	SavedAt time.Time        `json:"savedAt"`
	BaseURL string           `json:"baseUrl"`
	Cookies []session.Cookie `json:"cookies"`
}

// LoadCookies reads a cookie jar written by SaveCookies. A missing file is not
// an error. Cookies whose expiry already passed are dropped.
func LoadCookies(path, baseURL string, now time.Time) ([]session.Cookie, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cookie jar: %w", err)
	}

	var jar cookieJarFile
	if err := sonic.ConfigDefault.Unmarshal(raw, &jar); err != nil {
		return nil, fmt.Errorf("decode cookie jar: %w", err)
	}
	if baseURL != "" && jar.BaseURL != "" && jar.BaseURL != baseURL {
		return nil, nil
	}

	out := make([]session.Cookie, 0, len(jar.Cookies))
	for _, c := range jar.Cookies {
		if c.Name == "" || c.Expired(now) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// SaveCookies writes cookies with owner-only permissions, replacing the file
// atomically.
func SaveCookies(path, baseURL string, cookies []session.Cookie, now time.Time) error {
	payload, err := sonic.ConfigDefault.MarshalIndent(cookieJarFile{
		SavedAt: now.UTC(),
		BaseURL: baseURL,
		Cookies: cookies,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cookie jar: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create cookie jar dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".cookies-*")
	if err != nil {
		return fmt.Errorf("create cookie jar: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write cookie jar: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod cookie jar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cookie jar: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace cookie jar: %w", err)
	}
	return nil
}
