package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/Skotchmaster/storefront/pkg/localstore"
)

const cookieStorageKey = "sessionCookies"

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// persistentJar mirrors the cookies for the API host into local storage.
type persistentJar struct {
	*cookiejar.Jar
	storage localstore.Storage
	base    *url.URL
}

func (j *persistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.Jar.SetCookies(u, cookies)
	// SetCookies cannot report a failed write.
	_ = j.save()
}

func (j *persistentJar) load() error {
	raw, ok, err := j.storage.GetItem(cookieStorageKey)
	if err != nil {
		return fmt.Errorf("read cookies: %w", err)
	}
	if !ok || raw == "" {
		return nil
	}
	var stored []storedCookie
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return fmt.Errorf("decode cookies: %w", err)
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, sc := range stored {
		cookies = append(cookies, &http.Cookie{Name: sc.Name, Value: sc.Value, Path: "/"})
	}
	j.Jar.SetCookies(j.root(), cookies)
	return nil
}

func (j *persistentJar) save() error {
	current := j.Jar.Cookies(j.root())
	if len(current) == 0 {
		return j.storage.RemoveItem(cookieStorageKey)
	}
	stored := make([]storedCookie, 0, len(current))
	for _, c := range current {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}
	b, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	return j.storage.SetItem(cookieStorageKey, string(b))
}

func (j *persistentJar) root() *url.URL {
	return &url.URL{Scheme: j.base.Scheme, Host: j.base.Host, Path: "/"}
}
