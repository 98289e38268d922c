/*
Package upstream looks up the newest published Rust toolchains.

Fixed-release channels publish a manifest listing the release archives, from
which the version is read. Rolling channels are identified by the commit hash
shown on their published documentation, which is scraped with Colly.
*/
package upstream

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/rotisserie/eris"
)

var (
	manifestVersion = regexp.MustCompile(`rust-(\d+\.\d+\.\d+)-`)
	docsHash        = regexp.MustCompile(`rustc \S+ \(([0-9a-f]{7,40}) `)
)

// Client resolves the latest toolchain identity for a channel
type Client struct {
	// Fetcher retrieves release manifests
	Fetcher Fetcher
	// DistServer is the base URL of the release manifests
	DistServer string
	// DocsServer is the base URL of the published documentation
	DocsServer string
	// RoundTripper is, if defined, a custom roundtripper used by the scraper
	RoundTripper http.RoundTripper
	// Timeout is the scraper's request timeout. Defaults to no timeout.
	Timeout time.Duration
}

// ManifestURL returns where the release manifest of channel is published
func (c *Client) ManifestURL(channel string) string {
	return fmt.Sprintf("%s/dist/channel-rust-%s", strings.TrimRight(c.DistServer, "/"), channel)
}

// DocsURL returns the documentation index of channel
func (c *Client) DocsURL(channel string) string {
	return fmt.Sprintf("%s/%s/index.html", strings.TrimRight(c.DocsServer, "/"), channel)
}

// LatestVersion returns the newest version published on channel
func (c *Client) LatestVersion(ctx context.Context, channel string) (string, error) {
	url := c.ManifestURL(channel)

	data, err := c.Fetcher.Get(ctx, url)
	if err != nil {
		return "", eris.Wrapf(err, "failed to look up latest %s version", channel)
	}

	m := manifestVersion.FindSubmatch(data)
	if m == nil {
		return "", eris.Errorf("no version found in %s", url)
	}

	return string(m[1]), nil
}

// LatestHash returns the commit hash of the newest build published on channel
func (c *Client) LatestHash(ctx context.Context, channel string) (string, error) {
	col := c.newCollector(ctx)
	url := c.DocsURL(channel)

	var hash string
	col.OnHTML(`body`, func(h *colly.HTMLElement) {
		if hash != "" {
			return
		}

		if m := docsHash.FindStringSubmatch(h.Text); m != nil {
			hash = m[1]
		}
	})

	if err := col.Visit(url); err != nil {
		return "", eris.Wrapf(err, "failed to look up latest %s build", channel)
	}

	if hash == "" {
		return "", eris.Errorf("no commit hash found in %s", url)
	}

	return hash, nil
}

func (c *Client) newCollector(ctx context.Context) *colly.Collector {
	col := colly.NewCollector()
	col.AllowURLRevisit = true
	col.SetRequestTimeout(c.Timeout)

	if c.RoundTripper != nil {
		col.WithTransport(c.RoundTripper)
	}

	col.Context = ctx

	return col
}
