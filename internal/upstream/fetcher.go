package upstream

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
)

// Fetcher retrieves remote resources. Tests substitute fixtures for it.
type Fetcher interface {
	// Get returns the body of url
	Get(ctx context.Context, url string) ([]byte, error)
	// Download writes the body of url to dst and returns the number of bytes written
	Download(ctx context.Context, url, dst string) (int64, error)
}

// HTTPFetcher is a Fetcher backed by an HTTP client
type HTTPFetcher struct {
	// Client defaults to http.DefaultClient
	Client *http.Client
	// Progress, if set, receives a progress bar while downloading
	Progress io.Writer
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher creates a fetcher using the given transport (nil for the default)
func NewHTTPFetcher(rt http.RoundTripper) *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Transport: rt}}
}

func (f *HTTPFetcher) client() *http.Client {
	if f.Client == nil {
		return http.DefaultClient
	}

	return f.Client
}

func (f *HTTPFetcher) open(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid url %s", url)
	}

	res, err := f.client().Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to fetch %s", url)
	}

	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, eris.Errorf("failed to fetch %s: %s", url, res.Status)
	}

	return res, nil
}

// Get returns the body of url
func (f *HTTPFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	res, err := f.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read %s", url)
	}

	return data, nil
}

// Download writes the body of url to dst.
// The file appears at dst only once it is complete.
func (f *HTTPFetcher) Download(ctx context.Context, url, dst string) (int64, error) {
	res, err := f.open(ctx, url)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, eris.Wrap(err, "failed to create download directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return 0, eris.Wrap(err, "failed to create download file")
	}
	defer os.Remove(tmp.Name())

	var w io.Writer = tmp
	if f.Progress != nil {
		bar := progressbar.NewOptions64(res.ContentLength,
			progressbar.OptionSetWriter(f.Progress),
			progressbar.OptionSetDescription(filepath.Base(dst)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetRenderBlankState(true),
		)
		defer bar.Finish()

		w = io.MultiWriter(tmp, bar)
	}

	n, err := io.Copy(w, res.Body)
	if err != nil {
		tmp.Close()
		return n, eris.Wrapf(err, "failed to download %s", url)
	}

	if err := tmp.Close(); err != nil {
		return n, eris.Wrap(err, "failed to write download file")
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		return n, eris.Wrapf(err, "failed to move download to %s", dst)
	}

	return n, nil
}
