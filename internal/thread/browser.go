package thread

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"
)

// DefaultPageTimeout bounds a single thread page load.
const DefaultPageTimeout = 30 * time.Second

// DefaultRenderTimeout bounds the wait for timeline articles after the page has loaded.
const DefaultRenderTimeout = 10 * time.Second

// statusLinkSelector matches post permalinks inside rendered timeline articles.
const statusLinkSelector = `article a[href*="/status/"]`

// Browser expands threads by rendering the thread page in a headless browser.
type Browser struct {
	log           logrus.FieldLogger
	timeout       time.Duration
	renderTimeout time.Duration
}

// NewBrowser creates a browser-backed expander.
func NewBrowser(logger logrus.FieldLogger) *Browser {
	return &Browser{
		log:           logger.WithField("component", "thread_browser"),
		timeout:       DefaultPageTimeout,
		renderTimeout: DefaultRenderTimeout,
	}
}

// Expand loads link and collects the author's status links in page order.
// Pages that render no usable links expand to the link itself.
func (b *Browser) Expand(ctx context.Context, link string) (links []string, err error) {
	log := b.log.WithField("url", link)
	log.Info("Expanding thread")

	path, exists := launcher.LookPath()
	if !exists {
		log.Error("Cannot find browser executable for rod")
		return nil, errors.New("rod browser dependency not found")
	}
	l := launcher.New().Bin(path).Headless(true)
	controlURL, err := l.Launch()
	if err != nil {
		log.WithError(err).Error("Failed to launch browser")
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer l.Cleanup()

	browser := rod.New().ControlURL(controlURL)
	if err = browser.Connect(); err != nil {
		log.WithError(err).Error("Failed to connect to rod browser")
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			log.WithError(closeErr).Warn("Error closing rod browser instance")
		}
	}()

	pageCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	page, err := browser.Context(pageCtx).Page(proto.TargetCreateTarget{URL: link})
	if err != nil {
		log.WithError(err).Error("Failed to create rod page")
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	if err = page.WaitLoad(); err != nil {
		if errors.Is(pageCtx.Err(), context.DeadlineExceeded) {
			log.WithError(pageCtx.Err()).Warn("Thread page load timed out")
			return nil, fmt.Errorf("loading thread %s timed out: %w", link, pageCtx.Err())
		}
		log.WithError(err).Error("Failed to wait for page load")
		return nil, fmt.Errorf("failed waiting for page load: %w", err)
	}

	// --- Status Link Collection ---
	// The load event fires before the timeline script renders articles, so wait for them.
	hrefs, err := statusHrefs(page.Timeout(b.renderTimeout), log)
	if err != nil {
		log.WithError(err).Warn("Could not collect status links, using the link alone")
		return []string{link}, nil
	}

	links = collectThreadLinks(link, hrefs)
	log.WithField("link_count", len(links)).Info("Thread expanded")
	return links, nil
}

// statusPage is the part of *rod.Page used to read status links.
type statusPage interface {
	WaitElementsMoreThan(selector string, num int) error
	Elements(selector string) (rod.Elements, error)
}

// statusHrefs waits for at least one status link to render and returns every
// status href on the page in document order.
func statusHrefs(page statusPage, log logrus.FieldLogger) ([]string, error) {
	if err := page.WaitElementsMoreThan(statusLinkSelector, 0); err != nil {
		return nil, fmt.Errorf("waiting for status links: %w", err)
	}
	elements, err := page.Elements(statusLinkSelector)
	if err != nil {
		return nil, fmt.Errorf("querying status links: %w", err)
	}

	hrefs := make([]string, 0, len(elements))
	for _, el := range elements {
		href, err := el.Attribute("href")
		if err != nil || href == nil {
			log.WithError(err).Debug("Skipping status link without href")
			continue
		}
		hrefs = append(hrefs, *href)
	}
	return hrefs, nil
}
