package services

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"mpsite/internal/carousel"
	"mpsite/internal/domain/models"
	"mpsite/internal/lib/logger/sl"
	"mpsite/internal/render"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

const (
	blockPresskitBio      = "presskit_bio"
	blockPresskitDownload = "presskit_download_url"
)

// Section итог гидрации одного размеченного элемента
type Section struct {
	Name  string `json:"name"`
	Items int    `json:"items"`
	Error string `json:"error,omitempty"`
}

type Report struct {
	Page       string              `json:"page"`
	Cached     bool                `json:"cached"`
	Configured bool                `json:"configured"`
	Banner     bool                `json:"banner"`
	Sections   []Section           `json:"sections"`
	Carousels  []carousel.Snapshot `json:"carousels"`
}

func (r *Report) Failed() int {
	n := 0
	for _, s := range r.Sections {
		if s.Error != "" {
			n++
		}
	}
	return n
}

// markers узлы страницы, которые умеет заполнять бутстрап
type markers struct {
	releases       *html.Node
	labels         *html.Node
	mediaVideo     *html.Node
	mediaMix       *html.Node
	clinics        *html.Node
	presskitPhotos *html.Node
	presskitSlides *html.Node
	presskitDl     *html.Node
	presskitBio    *html.Node
	nav            *html.Node
	links          *html.Node
	blocks         []*html.Node
}

func marker(doc *render.Document, value, alt string) *html.Node {
	return doc.FindFirst([2]string{"data-sb", value}, [2]string{alt, ""})
}

func discover(doc *render.Document) markers {
	m := markers{
		releases:       marker(doc, "releases", "data-sb-releases"),
		labels:         marker(doc, "labels-track", "data-sb-labels-track"),
		mediaVideo:     marker(doc, "media-video", "data-sb-media-video"),
		mediaMix:       marker(doc, "media-mix", "data-sb-media-mix"),
		clinics:        doc.Find("data-sb", "clinics"),
		presskitPhotos: doc.Find("data-sb-presskit-photos", ""),
		presskitDl:     doc.Find("data-sb", "presskit-download"),
		presskitBio:    doc.Find("data-sb", "presskit-bio"),
		nav:            doc.Find("data-sb", "nav-list"),
		links:          doc.Find("data-sb", "site-links"),
		blocks:         doc.FindAll("data-sb-block"),
	}

	m.presskitSlides = doc.Find("data-sb", "presskit-slides")
	if m.presskitSlides == nil {
		m.presskitSlides = m.presskitPhotos
	}

	return m
}

func (m markers) empty() bool {
	return m.releases == nil && m.labels == nil && m.mediaVideo == nil && m.mediaMix == nil &&
		m.clinics == nil && m.presskitSlides == nil && m.presskitDl == nil && m.presskitBio == nil &&
		m.nav == nil && m.links == nil && len(m.blocks) == 0
}

func pending(n *html.Node) bool {
	return n != nil && !render.HasAttr(n, "data-hydrated")
}

// hydration одна гидрация страницы. Узлы HTML не потокобезопасны,
// поэтому запись в документ идет под mu.
type hydration struct {
	log    *slog.Logger
	mu     sync.Mutex
	report *Report
}

func (h *hydration) record(sec Section) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.report.Sections = append(h.report.Sections, sec)
}

// run задачи не возвращают ошибок: упавшая секция не отменяет соседние
func (h *hydration) run(ctx context.Context, g *errgroup.Group, name string, node *html.Node, task func(ctx context.Context) (int, func() error, error)) {
	g.Go(func() error {
		items, paint, err := task(ctx)
		if err == nil && paint != nil {
			h.mu.Lock()
			err = paint()
			if err == nil && node != nil && items > 0 {
				render.SetAttr(node, "data-hydrated", "true")
			}
			h.mu.Unlock()
		}

		sec := Section{Name: name, Items: items}
		if err != nil {
			sec.Error = err.Error()
			h.log.Error("section hydrate error", slog.String("section", name), sl.Err(err))
		}
		h.record(sec)

		return nil
	})
}

// Hydrate заполняет размеченные узлы и собирает карусели
func (s *PageService) Hydrate(ctx context.Context, doc *render.Document, reducedMotion bool) *Report {
	const op = "page_service.Hydrate"

	log := s.log.With(slog.String("op", op))

	report := &Report{Sections: []Section{}, Carousels: []carousel.Snapshot{}}
	m := discover(doc)

	if m.empty() {
		return report
	}

	defer func() {
		report.Carousels = s.attachCarousels(log, m, reducedMotion)
	}()

	if !s.content.Configured() {
		log.Warn("backend not configured: using static content")
		report.Banner = revealBanners(doc)
		return report
	}
	report.Configured = true

	h := &hydration{log: log, report: report}
	g, gctx := errgroup.WithContext(ctx)

	if pending(m.releases) {
		h.run(gctx, g, "releases", m.releases, func(ctx context.Context) (int, func() error, error) {
			releases, err := s.content.Releases(ctx)
			if err != nil {
				return 0, nil, err
			}
			featured := make([]models.Release, 0, len(releases))
			for _, r := range releases {
				if r.IsFeatured {
					featured = append(featured, r)
				}
			}
			return len(featured), func() error { return render.Releases(m.releases, featured) }, nil
		})
	}

	if pending(m.labels) {
		h.run(gctx, g, "labels", m.labels, func(ctx context.Context) (int, func() error, error) {
			labels, err := s.content.Labels(ctx)
			if err != nil {
				return 0, nil, err
			}
			return len(labels), func() error { return render.Labels(m.labels, labels) }, nil
		})
	}

	for _, media := range []struct {
		name string
		node *html.Node
		kind models.MediaKind
	}{
		{"media-video", m.mediaVideo, models.MediaKindVideo},
		{"media-mix", m.mediaMix, models.MediaKindMix},
	} {
		if !pending(media.node) {
			continue
		}
		h.run(gctx, g, media.name, media.node, func(ctx context.Context) (int, func() error, error) {
			items, err := s.content.Media(ctx, media.kind)
			if err != nil {
				return 0, nil, err
			}
			return len(items), func() error { return render.Media(media.node, items, media.kind) }, nil
		})
	}

	if pending(m.clinics) {
		h.run(gctx, g, "clinics", m.clinics, func(ctx context.Context) (int, func() error, error) {
			clinics, err := s.content.Clinics(ctx)
			if err != nil {
				return 0, nil, err
			}
			return len(clinics), func() error { return render.Clinics(m.clinics, clinics) }, nil
		})
	}

	if pending(m.nav) {
		h.run(gctx, g, "nav", m.nav, func(ctx context.Context) (int, func() error, error) {
			items, err := s.content.NavItems(ctx)
			if err != nil {
				return 0, nil, err
			}
			return len(items), func() error { return render.NavList(m.nav, items) }, nil
		})
	}

	if pending(m.links) {
		h.run(gctx, g, "links", m.links, func(ctx context.Context) (int, func() error, error) {
			links, err := s.content.SiteLinks(ctx)
			if err != nil {
				return 0, nil, err
			}
			return len(links), func() error { return render.SiteLinks(m.links, links) }, nil
		})
	}

	var (
		assets []models.PresskitAsset
		blocks models.TextBlocks
	)

	if pending(m.presskitSlides) || pending(m.presskitDl) {
		h.run(gctx, g, "presskit", m.presskitSlides, func(ctx context.Context) (int, func() error, error) {
			var err error
			assets, err = s.content.PresskitAssets(ctx)
			if err != nil {
				return 0, nil, err
			}
			photos := photosOf(assets)
			return len(photos), func() error { return paintPhotos(m, photos) }, nil
		})
	}

	if keys := blockKeys(m); len(keys) > 0 {
		h.run(gctx, g, "blocks", nil, func(ctx context.Context) (int, func() error, error) {
			var err error
			blocks, err = s.content.Blocks(ctx, keys)
			if err != nil {
				return 0, nil, err
			}
			return len(blocks), func() error {
				if err := render.TextBlocks(m.blocks, blocks); err != nil {
					return err
				}
				for _, n := range m.blocks {
					key, _ := render.Attr(n, "data-sb-block")
					if _, ok := blocks[key]; ok {
						render.SetAttr(n, "data-hydrated", "true")
					}
				}
				if pending(m.presskitBio) {
					return render.TextBlock(m.presskitBio, blocks[blockPresskitBio])
				}
				return nil
			}, nil
		})
	}

	_ = g.Wait()

	if pending(m.presskitDl) {
		if url := downloadURL(assets, blocks); url != "" {
			render.DownloadLink(m.presskitDl, url)
			render.SetAttr(m.presskitDl, "data-hydrated", "true")
		}
	}

	if len(report.Sections) > 0 && report.Failed() == len(report.Sections) {
		log.Warn("every section failed: using static content")
		report.Banner = revealBanners(doc)
	}

	return report
}

func photosOf(assets []models.PresskitAsset) []models.PresskitAsset {
	var out []models.PresskitAsset
	for _, a := range assets {
		if a.IsPhoto() {
			out = append(out, a)
		}
	}
	return out
}

func paintPhotos(m markers, photos []models.PresskitAsset) error {
	if !pending(m.presskitSlides) {
		return nil
	}
	if err := render.PresskitPhotos(m.presskitSlides, photos); err != nil {
		return err
	}
	if len(photos) > 0 && m.presskitPhotos != nil {
		return render.Dots(findDots(m.presskitPhotos), len(photos))
	}
	return nil
}

func findDots(root *html.Node) *html.Node {
	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && render.HasAttr(n, "data-slider-dots") {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}

// downloadURL первый не-фото ассет, иначе блок presskit_download_url
func downloadURL(assets []models.PresskitAsset, blocks models.TextBlocks) string {
	for _, a := range assets {
		if !a.IsPhoto() && a.URL != "" {
			return a.URL
		}
	}
	return blocks[blockPresskitDownload]
}

func blockKeys(m markers) []string {
	var keys []string
	for _, n := range m.blocks {
		if !pending(n) {
			continue
		}
		if key, _ := render.Attr(n, "data-sb-block"); key != "" {
			keys = append(keys, key)
		}
	}
	if pending(m.presskitBio) {
		keys = append(keys, blockPresskitBio)
	}
	if pending(m.presskitDl) {
		keys = append(keys, blockPresskitDownload)
	}
	return keys
}

func revealBanners(doc *render.Document) bool {
	banners := doc.FindAll("data-supabase-banner")
	for _, b := range banners {
		render.RemoveAttr(b, "hidden")
	}
	return len(banners) > 0
}

// attachCarousels на сервере: клоны и начальное смещение.
// При reduced motion автопрокрутка выключается.
func (s *PageService) attachCarousels(log *slog.Logger, m markers, reducedMotion bool) []carousel.Snapshot {
	autoplay := func(d time.Duration) time.Duration {
		if reducedMotion {
			return 0
		}
		return d
	}

	presskit := s.opts.PresskitAutoplay
	if slider := render.Closest(m.presskitSlides, "data-slider"); slider != nil {
		if v, ok := render.Attr(slider, "data-autoplay"); ok {
			if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
				presskit = time.Duration(ms) * time.Millisecond
			}
		}
	}

	var out []carousel.Snapshot
	for _, c := range []struct {
		node     *html.Node
		interval time.Duration
	}{
		{m.releases, autoplay(s.opts.ReleaseAutoplay)},
		{m.mediaVideo, 0},
		{m.mediaMix, 0},
		{m.presskitSlides, autoplay(presskit)},
	} {
		if c.node == nil {
			continue
		}
		out = append(out, render.Loop(log, c.node, c.interval))
	}
	return out
}
