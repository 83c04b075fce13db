package services

// Ключи списков кандидатов. Списки можно переопределить в конфигурации.
const (
	SourceReleases    = "releases"
	SourceLabels      = "labels"
	SourceMediaVideos = "media_videos"
	SourceMediaMixes  = "media_mixes"
	SourceMediaItems  = "media_items"
	SourcePresskit    = "presskit"
	SourceClinics     = "clinics"
	SourceBlocks      = "blocks"
	SourceNav         = "nav"
	SourceLinks       = "links"
	SourceLeads       = "leads"
)

// Sources ключ -> упорядоченный список таблиц/view, от приоритетного к запасному
type Sources map[string][]string

func DefaultSources() Sources {
	return Sources{
		SourceReleases:    {"v_home_releases", "home_releases", "releases"},
		SourceLabels:      {"v_labels_support", "labels_support", "labels"},
		SourceMediaVideos: {"v_media_videos"},
		SourceMediaMixes:  {"v_media_mixes"},
		SourceMediaItems:  {"media_items"},
		SourcePresskit:    {"v_presskit_download", "presskit_packages", "presskit_assets"},
		SourceClinics:     {"clinics", "clinicas", "clinic_items"},
		SourceBlocks:      {"page_blocks", "blocks", "profiles"},
		SourceNav:         {"nav_items", "navigation"},
		SourceLinks:       {"site_links", "social_links"},
		SourceLeads:       {"booking_leads", "contact_leads", "leads", "contact_messages"},
	}
}

// Merge возвращает копию с непустыми списками из overrides поверх s
func (s Sources) Merge(overrides map[string][]string) Sources {
	out := make(Sources, len(s))
	for k, v := range s {
		out[k] = append([]string(nil), v...)
	}
	for k, v := range overrides {
		if len(v) > 0 {
			out[k] = append([]string(nil), v...)
		}
	}
	return out
}
