package registry

import "github.com/regpulse/regpulse/backend/internal/models"

// Default builds the registry from the built-in catalog. The catalog is
// deliberately static rather than database-backed so the full source
// list stays reviewable in one place.
func Default() (*Registry, error) {
	return New(catalog())
}

func catalog() []models.SourceDescriptor {
	return []models.SourceDescriptor{
		{
			ID:          "fda-510k",
			Name:        "FDA 510(k) Database",
			Type:        models.SourceTypeAPI,
			Category:    models.CategoryRegulatory,
			Priority:    models.PriorityHigh,
			Region:      "United States",
			URL:         "https://api.fda.gov/device/510k.json",
			APIEndpoint: "https://api.fda.gov/device/510k.json",
			API: &models.APIConfig{
				Params:     map[string]string{"limit": "100", "sort": "decision_date:desc"},
				ResultPath: "results",
			},
			RateLimitPerHour: 240,
			TimeoutSeconds:   30,
			MaxRetries:       3,
			IsActive:         true,
		},
		{
			ID:          "fda-pma",
			Name:        "FDA PMA Database",
			Type:        models.SourceTypeAPI,
			Category:    models.CategoryRegulatory,
			Priority:    models.PriorityHigh,
			Region:      "United States",
			URL:         "https://api.fda.gov/device/pma.json",
			APIEndpoint: "https://api.fda.gov/device/pma.json",
			API: &models.APIConfig{
				Params:     map[string]string{"limit": "100", "sort": "decision_date:desc"},
				ResultPath: "results",
			},
			RateLimitPerHour: 240,
			TimeoutSeconds:   30,
			MaxRetries:       3,
			IsActive:         true,
		},
		{
			ID:          "fda-recalls",
			Name:        "FDA Device Recalls",
			Type:        models.SourceTypeAPI,
			Category:    models.CategorySafety,
			Priority:    models.PriorityHigh,
			Region:      "United States",
			URL:         "https://api.fda.gov/device/recall.json",
			APIEndpoint: "https://api.fda.gov/device/recall.json",
			API: &models.APIConfig{
				Params:     map[string]string{"limit": "100", "sort": "report_date:desc"},
				ResultPath: "results",
			},
			RateLimitPerHour: 240,
			TimeoutSeconds:   30,
			MaxRetries:       3,
			IsActive:         true,
		},
		{
			ID:          "fda-classification",
			Name:        "FDA Device Classification Database",
			Type:        models.SourceTypeAPI,
			Category:    models.CategoryRegulatory,
			Priority:    models.PriorityHigh,
			Region:      "United States",
			URL:         "https://api.fda.gov/device/classification.json",
			APIEndpoint: "https://api.fda.gov/device/classification.json",
			API: &models.APIConfig{
				Params:     map[string]string{"limit": "100", "sort": "regulation_name"},
				ResultPath: "results",
			},
			RateLimitPerHour: 240,
			TimeoutSeconds:   30,
			MaxRetries:       3,
			IsActive:         true,
		},
		{
			ID:          "fda-udi",
			Name:        "FDA UDI Database",
			Type:        models.SourceTypeAPI,
			Category:    models.CategoryRegulatory,
			Priority:    models.PriorityHigh,
			Region:      "United States",
			URL:         "https://api.fda.gov/device/udi.json",
			APIEndpoint: "https://api.fda.gov/device/udi.json",
			API: &models.APIConfig{
				Params:     map[string]string{"limit": "100", "sort": "public_version_date:desc"},
				ResultPath: "results",
			},
			RateLimitPerHour: 240,
			TimeoutSeconds:   30,
			MaxRetries:       3,
			IsActive:         true,
		},
		{
			ID:          "fda-enforcement",
			Name:        "FDA Enforcement Reports",
			Type:        models.SourceTypeAPI,
			Category:    models.CategorySafety,
			Priority:    models.PriorityHigh,
			Region:      "United States",
			URL:         "https://api.fda.gov/device/enforcement.json",
			APIEndpoint: "https://api.fda.gov/device/enforcement.json",
			API: &models.APIConfig{
				Params:     map[string]string{"limit": "100", "sort": "report_date:desc"},
				ResultPath: "results",
			},
			RateLimitPerHour: 240,
			TimeoutSeconds:   30,
			MaxRetries:       3,
			IsActive:         true,
		},
		{
			ID:          "health-canada-mdr",
			Name:        "Health Canada Medical Device Registry",
			Type:        models.SourceTypeAPI,
			Category:    models.CategoryRegulatory,
			Priority:    models.PriorityHigh,
			Region:      "Canada",
			URL:         "https://health-products.canada.ca/api/medical-devices",
			APIEndpoint: "https://health-products.canada.ca/api/medical-devices/search",
			API: &models.APIConfig{
				Params:     map[string]string{"limit": "100", "format": "json"},
				ResultPath: "results",
			},
			RateLimitPerHour: 120,
			TimeoutSeconds:   30,
			MaxRetries:       3,
			IsActive:         true,
		},
		{
			ID:          "who-global",
			Name:        "WHO Global Medical Device Alerts",
			Type:        models.SourceTypeAPI,
			Category:    models.CategoryGlobalHealth,
			Priority:    models.PriorityHigh,
			Region:      "Global",
			URL:         "https://extranet.who.int/gavi/api/medical-devices",
			APIEndpoint: "https://extranet.who.int/gavi/api/medical-devices/search",
			API: &models.APIConfig{
				Params:     map[string]string{"limit": "100", "type": "medical_device"},
				ResultPath: "data",
			},
			RateLimitPerHour: 60,
			TimeoutSeconds:   30,
			MaxRetries:       3,
			IsActive:         true,
		},
		{
			ID:          "clinicaltrials-gov",
			Name:        "ClinicalTrials.gov Medical Devices",
			Type:        models.SourceTypeAPI,
			Category:    models.CategoryClinical,
			Priority:    models.PriorityMedium,
			Region:      "Global",
			URL:         "https://clinicaltrials.gov/api/query/study_fields",
			APIEndpoint: "https://clinicaltrials.gov/api/query/study_fields",
			API: &models.APIConfig{
				Params: map[string]string{
					"expr":    "medical device",
					"fields":  "NCTId,BriefTitle,StudyType,Phase,OverallStatus",
					"max_rnk": "100",
					"fmt":     "json",
				},
				ResultPath: "StudyFieldsResponse.StudyFields",
			},
			RateLimitPerHour: 120,
			TimeoutSeconds:   30,
			MaxRetries:       3,
			IsActive:         true,
		},
		{
			ID:       "ema-epar",
			Name:     "EMA EPAR Database",
			Type:     models.SourceTypeScrape,
			Category: models.CategoryRegulatory,
			Priority: models.PriorityHigh,
			Region:   "Europe",
			URL:      "https://www.ema.europa.eu/en/medicines/download-medicine-data",
			Scrape: &models.ScrapeConfig{
				Article: ".ema-search-result",
				Title:   ".ema-search-result-title a",
				Date:    ".ema-search-result-date",
				Link:    ".ema-search-result-title a",
			},
			RateLimitPerHour: 60,
			TimeoutSeconds:   45,
			MaxRetries:       3,
			IsActive:         true,
		},
		{
			ID:       "bfarm-germany",
			Name:     "BfArM Germany Medical Devices",
			Type:     models.SourceTypeScrape,
			Category: models.CategoryRegulatory,
			Priority: models.PriorityHigh,
			Region:   "Germany",
			URL:      "https://www.bfarm.de/DE/Medizinprodukte/_node.html",
			Scrape: &models.ScrapeConfig{
				Article: ".news-item",
				Title:   ".news-title a",
				Date:    ".news-date",
				Link:    ".news-title a",
			},
			RateLimitPerHour: 60,
			TimeoutSeconds:   45,
			MaxRetries:       3,
			IsActive:         true,
		},
		{
			ID:       "swissmedic",
			Name:     "Swissmedic Medical Devices",
			Type:     models.SourceTypeScrape,
			Category: models.CategoryRegulatory,
			Priority: models.PriorityHigh,
			Region:   "Switzerland",
			URL:      "https://www.swissmedic.ch/swissmedic/en/home/medical-devices.html",
			Scrape: &models.ScrapeConfig{
				Article: ".news-list-item",
				Title:   ".news-title",
				Date:    ".news-date",
				Link:    ".news-title a",
			},
			RateLimitPerHour: 60,
			TimeoutSeconds:   45,
			MaxRetries:       3,
			IsActive:         true,
		},
		{
			ID:       "mhra-uk",
			Name:     "MHRA UK Medical Devices",
			Type:     models.SourceTypeScrape,
			Category: models.CategoryRegulatory,
			Priority: models.PriorityHigh,
			Region:   "United Kingdom",
			URL:      "https://www.gov.uk/government/organisations/medicines-and-healthcare-products-regulatory-agency",
			Scrape: &models.ScrapeConfig{
				Article: ".gem-c-document-list__item",
				Title:   ".gem-c-document-list__item-title a",
				Date:    ".gem-c-document-list__attribute-group time",
				Link:    ".gem-c-document-list__item-title a",
			},
			RateLimitPerHour: 60,
			TimeoutSeconds:   45,
			MaxRetries:       3,
			IsActive:         true,
		},
		{
			ID:       "tga-australia",
			Name:     "TGA Australia Medical Devices",
			Type:     models.SourceTypeScrape,
			Category: models.CategoryRegulatory,
			Priority: models.PriorityHigh,
			Region:   "Australia",
			URL:      "https://www.tga.gov.au/resources/artg",
			Scrape: &models.ScrapeConfig{
				Article: ".search-result",
				Title:   ".search-result-title a",
				Date:    ".search-result-date",
				Link:    ".search-result-title a",
			},
			RateLimitPerHour: 60,
			TimeoutSeconds:   45,
			MaxRetries:       3,
			IsActive:         true,
		},
		{
			ID:       "pmda-japan",
			Name:     "PMDA Japan Medical Devices",
			Type:     models.SourceTypeScrape,
			Category: models.CategoryRegulatory,
			Priority: models.PriorityHigh,
			Region:   "Japan",
			URL:      "https://www.pmda.go.jp/english/review-services/reviews/approved-information/medical-devices/",
			Scrape: &models.ScrapeConfig{
				Article: ".news-item",
				Title:   ".news-title",
				Date:    ".news-date",
				Link:    ".news-title a",
			},
			RateLimitPerHour: 60,
			TimeoutSeconds:   45,
			MaxRetries:       3,
			IsActive:         true,
		},
		{
			ID:       "nmpa-china",
			Name:     "NMPA China Medical Devices",
			Type:     models.SourceTypeScrape,
			Category: models.CategoryRegulatory,
			Priority: models.PriorityHigh,
			Region:   "China",
			URL:      "https://www.nmpa.gov.cn/ylqx/",
			Scrape: &models.ScrapeConfig{
				Article: ".list-item",
				Title:   ".list-title a",
				Date:    ".list-date",
				Link:    ".list-title a",
			},
			RateLimitPerHour: 30,
			TimeoutSeconds:   60,
			MaxRetries:       3,
			IsActive:         true,
		},
		{
			ID:               "medtech-dive",
			Name:             "MedTech Dive News",
			Type:             models.SourceTypeRSS,
			Category:         models.CategoryRegulatory,
			Priority:         models.PriorityMedium,
			Region:           "Global",
			URL:              "https://www.medtechdive.com/feeds/",
			RateLimitPerHour: 60,
			TimeoutSeconds:   30,
			MaxRetries:       3,
			IsActive:         true,
		},
		{
			ID:               "medical-design-outsourcing",
			Name:             "Medical Design and Outsourcing",
			Type:             models.SourceTypeRSS,
			Category:         models.CategoryRegulatory,
			Priority:         models.PriorityMedium,
			Region:           "Global",
			URL:              "https://www.medicaldesignandoutsourcing.com/feed/",
			RateLimitPerHour: 60,
			TimeoutSeconds:   30,
			MaxRetries:       3,
			IsActive:         true,
		},
		{
			ID:       "jama-network",
			Name:     "JAMA Medical Device Research",
			Type:     models.SourceTypeScrape,
			Category: models.CategoryClinical,
			Priority: models.PriorityMedium,
			Region:   "Global",
			URL:      "https://jamanetwork.com/collections/6184/medical-devices",
			Scrape: &models.ScrapeConfig{
				Article: ".article-item",
				Title:   ".article-title a",
				Date:    ".article-date",
				Link:    ".article-title a",
			},
			RateLimitPerHour: 30,
			TimeoutSeconds:   45,
			MaxRetries:       3,
			IsActive:         true,
		},
		{
			ID:       "iso-medical",
			Name:     "ISO Medical Device Standards",
			Type:     models.SourceTypeScrape,
			Category: models.CategoryStandards,
			Priority: models.PriorityMedium,
			Region:   "Global",
			URL:      "https://www.iso.org/committee/54892.html",
			Scrape: &models.ScrapeConfig{
				Article: ".standard-item",
				Title:   ".standard-title a",
				Date:    ".standard-date",
				Link:    ".standard-title a",
			},
			RateLimitPerHour: 30,
			TimeoutSeconds:   45,
			MaxRetries:       3,
			IsActive:         true,
		},
		{
			ID:       "iec-medical",
			Name:     "IEC Medical Standards",
			Type:     models.SourceTypeScrape,
			Category: models.CategoryStandards,
			Priority: models.PriorityMedium,
			Region:   "Global",
			URL:      "https://www.iec.ch/dyn/www/f?p=103:7:0::::FSP_ORG_ID,FSP_LANG_ID:1316,25",
			Scrape: &models.ScrapeConfig{
				Article: ".standard-entry",
				Title:   ".standard-number",
				Date:    ".standard-published",
				Link:    ".standard-number a",
			},
			RateLimitPerHour: 30,
			TimeoutSeconds:   45,
			MaxRetries:       3,
			IsActive:         true,
		},
		{
			ID:       "anvisa-brazil",
			Name:     "ANVISA Brazil",
			Type:     models.SourceTypeScrape,
			Category: models.CategoryRegulatory,
			Priority: models.PriorityLow,
			Region:   "Brazil",
			URL:      "https://www.gov.br/anvisa/pt-br/assuntos/producoes-medicas",
			Scrape: &models.ScrapeConfig{
				Article: ".noticia-item",
				Title:   ".noticia-titulo a",
				Date:    ".noticia-data",
				Link:    ".noticia-titulo a",
			},
			RateLimitPerHour: 30,
			TimeoutSeconds:   60,
			MaxRetries:       3,
			IsActive:         true,
		},
		{
			ID:       "cofepris-mexico",
			Name:     "COFEPRIS Mexico",
			Type:     models.SourceTypeScrape,
			Category: models.CategoryRegulatory,
			Priority: models.PriorityLow,
			Region:   "Mexico",
			URL:      "https://www.gob.mx/cofepris/acciones-y-programas/dispositivos-medicos",
			Scrape: &models.ScrapeConfig{
				Article: ".programa-item",
				Title:   ".programa-titulo",
				Date:    ".programa-fecha",
				Link:    ".programa-titulo a",
			},
			RateLimitPerHour: 30,
			TimeoutSeconds:   60,
			MaxRetries:       3,
			IsActive:         true,
		},
		{
			ID:       "invima-colombia",
			Name:     "INVIMA Colombia",
			Type:     models.SourceTypeScrape,
			Category: models.CategoryRegulatory,
			Priority: models.PriorityLow,
			Region:   "Colombia",
			URL:      "https://www.invima.gov.co/dispositivos-medicos-y-otras-tecnologias/",
			Scrape: &models.ScrapeConfig{
				Article: ".news-item",
				Title:   ".news-title",
				Date:    ".news-date",
				Link:    ".news-title a",
			},
			RateLimitPerHour: 30,
			TimeoutSeconds:   60,
			MaxRetries:       3,
			IsActive:         true,
		},
	}
}
