package handler

import (
	"net/http"

	"github.com/devayla/base-counter/common/httpx"
)

type accountAssociation struct {
	Header    string `json:"header"`
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

type frameManifest struct {
	Version               string   `json:"version"`
	Name                  string   `json:"name"`
	IconURL               string   `json:"iconUrl"`
	HomeURL               string   `json:"homeUrl"`
	ImageURL              string   `json:"imageUrl"`
	ScreenshotURLs        []string `json:"screenshotUrls"`
	Tags                  []string `json:"tags"`
	PrimaryCategory       string   `json:"primaryCategory"`
	ButtonTitle           string   `json:"buttonTitle"`
	SplashImageURL        string   `json:"splashImageUrl"`
	SplashBackgroundColor string   `json:"splashBackgroundColor"`
	WebhookURL            string   `json:"webhookUrl"`
}

type manifest struct {
	AccountAssociation accountAssociation `json:"accountAssociation"`
	Frame              frameManifest      `json:"frame"`
}

func (h *Handler) buildManifest() manifest {
	url := h.app.URL
	return manifest{
		AccountAssociation: accountAssociation{
			Header:    h.app.AccountAssociation.Header,
			Payload:   h.app.AccountAssociation.Payload,
			Signature: h.app.AccountAssociation.Signature,
		},
		Frame: frameManifest{
			Version:               "1",
			Name:                  h.app.Name,
			IconURL:               url + "/images/icon.jpg",
			HomeURL:               url,
			ImageURL:              url + "/images/feed.jpg",
			ScreenshotURLs:        []string{},
			Tags:                  []string{"base", "farcaster", "miniapp", "game"},
			PrimaryCategory:       "games",
			ButtonTitle:           h.app.ButtonTitle,
			SplashImageURL:        url + "/images/splash.jpg",
			SplashBackgroundColor: "#ffffff",
			WebhookURL:            url + "/api/webhook",
		},
	}
}

func (h *Handler) Manifest(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.buildManifest())
}
