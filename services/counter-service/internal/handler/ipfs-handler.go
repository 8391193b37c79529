package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/devayla/base-counter/common/httpx"
	countererrors "github.com/devayla/base-counter/services/counter-service/internal/errors"
)

// multipart framing allowance on top of the file limit
const multipartOverhead = 1 << 20

type uploadResponse struct {
	Success bool   `json:"success"`
	CID     string `json:"cid"`
	IpfsURL string `json:"ipfsUrl"`
}

func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	// a non-positive limit disables the cap
	limited := h.maxUploadBytes > 0
	if limited {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, r, countererrors.FileTooLarge())
			return
		}
		h.fail(w, r, countererrors.NoFileProvided())
		return
	}
	defer file.Close()

	var reader io.Reader = file
	if limited {
		reader = io.LimitReader(file, h.maxUploadBytes+1)
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		h.fail(w, r, countererrors.NoFileProvided())
		return
	}

	result, err := h.services.IPFS.UploadImage(r.Context(), header.Filename, content)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, uploadResponse{Success: true, CID: result.CID, IpfsURL: result.IpfsURL})
}
