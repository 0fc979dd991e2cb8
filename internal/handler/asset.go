package handler

import (
	"net/http"
	"strings"

	"github.com/stockpile-hq/stockpile/internal/model"
	"github.com/stockpile-hq/stockpile/internal/service"
)

type AssetHandler struct {
	assetService  *service.AssetService
	reportService *service.ReportService
	fileService   *service.FileService
}

func NewAssetHandler(assetService *service.AssetService, reportService *service.ReportService, fileService *service.FileService) *AssetHandler {
	return &AssetHandler{
		assetService:  assetService,
		reportService: reportService,
		fileService:   fileService,
	}
}

type createInstanceRequest struct {
	Label string `json:"label"`
}

type attachAttributeRequest struct {
	AttributeID string `json:"attributeId"`
}

func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if p.OrganizationID == nil {
		writeJSON(w, http.StatusOK, []*model.Asset{})
		return
	}

	assets, err := h.assetService.Assets(r.Context(), *p.OrganizationID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, assets)
}

func (h *AssetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateAssetInput
	if !decodeJSON(w, r, &in) {
		return
	}

	asset, err := h.assetService.CreateAsset(r.Context(), principal(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, asset)
}

func (h *AssetHandler) Show(w http.ResponseWriter, r *http.Request) {
	view, ok := h.ownedView(w, r)
	if !ok {
		return
	}

	h.fileService.SignValues(r.Context(), view.Attributes...)
	writeJSON(w, http.StatusOK, view)
}

func (h *AssetHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateAssetInput
	if !decodeJSON(w, r, &in) {
		return
	}

	asset, err := h.assetService.UpdateAsset(r.Context(), principal(r), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, asset)
}

func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.assetService.TrashAsset(r.Context(), principal(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AssetHandler) CreateInstance(w http.ResponseWriter, r *http.Request) {
	var in createInstanceRequest
	if !decodeJSON(w, r, &in) {
		return
	}

	instance, err := h.assetService.CreateInstance(r.Context(), principal(r), r.PathValue("id"), in.Label)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, instance)
}

func (h *AssetHandler) AttachAttribute(w http.ResponseWriter, r *http.Request) {
	var in attachAttributeRequest
	if !decodeJSON(w, r, &in) {
		return
	}

	err := h.assetService.AttachAttribute(r.Context(), principal(r), r.PathValue("id"), strings.TrimSpace(in.AttributeID))
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, ok := h.ownedView(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Report renders the asset as markdown (default) or HTML with ?format=.
func (h *AssetHandler) Report(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assetService.OwnedAsset(r.Context(), principal(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	body, contentType, err := h.reportService.AssetReport(r.Context(), asset.ID, r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *AssetHandler) ownedView(w http.ResponseWriter, r *http.Request) (*model.AssetWithAttributes, bool) {
	asset, err := h.assetService.OwnedAsset(r.Context(), principal(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}

	view, err := h.assetService.AssetWithAttributes(r.Context(), asset.ID)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return view, true
}
