package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/stockpile-hq/stockpile/internal/attrtype"
	"github.com/stockpile-hq/stockpile/internal/model"
	"github.com/stockpile-hq/stockpile/internal/service"
)

type AttributeHandler struct {
	attributeService *service.AttributeService
	fileService      *service.FileService
	maxUploadSize    int64
}

func NewAttributeHandler(attributeService *service.AttributeService, fileService *service.FileService, maxUploadSize int64) *AttributeHandler {
	return &AttributeHandler{
		attributeService: attributeService,
		fileService:      fileService,
		maxUploadSize:    maxUploadSize,
	}
}

type attributeTypeResponse struct {
	Type      model.AttributeType `json:"type"`
	Companion attrtype.Companion  `json:"companion,omitempty"`
	Units     []string            `json:"units,omitempty"`
}

// List returns the attributes visible to the caller's organization,
// including the global ones.
func (h *AttributeHandler) List(w http.ResponseWriter, r *http.Request) {
	switch scope := r.URL.Query().Get("scope"); scope {
	case "", "organization":
	default:
		writeErrorBody(w, http.StatusBadRequest, errorBody{
			Kind:    string(service.KindValidation),
			Message: "scope must be: organization",
			Field:   "scope",
		})
		return
	}

	attrs, err := h.attributeService.VisibleAttributes(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.fileService.SignValues(r.Context(), attrs...)
	writeJSON(w, http.StatusOK, attrs)
}

func (h *AttributeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateAttributeInput
	if !decodeJSON(w, r, &in) {
		return
	}

	attr, err := h.attributeService.CreateAttribute(r.Context(), principal(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, &model.AttributeWithValues{Attribute: attr, Values: []model.Value{}})
}

func (h *AttributeHandler) Show(w http.ResponseWriter, r *http.Request) {
	attr, err := h.attributeService.AttributeByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !attr.VisibleTo(principal(r).OrganizationID) {
		writeError(w, r, &service.Error{Kind: service.KindNotFound, Message: "attribute not found"})
		return
	}

	h.fileService.SignValues(r.Context(), attr)
	writeJSON(w, http.StatusOK, attr)
}

func (h *AttributeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateAttributeInput
	if !decodeJSON(w, r, &in) {
		return
	}

	attr, err := h.attributeService.UpdateAttribute(r.Context(), principal(r), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, attr)
}

func (h *AttributeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.attributeService.TrashAttribute(r.Context(), principal(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AttributeHandler) CreateValue(w http.ResponseWriter, r *http.Request) {
	var in service.CreateValueInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.AttributeID = r.PathValue("id")

	value, err := h.attributeService.CreateAttributeValueFor(r.Context(), principal(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, value)
}

// UploadFile takes a multipart form with a "file" part and an optional
// assetInstanceId field.
func (h *AttributeHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+maxBodyBytes)
	err := r.ParseMultipartForm(32 << 20)
	if err != nil {
		message := "invalid multipart form"
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			message = "file too large"
		}
		writeErrorBody(w, http.StatusBadRequest, errorBody{Kind: string(service.KindValidation), Message: message, Field: "file"})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorBody(w, http.StatusBadRequest, errorBody{Kind: string(service.KindValidation), Message: "file is required", Field: "file"})
		return
	}
	defer func() { _ = file.Close() }()

	var instanceID *string
	if id := strings.TrimSpace(r.FormValue("assetInstanceId")); id != "" {
		instanceID = &id
	}

	value, err := h.fileService.Upload(r.Context(), principal(r), r.PathValue("id"), instanceID, file, header)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, value)
}

// Types lists the closed attribute type set with each type's companion field.
func (h *AttributeHandler) Types(w http.ResponseWriter, r *http.Request) {
	handlers := h.attributeService.Registry().Handlers()
	out := make([]attributeTypeResponse, 0, len(handlers))
	for _, th := range handlers {
		out = append(out, attributeTypeResponse{
			Type:      th.Type,
			Companion: th.Companion,
			Units:     th.Units,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
