package web

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/vbonduro/rbaudit/internal/domain"
	"github.com/vbonduro/rbaudit/internal/service"
)

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	assets := s.service.Assets()
	if assets == nil {
		assets = []domain.AssetRecord{}
	}
	writeJSON(w, http.StatusOK, assets)
}

type addAssetRequest struct {
	IsExisting bool `json:"isExisting"`
}

func (s *Server) handleAddAsset(w http.ResponseWriter, r *http.Request) {
	var req addAssetRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	rec, err := s.service.AddAsset(req.IsExisting)
	if errors.Is(err, service.ErrNoCurrentBuilding) {
		writeError(w, http.StatusConflict, "select a building first")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to add asset")
		s.logger.Error("add asset failed", zap.Error(err))
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// assetPatchRequest mirrors domain.AssetPatch. Conditions accept 1..5 as a
// number or string, and "" clears them. Catalogue is a "component | group |
// type" label that sets all three fields at once.
type assetPatchRequest struct {
	FunctionalArea *string           `json:"functionalArea" validate:"omitempty,max=200"`
	Catalogue      *string           `json:"catalogue" validate:"omitempty,max=600"`
	Component      *string           `json:"component" validate:"omitempty,max=200"`
	Group          *string           `json:"group" validate:"omitempty,max=200"`
	Type           *string           `json:"type" validate:"omitempty,max=200"`
	Qty            *string           `json:"qty" validate:"omitempty,max=50"`
	Unit           *string           `json:"unit" validate:"omitempty,oneof=No m² lm m³ pair set"`
	FuncCond       *domain.Condition `json:"funcCond"`
	AesthCond      *domain.Condition `json:"aesthCond"`
	Defects        *string           `json:"defects" validate:"omitempty,max=4000"`
	PolygonID      *string           `json:"polygonId" validate:"omitempty,max=200"`
}

func (p assetPatchRequest) toPatch() domain.AssetPatch {
	patch := domain.AssetPatch{
		FunctionalArea: p.FunctionalArea,
		Component:      p.Component,
		Group:          p.Group,
		Type:           p.Type,
		Qty:            p.Qty,
		FuncCond:       p.FuncCond,
		AesthCond:      p.AesthCond,
		Defects:        p.Defects,
		PolygonID:      p.PolygonID,
	}
	if p.Unit != nil && *p.Unit != "" {
		patch.Unit = p.Unit
	}
	if p.Catalogue != nil {
		item := domain.ParseCatalogueOption(*p.Catalogue)
		patch.Component, patch.Group, patch.Type = &item.Component, &item.Group, &item.Type
	}
	return patch
}

func (s *Server) handleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	var req assetPatchRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	rec, err := s.service.UpdateAsset(r.PathValue("id"), req.toPatch())
	if errors.Is(err, service.ErrAssetNotFound) {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update asset")
		s.logger.Error("update asset failed", zap.Error(err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleRemoveAsset succeeds for unknown ids too.
func (s *Server) handleRemoveAsset(w http.ResponseWriter, r *http.Request) {
	s.service.RemoveAsset(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

type locationRequest struct {
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
}

func (s *Server) handleRecordLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	rec, err := s.service.RecordLocation(r.PathValue("id"), *req.Longitude, *req.Latitude)
	if errors.Is(err, service.ErrAssetNotFound) {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to record location")
		s.logger.Error("record location failed", zap.Error(err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
