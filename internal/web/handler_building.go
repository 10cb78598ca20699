package web

import (
	"net/http"

	"github.com/vbonduro/rbaudit/internal/domain"
)

func (s *Server) handleListBuildings(w http.ResponseWriter, r *http.Request) {
	buildings := s.service.Buildings()
	if buildings == nil {
		buildings = []domain.Building{}
	}
	writeJSON(w, http.StatusOK, buildings)
}

func (s *Server) handleCurrentBuilding(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.CurrentView())
}

type selectBuildingRequest struct {
	ID string `json:"id" validate:"required,max=200"`
}

// handleSelectBuilding accepts unknown ids; the view then has no building.
func (s *Server) handleSelectBuilding(w http.ResponseWriter, r *http.Request) {
	var req selectBuildingRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.service.SelectBuilding(req.ID))
}

type catalogueResponse struct {
	Options []string               `json:"options"`
	Items   []domain.CatalogueItem `json:"items"`
}

func (s *Server) handleFunctionalAreas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.FunctionalAreas())
}

func (s *Server) handleCatalogue(w http.ResponseWriter, r *http.Request) {
	resp := catalogueResponse{Options: s.service.CatalogueOptions(), Items: s.service.CatalogueItems()}
	if resp.Items == nil {
		resp.Items = []domain.CatalogueItem{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.Units)
}
