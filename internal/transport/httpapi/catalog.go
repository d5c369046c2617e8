package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) listServices(c *gin.Context) {
	svcs, err := s.deps.Catalog.List(c.Request.Context())
	if err != nil {
		s.fail(c, "ListServices", err)
		return
	}
	out := make([]serviceDTO, 0, len(svcs))
	for _, svc := range svcs {
		out = append(out, toServiceDTO(svc))
	}
	c.JSON(http.StatusOK, gin.H{"services": out})
}

func (s *Server) createService(c *gin.Context) {
	var req createServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "CreateService", "invalid JSON body")
		return
	}
	svc, err := s.deps.Catalog.Create(c.Request.Context(), req.Name, req.Price)
	if err != nil {
		s.fail(c, "CreateService", err, slog.String("name", req.Name))
		return
	}
	s.log.Info("service created", slog.String("service_id", svc.ID.String()), slog.String("name", svc.Name))
	c.JSON(http.StatusCreated, toServiceDTO(svc))
}

func (s *Server) updateServicePrice(c *gin.Context) {
	id, ok := s.parseID(c, "UpdateServicePrice")
	if !ok {
		return
	}
	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "UpdateServicePrice", "invalid JSON body")
		return
	}
	svc, err := s.deps.Catalog.UpdatePrice(c.Request.Context(), id, req.Price)
	if err != nil {
		s.fail(c, "UpdateServicePrice", err, slog.String("service_id", id.String()))
		return
	}
	s.log.Info("service price updated", slog.String("service_id", svc.ID.String()), slog.String("price", svc.Price.String()))
	c.JSON(http.StatusOK, toServiceDTO(svc))
}
