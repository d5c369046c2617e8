package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignajaliff/sheen-schedule-clean/internal/service/clients"
)

func vehicleInput(v vehicleDTO) clients.VehicleInput {
	return clients.VehicleInput{
		Make:         v.Make,
		Model:        v.Model,
		Year:         v.Year,
		LicensePlate: v.LicensePlate,
		Type:         v.Type,
		Color:        v.Color,
	}
}

func (s *Server) listClients(c *gin.Context) {
	list, err := s.deps.Clients.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.fail(c, "ListClients", err)
		return
	}
	out := make([]clientDTO, 0, len(list))
	for _, cl := range list {
		out = append(out, toClientDTO(cl))
	}
	c.JSON(http.StatusOK, gin.H{"clients": out})
}

func (s *Server) createClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "CreateClient", "invalid JSON body")
		return
	}
	in := clients.CreateInput{
		Name:                   req.Name,
		Email:                  req.Email,
		Phone:                  req.Phone,
		PreferredContactMethod: req.PreferredContactMethod,
		Notes:                  req.Notes,
	}
	for _, v := range req.Vehicles {
		in.Vehicles = append(in.Vehicles, vehicleInput(v))
	}

	cl, err := s.deps.Clients.Create(c.Request.Context(), in)
	if err != nil {
		s.fail(c, "CreateClient", err)
		return
	}
	s.log.Info("client created", slog.String("client_id", cl.ID.String()))
	c.JSON(http.StatusCreated, toClientDTO(cl))
}

func (s *Server) getClient(c *gin.Context) {
	id, ok := s.parseID(c, "GetClient")
	if !ok {
		return
	}
	cl, err := s.deps.Clients.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, "GetClient", err, slog.String("client_id", id.String()))
		return
	}
	c.JSON(http.StatusOK, toClientDTO(cl))
}

func (s *Server) addVehicle(c *gin.Context) {
	id, ok := s.parseID(c, "AddVehicle")
	if !ok {
		return
	}
	var req vehicleDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "AddVehicle", "invalid JSON body")
		return
	}
	cl, err := s.deps.Clients.AddVehicle(c.Request.Context(), id, vehicleInput(req))
	if err != nil {
		s.fail(c, "AddVehicle", err, slog.String("client_id", id.String()))
		return
	}
	c.JSON(http.StatusOK, toClientDTO(cl))
}

func (s *Server) addLoyaltyPoints(c *gin.Context) {
	id, ok := s.parseID(c, "AddLoyaltyPoints")
	if !ok {
		return
	}
	var req loyaltyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "AddLoyaltyPoints", "invalid JSON body")
		return
	}
	cl, err := s.deps.Clients.AddLoyaltyPoints(c.Request.Context(), id, req.Points)
	if err != nil {
		s.fail(c, "AddLoyaltyPoints", err, slog.String("client_id", id.String()))
		return
	}
	c.JSON(http.StatusOK, toClientDTO(cl))
}

func (s *Server) setLastServiceDate(c *gin.Context) {
	id, ok := s.parseID(c, "SetLastServiceDate")
	if !ok {
		return
	}
	var req lastServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "SetLastServiceDate", "invalid JSON body")
		return
	}
	cl, err := s.deps.Clients.SetLastServiceDate(c.Request.Context(), id, req.Date)
	if err != nil {
		s.fail(c, "SetLastServiceDate", err, slog.String("client_id", id.String()))
		return
	}
	c.JSON(http.StatusOK, toClientDTO(cl))
}
