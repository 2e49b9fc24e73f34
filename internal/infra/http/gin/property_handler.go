package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"glampstay/internal/app/dto"
	propertyapp "glampstay/internal/app/handlers/properties"
	"glampstay/internal/app/queries"
)

type PropertyHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h PropertyHandler) List(c *gin.Context) {
	items, err := queries.Ask[propertyapp.ListPropertiesQuery, dto.PropertyCollection](c.Request.Context(), h.Queries, propertyapp.ListPropertiesQuery{})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, http.StatusOK, "data", items)
}

func (h PropertyHandler) Get(c *gin.Context) {
	q := propertyapp.GetPropertyQuery{PropertyID: c.Param("id")}
	property, err := queries.Ask[propertyapp.GetPropertyQuery, dto.PropertyDTO](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, http.StatusOK, "data", property)
}

// Quote prices a stay from query parameters. Guest counts default to one adult.
func (h PropertyHandler) Quote(c *gin.Context) {
	q := propertyapp.QuoteQuery{
		PropertyID: c.Param("id"),
		CheckIn:    c.Query("checkIn"),
		CheckOut:   c.Query("checkOut"),
		Policy:     c.Query("policy"),
		Adults:     1,
	}
	counts := []struct {
		name string
		dst  *int
	}{
		{"adults", &q.Adults},
		{"children", &q.Children},
		{"infants", &q.Infants},
		{"pets", &q.Pets},
	}
	for _, field := range counts {
		raw := strings.TrimSpace(c.Query(field.name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondBadRequest(c, h.Logger, field.name+" must be a whole number")
			return
		}
		*field.dst = n
	}
	quote, err := queries.Ask[propertyapp.QuoteQuery, dto.QuoteDTO](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, http.StatusOK, "data", quote)
}

func (h PropertyHandler) Availability(c *gin.Context) {
	q := propertyapp.AvailabilityQuery{
		PropertyID: c.Param("id"),
		From:       c.Query("from"),
		To:         c.Query("to"),
	}
	out, err := queries.Ask[propertyapp.AvailabilityQuery, dto.AvailabilityDTO](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, http.StatusOK, "data", out)
}

func (h PropertyHandler) Policies(c *gin.Context) {
	items, err := queries.Ask[propertyapp.ListPoliciesQuery, []dto.PolicyDTO](c.Request.Context(), h.Queries, propertyapp.ListPoliciesQuery{})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, http.StatusOK, "data", items)
}

var _ PropertyHTTP = PropertyHandler{}
