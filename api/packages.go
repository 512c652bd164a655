package api

import (
	"net/http"

	"github.com/Domenick1991/coursedesk/internal/domain"
	"github.com/Domenick1991/coursedesk/internal/service/catalog"
	"github.com/gin-gonic/gin"
)

type PackageHandler struct {
	service catalog.CatalogUseCase
}

type packageResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       string            `json:"price"`
	PriceMinor  domain.MinorUnits `json:"price_minor"`
	Currency    string            `json:"currency"`
}

func NewPackageHandler(service catalog.CatalogUseCase) *PackageHandler {
	return &PackageHandler{service: service}
}

func (h *PackageHandler) Register(router gin.IRouter) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
}

func (h *PackageHandler) list(c *gin.Context) {
	pkgs, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]packageResponse, 0, len(pkgs))
	for _, p := range pkgs {
		out = append(out, toPackageResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

func (h *PackageHandler) get(c *gin.Context) {
	pkg, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPackageResponse(*pkg))
}

func toPackageResponse(p domain.CoursePackage) packageResponse {
	return packageResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.Decimal(),
		PriceMinor:  p.Price,
		Currency:    p.Currency,
	}
}
