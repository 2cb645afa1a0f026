package handler

import (
	"net/http"

	"bomtree/internal/apierror"
	"bomtree/internal/dto"
	"bomtree/internal/infra"
	"bomtree/internal/repository"
	"bomtree/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CompositionsHandler struct {
	svc       service.CompositionService
	materials repository.MaterialRepository
}

func NewCompositionsHandler(svc service.CompositionService, materials repository.MaterialRepository) *CompositionsHandler {
	return &CompositionsHandler{svc: svc, materials: materials}
}

// Create godoc
// @Summary Create a new composition tree atomically
// @Tags compositions
// @Accept json
// @Produce json
// @Success 201 {object} dto.NodeCreatedResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/compositions [post]
func (h *CompositionsHandler) Create(c *gin.Context) {
	var req dto.CreateCompositionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	id, err := h.svc.CreateComposition(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NodeCreatedResponse{ID: id.String()})
}

func (h *CompositionsHandler) AddComponent(c *gin.Context) {
	parentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.AddComponentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	id, err := h.svc.AddComponent(c.Request.Context(), parentID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NodeCreatedResponse{ID: id.String()})
}

// ListRoots returns every base product with its tree populated up to the
// requested depth.
func (h *CompositionsHandler) ListRoots(c *gin.Context) {
	var filter dto.SubtreeFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if err := validate.Struct(&filter); err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.New("depth must be at least 1"))
		return
	}
	views, err := h.svc.GetAllRoots(c.Request.Context(), filter.Depth)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TreeListResponse{Data: views, Total: len(views)})
}

func (h *CompositionsHandler) GetTree(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var filter dto.SubtreeFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if err := validate.Struct(&filter); err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.New("depth must be at least 1"))
		return
	}
	view, err := h.svc.GetSubtree(c.Request.Context(), id, filter.Depth)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *CompositionsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.UpdateNodeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	view, err := h.svc.UpdateNode(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *CompositionsHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	if err := h.svc.DeleteSubtree(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AggregateBom godoc
// @Summary Roll up total material consumption for a whole assembly
// @Tags compositions
// @Produce json
// @Success 200 {object} dto.AggregatedBomResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/compositions/{id}/bom [get]
func (h *CompositionsHandler) AggregateBom(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.AggregateBillOfMaterials(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AggregateBomPDF renders the rolled-up totals as a downloadable PDF report.
func (h *CompositionsHandler) AggregateBomPDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	ctx := c.Request.Context()

	// Depth 1 is enough — only the root's name goes on the report header.
	view, err := h.svc.GetSubtree(ctx, id, 1)
	if err != nil {
		respondError(c, err)
		return
	}
	agg, err := h.svc.AggregateBillOfMaterials(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	// Resolve material names for readability; ids stay in the report when a
	// lookup fails.
	ids := make([]uuid.UUID, 0, len(agg.Totals))
	for raw := range agg.Totals {
		if mid, parseErr := uuid.Parse(raw); parseErr == nil {
			ids = append(ids, mid)
		}
	}
	names := make(map[string]string, len(ids))
	if materials, lookupErr := h.materials.FindByIDs(ctx, ids); lookupErr == nil {
		for _, m := range materials {
			names[m.ID.String()] = m.Name
		}
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `attachment; filename="bom_`+id.String()+`.pdf"`)
	if err := infra.WriteBomPDF(c.Writer, view.Name, agg, names); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("failed to render PDF"))
	}
}
