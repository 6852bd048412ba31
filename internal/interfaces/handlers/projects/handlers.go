package projects

import (
	projsvc "carbon-exchange/internal/application/projects"
	retsvc "carbon-exchange/internal/application/retirements"
	"carbon-exchange/internal/domain"
	"carbon-exchange/internal/middleware"
	"carbon-exchange/internal/pkg/params"
	"carbon-exchange/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service     *projsvc.Service
	Retirements *retsvc.Service
}

var errorCodes = map[error]int{
	domain.ErrMissingField:           fiber.StatusBadRequest,
	domain.ErrInvalidAddress:         fiber.StatusBadRequest,
	domain.ErrZeroCredits:            fiber.StatusBadRequest,
	domain.ErrZeroPrice:              fiber.StatusBadRequest,
	domain.ErrPrecision:              fiber.StatusBadRequest,
	domain.ErrProjectNotFound:        fiber.StatusNotFound,
	domain.ErrProjectInactive:        fiber.StatusConflict,
	domain.ErrProjectAlreadyVerified: fiber.StatusConflict,
	domain.ErrCreditSupplyExceeded:   fiber.StatusConflict,
	domain.ErrNotProjectIssuer:       fiber.StatusForbidden,
	domain.ErrUnauthorized:           fiber.StatusForbidden,
	domain.ErrPlatformNotInitialized: fiber.StatusServiceUnavailable,
}

type createProjectBody struct {
	Name           string          `json:"name"`
	Location       string          `json:"location"`
	ProjectType    string          `json:"project_type"`
	TotalCredits   int64           `json:"total_credits"`
	PricePerCredit decimal.Decimal `json:"price_per_credit"`
	MetadataURI    string          `json:"metadata_uri"`
}

type projectIDBody struct {
	ProjectID uint64 `json:"project_id"`
}

// CreateProject POST /api/v1/projects/create-project
func (h *Handlers) CreateProject(c *fiber.Ctx) error {
	var body createProjectBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	p, err := h.Service.CreateProject(c.UserContext(), middleware.SessionAddress(c), projsvc.CreateProjectInput{
		Name:           body.Name,
		Location:       body.Location,
		ProjectType:    body.ProjectType,
		TotalCredits:   body.TotalCredits,
		PricePerCredit: body.PricePerCredit,
		MetadataURI:    body.MetadataURI,
	})
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.SuccessCreated(c, "Project registered successfully", p, nil)
}

// VerifyProject POST /api/v1/projects/verify-project
func (h *Handlers) VerifyProject(c *fiber.Ctx) error {
	var body projectIDBody
	if err := c.BodyParser(&body); err != nil || body.ProjectID == 0 {
		return response.BadRequest(c, "project_id is required")
	}
	p, err := h.Service.VerifyProject(c.UserContext(), middleware.SessionAddress(c), body.ProjectID)
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Project verified successfully", p, nil)
}

// DeactivateProject POST /api/v1/projects/deactivate-project
func (h *Handlers) DeactivateProject(c *fiber.Ctx) error {
	var body projectIDBody
	if err := c.BodyParser(&body); err != nil || body.ProjectID == 0 {
		return response.BadRequest(c, "project_id is required")
	}
	p, err := h.Service.DeactivateProject(c.UserContext(), middleware.SessionAddress(c), body.ProjectID)
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Project deactivated successfully", p, nil)
}

// GetProject GET /api/v1/projects/get-project/:project_id
func (h *Handlers) GetProject(c *fiber.Ctx) error {
	id, err := params.ID(c, "project_id")
	if err != nil {
		return response.BadRequest(c, "Invalid project_id")
	}
	p, err := h.Service.GetProject(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Project fetched successfully", p, nil)
}

// GetAllProjects GET /api/v1/projects/get-all-projects
func (h *Handlers) GetAllProjects(c *fiber.Ctx) error {
	list, err := h.Service.GetAllProjects(c.UserContext())
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Projects fetched successfully", list, fiber.Map{"count": len(list)})
}

// GetTotalProjects GET /api/v1/projects/get-total-projects
func (h *Handlers) GetTotalProjects(c *fiber.Ctx) error {
	n, err := h.Service.GetTotalProjects(c.UserContext())
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Total projects fetched successfully", fiber.Map{"total_projects": n}, nil)
}

// GetUserProjects GET /api/v1/projects/get-user-projects/:address
func (h *Handlers) GetUserProjects(c *fiber.Ctx) error {
	ids, err := h.Service.GetUserProjects(c.UserContext(), c.Params("address"))
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "User projects fetched successfully", fiber.Map{"project_ids": ids}, nil)
}

// GetProjectRetirements GET /api/v1/projects/get-project-retirements/:project_id
func (h *Handlers) GetProjectRetirements(c *fiber.Ctx) error {
	id, err := params.ID(c, "project_id")
	if err != nil {
		return response.BadRequest(c, "Invalid project_id")
	}
	list, err := h.Retirements.GetProjectRetirements(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Project retirements fetched successfully", list, fiber.Map{"count": len(list)})
}
