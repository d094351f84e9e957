package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/service"
)

// AuditHandler serves read-only audit queries. Routes are admin-gated.
type AuditHandler struct {
	audit *service.AuditService
}

// NewAuditHandler constructs handler.
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: auditService}
}

// ListAll GET /audit.
func (h *AuditHandler) ListAll(c *fiber.Ctx) error {
	logs, err := h.audit.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": auditResponses(logs)})
}

// ListByEntityType GET /audit/entity/:entityType.
func (h *AuditHandler) ListByEntityType(c *fiber.Ctx) error {
	entityType := strings.ToUpper(strings.TrimSpace(c.Params("entityType")))
	logs, err := h.audit.ListByEntityType(c.UserContext(), entityType)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": auditResponses(logs)})
}

// ListByActor GET /audit/actor/:actorId.
func (h *AuditHandler) ListByActor(c *fiber.Ctx) error {
	actorID, err := pathID(c, "actorId")
	if err != nil {
		return err
	}
	logs, err := h.audit.ListByActor(c.UserContext(), actorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": auditResponses(logs)})
}
