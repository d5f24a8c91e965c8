package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"internship-portal/internal/domain"
	"internship-portal/internal/middleware"
	"internship-portal/internal/service/lifecycle"
)

type EntityHandler struct {
	lifecycleService lifecycle.Service
}

func NewEntityHandler(lifecycleService lifecycle.Service) *EntityHandler {
	return &EntityHandler{lifecycleService: lifecycleService}
}

type resultResponse struct {
	*lifecycle.Result
	Allowed  []domain.Status `json:"allowed_transitions"`
	Warnings []string        `json:"warnings,omitempty"`
}

func newResultResponse(result *lifecycle.Result) resultResponse {
	resp := resultResponse{
		Result:  result,
		Allowed: domain.AllowedTransitions(result.Entity.Kind, result.Entity.Status),
	}
	for _, w := range result.Warnings {
		resp.Warnings = append(resp.Warnings, w.Error())
	}
	return resp
}

func (h *EntityHandler) Create(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}

	var input domain.CreateEntityInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	result, err := h.lifecycleService.CreateEntity(c.Context(), actor, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(newResultResponse(result))
}

func (h *EntityHandler) List(c *fiber.Ctx) error {
	var filter domain.EntityFilter
	if err := c.QueryParser(&filter); err != nil {
		return middleware.BadRequest("Invalid query parameters")
	}

	entities, err := h.lifecycleService.ListEntities(c.Context(), filter)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": entities})
}

func (h *EntityHandler) Get(c *fiber.Ctx) error {
	entityID, err := parseEntityID(c)
	if err != nil {
		return err
	}

	entity, err := h.lifecycleService.GetEntity(c.Context(), entityID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"entity":              entity,
		"allowed_transitions": domain.AllowedTransitions(entity.Kind, entity.Status),
	})
}

func (h *EntityHandler) Update(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}

	entityID, err := parseEntityID(c)
	if err != nil {
		return err
	}

	var input domain.UpdateContentInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	entity, err := h.lifecycleService.UpdateContent(c.Context(), entityID, actor, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(entity)
}

func (h *EntityHandler) Delete(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}

	entityID, err := parseEntityID(c)
	if err != nil {
		return err
	}

	if err := h.lifecycleService.DeleteEntity(c.Context(), entityID, actor); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}

func (h *EntityHandler) Transition(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}

	entityID, err := parseEntityID(c)
	if err != nil {
		return err
	}

	var input domain.TransitionInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	result, err := h.lifecycleService.ApplyTransition(c.Context(), entityID, actor, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(newResultResponse(result))
}

func (h *EntityHandler) RemindDrafts(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}

	var input struct {
		Due string `json:"due"`
	}
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	sent, err := h.lifecycleService.RemindDrafts(c.Context(), actor, input.Due)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"sent": len(sent), "data": sent})
}

func parseEntityID(c *fiber.Ctx) (uuid.UUID, error) {
	entityID, err := uuid.Parse(c.Params("entityId"))
	if err != nil {
		return uuid.Nil, middleware.BadRequest("Invalid entity ID")
	}
	return entityID, nil
}
