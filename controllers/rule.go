package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/washpoint/carwash-app/schedule"
	"github.com/washpoint/carwash-app/utils"
)

// RuleController exposes the weekly availability rule CRUD for washers.
type RuleController struct {
	Rules *schedule.RuleService
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Params(name), 10, 64)
	return uint(v), err
}

// CreateRule creates the station's weekly rule
func (r *RuleController) CreateRule(c *fiber.Ctx) error {
	requester, ok := requesterFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not found in context",
		})
	}

	var in schedule.RuleInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	rule, err := r.Rules.Create(in, requester)
	if err != nil {
		return scheduleError(c, err, "availability rule")
	}
	return c.Status(fiber.StatusCreated).JSON(rule)
}

// GetAllRules retrieves all availability rules
func (r *RuleController) GetAllRules(c *fiber.Ctx) error {
	rules, err := r.Rules.List()
	if err != nil {
		return scheduleError(c, err, "availability rules")
	}
	return c.JSON(rules)
}

// GetStationRule retrieves the rule of one station
func (r *RuleController) GetStationRule(c *fiber.Ctx) error {
	stationID, err := parseUintParam(c, "stationId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid station id",
		})
	}
	rule, err := r.Rules.Get(stationID)
	if err != nil {
		return scheduleError(c, err, "availability rule")
	}
	return c.JSON(rule)
}

// UpdateRule applies a partial update and reconciles future availabilities
func (r *RuleController) UpdateRule(c *fiber.Ctx) error {
	requester, ok := requesterFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not found in context",
		})
	}
	ruleID, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid rule id",
		})
	}

	var patch schedule.RuleUpdate
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	rule, err := r.Rules.Update(ruleID, patch, requester)
	if err != nil {
		return scheduleError(c, err, "availability rule")
	}
	return c.JSON(rule)
}

// DeleteRule removes a rule, leaving materialized dates as snapshots
func (r *RuleController) DeleteRule(c *fiber.Ctx) error {
	requester, ok := requesterFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not found in context",
		})
	}
	ruleID, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid rule id",
		})
	}
	if err := r.Rules.Delete(ruleID, requester); err != nil {
		return scheduleError(c, err, "availability rule")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
