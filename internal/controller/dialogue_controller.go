package controller

import (
	"strconv"

	"notebot-be/internal/constant"
	"notebot-be/internal/dto"
	"notebot-be/internal/pkg/serverutils"
	"notebot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDialogueController interface {
	RegisterRoutes(r fiber.Router)
	HandleMessage(ctx *fiber.Ctx) error
	State(ctx *fiber.Ctx) error
}

type dialogueController struct {
	dialogueService service.IDialogueService
}

func NewDialogueController(dialogueService service.IDialogueService) IDialogueController {
	return &dialogueController{
		dialogueService: dialogueService,
	}
}

func (c *dialogueController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/dialogue/v1")
	h.Post("message", c.HandleMessage)
	h.Get("state/:user_id", c.State)
}

func (c *dialogueController) HandleMessage(ctx *fiber.Ctx) error {
	var req dto.HandleMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	reply := c.dialogueService.Handle(ctx.Context(), req.UserId, req.Text)
	state := c.dialogueService.CurrentState(ctx.Context(), req.UserId)

	return ctx.JSON(serverutils.SuccessResponse("Success handle message", dto.HandleMessageResponse{
		Reply:       reply,
		State:       state,
		Suggestions: constant.KeyboardFor(state),
	}))
}

func (c *dialogueController) State(ctx *fiber.Ctx) error {
	userId, err := strconv.ParseInt(ctx.Params("user_id"), 10, 64)
	if err != nil || userId <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user_id")
	}

	state := c.dialogueService.CurrentState(ctx.Context(), userId)

	return ctx.JSON(serverutils.SuccessResponse("Success show state", dto.DialogueStateResponse{
		UserId:      userId,
		State:       state,
		Suggestions: constant.KeyboardFor(state),
	}))
}
