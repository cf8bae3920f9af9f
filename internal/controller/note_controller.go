package controller

import (
	"notebot-be/internal/dto"
	"notebot-be/internal/pkg/serverutils"
	"notebot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// NoteController exposes a read-only JSON view of a user's notes for
// dashboard-style adapters. Mutations stay behind the dialogue router so
// the tag invariants hold everywhere.
type INoteController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Tags(ctx *fiber.Ctx) error
}

type noteController struct {
	noteService service.INoteService
}

func NewNoteController(noteService service.INoteService) INoteController {
	return &noteController{
		noteService: noteService,
	}
}

func (c *noteController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/note/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.List)
	h.Get("tags", c.Tags)
}

func (c *noteController) List(ctx *fiber.Ctx) error {
	userId := ctx.Locals("user_id").(int64)

	// Optional ?tag= narrows the listing; the service case-folds and
	// prefixes the '#' itself.
	tag := ctx.Query("tag")

	notes, err := c.noteService.GetNotesByTag(ctx.Context(), userId, tag)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list notes", dto.NoteListResponse{Notes: notes}))
}

func (c *noteController) Tags(ctx *fiber.Ctx) error {
	userId := ctx.Locals("user_id").(int64)

	tags, err := c.noteService.GetAllUserTagsWithCounts(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list tags", dto.TagListResponse{Tags: tags}))
}
