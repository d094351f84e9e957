package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/service"
)

// CommentsHandler manages comments nested under an issue.
type CommentsHandler struct {
	service *service.CommentService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(commentService *service.CommentService) *CommentsHandler {
	return &CommentsHandler{service: commentService}
}

// CreateComment POST /issues/:id/comments.
func (h *CommentsHandler) CreateComment(c *fiber.Ctx) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	issueID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	comment, err := h.service.CreateComment(c.UserContext(), caller, issueID, req.Content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// ListComments GET /issues/:id/comments.
func (h *CommentsHandler) ListComments(c *fiber.Ctx) error {
	issueID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	comments, err := h.service.ListComments(c.UserContext(), issueID)
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, commentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetComment GET /issues/:id/comments/:commentId.
func (h *CommentsHandler) GetComment(c *fiber.Ctx) error {
	issueID, commentID, err := commentPath(c)
	if err != nil {
		return err
	}
	comment, err := h.service.GetComment(c.UserContext(), issueID, commentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": commentResponse(comment)})
}

// UpdateComment PUT /issues/:id/comments/:commentId.
func (h *CommentsHandler) UpdateComment(c *fiber.Ctx) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	issueID, commentID, err := commentPath(c)
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	comment, err := h.service.UpdateComment(c.UserContext(), caller, issueID, commentID, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": commentResponse(comment)})
}

// DeleteComment DELETE /issues/:id/comments/:commentId.
func (h *CommentsHandler) DeleteComment(c *fiber.Ctx) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	issueID, commentID, err := commentPath(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteComment(c.UserContext(), caller, issueID, commentID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func commentPath(c *fiber.Ctx) (string, string, error) {
	issueID, err := pathID(c, "id")
	if err != nil {
		return "", "", err
	}
	commentID, err := pathID(c, "commentId")
	if err != nil {
		return "", "", err
	}
	return issueID, commentID, nil
}
