package server

import (
	"github.com/freenote/freenote/internal/domain"
	"github.com/freenote/freenote/internal/store"
	"github.com/gofiber/fiber/v2"
)

func (s *Server) getTree(c *fiber.Ctx) error {
	root, err := s.store.Tree(c.UserContext(), userOf(c))
	if err != nil {
		return err
	}
	if c.Query("content") == "0" {
		root = domain.StripContent(root)
	}
	return c.JSON(root)
}

// getNote answers null rather than 404 for a missing id.
func (s *Server) getNote(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "id must be an integer")
	}
	note, err := s.store.Note(c.UserContext(), userOf(c), id)
	if err != nil {
		if statusFor(err) == fiber.StatusNotFound {
			return c.JSON(nil)
		}
		return err
	}
	return c.JSON(note)
}

type modifyRequest struct {
	ID      *int    `json:"id"`
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (s *Server) modifyNote(c *fiber.Ctx) error {
	var req modifyRequest
	if err := c.BodyParser(&req); err != nil || req.ID == nil {
		return fiber.NewError(fiber.StatusBadRequest, "expected {id, title, content}")
	}
	patch := store.Patch{Title: req.Title, Content: req.Content}
	if err := s.store.Modify(c.UserContext(), userOf(c), *req.ID, patch); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type createRequest struct {
	Parent *int        `json:"parent"`
	Type   domain.Kind `json:"type"`
}

func (s *Server) newNoteObject(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil || req.Parent == nil {
		return fiber.NewError(fiber.StatusBadRequest, "expected {parent, type}")
	}
	id, err := s.store.Create(c.UserContext(), userOf(c), *req.Parent, req.Type)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

type deleteRequest struct {
	ID *int `json:"id"`
}

func (s *Server) deleteNoteObject(c *fiber.Ctx) error {
	var req deleteRequest
	if err := c.BodyParser(&req); err != nil || req.ID == nil {
		return fiber.NewError(fiber.StatusBadRequest, "expected {id}")
	}
	if err := s.store.Delete(c.UserContext(), userOf(c), *req.ID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
