package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sitehatch/sitehatch-backend/internal/application"
	"github.com/sitehatch/sitehatch-backend/internal/application/dto"
	"github.com/sitehatch/sitehatch-backend/internal/application/errs"
	"github.com/sitehatch/sitehatch-backend/internal/application/sanitize"
)

type Server struct {
	commands *application.Collection
}

func NewServer(commands *application.Collection) *Server {
	return &Server{commands: commands}
}

func (s *Server) CreateSubmission(c *fiber.Ctx) error {
	var req dto.CreateSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	submissionID, err := s.commands.CreateSubmission.Execute(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}

	resp := dto.CreateSubmissionResponse{
		SubmissionID: submissionID.String(),
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (s *Server) Generate(c *fiber.Ctx) error {
	var req dto.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	submissionID, ok := sanitize.ID(req.SubmissionID)
	if !ok {
		return respondError(c, errs.InvalidInputError{Msg: "submissionId is not a valid identifier"})
	}

	resp, err := s.commands.Generate.Execute(c.Context(), submissionID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (s *Server) GetStatus(c *fiber.Ctx) error {
	submissionID, ok := sanitize.ID(c.Params("id"))
	if !ok {
		return respondError(c, errs.InvalidInputError{Msg: "id is not a valid identifier"})
	}

	resp, err := s.commands.GetStatus.Query(c.Context(), submissionID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (s *Server) GetPreview(c *fiber.Ctx) error {
	content, contentType, err := s.commands.GetPreview.Query(c.Context(), c.Params("id"), c.Query("file"))
	if err != nil {
		return respondError(c, err)
	}

	c.Set("Content-Type", contentType)
	return c.Status(fiber.StatusOK).Send(content)
}

func (s *Server) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	resp, err := s.commands.Login.Execute(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (s *Server) Publish(c *fiber.Ctx) error {
	var req dto.PublishRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	websiteID, ok := sanitize.ID(req.WebsiteID)
	if !ok {
		return respondError(c, errs.InvalidInputError{Msg: "websiteId is not a valid identifier"})
	}

	resp, err := s.commands.Publish.Execute(c.Context(), websiteID, identityFrom(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (s *Server) CreateCheckout(c *fiber.Ctx) error {
	var req dto.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	resp, err := s.commands.Payment.CreateCheckout(c.Context(), &req, identityFrom(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (s *Server) VerifyPayment(c *fiber.Ctx) error {
	var req dto.VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	resp, err := s.commands.Payment.VerifyPayment(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (s *Server) PaymentWebhook(c *fiber.Ctx) error {
	if err := s.commands.Payment.Webhook(c.Context(), c.Body(), c.Get("Stripe-Signature")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) ListWebsites(c *fiber.Ctx) error {
	resp, err := s.commands.ListWebsites.Query(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (s *Server) ApproveWebsite(c *fiber.Ctx) error {
	websiteID, ok := sanitize.ID(c.Params("id"))
	if !ok {
		return respondError(c, errs.InvalidInputError{Msg: "id is not a valid identifier"})
	}

	resp, err := s.commands.ApproveWebsite.Execute(c.Context(), websiteID, "admin")
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (s *Server) ResetSubmission(c *fiber.Ctx) error {
	submissionID, ok := sanitize.ID(c.Params("id"))
	if !ok {
		return respondError(c, errs.InvalidInputError{Msg: "id is not a valid identifier"})
	}

	if err := s.commands.ResetSubmission.Execute(c.Context(), submissionID); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(dto.StatusResponse{
		SubmissionID:     submissionID.String(),
		SubmissionStatus: "Pending",
	})
}

func (s *Server) AdminStats(c *fiber.Ctx) error {
	resp, err := s.commands.AdminStats.Query(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (s *Server) DebugCredentials(c *fiber.Ctx) error {
	resp, err := s.commands.Debug.Credentials(c.Context(), c.Query("email"))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (s *Server) DebugResetPassword(c *fiber.Ctx) error {
	var req dto.DebugResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	resp, err := s.commands.Debug.ResetPassword(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}
