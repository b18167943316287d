package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/apiclient"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/go-playground/validator/v10"
)

type ContactService interface {
	Send(ctx context.Context, req models.ContactMessageRequest) models.Result
}

type contactService struct {
	api      apiclient.API
	validate *validator.Validate
}

func NewContactService(api apiclient.API) ContactService {
	return &contactService{api: api, validate: utils.NewValidator()}
}

// Send posts a message to the shop owners. No login is needed.
func (s *contactService) Send(ctx context.Context, req models.ContactMessageRequest) models.Result {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)

	if err := utils.ValidateStruct(s.validate, &req); err != nil {
		return models.Failed(err, "Failed to send message")
	}

	var resp struct {
		Message string `json:"message"`
	}

	if err := s.api.JSON(ctx, http.MethodPost, apiclient.PathContact, req, &resp); err != nil {
		return models.Failed(err, "Failed to send message")
	}

	return models.OK(messageOr(resp.Message, "Message sent"))
}
