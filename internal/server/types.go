package server

import "github.com/marcelohs402015/app-email-attendant-sub001/internal/models"

type ErrorResponse struct {
	Error string `json:"error"`
}

type SendMessageRequest struct {
	Message string `json:"message"`
}

type SetStatusRequest struct {
	Status models.SessionStatus `json:"status"`
}

type ClassifyRequest struct {
	Emails []models.Email `json:"emails"`
}

type ClassifyResponse struct {
	Results []models.ClassificationResult `json:"results"`
}

type IngestResponse struct {
	Email  *models.Email               `json:"email"`
	Result models.ClassificationResult `json:"result"`
}

type ReclassifyResponse struct {
	Processed int `json:"processed"`
}
