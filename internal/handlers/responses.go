package handlers

import "github.com/abrezinsky/aesops/internal/models"

// ImportRosterResponse is the response for roster imports
type ImportRosterResponse struct {
	Imported     int                  `json:"imported"`
	Participants []models.Participant `json:"participants"`
}

// ImportResultsResponse is the response for bulk result reporting
type ImportResultsResponse struct {
	Recorded int `json:"recorded"`
}
